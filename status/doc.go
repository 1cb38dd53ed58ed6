// Package status defines the numeric codes and enumerations exchanged with the
// R3D decoding engine.
//
// Every status family carries a single success value. The errors package maps
// the remaining values onto a closed error taxonomy; this package only names
// them.
package status
