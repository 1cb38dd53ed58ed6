// Package sdk defines the contract between the bridge and the decoding engine.
//
// Engine is deliberately narrow: opaque references for clips, decoders and
// jobs, plain status codes, and a completion callback that carries back the
// integer token passed to Submit. Native implements it over the libr3dbridge
// shim with purego; sdktest provides an in-process engine for tests.
package sdk
