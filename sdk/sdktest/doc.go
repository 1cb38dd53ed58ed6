// Package sdktest provides an in-process sdk.Engine for tests and
// simulation. Clips are either registered in memory or read from synthetic
// clip files (see EncodeClip), through the installed customio backend when
// one is active.
package sdktest
