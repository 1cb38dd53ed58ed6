// Package customio lets the host replace the engine's file access with a
// pluggable Backend.
//
// The engine calls six entry points synchronously from its own threads:
// open, filesize, close, read, write and create path. Open returns either a
// valid Handle or one of two sentinels with opposite meanings:
//
//	HandleError    the backend owns the path but cannot serve it; abort
//	HandleFallback the backend does not own the path; let the engine try
//
// Two backends are provided. Filesystem serves real files with positioned
// reads. Streams serves named, read-only sources registered by the caller:
//
//	streams := customio.NewStreams()
//	streams.RegisterBytes("clip.R3D", data)
//	if err := customio.Install(streams, engine); err != nil {
//	    return err
//	}
//	defer customio.Reset()
//
// Only one backend is installed per process. Handles are never reused, so a
// handle closed by one engine thread cannot alias a file opened later by
// another.
package customio
