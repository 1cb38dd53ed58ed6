// Package r3dbridge connects Go programs to the RED R3D decoding engine.
//
// The engine works asynchronously: a job is submitted, engine threads decode
// it, and a C callback reports completion. It also reads clips through a
// replaceable set of file callbacks. This module turns the first into typed
// futures and the second into a pluggable storage backend.
//
// # Architecture Overview
//
//	r3dbridge/
//	├── status/          Engine enums, pixel formats, buffer arithmetic
//	├── errors/          Structured errors and the status taxonomy
//	├── resource/        Handle table shared by the storage backends
//	├── future/          Completion cells, token registry, awaitable futures
//	├── customio/        Storage backends and the engine I/O entry points
//	│   └── wasmio/      The same backends served to WebAssembly guests
//	├── sdk/             Engine contract and the purego native binding
//	│   └── sdktest/     In-process engine for tests and examples
//	├── decoder/         Clips, decoders, jobs and aligned output buffers
//	├── config/          TOML configuration
//	└── cmd/r3d/         Command line front end
//
// # Quick Start
//
//	engine, err := sdk.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := decoder.Initialize(engine, "/opt/red/lib", status.InitNone)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	clip, _ := s.OpenClip("A001.R3D")
//	dec, _ := s.OpenDecoder(sdk.DecoderOptions{})
//
//	job := s.NewDecodeJob()
//	job.SetClip(clip)
//	job.SetVideoFrame(12)
//	job.AllocateInternalBuffer()
//
//	f, err := dec.Decode(job)
//	job, err = f.Wait(ctx)
//
// # Ownership
//
// A submitted job belongs to the engine until its future resolves. Mutating
// it in that window panics; Abort is the only permitted call. The future
// returns the job on failure too, so its buffers can be reused or released.
//
// # Thread Safety
//
// Completion callbacks arrive on engine threads in any order. Futures may be
// awaited from any goroutine. Only one storage backend is active per process;
// Install and Reset must not be called from inside a backend method.
package r3dbridge
