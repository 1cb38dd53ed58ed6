// Package future turns the engine's "submit now, callback later" protocol
// into a single-resolution awaitable.
//
// Submitting a job stores it in a Cell registered under an integer token. The
// token travels through the engine as the job's private data; when the engine
// calls back, Deliver looks the token up, maps the status code and resolves
// the cell exactly once:
//
//	fut, err := future.Submit(future.Default(), future.Submission[*Job]{
//	    Payload: job,
//	    Map:     mapDecodeStatus,
//	    Submit:  func(token uintptr) int32 { return engine.Submit(job, token) },
//	})
//	if err != nil {
//	    return err // rejected synchronously, no callback will follow
//	}
//	job, err = fut.Wait(ctx)
//
// The consumer side is poll based. Poll registers a Waker and reports the
// result once available; Wait and Results are built on it. A Future may be
// abandoned at any time: the cell stays reachable from the registry until the
// engine delivers, so a late callback never touches freed state.
package future
