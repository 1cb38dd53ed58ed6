// Package decoder is the typed front end to the engine. An SDK opens clips
// and decoders; jobs are configured, submitted, and returned through a
// future.Future once the engine completes them.
//
//	s, _ := decoder.Initialize(engine, "/opt/red/lib", status.InitNone)
//	clip, _ := s.OpenClip("A001.R3D")
//	dec, _ := s.OpenDecoder(sdk.DecoderOptions{})
//	job := s.NewDecodeJob()
//	job.SetClip(clip)
//	job.SetMode(status.ModeHalfResGood)
//	job.AllocateInternalBuffer()
//	f, err := dec.Decode(job)
//	job, err = f.Wait(ctx)
package decoder
