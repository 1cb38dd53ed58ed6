package sdk

import (
	"runtime"
	"sync"
	"unsafe"
)

// pinSet keeps each job's output memory pinned while the engine holds a
// pointer to it. Go-heap buffers handed to C must not move or be collected
// between ConfigureJob and ReleaseJob; pinning non-Go memory is a no-op.
type pinSet struct {
	mu   sync.Mutex
	pins map[Ref]*runtime.Pinner
}

// pin replaces job's pinned output with buf.
func (s *pinSet) pin(job Ref, buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pins[job]; ok {
		p.Unpin()
		delete(s.pins, job)
	}
	if len(buf) == 0 {
		return
	}
	p := new(runtime.Pinner)
	p.Pin(unsafe.SliceData(buf))
	if s.pins == nil {
		s.pins = make(map[Ref]*runtime.Pinner)
	}
	s.pins[job] = p
}

// release unpins job's output.
func (s *pinSet) release(job Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pins[job]; ok {
		p.Unpin()
		delete(s.pins, job)
	}
}

func (s *pinSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pins)
}
