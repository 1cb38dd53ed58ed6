package sdk

import "testing"

func TestPinSet(t *testing.T) {
	var s pinSet
	s.pin(1, make([]byte, 64))
	s.pin(2, make([]byte, 64))
	if s.len() != 2 {
		t.Fatalf("pinned = %d, want 2", s.len())
	}

	// Reconfiguring swaps the pin; an empty output drops it.
	s.pin(1, make([]byte, 128))
	if s.len() != 2 {
		t.Fatalf("pinned after repin = %d, want 2", s.len())
	}
	s.pin(2, nil)
	if s.len() != 1 {
		t.Fatalf("pinned after clearing output = %d, want 1", s.len())
	}

	s.release(1)
	s.release(1)
	s.release(99)
	if s.len() != 0 {
		t.Fatalf("pinned after release = %d, want 0", s.len())
	}
}
