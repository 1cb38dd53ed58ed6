package customio

import (
	"bytes"
	"sync"
	"testing"

	"github.com/wippyai/r3d-bridge/status"
)

func clipData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestStreams_OpenSemantics(t *testing.T) {
	s := NewStreams()
	s.RegisterBytes("clip.dat", clipData(100))

	if h := s.Open("clip.dat", status.AccessWrite); h != HandleFallback {
		t.Fatalf("write open = %v, want HandleFallback", h)
	}
	if h := s.Open("other.dat", status.AccessRead); h != HandleError {
		t.Fatalf("unknown name = %v, want HandleError", h)
	}
	h := s.Open("clip.dat", status.AccessRead)
	if !h.Valid() {
		t.Fatalf("open = %v", h)
	}
	if s.Filesize(h) != 100 {
		t.Fatalf("Filesize = %d", s.Filesize(h))
	}
	s.Close(h)
}

func TestStreams_PrefixOwnership(t *testing.T) {
	s := NewStreams(WithPrefix("mem://"))
	s.RegisterBytes("mem://clip.dat", clipData(10))

	if h := s.Open("/tmp/clip.dat", status.AccessRead); h != HandleFallback {
		t.Fatalf("unowned path = %v, want HandleFallback", h)
	}
	if h := s.Open("mem://missing", status.AccessRead); h != HandleError {
		t.Fatalf("owned unknown name = %v, want HandleError", h)
	}
	if h := s.Open("mem://clip.dat", status.AccessRead); !h.Valid() {
		t.Fatalf("owned known name = %v", h)
	}
}

func TestStreams_ReadBounds(t *testing.T) {
	data := clipData(100)
	s := NewStreams()
	s.RegisterBytes("clip.dat", data)
	h := s.Open("clip.dat", status.AccessRead)
	defer s.Close(h)

	tests := []struct {
		name   string
		offset uint64
		n      int
		ok     bool
	}{
		{"middle", 90, 10, true},
		{"one past", 95, 10, false},
		{"offset beyond", 101, 0, false},
		{"offset at end empty", 100, 0, true},
		{"huge offset", ^uint64(0), 1, false},
		{"whole", 0, 100, true},
		{"too long", 0, 101, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bytes.Repeat([]byte{0xAA}, tt.n)
			ok := s.Read(buf, tt.offset, h)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok {
				if !bytes.Equal(buf, data[tt.offset:tt.offset+uint64(tt.n)]) {
					t.Fatalf("wrong bytes")
				}
				return
			}
			for _, b := range buf {
				if b != 0xAA {
					t.Fatal("failed read modified the buffer")
				}
			}
		})
	}
}

func TestStreams_SharedEntryConcurrentReads(t *testing.T) {
	data := clipData(4096)
	s := NewStreams()
	s.RegisterBytes("clip.dat", data)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			h := s.Open("clip.dat", status.AccessRead)
			defer s.Close(h)
			buf := make([]byte, 64)
			for i := 0; i < 100; i++ {
				off := uint64((g*512 + i*13) % (len(data) - len(buf)))
				if !s.Read(buf, off, h) || !bytes.Equal(buf, data[off:off+64]) {
					t.Errorf("goroutine %d read at %d failed", g, off)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if s.OpenCount() != 0 {
		t.Fatalf("OpenCount = %d", s.OpenCount())
	}
}

func TestStreams_IndependentClose(t *testing.T) {
	s := NewStreams()
	s.RegisterBytes("clip.dat", clipData(10))
	h1 := s.Open("clip.dat", status.AccessRead)
	h2 := s.Open("clip.dat", status.AccessRead)
	if h1 == h2 {
		t.Fatal("handles should be distinct")
	}

	s.Close(h1)
	if s.Read(make([]byte, 1), 0, h1) {
		t.Fatal("closed handle should not read")
	}
	if !s.Read(make([]byte, 1), 0, h2) {
		t.Fatal("other handle should still read")
	}
	s.Close(h2)
	s.Close(h2)
	s.Close(Handle(999))
}

func TestStreams_UnregisterKeepsOpenHandles(t *testing.T) {
	s := NewStreams()
	s.RegisterBytes("clip.dat", clipData(10))
	h := s.Open("clip.dat", status.AccessRead)

	if !s.Unregister("clip.dat") {
		t.Fatal("Unregister failed")
	}
	if s.Unregister("clip.dat") {
		t.Fatal("second Unregister should report false")
	}
	if !s.Read(make([]byte, 10), 0, h) {
		t.Fatal("open handle should survive Unregister")
	}
	if got := s.Open("clip.dat", status.AccessRead); got != HandleError {
		t.Fatalf("Open after Unregister = %v", got)
	}
}

func TestStreams_WriteAndCreatePathFail(t *testing.T) {
	s := NewStreams()
	s.RegisterBytes("clip.dat", clipData(10))
	h := s.Open("clip.dat", status.AccessRead)
	if s.Write([]byte("x"), h) {
		t.Fatal("Write should fail")
	}
	if s.CreatePath("dir") {
		t.Fatal("CreatePath should fail")
	}
}

func TestStreams_RegisterFile(t *testing.T) {
	data := clipData(300)
	path := writeFile(t, t.TempDir(), "clip.R3D", data)

	s := NewStreams()
	if err := s.RegisterFile("A001.R3D", path); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterFile("missing", path+".nope"); err == nil {
		t.Fatal("expected error for missing file")
	}
	h := s.Open("A001.R3D", status.AccessRead)
	buf := make([]byte, 50)
	if !s.Read(buf, 250, h) || !bytes.Equal(buf, data[250:]) {
		t.Fatal("read from registered file failed")
	}
	if len(s.Names()) != 1 {
		t.Fatalf("Names = %v", s.Names())
	}
	if err := s.Shutdown(); err != nil {
		t.Fatal(err)
	}
}
