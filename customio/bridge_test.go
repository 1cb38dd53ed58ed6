package customio

import (
	stderrors "errors"
	"testing"
	"unsafe"

	"github.com/wippyai/r3d-bridge/errors"
	"github.com/wippyai/r3d-bridge/status"
)

type fakeRuntime struct {
	instances []uintptr
	resets    int
	refuse    bool
}

func (r *fakeRuntime) SetIOInterface(instance uintptr) bool {
	if r.refuse {
		return false
	}
	r.instances = append(r.instances, instance)
	return true
}

func (r *fakeRuntime) ResetIOInterface() {
	r.resets++
}

func cstr(s string) unsafe.Pointer {
	b := append([]byte(s), 0)
	return unsafe.Pointer(&b[0])
}

func TestInstallReset(t *testing.T) {
	defer Reset()

	rt := &fakeRuntime{}
	s := NewStreams()
	if err := Install(s, rt); err != nil {
		t.Fatal(err)
	}
	b, instance, ok := Active()
	if !ok || b != Backend(s) || instance == 0 {
		t.Fatalf("Active = %v %d %v", b, instance, ok)
	}
	if len(rt.instances) != 1 || rt.instances[0] != instance {
		t.Fatalf("runtime saw %v", rt.instances)
	}

	// Reinstalling resets the previous installation first.
	fs := NewFilesystem()
	if err := Install(fs, rt); err != nil {
		t.Fatal(err)
	}
	if rt.resets != 1 {
		t.Fatalf("resets = %d", rt.resets)
	}
	_, instance2, _ := Active()
	if instance2 == instance {
		t.Fatal("instance value reused across installations")
	}

	Reset()
	Reset()
	if rt.resets != 2 {
		t.Fatalf("resets = %d", rt.resets)
	}
	if _, _, ok := Active(); ok {
		t.Fatal("backend still active after Reset")
	}
}

func TestInstall_Errors(t *testing.T) {
	defer Reset()

	err := Install(nil, nil)
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}) {
		t.Fatalf("nil backend err = %v", err)
	}

	for name, b := range map[string]Backend{
		"streams":    (*Streams)(nil),
		"filesystem": (*Filesystem)(nil),
	} {
		err = Install(b, nil)
		if !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}) {
			t.Fatalf("typed nil %s err = %v", name, err)
		}
		if _, _, ok := Active(); ok {
			t.Fatalf("typed nil %s became active", name)
		}
	}

	err = Install(NewStreams(), &fakeRuntime{refuse: true})
	if err == nil {
		t.Fatal("expected error when runtime refuses")
	}
	if _, _, ok := Active(); ok {
		t.Fatal("refused installation should not stay active")
	}
}

func TestEntryPoints_RoundTrip(t *testing.T) {
	defer Reset()

	data := clipData(100)
	s := NewStreams()
	s.RegisterBytes("clip.dat", data)
	if err := Install(s, nil); err != nil {
		t.Fatal(err)
	}
	_, inst, _ := Active()

	h := EntryOpen(inst, cstr("clip.dat"), int32(status.AccessRead))
	if !h.Valid() {
		t.Fatalf("EntryOpen = %v", h)
	}
	if size := EntryFilesize(inst, h); size != 100 {
		t.Fatalf("EntryFilesize = %d", size)
	}

	buf := make([]byte, 10)
	if !EntryRead(inst, unsafe.Pointer(&buf[0]), 10, 90, h) {
		t.Fatal("EntryRead failed")
	}
	if buf[0] != 90 || buf[9] != 99 {
		t.Fatalf("EntryRead bytes = %v", buf)
	}
	if EntryRead(inst, unsafe.Pointer(&buf[0]), 10, 95, h) {
		t.Fatal("EntryRead past end should fail")
	}
	if EntryWrite(inst, unsafe.Pointer(&buf[0]), 10, h) {
		t.Fatal("EntryWrite on streams should fail")
	}
	if EntryCreatePath(inst, cstr("dir")) {
		t.Fatal("EntryCreatePath on streams should fail")
	}
	EntryClose(inst, h)
	if EntryFilesize(inst, h) != 0 {
		t.Fatal("closed handle still resolves")
	}
}

func TestEntryPoints_InvalidArguments(t *testing.T) {
	defer Reset()

	s := NewStreams()
	s.RegisterBytes("clip.dat", clipData(10))
	if err := Install(s, nil); err != nil {
		t.Fatal(err)
	}
	_, inst, _ := Active()
	h := EntryOpen(inst, cstr("clip.dat"), int32(status.AccessRead))
	buf := make([]byte, 4)
	p := unsafe.Pointer(&buf[0])

	if got := EntryOpen(0, cstr("clip.dat"), 1); got != HandleFallback {
		t.Errorf("zero instance open = %v", got)
	}
	if got := EntryOpen(inst, nil, 1); got != HandleFallback {
		t.Errorf("nil path open = %v", got)
	}
	if got := EntryOpen(inst, cstr("clip.dat"), 7); got != HandleFallback {
		t.Errorf("bad access open = %v", got)
	}
	if got := EntryOpen(inst+1000, cstr("clip.dat"), 1); got != HandleFallback {
		t.Errorf("stale instance open = %v", got)
	}
	if EntryFilesize(0, h) != 0 || EntryFilesize(inst, HandleError) != 0 {
		t.Error("filesize with invalid args should be 0")
	}
	if EntryRead(inst, nil, 4, 0, h) {
		t.Error("nil buffer read should fail")
	}
	if EntryRead(0, p, 4, 0, h) || EntryRead(inst, p, 4, 0, HandleError) {
		t.Error("read with invalid args should fail")
	}
	if EntryRead(inst, p, 4, 0, HandleFallback) {
		t.Error("read on fallback sentinel should fail")
	}
	if EntryWrite(inst, nil, 4, h) {
		t.Error("nil buffer write should fail")
	}
	if EntryCreatePath(inst, nil) || EntryCreatePath(0, cstr("x")) {
		t.Error("create path with invalid args should fail")
	}
	EntryClose(0, h)
	EntryClose(inst, HandleError)
	if !EntryRead(inst, p, 4, 0, h) {
		t.Fatal("handle should survive invalid close calls")
	}

	Reset()
	if EntryRead(inst, p, 4, 0, h) {
		t.Fatal("entry points must fail after Reset")
	}
}

func TestEntryPoints_FilesystemWrite(t *testing.T) {
	defer Reset()

	if err := Install(NewFilesystem(), nil); err != nil {
		t.Fatal(err)
	}
	_, inst, _ := Active()

	dir := t.TempDir() + "/out/nested"
	if !EntryCreatePath(inst, cstr(dir)) {
		t.Fatal("EntryCreatePath failed")
	}
	h := EntryOpen(inst, cstr(dir+"/frame.bin"), int32(status.AccessWrite))
	if !h.Valid() {
		t.Fatalf("EntryOpen write = %v", h)
	}
	payload := []byte("frame")
	if !EntryWrite(inst, unsafe.Pointer(&payload[0]), uint64(len(payload)), h) {
		t.Fatal("EntryWrite failed")
	}
	EntryClose(inst, h)

	if h := EntryOpen(inst, cstr(dir+"/missing.bin"), int32(status.AccessRead)); h != HandleError {
		t.Fatalf("missing read open = %v", h)
	}
}
