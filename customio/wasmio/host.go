// Package wasmio exposes a customio.Backend to WebAssembly guests as the
// "r3d:io" host module.
//
// Guest signatures (handles are i64; -1 is the fallback sentinel, 0 the error sentinel):
//
//	open(path_ptr i32, path_len i32, access i32) -> i64
//	filesize(handle i64) -> i64
//	close(handle i64)
//	read(buf_ptr i32, buf_len i32, offset i64, handle i64) -> i32
//	write(buf_ptr i32, buf_len i32, handle i64) -> i32
//	create_path(path_ptr i32, path_len i32) -> i32
//
// Guest pointers outside linear memory fail the call the same way invalid
// arguments fail the native entry points.
package wasmio

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/customio"
	"github.com/wippyai/r3d-bridge/status"
)

// ModuleName is the import module guests link against.
const ModuleName = "r3d:io"

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// Host serves guest calls from a backend. A nil backend means "whatever
// customio.Install made active at call time".
type Host struct {
	backend customio.Backend
	logger  *zap.Logger
}

// NewHost creates a host bound to b, or to the active installation when b is nil.
func NewHost(b customio.Backend) *Host {
	return &Host{backend: b, logger: customio.Logger()}
}

func (h *Host) resolve() (customio.Backend, bool) {
	if h.backend != nil {
		return h.backend, true
	}
	b, _, ok := customio.Active()
	return b, ok
}

type hostFunc struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

func (h *Host) funcs() []hostFunc {
	return []hostFunc{
		{name: "open", fn: h.open, params: []api.ValueType{i32, i32, i32}, results: []api.ValueType{i64}},
		{name: "filesize", fn: h.filesize, params: []api.ValueType{i64}, results: []api.ValueType{i64}},
		{name: "close", fn: h.close, params: []api.ValueType{i64}},
		{name: "read", fn: h.read, params: []api.ValueType{i32, i32, i64, i64}, results: []api.ValueType{i32}},
		{name: "write", fn: h.write, params: []api.ValueType{i32, i32, i64}, results: []api.ValueType{i32}},
		{name: "create_path", fn: h.createPath, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
	}
}

// Instantiate registers the host module in rt.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(ModuleName)
	for _, f := range h.funcs() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, f.results).
			Export(f.name)
	}
	return builder.Instantiate(ctx)
}

func readString(mod api.Module, ptr, length uint32) (string, bool) {
	mem := mod.Memory()
	if mem == nil || length == 0 {
		return "", false
	}
	b, ok := mem.Read(ptr, length)
	if !ok {
		return "", false
	}
	return string(b), true
}

func boolResult(ok bool) uint64 {
	if ok {
		return 1
	}
	return 0
}

func (h *Host) open(_ context.Context, mod api.Module, stack []uint64) {
	ptr, length, access := api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeI32(stack[2])
	stack[0] = uint64(customio.HandleFallback)

	path, ok := readString(mod, ptr, length)
	if !ok {
		return
	}
	a := status.FileAccess(access)
	if !a.Valid() {
		return
	}
	b, ok := h.resolve()
	if !ok {
		return
	}
	handle := b.Open(path, a)
	h.logger.Debug("guest open", zap.String("path", path), zap.Stringer("access", a), zap.Stringer("result", handle))
	stack[0] = uint64(handle)
}

func (h *Host) filesize(_ context.Context, _ api.Module, stack []uint64) {
	handle := customio.Handle(stack[0])
	stack[0] = 0
	if handle == customio.HandleError {
		return
	}
	if b, ok := h.resolve(); ok {
		stack[0] = b.Filesize(handle)
	}
}

func (h *Host) close(_ context.Context, _ api.Module, stack []uint64) {
	handle := customio.Handle(stack[0])
	if handle == customio.HandleError {
		return
	}
	if b, ok := h.resolve(); ok {
		b.Close(handle)
	}
}

func (h *Host) read(_ context.Context, mod api.Module, stack []uint64) {
	ptr, length := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	offset, handle := stack[2], customio.Handle(stack[3])
	stack[0] = 0

	mem := mod.Memory()
	if mem == nil || handle == customio.HandleError {
		return
	}
	// Read straight into guest memory; the returned slice aliases it.
	buf, ok := mem.Read(ptr, length)
	if !ok {
		return
	}
	b, ok := h.resolve()
	if !ok {
		return
	}
	stack[0] = boolResult(b.Read(buf, offset, handle))
}

func (h *Host) write(_ context.Context, mod api.Module, stack []uint64) {
	ptr, length, handle := api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), customio.Handle(stack[2])
	stack[0] = 0

	mem := mod.Memory()
	if mem == nil || handle == customio.HandleError {
		return
	}
	data, ok := mem.Read(ptr, length)
	if !ok {
		return
	}
	b, ok := h.resolve()
	if !ok {
		return
	}
	stack[0] = boolResult(b.Write(data, handle))
}

func (h *Host) createPath(_ context.Context, mod api.Module, stack []uint64) {
	ptr, length := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	stack[0] = 0

	path, ok := readString(mod, ptr, length)
	if !ok {
		return
	}
	if b, ok := h.resolve(); ok {
		stack[0] = boolResult(b.CreatePath(path))
	}
}
