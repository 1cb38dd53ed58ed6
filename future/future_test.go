package future

import (
	"context"
	stderrors "errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/r3d-bridge/errors"
)

type job struct {
	tag      int
	inFlight atomic.Bool
}

var errFailed = errors.New(errors.PhaseComplete, errors.KindDecodeFailed).Build()

func mapCode(phase errors.Phase, code int32) error {
	if code == 0 {
		return nil
	}
	return errors.New(phase, errors.KindDecodeFailed).Status("failed", code).Build()
}

// engine records tokens instead of calling back, so tests control completion.
type engine struct {
	mu     sync.Mutex
	tokens []uintptr
	reject int32
}

func (e *engine) submit(token uintptr) int32 {
	if e.reject != 0 {
		return e.reject
	}
	e.mu.Lock()
	e.tokens = append(e.tokens, token)
	e.mu.Unlock()
	return 0
}

func submitJob(t *testing.T, r *Registry, e *engine, j *job) *Future[*job] {
	t.Helper()
	j.inFlight.Store(true)
	fut, err := Submit(r, Submission[*job]{
		Payload: j,
		Map:     mapCode,
		Submit:  e.submit,
		Settle:  func(j *job) { j.inFlight.Store(false) },
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return fut
}

func TestSubmit_ResolvesExactlyOnce(t *testing.T) {
	r := NewRegistry()
	e := &engine{}
	j := &job{tag: 7}
	fut := submitJob(t, r, e, j)

	if fut.Done() {
		t.Fatal("future done before delivery")
	}
	if _, ok := fut.Poll(WakerFunc(func() {})); ok {
		t.Fatal("Poll ready before delivery")
	}

	if !r.Deliver(e.tokens[0], 0) {
		t.Fatal("Deliver returned false")
	}
	if r.Deliver(e.tokens[0], 0) {
		t.Fatal("duplicate Deliver should be ignored")
	}

	got, err := fut.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got != j || got.tag != 7 {
		t.Fatalf("got job %+v, want tag 7", got)
	}
	if j.inFlight.Load() {
		t.Fatal("settle did not run")
	}
	if r.Pending() != 0 {
		t.Fatalf("Pending = %d", r.Pending())
	}
}

func TestSubmit_SynchronousRejection(t *testing.T) {
	r := NewRegistry()
	e := &engine{reject: 4}
	j := &job{}
	j.inFlight.Store(true)

	fut, err := Submit(r, Submission[*job]{
		Payload: j,
		Map:     mapCode,
		Submit:  e.submit,
		Settle:  func(j *job) { j.inFlight.Store(false) },
	})
	if fut != nil {
		t.Fatal("rejected submission returned a future")
	}
	var e2 *errors.Error
	if !stderrors.As(err, &e2) || e2.Phase != errors.PhaseSubmit || e2.Code != 4 {
		t.Fatalf("err = %v", err)
	}
	if j.inFlight.Load() {
		t.Fatal("settle should run on rejection")
	}
	if r.Pending() != 0 {
		t.Fatal("rejected submission left a pending entry")
	}
}

func TestSubmit_AsyncFailureReturnsPayload(t *testing.T) {
	r := NewRegistry()
	e := &engine{}
	j := &job{tag: 3}
	fut := submitJob(t, r, e, j)

	r.Deliver(e.tokens[0], 6)

	got, err := fut.Wait(context.Background())
	if !stderrors.Is(err, errFailed) {
		t.Fatalf("err = %v", err)
	}
	if got != j {
		t.Fatal("payload not returned with failure")
	}
}

func TestPoll_ResultTakenOnce(t *testing.T) {
	r := NewRegistry()
	e := &engine{}
	fut := submitJob(t, r, e, &job{})
	r.Deliver(e.tokens[0], 0)

	noop := WakerFunc(func() {})
	if res, ok := fut.Poll(noop); !ok || res.Err != nil {
		t.Fatalf("first poll: %v %v", ok, res.Err)
	}
	res, ok := fut.Poll(noop)
	if !ok {
		t.Fatal("second poll should be ready")
	}
	if !stderrors.Is(res.Err, errors.ErrResultTaken) {
		t.Fatalf("second poll err = %v", res.Err)
	}
}

func TestPoll_LastWakerWins(t *testing.T) {
	r := NewRegistry()
	e := &engine{}
	fut := submitJob(t, r, e, &job{})

	var first, second int
	fut.Poll(WakerFunc(func() { first++ }))
	fut.Poll(WakerFunc(func() { second++ }))

	r.Deliver(e.tokens[0], 0)

	if first != 0 || second != 1 {
		t.Fatalf("first=%d second=%d, want 0/1", first, second)
	}
}

func TestCell_DoubleResolvePanics(t *testing.T) {
	c := NewCell(1, nil)
	c.Resolve(nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second Resolve")
		}
	}()
	c.Resolve(nil)
}

func TestWait_ContextCancelledThenLateDelivery(t *testing.T) {
	r := NewRegistry()
	e := &engine{}
	fut := submitJob(t, r, e, &job{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := fut.Wait(ctx); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}

	// The future is abandoned; the late completion must still be absorbed.
	fut = nil
	if !r.Deliver(e.tokens[0], 0) {
		t.Fatal("late delivery was not routed")
	}
	if r.Pending() != 0 {
		t.Fatal("entry not released after late delivery")
	}
}

func TestResults_Channel(t *testing.T) {
	r := NewRegistry()
	e := &engine{}
	j := &job{tag: 11}
	fut := submitJob(t, r, e, j)

	ch := fut.Results()
	go r.Deliver(e.tokens[0], 0)

	select {
	case res := <-ch:
		if res.Err != nil || res.Value != j {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel not closed")
	}
}

func TestConcurrentOutOfOrderCompletion(t *testing.T) {
	const n = 64
	r := NewRegistry()
	e := &engine{}

	futs := make([]*Future[*job], n)
	for i := range futs {
		futs[i] = submitJob(t, r, e, &job{tag: i})
	}

	order := rand.New(rand.NewSource(1)).Perm(n)
	var wg sync.WaitGroup
	for _, idx := range order {
		wg.Add(1)
		go func(token uintptr) {
			defer wg.Done()
			r.Deliver(token, 0)
		}(e.tokens[idx])
	}

	for i, fut := range futs {
		got, err := fut.Wait(context.Background())
		if err != nil {
			t.Fatalf("job %d: %v", i, err)
		}
		if got.tag != i {
			t.Fatalf("future %d resolved with job %d", i, got.tag)
		}
	}
	wg.Wait()
}

func TestDeliver_UnknownTokenLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	r := NewRegistry()
	if r.Deliver(0, 0) {
		t.Fatal("zero token should be rejected")
	}
	if r.Deliver(12345, 0) {
		t.Fatal("unknown token should be rejected")
	}
	if logs.Len() != 2 {
		t.Fatalf("logged %d entries, want 2", logs.Len())
	}
	if logs.FilterMessage("completion for unknown token").Len() != 1 {
		t.Fatal("missing unknown token log entry")
	}
}
