package resource

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("resource table closed")

// Table maps monotonically increasing handles to values of type T.
// A removed handle never resolves again, even if the same value is inserted later.
type Table[T any] struct {
	entries   map[Handle]T
	observers []*observerEntry
	next      Handle
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type observerEntry struct {
	o Observer
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		entries: make(map[Handle]T, 16),
	}
}

// Insert adds a value and returns its handle.
func (t *Table[T]) Insert(value T) (Handle, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}
	t.next++
	handle := t.next
	t.entries[handle] = value
	t.mu.Unlock()

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		Value:  value,
	})

	return handle, nil
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(handle Handle) (T, bool) {
	if handle == 0 {
		var zero T
		return zero, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.entries[handle]
	return v, ok
}

// Remove drops a resource and returns (value, true) if found.
// Values implementing Dropper are dropped after the entry is gone.
func (t *Table[T]) Remove(handle Handle) (T, bool) {
	var zero T
	if handle == 0 {
		return zero, false
	}

	t.mu.Lock()
	value, ok := t.entries[handle]
	if !ok {
		t.mu.Unlock()
		return zero, false
	}
	delete(t.entries, handle)
	t.mu.Unlock()

	if d, ok := any(value).(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events and returns a function
// that removes it again.
func (t *Table[T]) Subscribe(o Observer) (unsubscribe func()) {
	entry := &observerEntry{o: o}
	t.obsMu.Lock()
	t.observers = append(t.observers, entry)
	t.obsMu.Unlock()

	return func() {
		t.obsMu.Lock()
		defer t.obsMu.Unlock()
		for i, e := range t.observers {
			if e == entry {
				t.observers = append(t.observers[:i], t.observers[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of active resources.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Each iterates over a snapshot of the active resources.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.RLock()
	snapshot := make(map[Handle]T, len(t.entries))
	for h, v := range t.entries {
		snapshot[h] = v
	}
	t.mu.RUnlock()

	for h, v := range snapshot {
		if !fn(h, v) {
			return
		}
	}
}

// Clear drops all resources.
func (t *Table[T]) Clear() {
	// Collect handles first to avoid holding lock during Remove
	var handles []Handle
	t.Each(func(h Handle, _ T) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close drops all resources and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.Clear()
	return nil
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, entry := range t.observers {
		entry.o.OnResourceEvent(e)
	}
}
