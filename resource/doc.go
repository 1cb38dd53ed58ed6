// Package resource provides handle tables for host-side values that are
// referenced by an opaque integer from foreign code.
//
// The Table maps monotonically increasing handles to Go values:
//
//	table := resource.NewTable[*os.File]()
//
//	// Insert a value, get a handle
//	handle, err := table.Insert(f)
//
//	// Retrieve value by handle
//	f, ok := table.Get(handle)
//
//	// Remove and get value
//	f, ok := table.Remove(handle)
//
// Handles are never reused. A handle that was removed keeps failing lookups
// for the lifetime of the table, so a stale handle held by foreign code cannot
// reach a newer value.
//
// # Observers
//
// Register observers to track resource lifecycle events:
//
//	stop := table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventCreated:
//	        log.Printf("resource %d created", e.Handle)
//	    case resource.EventDropped:
//	        log.Printf("resource %d dropped", e.Handle)
//	    }
//	}))
//	defer stop()
//
// Values implementing Dropper are dropped when removed, and when the table is
// closed.
package resource
