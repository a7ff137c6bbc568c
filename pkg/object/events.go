package object

import "sync"

// Transition identifies a lifecycle notification.
type Transition int

const (
	TransitionStarting Transition = iota
	TransitionStarted
	TransitionDisposing
	TransitionDisposed
)

// String returns a human-readable representation of the transition.
func (t Transition) String() string {
	switch t {
	case TransitionStarting:
		return "Starting"
	case TransitionStarted:
		return "Started"
	case TransitionDisposing:
		return "Disposing"
	case TransitionDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// PropertyChangedEvent is raised after a property value changed.
type PropertyChangedEvent struct {
	Source *Object
	Name   string
}

// LifecycleEvent is raised for start and disposal transitions.
type LifecycleEvent struct {
	Source     *Object
	Transition Transition
}

// ErrorsEvent carries errors reported through ReportErrors.
type ErrorsEvent struct {
	Source *Object
	Errors *AggregateError
}

// EventHandler receives notifications from an Object.
// Handlers are called synchronously from the goroutine that drains the
// object's notification queue, never while the object's lock is held.
type EventHandler interface {
	OnPropertyChanged(e PropertyChangedEvent)
	OnLifecycle(e LifecycleEvent)
	OnErrors(e ErrorsEvent)
}

// HandlerFuncs adapts optional functions to EventHandler. Nil fields are skipped.
type HandlerFuncs struct {
	PropertyChanged func(PropertyChangedEvent)
	Lifecycle       func(LifecycleEvent)
	Errors          func(ErrorsEvent)
}

func (h HandlerFuncs) OnPropertyChanged(e PropertyChangedEvent) {
	if h.PropertyChanged != nil {
		h.PropertyChanged(e)
	}
}

func (h HandlerFuncs) OnLifecycle(e LifecycleEvent) {
	if h.Lifecycle != nil {
		h.Lifecycle(e)
	}
}

func (h HandlerFuncs) OnErrors(e ErrorsEvent) {
	if h.Errors != nil {
		h.Errors(e)
	}
}

// event is one queued notification; exactly one of the fields is set.
type event struct {
	seq       uint64
	changed   *PropertyChangedEvent
	lifecycle *LifecycleEvent
	errors    *ErrorsEvent
}

func (e event) deliver(h EventHandler) {
	switch {
	case e.changed != nil:
		h.OnPropertyChanged(*e.changed)
	case e.lifecycle != nil:
		h.OnLifecycle(*e.lifecycle)
	case e.errors != nil:
		h.OnErrors(*e.errors)
	}
}

// dispatcher queues notifications and delivers them in queue order.
//
// One goroutine drains at a time. Every other caller of drain blocks until
// the events queued before its call have been delivered, except a handler
// calling back into the object: its events are delivered by the draining
// goroutine once the handler returns.
type dispatcher struct {
	mu       sync.Mutex
	cond     *sync.Cond
	handlers []*handlerEntry
	queue    []event

	queued    uint64 // seq of the last queued event
	delivered uint64 // seq of the last delivered event

	draining bool
	drainer  uint64 // goroutine draining the queue
}

type handlerEntry struct {
	h EventHandler
}

func (d *dispatcher) add(h EventHandler) func() {
	entry := &handlerEntry{h: h}

	d.mu.Lock()
	handlers := make([]*handlerEntry, 0, len(d.handlers)+1)
	handlers = append(handlers, d.handlers...)
	d.handlers = append(handlers, entry)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(entry) })
	}
}

func (d *dispatcher) remove(entry *handlerEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handlers := make([]*handlerEntry, 0, len(d.handlers))
	for _, e := range d.handlers {
		if e != entry {
			handlers = append(handlers, e)
		}
	}
	d.handlers = handlers
}

func (d *dispatcher) hasHandlers() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers) > 0
}

func (d *dispatcher) enqueue(e event) {
	d.mu.Lock()
	d.queued++
	e.seq = d.queued
	d.queue = append(d.queue, e)
	d.mu.Unlock()
}

// drain returns once every event queued before the call has been delivered.
// If another goroutine is draining it waits for that goroutine; if the
// caller is the draining goroutine (a handler calling back) it returns at once.
func (d *dispatcher) drain() {
	d.mu.Lock()
	target := d.queued
	if d.delivered >= target {
		d.mu.Unlock()
		return
	}

	gid := goroutineID()
	if d.draining {
		if d.drainer == gid {
			d.mu.Unlock()
			return
		}
		if d.cond == nil {
			d.cond = sync.NewCond(&d.mu)
		}
		for d.draining && d.delivered < target {
			d.cond.Wait()
		}
		if d.delivered >= target {
			d.mu.Unlock()
			return
		}
		// The previous drainer panicked; take over.
	}

	d.draining = true
	d.drainer = gid

	var inflight uint64
	finished := false
	defer func() {
		if !finished {
			// A panicking handler must not leave the queue marked as draining.
			d.mu.Lock()
			if inflight > d.delivered {
				d.delivered = inflight
			}
			d.release()
			d.mu.Unlock()
		}
	}()

	for len(d.queue) > 0 {
		e := d.queue[0]
		d.queue[0] = event{}
		d.queue = d.queue[1:]
		handlers := d.handlers
		inflight = e.seq
		d.mu.Unlock()

		for _, entry := range handlers {
			e.deliver(entry.h)
		}

		d.mu.Lock()
		d.delivered = e.seq
		if d.cond != nil {
			d.cond.Broadcast()
		}
	}
	// Cleared under the same critical section that saw the empty queue,
	// so a concurrent enqueue either lands in the loop above or drains itself.
	d.release()
	finished = true
	d.mu.Unlock()
}

// release ends a drain. Called with mu held.
func (d *dispatcher) release() {
	d.draining = false
	d.drainer = 0
	if d.cond != nil {
		d.cond.Broadcast()
	}
}
