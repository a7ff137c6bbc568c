package object_test

import (
	"sync"

	"github.com/appserverkit/appserver/pkg/object"
)

// recorder collects notifications as strings in delivery order.
type recorder struct {
	mu     sync.Mutex
	events []string
	errs   []*object.AggregateError
}

func (r *recorder) OnPropertyChanged(e object.PropertyChangedEvent) {
	r.add("changed:" + e.Name)
}

func (r *recorder) OnLifecycle(e object.LifecycleEvent) {
	r.add(e.Transition.String())
}

func (r *recorder) OnErrors(e object.ErrorsEvent) {
	r.mu.Lock()
	r.errs = append(r.errs, e.Errors)
	r.mu.Unlock()
	r.add("errors")
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.errs = nil
	r.mu.Unlock()
}
