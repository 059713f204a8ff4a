package obsws

import "sync"

type emitter struct {
	mu        sync.RWMutex
	next      int
	listeners map[Event]map[int]Listener
}

func newEmitter() *emitter {
	return &emitter{listeners: make(map[Event]map[int]Listener)}
}

func (e *emitter) on(ev Event, fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.next
	e.next++
	if e.listeners[ev] == nil {
		e.listeners[ev] = make(map[int]Listener)
	}
	e.listeners[ev][id] = fn
	return func() {
		e.mu.Lock()
		delete(e.listeners[ev], id)
		e.mu.Unlock()
	}
}

func (e *emitter) removeAll() {
	e.mu.Lock()
	e.listeners = make(map[Event]map[int]Listener)
	e.mu.Unlock()
}

// emit calls listeners outside the lock so they may subscribe or unsubscribe.
func (e *emitter) emit(ev Event, err error) {
	e.mu.RLock()
	fns := make([]Listener, 0, len(e.listeners[ev]))
	for _, fn := range e.listeners[ev] {
		fns = append(fns, fn)
	}
	e.mu.RUnlock()
	for _, fn := range fns {
		fn(ev, err)
	}
}
