package cart

import "sync"

// Listener receives the state produced by each dispatched action.
type Listener func(State)

// Engine owns a cart snapshot and applies actions to it one at a time.
// Listeners run synchronously, in subscription order, after each action and
// must not dispatch back into the same engine.
type Engine struct {
	mu        sync.Mutex
	state     State
	listeners []subscription
	nextID    int
}

type subscription struct {
	id int
	fn Listener
}

// NewEngine returns an engine holding the empty cart.
func NewEngine() *Engine {
	return &Engine{state: NewState()}
}

// Dispatch reduces action into the current state, notifies listeners and
// returns the new snapshot.
func (e *Engine) Dispatch(action Action) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = Reduce(e.state, action)
	for _, sub := range e.listeners {
		sub.fn(e.state.Clone())
	}
	return e.state.Clone()
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Subscribe registers fn and returns a func that removes it.
func (e *Engine) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, sub := range e.listeners {
				if sub.id == id {
					e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
