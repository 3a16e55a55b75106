// Package viewstate tracks the idle/loading/success/error lifecycle of a
// single task view and produces the message shown for each failure.
package viewstate

import (
	"context"
	"errors"
	"sync"

	"sanogenic/internal/task"
)

type State string

const (
	Idle    State = "idle"
	Loading State = "loading"
	Success State = "success"
	Error   State = "error"
)

// ErrBusy is returned by Submit while a previous submission is loading.
var ErrBusy = errors.New("viewstate: a request is already in flight")

// Runner is satisfied by *orchestrator.Service.
type Runner interface {
	Run(ctx context.Context, req task.Request) (task.Result, error)
}

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	Seq        uint64
	State      State
	Kind       task.Kind
	Result     task.Result
	ErrorKind  task.ErrorKind
	Message    string
	Diagnostic string
}

type Listener func(Snapshot)

type Option func(*Controller)

// WithDiagnostics makes Message include diagnostic detail.
func WithDiagnostics(show bool) Option {
	return func(c *Controller) { c.showDiag = show }
}

// WithListener registers l at construction time.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listeners[c.nextID] = l; c.nextID++ }
}

type Controller struct {
	runner   Runner
	showDiag bool

	mu        sync.Mutex
	snap      Snapshot
	listeners map[int]Listener
	nextID    int
}

func New(r Runner, opts ...Option) *Controller {
	c := &Controller{
		runner:    r,
		snap:      Snapshot{State: Idle},
		listeners: map[int]Listener{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Subscribe registers l for every transition and returns a function that
// removes it.
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Submit moves Idle/Success/Error to Loading, runs req and settles on Success
// or Error. A result that arrives after Reset is discarded.
func (c *Controller) Submit(ctx context.Context, req task.Request) (task.Result, error) {
	c.mu.Lock()
	if c.snap.State == Loading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	kind := task.Kind("")
	if req != nil {
		kind = req.Kind()
	}
	seq := c.snap.Seq + 1
	loading := Snapshot{Seq: seq, State: Loading, Kind: kind}
	c.snap = loading
	ls := c.listenersLocked()
	c.mu.Unlock()
	notify(ls, loading)

	res, err := c.runner.Run(ctx, req)

	next := Snapshot{Seq: seq, Kind: kind}
	if err != nil {
		next.State = Error
		next.ErrorKind = task.KindOf(err)
		next.Message = Message(err, false)
		if c.showDiag {
			next.Diagnostic = Diagnostic(err)
		}
	} else {
		next.State = Success
		next.Result = res
	}

	c.mu.Lock()
	if c.snap.Seq != seq {
		c.mu.Unlock()
		return res, err
	}
	c.snap = next
	ls = c.listenersLocked()
	c.mu.Unlock()
	notify(ls, next)
	return res, err
}

// Reset clears result and error and returns to Idle. An in-flight submission
// keeps running but its outcome is no longer shown.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.snap = Snapshot{Seq: c.snap.Seq + 1, State: Idle}
	snap := c.snap
	ls := c.listenersLocked()
	c.mu.Unlock()
	notify(ls, snap)
}

func (c *Controller) listenersLocked() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}

func notify(ls []Listener, s Snapshot) {
	for _, l := range ls {
		l(s)
	}
}
