package await

import (
	"errors"
	"runtime/debug"
)

type status int

const (
	statusRunning status = iota
	statusSuspended
	statusSucceeded
	statusFailed
)

// errGoexit is stored when a task body terminates via runtime.Goexit.
// await does not support runtime.Goexit in task bodies; the body is failed
// instead of being left incomplete forever.
var errGoexit = errors.New("await: task body called runtime.Goexit")

// abandonSignal unwinds a task body from its suspension point when the task
// is closed before completing.
type abandonSignal struct{}

// A Body is the computation a [Task] runs: an ordinary function that produces
// a value or an error.
// Inside a Body, use [Await] to retrieve the result of another task, and
// [Coroutine.Suspend] to pause until the driving side calls [Task.Resume].
//
// A Body runs exactly once per task, from creation to its terminal state.
type Body[T any] func(co *Coroutine) (T, error)

// core is the part of a task shared between the owning handle and the body
// goroutine. The two sides exchange an unbuffered-channel baton, so exactly
// one of them runs at any moment and the plain fields need no locking.
type core struct {
	toBody    chan struct{}
	toCaller  chan struct{}
	status    status
	abandoned bool
	err       error
	trace     Trace
	reporter  *Reporter
}

// fail moves the task to its terminal failure state and reports the failure.
// This is the only place a report is made, so reporting happens exactly once
// per task whose own execution failed uncaught, with that task's own trace.
func (c *core) fail(err error) {
	c.err = err
	c.status = statusFailed
	c.reporter.Report(failureKind(err), err.Error(), c.trace)
}

// A Coroutine is the body-side handle of a running [Task].
// It is passed to the task's [Body] and must not escape it: a Coroutine is
// only valid while its body has the baton.
type Coroutine struct {
	c *core
}

// Suspend pauses the body until the driving side calls [Task.Resume].
// Everything between two suspension points runs as one uninterruptible
// synchronous step.
//
// If the task is closed while suspended, Suspend never returns: the body
// unwinds from the suspension point without running any further.
func (co *Coroutine) Suspend() {
	c := co.c
	c.status = statusSuspended
	c.toCaller <- struct{}{}
	<-c.toBody
	if c.abandoned {
		panic(abandonSignal{})
	}
	c.status = statusRunning
}

// A Task is a single execution of a [Body], owning the computation, a [Trace]
// captured at creation, and an outcome slot written exactly once.
//
// A task starts eagerly: [New] runs the body up to its first suspension or
// its terminal state before returning, so a body that never suspends is
// already terminal when New returns.
//
// A task's failure protocol distinguishes propagation from reporting.
// The stored failure propagates one level per [Await] (or [Task.Result])
// call, and each level independently decides to catch or to pass it on; the
// [Reporter] fires once at every level whose own body lets the failure reach
// that level's terminal state, each time with that level's own creation
// trace. A body that catches an inner failure produces a success (or its own
// failure) and the caught failure is never reported for that level. Callers
// who want a single report must catch at the outermost boundary.
//
// A *Task is a single-owner handle. Passing the pointer transfers ownership;
// [Task.Close] destroys the task, and using a closed task fails fast.
// A task is not safe for concurrent use: one logical thread of execution
// drives it at a time.
type Task[T any] struct {
	c     *core
	value T
}

// New creates a [Task], captures its creation [Trace], and runs body eagerly
// until it suspends or completes.
//
// By default the trace is read from the calling goroutine's stack and no
// failure reporting takes place; see [WithSink], [WithProvider] and
// [WithMaxDepth].
//
// Caveat: a suspended task that is never resumed nor closed pins a goroutine
// for the life of the program.
func New[T any](body Body[T], opts ...Option) *Task[T] {
	o := settings{depth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}

	provider := o.provider
	if provider == nil {
		provider = defaultProvider()
	}

	t := &Task[T]{c: &core{
		toBody:   make(chan struct{}),
		toCaller: make(chan struct{}),
		trace:    captureTrace(provider, o.depth),
		reporter: o.reporter,
	}}

	go t.run(body)
	<-t.c.toCaller

	return t
}

func (t *Task[T]) run(body Body[T]) {
	c := t.c
	done := false

	defer func() {
		if !done {
			switch v := recover(); {
			case v == nil:
				c.fail(errGoexit)
			default:
				if _, ok := v.(abandonSignal); !ok {
					c.fail(&PanicError{Value: v, Stack: debug.Stack()})
				}
			}
		}
		c.toCaller <- struct{}{}
	}()

	v, err := body(&Coroutine{c: c})
	if err != nil {
		c.fail(err)
	} else {
		t.value = v
		c.status = statusSucceeded
	}
	done = true
}

// Resume continues a suspended task until its next suspension or its terminal
// state. Resuming a task that is already terminal is a no-op, not a retry:
// a body runs exactly once.
//
// Resume panics if t has been closed.
func (t *Task[T]) Resume() {
	c := t.c
	if c == nil {
		panic("await: use of closed task")
	}
	if c.status != statusSuspended {
		return
	}
	c.toBody <- struct{}{}
	<-c.toCaller
}

// Ready reports whether t has reached its terminal state.
// Ready reports false on a closed task.
func (t *Task[T]) Ready() bool {
	c := t.c
	if c == nil {
		return false
	}
	return c.status == statusSucceeded || c.status == statusFailed
}

// Result retrieves the outcome of t.
//
// If t succeeded, Result returns the produced value.
// If t failed, Result returns the stored failure; retrieval does not consume
// it, so several awaiting levels may each retrieve the same failure.
// Reporting is not retrieval's business: if the failure was reportable, that
// already happened when t reached its terminal state.
//
// Calling Result before t is ready is a usage error; it returns
// [ErrNotCompleted] and nothing is reported.
// Result panics if t has been closed.
func (t *Task[T]) Result() (T, error) {
	c := t.c
	if c == nil {
		panic("await: use of closed task")
	}
	var zero T
	switch c.status {
	case statusSucceeded:
		return t.value, nil
	case statusFailed:
		return zero, c.err
	default:
		return zero, ErrNotCompleted
	}
}

// Trace returns the trace captured when t was created.
// The returned slice must not be modified.
//
// Trace panics if t has been closed.
func (t *Task[T]) Trace() Trace {
	c := t.c
	if c == nil {
		panic("await: use of closed task")
	}
	return c.trace
}

// Close destroys t, abandoning the computation if it has not completed.
// An abandoned body unwinds from its suspension point without running any
// further code past that point, without producing an outcome, and without
// reporting anything.
//
// Close is idempotent. After Close, [Task.Resume], [Task.Result] and
// [Task.Trace] panic, and [Task.Ready] reports false.
func (t *Task[T]) Close() {
	c := t.c
	if c == nil {
		return
	}
	t.c = nil
	if c.status == statusSuspended {
		c.abandoned = true
		c.toBody <- struct{}{}
		<-c.toCaller
	}
}

// Await retrieves the result of inner from within a task body.
// If inner is not yet terminal, it is driven to completion first by resuming
// it. A failure returned by Await is an ordinary error inside the awaiting
// body: return it to fail this task too (each level reporting with its own
// trace), or handle it locally, in which case it is this level's business
// alone and is never reported for this level.
//
// Caveat: Await does not return until inner is terminal; awaiting a task
// whose body suspends forever loops forever.
func Await[U any](co *Coroutine, inner *Task[U]) (U, error) {
	if co == nil || co.c == nil {
		panic("await: Await called outside of a task body")
	}
	for !inner.Ready() {
		inner.Resume()
	}
	return inner.Result()
}
