// Package await provides an asynchronous task primitive that remembers where
// it came from.
//
// A [Task] is a single execution of an ordinary function, started eagerly at
// creation and resumable across explicit suspension points. Creating a task
// snapshots the creator's call stack into a [Trace]; if the task's body later
// fails without catching that failure itself, the failure is formatted
// together with that trace and handed to a crash-reporting [Sink], exactly
// once, at the moment the task reaches its terminal state.
//
// # Eager Start
//
// [New] runs the body immediately, on the caller's schedule, up to the body's
// first suspension or its terminal state. A body that never suspends is
// already terminal when New returns; the one that suspends is continued by
// [Task.Resume], one uninterruptible synchronous step per call. Nothing here
// spawns workers or timers: whoever calls New and Resume is the scheduler.
//
// # Propagation vs. Reporting
//
// Failures travel two independent roads.
//
// Propagation is what [Task.Result] and [Await] do: the stored failure of
// a completed task is returned to whoever retrieves it, as many times as it
// is retrieved. A body that awaits a failing task receives the failure as an
// ordinary error and decides locally what to do with it.
//
// Reporting is what happens when a body decides wrong, or not at all. Any
// failure a body lets escape becomes that task's own terminal failure and is
// recorded once with that task's own creation trace, not with the trace of
// whichever inner task originally failed. In a chain of awaiting tasks where
// nobody catches, every level therefore files its own report. That is
// deliberate: each report carries the full context of one boundary. Catch at
// the outermost level if one report is all that's wanted.
//
// # One Logical Thread
//
// A task's body runs on its own goroutine, but the body and the driving
// caller exchange a baton: exactly one of them runs at any moment, and
// control transfers only at creation, suspension, resumption and completion.
// There is no locking because there is nothing concurrent. Consequently,
// a task must be driven by one logical thread of execution at a time.
//
// # Ownership
//
// A *Task is a single-owner handle. Passing the pointer transfers ownership.
// [Task.Close] destroys a task; a suspended body unwinds from its suspension
// point without running further and without reporting. Using a closed task
// fails fast.
package await
