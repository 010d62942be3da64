package await

type settings struct {
	reporter *Reporter
	provider Provider
	depth    int
}

// An Option configures a [Task] at creation time.
type Option func(*settings)

// WithReporter sets the [Reporter] that receives the task's failure if its
// body lets one reach the task's terminal state.
// Without a reporter, nothing is reported.
func WithReporter(r *Reporter) Option {
	return func(o *settings) { o.reporter = r }
}

// WithSink is shorthand for WithReporter(NewReporter(sink)).
func WithSink(sink Sink) Option {
	return func(o *settings) { o.reporter = NewReporter(sink) }
}

// WithProvider sets the frame [Provider] used to capture the task's creation
// trace. The default provider reads the calling goroutine's stack.
func WithProvider(p Provider) Option {
	return func(o *settings) { o.provider = p }
}

// WithMaxDepth bounds the number of frames examined when capturing the
// task's creation trace. The default is [DefaultMaxDepth].
func WithMaxDepth(n int) Option {
	return func(o *settings) { o.depth = n }
}
