package await

import (
	"fmt"
	"io"
)

// A Sink records unhandled task failures for offline diagnostics.
// Record is fire-and-forget: a [Reporter] never inspects what a Sink does
// with a report, and a Sink that panics is silenced.
//
// The trace argument is the one-way diagnostic text produced by
// [Trace.String]; it is not meant to be parsed back.
type Sink interface {
	Record(kind, message, trace string)
}

// A SinkFunc is a func(kind, message, trace string) that implements
// the [Sink] interface.
type SinkFunc func(kind, message, trace string)

// Record implements the [Sink] interface.
func (f SinkFunc) Record(kind, message, trace string) { f(kind, message, trace) }

// A Reporter forwards unhandled task failures to a [Sink].
//
// A Reporter never reports a failure that a task body caught itself, and it
// reports at most once per task instance; see [Task].
type Reporter struct {
	sink Sink
}

// NewReporter creates a [Reporter] that forwards to sink.
func NewReporter(sink Sink) *Reporter {
	return &Reporter{sink: sink}
}

// Report formats trace and forwards the failure to the sink.
// A nil Reporter, a nil sink, and a sink that panics are all tolerated:
// reporting must never perturb task completion.
func (r *Reporter) Report(kind, message string, trace Trace) {
	if r == nil || r.sink == nil {
		return
	}
	defer func() { _ = recover() }()
	r.sink.Record(kind, message, trace.String())
}

// A WriterSink writes each report to W as a banner-delimited block.
// It serves as a stand-in for a real crash-reporting service during
// development and in examples.
type WriterSink struct {
	W io.Writer
}

// Record implements the [Sink] interface.
func (s WriterSink) Record(kind, message, trace string) {
	fmt.Fprintf(s.W, "===== CRASH REPORT =====\n")
	fmt.Fprintf(s.W, "Kind: %s\n", kind)
	fmt.Fprintf(s.W, "Reason: %s\n", message)
	fmt.Fprintf(s.W, "Stack Trace:\n%s", trace)
	fmt.Fprintf(s.W, "========================\n")
}
