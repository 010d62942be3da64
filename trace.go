package await

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxDepth is the maximum number of frames a [Task] examines when
// capturing its creation trace, unless overridden with [WithMaxDepth].
const DefaultMaxDepth = 128

// A Frame describes one captured execution point.
// Symbol and Module are best-effort; either may be empty when the frame
// provider could not resolve the address.
// Offset is the distance from the start of the containing function, or zero
// if unknown.
type Frame struct {
	Addr   uintptr
	Symbol string
	Module string
	Offset uintptr
}

// A Trace is an ordered snapshot of stack frames, captured once when a [Task]
// is created and never recaptured.
// Index 0 is the frame nearest the capture point, not counting the capture
// machinery itself.
// A Trace may be empty if the frame provider yielded nothing; an empty Trace
// is not an error.
type Trace []Frame

// String renders tr one line per frame:
//
//	#0: 0x4b2d15 main.work +64 in /src/app/main.go
//
// The offset clause is omitted when the offset is zero, and the module clause
// is omitted when the module is unknown.
// The rendering is deterministic: a fixed Trace always produces the same text.
func (tr Trace) String() string {
	var b strings.Builder
	for i, f := range tr {
		fmt.Fprintf(&b, "#%d: %#x ", i, f.Addr)
		if f.Symbol != "" {
			b.WriteString(f.Symbol)
		} else {
			b.WriteString("???")
		}
		if f.Offset > 0 {
			fmt.Fprintf(&b, " +%d", f.Offset)
		}
		if f.Module != "" {
			fmt.Fprintf(&b, " in %s", f.Module)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// SymbolInfo is the best-effort resolution of a frame address.
// Any field may be left zero when unknown.
type SymbolInfo struct {
	Name   string
	Module string
	Base   uintptr // start address of the containing function
}

// A Provider supplies raw frame addresses and their symbolic resolution.
// The zero results are tolerated everywhere: a Provider that returns no
// frames, or resolves no symbols, degrades captured traces rather than
// failing task creation.
//
// The default provider reads the calling goroutine's stack via the runtime;
// see [NewRuntimeProvider].
type Provider interface {
	// Frames returns the raw addresses of the current call stack,
	// innermost first, examining at most max frames.
	Frames(max int) []uintptr

	// Symbol resolves a single frame address.
	// The second return value reports whether anything was resolved.
	Symbol(addr uintptr) (SymbolInfo, bool)
}

// captureTrace builds a Trace from the current execution point.
// The two frames belonging to the capture machinery (this function and the
// [New] wrapper that called it) are skipped, so index 0 of the result is
// the creator of the task.
func captureTrace(p Provider, depth int) Trace {
	const skip = 2

	pcs := p.Frames(depth)
	if len(pcs) <= skip {
		return nil
	}
	pcs = pcs[skip:]

	tr := make(Trace, 0, len(pcs))
	for _, pc := range pcs {
		f := Frame{Addr: pc}
		if info, ok := p.Symbol(pc); ok {
			f.Symbol = info.Name
			f.Module = info.Module
			if info.Base != 0 && pc >= info.Base {
				f.Offset = pc - info.Base
			}
		}
		tr = append(tr, f)
	}
	return tr
}

// symbolCacheSize bounds the per-provider resolution cache.
// Address sets are small and hot: the same creation sites recur for every
// task a program spawns.
const symbolCacheSize = 512

// A RuntimeProvider is the default [Provider].
// It reads frame addresses with [runtime.Callers] and resolves them with
// [runtime.CallersFrames], caching resolutions per address.
//
// A RuntimeProvider is safe for concurrent use.
type RuntimeProvider struct {
	symbols *lru.Cache[uintptr, SymbolInfo]
}

// NewRuntimeProvider creates a new [RuntimeProvider].
func NewRuntimeProvider() *RuntimeProvider {
	cache, err := lru.New[uintptr, SymbolInfo](symbolCacheSize)
	if err != nil {
		panic("await: " + err.Error())
	}
	return &RuntimeProvider{symbols: cache}
}

// Frames implements [Provider].
func (p *RuntimeProvider) Frames(max int) []uintptr {
	if max <= 0 {
		return nil
	}
	pcs := make([]uintptr, max)
	n := runtime.Callers(2, pcs)
	return pcs[:n]
}

// Symbol implements [Provider].
func (p *RuntimeProvider) Symbol(addr uintptr) (SymbolInfo, bool) {
	if info, ok := p.symbols.Get(addr); ok {
		return info, info.Name != ""
	}

	frames := runtime.CallersFrames([]uintptr{addr})
	f, _ := frames.Next()

	info := SymbolInfo{
		Name:   f.Function,
		Module: f.File,
		Base:   f.Entry,
	}
	p.symbols.Add(addr, info)

	return info, info.Name != ""
}

var defaultProvider = sync.OnceValue(func() Provider {
	return NewRuntimeProvider()
})
