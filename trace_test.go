package await

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	frames  []uintptr
	symbols map[uintptr]SymbolInfo
}

func (p fakeProvider) Frames(max int) []uintptr {
	if len(p.frames) > max {
		return p.frames[:max]
	}
	return p.frames
}

func (p fakeProvider) Symbol(addr uintptr) (SymbolInfo, bool) {
	info, ok := p.symbols[addr]
	return info, ok
}

func TestCaptureSkipsCaptureMachinery(t *testing.T) {
	p := fakeProvider{frames: []uintptr{0x1, 0x2, 0x10, 0x11}}

	tr := captureTrace(p, DefaultMaxDepth)

	require.Len(t, tr, 2)
	assert.Equal(t, uintptr(0x10), tr[0].Addr)
	assert.Equal(t, uintptr(0x11), tr[1].Addr)
}

func TestCaptureToleratesEmptyProvider(t *testing.T) {
	assert.Empty(t, captureTrace(fakeProvider{}, DefaultMaxDepth))
	assert.Empty(t, captureTrace(fakeProvider{frames: []uintptr{0x1, 0x2}}, DefaultMaxDepth))
}

func TestCaptureBoundsDepth(t *testing.T) {
	p := fakeProvider{frames: []uintptr{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8}}

	tr := captureTrace(p, 3)

	require.Len(t, tr, 1, "only max frames get examined before skipping")
	assert.Equal(t, uintptr(0x3), tr[0].Addr)
}

func TestCaptureResolvesSymbols(t *testing.T) {
	p := fakeProvider{
		frames: []uintptr{0x1, 0x2, 0x100, 0x200, 0x300},
		symbols: map[uintptr]SymbolInfo{
			0x100: {Name: "pkg.Fn", Module: "/lib/pkg.go", Base: 0xc0},
			0x300: {Name: "pkg.NoBase"},
		},
	}

	tr := captureTrace(p, DefaultMaxDepth)
	require.Len(t, tr, 3)

	want := Trace{
		{Addr: 0x100, Symbol: "pkg.Fn", Module: "/lib/pkg.go", Offset: 0x40},
		{Addr: 0x200},
		{Addr: 0x300, Symbol: "pkg.NoBase"},
	}
	if diff := cmp.Diff(want, tr); diff != "" {
		t.Errorf("captured trace mismatch (-want +got):\n%s", diff)
	}
}

func TestTraceStringRendering(t *testing.T) {
	tr := Trace{
		{Addr: 0x1000, Symbol: "main.work", Module: "/src/main.go", Offset: 64},
		{Addr: 0x2000},
		{Addr: 0x3000, Symbol: "main.main"},
	}

	want := "#0: 0x1000 main.work +64 in /src/main.go\n" +
		"#1: 0x2000 ???\n" +
		"#2: 0x3000 main.main\n"

	if diff := cmp.Diff(want, tr.String()); diff != "" {
		t.Errorf("rendering mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, tr.String(), tr.String(), "rendering must be deterministic")
	assert.Empty(t, Trace(nil).String())
}

func TestRuntimeProvider(t *testing.T) {
	p := NewRuntimeProvider()

	pcs := p.Frames(32)
	require.NotEmpty(t, pcs)

	info, ok := p.Symbol(pcs[0])
	require.True(t, ok)
	assert.Contains(t, info.Name, "TestRuntimeProvider")
	assert.True(t, strings.HasSuffix(info.Module, "trace_test.go"))
	assert.NotZero(t, info.Base)

	// Second resolution comes from the cache and must agree.
	cached, ok := p.Symbol(pcs[0])
	require.True(t, ok)
	assert.Equal(t, info, cached)
}
