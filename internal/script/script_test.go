package script

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/internal/backing"
)

func heapOpts() *alloc.Options {
	return &alloc.Options{Source: backing.Heap{}}
}

func TestParse(t *testing.T) {
	cmds, err := ParseString(`
# setup
init 4096
alloc a 100   # first
ALLOC b 36

free a
offset b
dump
stats
verify
`)
	require.NoError(t, err)
	require.Equal(t, []Command{
		{Line: 3, Op: OpInit, Size: 4096},
		{Line: 4, Op: OpAlloc, Name: "a", Size: 100},
		{Line: 5, Op: OpAlloc, Name: "b", Size: 36},
		{Line: 7, Op: OpFree, Name: "a"},
		{Line: 8, Op: OpOffset, Name: "b"},
		{Line: 9, Op: OpDump},
		{Line: 10, Op: OpStats},
		{Line: 11, Op: OpVerify},
	}, cmds)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unknown command", "init 4096\nrealloc a 5\n", 2},
		{"missing size", "alloc a\n", 1},
		{"extra argument", "dump now\n", 1},
		{"non-numeric size", "\n\nalloc a lots\n", 3},
		{"non-numeric init", "init big\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.src)
			require.Error(t, err)
			require.True(t, IsSyntax(err))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParse_UTF16WithBOM(t *testing.T) {
	src := "alloc x 8\r\ndump\r\n"
	b := []byte{0xFF, 0xFE}
	for _, r := range src {
		b = append(b, byte(r), 0)
	}

	cmds, err := Parse(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, Command{Line: 1, Op: OpAlloc, Name: "x", Size: 8}, cmds[0])
	assert.Equal(t, OpDump, cmds[1].Op)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "alloc a 10", Command{Op: OpAlloc, Name: "a", Size: 10}.String())
	assert.Equal(t, "init 4096", Command{Op: OpInit, Size: 4096}.String())
	assert.Equal(t, "free a", Command{Op: OpFree, Name: "a"}.String())
	assert.Equal(t, "dump", Command{Op: OpDump}.String())
}

// TestRunner_CoalesceScenario frees two neighbours and checks the dump shows
// them merged.
func TestRunner_CoalesceScenario(t *testing.T) {
	cmds, err := ParseString(`
init 4096
alloc a 24
alloc b 24
alloc c 4024
free a
free b
offset c
dump
verify
`)
	require.NoError(t, err)

	var out bytes.Buffer
	r := NewRunner(cmds, &out, heapOpts())
	defer r.Close()
	require.NoError(t, r.Run())

	got := out.String()
	assert.Contains(t, got, "init(4096) -> 4096 bytes\n")
	assert.Contains(t, got, "a = alloc(24) -> +00008\n")
	assert.Contains(t, got, "b = alloc(24) -> +00040\n")
	assert.Contains(t, got, "c at 72\n")
	assert.Contains(t, got, "+00000 (F,   64) +00064 (A, 4032) \n")
	assert.Contains(t, got, "verify: ok\n")
	require.Equal(t, []int{0}, r.Allocator().FreeOffsets())
}

func TestRunner_ImplicitInit(t *testing.T) {
	cmds, err := ParseString("alloc a 10\n")
	require.NoError(t, err)

	var out bytes.Buffer
	r := NewRunner(cmds, &out, heapOpts())
	defer r.Close()
	require.NoError(t, r.Run())
	require.NotNil(t, r.Allocator())
	assert.Equal(t, 4096, r.Allocator().Arena().Size())
	assert.True(t, strings.HasPrefix(out.String(), "init(4096)"))
}

func TestRunner_OutOfMemoryContinues(t *testing.T) {
	cmds, err := ParseString("alloc big 5000\nalloc small 10\n")
	require.NoError(t, err)

	var out bytes.Buffer
	r := NewRunner(cmds, &out, heapOpts())
	defer r.Close()
	require.NoError(t, r.Run())

	_, ok := r.Ref("big")
	assert.False(t, ok)
	ref, ok := r.Ref("small")
	assert.True(t, ok)
	assert.Equal(t, alloc.Ref(8), ref)
	assert.Contains(t, out.String(), "big = alloc(5000) failed")
}

func TestRunner_DoubleFreeStops(t *testing.T) {
	cmds, err := ParseString("alloc a 10\nfree a\nfree a\ndump\n")
	require.NoError(t, err)

	r := NewRunner(cmds, io.Discard, heapOpts())
	defer r.Close()
	err = r.Run()
	require.ErrorIs(t, err, alloc.ErrInvalidFree)
	assert.Contains(t, err.Error(), "line 3")
	assert.Equal(t, 3, r.PC())
	assert.False(t, r.Done())
}

func TestRunner_UnknownName(t *testing.T) {
	cmds, err := ParseString("free nope\n")
	require.NoError(t, err)

	r := NewRunner(cmds, io.Discard, heapOpts())
	defer r.Close()
	require.ErrorIs(t, r.Run(), ErrUnknownName)
}

func TestRunner_StepAndReinit(t *testing.T) {
	cmds, err := ParseString("init 4096\nalloc a 10\ninit 8192\n")
	require.NoError(t, err)

	src := backing.Counting(nil)
	r := NewRunner(cmds, io.Discard, &alloc.Options{Source: src})

	cmd, err := r.Step()
	require.NoError(t, err)
	assert.Equal(t, OpInit, cmd.Op)
	_, err = r.Step()
	require.NoError(t, err)
	_, ok := r.Ref("a")
	require.True(t, ok)

	_, err = r.Step()
	require.NoError(t, err)
	assert.Equal(t, 8192, r.Allocator().Arena().Size())
	_, ok = r.Ref("a")
	assert.False(t, ok, "bindings do not survive init")

	_, err = r.Step()
	require.ErrorIs(t, err, io.EOF)
	assert.True(t, r.Done())

	require.NoError(t, r.Close())
	require.Zero(t, src.Outstanding())
}
