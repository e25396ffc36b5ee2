package main

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/heapkit/arena"
)

const coalesceScript = `init 4096
alloc a 24
alloc b 24
alloc c 4024
free a
free b
`

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name           string
		script         string
		verbose        bool
		quiet          bool
		wantErr        bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "prints every step",
			script:      coalesceScript + "dump\nverify\n",
			wantContain: []string{"a = alloc(24) -> +00008", "free(b)", "+00000 (F,   64)", "verify: ok"},
		},
		{
			name:        "default init uses --size",
			script:      "alloc x 10\n",
			wantContain: []string{"init(4096) -> 4096 bytes", "x = alloc(10) -> +00008"},
		},
		{
			name:        "verbose appends stats",
			script:      "alloc x 10\n",
			verbose:     true,
			wantContain: []string{"Loaded 2 commands", "Registry:"},
		},
		{
			name:           "quiet hides output",
			script:         "alloc x 10\ndump\n",
			quiet:          true,
			wantNotContain: []string{"alloc", "+00000"},
		},
		{
			name:    "double free fails",
			script:  "alloc x 10\nfree x\nfree x\n",
			wantErr: true,
		},
		{
			name:    "syntax error fails",
			script:  "alloc x\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			verbose = tt.verbose
			quiet = tt.quiet

			args := []string{writeScript(t, tt.script)}
			output, err := captureOutput(t, func() error {
				return runRun(args)
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("runRun() error = %v, wantErr %v", err, tt.wantErr)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestDumpCommand(t *testing.T) {
	resetFlags()
	args := []string{writeScript(t, coalesceScript)}

	output, err := captureOutput(t, func() error { return runDump(args) })
	if err != nil {
		t.Fatalf("runDump() error = %v", err)
	}
	if output != "+00000 (F,   64) +00064 (A, 4032) \n" {
		t.Errorf("unexpected dump %q", output)
	}
	assertNotContains(t, output, []string{"alloc(", "init("})
}

func TestDumpCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	args := []string{writeScript(t, coalesceScript)}

	output, err := captureOutput(t, func() error { return runDump(args) })
	if err != nil {
		t.Fatalf("runDump() error = %v", err)
	}
	assertJSON(t, output)

	var chunks []struct {
		Offset int    `json:"offset"`
		Status string `json:"status"`
		Size   int    `json:"size"`
	}
	if err := json.Unmarshal([]byte(output), &chunks); err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 || chunks[0].Status != "F" || chunks[0].Size != 64 || chunks[1].Offset != 64 {
		t.Errorf("unexpected chunks %+v", chunks)
	}
}

func TestStatsCommand(t *testing.T) {
	resetFlags()
	args := []string{writeScript(t, "init 65536\nalloc a 1000\n")}

	output, err := captureOutput(t, func() error { return runStats(args) })
	if err != nil {
		t.Fatalf("runStats() error = %v", err)
	}
	assertContains(t, output, []string{"65,536 bytes", "1,008 bytes in 1 chunks", "2,048 slots"})
}

func TestStatsCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	args := []string{writeScript(t, coalesceScript)}

	output, err := captureOutput(t, func() error { return runStats(args) })
	if err != nil {
		t.Fatalf("runStats() error = %v", err)
	}
	assertJSON(t, output)

	var report struct {
		AllocCalls   int
		CoalesceLeft int
		FreeBytes    int
		FreeOffsets  []int
	}
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatal(err)
	}
	if report.AllocCalls != 3 || report.CoalesceLeft != 1 || report.FreeBytes != 64 {
		t.Errorf("unexpected report %+v", report)
	}
	if len(report.FreeOffsets) != 1 || report.FreeOffsets[0] != 0 {
		t.Errorf("unexpected free offsets %v", report.FreeOffsets)
	}
}

func TestExhaustCommand(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		chunk       int
		release     bool
		wantContain []string
	}{
		{
			name:        "minimum chunks fill a small arena",
			size:        4096,
			chunk:       24,
			wantContain: []string{"Allocations:  128 x alloc(24)", "Allocated:    4096 bytes", "Free:         0 bytes"},
		},
		{
			name:        "leftover too small for one more",
			size:        4096,
			chunk:       100,
			wantContain: []string{"Allocations:  37 x alloc(100)", "Allocated:    3996 bytes", "Free:         100 bytes"},
		},
		{
			name:        "release merges back",
			size:        8192,
			chunk:       40,
			release:     true,
			wantContain: []string{"Conservation: ok", "Released:     1 free chunk(s) at [0]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			arenaSize = tt.size
			exhaustChunk = tt.chunk
			exhaustRelease = tt.release

			output, err := captureOutput(t, runExhaust)
			if err != nil {
				t.Fatalf("runExhaust() error = %v", err)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestExhaustCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	exhaustRelease = true

	output, err := captureOutput(t, runExhaust)
	if err != nil {
		t.Fatalf("runExhaust() error = %v", err)
	}
	assertJSON(t, output)
	if !strings.Contains(output, `"Allocations": 128`) {
		t.Errorf("missing allocation count in %s", output)
	}
}

func saveImage(t *testing.T, script string) string {
	t.Helper()
	resetFlags()
	quiet = true
	runSave = filepath.Join(t.TempDir(), "final.img")
	args := []string{writeScript(t, script)}
	if _, err := captureOutput(t, func() error { return runRun(args) }); err != nil {
		t.Fatalf("runRun() error = %v", err)
	}
	path := runSave
	resetFlags()
	return path
}

func TestRunSaveAndInspect(t *testing.T) {
	img := saveImage(t, coalesceScript)

	data, err := os.ReadFile(img)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 4096 {
		t.Fatalf("image is %d bytes, want 4096", len(data))
	}

	output, err := captureOutput(t, func() error { return runInspect([]string{img}) })
	if err != nil {
		t.Fatalf("runInspect() error = %v", err)
	}
	assertContains(t, output, []string{"+00000 (F,   64) +00064 (A, 4032) ", "verify: ok"})
}

func TestInspectCommand_JSON(t *testing.T) {
	img := saveImage(t, coalesceScript)
	jsonOut = true

	output, err := captureOutput(t, func() error { return runInspect([]string{img}) })
	if err != nil {
		t.Fatalf("runInspect() error = %v", err)
	}
	assertJSON(t, output)

	var report struct {
		Valid  bool
		Chunks []struct {
			Offset int    `json:"offset"`
			Status string `json:"status"`
		}
	}
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatal(err)
	}
	if !report.Valid || len(report.Chunks) != 2 || report.Chunks[1].Status != "A" {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestInspectCommand_CorruptImage(t *testing.T) {
	resetFlags()
	img := filepath.Join(t.TempDir(), "bad.img")
	data := make([]byte, 4096)
	binary.LittleEndian.PutUint32(data[0:], 0x12345678)
	binary.LittleEndian.PutUint32(data[4:], 4096)
	if err := os.WriteFile(img, data, 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := captureOutput(t, func() error { return runInspect([]string{img}) })
	if !errors.Is(err, arena.ErrCorruptedHeap) {
		t.Fatalf("runInspect() error = %v, want corrupted heap", err)
	}
}

func TestInspectCommand_TooSmall(t *testing.T) {
	resetFlags()
	img := filepath.Join(t.TempDir(), "small.img")
	if err := os.WriteFile(img, make([]byte, 100), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := captureOutput(t, func() error { return runInspect([]string{img}) })
	if !errors.Is(err, arena.ErrBadImage) {
		t.Fatalf("runInspect() error = %v, want bad image", err)
	}
}
