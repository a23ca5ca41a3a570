package commands

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eez-psu/psu-go/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.elog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func sampleRun() []log.Event {
	ts := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	code := 301
	return []log.Event{
		{
			Timestamp: ts, RunID: "0b7e1c2a-aaaa-bbbb-cccc-000000000001", Channel: 1, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{OldState: "IDLE", NewState: "STARTED", Reason: "repeat count 2"},
		},
		{
			Timestamp: ts.Add(time.Millisecond), RunID: "0b7e1c2a-aaaa-bbbb-cccc-000000000001", Channel: 1,
			Category: log.CategoryStep, TickMicros: 1000,
			Step: &log.StepEvent{Index: 0, Voltage: 1.5, Current: 0.25, Dwell: 0.1, RemainingCycles: 2},
		},
		{
			Timestamp: ts.Add(2 * time.Millisecond), RunID: "0b7e1c2a-aaaa-bbbb-cccc-000000000001", Channel: 1,
			Category: log.CategoryError, TickMicros: 101000,
			Error: &log.ErrorEventData{Message: "Voltage limit exceeded", Code: &code, Context: "step 1"},
		},
		{
			Timestamp: ts.Add(2 * time.Millisecond), RunID: "0b7e1c2a-aaaa-bbbb-cccc-000000000001", Channel: 1,
			Category: log.CategoryState, TickMicros: 101000,
			StateChange: &log.StateChangeEvent{OldState: "RUNNING", NewState: "IDLE", Reason: "VOLTAGE limit exceeded on CH1"},
		},
		{
			Timestamp: ts.Add(3 * time.Millisecond), Channel: 2, Category: log.CategoryError,
			Error: &log.ErrorEventData{Message: "storage i/o error", Context: "load a.lst"},
		},
	}
}

func TestFormatStepEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleRun()[1])
	output := buf.String()

	for _, want := range []string{
		"2026-05-04T09:30:00.001000Z",
		"[run:0b7e1c2a]",
		"CH1 STEP t=1000us",
		"Step 0: U=1.5V I=0.25A dwell=0.1s",
		"Cycles left: 2",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestFormatEventsWithoutRun(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleRun()[4])
	output := buf.String()

	if !strings.Contains(output, "[run:-]") {
		t.Errorf("expected placeholder run ID, got: %s", output)
	}
	if !strings.Contains(output, "Context: load a.lst") {
		t.Errorf("expected error context, got: %s", output)
	}
}

func TestFormatForeverStep(t *testing.T) {
	var buf bytes.Buffer
	formatStepDetails(&buf, &log.StepEvent{Index: 3, RemainingCycles: 0})
	if !strings.Contains(buf.String(), "Cycles: forever") {
		t.Errorf("expected forever marker, got: %s", buf.String())
	}
}

func TestRunViewFiltersChannel(t *testing.T) {
	path := createTestLogFile(t, sampleRun())

	filter, err := BuildFilter(FilterOptions{Channel: 2})
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	var buf bytes.Buffer
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "CH1") {
		t.Errorf("channel 1 events should be filtered, got: %s", output)
	}
	if !strings.Contains(output, "CH2 ERROR") {
		t.Errorf("expected channel 2 error, got: %s", output)
	}
}

func TestBuildFilterInvalid(t *testing.T) {
	tests := []FilterOptions{
		{Channel: 7},
		{Category: "message"},
		{TimeStart: "yesterday"},
		{TimeEnd: "2026-13-01"},
	}
	for _, opts := range tests {
		if _, err := BuildFilter(opts); err == nil {
			t.Errorf("BuildFilter(%+v) should fail", opts)
		}
	}
}

func TestRunFilter(t *testing.T) {
	path := createTestLogFile(t, sampleRun())
	out := filepath.Join(t.TempDir(), "out.elog")

	n, err := RunFilter(path, FilterOptions{Output: out, Category: "state"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("RunFilter wrote %d events, want 2", n)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	count := 0
	for {
		e, err := reader.Next()
		if err != nil {
			break
		}
		if e.Category != log.CategoryState {
			t.Errorf("unexpected category %s", e.Category)
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d events, want 2", count)
	}
}

func TestExportCSV(t *testing.T) {
	path := createTestLogFile(t, sampleRun())
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want header + 5", len(rows))
	}

	step := rows[2]
	if step[3] != "STEP" || step[6] != "1.5" || step[7] != "0.25" || step[9] != "2" {
		t.Errorf("step row = %v", step)
	}
	if rows[1][10] != "IDLE->STARTED" {
		t.Errorf("state row detail = %q", rows[1][10])
	}
	if rows[3][10] != "Voltage limit exceeded" {
		t.Errorf("error row detail = %q", rows[3][10])
	}
}

func TestExportJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleRun())
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Errorf("got %d lines, want 5", len(lines))
	}
	if !strings.Contains(lines[1], `"Voltage":1.5`) {
		t.Errorf("expected step payload, got: %s", lines[1])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, sampleRun())
	if err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestStats(t *testing.T) {
	path := createTestLogFile(t, sampleRun())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 5",
		"STEP:",
		"STATE:",
		"ERROR:",
		"CH1:",
		"CH2:",
		"Runs: 1",
		"[0b7e1c2a] CH1 1 steps",
		"State: IDLE (VOLTAGE limit exceeded on CH1)",
		"Errors: 2",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}
