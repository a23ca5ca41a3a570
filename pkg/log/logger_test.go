package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(e Event) { r.events = append(r.events, e) }

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{Timestamp: time.Now()})
}

func TestMultiLogger(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	m := NewMultiLogger(a, nil, b)

	m.Log(Event{Channel: 1})
	m.Log(Event{Channel: 2})

	if len(a.events) != 2 || len(b.events) != 2 {
		t.Fatalf("got %d/%d events, want 2/2", len(a.events), len(b.events))
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := NewSlogAdapter(logger)

	code := 301
	a.Log(Event{Channel: 1, Category: CategoryStep, RunID: "r1",
		Step: &StepEvent{Index: 1, Voltage: 5}})
	a.Log(Event{Channel: 1, Category: CategoryState,
		StateChange: &StateChangeEvent{OldState: "RUNNING", NewState: "IDLE", Reason: "finished"}})
	a.Log(Event{Channel: 2, Category: CategoryError,
		Error: &ErrorEventData{Message: "Voltage limit exceeded", Code: &code}})

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "run_id=r1", "voltage=5",
		"level=INFO", "new_state=IDLE", "reason=finished",
		"level=WARN", "error_code=301",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	code := -200
	in := Event{
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
		Channel:    3,
		Category:   CategoryError,
		TickMicros: 4294967295,
		Error:      &ErrorEventData{Message: "load failed", Code: &code, Context: "/lists/a.csv"},
	}

	data, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	out, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", out.Timestamp, in.Timestamp)
	}
	if out.TickMicros != in.TickMicros {
		t.Errorf("TickMicros: got %d", out.TickMicros)
	}
	if out.Error == nil || out.Error.Code == nil || *out.Error.Code != -200 {
		t.Errorf("Error: got %+v", out.Error)
	}
}
