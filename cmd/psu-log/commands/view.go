// Package commands implements the psu-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/eez-psu/psu-go/pkg/log"
)

const timeFormat = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [run:id] CHn CATEGORY
	ts := event.Timestamp.UTC().Format(timeFormat)
	fmt.Fprintf(w, "%s [run:%s] %s %s t=%dus\n",
		ts, shortenRunID(event.RunID), channelLabel(event.Channel), event.Category, event.TickMicros)

	switch {
	case event.Step != nil:
		formatStepDetails(w, event.Step)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenRunID returns the first 8 characters of the run ID.
func shortenRunID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func channelLabel(ch uint8) string {
	if ch == 0 {
		return "---"
	}
	return fmt.Sprintf("CH%d", ch)
}

// formatStepDetails writes the applied point.
func formatStepDetails(w io.Writer, step *log.StepEvent) {
	fmt.Fprintf(w, "  Step %d: U=%.6gV I=%.6gA dwell=%.6gs\n", step.Index, step.Voltage, step.Current, step.Dwell)
	if step.RemainingCycles == 0 {
		fmt.Fprintln(w, "  Cycles: forever")
	} else {
		fmt.Fprintf(w, "  Cycles left: %d\n", step.RemainingCycles)
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "step":
		return log.CategoryStep, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be step, state, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
