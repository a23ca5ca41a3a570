package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/eez-psu/psu-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	EventsByChannel  map[uint8]int
	Runs             map[string]*RunSummary
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// RunSummary holds statistics for a single run.
type RunSummary struct {
	Channel   uint8
	FirstSeen time.Time
	LastSeen  time.Time
	Steps     int
	EndState  string
	EndReason string
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsByChannel:  make(map[uint8]int),
		Runs:             make(map[string]*RunSummary),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++
	s.EventsByChannel[event.Channel]++

	// Track time range
	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.Error != nil {
		s.Errors++
	}

	if event.RunID == "" {
		return
	}
	run, ok := s.Runs[event.RunID]
	if !ok {
		run = &RunSummary{Channel: event.Channel, FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Runs[event.RunID] = run
	}
	if event.Timestamp.After(run.LastSeen) {
		run.LastSeen = event.Timestamp
	}
	if event.Step != nil {
		run.Steps++
	}
	if event.StateChange != nil {
		run.EndState = event.StateChange.NewState
		run.EndReason = event.StateChange.Reason
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== List Execution Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryStep, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Channel:")
	channels := make([]int, 0, len(stats.EventsByChannel))
	for ch := range stats.EventsByChannel {
		channels = append(channels, int(ch))
	}
	sort.Ints(channels)
	for _, ch := range channels {
		fmt.Fprintf(w, "  %-12s %d\n", channelLabel(uint8(ch))+":", stats.EventsByChannel[uint8(ch)])
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Runs: %d\n", len(stats.Runs))
	if len(stats.Runs) > 0 {
		// Sort by first seen time
		type runInfo struct {
			id    string
			stats *RunSummary
		}
		runs := make([]runInfo, 0, len(stats.Runs))
		for id, rs := range stats.Runs {
			runs = append(runs, runInfo{id, rs})
		}
		sort.Slice(runs, func(i, j int) bool {
			return runs[i].stats.FirstSeen.Before(runs[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, r := range runs {
			duration := r.stats.LastSeen.Sub(r.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s %d steps, duration %s\n",
				shortenRunID(r.id), channelLabel(r.stats.Channel), r.stats.Steps, duration)
			if r.stats.EndState != "" {
				fmt.Fprintf(w, "           State: %s", r.stats.EndState)
				if r.stats.EndReason != "" {
					fmt.Fprintf(w, " (%s)", r.stats.EndReason)
				}
				fmt.Fprintln(w)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
