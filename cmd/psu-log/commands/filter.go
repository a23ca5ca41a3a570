package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/log"
)

// FilterOptions specifies filtering criteria for the view and filter commands.
type FilterOptions struct {
	Output    string
	RunID     string
	Channel   int
	TimeStart string
	TimeEnd   string
	Category  string
}

// BuildFilter converts command-line options into a log filter.
func BuildFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{RunID: opts.RunID}

	if opts.Channel != 0 {
		if opts.Channel < 1 || opts.Channel > channel.MaxCount {
			return log.Filter{}, fmt.Errorf("invalid channel: %d (must be 1-%d)", opts.Channel, channel.MaxCount)
		}
		ch := uint8(opts.Channel)
		filter.Channel = &ch
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	if opts.Category != "" {
		c, err := parseCategory(opts.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}

	return filter, nil
}

// RunFilter filters the log file and writes matching events to a new file.
// It returns the number of events written.
func RunFilter(path string, opts FilterOptions) (int, error) {
	filter, err := BuildFilter(opts)
	if err != nil {
		return 0, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Create file logger to write filtered events
	logger, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}

	return count, logger.Flush()
}
