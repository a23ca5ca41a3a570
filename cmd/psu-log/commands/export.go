package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/eez-psu/psu-go/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

// exportCSV writes one row per event. Step columns are empty for other
// categories; detail carries the state transition or error message.
func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "run_id", "channel", "category", "tick_us",
		"step", "voltage", "current", "dwell", "remaining_cycles", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		row := []string{
			event.Timestamp.UTC().Format(timeFormat),
			event.RunID,
			strconv.Itoa(int(event.Channel)),
			event.Category.String(),
			strconv.FormatUint(uint64(event.TickMicros), 10),
			"", "", "", "", "", "",
		}
		switch {
		case event.Step != nil:
			row[5] = strconv.Itoa(int(event.Step.Index))
			row[6] = strconv.FormatFloat(event.Step.Voltage, 'f', -1, 64)
			row[7] = strconv.FormatFloat(event.Step.Current, 'f', -1, 64)
			row[8] = strconv.FormatFloat(event.Step.Dwell, 'f', -1, 64)
			row[9] = strconv.Itoa(int(event.Step.RemainingCycles))
		case event.StateChange != nil:
			row[10] = event.StateChange.OldState + "->" + event.StateChange.NewState
		case event.Error != nil:
			row[10] = event.Error.Message
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
