package interactive

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/controller"
)

// ParseChannel parses a channel number such as "2" or "ch2".
func ParseChannel(s string, count int) (channel.ID, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(s), "ch")
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 || n > count {
		return 0, fmt.Errorf("invalid channel %q (must be 1-%d)", s, count)
	}
	return channel.ID(n), nil
}

// ParseValues parses list values. Values may be separated by spaces, commas
// or both.
func ParseValues(args []string) ([]float64, error) {
	var values []float64
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q", field)
			}
			values = append(values, v)
		}
	}
	return values, nil
}

// ParseCount parses a repeat count; "inf" and "forever" mean 0.
func ParseCount(s string) (uint16, error) {
	switch strings.ToLower(s) {
	case "inf", "infinity", "forever":
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid repeat count %q (0-65535)", s)
	}
	return uint16(n), nil
}

// FormatCount formats a repeat count.
func FormatCount(n uint16) string {
	if n == 0 {
		return "forever"
	}
	return strconv.Itoa(int(n))
}

// FormatValues formats list values on one line.
func FormatValues(values []float64) string {
	if len(values) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// WriteTable writes the lists as a table with one row per step.
func WriteTable(w io.Writer, dwell, voltage, current []float64) {
	rows := max(len(dwell), len(voltage), len(current))
	if rows == 0 {
		fmt.Fprintln(w, "(no points)")
		return
	}

	cell := func(col []float64, i int) string {
		if i < len(col) {
			return strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		return "-"
	}

	fmt.Fprintf(w, "  %4s  %12s  %12s  %12s\n", "#", "dwell [s]", "voltage [V]", "current [A]")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(w, "  %4d  %12s  %12s  %12s\n", i, cell(dwell, i), cell(voltage, i), cell(current, i))
	}
}

// WriteStatus writes one channel's status block.
func WriteStatus(w io.Writer, st controller.Status) {
	fmt.Fprintf(w, "  %s: %s", st.Channel, st.Execution.Phase)
	if st.Execution.RemainingCycles > 0 {
		fmt.Fprintf(w, " (%d cycles left, step %d)", st.Execution.RemainingCycles, st.Execution.StepIndex)
	} else if st.Execution.RemainingCycles == 0 {
		fmt.Fprintf(w, " (forever, step %d)", st.Execution.StepIndex)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "      Lists:     dwell=%d voltage=%d current=%d, repeat %s",
		st.Lengths.Dwell, st.Lengths.Voltage, st.Lengths.Current, FormatCount(st.Repeat))
	if st.Dirty {
		fmt.Fprint(w, " (modified)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "      Setpoints: %gV %gA\n", st.Setpoints.Voltage, st.Setpoints.Current)
	fmt.Fprintf(w, "      Limits:    %gV %gA %gW\n", st.Limits.Voltage, st.Limits.Current, st.Limits.Power)
}
