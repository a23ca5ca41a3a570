// Command psu-log is a tool for viewing and analyzing list execution logs.
//
// Log files are created by psu-list with the -event-log flag or the
// event_log configuration setting.
//
// Usage:
//
//	psu-log <command> [flags] <file.elog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	psu-log view lists.elog
//
//	# View only channel 2
//	psu-log view -channel 2 lists.elog
//
//	# Export applied points to CSV for plotting
//	psu-log export -format csv -o steps.csv lists.elog
//
//	# Keep a single run
//	psu-log filter -run 0b7e... -o run.elog lists.elog
//
//	# Show statistics
//	psu-log stats lists.elog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eez-psu/psu-go/cmd/psu-log/commands"
)

const usage = `psu-log - List Execution Log Analyzer

Usage:
  psu-log <command> [flags] <file.elog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "psu-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// logPath parses the flag set and returns the log file argument.
func logPath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `psu-log view - View log file in human-readable format

Usage:
  psu-log view [flags] <file.elog>

Flags:
`)
		fs.PrintDefaults()
	}

	ch := fs.Int("channel", 0, "Filter by channel (1-6)")
	category := fs.String("category", "", "Filter by category (step, state, error)")

	path := logPath(fs, args)

	filter, err := commands.BuildFilter(commands.FilterOptions{Channel: *ch, Category: *category})
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `psu-log export - Export log file to JSON or CSV format

Usage:
  psu-log export [flags] <file.elog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path := logPath(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `psu-log filter - Filter log file and write to new file

Usage:
  psu-log filter [flags] <file.elog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	runID := fs.String("run", "", "Filter by run ID")
	ch := fs.Int("channel", 0, "Filter by channel (1-6)")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	category := fs.String("category", "", "Filter by category (step, state, error)")

	path := logPath(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		RunID:     *runID,
		Channel:   *ch,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Category:  *category,
	}

	n, err := commands.RunFilter(path, opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `psu-log stats - Show statistics about the log file

Usage:
  psu-log stats <file.elog>

`)
	}

	path := logPath(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
