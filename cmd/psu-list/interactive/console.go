// Package interactive provides the interactive command-line interface
// for psu-list.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/controller"
	"github.com/eez-psu/psu-go/pkg/execution"
	"github.com/eez-psu/psu-go/pkg/list"
)

// Console handles interactive mode for psu-list.
type Console struct {
	ctrl *controller.Controller
	rl   *readline.Instance
}

// New creates a new console for the controller.
func New(ctrl *controller.Controller) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "psu> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &Console{ctrl: ctrl, rl: rl}

	ctrl.OnSequenceFinished(func(ch channel.ID) {
		fmt.Fprintf(c.rl.Stdout(), "[%s] list finished\n", ch)
	})
	ctrl.OnLimitViolation(func(res execution.TickResult) {
		fmt.Fprintf(c.rl.Stdout(), "[%s] %s limit exceeded, all channels aborted (error %d)\n",
			res.Channel, res.Violation, res.Violation.Code())
	})

	return c, nil
}

func completer() *readline.PrefixCompleter {
	kinds := []readline.PrefixCompleterInterface{
		readline.PcItem("dwell"), readline.PcItem("voltage"), readline.PcItem("current"),
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("list", kinds...),
		readline.PcItem("show"),
		readline.PcItem("count"),
		readline.PcItem("dirty"),
		readline.PcItem("compat"),
		readline.PcItem("reset"),
		readline.PcItem("load"),
		readline.PcItem("save"),
		readline.PcItem("start"),
		readline.PcItem("abort"),
		readline.PcItem("status"),
		readline.PcItem("errors"),
		readline.PcItem("state", readline.PcItem("save"), readline.PcItem("restore")),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		if cmd == "quit" || cmd == "exit" || cmd == "q" {
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}
		c.Execute(cmd, args)
	}
}

// Execute runs a single command.
func (c *Console) Execute(cmd string, args []string) {
	w := c.rl.Stdout()

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "list", "l":
		c.cmdList(w, args)

	case "show":
		c.cmdShow(w, args)

	case "count":
		c.cmdCount(w, args)

	case "dirty":
		c.cmdDirty(w, args)

	case "compat":
		c.cmdCompat(w, args)

	case "reset":
		c.cmdReset(w, args)

	case "load":
		c.cmdLoad(w, args)

	case "save":
		c.cmdSave(w, args)

	case "start":
		c.cmdStart(w, args)

	case "abort":
		c.ctrl.Abort()
		fmt.Fprintln(w, "Aborted")

	case "status", "s":
		c.cmdStatus(w, args)

	case "errors", "err":
		c.cmdErrors(w)

	case "state":
		c.cmdState(w, args)

	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
List Mode Commands:
  Editing:
    list <ch> <kind> [values...] - Show or set a list (kind: dwell, voltage, current)
    show <ch>                    - Show all lists of a channel as a table
    count <ch> [n]               - Show or set the repeat count (0 = forever)
    dirty <ch> [clear]           - Show or clear the modified flag
    compat <ch>                  - Show list length compatibility
    reset [ch]                   - Reset one or all channels

  Storage:
    load <ch> <file>             - Load a list file
    save <ch> <file>             - Save a list file
    state save|restore           - Save or restore all lists

  Execution:
    start <ch>                   - Start list execution
    abort                        - Abort all channels
    status [ch]                  - Show execution status
    errors                       - Show and clear queued errors

  General:
    help                         - Show this help
    quit                         - Exit`)
}

func (c *Console) channelArg(w io.Writer, args []string, usage string) (channel.ID, bool) {
	if len(args) < 1 {
		fmt.Fprintf(w, "Usage: %s\n", usage)
		return 0, false
	}
	ch, err := ParseChannel(args[0], c.ctrl.Channels())
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 0, false
	}
	return ch, true
}

func (c *Console) cmdList(w io.Writer, args []string) {
	const usage = "list <ch> <dwell|voltage|current> [values...]"
	ch, ok := c.channelArg(w, args, usage)
	if !ok {
		return
	}
	if len(args) < 2 {
		fmt.Fprintf(w, "Usage: %s\n", usage)
		return
	}
	kind, err := list.ParseKind(args[1])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	if len(args) == 2 {
		values, err := c.ctrl.List(ch, kind)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(w, "%s %s (%d): %s\n", ch, kind, len(values), FormatValues(values))
		return
	}

	values, err := ParseValues(args[2:])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if err := c.ctrl.SetList(ch, kind, values); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s %s set (%d points)\n", ch, kind, len(values))
}

func (c *Console) cmdShow(w io.Writer, args []string) {
	ch, ok := c.channelArg(w, args, "show <ch>")
	if !ok {
		return
	}

	var cols [3][]float64
	for _, kind := range list.Kinds {
		values, err := c.ctrl.List(ch, kind)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
		cols[kind] = values
	}
	WriteTable(w, cols[list.KindDwell], cols[list.KindVoltage], cols[list.KindCurrent])
}

func (c *Console) cmdCount(w io.Writer, args []string) {
	ch, ok := c.channelArg(w, args, "count <ch> [n]")
	if !ok {
		return
	}

	if len(args) == 1 {
		n, err := c.ctrl.RepeatCount(ch)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(w, "%s repeat count: %s\n", ch, FormatCount(n))
		return
	}

	n, err := ParseCount(args[1])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if err := c.ctrl.SetRepeatCount(ch, n); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s repeat count: %s\n", ch, FormatCount(n))
}

func (c *Console) cmdDirty(w io.Writer, args []string) {
	ch, ok := c.channelArg(w, args, "dirty <ch> [clear]")
	if !ok {
		return
	}

	if len(args) > 1 && strings.EqualFold(args[1], "clear") {
		if err := c.ctrl.ClearDirty(ch); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(w, "OK")
		return
	}

	dirty, err := c.ctrl.IsDirty(ch)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s modified: %v\n", ch, dirty)
}

func (c *Console) cmdCompat(w io.Writer, args []string) {
	ch, ok := c.channelArg(w, args, "compat <ch>")
	if !ok {
		return
	}

	compat, err := c.ctrl.Compatibility(ch)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "  voltage/dwell:   %v\n", compat.VoltageDwell)
	fmt.Fprintf(w, "  current/dwell:   %v\n", compat.CurrentDwell)
	fmt.Fprintf(w, "  voltage/current: %v\n", compat.VoltageCurrent)
	fmt.Fprintf(w, "  all:             %v\n", compat.All)
}

func (c *Console) cmdReset(w io.Writer, args []string) {
	if len(args) == 0 {
		c.ctrl.ResetAll()
		fmt.Fprintln(w, "All channels reset")
		return
	}

	ch, ok := c.channelArg(w, args, "reset [ch]")
	if !ok {
		return
	}
	if err := c.ctrl.ResetChannel(ch); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s reset\n", ch)
}

func (c *Console) cmdLoad(w io.Writer, args []string) {
	ch, ok := c.channelArg(w, args, "load <ch> <file>")
	if !ok {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(w, "Usage: load <ch> <file>")
		return
	}
	if err := c.ctrl.Load(ch, args[1]); err != nil {
		fmt.Fprintf(w, "Load failed: %v\n", err)
		return
	}
	fmt.Fprintln(w, "OK")
}

func (c *Console) cmdSave(w io.Writer, args []string) {
	ch, ok := c.channelArg(w, args, "save <ch> <file>")
	if !ok {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(w, "Usage: save <ch> <file>")
		return
	}
	if err := c.ctrl.Save(ch, args[1]); err != nil {
		fmt.Fprintf(w, "Save failed: %v\n", err)
		return
	}
	fmt.Fprintln(w, "OK")
}

func (c *Console) cmdStart(w io.Writer, args []string) {
	ch, ok := c.channelArg(w, args, "start <ch>")
	if !ok {
		return
	}
	if err := c.ctrl.Start(ch); err != nil {
		fmt.Fprintf(w, "Start failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s started\n", ch)
}

func (c *Console) cmdStatus(w io.Writer, args []string) {
	channels := make([]channel.ID, 0, c.ctrl.Channels())
	if len(args) > 0 {
		ch, ok := c.channelArg(w, args, "status [ch]")
		if !ok {
			return
		}
		channels = append(channels, ch)
	} else {
		for i := 0; i < c.ctrl.Channels(); i++ {
			channels = append(channels, channel.FromIndex(i))
		}
	}

	fmt.Fprintf(w, "\nList execution (active: %v)\n", c.ctrl.IsActive())
	fmt.Fprintln(w, "-------------------------------------------")
	for _, ch := range channels {
		st, err := c.ctrl.Status(ch)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		WriteStatus(w, st)
	}
}

func (c *Console) cmdErrors(w io.Writer) {
	n := 0
	for {
		code, ok := c.ctrl.PopError()
		if !ok {
			break
		}
		fmt.Fprintf(w, "  %d,\"%s\"\n", code, code)
		n++
	}
	if n == 0 {
		fmt.Fprintln(w, "  0,\"No error\"")
	}
}

func (c *Console) cmdState(w io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(w, "Usage: state save|restore")
		return
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "save":
		err = c.ctrl.SaveState()
	case "restore":
		err = c.ctrl.RestoreState()
	default:
		fmt.Fprintln(w, "Usage: state save|restore")
		return
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, "OK")
}
