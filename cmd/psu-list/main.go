// Command psu-list runs the list-mode sequencing engine of a simulated
// programmable power supply.
//
// Lists are edited from an interactive console or loaded from list files,
// then executed in real time against simulated channels with their
// configured voltage, current and power limits.
//
// Usage:
//
//	psu-list [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-storage string     List file directory (overrides storage.root)
//	-event-log string   Execution event log path (overrides event_log)
//	-state string       List state snapshot path (overrides state_file)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-run string         Load this list file, run it to completion and exit
//	-channel int        Channel used by -run (default 1)
//
// Examples:
//
//	# Interactive console with list files under ./lists
//	psu-list -storage ./lists
//
//	# Run a list file once on channel 2 and record every step
//	psu-list -storage ./lists -run ramp.lst -channel 2 -event-log ramp.elog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eez-psu/psu-go/cmd/psu-list/interactive"
	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/config"
	"github.com/eez-psu/psu-go/pkg/controller"
	"github.com/eez-psu/psu-go/pkg/execution"
	"github.com/eez-psu/psu-go/pkg/log"
	"github.com/eez-psu/psu-go/pkg/persistence"
)

// Flags holds the command-line settings.
type Flags struct {
	ConfigFile string
	Storage    string
	EventLog   string
	StateFile  string
	LogLevel   string
	RunFile    string
	Channel    int
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&flags.Storage, "storage", "", "List file directory (overrides storage.root)")
	flag.StringVar(&flags.EventLog, "event-log", "", "Execution event log path (overrides event_log)")
	flag.StringVar(&flags.StateFile, "state", "", "List state snapshot path (overrides state_file)")
	flag.StringVar(&flags.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.RunFile, "run", "", "Load this list file, run it to completion and exit")
	flag.IntVar(&flags.Channel, "channel", 1, "Channel used by -run")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := parseLevel(flags.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctrl, err := controller.New(cfg)
	if err != nil {
		logger.Error("failed to create controller", "error", err)
		os.Exit(1)
	}
	ctrl.SetLogger(logger)

	// Event log
	var fileLogger *log.FileLogger
	if cfg.EventLog != "" {
		fileLogger, err = log.NewFileLogger(cfg.EventLog)
		if err != nil {
			logger.Error("failed to open event log", "path", cfg.EventLog, "error", err)
			os.Exit(1)
		}
	}
	ctrl.SetEventLogger(eventLogger(logger, fileLogger))

	// State snapshot
	if cfg.StateFile != "" {
		ctrl.SetStateStore(persistence.NewListStateStore(nil, cfg.StateFile))
		if err := ctrl.RestoreState(); err != nil {
			logger.Warn("failed to restore list state", "path", cfg.StateFile, "error", err)
		}
	}

	logger.Info("psu-list started",
		"channels", ctrl.Channels(),
		"storage", ctrl.StorageInstalled(),
		"tick", cfg.TickPeriod)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var code int
	if flags.RunFile != "" {
		code = runOnce(ctx, ctrl, channel.ID(flags.Channel), flags.RunFile)
	} else {
		code = runInteractive(ctx, cancel, ctrl, cfg, fileLogger)
	}

	if cfg.StateFile != "" {
		if err := ctrl.SaveState(); err != nil {
			logger.Warn("failed to save list state", "error", err)
		}
	}
	if fileLogger != nil {
		fileLogger.Close()
	}
	os.Exit(code)
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if flags.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(flags.ConfigFile); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Storage != "" {
		cfg.Storage.Root = flags.Storage
	}
	if flags.EventLog != "" {
		cfg.EventLog = flags.EventLog
	}
	if flags.StateFile != "" {
		cfg.StateFile = flags.StateFile
	}
	return cfg, cfg.Validate()
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// eventLogger sends execution events to slog at debug level and, when
// enabled, to the CBOR event log.
func eventLogger(logger *slog.Logger, file *log.FileLogger) log.Logger {
	if file == nil {
		return log.NewSlogAdapter(logger)
	}
	return log.NewMultiLogger(log.NewSlogAdapter(logger), file)
}

// runOnce loads a list file, runs it and waits for it to finish.
func runOnce(ctx context.Context, ctrl *controller.Controller, ch channel.ID, path string) int {
	if err := ctrl.Load(ch, path); err != nil {
		slog.Error("load failed", "channel", ch, "path", path, "error", err)
		return 1
	}
	if err := ctrl.Start(ch); err != nil {
		slog.Error("start failed", "channel", ch, "error", err)
		return 1
	}

	done := make(chan int, 1)
	ctrl.OnSequenceFinished(func(finished channel.ID) {
		if finished == ch {
			select {
			case done <- 0:
			default:
			}
		}
	})
	ctrl.OnLimitViolation(func(res execution.TickResult) {
		select {
		case done <- 2:
		default:
		}
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = ctrl.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case code := <-done:
		return code
	case sig := <-sigCh:
		slog.Info("received signal, aborting", "signal", sig)
		ctrl.Abort()
		return 130
	}
}

// runInteractive runs the engine in the background and the console in the
// foreground until quit or a signal.
func runInteractive(ctx context.Context, cancel context.CancelFunc, ctrl *controller.Controller, cfg config.Config, fileLogger *log.FileLogger) int {
	console, err := interactive.New(ctrl)
	if err != nil {
		slog.Error("failed to create console", "error", err)
		return 1
	}

	// Route log output through readline to avoid interfering with input
	level, _ := parseLevel(flags.LogLevel)
	logger := slog.New(slog.NewTextHandler(console.Stdout(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	ctrl.SetLogger(logger)
	ctrl.SetEventLogger(eventLogger(logger, fileLogger))

	go func() { _ = ctrl.Run(ctx) }()
	go console.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig)
	case <-ctx.Done():
		// Console quit
	}

	ctrl.Abort()
	logger.Info("shutting down", "event_log", cfg.EventLog)
	return 0
}
