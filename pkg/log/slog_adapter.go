package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes execution events to an slog.Logger.
// Step events go out at Debug level, state changes at Info and errors at Warn.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.Int("channel", int(event.Channel)),
		slog.String("category", event.Category.String()),
	}
	if event.RunID != "" {
		attrs = append(attrs, slog.String("run_id", event.RunID))
	}
	if event.TickMicros != 0 {
		attrs = append(attrs, slog.Uint64("tick_us", uint64(event.TickMicros)))
	}

	level := slog.LevelDebug

	switch {
	case event.Step != nil:
		attrs = append(attrs,
			slog.Int("step", int(event.Step.Index)),
			slog.Float64("voltage", event.Step.Voltage),
			slog.Float64("current", event.Step.Current),
			slog.Float64("dwell", event.Step.Dwell),
			slog.Int("remaining_cycles", int(event.Step.RemainingCycles)),
		)
	case event.StateChange != nil:
		level = slog.LevelInfo
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "list", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
