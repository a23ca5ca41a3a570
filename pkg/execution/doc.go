// Package execution implements the list execution engine.
//
// The engine plays each channel's lists back in real time. It has no
// goroutines and no timers of its own: the host calls Tick periodically with
// a free-running microsecond clock that wraps at 2^32, and every channel is
// advanced from within that call.
//
// # Channel States
//
//   - Idle: not running (remaining cycles -1)
//   - Started: Start was called, the first point is applied on the next tick
//   - Running: the channel steps through its lists, one point per dwell
//
// A run executes the channel's repeat count in cycles, where a cycle is the
// length of the longest list. Shorter lists repeat modulo their own length.
// A repeat count of zero runs until aborted.
//
// # Safety Limits
//
// Before applying a point the engine checks the voltage and current against
// the channel's limits, and the resulting power against the power limit. A
// violation is reported through the ErrorReporter and aborts every channel,
// not only the offending one.
//
// # Tick Ordering
//
// Channels are processed in order. A run finishing on channel k, or a limit
// violation on channel k, ends the tick: channels after k are not examined
// until the next tick. Tick returns a TickResult describing where and why it
// stopped.
package execution
