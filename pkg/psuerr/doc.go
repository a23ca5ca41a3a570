// Package psuerr defines the error vocabulary shared by the list subsystem.
//
// Errors travel two ways. Configuration-time operations (load, save, start)
// return Go errors wrapping one of the sentinels below. Runtime limit
// violations never propagate as Go errors; the execution engine reports them
// as numeric codes through an ErrorReporter, typically a Queue that the
// surrounding firmware drains at its own cadence.
//
// CodeOf maps any returned error to the numeric code the firmware reports.
package psuerr
