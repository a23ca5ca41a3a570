// Package list implements the per-channel list store.
//
// Each channel owns three fixed-capacity sequences (dwell, voltage, current),
// a repeat count and a dirty flag. The store keeps every sequence in a
// preallocated array of MaxLength entries, so setting a list never allocates.
//
// # Length Compatibility
//
// The three sequences may have different lengths. Nothing is enforced when a
// list is written; compatibility is checked on demand:
//
//   - a length of 0 is never compatible with anything
//   - a length of 1 is compatible with any non-zero length (broadcast)
//   - otherwise both lengths must be equal
//
// Execution itself does not depend on compatibility: the engine indexes each
// sequence modulo its own length. Callers use the compatibility checks as a
// gate before starting a run.
//
// # Dirty Flag
//
// The dirty flag is set whenever a sequence is replaced and is only cleared by
// ClearDirty. Callers observe it with IsDirty and clear it at their own pace.
package list
