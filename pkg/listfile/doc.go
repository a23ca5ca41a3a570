// Package listfile reads and writes channel list files.
//
// A list file holds one row per step index. Each row has three fields in
// fixed order (dwell, voltage, current) separated by a separator character.
// Lists may have different lengths; a field past the end of its list is
// written as a "no value" marker:
//
//	0.500000,1.000000,0.100000
//	0.500000,2.000000,=
//	=,3.000000,=
//
// Numbers are written with six fractional digits. On load, whitespace before
// each field is ignored and the last row needs no terminating newline.
//
// Loading is all-or-nothing: a channel's lists change only when the whole
// file parses.
//
// Files live on a storage medium represented by an afero.Fs. A Codec created
// without a filesystem behaves like a supply without the storage option and
// fails every load and save with psuerr.ErrStorageUnavailable.
package listfile
