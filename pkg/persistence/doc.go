// Package persistence provides runtime state persistence for the list engine.
//
// This package handles the JSON serialization of every channel's lists and
// repeat count so programmed sequences survive a restart. Individual list
// files are handled separately by the listfile package.
package persistence
