package cpm

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrInvalidTask indicates a task that cannot be scheduled at all.
	ErrInvalidTask = errors.New("invalid task")

	// ErrCyclicGraph indicates a pass that failed to converge within its sweep bound.
	ErrCyclicGraph = errors.New("cyclic task graph")

	// ErrInvalidTolerance indicates a negative or non-finite critical tolerance.
	ErrInvalidTolerance = errors.New("invalid critical tolerance")
)

// InvalidTaskError reports a task rejected before any pass runs.
// Wraps ErrInvalidTask for errors.Is() compatibility.
type InvalidTaskError struct {
	TaskID string
	Index  int // position in the input list
	Reason string
}

func (e *InvalidTaskError) Error() string {
	if e == nil {
		return ""
	}
	if e.TaskID == "" {
		return fmt.Sprintf("%s at index %d: %s", ErrInvalidTask, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidTask, e.TaskID, e.Reason)
}

func (e *InvalidTaskError) Unwrap() error { return ErrInvalidTask }

// CyclicGraphError reports a fixed-point pass that was still changing after
// its last allowed sweep.
// Wraps ErrCyclicGraph for errors.Is() compatibility.
type CyclicGraphError struct {
	Pass     string   // "forward" or "backward"
	Sweeps   int      // sweeps performed
	Unstable []string // ids that changed in the final sweep, input order
	Cycle    []string // one dependency cycle, if DFS found one
}

func (e *CyclicGraphError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s pass did not converge after %d sweeps; unstable tasks: %s",
		ErrCyclicGraph, e.Pass, e.Sweeps, strings.Join(e.Unstable, ", "))
	if len(e.Cycle) > 0 {
		msg += "; cycle: " + strings.Join(e.Cycle, " → ")
	}
	return msg
}

func (e *CyclicGraphError) Unwrap() error { return ErrCyclicGraph }
