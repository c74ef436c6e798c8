package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCapability marks failures of the external analysis capability.
	ErrCapability = errors.New("capability failure")
	// ErrInvariant marks broken workflow preconditions. These are wiring defects.
	ErrInvariant = errors.New("invariant violation")
	// ErrRendering marks diagram export failures.
	ErrRendering = errors.New("rendering failure")
	// ErrSource marks market data fetch failures.
	ErrSource = errors.New("source failure")
	// ErrInvalidResult marks results that do not satisfy their schema.
	ErrInvalidResult = errors.New("invalid result")
)

// FailureKind classifies a CapabilityFailure.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureMalformed FailureKind = "malformed"
	FailureRefusal   FailureKind = "refusal"
	FailureUpstream  FailureKind = "upstream"
)

// CapabilityFailure is returned once the capability gives up on a request.
type CapabilityFailure struct {
	Persona  Persona
	Kind     FailureKind
	Attempts int
	Err      error
}

func (e *CapabilityFailure) Error() string {
	return fmt.Sprintf("capability failure (%s) for %s after %d attempt(s): %v", e.Kind, e.Persona, e.Attempts, e.Err)
}

func (e *CapabilityFailure) Unwrap() error { return e.Err }

func (e *CapabilityFailure) Is(target error) bool { return target == ErrCapability }

// InvariantViolation reports a stage that ran before its dependencies were recorded.
type InvariantViolation struct {
	Stage   string
	Missing []string
	Reason  string
}

func (e *InvariantViolation) Error() string {
	msg := fmt.Sprintf("invariant violation in %s", e.Stage)
	if len(e.Missing) > 0 {
		msg += fmt.Sprintf(": missing %s", strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvariantViolation) Is(target error) bool { return target == ErrInvariant }

// SourceFailure wraps an error from a market data source.
type SourceFailure struct {
	Source string
	Err    error
}

func (e *SourceFailure) Error() string {
	return fmt.Sprintf("source %s failed: %v", e.Source, e.Err)
}

func (e *SourceFailure) Unwrap() error { return e.Err }

func (e *SourceFailure) Is(target error) bool { return target == ErrSource }

// RenderingFailure is handled locally by the diagram exporter and never aborts a run.
type RenderingFailure struct {
	Path string
	Err  error
}

func (e *RenderingFailure) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderingFailure) Unwrap() error { return e.Err }

func (e *RenderingFailure) Is(target error) bool { return target == ErrRendering }

// ValidationError lists every problem found in a result.
type ValidationError struct {
	Persona  Persona
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s result invalid: %s", e.Persona, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidResult }

// StageError annotates a failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }
