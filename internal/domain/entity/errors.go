package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBusy is returned when a generation slot could not be acquired in time.
	ErrBusy = errors.New("generator is busy, try again later")

	ErrNoVideoStream = errors.New("no video stream found")
	ErrNoFrames      = errors.New("video contains no frames")
	ErrEmptyImage    = errors.New("image has no pixels")
	ErrImageTooLarge = errors.New("image exceeds pixel limit")
	ErrNoArtifact    = errors.New("generator exited successfully but wrote no output")
)

type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// GenerationError reports a failed external generator run. ExitCode is -1
// when the process could not be started.
type GenerationError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("generation failed (exit code %d)", e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

type TimeoutError struct {
	Timeout time.Duration
	Stderr  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timed out after %s", e.Timeout)
}
