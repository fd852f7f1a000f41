package entity

import (
	"time"

	"github.com/google/uuid"
)

type GenerationStatus string

const (
	GenerationStatusCompleted GenerationStatus = "COMPLETED"
	GenerationStatusFailed    GenerationStatus = "FAILED"
)

// RandomSeed asks the generator to pick its own seed.
const RandomSeed int64 = -1

type GenerationParams struct {
	Seed          int64
	Steps         int
	GuidanceScale float64
}

// GenerationRequest is the validated bundle handed to the external generator.
type GenerationRequest struct {
	ID                 uuid.UUID
	ReferenceImagePath string
	MotionSequencePath string
	Params             GenerationParams
}

func (r GenerationRequest) Validate() error {
	switch {
	case r.ReferenceImagePath == "":
		return &ValidationError{Field: "reference_image", Reason: "path is required"}
	case r.MotionSequencePath == "":
		return &ValidationError{Field: "motion_sequence", Reason: "path is required"}
	case r.Params.Steps <= 0:
		return &ValidationError{Field: "steps", Reason: "must be positive"}
	}
	return nil
}

type GenerationResult struct {
	RequestID  uuid.UUID
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *GenerationResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
