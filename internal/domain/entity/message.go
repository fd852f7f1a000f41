package entity

import (
	"errors"

	"github.com/google/uuid"
)

// GenerationStatusMessage is published after every generation attempt.
type GenerationStatusMessage struct {
	RequestID       uuid.UUID        `json:"request_id"`
	Status          GenerationStatus `json:"status"`
	AnimationPath   string           `json:"animation_path,omitempty"`
	Seed            int64            `json:"seed"`
	Steps           int              `json:"steps"`
	GuidanceScale   float64          `json:"guidance_scale"`
	ExitCode        *int             `json:"exit_code,omitempty"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	DurationSeconds float64          `json:"duration_seconds,omitempty"`
}

func NewGenerationStatusMessage(req GenerationRequest, result *GenerationResult, err error) GenerationStatusMessage {
	msg := GenerationStatusMessage{
		RequestID:     req.ID,
		Seed:          req.Params.Seed,
		Steps:         req.Params.Steps,
		GuidanceScale: req.Params.GuidanceScale,
	}

	if err != nil {
		msg.Status = GenerationStatusFailed
		msg.ErrorMessage = err.Error()
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			code := genErr.ExitCode
			msg.ExitCode = &code
		}
		return msg
	}

	msg.Status = GenerationStatusCompleted
	msg.AnimationPath = result.OutputPath
	msg.DurationSeconds = result.Duration().Seconds()
	return msg
}
