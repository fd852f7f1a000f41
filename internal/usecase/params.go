package usecase

import (
	"math"
	"strconv"
	"strings"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
)

const (
	MinSteps         = 1
	MaxSteps         = 1000
	MinGuidanceScale = 0.0
	MaxGuidanceScale = 50.0
)

// ParseParams converts form text into typed generation parameters. A blank
// seed means "random"; every other field is required.
func ParseParams(seedText, stepsText, guidanceText string) (entity.GenerationParams, error) {
	var p entity.GenerationParams

	seedText = strings.TrimSpace(seedText)
	if seedText == "" {
		p.Seed = entity.RandomSeed
	} else {
		seed, err := strconv.ParseInt(seedText, 10, 64)
		if err != nil {
			return p, &entity.ValidationError{Field: "seed", Value: seedText, Reason: "must be an integer"}
		}
		if seed < entity.RandomSeed {
			return p, &entity.ValidationError{Field: "seed", Value: seedText, Reason: "must be -1 or a non-negative integer"}
		}
		p.Seed = seed
	}

	stepsText = strings.TrimSpace(stepsText)
	steps, err := strconv.Atoi(stepsText)
	if err != nil {
		return p, &entity.ValidationError{Field: "steps", Value: stepsText, Reason: "must be an integer"}
	}
	if steps < MinSteps || steps > MaxSteps {
		return p, &entity.ValidationError{Field: "steps", Value: stepsText,
			Reason: "must be between " + strconv.Itoa(MinSteps) + " and " + strconv.Itoa(MaxSteps)}
	}
	p.Steps = steps

	guidanceText = strings.TrimSpace(guidanceText)
	guidance, err := strconv.ParseFloat(guidanceText, 64)
	if err != nil || math.IsNaN(guidance) || math.IsInf(guidance, 0) {
		return p, &entity.ValidationError{Field: "guidance_scale", Value: guidanceText, Reason: "must be a number"}
	}
	if guidance < MinGuidanceScale || guidance > MaxGuidanceScale {
		return p, &entity.ValidationError{Field: "guidance_scale", Value: guidanceText, Reason: "must be between 0 and 50"}
	}
	p.GuidanceScale = guidance

	return p, nil
}
