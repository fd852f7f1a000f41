package usecase

import (
	"testing"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParamsValid(t *testing.T) {
	tests := []struct {
		name                  string
		seed, steps, guidance string
		want                  entity.GenerationParams
	}{
		{"defaults from demo", "1", "25", "7.5", entity.GenerationParams{Seed: 1, Steps: 25, GuidanceScale: 7.5}},
		{"random seed", "-1", "25", "7.5", entity.GenerationParams{Seed: -1, Steps: 25, GuidanceScale: 7.5}},
		{"blank seed is random", "  ", "10", "3", entity.GenerationParams{Seed: entity.RandomSeed, Steps: 10, GuidanceScale: 3}},
		{"surrounding whitespace", " 42 ", " 50\n", "\t2.25 ", entity.GenerationParams{Seed: 42, Steps: 50, GuidanceScale: 2.25}},
		{"large seed", "9007199254740993", "1", "0", entity.GenerationParams{Seed: 9007199254740993, Steps: 1, GuidanceScale: 0}},
		{"upper bounds", "0", "1000", "50", entity.GenerationParams{Seed: 0, Steps: 1000, GuidanceScale: 50}},
		{"exponent guidance", "3", "25", "7.5e0", entity.GenerationParams{Seed: 3, Steps: 25, GuidanceScale: 7.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.seed, tt.steps, tt.guidance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseParamsInvalid(t *testing.T) {
	tests := []struct {
		name                  string
		seed, steps, guidance string
		field                 string
	}{
		{"non-numeric seed", "abc", "25", "7.5", "seed"},
		{"fractional seed", "1.5", "25", "7.5", "seed"},
		{"seed below -1", "-2", "25", "7.5", "seed"},
		{"shell metacharacters", "1; rm -rf /", "25", "7.5", "seed"},
		{"blank steps", "1", "", "7.5", "steps"},
		{"fractional steps", "1", "25.5", "7.5", "steps"},
		{"zero steps", "1", "0", "7.5", "steps"},
		{"too many steps", "1", "1001", "7.5", "steps"},
		{"blank guidance", "1", "25", " ", "guidance_scale"},
		{"word guidance", "1", "25", "high", "guidance_scale"},
		{"nan guidance", "1", "25", "NaN", "guidance_scale"},
		{"inf guidance", "1", "25", "+Inf", "guidance_scale"},
		{"negative guidance", "1", "25", "-0.5", "guidance_scale"},
		{"huge guidance", "1", "25", "51", "guidance_scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.seed, tt.steps, tt.guidance)
			var vErr *entity.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}
