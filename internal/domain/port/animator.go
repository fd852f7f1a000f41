package port

import (
	"context"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
)

type Animator interface {
	BuildAndRun(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error)
}
