package usecase

import (
	"context"
	"time"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
)

// Gate bounds how many generations run at once. Waiters give up after wait.
type Gate struct {
	slots chan struct{}
	wait  time.Duration
}

func NewGate(size int, wait time.Duration) *Gate {
	if size < 1 {
		size = 1
	}
	return &Gate{slots: make(chan struct{}, size), wait: wait}
}

func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	waitCtx := ctx
	if g.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.wait)
		defer cancel()
	}

	select {
	case g.slots <- struct{}{}:
		return func() { <-g.slots }, nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, entity.ErrBusy
	}
}
