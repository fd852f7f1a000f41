// Package animator runs the external animation generator and reports the
// video it produced.
package animator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
	"github.com/fiapx/fiapx-animate-service/internal/infra/workspace"
	"go.uber.org/zap"
)

type Config struct {
	// Program and BaseArgs prefix every invocation, e.g. "python" and
	// ["-m", "demo.animate_dist"].
	Program  string
	BaseArgs []string
	Dir      string
	// Env is appended to the service's own environment.
	Env         []string
	Timeout     time.Duration
	StderrLimit int
}

type Option func(*Animator)

// WithClock replaces time.Now for output naming.
func WithClock(now func() time.Time) Option {
	return func(a *Animator) { a.now = now }
}

type Animator struct {
	cfg    Config
	layout *workspace.Layout
	now    func() time.Time
	logger *zap.Logger
}

func NewAnimator(cfg Config, layout *workspace.Layout, logger *zap.Logger, opts ...Option) *Animator {
	a := &Animator{cfg: cfg, layout: layout, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildArgs returns the generator's named flags in a fixed order.
func BuildArgs(req entity.GenerationRequest, savePath string) []string {
	return []string{
		"--reference_image", req.ReferenceImagePath,
		"--motion_sequence", req.MotionSequencePath,
		"--random_seed", strconv.FormatInt(req.Params.Seed, 10),
		"--step", strconv.Itoa(req.Params.Steps),
		"--guidance_scale", strconv.FormatFloat(req.Params.GuidanceScale, 'f', -1, 64),
		"--save_path", savePath,
	}
}

func (a *Animator) BuildAndRun(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startedAt := a.now()
	savePath := a.layout.OutputPath(startedAt)
	args := append(append([]string{}, a.cfg.BaseArgs...), BuildArgs(req, savePath)...)

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if a.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
	}
	defer cancel()

	stderr := newTailBuffer(a.cfg.StderrLimit)
	cmd := exec.CommandContext(runCtx, a.cfg.Program, args...)
	cmd.Dir = a.cfg.Dir
	if len(a.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), a.cfg.Env...)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	// Children of the generator may keep stderr open after it is killed.
	cmd.WaitDelay = 5 * time.Second

	log := a.logger.With(zap.String("request_id", req.ID.String()))
	log.Info("starting generator",
		zap.String("program", a.cfg.Program),
		zap.Strings("args", args),
		zap.Duration("timeout", a.cfg.Timeout),
	)

	runErr := cmd.Run()
	finishedAt := a.now()

	if runErr != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			log.Error("generator timed out", zap.Duration("timeout", a.cfg.Timeout))
			return nil, &entity.TimeoutError{Timeout: a.cfg.Timeout, Stderr: stderr.String()}
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("generation cancelled: %w", ctx.Err())
		}

		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			log.Error("generator failed",
				zap.Int("exit_code", exitErr.ExitCode()),
				zap.String("stderr", stderr.String()),
			)
			return nil, &entity.GenerationError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String(), Err: runErr}
		}
		return nil, &entity.GenerationError{ExitCode: -1, Err: fmt.Errorf("start %s: %w", a.cfg.Program, runErr)}
	}

	if err := verifyArtifact(savePath); err != nil {
		log.Error("generator produced no artifact", zap.String("save_path", savePath), zap.Error(err))
		return nil, &entity.GenerationError{ExitCode: 0, Stderr: stderr.String(), Err: err}
	}

	log.Info("generation completed",
		zap.String("save_path", savePath),
		zap.Duration("elapsed", finishedAt.Sub(startedAt)),
	)

	return &entity.GenerationResult{
		RequestID:  req.ID,
		OutputPath: savePath,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}, nil
}

func verifyArtifact(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrNoArtifact, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", entity.ErrNoArtifact, path)
	}
	return nil
}
