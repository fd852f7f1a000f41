package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
	"github.com/fiapx/fiapx-animate-service/internal/domain/port"
	"github.com/fiapx/fiapx-animate-service/internal/infra/metrics"
	"github.com/fiapx/fiapx-animate-service/internal/infra/workspace"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type AnimateUseCase struct {
	images    port.ImageNormalizer
	videos    port.VideoNormalizer
	animator  port.Animator
	publisher port.StatusPublisher
	layout    *workspace.Layout
	gate      *Gate
	logger    *zap.Logger
}

type AnimateConfig struct {
	MaxConcurrent int
	QueueTimeout  time.Duration
}

// NewAnimateUseCase wires the pipeline. publisher may be nil.
func NewAnimateUseCase(
	images port.ImageNormalizer,
	videos port.VideoNormalizer,
	animator port.Animator,
	publisher port.StatusPublisher,
	layout *workspace.Layout,
	logger *zap.Logger,
	cfg AnimateConfig,
) *AnimateUseCase {
	return &AnimateUseCase{
		images:    images,
		videos:    videos,
		animator:  animator,
		publisher: publisher,
		layout:    layout,
		gate:      NewGate(cfg.MaxConcurrent, cfg.QueueTimeout),
		logger:    logger,
	}
}

// AnimateInput is the raw submit event. Parameters stay text until validated.
type AnimateInput struct {
	ReferenceImage io.Reader
	MotionSequence string
	Seed           string
	Steps          string
	GuidanceScale  string
}

func (uc *AnimateUseCase) NormalizeReferenceImage(ctx context.Context, r io.Reader) (image.Image, error) {
	_, span := otel.Tracer("usecase").Start(ctx, "AnimateUseCase.NormalizeReferenceImage")
	defer span.End()

	start := time.Now()
	img, err := uc.images.Decode(r)
	if err != nil {
		span.RecordError(err)
		uc.logger.Warn("reference image rejected", zap.Error(err))
		return nil, err
	}

	out := uc.images.Normalize(img)
	metrics.StageDuration.WithLabelValues("normalize_image").Observe(time.Since(start).Seconds())

	uc.logger.Debug("reference image normalized",
		zap.Int("source_width", img.Bounds().Dx()),
		zap.Int("source_height", img.Bounds().Dy()),
		zap.Int("width", out.Bounds().Dx()),
	)
	return out, nil
}

// NormalizeMotionSequence stages an uploaded video and re-encodes it next to
// the upload under a request-scoped name.
func (uc *AnimateUseCase) NormalizeMotionSequence(ctx context.Context, r io.Reader, filename string) (*port.NormalizedVideo, error) {
	ctx, span := otel.Tracer("usecase").Start(ctx, "AnimateUseCase.NormalizeMotionSequence")
	defer span.End()

	id := uuid.New()
	log := uc.logger.With(zap.String("upload_id", id.String()), zap.String("filename", filename))

	uploadPath := uc.layout.StagingPath(id, workspace.UploadName+uploadExt(filename))
	// Only the normalized output is ever handed to the generator.
	defer func() {
		if err := os.Remove(uploadPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove raw upload", zap.String("file", uploadPath), zap.Error(err))
		}
	}()
	if err := saveUpload(r, uploadPath); err != nil {
		log.Error("failed to stage motion sequence upload", zap.Error(err))
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	start := time.Now()
	video, err := uc.videos.Normalize(ctx, uploadPath, uc.layout.StagingPath(id, workspace.MotionSequenceName))
	if err != nil {
		span.RecordError(err)
		log.Warn("motion sequence rejected", zap.Error(err))
		return nil, err
	}
	metrics.StageDuration.WithLabelValues("normalize_video").Observe(time.Since(start).Seconds())
	metrics.FramesNormalizedTotal.Add(float64(video.FrameCount))

	return video, nil
}

// Animate validates the submit event, stages the reference image and blocks
// until the external generator finishes.
func (uc *AnimateUseCase) Animate(ctx context.Context, in AnimateInput) (*entity.GenerationResult, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnimateUseCase.Animate")
	defer span.End()

	totalTimer := time.Now()

	params, err := ParseParams(in.Seed, in.Steps, in.GuidanceScale)
	if err != nil {
		return nil, uc.reject(span, err)
	}
	motionPath, err := uc.layout.ResolveStaged("motion_sequence", in.MotionSequence, workspace.MotionSequenceName)
	if err != nil {
		return nil, uc.reject(span, err)
	}
	if in.ReferenceImage == nil {
		return nil, uc.reject(span, &entity.ValidationError{Field: "reference_image", Reason: "is required"})
	}
	img, err := uc.NormalizeReferenceImage(ctx, in.ReferenceImage)
	if err != nil {
		return nil, uc.reject(span, err)
	}

	release, err := uc.gate.Acquire(ctx)
	if err != nil {
		if errors.Is(err, entity.ErrBusy) {
			metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeBusy).Inc()
		}
		return nil, err
	}
	defer release()

	id := uuid.New()
	span.SetAttributes(
		attribute.String("request.id", id.String()),
		attribute.Int64("request.seed", params.Seed),
		attribute.Int("request.steps", params.Steps),
		attribute.Float64("request.guidance_scale", params.GuidanceScale),
	)
	log := uc.logger.With(zap.String("request_id", id.String()))

	imagePath := uc.layout.StagingPath(id, workspace.ReferenceImageName)
	if err := uc.images.Stage(img, imagePath); err != nil {
		log.Error("failed to stage reference image", zap.Error(err))
		return nil, fmt.Errorf("stage reference image: %w", err)
	}

	req := entity.GenerationRequest{
		ID:                 id,
		ReferenceImagePath: imagePath,
		MotionSequencePath: motionPath,
		Params:             params,
	}

	genStart := time.Now()
	genCtx, spanGen := tracer.Start(ctx, "generate")
	metrics.ActiveGenerations.Inc()
	result, err := uc.animator.BuildAndRun(genCtx, req)
	metrics.ActiveGenerations.Dec()
	spanGen.End()
	metrics.StageDuration.WithLabelValues("generate").Observe(time.Since(genStart).Seconds())

	uc.publishStatus(ctx, entity.NewGenerationStatusMessage(req, result, err), log)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var timeoutErr *entity.TimeoutError
		if errors.As(err, &timeoutErr) {
			metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeTimeout).Inc()
		} else {
			metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		}
		log.Error("generation failed", zap.Error(err))
		return nil, err
	}

	metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	log.Info("animation ready",
		zap.String("animation_path", result.OutputPath),
		zap.Duration("generation_time", result.Duration()),
	)
	return result, nil
}

func (uc *AnimateUseCase) reject(span trace.Span, err error) error {
	span.RecordError(err)
	metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
	uc.logger.Info("animate request rejected", zap.Error(err))
	return err
}

func (uc *AnimateUseCase) publishStatus(ctx context.Context, msg entity.GenerationStatusMessage, log *zap.Logger) {
	if uc.publisher == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal status", zap.Error(err))
		return
	}
	// The HTTP client may already be gone; the event still matters.
	if err := uc.publisher.PublishStatus(context.WithoutCancel(ctx), data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}

func saveUpload(r io.Reader, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// uploadExt keeps a short alphanumeric extension so ffmpeg can use it as a
// container hint; anything else is dropped.
func uploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
