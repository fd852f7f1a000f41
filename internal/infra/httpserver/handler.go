package httpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"path/filepath"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
	"github.com/fiapx/fiapx-animate-service/internal/domain/port"
	"github.com/fiapx/fiapx-animate-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pipeline is the part of the animate use case the HTTP layer drives.
type Pipeline interface {
	NormalizeReferenceImage(ctx context.Context, r io.Reader) (image.Image, error)
	NormalizeMotionSequence(ctx context.Context, r io.Reader, filename string) (*port.NormalizedVideo, error)
	Animate(ctx context.Context, in usecase.AnimateInput) (*entity.GenerationResult, error)
}

type Handler struct {
	pipeline Pipeline
	logger   *zap.Logger
}

func NewHandler(pipeline Pipeline, logger *zap.Logger) *Handler {
	return &Handler{pipeline: pipeline, logger: logger}
}

// ReferenceImage answers an image upload with the normalized PNG.
func (h *Handler) ReferenceImage(c *gin.Context) {
	f, _, err := openFormFile(c, "image")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	img, err := h.pipeline.NormalizeReferenceImage(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		h.fail(c, fmt.Errorf("encode png: %w", err))
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// MotionSequence normalizes an uploaded video and returns the staged file
// name, relative to the temp dir, that the client passes back on submit.
func (h *Handler) MotionSequence(c *gin.Context) {
	f, filename, err := openFormFile(c, "video")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	video, err := h.pipeline.NormalizeMotionSequence(c.Request.Context(), f, filename)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, MotionSequenceResponse{
		MotionSequence: filepath.Base(video.Path),
		FrameCount:     video.FrameCount,
		FPS:            video.FPS,
		Width:          video.Width,
		Height:         video.Height,
	})
}

// Animate runs a generation synchronously and returns the output path.
func (h *Handler) Animate(c *gin.Context) {
	var in usecase.AnimateInput

	// Read the file first so an oversized body fails here, not silently
	// inside PostForm.
	f, _, err := openFormFile(c, "reference_image")
	switch {
	case err == nil:
		defer f.Close()
		in.ReferenceImage = f
	case errors.Is(err, http.ErrMissingFile):
		// Left nil; the use case reports it as a validation error.
	default:
		h.fail(c, err)
		return
	}

	in.MotionSequence = c.PostForm("motion_sequence")
	in.Seed = c.PostForm("seed")
	in.Steps = c.PostForm("steps")
	in.GuidanceScale = c.PostForm("guidance_scale")

	result, err := h.pipeline.Animate(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, AnimateResponse{
		RequestID:     result.RequestID.String(),
		AnimationPath: result.OutputPath,
		AnimationURL:  "/outputs/" + filepath.Base(result.OutputPath),
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, resp := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}

func openFormFile(c *gin.Context, field string) (io.ReadCloser, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) || errors.Is(err, http.ErrMissingFile) {
			return nil, "", err
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, "", &entity.ValidationError{Field: field, Reason: "request is not multipart"}
		}
		return nil, "", fmt.Errorf("read form file %s: %w", field, err)
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open form file %s: %w", field, err)
	}
	return f, header.Filename, nil
}
