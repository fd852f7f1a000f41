package httpserver

import (
	"errors"
	"net/http"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
}

type MotionSequenceResponse struct {
	MotionSequence string  `json:"motion_sequence"`
	FrameCount     int     `json:"frame_count"`
	FPS            float64 `json:"fps"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

type AnimateResponse struct {
	RequestID     string `json:"request_id"`
	AnimationPath string `json:"animation_path"`
	AnimationURL  string `json:"animation_url"`
}

// errorStatus maps pipeline errors to the HTTP status and message shown to
// the client.
func errorStatus(err error) (int, ErrorResponse) {
	var (
		validationErr *entity.ValidationError
		decodeErr     *entity.DecodeError
		timeoutErr    *entity.TimeoutError
		generationErr *entity.GenerationError
		maxBytesErr   *http.MaxBytesError
	)

	resp := ErrorResponse{Success: false, Error: err.Error()}
	switch {
	case errors.As(err, &maxBytesErr):
		resp.Message = "upload exceeds size limit"
		return http.StatusRequestEntityTooLarge, resp
	case errors.Is(err, http.ErrMissingFile):
		resp.Message = "missing upload"
		return http.StatusBadRequest, resp
	case errors.As(err, &validationErr):
		resp.Message = "invalid input"
		return http.StatusBadRequest, resp
	case errors.As(err, &decodeErr):
		resp.Message = "could not decode media"
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &timeoutErr):
		resp.Message = "generation timed out"
		resp.Stderr = timeoutErr.Stderr
		return http.StatusGatewayTimeout, resp
	case errors.As(err, &generationErr):
		resp.Message = "generation failed"
		resp.Stderr = generationErr.Stderr
		return http.StatusBadGateway, resp
	case errors.Is(err, entity.ErrBusy):
		resp.Message = "generator busy, try again later"
		return http.StatusServiceUnavailable, resp
	default:
		resp.Message = "internal error"
		return http.StatusInternalServerError, resp
	}
}
