package port

import (
	"context"
	"image"
	"io"
)

type NormalizedVideo struct {
	Path       string
	FrameCount int
	Width      int
	Height     int
	FPS        float64
}

type VideoNormalizer interface {
	Normalize(ctx context.Context, videoPath string, outputPath string) (*NormalizedVideo, error)
}

type ImageNormalizer interface {
	Decode(r io.Reader) (image.Image, error)
	Normalize(img image.Image) image.Image
	Stage(img image.Image, path string) error
}
