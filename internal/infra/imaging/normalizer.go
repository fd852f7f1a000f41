package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Normalizer resizes reference images to a fixed square.
type Normalizer struct {
	size      int
	maxPixels int
}

// NewNormalizer rejects images whose header declares more than maxPixels.
func NewNormalizer(size, maxPixels int) *Normalizer {
	return &Normalizer{size: size, maxPixels: maxPixels}
}

func (n *Normalizer) Size() int { return n.size }

func (n *Normalizer) Decode(r io.Reader) (image.Image, error) {
	// The header is read through a buffer so the full decode can replay it.
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, &entity.DecodeError{Source: "reference image", Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &entity.DecodeError{Source: "reference image", Err: entity.ErrEmptyImage}
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(n.maxPixels) {
		return nil, &entity.DecodeError{
			Source: "reference image",
			Err:    fmt.Errorf("%w: %dx%d > %d", entity.ErrImageTooLarge, cfg.Width, cfg.Height, n.maxPixels),
		}
	}

	img, _, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		return nil, &entity.DecodeError{Source: "reference image", Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &entity.DecodeError{Source: "reference image", Err: entity.ErrEmptyImage}
	}
	return img, nil
}

// Normalize ignores the source aspect ratio, matching the generator's
// expectation of a size x size input.
func (n *Normalizer) Normalize(img image.Image) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, n.size, n.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func (n *Normalizer) Stage(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
