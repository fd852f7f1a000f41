package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
	"github.com/fiapx/fiapx-animate-service/internal/domain/port"
	"go.uber.org/zap"
)

type NormalizerConfig struct {
	Size        int
	FPS         int
	FFmpegPath  string
	FFprobePath string
}

// Normalizer re-encodes motion sequences to size x size at a fixed frame rate.
// Frames are retimed rather than dropped or duplicated, so the frame count of
// the input is preserved.
type Normalizer struct {
	size        int
	fps         int
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

func NewNormalizer(cfg NormalizerConfig, logger *zap.Logger) *Normalizer {
	n := &Normalizer{
		size:        cfg.Size,
		fps:         cfg.FPS,
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		logger:      logger,
	}
	if n.ffmpegPath == "" {
		n.ffmpegPath = "ffmpeg"
	}
	if n.ffprobePath == "" {
		n.ffprobePath = "ffprobe"
	}
	return n
}

func (n *Normalizer) Normalize(ctx context.Context, videoPath string, outputPath string) (*port.NormalizedVideo, error) {
	in, err := n.Probe(ctx, videoPath)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.Is(err, entity.ErrNoVideoStream) || errors.As(err, &exitErr) {
			return nil, &entity.DecodeError{Source: "motion sequence", Err: err}
		}
		return nil, fmt.Errorf("probe motion sequence: %w", err)
	}
	if in.FrameCount == 0 {
		return nil, &entity.DecodeError{Source: "motion sequence", Err: entity.ErrNoFrames}
	}

	cmd := exec.CommandContext(ctx, n.ffmpegPath,
		"-v", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("scale=%d:%d,setpts=N/(%d*TB)", n.size, n.size, n.fps),
		"-r", strconv.Itoa(n.fps),
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	out, err := n.Probe(ctx, outputPath)
	if err != nil {
		return nil, fmt.Errorf("probe normalized video: %w", err)
	}
	if err := checkNormalized(in, out, n.size); err != nil {
		n.logger.Error("normalized motion sequence rejected",
			zap.Int("input_frames", in.FrameCount),
			zap.Int("output_frames", out.FrameCount),
			zap.Int("width", out.Width),
			zap.Int("height", out.Height),
		)
		return nil, err
	}

	n.logger.Info("motion sequence normalized",
		zap.String("path", outputPath),
		zap.Int("frames", out.FrameCount),
		zap.Int("source_width", in.Width),
		zap.Int("source_height", in.Height),
		zap.Float64("source_fps", in.FPS),
	)

	return &port.NormalizedVideo{
		Path:       outputPath,
		FrameCount: out.FrameCount,
		Width:      out.Width,
		Height:     out.Height,
		FPS:        out.FPS,
	}, nil
}

var (
	ErrFrameCountChanged = errors.New("normalized video frame count differs from source")
	ErrFrameSize         = errors.New("normalized video has unexpected frame size")
)

// checkNormalized verifies the re-encode kept every frame and produced
// size x size frames.
func checkNormalized(in, out *VideoInfo, size int) error {
	if out.FrameCount != in.FrameCount {
		return fmt.Errorf("%w: %d -> %d", ErrFrameCountChanged, in.FrameCount, out.FrameCount)
	}
	if out.Width != size || out.Height != size {
		return fmt.Errorf("%w: %dx%d, want %dx%d", ErrFrameSize, out.Width, out.Height, size, size)
	}
	return nil
}
