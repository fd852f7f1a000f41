package usecase

import (
	"context"
	"os"
	"sync"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
	"github.com/fiapx/fiapx-animate-service/internal/domain/port"
)

type mockAnimator struct {
	mu      sync.Mutex
	calls   []entity.GenerationRequest
	runFunc func(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error)
}

func (m *mockAnimator) BuildAndRun(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	return m.runFunc(ctx, req)
}

func (m *mockAnimator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockVideoNormalizer struct {
	inputPath  string
	inputData  []byte
	outputPath string
	err        error
}

func (m *mockVideoNormalizer) Normalize(_ context.Context, videoPath string, outputPath string) (*port.NormalizedVideo, error) {
	m.inputPath = videoPath
	m.outputPath = outputPath
	m.inputData, _ = os.ReadFile(videoPath)
	if m.err != nil {
		return nil, m.err
	}
	if err := os.WriteFile(outputPath, []byte("normalized"), 0644); err != nil {
		return nil, err
	}
	return &port.NormalizedVideo{Path: outputPath, FrameCount: 48, Width: 512, Height: 512, FPS: 25}, nil
}

type mockPublisher struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

func (m *mockPublisher) PublishStatus(_ context.Context, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return m.err
}
