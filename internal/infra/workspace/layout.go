// Package workspace owns the on-disk layout shared with the external generator:
// a staging directory for normalized inputs and an append-only output directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
	"github.com/google/uuid"
)

// OutputTimeLayout names generated videos with second resolution.
const OutputTimeLayout = "2006-01-02T15-04-05"

const OutputExt = ".mp4"

// Staged file names, prefixed with the request id by StagingPath.
const (
	MotionSequenceName = "motion_sequence.mp4"
	ReferenceImageName = "reference_image.png"
	UploadName         = "upload"
)

type Layout struct {
	TempDir   string
	OutputDir string
}

func New(tempDir, outputDir string) (*Layout, error) {
	tmp, err := filepath.Abs(tempDir)
	if err != nil {
		return nil, fmt.Errorf("resolve temp dir: %w", err)
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	return &Layout{TempDir: tmp, OutputDir: out}, nil
}

// Ensure creates both directories. Safe to call repeatedly.
func (l *Layout) Ensure() error {
	for _, dir := range []string{l.TempDir, l.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

func (l *Layout) StagingPath(id uuid.UUID, name string) string {
	return filepath.Join(l.TempDir, id.String()+"_"+name)
}

func (l *Layout) OutputPath(t time.Time) string {
	return filepath.Join(l.OutputDir, t.Format(OutputTimeLayout)+OutputExt)
}

// ResolveStaged maps a client supplied reference to an existing file that
// StagingPath produced for name. Relative references are taken relative to
// TempDir. Any other file in TempDir, such as a raw upload, is rejected.
func (l *Layout) ResolveStaged(field, ref, name string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &entity.ValidationError{Field: field, Reason: "is required"}
	}

	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.TempDir, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(l.TempDir, path)
	if err != nil || rel == "." || strings.ContainsRune(rel, filepath.Separator) || rel == ".." {
		return "", &entity.ValidationError{Field: field, Value: ref, Reason: "must reference an uploaded file"}
	}

	id, ok := strings.CutSuffix(rel, "_"+name)
	if !ok || uuid.Validate(id) != nil {
		return "", &entity.ValidationError{Field: field, Value: ref, Reason: "must reference a normalized " + strings.TrimSuffix(name, filepath.Ext(name))}
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", &entity.ValidationError{Field: field, Value: ref, Reason: "uploaded file not found"}
	}
	return path, nil
}
