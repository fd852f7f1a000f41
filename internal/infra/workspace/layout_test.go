package workspace

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/fiapx/fiapx-animate-service/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayout(t *testing.T) *Layout {
	t.Helper()
	root := t.TempDir()
	l, err := New(filepath.Join(root, "tmp"), filepath.Join(root, "outputs"))
	require.NoError(t, err)
	require.NoError(t, l.Ensure())
	return l
}

func TestEnsureIsIdempotent(t *testing.T) {
	l := newLayout(t)
	require.NoError(t, l.Ensure())

	for _, dir := range []string{l.TempDir, l.OutputDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestOutputPath(t *testing.T) {
	l := newLayout(t)
	first := time.Date(2024, 3, 9, 14, 5, 7, 999, time.Local)

	p1 := l.OutputPath(first)
	p2 := l.OutputPath(first.Add(time.Second))

	assert.Equal(t, filepath.Join(l.OutputDir, "2024-03-09T14-05-07.mp4"), p1)
	assert.NotEqual(t, p1, p2)
	assert.Regexp(t, regexp.MustCompile(`outputs/\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}\.mp4$`), filepath.ToSlash(p2))
}

func TestStagingPathIsRequestScoped(t *testing.T) {
	l := newLayout(t)
	a := l.StagingPath(uuid.New(), MotionSequenceName)
	b := l.StagingPath(uuid.New(), MotionSequenceName)

	assert.NotEqual(t, a, b)
	assert.Equal(t, l.TempDir, filepath.Dir(a))
}

func TestResolveStaged(t *testing.T) {
	l := newLayout(t)
	id := uuid.New()
	staged := l.StagingPath(id, MotionSequenceName)
	require.NoError(t, os.WriteFile(staged, []byte("x"), 0644))

	rawUpload := l.StagingPath(id, UploadName+".mov")
	require.NoError(t, os.WriteFile(rawUpload, []byte("x"), 0644))

	otherImage := l.StagingPath(uuid.New(), ReferenceImageName)
	require.NoError(t, os.WriteFile(otherImage, []byte("x"), 0644))

	unprefixed := filepath.Join(l.TempDir, "clip_"+MotionSequenceName)
	require.NoError(t, os.WriteFile(unprefixed, []byte("x"), 0644))

	nested := filepath.Join(l.TempDir, "sub", uuid.NewString()+"_"+MotionSequenceName)
	require.NoError(t, os.MkdirAll(filepath.Dir(nested), 0755))
	require.NoError(t, os.WriteFile(nested, []byte("x"), 0644))

	outside := filepath.Join(filepath.Dir(l.TempDir), uuid.NewString()+"_"+MotionSequenceName)
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

	t.Run("absolute path inside temp dir", func(t *testing.T) {
		got, err := l.ResolveStaged("motion_sequence", staged, MotionSequenceName)
		require.NoError(t, err)
		assert.Equal(t, staged, got)
	})

	t.Run("bare file name", func(t *testing.T) {
		got, err := l.ResolveStaged("motion_sequence", filepath.Base(staged), MotionSequenceName)
		require.NoError(t, err)
		assert.Equal(t, staged, got)
	})

	rejected := map[string]string{
		"empty":                  "  ",
		"outside":                outside,
		"traversal":              "../" + filepath.Base(outside),
		"temp dir itself":        l.TempDir,
		"missing":                l.StagingPath(uuid.New(), MotionSequenceName),
		"raw upload":             rawUpload,
		"raw upload bare name":   filepath.Base(rawUpload),
		"staged reference image": otherImage,
		"name without id":        unprefixed,
		"nested directory":       nested,
	}
	for name, ref := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := l.ResolveStaged("motion_sequence", ref, MotionSequenceName)
			var vErr *entity.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "motion_sequence", vErr.Field)
		})
	}
}
