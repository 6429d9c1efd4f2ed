package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"easyapply/browser/browsertest"
)

func TestScreenshotService_Capture(t *testing.T) {
	dir := t.TempDir()
	s := NewScreenshotService(dir, zap.NewNop().Sugar())
	s.now = func() time.Time { return time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC) }
	page := browsertest.NewPage()

	path, err := s.Capture(page, "job_003_failed")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "job_003_failed_130405.png"), path)
	assert.FileExists(t, path)
	assert.Equal(t, []string{path}, s.Taken())
}

func TestScreenshotService_Disabled(t *testing.T) {
	s := NewScreenshotService("", zap.NewNop().Sugar())
	page := browsertest.NewPage()

	path, err := s.Capture(page, "job_001_failed")

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Empty(t, page.Screenshots)
	assert.Empty(t, s.Taken())
}
