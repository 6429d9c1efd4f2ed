package services

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"easyapply/browser"
)

// ScreenshotService saves page captures into the run's artifact directory
// and remembers them for upload at the end of the run.
type ScreenshotService struct {
	dir   string
	taken []string
	now   func() time.Time
	log   *zap.SugaredLogger
}

// NewScreenshotService returns a service writing to dir. An empty dir
// disables captures.
func NewScreenshotService(dir string, log *zap.SugaredLogger) *ScreenshotService {
	return &ScreenshotService{dir: dir, now: time.Now, log: log}
}

// Capture takes a screenshot named after screenshotType and returns its path.
func (s *ScreenshotService) Capture(page browser.Page, screenshotType string) (string, error) {
	if s.dir == "" {
		return "", nil
	}
	s.log.Debugf("Taking screenshot: %s", screenshotType)

	filename := fmt.Sprintf("%s_%s.png", screenshotType, s.now().Format("150405"))
	path := filepath.Join(s.dir, filename)
	if err := page.Screenshot(path); err != nil {
		return "", errors.Wrapf(err, "failed to take screenshot %s", screenshotType)
	}

	s.taken = append(s.taken, path)
	s.log.Debugf("Saved screenshot %s", path)
	return path, nil
}

// Taken lists every capture saved so far.
func (s *ScreenshotService) Taken() []string { return s.taken }
