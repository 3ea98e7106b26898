package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"
)

// ScreenShotDebugger saves full-page screenshots when a page misbehaves
type ScreenShotDebugger struct {
	outputDir string
	log       zerolog.Logger
}

// NewScreenShotDebugger creates the output directory if needed
func NewScreenShotDebugger(dir string, log zerolog.Logger) (*ScreenShotDebugger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create screenshot dir: %w", err)
	}
	return &ScreenShotDebugger{
		outputDir: dir,
		log:       log.With().Str("component", "screenshots").Logger(),
	}, nil
}

// Path is where a screenshot named name taken at ts is written
func (s *ScreenShotDebugger) Path(name string, ts time.Time) string {
	filename := fmt.Sprintf("%s_%s.png", name, ts.Format("2006-01-02_15-04-05"))
	return filepath.Join(s.outputDir, filename)
}

// CaptureAndLog takes a screenshot of page and logs message alongside it
func (s *ScreenShotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	path := s.Path(name, time.Now())
	s.log.Info().Str("path", path).Msg(message)

	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.log.Warn().Err(err).Msg("failed to capture screenshot")
		return err
	}
	return nil
}
