package browser

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
)

// HumanScroll scrolls down in steps and back up a little, so lazy-loaded
// listing entries are rendered before the content is captured
func HumanScroll(ctx context.Context, page playwright.Page) error {
	for i := 0; i < 5; i++ {
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight / 2)"); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(150 * time.Millisecond):
		}
	}
	_, err := page.Evaluate("window.scrollBy(0, -200)")
	return err
}
