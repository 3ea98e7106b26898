package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"go-jobscraper/utils"
)

var launchArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
}

// Options configures the browsers a Manager launches
type Options struct {
	Headless          bool
	NavigationTimeout time.Duration
	ClickTimeout      time.Duration
	UserAgent         string
	// ExactPageLabels requires the page control's accessible name to equal the number
	ExactPageLabels bool
	// Scroll scrolls each loaded page to trigger lazy-loaded content
	Scroll      bool
	Cookies     []playwright.OptionalCookie
	Screenshots *utils.ScreenShotDebugger
}

// PlaywrightManager owns the playwright driver. Each Launch starts its own
// browser process, so concurrent fetches share nothing but the driver.
type PlaywrightManager struct {
	pw   *playwright.Playwright
	opts Options
	log  zerolog.Logger
}

// NewPlaywright starts the playwright driver
func NewPlaywright(opts Options, log zerolog.Logger) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	return &PlaywrightManager{
		pw:   pw,
		opts: opts,
		log:  log.With().Str("component", "browser").Logger(),
	}, nil
}

// InstallChromium downloads the driver and the chromium build it needs
func InstallChromium() error {
	return playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
}

// Launch starts a headless chromium with one context and one page
func (pm *PlaywrightManager) Launch(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := pm.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(pm.opts.Headless),
		Args:     launchArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	page, err := pm.newPage(browser)
	if err != nil {
		browser.Close()
		return nil, err
	}
	return &pageSession{browser: browser, page: page, opts: pm.opts, log: pm.log}, nil
}

func (pm *PlaywrightManager) newPage(browser playwright.Browser) (playwright.Page, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if pm.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(pm.opts.UserAgent)
	}
	browserCtx, err := browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	if len(pm.opts.Cookies) > 0 {
		if err := browserCtx.AddCookies(pm.opts.Cookies); err != nil {
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return page, nil
}

// Close stops the playwright driver
func (pm *PlaywrightManager) Close() error {
	return pm.pw.Stop()
}

type pageSession struct {
	browser playwright.Browser
	page    playwright.Page
	opts    Options
	log     zerolog.Logger
}

func (s *pageSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   millis(s.opts.NavigationTimeout),
	}); err != nil {
		if s.opts.Screenshots != nil {
			s.opts.Screenshots.CaptureAndLog(s.page, "navigation-failed", "Navigation failed for "+url)
		}
		return classify(err)
	}
	if s.opts.Scroll {
		if err := HumanScroll(ctx, s.page); err != nil {
			s.log.Debug().Err(err).Str("url", url).Msg("scroll failed")
		}
	}
	return nil
}

func (s *pageSession) Content() (string, error) {
	return s.page.Content()
}

func (s *pageSession) URL() string {
	return s.page.URL()
}

func (s *pageSession) AdvanceTo(ctx context.Context, page int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	control := s.page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{
		Name:  strconv.Itoa(page),
		Exact: playwright.Bool(s.opts.ExactPageLabels),
	}).First()

	if err := control.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: millis(s.opts.ClickTimeout),
	}); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return ErrNoMorePages
		}
		return fmt.Errorf("locate page %d control: %w", page, err)
	}

	if err := control.Click(playwright.LocatorClickOptions{
		Timeout: millis(s.opts.ClickTimeout),
	}); err != nil {
		return fmt.Errorf("click page %d control: %w", page, classify(err))
	}

	if err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: millis(s.opts.NavigationTimeout),
	}); err != nil {
		return fmt.Errorf("wait for page %d: %w", page, classify(err))
	}
	return nil
}

func (s *pageSession) Close() error {
	return s.browser.Close()
}

// classify maps playwright timeouts onto ErrNavigationTimeout
func classify(err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	return err
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// PrintPDF renders markup in a fresh headless browser and prints it to an A4 PDF
func (pm *PlaywrightManager) PrintPDF(ctx context.Context, markup string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := pm.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     launchArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}

	if err := page.SetContent(markup, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   millis(pm.opts.NavigationTimeout),
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", classify(err))
	}

	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String("12mm"),
			Bottom: playwright.String("12mm"),
			Left:   playwright.String("10mm"),
			Right:  playwright.String("10mm"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}
	return pdfBytes, nil
}
