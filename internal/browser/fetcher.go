package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNoMorePages means the listing has no control for the next page number
	ErrNoMorePages = errors.New("no further page")
	// ErrNavigationTimeout means a page did not reach the content-ready state in time
	ErrNavigationTimeout = errors.New("navigation timed out")
)

// FetchError is a failure of the initial page load of a fetch
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchRequest asks for one URL, optionally following its numbered pagination
type FetchRequest struct {
	URL      string
	Paginate bool
}

// Document is the rendered markup of one page at one point in time
type Document struct {
	URL       string
	Page      int
	HTML      string
	FetchedAt time.Time
}

// Session is one browser instance with a single open page
type Session interface {
	// Navigate loads url and waits for the content-ready state
	Navigate(ctx context.Context, url string) error
	// Content returns the current rendered markup
	Content() (string, error)
	// URL returns the page's current address
	URL() string
	// AdvanceTo activates the control labelled with the page number and waits
	// for the content-ready state. It returns ErrNoMorePages when there is no such control.
	AdvanceTo(ctx context.Context, page int) error
	Close() error
}

// Launcher starts a fresh browser session
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// FetchConfig bounds pagination
type FetchConfig struct {
	// MaxPages caps the pages visited in paginated mode, 0 means no cap
	MaxPages     int
	PageDelayMin time.Duration
	PageDelayMax time.Duration
}

// Fetcher loads pages through a browser. Every Fetch owns its session from
// launch to close.
type Fetcher struct {
	launcher Launcher
	cfg      FetchConfig
	log      zerolog.Logger
}

// NewFetcher creates a fetcher on top of a launcher
func NewFetcher(launcher Launcher, cfg FetchConfig, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		launcher: launcher,
		cfg:      cfg,
		log:      log.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch returns one document in single-page mode, or one per visited listing
// page in visit order in paginated mode. The result is never empty on success.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := f.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			f.log.Warn().Err(cerr).Str("url", req.URL).Msg("failed to close browser")
		}
	}()

	if err := session.Navigate(ctx, req.URL); err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}
	first, err := capture(session, 1)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}
	if !req.Paginate {
		return []Document{first}, nil
	}
	return f.paginate(ctx, session, first)
}

func (f *Fetcher) paginate(ctx context.Context, session Session, first Document) ([]Document, error) {
	log := f.log.With().Str("url", first.URL).Logger()
	docs := []Document{first}

	for page := 2; ; page++ {
		if f.cfg.MaxPages > 0 && len(docs) >= f.cfg.MaxPages {
			log.Warn().Int("max_pages", f.cfg.MaxPages).Msg("page cap reached, stopping pagination")
			break
		}
		if err := f.pause(ctx); err != nil {
			return nil, err
		}

		if err := session.AdvanceTo(ctx, page); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, ErrNoMorePages) {
				log.Debug().Int("pages", len(docs)).Msg("reached last page")
			} else {
				log.Warn().Err(err).Int("page", page).Msg("could not advance, treating as last page")
			}
			break
		}

		doc, err := capture(session, page)
		if err != nil {
			log.Warn().Err(err).Int("page", page).Msg("could not read page content, treating as last page")
			break
		}
		log.Debug().Int("page", page).Msg("captured listing page")
		docs = append(docs, doc)
	}
	return docs, nil
}

func capture(session Session, page int) (Document, error) {
	html, err := session.Content()
	if err != nil {
		return Document{}, fmt.Errorf("read content: %w", err)
	}
	return Document{
		URL:       session.URL(),
		Page:      page,
		HTML:      html,
		FetchedAt: time.Now(),
	}, nil
}

// pause waits a random delay between page advances
func (f *Fetcher) pause(ctx context.Context) error {
	min, max := f.cfg.PageDelayMin, f.cfg.PageDelayMax
	if max <= 0 {
		return ctx.Err()
	}
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
