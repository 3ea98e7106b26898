// Contracts between the pipeline and the components it drives

package scraper

import (
	"context"
	"errors"

	"go-jobscraper/internal/browser"
	"go-jobscraper/internal/models"
)

var (
	// ErrUnsupportedSource rejects listing URLs outside the source policy
	ErrUnsupportedSource = errors.New("unsupported job board")
	// ErrEmptyListing rejects listings whose pages yield no job URLs
	ErrEmptyListing = errors.New("listing has no job urls")
)

// Source is a job board the pipeline knows how to read
type Source interface {
	Name() string
	// Accepts is the source policy check for a listing URL
	Accepts(rawURL string) bool
	// ResolveURL turns a job link found on a listing page into an absolute URL
	ResolveURL(href string) (string, error)
}

// Fetcher loads rendered pages
type Fetcher interface {
	Fetch(ctx context.Context, req browser.FetchRequest) ([]browser.Document, error)
}

// JobExtractor turns markup and text into job records
type JobExtractor interface {
	ExtractURLs(ctx context.Context, document string) (*models.JobURLs, error)
	ExtractJob(ctx context.Context, text, applyURL string) (*models.JobInformation, error)
}
