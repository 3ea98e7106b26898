package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"go-jobscraper/internal/browser"
	"go-jobscraper/internal/dedup"
	"go-jobscraper/internal/htmltext"
	"go-jobscraper/internal/models"
)

const defaultConcurrency = 4

// Options tunes a pipeline run
type Options struct {
	// Concurrency bounds the fetches and model calls in flight per stage
	Concurrency int
	// CompactText collapses whitespace in detail text before extraction
	CompactText bool
}

// Pipeline scrapes a listing into job records: listing pages, then job
// URLs, then one record per job detail page.
type Pipeline struct {
	source    Source
	fetcher   Fetcher
	extractor JobExtractor
	opts      Options
	log       zerolog.Logger
}

func NewPipeline(source Source, fetcher Fetcher, extractor JobExtractor, opts Options, log zerolog.Logger) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Pipeline{
		source:    source,
		fetcher:   fetcher,
		extractor: extractor,
		opts:      opts,
		log:       log.With().Str("component", "pipeline").Str("source", source.Name()).Logger(),
	}
}

// Source returns the board this pipeline reads
func (p *Pipeline) Source() Source {
	return p.source
}

// Run scrapes listingURL. Results keep the order in which their URLs were
// discovered. Any failure aborts the whole run without partial results.
func (p *Pipeline) Run(ctx context.Context, listingURL string) ([]models.JobInformation, error) {
	log := p.log.With().Str("listing_url", listingURL).Logger()

	if !p.source.Accepts(listingURL) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, listingURL)
	}

	docs, err := p.fetcher.Fetch(ctx, browser.FetchRequest{URL: listingURL, Paginate: true})
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	log.Info().Int("pages", len(docs)).Msg("📄 Listing fetched")

	hrefs, err := p.listingURLs(ctx, docs)
	if err != nil {
		return nil, err
	}

	jobURLs := p.resolve(hrefs, log)
	if len(jobURLs) == 0 {
		return nil, ErrEmptyListing
	}
	log.Info().Int("jobs", len(jobURLs)).Msg("🔍 Job URLs discovered")

	jobs, err := p.details(ctx, jobURLs)
	if err != nil {
		return nil, err
	}
	log.Info().Int("jobs", len(jobs)).Msg("✅ Jobs extracted")
	return jobs, nil
}

// listingURLs extracts the job links of every listing page concurrently
func (p *Pipeline) listingURLs(ctx context.Context, docs []browser.Document) ([]string, error) {
	found := make([]*models.JobURLs, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			urls, err := p.extractor.ExtractURLs(gctx, doc.HTML)
			if err != nil {
				return fmt.Errorf("listing page %d: %w", doc.Page, err)
			}
			found[i] = urls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var hrefs []string
	for _, urls := range found {
		if urls == nil || urls.URLs == nil {
			return nil, ErrEmptyListing
		}
		hrefs = append(hrefs, urls.URLs...)
	}
	if len(hrefs) == 0 {
		return nil, ErrEmptyListing
	}
	return hrefs, nil
}

// resolve makes hrefs absolute and drops duplicates and unusable links
func (p *Pipeline) resolve(hrefs []string, log zerolog.Logger) []string {
	resolved := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		u, err := p.source.ResolveURL(href)
		if err != nil {
			log.Warn().Err(err).Str("href", href).Msg("skipping job link")
			continue
		}
		resolved = append(resolved, u)
	}

	urls := dedup.NewURLSet().Filter(resolved)
	if dropped := len(resolved) - len(urls); dropped > 0 {
		log.Debug().Int("duplicates", dropped).Msg("duplicate job links dropped")
	}
	return urls
}

// details fetches and extracts every job page concurrently
func (p *Pipeline) details(ctx context.Context, urls []string) ([]models.JobInformation, error) {
	jobs := make([]models.JobInformation, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, u := range urls {
		g.Go(func() error {
			job, err := p.detail(gctx, u)
			if err != nil {
				return err
			}
			jobs[i] = *job
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (p *Pipeline) detail(ctx context.Context, jobURL string) (*models.JobInformation, error) {
	docs, err := p.fetcher.Fetch(ctx, browser.FetchRequest{URL: jobURL})
	if err != nil {
		return nil, fmt.Errorf("fetch job: %w", err)
	}
	if len(docs) == 0 {
		return nil, &browser.FetchError{URL: jobURL, Err: errors.New("no document")}
	}

	text := htmltext.Strip(docs[0].HTML)
	if p.opts.CompactText {
		text = htmltext.Compact(text)
	}
	return p.extractor.ExtractJob(ctx, text, jobURL)
}
