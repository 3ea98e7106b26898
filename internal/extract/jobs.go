package extract

import (
	"context"
	"fmt"

	"go-jobscraper/internal/ai"
	"go-jobscraper/internal/models"
)

// JobExtractor runs the two extractions of the job pipeline: job links from a
// listing page and job details from a detail page.
type JobExtractor struct {
	urls *Extractor[models.JobURLs]
	jobs *Extractor[models.JobInformation]
}

// NewJobExtractor builds both extractors over the same model client
func NewJobExtractor(client ai.Completer, cfg Config) (*JobExtractor, error) {
	urlSchema, err := NewSchema[models.JobURLs]("job_urls")
	if err != nil {
		return nil, err
	}
	jobSchema, err := NewSchema[models.JobInformation]("job_information")
	if err != nil {
		return nil, err
	}
	return &JobExtractor{
		urls: NewExtractor(client, urlSchema, cfg),
		jobs: NewExtractor(client, jobSchema, cfg),
	}, nil
}

// ExtractURLs lists the job links found in a listing page's markup
func (j *JobExtractor) ExtractURLs(ctx context.Context, document string) (*models.JobURLs, error) {
	out, err := j.urls.Extract(ctx, func(instructions string) string {
		return buildJobURLsPrompt(document, instructions)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractJob reads the job details from a detail page's text.
// The apply URL falls back to the page URL when the model leaves it null.
func (j *JobExtractor) ExtractJob(ctx context.Context, text, applyURL string) (*models.JobInformation, error) {
	out, err := j.jobs.Extract(ctx, func(instructions string) string {
		return buildJobInformationPrompt(text, applyURL, instructions)
	})
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", applyURL, err)
	}
	if out.ApplyURL == nil && applyURL != "" {
		u := applyURL
		out.ApplyURL = &u
	}
	return &out, nil
}
