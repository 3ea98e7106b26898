package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobscraper/internal/browser"
	"go-jobscraper/internal/extract"
	"go-jobscraper/internal/models"
	"go-jobscraper/internal/retry"
	"go-jobscraper/internal/scraper"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRunner struct {
	jobs  []models.JobInformation
	err   error
	calls []string
}

func (f *fakeRunner) Run(ctx context.Context, listingURL string) ([]models.JobInformation, error) {
	f.calls = append(f.calls, listingURL)
	return f.jobs, f.err
}

type fakeStore struct {
	saved      []models.JobInformation
	source     string
	listingURL string
	err        error
}

func (f *fakeStore) SaveJobs(ctx context.Context, source, listingURL string, jobs []models.JobInformation) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.source, f.listingURL = source, listingURL
	f.saved = append(f.saved, jobs...)
	return len(jobs), f.err
}

func str(s string) *string { return &s }

func post(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestScrapeJobsSuccess(t *testing.T) {
	runner := &fakeRunner{jobs: []models.JobInformation{
		{JobTitle: str("Backend Engineer"), CompanyName: str("Acme"), ApplyURL: str("https://boards.greenhouse.io/acme/jobs/1")},
		{JobTitle: str("Data Engineer"), CompanyName: str("Acme"), ApplyURL: str("https://boards.greenhouse.io/acme/jobs/2")},
	}}
	store := &fakeStore{}
	r := NewRouter(NewHandler(runner, store, "greenhouse"), zerolog.Nop())

	for _, path := range []string{"/jobs", "/jobs/"} {
		t.Run(path, func(t *testing.T) {
			w := post(t, r, path, `{"url": "https://boards.greenhouse.io/acme"}`)
			require.Equal(t, http.StatusCreated, w.Code)

			var body struct {
				Data   []map[string]any `json:"data"`
				Status int              `json:"status"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, http.StatusCreated, body.Status)
			require.Len(t, body.Data, 2)
			for _, job := range body.Data {
				for _, key := range []string{"job_description", "job_title", "company_name", "company_website", "apply_url"} {
					assert.Contains(t, job, key)
				}
			}
			assert.Nil(t, body.Data[0]["job_description"])
			assert.Equal(t, "Backend Engineer", body.Data[0]["job_title"])
			assert.NotEmpty(t, w.Header().Get(requestIDHeader))
		})
	}

	assert.Equal(t, []string{"https://boards.greenhouse.io/acme", "https://boards.greenhouse.io/acme"}, runner.calls)
	assert.Len(t, store.saved, 4)
	assert.Equal(t, "greenhouse", store.source)
	assert.Equal(t, "https://boards.greenhouse.io/acme", store.listingURL)
}

func TestScrapeJobsErrors(t *testing.T) {
	terminal := fmt.Errorf("listing page 1: %w", fmt.Errorf("extract job_urls: %w: %w", extract.ErrTerminalParse, &retry.ExhaustedError{Attempts: 10, Err: errors.New("no json object")}))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "foreign source",
			err:        fmt.Errorf("%w: https://example-notgreenhouse.com", scraper.ErrUnsupportedSource),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "This is not a greenhouse career page. Nothing to scrape.",
		},
		{
			name:       "empty listing",
			err:        scraper.ErrEmptyListing,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "The career page is empty. Nothing to scrape.",
		},
		{
			name:       "terminal parse failure",
			err:        terminal,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "The language model did not return a usable answer after 10 attempts.",
		},
		{
			name:       "navigation timeout",
			err:        fmt.Errorf("fetch listing: %w", &browser.FetchError{URL: "https://boards.greenhouse.io/acme", Err: browser.ErrNavigationTimeout}),
			wantStatus: http.StatusGatewayTimeout,
			wantMsg:    MsgTimeout,
		},
		{
			name:       "fetch failure",
			err:        &browser.FetchError{URL: "https://boards.greenhouse.io/acme", Err: errors.New("net::ERR_NAME_NOT_RESOLVED")},
			wantStatus: http.StatusBadGateway,
			wantMsg:    MsgFetchFailed,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			r := NewRouter(NewHandler(&fakeRunner{err: tt.err}, store, "greenhouse"), zerolog.Nop())

			w := post(t, r, "/jobs/", `{"url": "https://example-notgreenhouse.com"}`)
			require.Equal(t, tt.wantStatus, w.Code)

			resp := decodeError(t, w)
			assert.Equal(t, "Error", resp.Data)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Empty(t, store.saved)
		})
	}
}

func TestScrapeJobsBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "url=https://boards.greenhouse.io/acme"},
		{name: "missing url", body: `{}`},
		{name: "empty url", body: `{"url": ""}`},
		{name: "wrong type", body: `{"url": 42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			r := NewRouter(NewHandler(runner, nil, "greenhouse"), zerolog.Nop())

			w := post(t, r, "/jobs", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, MsgBadRequest, decodeError(t, w).Message)
			assert.Empty(t, runner.calls)
		})
	}
}

func TestScrapeJobsStoreFailureKeepsResponse(t *testing.T) {
	runner := &fakeRunner{jobs: []models.JobInformation{{JobTitle: str("Engineer")}}}
	store := &fakeStore{err: errors.New("connection refused")}
	r := NewRouter(NewHandler(runner, store, "greenhouse"), zerolog.Nop())

	w := post(t, r, "/jobs", `{"url": "https://boards.greenhouse.io/acme"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHealthAndCORS(t *testing.T) {
	r := NewRouter(NewHandler(&fakeRunner{}, nil, "greenhouse"), zerolog.Nop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Body.String(), "healthy")

	req := httptest.NewRequest(http.MethodOptions, "/jobs/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "content-type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := NewRouter(NewHandler(&fakeRunner{}, nil, "greenhouse"), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}
