package api

import (
	"errors"
	"fmt"
	"net/http"

	"go-jobscraper/internal/browser"
	"go-jobscraper/internal/extract"
	"go-jobscraper/internal/retry"
	"go-jobscraper/internal/scraper"
)

const (
	MsgUnsupportedSource = "This is not a greenhouse career page. Nothing to scrape."
	MsgEmptyListing      = "The career page is empty. Nothing to scrape."
	MsgBadRequest        = `Request body must be JSON of the form {"url": "<career page url>"}.`
	MsgTimeout           = "Timed out loading a page from the career site."
	MsgFetchFailed       = "Could not load a page from the career site."
	MsgInternal          = "Something went wrong while scraping the career page."
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Data    string `json:"data"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func newErrorResponse(status int, message string) ErrorResponse {
	return ErrorResponse{Data: "Error", Status: status, Message: message}
}

// classify maps a pipeline error to the status and message the client sees
func classify(err error) (int, string) {
	var exhausted *retry.ExhaustedError
	var fetchErr *browser.FetchError

	switch {
	case errors.Is(err, scraper.ErrUnsupportedSource):
		return http.StatusBadRequest, MsgUnsupportedSource
	case errors.Is(err, scraper.ErrEmptyListing):
		return http.StatusBadRequest, MsgEmptyListing
	case errors.Is(err, extract.ErrTerminalParse):
		attempts := 0
		if errors.As(err, &exhausted) {
			attempts = exhausted.Attempts
		}
		return http.StatusBadGateway, fmt.Sprintf("The language model did not return a usable answer after %d attempts.", attempts)
	case errors.Is(err, browser.ErrNavigationTimeout):
		return http.StatusGatewayTimeout, MsgTimeout
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, MsgFetchFailed
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}
