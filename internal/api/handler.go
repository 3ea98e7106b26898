package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"go-jobscraper/internal/models"
)

const persistTimeout = 30 * time.Second

// Runner scrapes a listing into job records
type Runner interface {
	Run(ctx context.Context, listingURL string) ([]models.JobInformation, error)
}

// JobStore persists the records of a successful scrape
type JobStore interface {
	SaveJobs(ctx context.Context, source, listingURL string, jobs []models.JobInformation) (int, error)
}

// ScrapeRequest is the body of POST /jobs
type ScrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

// ScrapeResponse is the body of a successful scrape
type ScrapeResponse struct {
	Data   []models.JobInformation `json:"data"`
	Status int                     `json:"status"`
}

type Handler struct {
	runner Runner
	store  JobStore
	source string
}

// NewHandler serves scrapes through runner. store may be nil.
func NewHandler(runner Runner, store JobStore, source string) *Handler {
	return &Handler{runner: runner, store: store, source: source}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Job scraper API is running!",
		"status":  "healthy",
	})
}

func (h *Handler) scrapeJobs(c *gin.Context) {
	log := zerolog.Ctx(c.Request.Context())

	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("invalid scrape request")
		c.JSON(http.StatusBadRequest, newErrorResponse(http.StatusBadRequest, MsgBadRequest))
		return
	}

	jobs, err := h.runner.Run(c.Request.Context(), req.URL)
	if err != nil {
		status, message := classify(err)
		event := log.Warn()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.Err(err).Str("listing_url", req.URL).Int("status", status).Msg("scrape failed")
		c.JSON(status, newErrorResponse(status, message))
		return
	}

	h.persist(c.Request.Context(), req.URL, jobs)
	c.JSON(http.StatusCreated, ScrapeResponse{Data: jobs, Status: http.StatusCreated})
}

// persist saves the jobs if a store is configured. Failures are only logged.
func (h *Handler) persist(ctx context.Context, listingURL string, jobs []models.JobInformation) {
	if h.store == nil {
		return
	}
	log := zerolog.Ctx(ctx)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	saved, err := h.store.SaveJobs(ctx, h.source, listingURL, jobs)
	if err != nil {
		log.Error().Err(err).Str("listing_url", listingURL).Msg("failed to persist jobs")
		return
	}
	log.Info().Int("saved", saved).Str("listing_url", listingURL).Msg("💾 Jobs persisted")
}
