package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter wires the HTTP surface. Both /jobs and /jobs/ are served so
// clients of either spelling work without a redirect.
func NewRouter(h *Handler, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), cors(), requestLogger(log))

	r.GET("/", h.health)
	r.POST("/jobs", h.scrapeJobs)
	r.POST("/jobs/", h.scrapeJobs)
	r.OPTIONS("/*path", func(c *gin.Context) {})
	return r
}
