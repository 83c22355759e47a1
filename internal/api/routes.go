// Package api exposes the REST surface over the job feed and the scrape
// trigger. Handlers are thin: all pipeline semantics live in the internal
// packages they call.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scraper"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/store"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/worker"
)

// Server holds the handler dependencies.
type Server struct {
	store    *store.Store
	worker   *worker.Worker
	registry *scraper.Registry
	log      *zap.SugaredLogger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(st *store.Store, w *worker.Worker, registry *scraper.Registry, log *zap.SugaredLogger) *gin.Engine {
	s := &Server{store: st, worker: w, registry: registry, log: log.Named("api")}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/jobs", s.listJobs)
		apiGroup.GET("/jobs/count", s.countJobs)
		apiGroup.GET("/jobs/:id", s.getJob)
		apiGroup.PATCH("/jobs/:id/status", s.setJobStatus)
		apiGroup.POST("/jobs/recalculate-scores", s.recalculateScores)
		apiGroup.POST("/scrape", s.triggerScrape)
		apiGroup.GET("/sources", s.listSources)
		apiGroup.GET("/stats", s.stats)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "jobseeker-backend",
	})
}

func (s *Server) listJobs(c *gin.Context) {
	var f store.JobFilter

	f.MinScore, _ = strconv.Atoi(c.Query("min_score"))
	f.Source = c.Query("source")
	f.JobType = c.Query("job_type")
	f.Search = c.Query("search")
	f.SortBy = c.Query("sort")
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))
	if raw := c.Query("remote"); raw != "" {
		remote := raw == "true" || raw == "1"
		f.Remote = &remote
	}

	jobs, err := s.store.ListJobs(c.Request.Context(), f)
	if err != nil {
		s.log.Errorw("list jobs failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) countJobs(c *gin.Context) {
	total, err := s.store.CountJobs(c.Request.Context())
	if err != nil {
		s.log.Errorw("count jobs failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

func (s *Server) getJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := s.store.GetJob(c.Request.Context(), id)
	if err != nil {
		s.log.Errorw("get job failed", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

type statusRequest struct {
	Status    string  `json:"status"`
	Favorited *bool   `json:"favorited"`
	Applied   *bool   `json:"applied"`
	Notes     *string `json:"notes"`
}

func (s *Server) setJobStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := s.store.SetJobStatus(c.Request.Context(), id, req.Status, req.Favorited, req.Applied, req.Notes); err != nil {
		s.log.Errorw("set status failed", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

type scrapeRequest struct {
	Sources  []string `json:"sources"`
	Keywords string   `json:"keywords"`
	Location string   `json:"location"`
	Limit    int      `json:"limit"`
}

// triggerScrape starts a cycle in the background and returns immediately;
// a full multi-source run takes longer than a sane request timeout.
func (s *Server) triggerScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	go func() {
		s.worker.Run(context.Background(), scraper.Options{
			Sources:  req.Sources,
			Keywords: req.Keywords,
			Location: req.Location,
			Limit:    req.Limit,
		})
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "scrape started", "sources": req.Sources})
}

func (s *Server) listSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": s.registry.Infos()})
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.store.Stats(c.Request.Context())
	if err != nil {
		s.log.Errorw("stats failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) recalculateScores(c *gin.Context) {
	updated, err := s.worker.Rescore(c.Request.Context())
	if err != nil {
		s.log.Errorw("rescore failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recalculate scores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "match scores recalculated", "updated": updated})
}
