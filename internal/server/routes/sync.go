package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/webhookd/internal/app/apperr"
	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/services"
)

// SyncRoutes registers sync job management endpoints.
type SyncRoutes struct {
	engine *services.SyncEngine
}

// NewSyncRoutes constructs sync routes.
func NewSyncRoutes(engine *services.SyncEngine) *SyncRoutes {
	return &SyncRoutes{engine: engine}
}

type runRequest struct {
	SimulateRateLimit bool `json:"simulateRateLimit"`
}

// RegisterRoutes registers sync endpoints.
func (r *SyncRoutes) RegisterRoutes(s *echo.Echo) {
	g := s.Group("/sync")
	g.POST("/jobs", r.handleCreateJob)
	g.GET("/jobs", r.handleListJobs)
	g.GET("/jobs/:jobId", r.handleGetJob)
	g.POST("/jobs/:jobId/run", r.handleRunJob)
	g.POST("/jobs/:jobId/resume", r.handleResumeJob)
	g.GET("/dead-letters", r.handleListDeadLetters)
}

func (r *SyncRoutes) handleCreateJob(c echo.Context) error {
	var input services.CreateJobInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &input); err != nil {
		return apperr.ErrValidation.WithMessage("request body must be a JSON object")
	}
	job, err := r.engine.CreateJob(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, job)
}

func (r *SyncRoutes) handleListJobs(c echo.Context) error {
	jobs, err := r.engine.ListJobs(c.Request().Context(), domain.SyncJobFilter{
		ProviderKey: c.QueryParam("providerKey"),
		Status:      domain.SyncJobStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, jobs)
}

func (r *SyncRoutes) handleGetJob(c echo.Context) error {
	job, err := r.engine.GetJob(c.Request().Context(), c.Param("jobId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, job)
}

func (r *SyncRoutes) handleRunJob(c echo.Context) error {
	var req runRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return apperr.ErrValidation.WithMessage("request body must be a JSON object")
	}
	result, err := r.engine.Run(c.Request().Context(), services.RunCommand{
		JobID:             c.Param("jobId"),
		SimulateRateLimit: req.SimulateRateLimit,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result)
}

func (r *SyncRoutes) handleResumeJob(c echo.Context) error {
	job, err := r.engine.ResumeJob(c.Request().Context(), c.Param("jobId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, job)
}

func (r *SyncRoutes) handleListDeadLetters(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	entries, err := r.engine.ListDeadLetters(c.Request().Context(), domain.SyncDeadLetterFilter{
		JobID:       c.QueryParam("jobId"),
		ProviderKey: c.QueryParam("providerKey"),
		Limit:       limit,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, entries)
}
