package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	sprintdomain "github.com/CCxPL/task-management-system/internal/sprint/domain"
)

type createSprintRequest struct {
	ProjectID string     `json:"project_id"`
	Name      string     `json:"name"`
	Goal      string     `json:"goal"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type updateSprintRequest struct {
	Name      *string    `json:"name"`
	Goal      *string    `json:"goal"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (s *Server) CreateSprint(c *gin.Context) {
	actor, _ := actorFromRequest(c)

	var req createSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	projectID, err := parseSnowflakeID(req.ProjectID)
	if err != nil {
		AbortWithError(c, newValidationError("project_id", "invalid_project", "invalid project id"))
		return
	}

	sprint, err := s.sprintSvc.Create(c.Request.Context(), actor.OrgID, sprintdomain.CreateSprintRequest{
		ProjectID: projectID,
		Name:      strings.TrimSpace(req.Name),
		Goal:      strings.TrimSpace(req.Goal),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sprint)
}

func (s *Server) ListSprints(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	projectID, err := parseSnowflakeID(c.Query("project"))
	if err != nil {
		AbortWithError(c, newValidationError("project", "invalid_project", "invalid project id"))
		return
	}

	items, err := s.sprintSvc.List(c.Request.Context(), actor.OrgID, projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetSprint(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sprint, err := s.sprintSvc.Get(c.Request.Context(), actor.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

func (s *Server) UpdateSprint(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sprint, err := s.sprintSvc.Update(c.Request.Context(), actor.OrgID, id, sprintdomain.UpdateSprintRequest{
		Name:      req.Name,
		Goal:      req.Goal,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

// AdvanceSprint moves the sprint to its next state: PLANNED to ACTIVE,
// ACTIVE to COMPLETED.
func (s *Server) AdvanceSprint(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sprint, err := s.sprintSvc.Advance(c.Request.Context(), actor.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

func (s *Server) DeleteSprint(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.sprintSvc.Delete(c.Request.Context(), actor.OrgID, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func isSprintValidationError(err error) bool {
	switch {
	case errors.Is(err, sprintdomain.ErrInvalidName),
		errors.Is(err, sprintdomain.ErrInvalidState),
		errors.Is(err, sprintdomain.ErrInvalidDates):
		return true
	default:
		return false
	}
}
