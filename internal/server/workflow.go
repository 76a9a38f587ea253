package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	workflowdomain "github.com/CCxPL/task-management-system/internal/workflow/domain"
)

type createWorkflowRequest struct {
	Name         string `json:"name"`
	ProjectID    string `json:"project_id"`
	SetAsDefault bool   `json:"set_as_default"`
}

type updateWorkflowRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

type addStatusRequest struct {
	Name       string `json:"name"`
	Order      *int   `json:"order"`
	IsStart    *bool  `json:"is_start"`
	IsTerminal *bool  `json:"is_terminal"`
	Color      string `json:"color"`
}

type updateStatusRequest struct {
	Name       *string `json:"name"`
	IsStart    *bool   `json:"is_start"`
	IsTerminal *bool   `json:"is_terminal"`
	Color      *string `json:"color"`
}

type reorderStatusesRequest struct {
	Order []string `json:"order"`
	// StatusIDs is accepted as a legacy alias for Order.
	StatusIDs []string `json:"status_ids"`
}

func (r reorderStatusesRequest) orderedIDs() []string {
	if len(r.Order) > 0 {
		return r.Order
	}
	return r.StatusIDs
}

type addTransitionRequest struct {
	FromStatusID string `json:"from_status_id"`
	ToStatusID   string `json:"to_status_id"`
}

type assignToProjectRequest struct {
	ProjectID string `json:"project_id"`
}

func (s *Server) CreateWorkflow(c *gin.Context) {
	actor, _ := actorFromRequest(c)

	var req createWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	projectID, err := parseOptionalSnowflakeID(req.ProjectID)
	if err != nil {
		AbortWithError(c, newValidationError("project_id", "invalid_project", "invalid project id"))
		return
	}

	resolved, err := s.workflowSvc.Create(c.Request.Context(), actor.OrgID, workflowdomain.CreateWorkflowRequest{
		Name:         strings.TrimSpace(req.Name),
		ProjectID:    projectID,
		SetAsDefault: req.SetAsDefault,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resolved)
}

func (s *Server) ListWorkflows(c *gin.Context) {
	actor, _ := actorFromRequest(c)

	items, err := s.workflowSvc.List(c.Request.Context(), actor.OrgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetWorkflow(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resolved, err := s.workflowSvc.Get(c.Request.Context(), actor.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}

func (s *Server) UpdateWorkflow(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	workflow, err := s.workflowSvc.Update(c.Request.Context(), actor.OrgID, id, workflowdomain.UpdateWorkflowRequest{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, workflow)
}

func (s *Server) DeleteWorkflow(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.workflowSvc.Delete(c.Request.Context(), actor.OrgID, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ResolveWorkflow answers which workflow governs a project: its bound
// workflow when active, otherwise the organization default.
func (s *Server) ResolveWorkflow(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	projectID, err := parseSnowflakeID(c.Query("project"))
	if err != nil {
		AbortWithError(c, newValidationError("project", "invalid_project", "invalid project id"))
		return
	}

	resolved, err := s.workflowSvc.Resolve(c.Request.Context(), actor.OrgID, projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}

func (s *Server) ListWorkflowStatuses(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resolved, err := s.workflowSvc.Get(c.Request.Context(), actor.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resolved.Statuses})
}

func (s *Server) AddWorkflowStatus(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req addStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status, err := s.workflowSvc.AddStatus(c.Request.Context(), actor.OrgID, id, workflowdomain.AddStatusRequest{
		Name:       strings.TrimSpace(req.Name),
		Order:      req.Order,
		IsStart:    req.IsStart,
		IsTerminal: req.IsTerminal,
		Color:      strings.TrimSpace(req.Color),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

func (s *Server) UpdateWorkflowStatus(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	statusID, err := parseSnowflakeID(c.Param("status_id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status, err := s.workflowSvc.UpdateStatus(c.Request.Context(), actor.OrgID, id, statusID, workflowdomain.UpdateStatusRequest{
		Name:       req.Name,
		IsStart:    req.IsStart,
		IsTerminal: req.IsTerminal,
		Color:      req.Color,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) DeleteWorkflowStatus(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	statusID, err := parseSnowflakeID(c.Param("status_id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.workflowSvc.DeleteStatus(c.Request.Context(), actor.OrgID, id, statusID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ReorderWorkflowStatuses(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req reorderStatusesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ordered := req.orderedIDs()
	statusIDs := make([]snowflake.ID, 0, len(ordered))
	for _, raw := range ordered {
		statusID, err := parseSnowflakeID(raw)
		if err != nil {
			AbortWithError(c, workflowdomain.ErrInvalidOrderSet)
			return
		}
		statusIDs = append(statusIDs, statusID)
	}

	statuses, err := s.workflowSvc.Reorder(c.Request.Context(), actor.OrgID, id, statusIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": statuses})
}

func (s *Server) ListWorkflowTransitions(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resolved, err := s.workflowSvc.Get(c.Request.Context(), actor.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resolved.Transitions})
}

func (s *Server) AddWorkflowTransition(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req addTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	fromID, err := parseSnowflakeID(req.FromStatusID)
	if err != nil {
		AbortWithError(c, newValidationError("from_status_id", "invalid_status", "invalid status id"))
		return
	}
	toID, err := parseSnowflakeID(req.ToStatusID)
	if err != nil {
		AbortWithError(c, newValidationError("to_status_id", "invalid_status", "invalid status id"))
		return
	}

	transition, err := s.workflowSvc.AddTransition(c.Request.Context(), actor.OrgID, id, fromID, toID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transition)
}

func (s *Server) DeleteWorkflowTransition(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	transitionID, err := parseSnowflakeID(c.Param("transition_id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.workflowSvc.DeleteTransition(c.Request.Context(), actor.OrgID, id, transitionID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) AutoCreateWorkflowTransitions(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.workflowSvc.AutoCreateTransitions(c.Request.Context(), actor.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

func (s *Server) SetDefaultWorkflow(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.workflowSvc.SetDefault(c.Request.Context(), actor.OrgID, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) AssignWorkflowToProject(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req assignToProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	projectID, err := parseSnowflakeID(req.ProjectID)
	if err != nil {
		AbortWithError(c, newValidationError("project_id", "invalid_project", "invalid project id"))
		return
	}

	if err := s.workflowSvc.AssignToProject(c.Request.Context(), actor.OrgID, id, projectID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func isWorkflowValidationError(err error) bool {
	switch {
	case errors.Is(err, workflowdomain.ErrInvalidName),
		errors.Is(err, workflowdomain.ErrInvalidStatusName),
		errors.Is(err, workflowdomain.ErrStatusNotInWorkflow),
		errors.Is(err, workflowdomain.ErrInvalidOrderSet),
		errors.Is(err, workflowdomain.ErrWorkflowInactive):
		return true
	default:
		return false
	}
}
