package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	issuedomain "github.com/CCxPL/task-management-system/internal/issue/domain"
)

type createIssueRequest struct {
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	AssigneeID  string     `json:"assignee_id"`
	SprintID    string     `json:"sprint_id"`
	Labels      []string   `json:"labels"`
	StoryPoints *int       `json:"story_points"`
	DueDate     *time.Time `json:"due_date"`
}

type updateIssueRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Type        *string    `json:"type"`
	Priority    *string    `json:"priority"`
	AssigneeID  *string    `json:"assignee_id"`
	SprintID    *string    `json:"sprint_id"`
	Labels      *[]string  `json:"labels"`
	StoryPoints *int       `json:"story_points"`
	DueDate     *time.Time `json:"due_date"`
}

type updateIssueStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) CreateIssue(c *gin.Context) {
	actor, _ := actorFromRequest(c)

	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	projectID, err := parseSnowflakeID(req.ProjectID)
	if err != nil {
		AbortWithError(c, newValidationError("project_id", "invalid_project", "invalid project id"))
		return
	}
	assigneeID, err := parseOptionalSnowflakeID(req.AssigneeID)
	if err != nil {
		AbortWithError(c, newValidationError("assignee_id", "invalid_user", "invalid user id"))
		return
	}
	sprintID, err := parseOptionalSnowflakeID(req.SprintID)
	if err != nil {
		AbortWithError(c, newValidationError("sprint_id", "invalid_sprint", "invalid sprint id"))
		return
	}

	issueType := issuedomain.IssueType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if req.Type == "" {
		issueType = issuedomain.TypeTask
	}
	priority := issuedomain.Priority(strings.ToUpper(strings.TrimSpace(req.Priority)))
	if req.Priority == "" {
		priority = issuedomain.PriorityMedium
	}

	created, err := s.issueSvc.Create(c.Request.Context(), actor, issuedomain.CreateIssueRequest{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        issueType,
		Priority:    priority,
		AssigneeID:  assigneeID,
		SprintID:    sprintID,
		Labels:      req.Labels,
		StoryPoints: req.StoryPoints,
		DueDate:     req.DueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) ListIssues(c *gin.Context) {
	actor, _ := actorFromRequest(c)

	projectID, err := parseSnowflakeID(c.Query("project"))
	if err != nil {
		AbortWithError(c, newValidationError("project", "invalid_project", "invalid project id"))
		return
	}

	filter := issuedomain.ListFilter{ProjectID: projectID}

	if sprintID, err := parseOptionalSnowflakeID(c.Query("sprint")); err == nil {
		filter.SprintID = sprintID
	}
	if assigneeID, err := parseOptionalSnowflakeID(c.Query("assignee")); err == nil {
		filter.AssigneeID = assigneeID
	}
	if t := strings.TrimSpace(c.Query("type")); t != "" {
		issueType := issuedomain.IssueType(strings.ToUpper(t))
		filter.Type = &issueType
	}
	if p := strings.TrimSpace(c.Query("priority")); p != "" {
		priority := issuedomain.Priority(strings.ToUpper(p))
		filter.Priority = &priority
	}
	if limit, err := parseOptionalInt(c.Query("limit")); err == nil && limit != nil {
		filter.Limit = *limit
	}
	if afterID, err := parseOptionalSnowflakeID(c.Query("after")); err == nil && afterID != nil {
		filter.AfterID = *afterID
	}

	items, err := s.issueSvc.List(c.Request.Context(), actor, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetIssue(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.issueSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) UpdateIssue(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := issuedomain.UpdateIssueRequest{
		Title:       req.Title,
		Description: req.Description,
		Labels:      req.Labels,
		StoryPoints: req.StoryPoints,
		DueDate:     req.DueDate,
	}
	if req.Type != nil {
		issueType := issuedomain.IssueType(strings.ToUpper(strings.TrimSpace(*req.Type)))
		update.Type = &issueType
	}
	if req.Priority != nil {
		priority := issuedomain.Priority(strings.ToUpper(strings.TrimSpace(*req.Priority)))
		update.Priority = &priority
	}
	if req.AssigneeID != nil {
		assigneeID, err := parseOptionalSnowflakeID(*req.AssigneeID)
		if err != nil {
			AbortWithError(c, newValidationError("assignee_id", "invalid_user", "invalid user id"))
			return
		}
		update.AssigneeID = assigneeID
	}
	if req.SprintID != nil {
		sprintID, err := parseOptionalSnowflakeID(*req.SprintID)
		if err != nil {
			AbortWithError(c, newValidationError("sprint_id", "invalid_sprint", "invalid sprint id"))
			return
		}
		update.SprintID = sprintID
	}

	item, err := s.issueSvc.Update(c.Request.Context(), actor, id, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) DeleteIssue(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.issueSvc.Delete(c.Request.Context(), actor, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UpdateIssueStatus accepts a status token such as IN_PROGRESS and moves
// the issue along its workflow's transition graph.
func (s *Server) UpdateIssueStatus(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateIssueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		AbortWithError(c, newValidationError("status", "missing_status", "status is required"))
		return
	}

	result, err := s.issueSvc.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) KanbanBoard(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	projectID, err := parseSnowflakeID(c.Query("project"))
	if err != nil {
		AbortWithError(c, newValidationError("project", "invalid_project", "invalid project id"))
		return
	}

	board, err := s.issueSvc.Board(c.Request.Context(), actor, projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func isIssueValidationError(err error) bool {
	switch {
	case errors.Is(err, issuedomain.ErrInvalidTitle),
		errors.Is(err, issuedomain.ErrInvalidType),
		errors.Is(err, issuedomain.ErrInvalidPriority),
		errors.Is(err, issuedomain.ErrMissingStatus):
		return true
	default:
		return false
	}
}
