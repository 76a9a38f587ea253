package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type addProjectMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (s *Server) CreateProject(c *gin.Context) {
	actor, _ := actorFromRequest(c)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	project, err := s.projectSvc.Create(c.Request.Context(), actor.OrgID, projectdomain.CreateProjectRequest{
		Name:        strings.TrimSpace(req.Name),
		Key:         strings.TrimSpace(req.Key),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (s *Server) ListProjects(c *gin.Context) {
	actor, _ := actorFromRequest(c)

	items, err := s.projectSvc.List(c.Request.Context(), actor.OrgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetProject(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	project, err := s.projectSvc.Get(c.Request.Context(), actor.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) UpdateProject(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	project, err := s.projectSvc.Update(c.Request.Context(), actor.OrgID, id, projectdomain.UpdateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) ListProjectMembers(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	members, err := s.projectSvc.ListMembers(c.Request.Context(), actor.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": members})
}

func (s *Server) AddProjectMember(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req addProjectMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, err := parseSnowflakeID(req.UserID)
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user", "invalid user id"))
		return
	}

	role := projectdomain.ProjectRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if req.Role == "" {
		role = projectdomain.ProjectRoleMember
	}

	member, err := s.projectSvc.AddMember(c.Request.Context(), actor.OrgID, id, projectdomain.AddMemberRequest{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (s *Server) RemoveProjectMember(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	userID, err := parseSnowflakeID(c.Param("user_id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.projectSvc.RemoveMember(c.Request.Context(), actor.OrgID, id, userID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func isProjectValidationError(err error) bool {
	switch {
	case errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, projectdomain.ErrInvalidKey),
		errors.Is(err, projectdomain.ErrInvalidRole),
		errors.Is(err, projectdomain.ErrMemberNotInOrg):
		return true
	default:
		return false
	}
}
