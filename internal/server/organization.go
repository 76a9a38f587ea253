package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	organizationdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
)

type createOrganizationRequest struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Settings map[string]any `json:"settings"`
}

type updateOrganizationRequest struct {
	Name     *string        `json:"name"`
	Settings map[string]any `json:"settings"`
}

type addOrganizationMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type updateOrganizationMemberRequest struct {
	Role string `json:"role"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgType := organizationdomain.OrganizationType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if req.Type == "" {
		orgType = organizationdomain.OrgTypeCompany
	}

	org, err := s.organizationSvc.Create(c.Request.Context(), organizationdomain.CreateOrganizationRequest{
		Name:     strings.TrimSpace(req.Name),
		Type:     orgType,
		Settings: req.Settings,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

func (s *Server) ListOrganizations(c *gin.Context) {
	items, err := s.organizationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetOrganization(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Tenant members may only read their own organization.
	actor, _ := actorFromRequest(c)
	if !actor.IsSuperuser && actor.OrgID != id {
		AbortWithError(c, ErrForbidden)
		return
	}

	org, err := s.organizationSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (s *Server) UpdateOrganization(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Superusers may update any tenant; org admins only their own.
	actor, _ := actorFromRequest(c)
	if !actor.IsSuperuser && !(actor.OrgID == id && actor.Can(organizationdomain.CapManageMembers)) {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req updateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.organizationSvc.Update(c.Request.Context(), id, organizationdomain.UpdateOrganizationRequest{
		Name:     req.Name,
		Settings: req.Settings,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (s *Server) ActivateOrganization(c *gin.Context) {
	s.setOrganizationActive(c, true)
}

func (s *Server) DeactivateOrganization(c *gin.Context) {
	s.setOrganizationActive(c, false)
}

func (s *Server) setOrganizationActive(c *gin.Context, active bool) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.organizationSvc.SetActive(c.Request.Context(), id, active); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListOrganizationMembers(c *gin.Context) {
	orgID, ok := s.scopedOrgID(c)
	if !ok {
		return
	}

	members, err := s.organizationSvc.ListMembers(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": members})
}

func (s *Server) AddOrganizationMember(c *gin.Context) {
	orgID, ok := s.scopedOrgID(c)
	if !ok {
		return
	}

	var req addOrganizationMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, err := parseSnowflakeID(req.UserID)
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user", "invalid user id"))
		return
	}
	role, err := organizationdomain.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	member, err := s.organizationSvc.AddMember(c.Request.Context(), orgID, organizationdomain.AddMemberRequest{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (s *Server) UpdateOrganizationMemberRole(c *gin.Context) {
	orgID, ok := s.scopedOrgID(c)
	if !ok {
		return
	}
	userID, err := parseSnowflakeID(c.Param("user_id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateOrganizationMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	role, err := organizationdomain.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	member, err := s.organizationSvc.UpdateMemberRole(c.Request.Context(), orgID, userID, role)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (s *Server) RemoveOrganizationMember(c *gin.Context) {
	orgID, ok := s.scopedOrgID(c)
	if !ok {
		return
	}
	userID, err := parseSnowflakeID(c.Param("user_id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.organizationSvc.RemoveMember(c.Request.Context(), orgID, userID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// scopedOrgID validates the :id path parameter against the actor's
// membership so members cannot reach another tenant's roster.
func (s *Server) scopedOrgID(c *gin.Context) (snowflake.ID, bool) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return 0, false
	}
	actor, _ := actorFromRequest(c)
	if actor.OrgID != id {
		AbortWithError(c, ErrForbidden)
		return 0, false
	}
	return id, true
}

func isOrganizationValidationError(err error) bool {
	switch {
	case errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidType),
		errors.Is(err, organizationdomain.ErrInvalidRole),
		errors.Is(err, organizationdomain.ErrInvalidUser):
		return true
	default:
		return false
	}
}
