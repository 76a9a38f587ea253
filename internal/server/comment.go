package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	organizationdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
)

type commentBodyRequest struct {
	Body string `json:"body"`
}

func (s *Server) CreateComment(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	issueID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Scope check: the issue must be visible to the actor's organization.
	if _, err := s.issueSvc.Get(c.Request.Context(), actor, issueID); err != nil {
		AbortWithError(c, err)
		return
	}

	var req commentBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	comment, err := s.commentSvc.Create(c.Request.Context(), actor.UserID, issueID, strings.TrimSpace(req.Body))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) ListComments(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	issueID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if _, err := s.issueSvc.Get(c.Request.Context(), actor, issueID); err != nil {
		AbortWithError(c, err)
		return
	}

	comments, err := s.commentSvc.ListByIssue(c.Request.Context(), issueID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": comments})
}

func (s *Server) UpdateComment(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req commentBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	comment, err := s.commentSvc.Update(c.Request.Context(), actor.UserID, id, strings.TrimSpace(req.Body))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (s *Server) DeleteComment(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isModerator := actor.Can(organizationdomain.CapManageProjects)
	if err := s.commentSvc.Delete(c.Request.Context(), actor.UserID, isModerator, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
