package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type createTimeLogRequest struct {
	Minutes  int        `json:"minutes"`
	Note     string     `json:"note"`
	LoggedAt *time.Time `json:"logged_at"`
}

func (s *Server) CreateTimeLog(c *gin.Context) {
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

	var req createTimeLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entry, err := s.timelogSvc.Log(c.Request.Context(), actor.UserID, issueID, req.Minutes, strings.TrimSpace(req.Note), req.LoggedAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) ListTimeLogs(c *gin.Context) {
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

	entries, err := s.timelogSvc.ListByIssue(c.Request.Context(), issueID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	total, err := s.timelogSvc.TotalMinutes(c.Request.Context(), issueID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":          entries,
		"total_minutes": total,
	})
}

func (s *Server) DeleteTimeLog(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.timelogSvc.Delete(c.Request.Context(), actor.UserID, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
