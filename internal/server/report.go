package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ProjectSummary(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	projectID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	summary, err := s.reportSvc.ProjectSummary(c.Request.Context(), actor, projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) ProjectSummaryPDF(c *gin.Context) {
	actor, _ := actorFromRequest(c)
	projectID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pdf, err := s.reportSvc.ProjectSummaryPDF(c.Request.Context(), actor, projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="project-summary.pdf"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, pdf)
}
