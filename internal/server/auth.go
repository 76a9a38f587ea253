package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authdomain "github.com/CCxPL/task-management-system/internal/auth/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (s *Server) Login(c *gin.Context) {
	if s.loginLimiter != nil {
		allowed, retryAfter := s.loginLimiter.Allow(c.Request.Context(), c.ClientIP())
		if !allowed {
			if retryAfter > 0 {
				c.Header("Retry-After", retryAfter.String())
			}
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "login", "rate")
			AbortWithError(c, ErrTooManyRequests)
			return
		}
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		s.obsMetrics.RecordLoginAttempt(c.Request.Context(), "failure")
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)
	s.obsMetrics.RecordLoginAttempt(c.Request.Context(), "success")

	c.JSON(http.StatusOK, gin.H{
		"user":       result.User,
		"expires_at": result.ExpiresAt,
	})
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		_ = s.authsvc.Logout(c.Request.Context(), token)
	}
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	actor, ok := actorFromRequest(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authsvc.GetUser(c.Request.Context(), actor.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{"user": user}
	if actor.HasMembership() {
		resp["org_id"] = actor.OrgID
		resp["role"] = actor.Role
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ChangePassword(c *gin.Context) {
	actor, ok := actorFromRequest(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), actor.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}
