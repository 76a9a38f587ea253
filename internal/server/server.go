package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/auth"
	authdomain "github.com/CCxPL/task-management-system/internal/auth/domain"
	"github.com/CCxPL/task-management-system/internal/auth/session"
	"github.com/CCxPL/task-management-system/internal/comment"
	commentdomain "github.com/CCxPL/task-management-system/internal/comment/domain"
	"github.com/CCxPL/task-management-system/internal/config"
	"github.com/CCxPL/task-management-system/internal/issue"
	issuedomain "github.com/CCxPL/task-management-system/internal/issue/domain"
	"github.com/CCxPL/task-management-system/internal/observability"
	obsmiddleware "github.com/CCxPL/task-management-system/internal/observability/logger"
	obsmetrics "github.com/CCxPL/task-management-system/internal/observability/metrics"
	obstracing "github.com/CCxPL/task-management-system/internal/observability/tracing"
	"github.com/CCxPL/task-management-system/internal/organization"
	organizationdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
	"github.com/CCxPL/task-management-system/internal/project"
	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
	"github.com/CCxPL/task-management-system/internal/ratelimit"
	"github.com/CCxPL/task-management-system/internal/report"
	"github.com/CCxPL/task-management-system/internal/sprint"
	sprintdomain "github.com/CCxPL/task-management-system/internal/sprint/domain"
	"github.com/CCxPL/task-management-system/internal/timelog"
	timelogdomain "github.com/CCxPL/task-management-system/internal/timelog/domain"
	"github.com/CCxPL/task-management-system/internal/workflow"
	workflowdomain "github.com/CCxPL/task-management-system/internal/workflow/domain"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	auth.Module,
	session.Module,
	organization.Module,
	project.Module,
	workflow.Module,
	issue.Module,
	sprint.Module,
	comment.Module,
	timelog.Module,
	report.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	authsvc         authdomain.Service
	sessions        *session.Manager
	genID           *snowflake.Node
	organizationSvc organizationdomain.Service
	projectSvc      projectdomain.Service
	workflowSvc     workflowdomain.Service
	issueSvc        issuedomain.Service
	sprintSvc       sprintdomain.Service
	commentSvc      commentdomain.Service
	timelogSvc      timelogdomain.Service
	reportSvc       report.Service
	obsMetrics      *obsmetrics.Metrics
	loginLimiter    *ratelimit.LoginLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Authsvc         authdomain.Service
	Sessions        *session.Manager
	GenID           *snowflake.Node
	OrganizationSvc organizationdomain.Service
	ProjectSvc      projectdomain.Service
	WorkflowSvc     workflowdomain.Service
	IssueSvc        issuedomain.Service
	SprintSvc       sprintdomain.Service
	CommentSvc      commentdomain.Service
	TimelogSvc      timelogdomain.Service
	ReportSvc       report.Service
	ObsMetrics      *obsmetrics.Metrics        `optional:"true"`
	LoginLimiter    *ratelimit.LoginLimiter    `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		authsvc:         p.Authsvc,
		sessions:        p.Sessions,
		genID:           p.GenID,
		organizationSvc: p.OrganizationSvc,
		projectSvc:      p.ProjectSvc,
		workflowSvc:     p.WorkflowSvc,
		issueSvc:        p.IssueSvc,
		sprintSvc:       p.SprintSvc,
		commentSvc:      p.CommentSvc,
		timelogSvc:      p.TimelogSvc,
		reportSvc:       p.ReportSvc,
		obsMetrics:      p.ObsMetrics,
		loginLimiter:    p.LoginLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.OrgContext(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.Use(s.AuthRequired())
	api.Use(s.OrgContext())

	// -------- Users --------
	api.POST("/users", s.RequireSuperuser(), s.CreateUser)

	// -------- Organizations --------
	api.GET("/organizations", s.RequireSuperuser(), s.ListOrganizations)
	api.POST("/organizations", s.RequireSuperuser(), s.CreateOrganization)
	api.GET("/organizations/:id", s.GetOrganization)
	api.PATCH("/organizations/:id", s.UpdateOrganization)
	api.POST("/organizations/:id/activate", s.RequireSuperuser(), s.ActivateOrganization)
	api.POST("/organizations/:id/deactivate", s.RequireSuperuser(), s.DeactivateOrganization)
	api.GET("/organizations/:id/members", s.RequireMembership(), s.ListOrganizationMembers)
	api.POST("/organizations/:id/members", s.RequireCapability(organizationdomain.CapManageMembers), s.AddOrganizationMember)
	api.PATCH("/organizations/:id/members/:user_id", s.RequireCapability(organizationdomain.CapManageMembers), s.UpdateOrganizationMemberRole)
	api.DELETE("/organizations/:id/members/:user_id", s.RequireCapability(organizationdomain.CapManageMembers), s.RemoveOrganizationMember)

	// -------- Projects --------
	api.GET("/projects", s.RequireMembership(), s.ListProjects)
	api.POST("/projects", s.RequireCapability(organizationdomain.CapManageProjects), s.CreateProject)
	api.GET("/projects/:id", s.RequireMembership(), s.GetProject)
	api.PATCH("/projects/:id", s.RequireCapability(organizationdomain.CapManageProjects), s.UpdateProject)
	api.GET("/projects/:id/members", s.RequireMembership(), s.ListProjectMembers)
	api.POST("/projects/:id/members", s.RequireCapability(organizationdomain.CapManageProjects), s.AddProjectMember)
	api.DELETE("/projects/:id/members/:user_id", s.RequireCapability(organizationdomain.CapManageProjects), s.RemoveProjectMember)

	// -------- Workflows --------
	api.GET("/workflows", s.RequireMembership(), s.ListWorkflows)
	api.POST("/workflows", s.RequireCapability(organizationdomain.CapManageWorkflows), s.CreateWorkflow)
	api.GET("/workflows/resolve", s.RequireMembership(), s.ResolveWorkflow)
	api.GET("/workflows/:id", s.RequireMembership(), s.GetWorkflow)
	api.PATCH("/workflows/:id", s.RequireCapability(organizationdomain.CapManageWorkflows), s.UpdateWorkflow)
	api.DELETE("/workflows/:id", s.RequireCapability(organizationdomain.CapManageWorkflows), s.DeleteWorkflow)

	api.GET("/workflows/:id/statuses", s.RequireMembership(), s.ListWorkflowStatuses)
	api.POST("/workflows/:id/statuses", s.RequireCapability(organizationdomain.CapManageWorkflows), s.AddWorkflowStatus)
	api.PATCH("/workflows/:id/statuses/reorder", s.RequireCapability(organizationdomain.CapManageWorkflows), s.ReorderWorkflowStatuses)
	api.PATCH("/workflows/:id/statuses/:status_id", s.RequireCapability(organizationdomain.CapManageWorkflows), s.UpdateWorkflowStatus)
	api.DELETE("/workflows/:id/statuses/:status_id", s.RequireCapability(organizationdomain.CapManageWorkflows), s.DeleteWorkflowStatus)

	api.GET("/workflows/:id/transitions", s.RequireMembership(), s.ListWorkflowTransitions)
	api.POST("/workflows/:id/transitions", s.RequireCapability(organizationdomain.CapManageWorkflows), s.AddWorkflowTransition)
	api.POST("/workflows/:id/transitions/auto-create", s.RequireCapability(organizationdomain.CapManageWorkflows), s.AutoCreateWorkflowTransitions)
	api.DELETE("/workflows/:id/transitions/:transition_id", s.RequireCapability(organizationdomain.CapManageWorkflows), s.DeleteWorkflowTransition)

	api.POST("/workflows/:id/set-default", s.RequireCapability(organizationdomain.CapManageWorkflows), s.SetDefaultWorkflow)
	api.POST("/workflows/:id/assign-to-project", s.RequireCapability(organizationdomain.CapManageWorkflows), s.AssignWorkflowToProject)

	// -------- Issues --------
	api.GET("/issues", s.RequireMembership(), s.ListIssues)
	api.POST("/issues", s.RequireMembership(), s.CreateIssue)
	api.GET("/issues/:id", s.RequireMembership(), s.GetIssue)
	api.PATCH("/issues/:id", s.RequireMembership(), s.UpdateIssue)
	api.DELETE("/issues/:id", s.RequireMembership(), s.DeleteIssue)
	api.PATCH("/issues/:id/status", s.RequireMembership(), s.UpdateIssueStatus)
	api.GET("/kanban", s.RequireMembership(), s.KanbanBoard)

	// -------- Sprints --------
	api.GET("/sprints", s.RequireMembership(), s.ListSprints)
	api.POST("/sprints", s.RequireCapability(organizationdomain.CapManageSprints), s.CreateSprint)
	api.GET("/sprints/:id", s.RequireMembership(), s.GetSprint)
	api.PATCH("/sprints/:id", s.RequireCapability(organizationdomain.CapManageSprints), s.UpdateSprint)
	api.DELETE("/sprints/:id", s.RequireCapability(organizationdomain.CapManageSprints), s.DeleteSprint)
	api.POST("/sprints/:id/advance", s.RequireCapability(organizationdomain.CapManageSprints), s.AdvanceSprint)

	// -------- Comments --------
	api.GET("/issues/:id/comments", s.RequireMembership(), s.ListComments)
	api.POST("/issues/:id/comments", s.RequireMembership(), s.CreateComment)
	api.PATCH("/comments/:id", s.RequireMembership(), s.UpdateComment)
	api.DELETE("/comments/:id", s.RequireMembership(), s.DeleteComment)

	// -------- Time logs --------
	api.GET("/issues/:id/timelogs", s.RequireMembership(), s.ListTimeLogs)
	api.POST("/issues/:id/timelogs", s.RequireMembership(), s.CreateTimeLog)
	api.DELETE("/timelogs/:id", s.RequireMembership(), s.DeleteTimeLog)

	// -------- Reports --------
	api.GET("/reports/projects/:id/summary", s.RequireCapability(organizationdomain.CapViewReports), s.ProjectSummary)
	api.GET("/reports/projects/:id/summary.pdf", s.RequireCapability(organizationdomain.CapViewReports), s.ProjectSummaryPDF)
}
