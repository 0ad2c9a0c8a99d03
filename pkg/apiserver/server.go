package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/leadforge/leadforge/pkg/apiserver/handlers"
	"github.com/leadforge/leadforge/pkg/apiserver/middleware"
	"github.com/leadforge/leadforge/pkg/auth"
	"github.com/leadforge/leadforge/pkg/config"
	"github.com/leadforge/leadforge/pkg/dispatch"
	"github.com/leadforge/leadforge/pkg/store/postgres"
	"github.com/leadforge/leadforge/pkg/workflow"
)

type Server struct {
	router       *gin.Engine
	db           *postgres.Store
	cfg          *config.Config
	logger       *zap.Logger
	orchestrator *dispatch.Orchestrator
	runner       *workflow.Runner
	tokens       *auth.APITokenManager
}

func NewServer(db *postgres.Store, cfg *config.Config, logger *zap.Logger, orchestrator *dispatch.Orchestrator, runner *workflow.Runner) *Server {
	s := &Server{
		db:           db,
		cfg:          cfg,
		logger:       logger,
		orchestrator: orchestrator,
		runner:       runner,
		tokens:       auth.NewAPITokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL),
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var dbConn *gorm.DB
	if s.db != nil {
		dbConn = s.db.DB()
	}

	workflowRepo := postgres.NewWorkflowRepository(dbConn)
	scheduleRepo := postgres.NewScheduleRepository(dbConn)
	dealRepo := postgres.NewDealRepository(dbConn)
	activityRepo := postgres.NewActivityRepository(dbConn)
	campaignRepo := postgres.NewCampaignRepository(dbConn)
	leadRepo := postgres.NewLeadRepository(dbConn)
	emailRepo := postgres.NewOutreachEmailRepository(dbConn)

	dispatchHandler := handlers.NewDispatchHandler(s.orchestrator, s.logger)
	r.POST("/api/v1/dispatch",
		middleware.CronSecret(s.cfg.Dispatch.CronSecret),
		dispatchHandler.Run,
	)

	api := r.Group("/api/v1")
	{
		api.Use(middleware.Auth(s.tokens))

		workflowHandler := handlers.NewWorkflowHandler(workflowRepo, s.logger)
		api.POST("/workflows", workflowHandler.Create)
		api.GET("/workflows", workflowHandler.List)

		scheduleHandler := handlers.NewScheduleHandler(scheduleRepo, s.logger)
		api.POST("/schedules", scheduleHandler.Create)
		api.GET("/schedules", scheduleHandler.List)

		dealHandler := handlers.NewDealHandler(dealRepo, activityRepo, workflowRepo, s.runner, s.logger)
		api.PATCH("/deals/:id", dealHandler.Update)

		campaignHandler := handlers.NewCampaignHandler(campaignRepo, leadRepo, emailRepo, s.logger)
		api.POST("/campaigns", campaignHandler.Create)
		api.POST("/campaigns/:id/queue", campaignHandler.Queue)
		api.GET("/campaigns/:id/emails", campaignHandler.Emails)
	}

	s.router = r
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
