package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskflow/internal/config"
	"taskflow/internal/storage/sqlite"
)

// Server provides the HTTP handlers for the TaskFlow backend.
type Server struct {
	engine        *gin.Engine
	store         *sqlite.Store
	logger        *slog.Logger
	staticDir     string
	jwtSecret     []byte
	tokenValidity time.Duration
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, logger *slog.Logger, cfg *config.Config) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:        router,
		store:         store,
		logger:        logger,
		staticDir:     cfg.StaticDir,
		jwtSecret:     []byte(cfg.JWTSecret),
		tokenValidity: cfg.TokenValidity,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		auth := api.Group("/auth")
		{
			auth.POST("/register", s.handleRegister)
			auth.POST("/login", s.handleLogin)
			auth.GET("/me", s.requireAuth, s.handleMe)
			auth.PUT("/profile", s.requireAuth, s.handleUpdateProfile)
		}

		projects := api.Group("/projects", s.requireAuth)
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.GET(":id", s.handleGetProject)
			projects.PUT(":id", s.handleUpdateProject)
			projects.DELETE(":id", s.handleDeleteProject)
			projects.POST(":id/members", s.handleAddMember)
			projects.DELETE(":id/members/:userId", s.handleRemoveMember)
			projects.GET(":id/tasks", s.handleListTasks)
			projects.POST(":id/tasks", s.handleCreateTask)
			projects.PUT(":id/tasks/reorder", s.handleReorderTasks)
		}

		tasks := api.Group("/tasks", s.requireAuth)
		{
			tasks.GET(":id", s.handleGetTask)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.DELETE(":id", s.handleDeleteTask)
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
