// main.go
package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/julianader/veoflow-api/internal/platform"
	"github.com/julianader/veoflow-api/models"
	"github.com/julianader/veoflow-api/projects"
	"github.com/julianader/veoflow-api/renderer"
	"github.com/julianader/veoflow-api/videos"
)

type Server struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Renderer *renderer.Client
	Router   *gin.Engine
}

func NewServer() (*Server, error) {
	// Use the shared connection initializers
	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()
	rc := renderer.NewClient(platform.RendererBaseURL(), platform.LocalMediaHost())

	if err := db.AutoMigrate(&models.Project{}, &models.Scene{}); err != nil {
		return nil, err
	}

	// Create Gin router with CORS middleware
	router := gin.Default()

	// Add CORS middleware for the frontend
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", os.Getenv("FRONTEND_URL"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		DB:       db,
		Redis:    rdb,
		Renderer: rc,
		Router:   router,
	}

	// Setup routes
	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		// Check database connection
		sqlDB, err := s.DB.DB()
		if err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		if err := sqlDB.Ping(); err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Root route
	s.Router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "VeoFlow API v1"})
	})

	// Create handlers
	projectHandler := projects.NewHandler(s.DB, s.Redis, s.Renderer)
	videoHandler := videos.NewHandler(s.DB, s.Redis, s.Renderer)

	api := s.Router.Group("/api")
	{
		// Project CRUD
		projectRoutes := api.Group("/projects")
		{
			projectRoutes.POST("", projectHandler.CreateProject)
			projectRoutes.GET("", projectHandler.ListProjects)
			projectRoutes.GET("/:id", projectHandler.GetProject)
			projectRoutes.PUT("/:id", projectHandler.UpdateProject)
			projectRoutes.DELETE("/:id", projectHandler.DeleteProject)

			// Scene CRUD, nested under the owning project
			projectRoutes.POST("/:id/scenes", projectHandler.CreateScene)
			projectRoutes.PUT("/:id/scenes/:sceneId", projectHandler.UpdateScene)
			projectRoutes.DELETE("/:id/scenes/:sceneId", projectHandler.DeleteScene)
			projectRoutes.PUT("/:id/reorder", projectHandler.ReorderScenes)

			// Derived views
			projectRoutes.GET("/:id/timeline", projectHandler.GetTimeline)

			// AI drafting
			projectRoutes.POST("/:id/storyboard", projectHandler.DraftStoryboard)
		}

		api.GET("/presets", projectHandler.ListPresets)

		// Video generation
		videoRoutes := api.Group("/videos")
		{
			videoRoutes.POST("/generate-video", videoHandler.GenerateVideo)
			videoRoutes.POST("/generate-voiceover", videoHandler.GenerateVoiceover)
			videoRoutes.GET("/job/:jobId", videoHandler.JobStatus)
		}
	}
}

func (s *Server) Run() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s", port)
	return s.Router.Run(":" + port)
}

func main() {
	server, err := NewServer()
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	if err := server.Run(); err != nil {
		log.Fatal("Failed to run server:", err)
	}
}
