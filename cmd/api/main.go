// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/orgchart-app/orgchart-backend/internal/api/handlers"
	"github.com/orgchart-app/orgchart-backend/internal/api/middleware"
	"github.com/orgchart-app/orgchart-backend/internal/cache"
	"github.com/orgchart-app/orgchart-backend/internal/config"
	"github.com/orgchart-app/orgchart-backend/internal/cron"
	"github.com/orgchart-app/orgchart-backend/internal/directory"
	"github.com/orgchart-app/orgchart-backend/internal/repository"
	"github.com/orgchart-app/orgchart-backend/internal/seed"
	"github.com/orgchart-app/orgchart-backend/internal/service"
	"github.com/orgchart-app/orgchart-backend/internal/socket"
	"github.com/orgchart-app/orgchart-backend/internal/store"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Initialize Document Store + Repository
	// ============================================
	flags := repository.FeatureFlags{
		InsertEnabled: cfg.InsertEnabled,
		UpdateEnabled: cfg.UpdateEnabled,
		DeleteEnabled: cfg.DeleteEnabled,
	}

	var repo repository.OrgChartRepository
	if cfg.ReadOnlyChartURL != "" {
		repo = repository.NewReadOnlyRepository(cfg.ReadOnlyChartURL, cfg.OrgName)
		log.Printf("📖 Read-only chart repository (source: %s)", cfg.ReadOnlyChartURL)
	} else {
		var docStore store.DocumentStore
		switch cfg.StorageBackend {
		case "postgres":
			log.Println("🔄 Running database migrations...")
			if err := store.RunMigrations(cfg.DatabaseURL, "./internal/store/migrations"); err != nil {
				log.Fatalf("❌ Migration failed: %v", err)
			}

			pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
			if err != nil {
				log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
			}
			defer pgStore.Close()
			docStore = pgStore

		case "redis":
			redisStore, err := store.NewRedisStore(cfg.RedisURL)
			if err != nil {
				log.Fatalf("❌ Failed to connect to Redis: %v", err)
			}
			defer redisStore.Close()
			docStore = redisStore

		default:
			log.Println("⚠️  Using in-memory document store (data is not persisted)")
			docStore = store.NewMemoryStore()
		}

		repo = repository.NewStoreRepository(docStore, cfg.StorageKey, cfg.OrgName, flags)
		log.Printf("📦 Repository initialized (backend: %s, key: %s)", cfg.StorageBackend, cfg.StorageKey)
	}

	// ============================================
	// Initialize Directory Client + Cache
	// ============================================
	dirClient := directory.NewRESTClient(cfg.DirectoryBaseURL, cfg.DirectoryToken, cfg.DirectoryTimeout)

	identityCache := cache.NewIdentityCache(dirClient, repo, cache.Config{
		ProfileTTL:         cfg.ProfileTTL,
		PhotoTTL:           cfg.PhotoTTL,
		PreloadConcurrency: cfg.PreloadConcurrency,
		PreloadPacing:      cfg.PreloadPacing,
	})
	log.Println("⚡ Identity enrichment cache initialized")

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	// WebSocket handler with JWT secret for self-authentication
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" && cfg.ReadOnlyChartURL == "" {
		seed.SeedData(repo)
	}

	// ============================================
	// Initialize Services + Handlers
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Repo:        repo,
		Cache:       identityCache,
		Broadcaster: broadcaster,
	})
	h := handlers.NewHandlers(services)
	log.Println("✨ Services initialized")

	// ============================================
	// Start background schedulers
	// ============================================
	refresher := cron.NewRefresher(identityCache, cfg.RefreshInitialDelay, cfg.RefreshInterval)
	refresher.Start()
	defer refresher.Stop()

	cronScheduler := cron.NewScheduler(identityCache)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL, "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"storage":    cfg.StorageBackend,
			"ws_clients": hub.GetConnectedClientsCount(),
			"cache":      identityCache.Stats(),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		api.GET("/orgchart", h.OrgChart.GetDocument)

		people := api.Group("/people")
		{
			people.GET("/:email/profile", h.People.GetProfile)
			people.GET("/:email/photo", h.People.GetPhoto)
		}

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			positions := protected.Group("/orgchart/positions")
			{
				positions.POST("", h.OrgChart.CreatePosition)
				positions.PUT("/:id", h.OrgChart.UpdatePosition)
				positions.DELETE("/:id", h.OrgChart.DeletePosition)

				positions.POST("/:id/employees", h.OrgChart.CreateEmployee)
				positions.PUT("/:id/employees/:employeeId", h.OrgChart.UpdateEmployee)
				positions.DELETE("/:id/employees/:employeeId", h.OrgChart.DeleteEmployee)
			}

			admin := protected.Group("/admin/cache")
			{
				admin.GET("/stats", h.Admin.GetCacheStats)
				admin.POST("/preload", h.Admin.TriggerPreload)
				admin.POST("/refresh/:email", h.Admin.RefreshEmail)
			}
		}
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
