package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"heavymetal/auth"
	"heavymetal/catalog"
	"heavymetal/config"
	"heavymetal/handlers"
	"heavymetal/middleware"
	"heavymetal/scanner"
	"heavymetal/services"
	"heavymetal/store"
	"heavymetal/websocket"
)

// StartWebServer starts the streaming server
func StartWebServer(cfg *config.Config) error {
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	tokens, err := auth.NewTokenService(cfg.TokenKey(), auth.DefaultTokenTTL)
	if err != nil {
		return err
	}

	// Initialize services
	hub := websocket.NewHub()
	go hub.Run()

	resolver := catalog.NewResolver(st)
	scans := services.NewScanService(st, resolver, scanner.Config{
		BatchSize:      cfg.BatchSize,
		MaxWorkers:     cfg.MaxWorkers,
		CheckpointFile: cfg.CheckpointFile,
	}, hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, tokens)
	songHandler := handlers.NewSongHandler(st)
	scanHandler := handlers.NewScanHandler(scans, hub, cfg.MediaFolder)
	healthHandler := handlers.NewHealthHandler()

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Logging())

	setupRoutes(r, st, tokens, authHandler, songHandler, scanHandler, healthHandler)

	log.Info("heavymetal server starting", "addr", cfg.Addr(), "database", cfg.DatabasePath)
	return r.Run(cfg.Addr())
}

// setupRoutes configures all the HTTP routes
func setupRoutes(
	r *gin.Engine,
	st *store.Store,
	tokens *auth.TokenService,
	authHandler *handlers.AuthHandler,
	songHandler *handlers.SongHandler,
	scanHandler *handlers.ScanHandler,
	healthHandler *handlers.HealthHandler,
) {
	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/ping", healthHandler.Ping)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)

			account := authGroup.Group("")
			account.Use(middleware.RequireAuth(tokens, st), middleware.RequireActive())
			account.GET("/profile", authHandler.Profile)
			account.GET("/superuser", middleware.RequireSuperuser(), authHandler.Superuser)
		}

		songs := api.Group("/songs")
		songs.Use(middleware.RequireAuth(tokens, st), middleware.RequireActive())
		{
			songs.GET("/list", songHandler.List)
			songs.GET("/info/:id", songHandler.Info)
			songs.GET("/search/:kind/:query", songHandler.Search)
			songs.GET("/serve/:id", songHandler.Serve)
			songs.GET("/stream/:id", songHandler.Stream)
		}

		scan := api.Group("/scan")
		scan.Use(middleware.RequireAuth(tokens, st), middleware.RequireActive())
		{
			scan.GET("/status", scanHandler.Status)
			scan.GET("/progress", scanHandler.Progress)
			scan.POST("/start", middleware.RequireSuperuser(), scanHandler.Start)
			scan.POST("/stop", middleware.RequireSuperuser(), scanHandler.Stop)
		}
	}
}
