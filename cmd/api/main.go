package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/othello/backend/internal/config"
	"github.com/iamasit07/othello/backend/internal/repository/postgres"
	"github.com/iamasit07/othello/backend/internal/repository/redis"
	"github.com/iamasit07/othello/backend/internal/service/cleanup"
	"github.com/iamasit07/othello/backend/internal/service/game"
	"github.com/iamasit07/othello/backend/internal/service/matchmaking"
	"github.com/iamasit07/othello/backend/internal/service/session"
	transportHttp "github.com/iamasit07/othello/backend/internal/transport/http"
	"github.com/iamasit07/othello/backend/internal/transport/http/middleware"
	"github.com/iamasit07/othello/backend/internal/transport/websocket"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.Open(cfg)
	if err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	defer db.Close()

	log.Println("Running database migrations...")
	if err := postgres.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	gameRepo := postgres.NewGameRepo(db)
	userRepo := postgres.NewUserRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)

	if err := redis.InitRedis(cfg); err != nil {
		log.Printf("Failed to initialize Redis: %v", err)
	}
	defer redis.CloseRedis()

	// interfaces stay nil without Redis so callers skip the cache
	var (
		cache    session.CacheRepository
		live     game.LiveGameStore
		liveRead transportHttp.LiveGameReader
	)
	if redis.IsRedisEnabled() && redis.RedisClient != nil {
		rc := redis.NewRedisCache(redis.RedisClient)
		cache, live, liveRead = rc, rc, rc
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameService := game.NewService(gameRepo, cfg.Engine)
	sessionManager := game.NewSessionManager(gameRepo, live, game.SettingsFromConfig(cfg))
	authService := session.NewAuthService(sessionRepo, cache, cfg.SessionTTL)
	connManager := websocket.NewConnectionManager()
	startQueue := matchmaking.NewQueue(128)

	cleanup.NewWorker(sessionManager, sessionRepo).Start(ctx)
	go matchmaking.Listen(ctx, startQueue, connManager, sessionManager)

	authHandler := transportHttp.NewAuthHandler(userRepo, authService, connManager, cache)
	historyHandler := transportHttp.NewHistoryHandler(gameRepo)
	watchHandler := transportHttp.NewWatchHandler(sessionManager, liveRead)
	engineHandler := transportHttp.NewEngineHandler(gameService)
	wsHandler := websocket.NewHandler(connManager, startQueue, sessionManager, authService, cfg.AllowedOrigins)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": redis.IsRedisEnabled(), "connections": connManager.Count()})
	})

	api := router.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/leaderboard", authHandler.Leaderboard)
	api.POST("/analyze", engineHandler.Analyze)
	api.GET("/watch", watchHandler.GetLiveGames)
	api.GET("/watch/:id", watchHandler.GetLiveGame)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/sessions", authHandler.GetSessionHistory)
		protected.GET("/history", historyHandler.GetHistory)
		protected.GET("/history/:id", historyHandler.GetGameDetails)
		// a full bot game per request, so only for signed-in users
		protected.POST("/simulate", engineHandler.Simulate)
	}

	// auth happens inside the socket handler
	router.GET("/ws", wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully")
}
