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
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Ostech2/uhsms/internal/codes"
	"github.com/Ostech2/uhsms/internal/config"
	"github.com/Ostech2/uhsms/internal/database"
	"github.com/Ostech2/uhsms/internal/mail"
	"github.com/Ostech2/uhsms/internal/routes"
	"github.com/Ostech2/uhsms/internal/telemetry"
	"github.com/Ostech2/uhsms/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(cfg.ServiceName)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracer shutdown error: %v", err)
		}
	}()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if err := database.SeedAdmin(db, cfg); err != nil {
		log.Fatalf("admin seed failed: %v", err)
	}

	if err := database.SeedCategories(db); err != nil {
		log.Fatalf("category seed failed: %v", err)
	}

	var codeStore codes.Store = codes.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		codeStore = codes.NewRedisStore(redisClient)
	} else {
		log.Printf("REDIS_ADDR not set, verification codes are kept in memory")
	}

	hub := ws.NewApprovalHub()
	go hub.Run(ctx)

	r := gin.Default()
	routes.Register(r, db, cfg, routes.Deps{
		Codes:  codeStore,
		Mailer: mail.New(cfg),
		Hub:    hub,
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           otelhttp.NewHandler(r, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("%s listening on %s", cfg.ServiceName, httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
