package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"csgo-market-data/internal/api"
	"csgo-market-data/internal/cli"
	"csgo-market-data/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := cli.LoadConfig()
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := cli.OpenDatabase(cfg, "")

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := api.NewRedisClient(ctx, cfg.RedisAddr)
		cancel()
		if err != nil {
			log.Printf("⚠️  Redis 不可用，K线查询不使用缓存: %v", err)
		} else {
			rdb = client
			defer rdb.Close()
		}
	}

	handler := api.NewHandler(
		api.NewCachingKlineStore(rdb, cfg.CacheTTL, store.NewKlineReader(db)),
		store.NewIndexReader(db),
		store.NewSnapshotStore(db),
	)

	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.SetupRoutes(r.Group("/api/v1"), handler)

	ctx, stop := cli.SignalContext()
	defer stop()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
