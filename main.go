package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yapcheekian/shrt/allocator"
	"github.com/Yapcheekian/shrt/config"
	"github.com/Yapcheekian/shrt/handlers"
	"github.com/Yapcheekian/shrt/middlewares"
	"github.com/Yapcheekian/shrt/store"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("cannot load config: ", err)
	}

	s, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("cannot open store: ", err)
	}
	defer closeStore()

	ids, err := allocator.NewSnowflakeIDs(cfg.SnowflakeNode)
	if err != nil {
		log.Fatal(err)
	}

	alloc, err := allocator.New(s,
		allocator.WithCodeLength(cfg.ShortCodeLength),
		allocator.WithMaxAttempts(cfg.MaxAttempts),
		allocator.WithIDGenerator(ids),
	)
	if err != nil {
		log.Fatal(err)
	}

	r := gin.Default()
	r.Use(middlewares.RequestID(), middlewares.CORS(cfg.AllowedOrigins()))
	handlers.NewShortenerHandler(r, alloc, cfg.BaseURL)

	svr := http.Server{
		Addr:    cfg.AppPort,
		Handler: r,
	}

	go func() {
		if err := svr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Fail to start server: ", err)
		}
	}()
	log.Printf("Listening on %s (store=%s, cache=%t)", cfg.AppPort, cfg.StoreBackend, cfg.CacheEnabled)

	quit := make(chan os.Signal, 1)
	// Relay incoming SIGTERM, SIGINT to quit
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	<-quit
	log.Println("Shutting down server...")

	// The context is used to inform the application it has 30 seconds to finish
	// cleaning up remaining resources
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := svr.Shutdown(ctx); err != nil {
		log.Println(fmt.Sprintf("Server forced to shutdown: %s", err.Error()))
	}
}

// openStore connects the configured backend and returns a function that
// releases its connections.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	var rClient *redis.Client
	if cfg.StoreBackend == config.BackendRedis || cfg.CacheEnabled {
		rClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		if cmd := rClient.Ping(context.Background()); cmd.Err() != nil {
			return nil, nil, cmd.Err()
		}
	}

	if cfg.StoreBackend == config.BackendRedis {
		return store.NewRedisStore(rClient), func() { rClient.Close() }, nil
	}

	db, err := sqlx.Connect("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, nil, err
	}

	closeAll := func() {
		db.Close()
		if rClient != nil {
			rClient.Close()
		}
	}

	var s store.Store = store.NewPostgresStore(db)
	if cfg.CacheEnabled {
		s = store.NewCachedStore(s, rClient, cfg.CacheTTL)
	}

	return s, closeAll, nil
}
