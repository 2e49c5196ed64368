package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"podcast-studio/internal/blobstore"
	"podcast-studio/internal/config"
	"podcast-studio/internal/db"
	"podcast-studio/internal/flash"
	"podcast-studio/internal/handlers"
	"podcast-studio/internal/labels"
	"podcast-studio/internal/middleware"
	"podcast-studio/internal/workflow"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

const (
	uploadTTL = 24 * time.Hour
	flashTTL  = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	db.InitDB(cfg.DatabaseURL)
	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("could not run migrations: %v", err)
	}
	store := db.NewStore(db.DB)

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	objects := blobstore.NewLocalObjects(cfg.BlobStoragePath)
	blobs := blobstore.NewService(store, objects, blobstore.NewSigner(cfg.BlobSigningKey, uploadTTL), client)

	h := handlers.New(handlers.Deps{
		Store:   store,
		Blobs:   blobs,
		Files:   objects,
		Labels:  labels.NewReconciler(store),
		Flash:   flash.NewRedis(rdb, flashTTL),
		Machine: workflow.NewMachine(store, workflow.LogObserver),
		BaseURL: cfg.BaseURL,
	})

	limiter := middleware.NewRateLimiterMiddleware(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	h.Register(r,
		middleware.ActorMiddleware(middleware.HeaderResolver{Users: store}),
		limiter.Middleware,
	)

	log.Printf("Starting server on :%s (commit: %s)", cfg.Port, CommitSHA)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
