package main

import (
	"log"
	"time"

	"github.com/hibiken/asynq"
	"podcast-studio/internal/blobstore"
	"podcast-studio/internal/config"
	"podcast-studio/internal/db"
	"podcast-studio/internal/worker"
	"podcast-studio/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	db.InitDB(cfg.DatabaseURL)

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			// Exponential backoff: 1min, 2min, 4min, ... capped at 1 hour.
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				delay := time.Minute
				maxDelay := time.Hour
				for i := 0; i < n; i++ {
					delay *= 2
					if delay > maxDelay {
						delay = maxDelay
						break
					}
				}

				log.Printf("Task %s failed %d times, retrying in %v", task.Type(), n+1, delay)
				return delay
			},
		},
	)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(client, db.NewStore(db.DB), blobstore.NewLocalObjects(cfg.BlobStoragePath))

	mux.HandleFunc(tasks.TypePurgeBlob, taskHandler.HandlePurgeBlobTask)
	mux.HandleFunc(tasks.TypeSweepBlobs, taskHandler.HandleSweepBlobsTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
