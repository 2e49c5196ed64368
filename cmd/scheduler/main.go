package main

import (
	"log"

	"github.com/hibiken/asynq"
	"podcast-studio/internal/config"
	"podcast-studio/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		&asynq.SchedulerOpts{},
	)

	task, err := tasks.NewSweepBlobsTask()
	if err != nil {
		log.Fatalf("could not create task: %v", err)
	}

	// Orphaned uploads are swept hourly.
	if _, err := scheduler.Register("@every 1h", task); err != nil {
		log.Fatalf("could not register task: %v", err)
	}

	log.Printf("Scheduler starting (commit: %s)", CommitSHA)
	if err := scheduler.Run(); err != nil {
		log.Fatalf("could not run scheduler: %v", err)
	}
}
