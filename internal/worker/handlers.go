package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"podcast-studio/internal/metrics"
	"podcast-studio/pkg/tasks"
)

// OrphanAge is how long an unattached blob may sit before the sweep purges it.
const OrphanAge = 24 * time.Hour

// BlobStore is the blob persistence the worker needs.
type BlobStore interface {
	DeleteBlobIfUnattached(ctx context.Context, blobID int64) (string, bool, error)
	ListUnattachedBlobIDs(ctx context.Context, before time.Time) ([]int64, error)
}

// ObjectDeleter removes stored bytes by key.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

type TaskHandler struct {
	asynqClient tasks.TaskEnqueuer
	store       BlobStore
	objects     ObjectDeleter
	now         func() time.Time
}

func NewTaskHandler(client tasks.TaskEnqueuer, store BlobStore, objects ObjectDeleter) *TaskHandler {
	return &TaskHandler{asynqClient: client, store: store, objects: objects, now: time.Now}
}

// HandlePurgeBlobTask deletes a blob row and its bytes. A blob that has
// been attached again, or is already gone, is left alone.
func (h *TaskHandler) HandlePurgeBlobTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.PurgeBlobTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	key, deleted, err := h.store.DeleteBlobIfUnattached(ctx, p.BlobID)
	if err != nil {
		return fmt.Errorf("failed to delete blob %d: %w", p.BlobID, err)
	}
	if !deleted {
		log.Printf("Blob %d still attached or already purged, skipping", p.BlobID)
		return nil
	}

	// The row is gone; a failure here leaves only bytes behind.
	if err := h.objects.Delete(ctx, key); err != nil {
		log.Printf("failed to delete object %s for blob %d: %v", key, p.BlobID, err)
		return nil
	}

	metrics.BlobPurges.Inc()
	log.Printf("Purged blob %d", p.BlobID)
	return nil
}

// HandleSweepBlobsTask enqueues a purge for every blob nothing has claimed
// within OrphanAge.
func (h *TaskHandler) HandleSweepBlobsTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Sweeping unattached blobs...")

	ids, err := h.store.ListUnattachedBlobIDs(ctx, h.now().Add(-OrphanAge))
	if err != nil {
		return fmt.Errorf("failed to list unattached blobs: %w", err)
	}

	for _, id := range ids {
		task, err := tasks.NewPurgeBlobTask(id)
		if err != nil {
			log.Printf("failed to create purge task for blob %d: %v", id, err)
			continue
		}

		_, err = h.asynqClient.Enqueue(task)
		if err != nil {
			log.Printf("failed to enqueue purge task for blob %d: %v", id, err)
			continue
		}
	}

	log.Printf("Finished sweeping unattached blobs, %d queued.", len(ids))
	return nil
}
