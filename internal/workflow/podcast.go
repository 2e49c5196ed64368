package workflow

import (
	"context"
	"fmt"

	"podcast-studio/internal/metrics"
	"podcast-studio/internal/models"
)

// PodcastStatusStore performs the conditional podcast status write.
type PodcastStatusStore interface {
	SwapPodcastStatus(ctx context.Context, id int64, from, to models.PodcastStatus) (bool, error)
}

// PublishPodcast moves a draft podcast to published.
func PublishPodcast(ctx context.Context, store PodcastStatusStore, podcast *models.Podcast) (bool, error) {
	return swapPodcast(ctx, store, podcast, "publish", models.PodcastDraft, models.PodcastPublished)
}

// ArchivePodcast moves a published podcast to archived.
func ArchivePodcast(ctx context.Context, store PodcastStatusStore, podcast *models.Podcast) (bool, error) {
	return swapPodcast(ctx, store, podcast, "archive", models.PodcastPublished, models.PodcastArchived)
}

func swapPodcast(ctx context.Context, store PodcastStatusStore, podcast *models.Podcast, action string, from, to models.PodcastStatus) (bool, error) {
	if podcast.Status != from {
		metrics.Transitions.WithLabelValues("podcast", action, "invalid").Inc()
		return false, nil
	}
	ok, err := store.SwapPodcastStatus(ctx, podcast.ID, from, to)
	if err != nil {
		metrics.Transitions.WithLabelValues("podcast", action, "error").Inc()
		return false, fmt.Errorf("%s podcast %d: %w", action, podcast.ID, err)
	}
	if !ok {
		metrics.Transitions.WithLabelValues("podcast", action, "invalid").Inc()
		return false, nil
	}
	metrics.Transitions.WithLabelValues("podcast", action, "ok").Inc()
	podcast.Status = to
	return true, nil
}
