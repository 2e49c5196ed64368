package handlers

import (
	"context"
	"log"
	"net/http"

	"podcast-studio/internal/authz"
	"podcast-studio/internal/feed"
	"podcast-studio/internal/models"
	"podcast-studio/internal/workflow"
)

func (h *Handlers) PublishPodcast(w http.ResponseWriter, r *http.Request) {
	h.podcastStatus(w, r, workflow.PublishPodcast, "Podcast published.", "Unable to publish podcast.")
}

func (h *Handlers) ArchivePodcast(w http.ResponseWriter, r *http.Request) {
	h.podcastStatus(w, r, workflow.ArchivePodcast, "Podcast archived.", "Unable to archive podcast.")
}

// DeletePodcast purges the files of the podcast and of every episode, then
// removes the podcast with its episodes.
func (h *Handlers) DeletePodcast(w http.ResponseWriter, r *http.Request) {
	podcast, ok := h.loadPodcast(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	episodes, err := h.store.ListPodcastEpisodes(ctx, podcast.ID, models.EpisodeStatuses...)
	if err != nil {
		fail(w, err)
		return
	}
	for _, ep := range episodes {
		if err := h.purgeEpisode(ctx, ep.ID); err != nil {
			fail(w, err)
			return
		}
	}
	for _, name := range models.PodcastAttachments {
		if err := h.blobs.PurgeAll(ctx, models.RecordPodcast, podcast.ID, name); err != nil {
			fail(w, err)
			return
		}
	}
	if err := h.store.DeletePodcast(ctx, podcast.ID); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notice": "Podcast deleted successfully", "redirect": authz.PodcastsPath})
}

type podcastTransition func(ctx context.Context, store workflow.PodcastStatusStore, p *models.Podcast) (bool, error)

func (h *Handlers) podcastStatus(w http.ResponseWriter, r *http.Request, move podcastTransition, notice, alert string) {
	podcast, ok := h.loadPodcast(w, r)
	if !ok {
		return
	}
	moved, err := move(r.Context(), h.store, podcast)
	if err != nil {
		fail(w, err)
		return
	}
	if !moved {
		writeJSON(w, http.StatusConflict, map[string]any{"alert": alert, "status": podcast.Status})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notice": notice, "status": podcast.Status})
}

// GetRSSFeed serves the public feed of a published podcast.
func (h *Handlers) GetRSSFeed(w http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "podcast_id")
	if err != nil {
		fail(w, err)
		return
	}
	podcast, err := h.store.GetPodcast(r.Context(), id)
	if err != nil || podcast.Status != models.PodcastPublished {
		http.Error(w, "Podcast not found", http.StatusNotFound)
		return
	}

	episodes, err := h.store.ListPodcastEpisodes(r.Context(), podcast.ID, models.StatusEpisodeComplete)
	if err != nil {
		log.Printf("Error getting episodes: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	cover, err := h.single(r, models.RecordPodcast, podcast.ID, models.AttachCoverArt)
	if err != nil {
		fail(w, err)
		return
	}
	items := make([]feed.Item, 0, len(episodes))
	for _, ep := range episodes {
		audio, err := h.single(r, models.RecordEpisode, ep.ID, models.AttachEditedAudio)
		if err != nil {
			fail(w, err)
			return
		}
		own, err := h.single(r, models.RecordEpisode, ep.ID, models.AttachCoverArt)
		if err != nil {
			fail(w, err)
			return
		}
		items = append(items, feed.Item{Episode: ep, Audio: audio, Cover: own})
	}

	rss, err := feed.GenerateRSS(podcast, cover, items, feed.BaseURL(h.baseURL, r))
	if err != nil {
		log.Printf("Error generating RSS: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
