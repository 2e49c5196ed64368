package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"podcast-studio/internal/authz"
	"podcast-studio/internal/middleware"
	"podcast-studio/internal/models"
	"podcast-studio/internal/workflow"
)

const msgNothingToReview = "Upload at least one deliverable or the edited audio before completing editing."

func (h *Handlers) GetEpisode(w http.ResponseWriter, r *http.Request) {
	podcast, episode, ok := h.loadEpisode(w, r, "id")
	if !ok {
		return
	}
	files, err := h.episodeFiles(r, podcast, episode)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"episode": episode,
		"files":   files,
		"actions": workflow.AvailableActions(episode.Status, workflow.Owner),
	})
}

// DeleteEpisode purges the episode's files and removes it.
func (h *Handlers) DeleteEpisode(w http.ResponseWriter, r *http.Request) {
	podcast, episode, ok := h.loadEpisode(w, r, "id")
	if !ok {
		return
	}
	if err := h.purgeEpisode(r.Context(), episode.ID); err != nil {
		fail(w, err)
		return
	}
	if err := h.store.DeleteEpisode(r.Context(), podcast.ID, episode.ID); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notice":   "Episode was successfully deleted.",
		"redirect": authz.EpisodesPath(podcast.ID),
	})
}

func (h *Handlers) purgeEpisode(ctx context.Context, id int64) error {
	for _, name := range models.EpisodeAttachments {
		if err := h.blobs.PurgeAll(ctx, models.RecordEpisode, id, name); err != nil {
			return err
		}
	}
	return nil
}

// EpisodeAction runs one of the owner-facing lifecycle actions.
func (h *Handlers) EpisodeAction(w http.ResponseWriter, r *http.Request) {
	podcast, episode, ok := h.loadEpisode(w, r, "id")
	if !ok {
		return
	}
	action, ok := workflow.ParseAction(mux.Vars(r)["action"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	h.apply(w, r, episode, action, episodePath(podcast.ID, episode.ID))
}

// apply runs the action and reports the outcome. complete_editing is
// refused up front when there is nothing for the owner to review.
func (h *Handlers) apply(w http.ResponseWriter, r *http.Request, episode *models.Episode, action workflow.Action, redirect string) {
	if action == workflow.ActionCompleteEditing {
		if _, legal := workflow.Next(episode.Status, action); legal {
			ready, err := h.hasReviewableAudio(r.Context(), episode)
			if err != nil {
				fail(w, err)
				return
			}
			if !ready {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"alert": msgNothingToReview, "status": episode.Status})
				return
			}
		}
	}

	out, err := h.machine.Apply(r.Context(), episode, action)
	if err != nil {
		fail(w, err)
		return
	}
	if !out.OK() {
		writeJSON(w, http.StatusConflict, map[string]any{"alert": out.Message(), "status": episode.Status})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notice": out.Message(), "status": episode.Status, "redirect": redirect})
}

func (h *Handlers) hasReviewableAudio(ctx context.Context, episode *models.Episode) (bool, error) {
	n, err := h.store.CountAttachments(ctx, models.RecordEpisode, episode.ID, models.AttachDeliverables, models.AttachEditedAudio)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// actor is a shorthand used by the namespace handlers.
func actor(r *http.Request) *models.Actor {
	return middleware.ActorFrom(r.Context())
}
