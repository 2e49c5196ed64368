package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"podcast-studio/internal/authz"
	"podcast-studio/internal/labels"
	"podcast-studio/internal/models"
	"podcast-studio/internal/workflow"
)

const producerEpisodesPath = "/producer/episodes"

func producerEpisodePath(id int64) string {
	return fmt.Sprintf("%s/%d", producerEpisodesPath, id)
}

// ProducerQueue lists the episodes waiting on or in editing, grouped by status.
func (h *Handlers) ProducerQueue(w http.ResponseWriter, r *http.Request) {
	if d := authz.RequireProducer(actor(r)); !d.Allowed {
		h.deny(w, r, d)
		return
	}
	episodes, err := h.store.ListEpisodesByStatus(r.Context(), models.StatusEditRequested, models.StatusEditing)
	if err != nil {
		fail(w, err)
		return
	}
	grouped := map[models.EpisodeStatus][]models.Episode{
		models.StatusEditRequested: {},
		models.StatusEditing:       {},
	}
	for _, ep := range episodes {
		grouped[ep.Status] = append(grouped[ep.Status], ep)
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (h *Handlers) producerEpisode(w http.ResponseWriter, r *http.Request) (*models.Podcast, *models.Episode, bool) {
	id, err := idVar(r, "id")
	if err != nil {
		fail(w, err)
		return nil, nil, false
	}
	episode, err := h.store.GetEpisodeByID(r.Context(), id)
	if err != nil {
		fail(w, err)
		return nil, nil, false
	}
	podcast, err := h.store.GetPodcast(r.Context(), episode.PodcastID)
	if err != nil {
		fail(w, err)
		return nil, nil, false
	}
	return podcast, episode, true
}

func (h *Handlers) ProducerShow(w http.ResponseWriter, r *http.Request) {
	if d := authz.RequireProducer(actor(r)); !d.Allowed {
		h.deny(w, r, d)
		return
	}
	podcast, episode, ok := h.producerEpisode(w, r)
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
		"podcast": podcast,
		"files":   files,
		"actions": workflow.AvailableActions(episode.Status, workflow.Producer),
	})
}

// ProducerUpdate saves the producer's notes, edited audio and deliverables.
func (h *Handlers) ProducerUpdate(w http.ResponseWriter, r *http.Request) {
	if d := authz.RequireProducer(actor(r)); !d.Allowed {
		h.deny(w, r, d)
		return
	}
	podcast, episode, ok := h.producerEpisode(w, r)
	if !ok {
		return
	}
	if d := authz.EditEpisode(actor(r), episode, podcast); !d.Allowed {
		h.deny(w, r, d)
		return
	}
	if !workflow.CanBeEditedByProducer(episode.Status) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"alert": "Episode is not open for editing."})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	// Files are claimed before the notes are written.
	ctx := r.Context()
	if _, err := h.blobs.Replace(ctx, models.RecordEpisode, episode.ID, models.AttachEditedAudio, r.PostForm.Get("edited_audio")); err != nil {
		fail(w, err)
		return
	}
	if _, err := h.blobs.AttachAll(ctx, models.RecordEpisode, episode.ID, models.AttachDeliverables, refs(r, "deliverables")); err != nil {
		fail(w, err)
		return
	}
	if in := labels.FromForm(r.PostForm, "deliverable_labels"); !in.Empty() {
		h.labels.Reconcile(ctx, models.RecordEpisode, episode.ID, models.AttachDeliverables, in)
	}
	if r.PostForm.Has("notes") {
		episode.Notes = strings.TrimSpace(r.PostForm.Get("notes"))
		if err := h.store.SaveEpisode(ctx, episode); err != nil {
			fail(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notice":   "Episode updated successfully.",
		"episode":  episode,
		"redirect": producerEpisodePath(episode.ID),
	})
}

func (h *Handlers) ProducerUploadDeliverables(w http.ResponseWriter, r *http.Request) {
	if d := authz.RequireProducer(actor(r)); !d.Allowed {
		h.deny(w, r, d)
		return
	}
	_, episode, ok := h.producerEpisode(w, r)
	if !ok {
		return
	}
	if !workflow.CanBeEditedByProducer(episode.Status) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"alert": "Episode is not open for editing."})
		return
	}
	h.attachFiles(w, r, episode, models.AttachDeliverables, "deliverable_labels")
}

func (h *Handlers) ProducerAction(w http.ResponseWriter, r *http.Request) {
	if d := authz.RequireProducer(actor(r)); !d.Allowed {
		h.deny(w, r, d)
		return
	}
	_, episode, ok := h.producerEpisode(w, r)
	if !ok {
		return
	}
	action, _ := workflow.ParseAction(mux.Vars(r)["action"])
	redirect := producerEpisodePath(episode.ID)
	if action == workflow.ActionCompleteEditing {
		redirect = producerEpisodesPath
	}
	h.apply(w, r, episode, action, redirect)
}

// AdminEpisodes lists episodes across all podcasts, optionally filtered
// by repeated status parameters.
func (h *Handlers) AdminEpisodes(w http.ResponseWriter, r *http.Request) {
	if d := authz.RequireAdmin(actor(r)); !d.Allowed {
		h.deny(w, r, d)
		return
	}
	statuses := models.EpisodeStatuses
	if raw := r.URL.Query()["status"]; len(raw) > 0 {
		statuses = nil
		for _, s := range raw {
			status := models.EpisodeStatus(s)
			if !status.Valid() {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Unknown status " + s})
				return
			}
			statuses = append(statuses, status)
		}
	}
	episodes, err := h.store.ListEpisodesByStatus(r.Context(), statuses...)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, episodes)
}
