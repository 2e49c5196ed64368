package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"podcast-studio/internal/authz"
	"podcast-studio/internal/middleware"
	"podcast-studio/internal/models"
	"podcast-studio/internal/wizard"
)

func podcastStepPath(podcastID int64, step wizard.Step) string {
	return fmt.Sprintf("/podcasts/%d/wizard/%s", podcastID, step)
}

func episodeStepPath(podcastID, episodeID int64, step wizard.Step) string {
	return fmt.Sprintf("/podcasts/%d/episodes/%d/wizard/%s", podcastID, episodeID, step)
}

func episodePath(podcastID, episodeID int64) string {
	return fmt.Sprintf("/podcasts/%d/episodes/%d", podcastID, episodeID)
}

func (h *Handlers) StartPodcastWizard(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())
	podcast, err := h.store.CreatePodcast(r.Context(), actor.ID)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"podcast":  podcast,
		"redirect": podcastStepPath(podcast.ID, wizard.StepOverview),
	})
}

func (h *Handlers) StartEpisodeWizard(w http.ResponseWriter, r *http.Request) {
	podcast, ok := h.loadPodcast(w, r)
	if !ok {
		return
	}
	episode, err := h.store.CreateEpisode(r.Context(), podcast.ID)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"episode":  episode,
		"redirect": episodeStepPath(podcast.ID, episode.ID, wizard.StepOverview),
	})
}

func (h *Handlers) ShowPodcastStep(w http.ResponseWriter, r *http.Request) {
	podcast, ok := h.loadPodcast(w, r)
	if !ok {
		return
	}
	view, err := h.podcasts.Show(r.Context(), middleware.SessionFrom(r.Context()), podcast, wizard.Step(mux.Vars(r)["step"]))
	if err != nil {
		fail(w, err)
		return
	}
	cover, err := h.single(r, models.RecordPodcast, podcast.ID, models.AttachCoverArt)
	if err != nil {
		fail(w, err)
		return
	}
	media, err := h.store.ListAttachments(r.Context(), models.RecordPodcast, podcast.ID, models.AttachMedia)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"step":      view.Step,
		"steps":     view.Steps,
		"errors":    view.Errors,
		"podcast":   view.Entity,
		"cover_art": cover,
		"media":     media,
	})
}

func (h *Handlers) UpdatePodcastStep(w http.ResponseWriter, r *http.Request) {
	podcast, ok := h.loadPodcast(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	step := wizard.Step(mux.Vars(r)["step"])
	out, err := h.podcasts.Update(r.Context(), middleware.SessionFrom(r.Context()), podcast, step, r.PostForm)
	if err != nil {
		fail(w, err)
		return
	}

	switch {
	case !out.Valid():
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"step": out.Step, "errors": out.Errors, "podcast": podcast})
	case out.Finished:
		writeJSON(w, http.StatusOK, map[string]any{"notice": out.Notice, "redirect": authz.PodcastsPath, "podcast": podcast})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"next": out.Next, "redirect": podcastStepPath(podcast.ID, out.Next)})
	}
}

func (h *Handlers) ShowEpisodeStep(w http.ResponseWriter, r *http.Request) {
	podcast, episode, ok := h.loadEpisode(w, r, "episode_id")
	if !ok {
		return
	}
	view, err := h.episodes.Show(r.Context(), middleware.SessionFrom(r.Context()), episode, wizard.Step(mux.Vars(r)["step"]))
	if err != nil {
		fail(w, err)
		return
	}
	files, err := h.episodeFiles(r, podcast, episode)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"step":    view.Step,
		"steps":   view.Steps,
		"errors":  view.Errors,
		"episode": view.Entity,
		"files":   files,
		"options": map[string][]string{
			"format":         models.FormatOptions,
			"output_formats": models.OutputFormatOptions,
		},
	})
}

func (h *Handlers) UpdateEpisodeStep(w http.ResponseWriter, r *http.Request) {
	podcast, episode, ok := h.loadEpisode(w, r, "episode_id")
	if !ok {
		return
	}
	if d := authz.EditEpisode(middleware.ActorFrom(r.Context()), episode, podcast); !d.Allowed {
		h.deny(w, r, d)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	step := wizard.Step(mux.Vars(r)["step"])
	out, err := h.episodes.Update(r.Context(), middleware.SessionFrom(r.Context()), episode, step, r.PostForm)
	if err != nil {
		fail(w, err)
		return
	}

	switch {
	case !out.Valid():
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"step": out.Step, "errors": out.Errors, "episode": episode})
	case out.Finished:
		writeJSON(w, http.StatusOK, map[string]any{"notice": out.Notice, "redirect": episodePath(podcast.ID, episode.ID), "episode": episode})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"next": out.Next, "redirect": episodeStepPath(podcast.ID, episode.ID, out.Next)})
	}
}

// episodeFiles lists an episode's attachments with cover art falling back
// to the podcast's.
func (h *Handlers) episodeFiles(r *http.Request, podcast *models.Podcast, episode *models.Episode) (map[string]any, error) {
	ctx := r.Context()
	files := map[string]any{}
	for _, name := range []string{models.AttachAssets, models.AttachDeliverables} {
		list, err := h.store.ListAttachments(ctx, models.RecordEpisode, episode.ID, name)
		if err != nil {
			return nil, err
		}
		files[name] = list
	}
	for _, name := range []string{models.AttachRawAudio, models.AttachEditedAudio} {
		a, err := h.single(r, models.RecordEpisode, episode.ID, name)
		if err != nil {
			return nil, err
		}
		files[name] = a
	}
	own, err := h.single(r, models.RecordEpisode, episode.ID, models.AttachCoverArt)
	if err != nil {
		return nil, err
	}
	inherited, err := h.single(r, models.RecordPodcast, podcast.ID, models.AttachCoverArt)
	if err != nil {
		return nil, err
	}
	files[models.AttachCoverArt] = models.EffectiveCoverArt(own, inherited)
	return files, nil
}

// single returns the newest attachment of a single-valued association, or nil.
func (h *Handlers) single(r *http.Request, recordType string, id int64, name string) (*models.Attachment, error) {
	list, err := h.store.ListAttachments(r.Context(), recordType, id, name)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[len(list)-1], nil
}
