package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"podcast-studio/internal/authz"
	"podcast-studio/internal/blobstore"
	"podcast-studio/internal/db"
	"podcast-studio/internal/flash"
	"podcast-studio/internal/middleware"
	"podcast-studio/internal/models"
	"podcast-studio/internal/wizard"
	"podcast-studio/internal/workflow"
)

// Store is the persistence the handlers use.
type Store interface {
	CreatePodcast(ctx context.Context, userID int64) (*models.Podcast, error)
	GetPodcast(ctx context.Context, id int64) (*models.Podcast, error)
	SavePodcast(ctx context.Context, p *models.Podcast) error
	SwapPodcastStatus(ctx context.Context, id int64, from, to models.PodcastStatus) (bool, error)
	DeletePodcast(ctx context.Context, id int64) error

	CreateEpisode(ctx context.Context, podcastID int64) (*models.Episode, error)
	GetEpisode(ctx context.Context, podcastID, id int64) (*models.Episode, error)
	GetEpisodeByID(ctx context.Context, id int64) (*models.Episode, error)
	SaveEpisode(ctx context.Context, e *models.Episode) error
	DeleteEpisode(ctx context.Context, podcastID, id int64) error
	MaxEpisodeNumber(ctx context.Context, podcastID, excludeID int64) (int, error)
	ListEpisodesByStatus(ctx context.Context, statuses ...models.EpisodeStatus) ([]models.Episode, error)
	ListPodcastEpisodes(ctx context.Context, podcastID int64, statuses ...models.EpisodeStatus) ([]models.Episode, error)

	ListAttachments(ctx context.Context, recordType string, recordID int64, name string) ([]models.Attachment, error)
	GetAttachment(ctx context.Context, id int64) (*models.Attachment, error)
	CountAttachments(ctx context.Context, recordType string, recordID int64, names ...string) (int, error)
}

// Blobs uploads, attaches and purges stored files.
type Blobs interface {
	wizard.Attacher
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (*models.Blob, string, error)
	PurgeLater(ctx context.Context, attachment models.Attachment) error
}

// BlobFiles locates stored blob bytes for serving.
type BlobFiles interface {
	Path(key string) string
}

// Deps are the collaborators New wires together.
type Deps struct {
	Store   Store
	Blobs   Blobs
	Files   BlobFiles
	Labels  wizard.Labeler
	Flash   flash.Store
	Machine *workflow.Machine
	BaseURL string
}

type Handlers struct {
	store    Store
	blobs    Blobs
	files    BlobFiles
	labels   wizard.Labeler
	flash    flash.Store
	machine  *workflow.Machine
	podcasts *wizard.Engine[*models.Podcast]
	episodes *wizard.Engine[*models.Episode]
	baseURL  string
}

func New(d Deps) *Handlers {
	return &Handlers{
		store:    d.Store,
		blobs:    d.Blobs,
		files:    d.Files,
		labels:   d.Labels,
		flash:    d.Flash,
		machine:  d.Machine,
		podcasts: wizard.NewEngine[*models.Podcast](wizard.NewPodcastFlow(d.Store), d.Blobs, d.Labels, d.Flash),
		episodes: wizard.NewEngine[*models.Episode](wizard.NewEpisodeFlow(d.Store), d.Blobs, d.Labels, d.Flash),
		baseURL:  d.BaseURL,
	}
}

// Register mounts every route. Public routes go straight on r; the rest
// run behind the given middleware, which must establish the actor.
func (h *Handlers) Register(r *mux.Router, authenticated ...mux.MiddlewareFunc) {
	r.HandleFunc("/podcasts/{podcast_id:[0-9]+}/feed.xml", h.GetRSSFeed).Methods(http.MethodGet)
	r.HandleFunc("/blobs/{key}/{filename}", h.ServeBlob).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(authenticated...)

	api.HandleFunc("/uploads", h.PostUpload).Methods(http.MethodPost)

	api.HandleFunc("/podcasts/start_wizard", h.StartPodcastWizard).Methods(http.MethodPost)
	api.HandleFunc("/podcasts/{podcast_id:[0-9]+}/wizard/{step}", h.ShowPodcastStep).Methods(http.MethodGet)
	api.HandleFunc("/podcasts/{podcast_id:[0-9]+}/wizard/{step}", h.UpdatePodcastStep).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/podcasts/{podcast_id:[0-9]+}", h.DeletePodcast).Methods(http.MethodDelete)
	api.HandleFunc("/podcasts/{podcast_id:[0-9]+}/publish", h.PublishPodcast).Methods(http.MethodPatch)
	api.HandleFunc("/podcasts/{podcast_id:[0-9]+}/archive", h.ArchivePodcast).Methods(http.MethodPatch)

	ep := api.PathPrefix("/podcasts/{podcast_id:[0-9]+}/episodes").Subrouter()
	ep.HandleFunc("/start_wizard", h.StartEpisodeWizard).Methods(http.MethodPost)
	// Upload routes come before the step route so their names are not taken as steps.
	ep.HandleFunc("/{episode_id:[0-9]+}/wizard/upload_assets", h.UploadAssets).Methods(http.MethodPatch)
	ep.HandleFunc("/{episode_id:[0-9]+}/wizard/upload_raw_audio", h.UploadRawAudio).Methods(http.MethodPatch)
	ep.HandleFunc("/{episode_id:[0-9]+}/wizard/uploads/assets/{attachment_id:[0-9]+}", h.DestroyAsset).Methods(http.MethodDelete)
	ep.HandleFunc("/{episode_id:[0-9]+}/wizard/uploads/raw_audio", h.DestroyRawAudio).Methods(http.MethodDelete)
	ep.HandleFunc("/{episode_id:[0-9]+}/wizard/{step}", h.ShowEpisodeStep).Methods(http.MethodGet)
	ep.HandleFunc("/{episode_id:[0-9]+}/wizard/{step}", h.UpdateEpisodeStep).Methods(http.MethodPatch, http.MethodPut)
	ep.HandleFunc("/{id:[0-9]+}", h.GetEpisode).Methods(http.MethodGet)
	ep.HandleFunc("/{id:[0-9]+}", h.DeleteEpisode).Methods(http.MethodDelete)
	ep.HandleFunc("/{id:[0-9]+}/{action}", h.EpisodeAction).Methods(http.MethodPatch)

	producer := api.PathPrefix("/producer/episodes").Subrouter()
	producer.HandleFunc("", h.ProducerQueue).Methods(http.MethodGet)
	producer.HandleFunc("/{id:[0-9]+}", h.ProducerShow).Methods(http.MethodGet)
	producer.HandleFunc("/{id:[0-9]+}", h.ProducerUpdate).Methods(http.MethodPatch)
	producer.HandleFunc("/{id:[0-9]+}/upload_assets", h.ProducerUploadDeliverables).Methods(http.MethodPatch)
	producer.HandleFunc("/{id:[0-9]+}/{action:start_editing|complete_editing}", h.ProducerAction).Methods(http.MethodPatch)

	api.HandleFunc("/admin/episodes", h.AdminEpisodes).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// fail maps an error to a response without leaking its text.
func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, wizard.ErrUnknownStep):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	case errors.Is(err, blobstore.ErrInvalidReference):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Invalid upload reference"})
	default:
		log.Printf("Error handling request: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func alertKey(session string) string { return session + ":alert" }

// deny stores the decision's message for the next page and redirects.
func (h *Handlers) deny(w http.ResponseWriter, r *http.Request, d authz.Decision) {
	if err := h.flash.Put(r.Context(), alertKey(middleware.SessionFrom(r.Context())), []string{d.Message}); err != nil {
		log.Printf("Error storing alert: %v", err)
	}
	http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
}

func idVar(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, db.ErrNotFound
	}
	return id, nil
}

// loadPodcast fetches the podcast named by the podcast_id route variable
// and applies the podcast gate. It writes the response on failure.
func (h *Handlers) loadPodcast(w http.ResponseWriter, r *http.Request) (*models.Podcast, bool) {
	id, err := idVar(r, "podcast_id")
	if err != nil {
		fail(w, err)
		return nil, false
	}
	podcast, err := h.store.GetPodcast(r.Context(), id)
	if err != nil {
		fail(w, err)
		return nil, false
	}
	if d := authz.Podcast(middleware.ActorFrom(r.Context()), podcast); !d.Allowed {
		h.deny(w, r, d)
		return nil, false
	}
	return podcast, true
}

// loadEpisode fetches an episode scoped to its podcast and applies the
// episode gate.
func (h *Handlers) loadEpisode(w http.ResponseWriter, r *http.Request, idName string) (*models.Podcast, *models.Episode, bool) {
	podcastID, err := idVar(r, "podcast_id")
	if err != nil {
		fail(w, err)
		return nil, nil, false
	}
	id, err := idVar(r, idName)
	if err != nil {
		fail(w, err)
		return nil, nil, false
	}
	podcast, err := h.store.GetPodcast(r.Context(), podcastID)
	if err != nil {
		fail(w, err)
		return nil, nil, false
	}
	episode, err := h.store.GetEpisode(r.Context(), podcastID, id)
	if err != nil {
		fail(w, err)
		return nil, nil, false
	}
	if d := authz.Episode(middleware.ActorFrom(r.Context()), episode, podcast); !d.Allowed {
		h.deny(w, r, d)
		return nil, nil, false
	}
	return podcast, episode, true
}
