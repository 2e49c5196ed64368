package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"podcast-studio/internal/authz"
	"podcast-studio/internal/db"
	"podcast-studio/internal/labels"
	"podcast-studio/internal/models"
)

const maxUploadMemory = 32 << 20

// refs collects non-blank signed references from the request form,
// accepting key, key[] and the singular "file"/"files" fields.
func refs(r *http.Request, keys ...string) []string {
	var out []string
	for _, key := range keys {
		for _, v := range append(r.Form[key], r.Form[key+"[]"]...) {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// PostUpload stores a file and returns the signed reference a later form
// submission uses to claim it.
func (h *Handlers) PostUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "No file provided"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	blob, signed, err := h.blobs.Upload(r.Context(), header.Filename, contentType, file)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"blob_id":   blob.ID,
		"signed_id": signed,
		"filename":  blob.Filename,
	})
}

func (h *Handlers) editableEpisode(w http.ResponseWriter, r *http.Request) (*models.Episode, bool) {
	podcast, episode, ok := h.loadEpisode(w, r, "episode_id")
	if !ok {
		return nil, false
	}
	if d := authz.EditEpisode(actor(r), episode, podcast); !d.Allowed {
		h.deny(w, r, d)
		return nil, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return nil, false
	}
	return episode, true
}

// UploadAssets attaches assets immediately, outside the step submission.
func (h *Handlers) UploadAssets(w http.ResponseWriter, r *http.Request) {
	episode, ok := h.editableEpisode(w, r)
	if !ok {
		return
	}
	h.attachFiles(w, r, episode, models.AttachAssets, "asset_labels")
}

func (h *Handlers) attachFiles(w http.ResponseWriter, r *http.Request, episode *models.Episode, name, labelPrefix string) {
	incoming := refs(r, "files", "file")
	if len(incoming) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "No files provided"})
		return
	}
	ctx := r.Context()
	if _, err := h.blobs.AttachAll(ctx, models.RecordEpisode, episode.ID, name, incoming); err != nil {
		fail(w, err)
		return
	}
	if in := labels.FromForm(r.Form, labelPrefix); !in.Empty() {
		h.labels.Reconcile(ctx, models.RecordEpisode, episode.ID, name, in)
	}
	count, err := h.store.CountAttachments(ctx, models.RecordEpisode, episode.ID, name)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": count})
}

// UploadRawAudio replaces the raw audio with the first submitted reference.
func (h *Handlers) UploadRawAudio(w http.ResponseWriter, r *http.Request) {
	episode, ok := h.editableEpisode(w, r)
	if !ok {
		return
	}
	incoming := refs(r, "file", "files")
	if len(incoming) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "No file provided"})
		return
	}
	a, err := h.blobs.Replace(r.Context(), models.RecordEpisode, episode.ID, models.AttachRawAudio, incoming[0])
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "filename": a.Blob.Filename})
}

// DestroyAsset detaches one asset. Attachments that are not assets of this
// episode are reported as missing.
func (h *Handlers) DestroyAsset(w http.ResponseWriter, r *http.Request) {
	episode, ok := h.editableEpisode(w, r)
	if !ok {
		return
	}
	id, err := idVar(r, "attachment_id")
	if err != nil {
		fail(w, err)
		return
	}
	attachment, err := h.store.GetAttachment(r.Context(), id)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		fail(w, err)
		return
	}
	if attachment == nil || attachment.RecordType != models.RecordEpisode ||
		attachment.RecordID != episode.ID || attachment.Name != models.AttachAssets {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	if err := h.blobs.PurgeLater(r.Context(), *attachment); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) DestroyRawAudio(w http.ResponseWriter, r *http.Request) {
	episode, ok := h.editableEpisode(w, r)
	if !ok {
		return
	}
	if err := h.blobs.PurgeAll(r.Context(), models.RecordEpisode, episode.ID, models.AttachRawAudio); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) ServeBlob(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if strings.ContainsAny(key, `/\.`) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, h.files.Path(key))
}
