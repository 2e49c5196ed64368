package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"podcast-studio/internal/blobstore"
	"podcast-studio/internal/db"
	"podcast-studio/internal/flash"
	"podcast-studio/internal/labels"
	"podcast-studio/internal/middleware"
	"podcast-studio/internal/models"
	"podcast-studio/internal/workflow"
)

type memStore struct {
	podcasts    map[int64]*models.Podcast
	episodes    map[int64]*models.Episode
	attachments []models.Attachment
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{podcasts: map[int64]*models.Podcast{}, episodes: map[int64]*models.Episode{}, nextID: 100}
}

func (s *memStore) id() int64 { s.nextID++; return s.nextID }

func (s *memStore) CreatePodcast(_ context.Context, userID int64) (*models.Podcast, error) {
	p := &models.Podcast{ID: s.id(), UserID: userID, Status: models.PodcastDraft}
	s.podcasts[p.ID] = p
	return p, nil
}

func (s *memStore) GetPodcast(_ context.Context, id int64) (*models.Podcast, error) {
	p, ok := s.podcasts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) SavePodcast(_ context.Context, p *models.Podcast) error {
	cp := *p
	s.podcasts[p.ID] = &cp
	return nil
}

func (s *memStore) SwapPodcastStatus(_ context.Context, id int64, from, to models.PodcastStatus) (bool, error) {
	p := s.podcasts[id]
	if p == nil || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (s *memStore) DeletePodcast(_ context.Context, id int64) error {
	if _, ok := s.podcasts[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.podcasts, id)
	for eid, e := range s.episodes {
		if e.PodcastID == id {
			delete(s.episodes, eid)
		}
	}
	return nil
}

func (s *memStore) DeleteEpisode(_ context.Context, podcastID, id int64) error {
	e, ok := s.episodes[id]
	if !ok || e.PodcastID != podcastID {
		return db.ErrNotFound
	}
	delete(s.episodes, id)
	return nil
}

func (s *memStore) CreateEpisode(_ context.Context, podcastID int64) (*models.Episode, error) {
	e := &models.Episode{ID: s.id(), PodcastID: podcastID, Status: models.StatusDraft}
	s.episodes[e.ID] = e
	return e, nil
}

func (s *memStore) GetEpisode(_ context.Context, podcastID, id int64) (*models.Episode, error) {
	e, ok := s.episodes[id]
	if !ok || e.PodcastID != podcastID {
		return nil, db.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) GetEpisodeByID(_ context.Context, id int64) (*models.Episode, error) {
	e, ok := s.episodes[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) SaveEpisode(_ context.Context, e *models.Episode) error {
	cp := *e
	cp.Status = s.episodes[e.ID].Status
	s.episodes[e.ID] = &cp
	return nil
}

func (s *memStore) MaxEpisodeNumber(_ context.Context, podcastID, excludeID int64) (int, error) {
	highest := 0
	for _, e := range s.episodes {
		if e.PodcastID == podcastID && e.ID != excludeID && e.Number != nil && *e.Number > highest {
			highest = *e.Number
		}
	}
	return highest, nil
}

func (s *memStore) SwapEpisodeStatus(_ context.Context, id int64, from []models.EpisodeStatus, to models.EpisodeStatus) (bool, error) {
	e := s.episodes[id]
	if e == nil || !slices.Contains(from, e.Status) {
		return false, nil
	}
	e.Status = to
	return true, nil
}

func (s *memStore) ListEpisodesByStatus(_ context.Context, statuses ...models.EpisodeStatus) ([]models.Episode, error) {
	var out []models.Episode
	for _, e := range s.episodes {
		if slices.Contains(statuses, e.Status) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memStore) ListPodcastEpisodes(_ context.Context, podcastID int64, statuses ...models.EpisodeStatus) ([]models.Episode, error) {
	var out []models.Episode
	for _, e := range s.episodes {
		if e.PodcastID == podcastID && slices.Contains(statuses, e.Status) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memStore) ListAttachments(_ context.Context, recordType string, recordID int64, name string) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, a := range s.attachments {
		if a.RecordType == recordType && a.RecordID == recordID && a.Name == name {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memStore) GetAttachment(_ context.Context, id int64) (*models.Attachment, error) {
	for _, a := range s.attachments {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *memStore) CountAttachments(_ context.Context, recordType string, recordID int64, names ...string) (int, error) {
	n := 0
	for _, a := range s.attachments {
		if a.RecordType == recordType && a.RecordID == recordID && slices.Contains(names, a.Name) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) attach(recordType string, recordID int64, name, filename string) models.Attachment {
	a := models.Attachment{ID: s.id(), RecordType: recordType, RecordID: recordID, Name: name, BlobID: s.id(),
		Blob: models.Blob{Filename: filename}}
	a.Blob.ID = a.BlobID
	s.attachments = append(s.attachments, a)
	return a
}

type memBlobs struct {
	store  *memStore
	purged []int64
}

func (b *memBlobs) Upload(_ context.Context, filename, _ string, r io.Reader) (*models.Blob, string, error) {
	io.Copy(io.Discard, r)
	return &models.Blob{ID: 1, Filename: filename}, "signed-1", nil
}

func (b *memBlobs) AttachAll(_ context.Context, recordType string, recordID int64, name string, tokens []string) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, t := range tokens {
		if t == "bad" {
			return out, blobstore.ErrInvalidReference
		}
		out = append(out, b.store.attach(recordType, recordID, name, t+".wav"))
	}
	return out, nil
}

func (b *memBlobs) Replace(ctx context.Context, recordType string, recordID int64, name, token string) (*models.Attachment, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	if token == "bad" {
		return nil, blobstore.ErrInvalidReference
	}
	if err := b.PurgeAll(ctx, recordType, recordID, name); err != nil {
		return nil, err
	}
	a := b.store.attach(recordType, recordID, name, token+".wav")
	return &a, nil
}

func (b *memBlobs) PurgeAll(ctx context.Context, recordType string, recordID int64, name string) error {
	list, _ := b.store.ListAttachments(ctx, recordType, recordID, name)
	for _, a := range list {
		if err := b.PurgeLater(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (b *memBlobs) PurgeLater(_ context.Context, a models.Attachment) error {
	b.store.attachments = slices.DeleteFunc(b.store.attachments, func(x models.Attachment) bool { return x.ID == a.ID })
	b.purged = append(b.purged, a.BlobID)
	return nil
}

type nopLabels struct{ calls int }

func (l *nopLabels) Reconcile(context.Context, string, int64, string, labels.Input) labels.Result {
	l.calls++
	return labels.Result{}
}

type headerResolver struct{}

// Test requests carry "<id>:<role>" in the user header.
func (headerResolver) ResolveActor(r *http.Request) (*models.Actor, error) {
	raw := r.Header.Get(middleware.UserIDHeader)
	id, role, ok := strings.Cut(raw, ":")
	if !ok {
		return nil, middleware.ErrNoActor
	}
	n, _ := strconv.ParseInt(id, 10, 64)
	return &models.Actor{ID: n, Role: models.Role(role)}, nil
}

type fixture struct {
	store  *memStore
	blobs  *memBlobs
	flash  *flash.Memory
	router *mux.Router
	events int
}

const (
	owner    = "1:user"
	stranger = "2:user"
	producer = "3:producer"
	admin    = "4:admin"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: newMemStore(), flash: flash.NewMemory()}
	f.blobs = &memBlobs{store: f.store}
	counter := workflow.ObserverFunc(func(context.Context, workflow.Event) { f.events++ })
	h := New(Deps{
		Store:   f.store,
		Blobs:   f.blobs,
		Labels:  &nopLabels{},
		Flash:   f.flash,
		Machine: workflow.NewMachine(f.store, counter),
		BaseURL: "https://studio.example",
	})
	f.router = mux.NewRouter()
	h.Register(f.router, middleware.ActorMiddleware(headerResolver{}))

	f.store.podcasts[1] = &models.Podcast{ID: 1, UserID: 1, Name: "Show", Status: models.PodcastPublished}
	f.store.episodes[10] = &models.Episode{ID: 10, PodcastID: 1, Status: models.StatusDraft}
	return f
}

func (f *fixture) do(method, path, as string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if as != "" {
		req.Header.Set(middleware.UserIDHeader, as)
		req.Header.Set(middleware.SessionIDHeader, "sess-"+as)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestEpisodeActions(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPatch, "/podcasts/1/episodes/10/submit_episode", owner, url.Values{})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Episode submitted for editing successfully.", decode(t, rr)["notice"])
	assert.Equal(t, models.StatusEditRequested, f.store.episodes[10].Status)
	assert.Equal(t, 3, f.events)

	rr = f.do(http.MethodPatch, "/podcasts/1/episodes/10/publish_episode", owner, url.Values{})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Unable to publish episode.", decode(t, rr)["alert"])
	assert.Equal(t, models.StatusEditRequested, f.store.episodes[10].Status)

	rr = f.do(http.MethodPatch, "/podcasts/1/episodes/10/teleport", owner, url.Values{})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEpisodeActionDeniedForStranger(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPatch, "/podcasts/1/episodes/10/submit_episode", stranger, url.Values{})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/podcasts/1/episodes", rr.Header().Get("Location"))
	assert.Equal(t, models.StatusDraft, f.store.episodes[10].Status)

	alerts, _ := f.flash.Take(context.Background(), "sess-"+stranger+":alert")
	assert.Equal(t, []string{"Access denied."}, alerts)

	rr = f.do(http.MethodPatch, "/podcasts/1/episodes/10/archive_episode", admin, url.Values{})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.StatusArchived, f.store.episodes[10].Status)
}

func TestCompleteEditingNeedsAudio(t *testing.T) {
	f := newFixture(t)
	f.store.episodes[10].Status = models.StatusEditing

	rr := f.do(http.MethodPatch, "/producer/episodes/10/complete_editing", producer, url.Values{})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, msgNothingToReview, decode(t, rr)["alert"])
	assert.Equal(t, models.StatusEditing, f.store.episodes[10].Status)

	f.store.attach(models.RecordEpisode, 10, models.AttachEditedAudio, "final.mp3")

	rr = f.do(http.MethodPatch, "/producer/episodes/10/complete_editing", producer, url.Values{})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/producer/episodes", decode(t, rr)["redirect"])
	assert.Equal(t, models.StatusAwaitingUserReview, f.store.episodes[10].Status)
}

func TestProducerNamespace(t *testing.T) {
	f := newFixture(t)
	f.store.episodes[10].Status = models.StatusEditRequested

	// Owning the podcast does not open the producer namespace.
	rr := f.do(http.MethodPatch, "/producer/episodes/10/start_editing", owner, url.Values{})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, models.StatusEditRequested, f.store.episodes[10].Status)

	rr = f.do(http.MethodGet, "/producer/episodes", producer, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	queue := decode(t, rr)
	assert.Len(t, queue["edit_requested"], 1)
	assert.Len(t, queue["editing"], 0)

	rr = f.do(http.MethodPatch, "/producer/episodes/10/start_editing", producer, url.Values{})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.StatusEditing, f.store.episodes[10].Status)
}

func TestProducerUpdate(t *testing.T) {
	f := newFixture(t)
	f.store.episodes[10].Status = models.StatusEditing

	rr := f.do(http.MethodPatch, "/producer/episodes/10", producer, url.Values{
		"notes":          {" Levelled "},
		"edited_audio":   {"final"},
		"deliverables[]": {"master"},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Levelled", f.store.episodes[10].Notes)
	n, _ := f.store.CountAttachments(context.Background(), models.RecordEpisode, 10, models.AttachDeliverables, models.AttachEditedAudio)
	assert.Equal(t, 2, n)

	f.store.episodes[10].Status = models.StatusAwaitingUserReview
	rr = f.do(http.MethodPatch, "/producer/episodes/10", producer, url.Values{"notes": {"late"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestEpisodeWizardRoundTrip(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPatch, "/podcasts/1/episodes/10/wizard/overview", owner, url.Values{"name": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, []any{"Name can't be blank", "Description can't be blank"}, decode(t, rr)["errors"])

	rr = f.do(http.MethodGet, "/podcasts/1/episodes/10/wizard/overview", owner, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["errors"], 2)

	rr = f.do(http.MethodGet, "/podcasts/1/episodes/10/wizard/overview", owner, nil)
	assert.Nil(t, decode(t, rr)["errors"])

	rr = f.do(http.MethodPatch, "/podcasts/1/episodes/10/wizard/overview", owner, url.Values{
		"name": {"Pilot"}, "description": {"First"},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/podcasts/1/episodes/10/wizard/assets", decode(t, rr)["redirect"])
	assert.Equal(t, "Pilot", f.store.episodes[10].Name)

	rr = f.do(http.MethodGet, "/podcasts/1/episodes/10/wizard/cover", owner, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStartWizards(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/podcasts/start_wizard", owner, url.Values{})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, decode(t, rr)["redirect"], "/wizard/overview")

	rr = f.do(http.MethodPost, "/podcasts/1/episodes/start_wizard", stranger, url.Values{})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/podcasts", rr.Header().Get("Location"))
}

func TestImmediateUploads(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPatch, "/podcasts/1/episodes/10/wizard/upload_assets", owner, url.Values{})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = f.do(http.MethodPatch, "/podcasts/1/episodes/10/wizard/upload_assets", owner, url.Values{"files[]": {"a", "b"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(2), decode(t, rr)["count"])

	rr = f.do(http.MethodPatch, "/podcasts/1/episodes/10/wizard/upload_raw_audio", owner, url.Values{"file": {"raw"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "raw.wav", decode(t, rr)["filename"])

	other := f.store.attach(models.RecordEpisode, 99, models.AttachAssets, "x.wav")
	rr = f.do(http.MethodDelete, "/podcasts/1/episodes/10/wizard/uploads/assets/"+strconv.FormatInt(other.ID, 10), owner, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assets, _ := f.store.ListAttachments(context.Background(), models.RecordEpisode, 10, models.AttachAssets)
	rr = f.do(http.MethodDelete, "/podcasts/1/episodes/10/wizard/uploads/assets/"+strconv.FormatInt(assets[0].ID, 10), owner, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int64{assets[0].BlobID}, f.blobs.purged)

	rr = f.do(http.MethodDelete, "/podcasts/1/episodes/10/wizard/uploads/raw_audio", owner, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	n, _ := f.store.CountAttachments(context.Background(), models.RecordEpisode, 10, models.AttachRawAudio)
	assert.Equal(t, 0, n)
}

func TestPodcastLifecycleRoutes(t *testing.T) {
	f := newFixture(t)
	f.store.podcasts[1].Status = models.PodcastDraft

	rr := f.do(http.MethodPatch, "/podcasts/1/archive", owner, url.Values{})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = f.do(http.MethodPatch, "/podcasts/1/publish", owner, url.Values{})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.PodcastPublished, f.store.podcasts[1].Status)
}

func TestFeed(t *testing.T) {
	f := newFixture(t)
	f.store.podcasts[1].Description = "About"
	f.store.episodes[10].Status = models.StatusEpisodeComplete
	f.store.episodes[10].Name = "Pilot"
	f.store.episodes[10].Description = "First"
	f.store.attach(models.RecordEpisode, 10, models.AttachEditedAudio, "pilot.mp3")

	rr := f.do(http.MethodGet, "/podcasts/1/feed.xml", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/rss+xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Pilot")

	f.store.podcasts[1].Status = models.PodcastDraft
	rr = f.do(http.MethodGet, "/podcasts/1/feed.xml", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminEpisodes(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/admin/episodes", producer, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	rr = f.do(http.MethodGet, "/admin/episodes?status=draft", admin, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodGet, "/admin/episodes?status=bogus", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestUnauthenticated(t *testing.T) {
	f := newFixture(t)
	rr := f.do(http.MethodGet, "/producer/episodes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProducerNamespaceExcludesAdmins(t *testing.T) {
	f := newFixture(t)
	f.store.episodes[10].Status = models.StatusEditRequested

	for _, path := range []string{"/producer/episodes", "/producer/episodes/10"} {
		rr := f.do(http.MethodGet, path, admin, nil)
		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "/", rr.Header().Get("Location"), path)
	}
	alerts, _ := f.flash.Take(context.Background(), "sess-"+admin+":alert")
	assert.Contains(t, alerts, "Access denied. Producers only.")
}

func TestProducerUpdateBadReferenceKeepsNotes(t *testing.T) {
	f := newFixture(t)
	f.store.episodes[10].Status = models.StatusEditing
	f.store.episodes[10].Notes = "Original"

	rr := f.do(http.MethodPatch, "/producer/episodes/10", producer, url.Values{
		"notes":        {"Changed"},
		"edited_audio": {"bad"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "Original", f.store.episodes[10].Notes)
}

func TestDestroyAssetNeedsDelete(t *testing.T) {
	f := newFixture(t)
	asset := f.store.attach(models.RecordEpisode, 10, models.AttachAssets, "x.wav")

	rr := f.do(http.MethodGet, "/podcasts/1/episodes/10/wizard/uploads/assets/"+strconv.FormatInt(asset.ID, 10), owner, nil)
	assert.NotEqual(t, http.StatusOK, rr.Code)
	assert.Empty(t, f.blobs.purged)
	n, _ := f.store.CountAttachments(context.Background(), models.RecordEpisode, 10, models.AttachAssets)
	assert.Equal(t, 1, n)
}

func TestDeleteEpisode(t *testing.T) {
	f := newFixture(t)
	raw := f.store.attach(models.RecordEpisode, 10, models.AttachRawAudio, "raw.wav")
	asset := f.store.attach(models.RecordEpisode, 10, models.AttachAssets, "x.wav")
	cover := f.store.attach(models.RecordPodcast, 1, models.AttachCoverArt, "cover.png")

	rr := f.do(http.MethodDelete, "/podcasts/1/episodes/10", stranger, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, f.store.episodes, int64(10))

	rr = f.do(http.MethodDelete, "/podcasts/1/episodes/10", owner, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "Episode was successfully deleted.", body["notice"])
	assert.Equal(t, "/podcasts/1/episodes", body["redirect"])
	assert.NotContains(t, f.store.episodes, int64(10))
	assert.ElementsMatch(t, []int64{raw.BlobID, asset.BlobID}, f.blobs.purged)

	// The podcast's own files stay.
	_, err := f.store.GetAttachment(context.Background(), cover.ID)
	assert.NoError(t, err)
}

func TestDeletePodcast(t *testing.T) {
	f := newFixture(t)
	f.store.episodes[11] = &models.Episode{ID: 11, PodcastID: 1, Status: models.StatusArchived}
	cover := f.store.attach(models.RecordPodcast, 1, models.AttachCoverArt, "cover.png")
	media := f.store.attach(models.RecordPodcast, 1, models.AttachMedia, "trailer.mp4")
	edited := f.store.attach(models.RecordEpisode, 10, models.AttachEditedAudio, "final.mp3")
	deliverable := f.store.attach(models.RecordEpisode, 11, models.AttachDeliverables, "master.wav")

	rr := f.do(http.MethodDelete, "/podcasts/1", stranger, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/podcasts", rr.Header().Get("Location"))

	rr = f.do(http.MethodDelete, "/podcasts/1", owner, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Podcast deleted successfully", decode(t, rr)["notice"])
	assert.Empty(t, f.store.podcasts)
	assert.Empty(t, f.store.episodes)
	assert.Empty(t, f.store.attachments)
	assert.ElementsMatch(t, []int64{cover.BlobID, media.BlobID, edited.BlobID, deliverable.BlobID}, f.blobs.purged)
}
