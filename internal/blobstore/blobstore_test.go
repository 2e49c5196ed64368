package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-studio/internal/models"
	"podcast-studio/internal/test"
	"podcast-studio/pkg/tasks"
)

type fakeStore struct {
	blobs       map[int64]*models.Blob
	attachments []models.Attachment
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: map[int64]*models.Blob{}, nextID: 1}
}

func (s *fakeStore) CreateBlob(_ context.Context, b *models.Blob) error {
	b.ID = s.nextID
	s.nextID++
	s.blobs[b.ID] = b
	return nil
}

func (s *fakeStore) GetBlob(_ context.Context, id int64) (*models.Blob, error) {
	b, ok := s.blobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func (s *fakeStore) CreateAttachment(_ context.Context, recordType string, recordID int64, name string, blobID int64) (int64, error) {
	id := s.nextID
	s.nextID++
	s.attachments = append(s.attachments, models.Attachment{ID: id, RecordType: recordType, RecordID: recordID, Name: name, BlobID: blobID})
	return id, nil
}

func (s *fakeStore) ListAttachments(_ context.Context, recordType string, recordID int64, name string) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, a := range s.attachments {
		if a.RecordType == recordType && a.RecordID == recordID && a.Name == name {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteAttachment(_ context.Context, id int64) error {
	for i, a := range s.attachments {
		if a.ID == id {
			s.attachments = append(s.attachments[:i], s.attachments[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

type memObjects struct{ data map[string]string }

func (m *memObjects) Put(_ context.Context, key string, r io.Reader) (int64, string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, "", err
	}
	m.data[key] = string(b)
	return int64(len(b)), "sum", nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newService(t *testing.T) (*Service, *fakeStore, *test.MockTaskEnqueuer) {
	t.Helper()
	store := newFakeStore()
	queue := &test.MockTaskEnqueuer{}
	svc := NewService(store, &memObjects{data: map[string]string{}}, NewSigner("secret", time.Hour), queue)
	return svc, store, queue
}

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	token, err := s.Sign(42)
	require.NoError(t, err)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = NewSigner("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidReference)
	_, err = s.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestSignerExpiry(t *testing.T) {
	s := NewSigner("secret", time.Minute)
	token, err := s.Sign(1)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestUploadThenAttach(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	blob, token, err := svc.Upload(ctx, "a.wav", "audio/wav", strings.NewReader("RIFF"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), blob.ByteSize)
	assert.Len(t, blob.Key, 32)

	a, err := svc.Attach(ctx, models.RecordEpisode, 9, models.AttachAssets, token)
	require.NoError(t, err)
	assert.Equal(t, blob.ID, a.BlobID)
	assert.Equal(t, "a.wav", a.Blob.Filename)
	assert.Len(t, store.attachments, 1)
}

func TestAttachAllSkipsBlanks(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	_, token, err := svc.Upload(ctx, "a.wav", "audio/wav", strings.NewReader("x"))
	require.NoError(t, err)

	out, err := svc.AttachAll(ctx, models.RecordEpisode, 9, models.AttachAssets, []string{"", token, "  "})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Len(t, store.attachments, 1)
}

func TestReplacePurgesPrevious(t *testing.T) {
	svc, store, queue := newService(t)
	ctx := context.Background()
	_, first, _ := svc.Upload(ctx, "old.png", "image/png", strings.NewReader("1"))
	_, second, _ := svc.Upload(ctx, "new.png", "image/png", strings.NewReader("2"))

	old, err := svc.Replace(ctx, models.RecordPodcast, 1, models.AttachCoverArt, first)
	require.NoError(t, err)
	_, err = svc.Replace(ctx, models.RecordPodcast, 1, models.AttachCoverArt, second)
	require.NoError(t, err)

	current, _ := store.ListAttachments(ctx, models.RecordPodcast, 1, models.AttachCoverArt)
	require.Len(t, current, 1)
	assert.NotEqual(t, old.ID, current[0].ID)

	require.Len(t, queue.EnqueuedTasks, 1)
	assert.Equal(t, tasks.TypePurgeBlob, queue.EnqueuedTasks[0].Type())
	var p tasks.PurgeBlobTaskPayload
	require.NoError(t, json.Unmarshal(queue.EnqueuedTasks[0].Payload(), &p))
	assert.Equal(t, old.BlobID, p.BlobID)
}

func TestReplaceWithMissingBlobKeepsCurrent(t *testing.T) {
	svc, store, queue := newService(t)
	ctx := context.Background()
	_, first, _ := svc.Upload(ctx, "old.png", "image/png", strings.NewReader("1"))
	gone, second, _ := svc.Upload(ctx, "new.png", "image/png", strings.NewReader("2"))

	old, err := svc.Replace(ctx, models.RecordPodcast, 1, models.AttachCoverArt, first)
	require.NoError(t, err)

	// The second blob was swept before the form came back.
	delete(store.blobs, gone.ID)

	_, err = svc.Replace(ctx, models.RecordPodcast, 1, models.AttachCoverArt, second)
	require.Error(t, err)

	current, _ := store.ListAttachments(ctx, models.RecordPodcast, 1, models.AttachCoverArt)
	require.Len(t, current, 1)
	assert.Equal(t, old.ID, current[0].ID)
	assert.Empty(t, queue.EnqueuedTasks)
}

func TestReplaceWithBlankKeepsCurrent(t *testing.T) {
	svc, store, queue := newService(t)
	ctx := context.Background()
	_, token, _ := svc.Upload(ctx, "a.png", "image/png", strings.NewReader("1"))
	_, err := svc.Replace(ctx, models.RecordPodcast, 1, models.AttachCoverArt, token)
	require.NoError(t, err)

	a, err := svc.Replace(ctx, models.RecordPodcast, 1, models.AttachCoverArt, "")
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.Len(t, store.attachments, 1)
	assert.Empty(t, queue.EnqueuedTasks)
}

func TestPurgeLaterToleratesQueueFailure(t *testing.T) {
	svc, store, queue := newService(t)
	ctx := context.Background()
	_, token, _ := svc.Upload(ctx, "a.wav", "audio/wav", strings.NewReader("1"))
	a, err := svc.Attach(ctx, models.RecordEpisode, 1, models.AttachRawAudio, token)
	require.NoError(t, err)

	queue.Err = errors.New("redis down")
	require.NoError(t, svc.PurgeLater(ctx, *a))
	assert.Empty(t, store.attachments)
}

func TestLocalObjects(t *testing.T) {
	objects := NewLocalObjects(t.TempDir())
	ctx := context.Background()

	size, sum, err := objects.Put(ctx, "abcdef0123", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
	assert.Equal(t, "XUFAKrxLKna5cZ2REBfFkg==", sum)

	_, err = os.Stat(objects.Path("abcdef0123"))
	require.NoError(t, err)

	require.NoError(t, objects.Delete(ctx, "abcdef0123"))
	require.NoError(t, objects.Delete(ctx, "abcdef0123"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalObjectsFailedWriteLeavesNothing(t *testing.T) {
	objects := NewLocalObjects(t.TempDir())

	_, _, err := objects.Put(context.Background(), "abcdef0123", failingReader{})
	require.Error(t, err)

	_, err = os.Stat(objects.Path("abcdef0123"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
