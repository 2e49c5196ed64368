// Package blobstore handles uploaded objects and their attachment to
// podcasts and episodes. Physical deletion runs in the worker.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"podcast-studio/internal/models"
	"podcast-studio/pkg/tasks"
)

// Store is the persistence the service needs.
type Store interface {
	CreateBlob(ctx context.Context, blob *models.Blob) error
	GetBlob(ctx context.Context, id int64) (*models.Blob, error)
	CreateAttachment(ctx context.Context, recordType string, recordID int64, name string, blobID int64) (int64, error)
	ListAttachments(ctx context.Context, recordType string, recordID int64, name string) ([]models.Attachment, error)
	DeleteAttachment(ctx context.Context, id int64) error
}

type Service struct {
	store   Store
	objects Objects
	signer  *Signer
	queue   tasks.TaskEnqueuer
}

func NewService(store Store, objects Objects, signer *Signer, queue tasks.TaskEnqueuer) *Service {
	return &Service{store: store, objects: objects, signer: signer, queue: queue}
}

// Upload stores the bytes as a new unattached blob and returns it with a
// signed reference the client submits later.
func (s *Service) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*models.Blob, string, error) {
	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	size, checksum, err := s.objects.Put(ctx, key, r)
	if err != nil {
		return nil, "", err
	}
	blob := &models.Blob{
		Key:         key,
		Filename:    filename,
		ContentType: contentType,
		ByteSize:    size,
		Checksum:    checksum,
		Metadata:    models.Metadata{},
	}
	if err := s.store.CreateBlob(ctx, blob); err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			log.Printf("blobstore: orphaned object %s: %v", key, delErr)
		}
		return nil, "", err
	}
	token, err := s.signer.Sign(blob.ID)
	if err != nil {
		return nil, "", err
	}
	return blob, token, nil
}

// Attach links the blob a signed reference names to the record.
func (s *Service) Attach(ctx context.Context, recordType string, recordID int64, name, token string) (*models.Attachment, error) {
	blobID, err := s.signer.Verify(token)
	if err != nil {
		return nil, err
	}
	blob, err := s.store.GetBlob(ctx, blobID)
	if err != nil {
		return nil, err
	}
	id, err := s.store.CreateAttachment(ctx, recordType, recordID, name, blob.ID)
	if err != nil {
		return nil, err
	}
	return &models.Attachment{ID: id, RecordType: recordType, RecordID: recordID, Name: name, BlobID: blob.ID, Blob: *blob}, nil
}

// AttachAll attaches each non-blank reference. It stops at the first failure.
func (s *Service) AttachAll(ctx context.Context, recordType string, recordID int64, name string, tokens []string) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, token := range tokens {
		if strings.TrimSpace(token) == "" {
			continue
		}
		a, err := s.Attach(ctx, recordType, recordID, name, token)
		if err != nil {
			return out, fmt.Errorf("attach %s: %w", name, err)
		}
		out = append(out, *a)
	}
	return out, nil
}

// Replace swaps a single-valued association to the referenced blob. A
// blank reference leaves the current attachment alone, and so does a
// reference that cannot be attached: the previous attachments are only
// purged once the new one exists.
func (s *Service) Replace(ctx context.Context, recordType string, recordID int64, name, token string) (*models.Attachment, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	previous, err := s.store.ListAttachments(ctx, recordType, recordID, name)
	if err != nil {
		return nil, err
	}
	current, err := s.Attach(ctx, recordType, recordID, name, token)
	if err != nil {
		return nil, err
	}
	for _, a := range previous {
		if err := s.PurgeLater(ctx, a); err != nil {
			return current, err
		}
	}
	return current, nil
}

// PurgeLater detaches the attachment now and schedules its blob for
// deletion once nothing else refers to it.
func (s *Service) PurgeLater(ctx context.Context, attachment models.Attachment) error {
	if err := s.store.DeleteAttachment(ctx, attachment.ID); err != nil {
		return err
	}
	task, err := tasks.NewPurgeBlobTask(attachment.BlobID)
	if err != nil {
		return fmt.Errorf("create purge task: %w", err)
	}
	if _, err := s.queue.Enqueue(task); err != nil {
		// The hourly sweep picks the blob up.
		log.Printf("blobstore: enqueue purge of blob %d: %v", attachment.BlobID, err)
	}
	return nil
}

// PurgeAll detaches every attachment of the association.
func (s *Service) PurgeAll(ctx context.Context, recordType string, recordID int64, name string) error {
	attachments, err := s.store.ListAttachments(ctx, recordType, recordID, name)
	if err != nil {
		return err
	}
	for _, a := range attachments {
		if err := s.PurgeLater(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
