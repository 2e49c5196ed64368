package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"podcast-studio/internal/models"
)

const attachmentSelect = `
	SELECT a.id, a.record_type, a.record_id, a.name, a.blob_id, a.created_at,
		b.id AS "blob.id", b.key AS "blob.key", b.filename AS "blob.filename",
		b.content_type AS "blob.content_type", b.byte_size AS "blob.byte_size",
		b.checksum AS "blob.checksum", b.metadata AS "blob.metadata", b.created_at AS "blob.created_at"
	FROM attachments a
	JOIN blobs b ON b.id = a.blob_id`

// ListAttachments returns the attachments of one association in creation order.
func (s *Store) ListAttachments(ctx context.Context, recordType string, recordID int64, name string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.db.SelectContext(ctx, &attachments,
		attachmentSelect+` WHERE a.record_type = $1 AND a.record_id = $2 AND a.name = $3 ORDER BY a.id`,
		recordType, recordID, name)
	if err != nil {
		return nil, fmt.Errorf("list %s attachments of %s %d: %w", name, recordType, recordID, err)
	}
	return attachments, nil
}

func (s *Store) GetAttachment(ctx context.Context, id int64) (*models.Attachment, error) {
	attachment := &models.Attachment{}
	err := s.db.GetContext(ctx, attachment, attachmentSelect+` WHERE a.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get attachment %d: %w", id, notFound(err))
	}
	return attachment, nil
}

// CountAttachments counts a record's attachments across the given associations.
func (s *Store) CountAttachments(ctx context.Context, recordType string, recordID int64, names ...string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM attachments WHERE record_type = $1 AND record_id = $2 AND name = ANY($3)`,
		recordType, recordID, pq.Array(names))
	if err != nil {
		return 0, fmt.Errorf("count attachments of %s %d: %w", recordType, recordID, err)
	}
	return count, nil
}

func (s *Store) CreateAttachment(ctx context.Context, recordType string, recordID int64, name string, blobID int64) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO attachments (record_type, record_id, name, blob_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, recordType, recordID, name, blobID)
	if err != nil {
		return 0, fmt.Errorf("attach blob %d to %s %d: %w", blobID, recordType, recordID, err)
	}
	return id, nil
}

func (s *Store) DeleteAttachment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attachment %d: %w", id, err)
	}
	return requireRow(res, "delete attachment", id)
}

// CreateBlob records an uploaded object. The row stays unattached until a
// mutation claims it.
func (s *Store) CreateBlob(ctx context.Context, blob *models.Blob) error {
	err := s.db.GetContext(ctx, blob, `
		INSERT INTO blobs (key, filename, content_type, byte_size, checksum, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, key, filename, content_type, byte_size, checksum, metadata, created_at`,
		blob.Key, blob.Filename, blob.ContentType, blob.ByteSize, blob.Checksum, blob.Metadata)
	if err != nil {
		return fmt.Errorf("create blob %s: %w", blob.Filename, err)
	}
	return nil
}

func (s *Store) GetBlob(ctx context.Context, id int64) (*models.Blob, error) {
	blob := &models.Blob{}
	err := s.db.GetContext(ctx, blob, `
		SELECT id, key, filename, content_type, byte_size, checksum, metadata, created_at
		FROM blobs
		WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get blob %d: %w", id, notFound(err))
	}
	return blob, nil
}

// MergeBlobMetadata sets one metadata key in a single statement, keeping
// every other key. Writing the same value twice leaves the map unchanged.
func (s *Store) MergeBlobMetadata(ctx context.Context, blobID int64, key, value string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE blobs
		SET metadata = COALESCE(metadata, '{}'::jsonb) || jsonb_build_object($2::text, $3::text)
		WHERE id = $1`, blobID, key, value)
	if err != nil {
		return fmt.Errorf("merge metadata of blob %d: %w", blobID, err)
	}
	return requireRow(res, "merge blob metadata", blobID)
}

// DeleteBlobIfUnattached removes the blob row when no attachment points at
// it and returns its storage key.
func (s *Store) DeleteBlobIfUnattached(ctx context.Context, blobID int64) (string, bool, error) {
	var key string
	err := s.db.GetContext(ctx, &key, `
		DELETE FROM blobs
		WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM attachments WHERE blob_id = $1)
		RETURNING key`, blobID)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("delete blob %d: %w", blobID, err)
	}
	return key, true, nil
}

// ListUnattachedBlobIDs finds blobs created before the cutoff that nothing references.
func (s *Store) ListUnattachedBlobIDs(ctx context.Context, before time.Time) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, `
		SELECT b.id
		FROM blobs b
		WHERE b.created_at < $1
			AND NOT EXISTS (SELECT 1 FROM attachments a WHERE a.blob_id = b.id)
		ORDER BY b.id`, before)
	if err != nil {
		return nil, fmt.Errorf("list unattached blobs: %w", err)
	}
	return ids, nil
}
