// Package labels copies user-entered captions onto the metadata of a
// record's attached blobs.
package labels

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"podcast-studio/internal/metrics"
	"podcast-studio/internal/models"
)

// Store is the attachment access the reconciler needs.
type Store interface {
	ListAttachments(ctx context.Context, recordType string, recordID int64, name string) ([]models.Attachment, error)
	MergeBlobMetadata(ctx context.Context, blobID int64, key, value string) error
}

// Input holds the three label sources, highest precedence first. Map keys
// are the decimal IDs as they arrive from a form.
type Input struct {
	ByAttachmentID map[string]string
	ByBlobID       map[string]string
	// FilenameJSON is a JSON object of original filename to label, sent
	// when the client does not know the new attachment IDs yet.
	FilenameJSON string
}

func (in Input) Empty() bool {
	return len(in.ByAttachmentID) == 0 && len(in.ByBlobID) == 0 && strings.TrimSpace(in.FilenameJSON) == ""
}

// MetadataWriteFailed records a label that could not be stored.
type MetadataWriteFailed struct {
	AttachmentID int64
	BlobID       int64
	Err          error
}

func (f MetadataWriteFailed) Error() string {
	return fmt.Sprintf("label for attachment %d (blob %d): %v", f.AttachmentID, f.BlobID, f.Err)
}

func (f MetadataWriteFailed) Unwrap() error { return f.Err }

// Result describes what a reconciliation did. Nothing in it is fatal.
type Result struct {
	// Applied maps blob ID to the label written.
	Applied      map[int64]string
	SoftFailures []MetadataWriteFailed
	// FilenameErr is set when FilenameJSON could not be decoded; the
	// filename source is then treated as empty.
	FilenameErr error
	// ListErr is set when the attachments could not be read.
	ListErr error
}

// Reconciler merges labels into blob metadata. It never fails the caller's
// mutation; problems are logged and reported in the Result.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile applies in to every attachment of the named association. It
// must run after the mutation's attachments have been created.
func (r *Reconciler) Reconcile(ctx context.Context, recordType string, recordID int64, name string, in Input) Result {
	res := Result{Applied: map[int64]string{}}
	if in.Empty() {
		return res
	}

	byFilename, err := decodeFilenames(in.FilenameJSON)
	if err != nil {
		log.Printf("labels: ignoring filename labels for %s %d: %v", recordType, recordID, err)
		res.FilenameErr = err
	}

	attachments, err := r.store.ListAttachments(ctx, recordType, recordID, name)
	if err != nil {
		log.Printf("labels: %v", err)
		res.ListErr = err
		return res
	}

	byID := promote(attachments, in.ByAttachmentID, in.ByBlobID, byFilename)

	for _, a := range attachments {
		label, ok := resolve(a, byID, in.ByBlobID)
		if !ok {
			continue
		}
		if err := r.store.MergeBlobMetadata(ctx, a.BlobID, models.LabelKey, label); err != nil {
			failure := MetadataWriteFailed{AttachmentID: a.ID, BlobID: a.BlobID, Err: err}
			log.Printf("labels: %v", failure)
			res.SoftFailures = append(res.SoftFailures, failure)
			metrics.LabelWrites.WithLabelValues("failed").Inc()
			continue
		}
		res.Applied[a.BlobID] = label
		metrics.LabelWrites.WithLabelValues("applied").Inc()
	}
	return res
}

func decodeFilenames(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode filename labels: %w", err)
	}
	return out, nil
}

// promote copies filename entries into a fresh attachment-ID map. An entry
// is promoted only when neither the attachment nor its blob already has a
// non-blank explicit label.
func promote(attachments []models.Attachment, byID, byBlob, byFilename map[string]string) map[string]string {
	out := make(map[string]string, len(byID)+len(byFilename))
	for k, v := range byID {
		out[k] = v
	}
	if len(byFilename) == 0 {
		return out
	}
	for _, a := range attachments {
		label, ok := byFilename[a.Blob.Filename]
		if !ok {
			continue
		}
		id := strconv.FormatInt(a.ID, 10)
		if present(out, id) || present(byBlob, strconv.FormatInt(a.BlobID, 10)) {
			continue
		}
		out[id] = label
	}
	return out
}

func resolve(a models.Attachment, byID, byBlob map[string]string) (string, bool) {
	if v := strings.TrimSpace(byID[strconv.FormatInt(a.ID, 10)]); v != "" {
		return v, true
	}
	if v := strings.TrimSpace(byBlob[strconv.FormatInt(a.BlobID, 10)]); v != "" {
		return v, true
	}
	return "", false
}

func present(m map[string]string, key string) bool {
	return strings.TrimSpace(m[key]) != ""
}
