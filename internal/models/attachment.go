package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Record types an attachment may belong to.
const (
	RecordPodcast = "Podcast"
	RecordEpisode = "Episode"
)

// Attachment association names.
const (
	AttachCoverArt     = "cover_art"
	AttachMedia        = "media"
	AttachRawAudio     = "raw_audio"
	AttachEditedAudio  = "edited_audio"
	AttachAssets       = "assets"
	AttachDeliverables = "deliverables"
)

// PodcastAttachments and EpisodeAttachments list every association a
// record of that type may own.
var (
	PodcastAttachments = []string{AttachCoverArt, AttachMedia}
	EpisodeAttachments = []string{AttachCoverArt, AttachRawAudio, AttachEditedAudio, AttachAssets, AttachDeliverables}
)

// LabelKey is the blob metadata key holding the user-assigned caption.
const LabelKey = "label"

// Metadata is the mutable JSONB map stored on a blob.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("metadata: unsupported type %T", src)
	}
	out := Metadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	*m = out
	return nil
}

// Label returns the caption stored in the metadata, if any.
func (m Metadata) Label() string {
	s, _ := m[LabelKey].(string)
	return s
}

// Blob is a stored binary object. Several attachments may share one blob.
type Blob struct {
	ID          int64     `db:"id" json:"id"`
	Key         string    `db:"key" json:"key"`
	Filename    string    `db:"filename" json:"filename"`
	ContentType string    `db:"content_type" json:"content_type"`
	ByteSize    int64     `db:"byte_size" json:"byte_size"`
	Checksum    string    `db:"checksum" json:"checksum"`
	Metadata    Metadata  `db:"metadata" json:"metadata"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Attachment links a record's named association to a blob.
type Attachment struct {
	ID         int64     `db:"id" json:"id"`
	RecordType string    `db:"record_type" json:"record_type"`
	RecordID   int64     `db:"record_id" json:"record_id"`
	Name       string    `db:"name" json:"name"`
	BlobID     int64     `db:"blob_id" json:"blob_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Blob       Blob      `db:"blob" json:"blob"`
}

// EffectiveCoverArt applies the read-time fallback: an episode without its
// own cover art shows the podcast's.
func EffectiveCoverArt(episodeCover, podcastCover *Attachment) *Attachment {
	if episodeCover != nil {
		return episodeCover
	}
	return podcastCover
}
