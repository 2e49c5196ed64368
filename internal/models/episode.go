package models

import (
	"slices"
	"strings"
	"time"
)

// EpisodeStatus is the production workflow state of an episode.
// The set of values is closed; see workflow for the legal transitions.
type EpisodeStatus string

const (
	StatusDraft              EpisodeStatus = "draft"
	StatusEditRequested      EpisodeStatus = "edit_requested"
	StatusEditing            EpisodeStatus = "editing"
	StatusAwaitingUserReview EpisodeStatus = "awaiting_user_review"
	StatusReadyToPublish     EpisodeStatus = "ready_to_publish"
	StatusEpisodeComplete    EpisodeStatus = "episode_complete"
	StatusArchived           EpisodeStatus = "archived"
)

// EpisodeStatuses lists every status in workflow order.
var EpisodeStatuses = []EpisodeStatus{
	StatusDraft,
	StatusEditRequested,
	StatusEditing,
	StatusAwaitingUserReview,
	StatusReadyToPublish,
	StatusEpisodeComplete,
	StatusArchived,
}

func (s EpisodeStatus) Valid() bool { return slices.Contains(EpisodeStatuses, s) }

var FormatOptions = []string{
	"Interview",
	"Solo",
	"Panel Discussion",
	"Storytelling",
	"News/Current Events",
	"Educational",
	"Entertainment",
	"Other",
}

// OutputFormatOptions are the file formats a user may request for the final deliverables.
var OutputFormatOptions = []string{
	"MP3 128kbps",
	"MP3 192kbps",
	"MP3 320kbps",
	"WAV",
	"AAC/M4A",
	"FLAC",
	"MP4 720p",
	"MP4 1080p",
}

type Episode struct {
	ID            int64         `db:"id" json:"id"`
	PodcastID     int64         `db:"podcast_id" json:"podcast_id"`
	Name          string        `db:"name" json:"name" form:"name" validate:"required"`
	Number        *int          `db:"number" json:"number" form:"number" validate:"omitempty,gt=0"`
	Description   string        `db:"description" json:"description" form:"description" validate:"required"`
	Links         string        `db:"links" json:"links" form:"links"`
	ReleaseDate   *time.Time    `db:"release_date" json:"release_date" form:"release_date"`
	Format        string        `db:"format" json:"format" form:"format" validate:"omitempty,episode_format"`
	Notes         string        `db:"notes" json:"notes" form:"notes" validate:"required"`
	Guests        string        `db:"guests" json:"guests" form:"guests"`
	OutputFormats string        `db:"output_formats" json:"output_formats" form:"output_formats" validate:"output_formats"`
	DeliverMP3    bool          `db:"deliver_mp3" json:"deliver_mp3" form:"deliver_mp3"`
	DeliverMP4    bool          `db:"deliver_mp4" json:"deliver_mp4" form:"deliver_mp4"`
	DeliverMOV    bool          `db:"deliver_mov" json:"deliver_mov" form:"deliver_mov"`
	Status        EpisodeStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// OutputFormatsList splits the stored comma-separated selection.
func (e *Episode) OutputFormatsList() []string {
	return SplitList(e.OutputFormats)
}

// SetOutputFormatsList stores values trimmed, without blanks, comma-joined.
func (e *Episode) SetOutputFormatsList(values []string) {
	e.OutputFormats = JoinList(values)
}

func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func JoinList(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ",")
}
