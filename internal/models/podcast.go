package models

import "time"

type PodcastStatus string

const (
	PodcastDraft     PodcastStatus = "draft"
	PodcastPublished PodcastStatus = "published"
	PodcastArchived  PodcastStatus = "archived"
)

// Episode type classifiers offered by the podcast wizard.
const (
	EpisodeTypeEpisodic = "episodic"
	EpisodeTypeSerial   = "serial"
)

// Podcast is a show owned by a single user. Rows are created empty when the
// wizard starts and filled in step by step.
type Podcast struct {
	ID                int64         `db:"id" json:"id"`
	UserID            int64         `db:"user_id" json:"user_id"`
	Name              string        `db:"name" json:"name" form:"name" validate:"required"`
	Description       string        `db:"description" json:"description" form:"description" validate:"required"`
	WebsiteURL        string        `db:"website_url" json:"website_url" form:"website_url" validate:"omitempty,http_url"`
	PrimaryCategory   string        `db:"primary_category" json:"primary_category" form:"primary_category" validate:"required"`
	SecondaryCategory *string       `db:"secondary_category" json:"secondary_category" form:"secondary_category"`
	TertiaryCategory  *string       `db:"tertiary_category" json:"tertiary_category" form:"tertiary_category"`
	EpisodeType       string        `db:"episode_type" json:"episode_type" form:"episode_type" validate:"omitempty,oneof=episodic serial"`
	Status            PodcastStatus `db:"status" json:"status"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}
