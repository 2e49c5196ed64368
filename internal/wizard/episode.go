package wizard

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"podcast-studio/internal/db"
	"podcast-studio/internal/labels"
	"podcast-studio/internal/models"
)

const (
	maxNumberAttempts = 3
	numberTaken       = "Number has already been taken"
	releaseDateLayout = "2006-01-02"
)

// EpisodeStore persists episodes for the episode flow.
type EpisodeStore interface {
	SaveEpisode(ctx context.Context, e *models.Episode) error
	MaxEpisodeNumber(ctx context.Context, podcastID, excludeID int64) (int, error)
}

type EpisodeFlow struct {
	store EpisodeStore
}

func NewEpisodeFlow(store EpisodeStore) *EpisodeFlow {
	return &EpisodeFlow{store: store}
}

var episodeSteps = []Step{StepOverview, StepAssets, StepDetails, StepSummary}

var episodeFields = map[Step][]string{
	StepOverview: {"Name", "Number", "Description", "Format"},
	StepDetails:  {"Notes", "OutputFormats"},
}

func (f *EpisodeFlow) Entity() string { return "episode" }

func (f *EpisodeFlow) Steps() []Step { return episodeSteps }

func (f *EpisodeFlow) Record(e *models.Episode) (string, int64) { return models.RecordEpisode, e.ID }

func (f *EpisodeFlow) Fields(step Step) []string {
	if step == StepSummary {
		return append(append([]string(nil), episodeFields[StepOverview]...), episodeFields[StepDetails]...)
	}
	return episodeFields[step]
}

func (f *EpisodeFlow) Assign(e *models.Episode, _ Step, form url.Values) Changes {
	var c Changes
	assignString(form, "name", &e.Name)
	assignString(form, "description", &e.Description)
	assignString(form, "links", &e.Links)
	assignString(form, "format", &e.Format)
	assignString(form, "notes", &e.Notes)
	assignString(form, "guests", &e.Guests)

	// A blank number keeps whatever is stored. The number may arrive with
	// any step, so its range is checked here rather than by the step rules.
	if v := strings.TrimSpace(form.Get("number")); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			c.Errors = append(c.Errors, "Number is not a number")
		case n <= 0:
			c.Errors = append(c.Errors, "Number must be greater than 0")
		default:
			e.Number = &n
		}
	}

	if form.Has("release_date") {
		if v := strings.TrimSpace(form.Get("release_date")); v == "" {
			e.ReleaseDate = nil
		} else if d, err := time.Parse(releaseDateLayout, v); err != nil {
			c.Errors = append(c.Errors, "Release date is invalid")
		} else {
			e.ReleaseDate = &d
		}
	}

	if form.Has("output_formats") || form.Has("output_formats[]") {
		e.SetOutputFormatsList(formList(form, "output_formats"))
	}

	assignBool(form, "deliver_mp3", &e.DeliverMP3)
	assignBool(form, "deliver_mp4", &e.DeliverMP4)
	assignBool(form, "deliver_mov", &e.DeliverMOV)

	if form.Get("remove_cover_art") == "1" {
		c.Remove = append(c.Remove, models.AttachCoverArt)
	}
	c.replace(models.AttachCoverArt, form.Get("cover_art"))
	c.replace(models.AttachRawAudio, form.Get("raw_audio"))
	c.attach(models.AttachAssets, formList(form, "assets"))
	c.label(models.AttachAssets, labels.FromForm(form, "asset_labels"))
	c.label(models.AttachCoverArt, labels.FromForm(form, "cover_art_labels"))
	return c
}

// Save writes the episode. On the summary step an episode without a number
// gets one past the highest of its siblings; the unique index on
// (podcast_id, number) catches a concurrent finish taking the same number,
// in which case the number is recomputed.
func (f *EpisodeFlow) Save(ctx context.Context, e *models.Episode, step Step) error {
	if step != StepSummary || e.Number != nil {
		return numberConflict(f.store.SaveEpisode(ctx, e))
	}

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		highest, err := f.store.MaxEpisodeNumber(ctx, e.PodcastID, e.ID)
		if err != nil {
			return err
		}
		next := highest + 1
		e.Number = &next

		err = f.store.SaveEpisode(ctx, e)
		if !errors.Is(err, db.ErrConflict) {
			return err
		}
		log.Printf("episode %d: number %d taken, attempt %d", e.ID, next, attempt)
	}
	e.Number = nil
	return &ValidationFailed{Messages: []string{numberTaken}}
}

func (f *EpisodeFlow) Finish(context.Context, *models.Episode) (string, error) {
	return "Episode created successfully.", nil
}

func numberConflict(err error) error {
	if errors.Is(err, db.ErrConflict) {
		return &ValidationFailed{Messages: []string{numberTaken}}
	}
	return err
}

func assignBool(form url.Values, key string, dst *bool) {
	if !form.Has(key) {
		return
	}
	// Checkboxes post a hidden "0" before the real value.
	values := form[key]
	switch strings.ToLower(strings.TrimSpace(values[len(values)-1])) {
	case "1", "true", "on", "yes":
		*dst = true
	default:
		*dst = false
	}
}
