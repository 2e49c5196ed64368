package wizard

import (
	"context"
	"net/url"
	"strings"

	"podcast-studio/internal/labels"
	"podcast-studio/internal/models"
	"podcast-studio/internal/workflow"
)

// PodcastStore persists podcasts for the podcast flow.
type PodcastStore interface {
	SavePodcast(ctx context.Context, p *models.Podcast) error
	workflow.PodcastStatusStore
}

type PodcastFlow struct {
	store PodcastStore
}

func NewPodcastFlow(store PodcastStore) *PodcastFlow {
	return &PodcastFlow{store: store}
}

var podcastSteps = []Step{StepOverview, StepCover, StepMedia, StepWebsite, StepCategories, StepSummary}

var podcastFields = map[Step][]string{
	StepOverview:   {"Name", "Description", "EpisodeType"},
	StepWebsite:    {"WebsiteURL"},
	StepCategories: {"PrimaryCategory"},
}

func (f *PodcastFlow) Entity() string { return "podcast" }

func (f *PodcastFlow) Steps() []Step { return podcastSteps }

func (f *PodcastFlow) Record(p *models.Podcast) (string, int64) { return models.RecordPodcast, p.ID }

func (f *PodcastFlow) Fields(step Step) []string {
	if step == StepSummary {
		var all []string
		for _, s := range []Step{StepOverview, StepWebsite, StepCategories} {
			all = append(all, podcastFields[s]...)
		}
		return all
	}
	return podcastFields[step]
}

func (f *PodcastFlow) Assign(p *models.Podcast, _ Step, form url.Values) Changes {
	var c Changes
	assignString(form, "name", &p.Name)
	assignString(form, "description", &p.Description)
	assignString(form, "primary_category", &p.PrimaryCategory)
	assignString(form, "episode_type", &p.EpisodeType)
	assignOptional(form, "secondary_category", &p.SecondaryCategory)
	assignOptional(form, "tertiary_category", &p.TertiaryCategory)
	if form.Has("website_url") {
		p.WebsiteURL = NormalizeWebsiteURL(form.Get("website_url"))
	}

	if form.Get("remove_cover_art") == "1" {
		c.Remove = append(c.Remove, models.AttachCoverArt)
	}
	c.replace(models.AttachCoverArt, form.Get("cover_art"))
	c.attach(models.AttachMedia, formList(form, "media"))
	c.label(models.AttachCoverArt, labels.FromForm(form, "cover_art_labels"))
	return c
}

func (f *PodcastFlow) Save(ctx context.Context, p *models.Podcast, _ Step) error {
	return f.store.SavePodcast(ctx, p)
}

// Finish publishes a draft podcast. Finishing a podcast that has already
// left draft changes nothing.
func (f *PodcastFlow) Finish(ctx context.Context, p *models.Podcast) (string, error) {
	if _, err := workflow.PublishPodcast(ctx, f.store, p); err != nil {
		return "", err
	}
	return "Podcast created successfully", nil
}

// NormalizeWebsiteURL trims the value and prefixes https:// when it has no
// http or https scheme. Blank stays blank.
func NormalizeWebsiteURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	return "https://" + u
}

func assignString(form url.Values, key string, dst *string) {
	if form.Has(key) {
		*dst = strings.TrimSpace(form.Get(key))
	}
}

func assignOptional(form url.Values, key string, dst **string) {
	if !form.Has(key) {
		return
	}
	if v := strings.TrimSpace(form.Get(key)); v != "" {
		*dst = &v
	} else {
		*dst = nil
	}
}

// formList reads a multi-valued field sent either as key or key[].
func formList(form url.Values, key string) []string {
	return append(append([]string(nil), form[key]...), form[key+"[]"]...)
}
