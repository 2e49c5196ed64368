package feed

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/eduncan911/podcast"
	"podcast-studio/internal/models"
)

// Item is one published episode with the files its entry needs.
type Item struct {
	Episode models.Episode
	Audio   *models.Attachment
	// Cover is the episode's own cover art, if any.
	Cover *models.Attachment
}

// BaseURL prefers the configured value and otherwise derives it from the request.
func BaseURL(configured string, r *http.Request) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// BlobURL is the public address of a stored blob.
func BlobURL(baseURL string, blob models.Blob) string {
	return fmt.Sprintf("%s/blobs/%s/%s", baseURL, blob.Key, url.PathEscape(blob.Filename))
}

func enclosureType(contentType string) podcast.EnclosureType {
	switch contentType {
	case "audio/mp4", "audio/x-m4a", "audio/m4a", "audio/aac":
		return podcast.M4A
	case "video/mp4":
		return podcast.MP4
	case "video/quicktime":
		return podcast.MOV
	case "video/x-m4v":
		return podcast.M4V
	default:
		return podcast.MP3
	}
}

// GenerateRSS renders the feed of a podcast. Items without edited audio
// are left out; an item without its own cover art uses the podcast's.
func GenerateRSS(p *models.Podcast, cover *models.Attachment, items []Item, baseURL string) (string, error) {
	link := fmt.Sprintf("%s/podcasts/%d", baseURL, p.ID)
	updated := p.UpdatedAt
	feed := podcast.New(p.Name, link, p.Description, &p.CreatedAt, &updated)
	feed.AddSummary(p.Description)
	if p.PrimaryCategory != "" {
		feed.AddCategory(p.PrimaryCategory, nil)
	}
	if cover != nil {
		feed.AddImage(BlobURL(baseURL, cover.Blob))
	}

	for _, it := range items {
		if it.Audio == nil {
			continue
		}
		ep := it.Episode
		pub := ep.UpdatedAt
		if ep.ReleaseDate != nil {
			pub = *ep.ReleaseDate
		}
		item := podcast.Item{
			GUID:        fmt.Sprintf("%s/episodes/%d", link, ep.ID),
			Title:       episodeTitle(ep),
			Link:        fmt.Sprintf("%s/episodes/%d", link, ep.ID),
			Description: ep.Description,
			PubDate:     &pub,
		}
		item.AddEnclosure(BlobURL(baseURL, it.Audio.Blob), enclosureType(it.Audio.Blob.ContentType), it.Audio.Blob.ByteSize)
		if art := models.EffectiveCoverArt(it.Cover, cover); art != nil {
			item.AddImage(BlobURL(baseURL, art.Blob))
		}
		if _, err := feed.AddItem(item); err != nil {
			return "", fmt.Errorf("add episode %d to feed: %w", ep.ID, err)
		}
	}

	return feed.String(), nil
}

func episodeTitle(ep models.Episode) string {
	if ep.Number != nil {
		return fmt.Sprintf("%d. %s", *ep.Number, ep.Name)
	}
	return ep.Name
}
