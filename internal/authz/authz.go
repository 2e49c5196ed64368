// Package authz decides whether the request actor may touch a podcast or
// episode, or enter a role-restricted namespace. Denials are returned as a
// Decision carrying the redirect target; nothing here writes a response.
package authz

import (
	"fmt"

	"podcast-studio/internal/models"
)

const (
	RootPath     = "/"
	PodcastsPath = "/podcasts"

	MsgAccessDenied = "Access denied."
)

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed  bool
	Redirect string
	Message  string
}

var allow = Decision{Allowed: true}

func deny(redirect, message string) Decision {
	return Decision{Redirect: redirect, Message: message}
}

// EpisodesPath is the collection index of a podcast's episodes.
func EpisodesPath(podcastID int64) string {
	return fmt.Sprintf("/podcasts/%d/episodes", podcastID)
}

// CanAccessPodcast reports whether the actor is an admin or the podcast's owner.
func CanAccessPodcast(actor *models.Actor, podcast *models.Podcast) bool {
	if actor == nil || podcast == nil {
		return false
	}
	return actor.IsAdmin() || podcast.UserID == actor.ID
}

// CanAccessEpisode reports whether the actor is an admin or owns the
// episode's parent podcast.
func CanAccessEpisode(actor *models.Actor, episode *models.Episode, parent *models.Podcast) bool {
	if actor == nil || episode == nil || parent == nil || episode.PodcastID != parent.ID {
		return false
	}
	return actor.IsAdmin() || parent.UserID == actor.ID
}

func Podcast(actor *models.Actor, podcast *models.Podcast) Decision {
	if CanAccessPodcast(actor, podcast) {
		return allow
	}
	return deny(PodcastsPath, MsgAccessDenied)
}

func Episode(actor *models.Actor, episode *models.Episode, parent *models.Podcast) Decision {
	if CanAccessEpisode(actor, episode, parent) {
		return allow
	}
	return deny(episodeRedirect(parent), MsgAccessDenied)
}

// EditEpisode gates editing an episode's content. Only user-role actors are
// held to ownership; producers pass unconditionally.
// TODO: confirm with product whether producers should be ownership-checked here.
func EditEpisode(actor *models.Actor, episode *models.Episode, parent *models.Podcast) Decision {
	if actor == nil {
		return deny(episodeRedirect(parent), MsgAccessDenied)
	}
	if actor.IsUser() && (parent == nil || episode == nil || parent.UserID != actor.ID) {
		return deny(episodeRedirect(parent), MsgAccessDenied)
	}
	return allow
}

// RequireProducer gates the producer namespace.
func RequireProducer(actor *models.Actor) Decision {
	if actor.IsProducer() {
		return allow
	}
	return deny(RootPath, "Access denied. Producers only.")
}

// RequireAdmin gates the admin namespace.
func RequireAdmin(actor *models.Actor) Decision {
	if actor.IsAdmin() {
		return allow
	}
	return deny(RootPath, "Access denied. Admins only.")
}

func episodeRedirect(parent *models.Podcast) string {
	if parent == nil {
		return PodcastsPath
	}
	return EpisodesPath(parent.ID)
}
