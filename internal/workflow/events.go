package workflow

import (
	"context"
	"log"

	"podcast-studio/internal/models"
)

// EventKind names the view fragment a status change invalidates.
type EventKind string

const (
	EventStatusBadge     EventKind = "status_badge"
	EventUserActions     EventKind = "user_actions"
	EventProducerActions EventKind = "producer_actions"
)

// Event is published after a status write has committed.
// Actions is only set for the two action-panel kinds.
type Event struct {
	Kind      EventKind
	EpisodeID int64
	PodcastID int64
	Status    models.EpisodeStatus
	Actions   []Action
}

// Observer receives post-commit events. Implementations must not fail the
// transition that produced the event.
type Observer interface {
	Notify(ctx context.Context, event Event)
}

type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) Notify(ctx context.Context, event Event) { f(ctx, event) }

// Observers fans an event out to each observer in order.
type Observers []Observer

func (o Observers) Notify(ctx context.Context, event Event) {
	for _, obs := range o {
		obs.Notify(ctx, event)
	}
}

// NopObserver drops every event.
var NopObserver Observer = ObserverFunc(func(context.Context, Event) {})

// LogObserver writes each event to the standard logger.
var LogObserver Observer = ObserverFunc(func(_ context.Context, e Event) {
	log.Printf("episode %d: %s refresh (status %s, actions %v)", e.EpisodeID, e.Kind, e.Status, e.Actions)
})

func statusEvents(episode *models.Episode) []Event {
	return []Event{
		{Kind: EventStatusBadge, EpisodeID: episode.ID, PodcastID: episode.PodcastID, Status: episode.Status},
		{Kind: EventUserActions, EpisodeID: episode.ID, PodcastID: episode.PodcastID, Status: episode.Status,
			Actions: AvailableActions(episode.Status, Owner)},
		{Kind: EventProducerActions, EpisodeID: episode.ID, PodcastID: episode.PodcastID, Status: episode.Status,
			Actions: AvailableActions(episode.Status, Producer)},
	}
}
