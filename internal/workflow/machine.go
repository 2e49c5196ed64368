package workflow

import (
	"context"
	"fmt"
	"log"

	"podcast-studio/internal/metrics"
	"podcast-studio/internal/models"
)

// StatusStore performs the conditional status write.
type StatusStore interface {
	SwapEpisodeStatus(ctx context.Context, id int64, from []models.EpisodeStatus, to models.EpisodeStatus) (bool, error)
}

// InvalidTransition reports an action whose precondition did not hold.
type InvalidTransition struct {
	Action Action
	From   models.EpisodeStatus
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("cannot %s from %s", e.Action, e.From)
}

// Outcome is the result of applying an action. A failed precondition is an
// outcome, not an error; errors are reserved for the store.
type Outcome struct {
	Action  Action
	From    models.EpisodeStatus
	To      models.EpisodeStatus
	Changed bool
	Invalid *InvalidTransition

	notice string
	alert  string
}

func (o Outcome) OK() bool { return o.Invalid == nil }

// Message is the user-facing notice or alert for the outcome.
func (o Outcome) Message() string {
	if o.OK() {
		return o.notice
	}
	return o.alert
}

// Machine applies lifecycle actions to episodes.
type Machine struct {
	store    StatusStore
	observer Observer
}

func NewMachine(store StatusStore, observers ...Observer) *Machine {
	return &Machine{store: store, observer: Observers(observers)}
}

// Apply checks the action against the episode's status and, when legal,
// swaps the stored status in one conditional write. If another request
// changed the status first the write matches no row and the outcome is
// invalid. On success the episode is updated in place and the three
// refresh events are published.
func (m *Machine) Apply(ctx context.Context, episode *models.Episode, action Action) (Outcome, error) {
	t, known := lookup(action)
	out := Outcome{Action: action, From: episode.Status, To: episode.Status, notice: t.notice, alert: t.alert}
	if !known {
		out.alert = "Unknown action."
	}

	to, ok := Next(episode.Status, action)
	if !ok {
		out.Invalid = &InvalidTransition{Action: action, From: episode.Status}
		metrics.Transitions.WithLabelValues("episode", string(action), "invalid").Inc()
		return out, nil
	}

	from := []models.EpisodeStatus{episode.Status}
	if action == ActionArchive {
		from = models.EpisodeStatuses
	}

	swapped, err := m.store.SwapEpisodeStatus(ctx, episode.ID, from, to)
	if err != nil {
		metrics.Transitions.WithLabelValues("episode", string(action), "error").Inc()
		return out, fmt.Errorf("%s episode %d: %w", action, episode.ID, err)
	}
	if !swapped {
		log.Printf("episode %d: %s lost a race from %s", episode.ID, action, episode.Status)
		out.Invalid = &InvalidTransition{Action: action, From: episode.Status}
		metrics.Transitions.WithLabelValues("episode", string(action), "invalid").Inc()
		return out, nil
	}

	metrics.Transitions.WithLabelValues("episode", string(action), "ok").Inc()
	out.To = to
	out.Changed = to != episode.Status
	episode.Status = to

	if out.Changed {
		for _, event := range statusEvents(episode) {
			m.observer.Notify(ctx, event)
		}
	}
	return out, nil
}
