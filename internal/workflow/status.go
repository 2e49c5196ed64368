// Package workflow holds the episode production state machine and the
// simpler podcast publish/archive lifecycle.
package workflow

import (
	"slices"

	"podcast-studio/internal/models"
)

// Action names a lifecycle request. The string values are the route names
// existing clients post to.
type Action string

const (
	ActionSubmit          Action = "submit_episode"
	ActionRevertToDraft   Action = "revert_to_draft"
	ActionStartEditing    Action = "start_editing"
	ActionCompleteEditing Action = "complete_editing"
	ActionResubmit        Action = "re_submit_for_editing"
	ActionApprove         Action = "approve_episode"
	ActionPublish         Action = "publish_episode"
	ActionArchive         Action = "archive_episode"
)

// Audience says which party drives an action.
type Audience int

const (
	Owner Audience = iota
	Producer
)

type transition struct {
	from     models.EpisodeStatus
	to       models.EpisodeStatus
	audience Audience
	notice   string
	alert    string
}

// transitions is the whole table except archive, which is legal from any status.
var transitions = map[Action]transition{
	ActionSubmit: {
		from: models.StatusDraft, to: models.StatusEditRequested, audience: Owner,
		notice: "Episode submitted for editing successfully.",
		alert:  "Unable to submit episode for editing.",
	},
	ActionRevertToDraft: {
		from: models.StatusEditRequested, to: models.StatusDraft, audience: Owner,
		notice: "Episode reverted to draft successfully.",
		alert:  "Unable to revert episode to draft.",
	},
	ActionStartEditing: {
		from: models.StatusEditRequested, to: models.StatusEditing, audience: Producer,
		notice: "Started editing episode.",
		alert:  "Unable to start editing episode.",
	},
	ActionCompleteEditing: {
		from: models.StatusEditing, to: models.StatusAwaitingUserReview, audience: Producer,
		notice: "Episode editing completed.",
		alert:  "Unable to complete episode editing.",
	},
	ActionResubmit: {
		from: models.StatusAwaitingUserReview, to: models.StatusEditRequested, audience: Owner,
		notice: "Episode re-submitted for editing.",
		alert:  "Unable to re-submit episode for editing.",
	},
	ActionApprove: {
		from: models.StatusAwaitingUserReview, to: models.StatusReadyToPublish, audience: Owner,
		notice: "Episode approved.",
		alert:  "Unable to approve episode.",
	},
	ActionPublish: {
		from: models.StatusReadyToPublish, to: models.StatusEpisodeComplete, audience: Owner,
		notice: "Episode published successfully.",
		alert:  "Unable to publish episode.",
	},
}

var archive = transition{
	to: models.StatusArchived, audience: Owner,
	notice: "Episode archived.",
	alert:  "Unable to archive episode.",
}

// Actions lists every action in table order.
var Actions = []Action{
	ActionSubmit,
	ActionRevertToDraft,
	ActionStartEditing,
	ActionCompleteEditing,
	ActionResubmit,
	ActionApprove,
	ActionPublish,
	ActionArchive,
}

// ParseAction maps a wire name to an Action.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	return a, slices.Contains(Actions, a)
}

func lookup(action Action) (transition, bool) {
	if action == ActionArchive {
		return archive, true
	}
	t, ok := transitions[action]
	return t, ok
}

// Next is the transition function: it returns the status that action leads
// to from the given status, or false when the pair is not in the table.
func Next(from models.EpisodeStatus, action Action) (models.EpisodeStatus, bool) {
	if !from.Valid() {
		return from, false
	}
	t, ok := lookup(action)
	if !ok {
		return from, false
	}
	if action != ActionArchive && t.from != from {
		return from, false
	}
	return t.to, true
}

// AvailableActions lists the actions the audience may take from status.
func AvailableActions(status models.EpisodeStatus, audience Audience) []Action {
	var out []Action
	for _, a := range Actions {
		t, _ := lookup(a)
		if t.audience != audience {
			continue
		}
		if a == ActionArchive && status == models.StatusArchived {
			continue
		}
		if _, ok := Next(status, a); ok {
			out = append(out, a)
		}
	}
	return out
}

func CanBeEditedByProducer(s models.EpisodeStatus) bool {
	return s == models.StatusEditRequested || s == models.StatusEditing
}

func CanBeSubmittedByUser(s models.EpisodeStatus) bool { return s == models.StatusDraft }

func IsEditingInProgress(s models.EpisodeStatus) bool { return s == models.StatusEditing }

func IsComplete(s models.EpisodeStatus) bool { return s == models.StatusEpisodeComplete }
