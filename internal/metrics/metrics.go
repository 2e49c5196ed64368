// Package metrics registers the workflow counters exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions counts status actions by action and result (ok, invalid, error).
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_status_transitions_total",
			Help: "Episode and podcast status actions by result",
		},
		[]string{"entity", "action", "result"},
	)

	// WizardUpdates counts wizard step submissions by outcome.
	WizardUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_wizard_updates_total",
			Help: "Wizard step submissions by entity, step and outcome",
		},
		[]string{"entity", "step", "outcome"},
	)

	// LabelWrites counts blob label merges by result (applied, failed).
	LabelWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_label_writes_total",
			Help: "Attachment label metadata writes by result",
		},
		[]string{"result"},
	)

	// BlobPurges counts blobs physically removed by the worker.
	BlobPurges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_blob_purges_total",
			Help: "Blobs deleted after their last attachment was removed",
		},
	)
)
