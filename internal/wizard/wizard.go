// Package wizard builds podcasts and episodes one step at a time. Each
// step validates only its own fields and saves what it has, so an entity
// may sit half-finished between visits.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"slices"
	"strings"

	"podcast-studio/internal/flash"
	"podcast-studio/internal/labels"
	"podcast-studio/internal/metrics"
	"podcast-studio/internal/models"
)

// Step is a wizard step identifier as it appears in URLs.
type Step string

const (
	StepOverview   Step = "overview"
	StepCover      Step = "cover"
	StepMedia      Step = "media"
	StepAssets     Step = "assets"
	StepWebsite    Step = "website"
	StepCategories Step = "categories"
	StepDetails    Step = "details"
	StepSummary    Step = "summary"
)

// ErrUnknownStep is returned for a step the flow does not have.
var ErrUnknownStep = errors.New("unknown wizard step")

// ValidationFailed carries user-facing messages for a rejected submission.
type ValidationFailed struct {
	Messages []string
}

func (e *ValidationFailed) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Changes is what a submission asks for beyond plain attributes. It is
// applied after the attribute save succeeds.
type Changes struct {
	// Attach maps a has-many association to new signed blob references.
	Attach map[string][]string
	// Replace maps a single-valued association to its new signed reference.
	Replace map[string]string
	// Remove lists single-valued associations whose removal flag was set.
	Remove []string
	// Labels maps an association to the labels submitted for it.
	Labels map[string]labels.Input
	// Errors are problems found while reading the form, such as an
	// unparseable number. They are reported with the validation messages.
	Errors []string
}

func (c *Changes) attach(name string, refs []string) {
	var kept []string
	for _, r := range refs {
		if strings.TrimSpace(r) != "" {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return
	}
	if c.Attach == nil {
		c.Attach = map[string][]string{}
	}
	c.Attach[name] = append(c.Attach[name], kept...)
}

func (c *Changes) replace(name, ref string) {
	if strings.TrimSpace(ref) == "" {
		return
	}
	if c.Replace == nil {
		c.Replace = map[string]string{}
	}
	c.Replace[name] = ref
}

func (c *Changes) label(name string, in labels.Input) {
	if in.Empty() {
		return
	}
	if c.Labels == nil {
		c.Labels = map[string]labels.Input{}
	}
	c.Labels[name] = in
}

// Flow describes one kind of entity the engine can build.
type Flow[T any] interface {
	Entity() string
	Steps() []Step
	Record(entity T) (recordType string, id int64)
	// Assign merges the submitted form into the entity without saving it.
	Assign(entity T, step Step, form url.Values) Changes
	// Fields names the struct fields validated at step. The last step
	// returns every field that matters for finishing.
	Fields(step Step) []string
	// Save persists the entity without further validation. It may return
	// a *ValidationFailed for conflicts only the store can detect.
	Save(ctx context.Context, entity T, step Step) error
	// Finish runs once the last step has been saved and returns the notice
	// to show.
	Finish(ctx context.Context, entity T) (string, error)
}

// Attacher links uploaded blobs to records.
type Attacher interface {
	AttachAll(ctx context.Context, recordType string, recordID int64, name string, tokens []string) ([]models.Attachment, error)
	Replace(ctx context.Context, recordType string, recordID int64, name, token string) (*models.Attachment, error)
	PurgeAll(ctx context.Context, recordType string, recordID int64, name string) error
}

// Labeler applies submitted labels to attached blobs.
type Labeler interface {
	Reconcile(ctx context.Context, recordType string, recordID int64, name string, in labels.Input) labels.Result
}

type Engine[T any] struct {
	flow   Flow[T]
	blobs  Attacher
	labels Labeler
	flash  flash.Store
}

func NewEngine[T any](flow Flow[T], blobs Attacher, labeler Labeler, messages flash.Store) *Engine[T] {
	return &Engine[T]{flow: flow, blobs: blobs, labels: labeler, flash: messages}
}

// View is what a step renders.
type View[T any] struct {
	Entity T
	Step   Step
	Steps  []Step
	Errors []string
}

// Outcome is the result of a step submission.
type Outcome struct {
	Step     Step
	Next     Step
	Finished bool
	Notice   string
	Errors   []string
}

func (o Outcome) Valid() bool { return len(o.Errors) == 0 }

// ParseStep checks that s is one of the flow's steps.
func (e *Engine[T]) ParseStep(s string) (Step, error) {
	step := Step(s)
	if !slices.Contains(e.flow.Steps(), step) {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
	return step, nil
}

func (e *Engine[T]) last() Step {
	steps := e.flow.Steps()
	return steps[len(steps)-1]
}

func (e *Engine[T]) next(step Step) Step {
	steps := e.flow.Steps()
	i := slices.Index(steps, step)
	return steps[i+1]
}

// Show renders a step with the entity's current values. Messages left by
// the previous submission are returned once and then cleared.
func (e *Engine[T]) Show(ctx context.Context, session string, entity T, step Step) (View[T], error) {
	if _, err := e.ParseStep(string(step)); err != nil {
		return View[T]{}, err
	}
	messages, err := e.flash.Take(ctx, session)
	if err != nil {
		log.Printf("wizard: %v", err)
	}
	return View[T]{Entity: entity, Step: step, Steps: e.flow.Steps(), Errors: messages}, nil
}

// Update applies one step submission. Validation failures are reported in
// the Outcome and left in the session for the next render; the returned
// error is for storage and attachment problems only. The entity keeps the
// submitted values either way.
func (e *Engine[T]) Update(ctx context.Context, session string, entity T, step Step, form url.Values) (Outcome, error) {
	if _, err := e.ParseStep(string(step)); err != nil {
		return Outcome{}, err
	}
	if _, err := e.flash.Take(ctx, session); err != nil {
		log.Printf("wizard: %v", err)
	}

	entityName := e.flow.Entity()
	recordType, id := e.flow.Record(entity)
	changes := e.flow.Assign(entity, step, form)

	for _, name := range changes.Remove {
		if err := e.blobs.PurgeAll(ctx, recordType, id, name); err != nil {
			return Outcome{}, fmt.Errorf("remove %s: %w", name, err)
		}
	}

	messages := append(changes.Errors, check(entity, e.flow.Fields(step))...)
	if len(messages) == 0 {
		err := e.flow.Save(ctx, entity, step)
		var failed *ValidationFailed
		switch {
		case errors.As(err, &failed):
			messages = failed.Messages
		case err != nil:
			metrics.WizardUpdates.WithLabelValues(entityName, string(step), "error").Inc()
			return Outcome{}, err
		}
	}
	if len(messages) > 0 {
		if err := e.flash.Put(ctx, session, messages); err != nil {
			log.Printf("wizard: %v", err)
		}
		metrics.WizardUpdates.WithLabelValues(entityName, string(step), "invalid").Inc()
		return Outcome{Step: step, Errors: messages}, nil
	}

	if err := e.attach(ctx, recordType, id, changes); err != nil {
		metrics.WizardUpdates.WithLabelValues(entityName, string(step), "error").Inc()
		return Outcome{}, err
	}
	for name, in := range changes.Labels {
		e.labels.Reconcile(ctx, recordType, id, name, in)
	}

	if step == e.last() {
		notice, err := e.flow.Finish(ctx, entity)
		if err != nil {
			metrics.WizardUpdates.WithLabelValues(entityName, string(step), "error").Inc()
			return Outcome{}, err
		}
		metrics.WizardUpdates.WithLabelValues(entityName, string(step), "finished").Inc()
		return Outcome{Step: step, Finished: true, Notice: notice}, nil
	}
	metrics.WizardUpdates.WithLabelValues(entityName, string(step), "advanced").Inc()
	return Outcome{Step: step, Next: e.next(step)}, nil
}

func (e *Engine[T]) attach(ctx context.Context, recordType string, id int64, changes Changes) error {
	for name, ref := range changes.Replace {
		if _, err := e.blobs.Replace(ctx, recordType, id, name, ref); err != nil {
			return fmt.Errorf("attach %s: %w", name, err)
		}
	}
	for name, refs := range changes.Attach {
		if _, err := e.blobs.AttachAll(ctx, recordType, id, name, refs); err != nil {
			return err
		}
	}
	return nil
}
