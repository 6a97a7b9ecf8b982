package workflow

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

// Run carries everything scoped to one driver invocation: identity, the
// notification callbacks, a run-scoped logger, and the transient
// modification plan handed from the analysis stage to the apply stage.
// Nothing on a Run is shared between invocations, so concurrent runs in one
// process cannot clobber each other's callbacks.
type Run struct {
	ID      string
	Log     zerolog.Logger
	OnFile  func(types.GeneratedFile)
	OnPhase func(phase string)

	plan *types.ModificationPlan
}

func NewRun(log zerolog.Logger, onFile func(types.GeneratedFile), onPhase func(string)) *Run {
	id := uuid.NewString()
	return &Run{
		ID:      id,
		Log:     log.With().Str("run_id", id).Logger(),
		OnFile:  onFile,
		OnPhase: onPhase,
	}
}

// Apply folds a stage's partial update into the state. Every file write
// fires the file callback exactly once, in delta order, overwrites included;
// the listener deduplicates if it wants to. Deletes run after upserts, and
// messages append last.
func (r *Run) Apply(st *State, d *Delta) {
	if d == nil {
		return
	}
	r.SetPhase(st, d.Phase)
	if d.Intent != types.IntentUnset {
		st.Intent = d.Intent
	}
	if d.Blueprint != nil {
		st.Blueprint = d.Blueprint
	}
	if d.Iteration != nil {
		st.Iteration = *d.Iteration
	}
	if d.Answer != "" {
		st.Answer = d.Answer
	}
	if d.Errors != nil {
		st.Errors = make([]types.ValidationError, len(d.Errors))
		copy(st.Errors, d.Errors)
	}
	for _, f := range d.Files {
		f.Path = types.NormalizePath(f.Path)
		if f.Path == "" {
			continue
		}
		st.Files.Upsert(f)
		if r.OnFile != nil {
			r.OnFile(f)
		}
	}
	for _, p := range d.Deletes {
		st.Files.Delete(p)
	}
	st.Messages = append(st.Messages, d.Messages...)
}

// SetPhase updates the progress label, notifying only on an actual change.
func (r *Run) SetPhase(st *State, phase string) {
	if phase == "" || phase == st.Phase {
		return
	}
	st.Phase = phase
	if r.OnPhase != nil {
		r.OnPhase(phase)
	}
}

// SetPlan stores the modification plan for the apply stage.
func (r *Run) SetPlan(p *types.ModificationPlan) { r.plan = p }

// TakePlan hands over the plan and clears it; the plan never outlives its
// consumer.
func (r *Run) TakePlan() *types.ModificationPlan {
	p := r.plan
	r.plan = nil
	return p
}
