package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/llm"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/theme"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

// Engine owns the workflow graph and the collaborators its stages call.
// One Engine serves many concurrent Generate invocations; per-invocation
// state lives on the Run.
type Engine struct {
	llm          llm.Client
	log          zerolog.Logger
	themes       *theme.Picker
	graph        *Graph
	parseRetries int
}

type Option func(*Engine)

// WithThemePicker overrides the default time-seeded picker.
func WithThemePicker(p *theme.Picker) Option {
	return func(e *Engine) { e.themes = p }
}

// WithParseRetries sets how many times a stage re-asks the model when a
// reply fails to decode or shape-check.
func WithParseRetries(n int) Option {
	return func(e *Engine) { e.parseRetries = n }
}

func NewEngine(client llm.Client, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		llm:          client,
		log:          log,
		themes:       theme.NewPicker(0),
		parseRetries: 2,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.graph = e.buildGraph()
	return e
}

func (e *Engine) buildGraph() *Graph {
	g := NewGraph(NodeRouteIntent)

	g.Stage(NodeRouteIntent, PhaseRouting, e.routeIntent)
	g.Branch(NodeRouteIntent, routeByIntent)

	g.Stage(NodeAnswerQuestion, PhaseChat, e.answerQuestion)
	g.Edge(NodeAnswerQuestion, NodeEnd)

	g.Stage(NodeAnalyzeModification, PhaseAnalysis, e.analyzeModification)
	g.Edge(NodeAnalyzeModification, NodeApplyModification)
	g.Stage(NodeApplyModification, PhaseModification, e.applyModification)
	g.Edge(NodeApplyModification, NodeValidate)

	g.Stage(NodeBlueprint, PhaseBlueprint, e.generateBlueprint)
	g.Edge(NodeBlueprint, NodeStructure)
	g.Stage(NodeStructure, PhaseStructure, e.generateStructure)
	g.Edge(NodeStructure, NodeCoreFiles)
	g.Stage(NodeCoreFiles, PhaseCore, e.generateCoreFiles)
	g.Edge(NodeCoreFiles, NodeComponents)
	g.Stage(NodeComponents, PhaseComponents, e.generateComponents)
	g.Edge(NodeComponents, NodePages)
	g.Stage(NodePages, PhasePages, e.generatePages)
	g.Edge(NodePages, NodeValidate)

	g.Stage(NodeValidate, PhaseValidation, e.validateProject)
	g.Branch(NodeValidate, routeAfterValidation)
	g.Stage(NodeRepair, PhaseRepair, e.repairErrors)
	g.Edge(NodeRepair, NodeValidate)

	return g
}

// maxRepairIterations bounds the validate→repair loop. Hitting the cap ends
// the run with the remaining errors intact: a degraded success, not a
// failure.
const maxRepairIterations = 3

func routeByIntent(st *State) Node {
	switch st.Intent {
	case types.IntentQuestion, types.IntentExplain:
		return NodeAnswerQuestion
	case types.IntentModify:
		return NodeAnalyzeModification
	default:
		return NodeBlueprint
	}
}

func routeAfterValidation(st *State) Node {
	if len(st.Errors) == 0 {
		return NodeEnd
	}
	if st.Iteration >= maxRepairIterations {
		return NodeEnd
	}
	return NodeRepair
}

// GenerateRequest is one driver invocation. ExistingFiles seed the state for
// modify/question runs against a stored project; seeding does not fire the
// file callback.
type GenerateRequest struct {
	Prompt        string
	ProjectType   types.ProjectType
	ExistingFiles []types.GeneratedFile
	OnFile        func(types.GeneratedFile)
	OnPhase       func(string)
}

// Result is the accumulated state of a finished run.
type Result struct {
	RunID      string
	Intent     types.Intent
	Blueprint  *types.Blueprint
	Files      []types.GeneratedFile
	Errors     []types.ValidationError
	Messages   []string
	Answer     string
	Iterations int
}

// FileMap flattens the files to path→content.
func (r *Result) FileMap() map[string]string {
	out := make(map[string]string, len(r.Files))
	for _, f := range r.Files {
		out[f.Path] = f.Content
	}
	return out
}

// Degraded reports a run that ended with validation errors left standing
// (the repair cap was hit). Callers get files they can use but should
// surface the errors.
func (r *Result) Degraded() bool { return len(r.Errors) > 0 }

// Generate builds the initial state, walks the graph, and returns the final
// state. On a workflow error no result is returned; files already delivered
// through the callbacks remain valid signals for the caller.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("workflow: empty prompt")
	}
	if !req.ProjectType.Valid() {
		return nil, fmt.Errorf("workflow: invalid project type %q", req.ProjectType)
	}

	rc := NewRun(e.log, req.OnFile, req.OnPhase)
	st := NewState(req.Prompt, req.ProjectType)
	for _, f := range req.ExistingFiles {
		st.Files.Upsert(f)
	}

	rc.Log.Info().
		Str("project_type", string(req.ProjectType)).
		Int("existing_files", st.Files.Len()).
		Msg("run started")

	if err := e.graph.Run(ctx, rc, st); err != nil {
		rc.Log.Error().Err(err).Msg("run failed")
		return nil, err
	}

	rc.Log.Info().
		Str("intent", string(st.Intent)).
		Int("files", st.Files.Len()).
		Int("errors", len(st.Errors)).
		Int("iterations", st.Iteration).
		Msg("run finished")

	return &Result{
		RunID:      rc.ID,
		Intent:     st.Intent,
		Blueprint:  st.Blueprint,
		Files:      st.Files.All(),
		Errors:     st.Errors,
		Messages:   st.Messages,
		Answer:     st.Answer,
		Iterations: st.Iteration,
	}, nil
}
