package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

func noteStage(note string) StageFunc {
	return func(_ context.Context, _ *Run, _ *State) (*Delta, error) {
		return &Delta{Messages: []string{note}}, nil
	}
}

func TestGraphWalksUnconditionalEdges(t *testing.T) {
	g := NewGraph(NodeBlueprint)
	g.Stage(NodeBlueprint, PhaseBlueprint, noteStage("one"))
	g.Edge(NodeBlueprint, NodeStructure)
	g.Stage(NodeStructure, PhaseStructure, noteStage("two"))
	g.Edge(NodeStructure, NodeEnd)

	st := NewState("p", types.ProjectFrontend)
	require.NoError(t, g.Run(context.Background(), silentRun(), st))
	assert.Equal(t, []string{"one", "two"}, st.Messages)
	assert.Equal(t, PhaseStructure, st.Phase)
}

func TestGraphBranchSeesMergedDelta(t *testing.T) {
	g := NewGraph(NodeRouteIntent)
	g.Stage(NodeRouteIntent, PhaseRouting, func(_ context.Context, _ *Run, _ *State) (*Delta, error) {
		return &Delta{Intent: types.IntentQuestion}, nil
	})
	g.Branch(NodeRouteIntent, func(st *State) Node {
		if st.Intent == types.IntentQuestion {
			return NodeAnswerQuestion
		}
		return NodeBlueprint
	})
	g.Stage(NodeAnswerQuestion, PhaseChat, noteStage("answered"))
	g.Edge(NodeAnswerQuestion, NodeEnd)

	st := NewState("p", types.ProjectFrontend)
	require.NoError(t, g.Run(context.Background(), silentRun(), st))
	assert.Equal(t, []string{"answered"}, st.Messages, "branch reads the stage's merged output")
}

func TestGraphFailsOnUnregisteredNode(t *testing.T) {
	g := NewGraph(NodeRouteIntent)
	g.Stage(NodeRouteIntent, PhaseRouting, noteStage("x"))
	g.Edge(NodeRouteIntent, NodeRepair) // never registered

	err := g.Run(context.Background(), silentRun(), NewState("p", types.ProjectFrontend))
	require.Error(t, err)
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, NodeRepair, werr.Node)
	assert.Contains(t, err.Error(), "no stage registered")
}

func TestGraphFailsWithoutOutgoingEdge(t *testing.T) {
	g := NewGraph(NodeRouteIntent)
	g.Stage(NodeRouteIntent, PhaseRouting, noteStage("x"))

	err := g.Run(context.Background(), silentRun(), NewState("p", types.ProjectFrontend))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no outgoing edge")
}

func TestGraphStepGuardStopsMiswiredLoop(t *testing.T) {
	g := NewGraph(NodeValidate)
	g.Stage(NodeValidate, PhaseValidation, noteStage("spin"))
	g.Edge(NodeValidate, NodeValidate)

	err := g.Run(context.Background(), silentRun(), NewState("p", types.ProjectFrontend))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded")
}

func TestGraphWrapsStageFailure(t *testing.T) {
	boom := errors.New("boom")
	g := NewGraph(NodeCoreFiles)
	g.Stage(NodeCoreFiles, PhaseCore, func(_ context.Context, _ *Run, _ *State) (*Delta, error) {
		return nil, boom
	})
	g.Edge(NodeCoreFiles, NodeEnd)

	err := g.Run(context.Background(), silentRun(), NewState("p", types.ProjectFrontend))
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, NodeCoreFiles, werr.Node)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "core-files")
}

func TestGraphHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGraph(NodeBlueprint)
	g.Stage(NodeBlueprint, PhaseBlueprint, noteStage("never"))
	g.Edge(NodeBlueprint, NodeEnd)

	st := NewState("p", types.ProjectFrontend)
	err := g.Run(ctx, silentRun(), st)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, st.Messages)
}
