package workflow

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

func silentRun() *Run {
	return NewRun(zerolog.Nop(), nil, nil)
}

func seededState() *State {
	st := NewState("a bakery site", types.ProjectFrontend)
	st.Files.Upsert(types.GeneratedFile{Path: "src/App.tsx", Content: "app"})
	st.Files.Upsert(types.GeneratedFile{Path: "package.json", Content: "{}"})
	st.Errors = []types.ValidationError{{File: "src/App.tsx", Message: "missing import"}}
	st.Messages = []string{"started"}
	st.Iteration = 1
	st.Phase = PhaseValidation
	return st
}

func TestApplyEmptyDeltaIsIdentity(t *testing.T) {
	st := seededState()
	before := st.Clone()

	silentRun().Apply(st, &Delta{})
	assert.Equal(t, before, st)

	silentRun().Apply(st, nil)
	assert.Equal(t, before, st)
}

func TestApplyScalarsReplaceOnlyWhenPresent(t *testing.T) {
	st := seededState()
	rc := silentRun()

	rc.Apply(st, &Delta{Intent: types.IntentModify})
	assert.Equal(t, types.IntentModify, st.Intent)
	assert.Equal(t, 1, st.Iteration, "absent iteration stays put")

	two := 2
	rc.Apply(st, &Delta{Iteration: &two})
	assert.Equal(t, 2, st.Iteration)
	assert.Equal(t, types.IntentModify, st.Intent, "absent intent stays put")

	bp := &types.Blueprint{Name: "bakery"}
	rc.Apply(st, &Delta{Blueprint: bp})
	assert.Equal(t, "bakery", st.Blueprint.Name)
}

func TestApplyErrorsReplaceNotMerge(t *testing.T) {
	st := seededState()
	rc := silentRun()

	rc.Apply(st, &Delta{Messages: []string{"note"}})
	require.Len(t, st.Errors, 1, "nil errors leave the list untouched")

	rc.Apply(st, &Delta{Errors: []types.ValidationError{
		{File: "src/main.tsx", Message: "bad import"},
		{File: "src/App.tsx", Message: "unused var"},
	}})
	require.Len(t, st.Errors, 2)
	assert.Equal(t, "src/main.tsx", st.Errors[0].File)

	rc.Apply(st, &Delta{Errors: []types.ValidationError{}})
	assert.Empty(t, st.Errors, "non-nil empty list wipes stale errors")
}

func TestApplyMessagesAppendInOrder(t *testing.T) {
	st := seededState()
	rc := silentRun()
	rc.Apply(st, &Delta{Messages: []string{"a", "b"}})
	rc.Apply(st, &Delta{Messages: []string{"c"}})
	assert.Equal(t, []string{"started", "a", "b", "c"}, st.Messages)
}

func TestFilesNeverDuplicateAcrossMerges(t *testing.T) {
	st := NewState("p", types.ProjectFrontend)
	rc := silentRun()

	rc.Apply(st, &Delta{Files: []types.GeneratedFile{
		{Path: "src/App.tsx", Content: "v1"},
		{Path: "index.html", Content: "html"},
	}})
	rc.Apply(st, &Delta{Files: []types.GeneratedFile{
		{Path: "/src/App.tsx", Content: "v2"},
	}})
	rc.Apply(st, &Delta{Files: []types.GeneratedFile{
		{Path: "./src/App.tsx", Content: "v3"},
	}})

	assert.Equal(t, 2, st.Files.Len(), "all path spellings collapse to one entry")
	f, ok := st.Files.Get("src/App.tsx")
	require.True(t, ok)
	assert.Equal(t, "v3", f.Content, "later merge wins")
	assert.Equal(t, []string{"src/App.tsx", "index.html"}, st.Files.Paths(), "overwrite keeps original position")
}

func TestApplyDeletesAreExplicit(t *testing.T) {
	st := seededState()
	rc := silentRun()

	rc.Apply(st, &Delta{Files: []types.GeneratedFile{{Path: "src/extra.ts", Content: "x"}}})
	assert.Equal(t, 3, st.Files.Len())

	rc.Apply(st, &Delta{Deletes: []string{"/src/extra.ts"}})
	assert.Equal(t, 2, st.Files.Len())
	_, ok := st.Files.Get("src/extra.ts")
	assert.False(t, ok)
}

func TestApplyDropsFilesWithEmptyPaths(t *testing.T) {
	st := NewState("p", types.ProjectFrontend)
	notified := 0
	rc := NewRun(zerolog.Nop(), func(types.GeneratedFile) { notified++ }, nil)

	rc.Apply(st, &Delta{Files: []types.GeneratedFile{
		{Path: "  ", Content: "lost"},
		{Path: "/", Content: "lost"},
		{Path: "ok.ts", Content: "kept"},
	}})
	assert.Equal(t, 1, st.Files.Len())
	assert.Equal(t, 1, notified)
}

func TestNotificationOrderOncePerWriteIncludingOverwrite(t *testing.T) {
	st := NewState("p", types.ProjectFrontend)
	var got []string
	rc := NewRun(zerolog.Nop(), func(f types.GeneratedFile) {
		got = append(got, f.Path+"="+f.Content)
	}, nil)

	rc.Apply(st, &Delta{Files: []types.GeneratedFile{
		{Path: "f1.ts", Content: "1"},
		{Path: "f2.ts", Content: "2"},
		{Path: "f3.ts", Content: "3"},
	}})
	rc.Apply(st, &Delta{Files: []types.GeneratedFile{
		{Path: "f2.ts", Content: "2b"},
	}})

	assert.Equal(t, []string{"f1.ts=1", "f2.ts=2", "f3.ts=3", "f2.ts=2b"}, got)
}

func TestSetPhaseNotifiesOnlyOnChange(t *testing.T) {
	st := NewState("p", types.ProjectFrontend)
	var phases []string
	rc := NewRun(zerolog.Nop(), nil, func(p string) { phases = append(phases, p) })

	rc.SetPhase(st, PhaseRouting)
	rc.SetPhase(st, PhaseRouting)
	rc.SetPhase(st, PhaseBlueprint)
	rc.SetPhase(st, "")

	assert.Equal(t, []string{PhaseRouting, PhaseBlueprint}, phases)
	assert.Equal(t, PhaseBlueprint, st.Phase)
}

func TestTakePlanClearsThePlan(t *testing.T) {
	rc := silentRun()
	rc.SetPlan(&types.ModificationPlan{Summary: "s"})
	require.NotNil(t, rc.TakePlan())
	assert.Nil(t, rc.TakePlan())
}

func TestCloneIsIndependent(t *testing.T) {
	st := seededState()
	cp := st.Clone()

	st.Files.Upsert(types.GeneratedFile{Path: "new.ts", Content: "n"})
	st.Messages = append(st.Messages, "later")
	st.Errors[0].Message = "changed"

	assert.Equal(t, 2, cp.Files.Len())
	assert.Equal(t, []string{"started"}, cp.Messages)
	assert.Equal(t, "missing import", cp.Errors[0].Message)
}
