package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/llm"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/theme"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

const (
	blueprintReply  = `{"name":"bakery-site","description":"A bakery marketing site","features":["menu"],"pages":["Home"],"components":["Navbar"],"dependencies":{"react-router-dom":"^6.22.0"}}`
	structureReply  = `[{"path":"package.json","content":"{}"},{"path":"src/main.tsx","content":"main"}]`
	coreReply       = `[{"path":"src/App.tsx","content":"app-v1"}]`
	componentsReply = `[{"path":"src/components/Navbar.tsx","content":"nav"}]`
	pageSetReplyOne = `{"pages":[{"name":"Home","route":"/","description":"landing"}]}`
	homePageReply   = `{"path":"src/pages/Home.tsx","content":"home"}`
	validateFail    = `{"errors":[{"file":"src/App.tsx","message":"missing import"}]}`
	repairReply     = `{"path":"src/App.tsx","content":"app-v2"}`
	validateClean   = `{"errors":[]}`
)

func newTestEngine(fake *llm.Fake) *Engine {
	return NewEngine(fake, zerolog.Nop(), WithThemePicker(theme.NewPicker(1)))
}

func exhaustedErr() error {
	return &llm.ExhaustedError{Attempts: 3, Last: errors.New("rate limit")}
}

func TestGenerateBakeryEndToEnd(t *testing.T) {
	fake := &llm.Fake{}
	fake.Enqueue(blueprintReply).
		Enqueue(structureReply).
		Enqueue(coreReply).
		Enqueue(componentsReply).
		Enqueue(pageSetReplyOne).
		Enqueue(homePageReply).
		Enqueue(validateFail).
		Enqueue(repairReply).
		Enqueue(validateClean)

	var phases []string
	var fileWrites []string
	res, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:      "a bakery site",
		ProjectType: types.ProjectFrontend,
		OnFile:      func(f types.GeneratedFile) { fileWrites = append(fileWrites, f.Path) },
		OnPhase:     func(p string) { phases = append(phases, p) },
	})
	require.NoError(t, err)

	assert.Equal(t, types.IntentCreate, res.Intent)
	assert.Equal(t, 1, res.Iterations)
	assert.Empty(t, res.Errors)
	assert.False(t, res.Degraded())
	require.NotNil(t, res.Blueprint)
	assert.Equal(t, "bakery-site", res.Blueprint.Name)
	assert.NotNil(t, res.Blueprint.Theme, "blueprint carries the picked theme")

	files := res.FileMap()
	assert.Equal(t, "app-v2", files["src/App.tsx"], "repair overwrote the core file")
	assert.Equal(t, "home", files["src/pages/Home.tsx"])

	wantPaths := []string{"package.json", "src/main.tsx", "src/App.tsx", "src/components/Navbar.tsx", "src/pages/Home.tsx"}
	gotPaths := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		gotPaths = append(gotPaths, f.Path)
	}
	assert.Equal(t, wantPaths, gotPaths, "insertion order survives the repair overwrite")

	assert.Equal(t, []string{
		PhaseRouting, PhaseBlueprint, PhaseStructure, PhaseCore,
		PhaseComponents, PhasePages, PhaseValidation, PhaseRepair, PhaseValidation,
	}, phases)

	assert.Equal(t, []string{
		"package.json", "src/main.tsx", "src/App.tsx",
		"src/components/Navbar.tsx", "src/pages/Home.tsx",
		"src/App.tsx", // the repair write notifies again
	}, fileWrites)

	assert.Equal(t, 9, fake.CallCount(), "routing made no model call on a fresh workspace")
	assert.Contains(t, res.Messages, "Starting a new project.")
}

func TestGenerateStopsRepairingOnCleanValidation(t *testing.T) {
	fake := &llm.Fake{}
	fake.Enqueue(blueprintReply).
		Enqueue(structureReply).
		Enqueue(coreReply).
		Enqueue(componentsReply).
		Enqueue(pageSetReplyOne).
		Enqueue(homePageReply).
		Enqueue(validateClean)

	res, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:      "a bakery site",
		ProjectType: types.ProjectFrontend,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Iterations)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 7, fake.CallCount())
}

func TestGenerateRepairLoopHitsCapAndReturnsDegraded(t *testing.T) {
	fake := &llm.Fake{Handler: func(req llm.Request) (string, error) {
		text := req.Messages[len(req.Messages)-1].Content
		switch {
		case strings.Contains(text, "Review the project files"):
			return validateFail, nil
		case strings.Contains(text, "Fix the reported problems"):
			return `{"path":"src/App.tsx","content":"still trying"}`, nil
		}
		return "", errors.New("unexpected prompt")
	}}
	fake.Enqueue(blueprintReply).
		Enqueue(structureReply).
		Enqueue(coreReply).
		Enqueue(componentsReply).
		Enqueue(pageSetReplyOne).
		Enqueue(homePageReply)

	res, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:      "a bakery site",
		ProjectType: types.ProjectFrontend,
	})
	require.NoError(t, err, "cap exhaustion is a degraded success, not a failure")
	assert.Equal(t, 3, res.Iterations, "never beyond the cap")
	assert.True(t, res.Degraded())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "src/App.tsx", res.Errors[0].File)
	// head of the pipeline (6) + 4 validations + 3 repairs
	assert.Equal(t, 13, fake.CallCount())
}

func TestGenerateQuestionLeavesFilesUntouched(t *testing.T) {
	fake := &llm.Fake{}
	fake.Enqueue(`{"intent":"question"}`).
		Enqueue("It uses React Router for navigation.")

	seeds := []types.GeneratedFile{
		{Path: "src/App.tsx", Content: "app"},
		{Path: "package.json", Content: "{}"},
	}
	var fileWrites int
	res, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:        "how does routing work?",
		ProjectType:   types.ProjectFrontend,
		ExistingFiles: seeds,
		OnFile:        func(types.GeneratedFile) { fileWrites++ },
	})
	require.NoError(t, err)

	assert.Equal(t, types.IntentQuestion, res.Intent)
	assert.Equal(t, "It uses React Router for navigation.", res.Answer)
	assert.Equal(t, 0, fileWrites, "question branch never writes files")
	require.Len(t, res.Files, 2)
	assert.Equal(t, "src/App.tsx", res.Files[0].Path)
	assert.Equal(t, "app", res.Files[0].Content)
	assert.Equal(t, 2, fake.CallCount())
}

func TestGenerateRoutesFreshWorkspaceToCreateWithoutModelCall(t *testing.T) {
	fake := &llm.Fake{}
	// Keyword-heavy prompt: the empty-workspace check must still win.
	fake.Enqueue(blueprintReply).
		Enqueue(structureReply).
		Enqueue(coreReply).
		Enqueue(componentsReply).
		Enqueue(pageSetReplyOne).
		Enqueue(homePageReply).
		Enqueue(validateClean)

	res, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:      "fix and update and explain a site for my bakery?",
		ProjectType: types.ProjectFrontend,
	})
	require.NoError(t, err)
	assert.Equal(t, types.IntentCreate, res.Intent)
	assert.Equal(t, 7, fake.CallCount(), "no routing call was spent")
}

func TestGenerateIntentFallsBackToKeywordsOnExhaustion(t *testing.T) {
	// Both the routing call and the modification analysis call exhaust
	// their retries; validation still runs against the untouched files.
	fake := &llm.Fake{}
	fake.EnqueueErr(exhaustedErr()).
		EnqueueErr(exhaustedErr()).
		Enqueue(validateClean)

	res, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:        "add a contact form to the site",
		ProjectType:   types.ProjectFrontend,
		ExistingFiles: []types.GeneratedFile{{Path: "src/App.tsx", Content: "app"}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.IntentModify, res.Intent, "keyword fallback routed the intent")
	assert.Contains(t, res.Messages, "No applicable changes found.")
	assert.Equal(t, 3, fake.CallCount())
}

func TestGenerateModificationAnalysisRegexFallbackFindsFile(t *testing.T) {
	// Analysis exhausts its retries, so the plan comes from the path
	// scan of the prompt instead.
	fake := &llm.Fake{}
	fake.Enqueue(`{"intent":"modify"}`).
		EnqueueErr(exhaustedErr()).
		Enqueue(`{"path":"src/App.tsx","content":"app with banner"}`).
		Enqueue(validateClean)

	res, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:        "add a banner to src/App.tsx please",
		ProjectType:   types.ProjectFrontend,
		ExistingFiles: []types.GeneratedFile{{Path: "src/App.tsx", Content: "app"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "app with banner", res.FileMap()["src/App.tsx"])
}

func TestGeneratePageSetFallsBackToMinimalPages(t *testing.T) {
	// The page listing call fails for good, which falls back to the
	// minimal Home plus NotFound set.
	fake := &llm.Fake{}
	fake.Enqueue(blueprintReply).
		Enqueue(structureReply).
		Enqueue(coreReply).
		Enqueue(componentsReply).
		EnqueueErr(exhaustedErr()).
		Enqueue(homePageReply).
		Enqueue(`{"path":"src/pages/NotFound.tsx","content":"404"}`).
		Enqueue(validateClean)

	res, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:      "a bakery site",
		ProjectType: types.ProjectFrontend,
	})
	require.NoError(t, err)
	files := res.FileMap()
	assert.Contains(t, files, "src/pages/Home.tsx")
	assert.Contains(t, files, "src/pages/NotFound.tsx")
}

func TestGenerateBlueprintFailsAfterParseRetries(t *testing.T) {
	fake := &llm.Fake{}
	fake.Enqueue("not json at all").
		Enqueue("still not json").
		Enqueue("nope")

	_, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:      "a bakery site",
		ProjectType: types.ProjectFrontend,
	})
	require.Error(t, err)
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, NodeBlueprint, werr.Node)
	assert.Equal(t, 3, fake.CallCount(), "default budget is one ask plus two re-asks")
}

func TestGenerateModifyFlowAppliesPlan(t *testing.T) {
	fake := &llm.Fake{}
	fake.Enqueue(`{"intent":"modify"}`).
		Enqueue(`{"summary":"remove the about page","changes":[
			{"file":"src/pages/About.tsx","action":"delete","description":"drop the page"},
			{"file":"/src/App.tsx","action":"modify","description":"remove the about route"}
		]}`).
		Enqueue(`{"path":"src/App.tsx","content":"app without about"}`).
		Enqueue(validateClean)

	var fileWrites []string
	res, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:      "remove the about page",
		ProjectType: types.ProjectFrontend,
		ExistingFiles: []types.GeneratedFile{
			{Path: "src/App.tsx", Content: "app"},
			{Path: "src/pages/About.tsx", Content: "about"},
		},
		OnFile: func(f types.GeneratedFile) { fileWrites = append(fileWrites, f.Path) },
	})
	require.NoError(t, err)

	files := res.FileMap()
	assert.NotContains(t, files, "src/pages/About.tsx", "explicit delete removed the file")
	assert.Equal(t, "app without about", files["src/App.tsx"])
	assert.Equal(t, []string{"src/App.tsx"}, fileWrites, "deletes do not notify")
	assert.Contains(t, res.Messages, "Deleted src/pages/About.tsx.")
}

func TestGenerateRejectsBadInput(t *testing.T) {
	e := newTestEngine(&llm.Fake{})
	_, err := e.Generate(context.Background(), GenerateRequest{Prompt: "  ", ProjectType: types.ProjectFrontend})
	require.Error(t, err)

	_, err = e.Generate(context.Background(), GenerateRequest{Prompt: "a site", ProjectType: "desktop"})
	require.Error(t, err)
}

func TestGenerateChatFailurePropagates(t *testing.T) {
	fake := &llm.Fake{}
	fake.Enqueue(`{"intent":"explain"}`).
		EnqueueErr(exhaustedErr())

	_, err := newTestEngine(fake).Generate(context.Background(), GenerateRequest{
		Prompt:        "explain the routing setup",
		ProjectType:   types.ProjectFrontend,
		ExistingFiles: []types.GeneratedFile{{Path: "src/App.tsx", Content: "app"}},
	})
	require.Error(t, err)
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, NodeAnswerQuestion, werr.Node)
}

func TestKeywordIntentOrdering(t *testing.T) {
	assert.Equal(t, types.IntentExplain, keywordIntent("explain how the router works"))
	assert.Equal(t, types.IntentQuestion, keywordIntent("what is the build command"))
	assert.Equal(t, types.IntentModify, keywordIntent("update the footer text"))
	assert.Equal(t, types.IntentCreate, keywordIntent("a portfolio for a photographer"))
	assert.Equal(t, types.IntentExplain, keywordIntent("explain why you would update this"), "explain beats modify")
}
