package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/llm"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/prompts"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

// generateBlueprint plans the project. The picked theme rides along on the
// blueprint so every later stage styles against the same palette.
func (e *Engine) generateBlueprint(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	picked := e.themes.Pick()
	themeJSON, err := json.Marshal(picked)
	if err != nil {
		return nil, fmt.Errorf("marshal theme: %w", err)
	}

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetGeneratorSystemPrompt()},
			{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetBlueprintPrompt(), st.UserPrompt, st.ProjectType, themeJSON)},
		},
		Temperature: 0.5,
	}
	bp, err := askJSON[types.Blueprint](ctx, e, rc, req, func(b *types.Blueprint) error {
		if strings.TrimSpace(b.Name) == "" {
			return errors.New("blueprint has no name")
		}
		if len(b.Pages) == 0 {
			return errors.New("blueprint has no pages")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	bp.Theme = picked

	rc.Log.Info().Str("project", bp.Name).Strs("pages", bp.Pages).Msg("blueprint ready")
	return &Delta{
		Blueprint: bp,
		Messages:  []string{fmt.Sprintf("Blueprint ready: %s (%d pages, %d components).", bp.Name, len(bp.Pages), len(bp.Components))},
	}, nil
}

// generateStructure produces the scaffolding files in one batched call.
func (e *Engine) generateStructure(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	themeJSON := "{}"
	if st.Blueprint != nil && st.Blueprint.Theme != nil {
		if b, err := json.Marshal(st.Blueprint.Theme); err == nil {
			themeJSON = string(b)
		}
	}

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetGeneratorSystemPrompt()},
			{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetStructurePrompt(), blueprintJSON(st), themeJSON)},
		},
		Temperature: 0.3,
	}
	files, err := askJSON[[]filePayload](ctx, e, rc, req, checkFiles)
	if err != nil {
		return nil, err
	}
	return &Delta{
		Files:    toFiles(*files),
		Messages: []string{fmt.Sprintf("Scaffolding ready (%d files).", len(*files))},
	}, nil
}

// generateCoreFiles produces the app shell that ties pages and components
// together.
func (e *Engine) generateCoreFiles(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetGeneratorSystemPrompt()},
			{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetCoreFilesPrompt(), blueprintJSON(st), fileListing(st))},
		},
		Temperature: 0.3,
	}
	files, err := askJSON[[]filePayload](ctx, e, rc, req, checkFiles)
	if err != nil {
		return nil, err
	}
	return &Delta{
		Files:    toFiles(*files),
		Messages: []string{"Core application files ready."},
	}, nil
}

// maxComponents caps one batched component call at a buildable size.
const maxComponents = 8

// generateComponents produces the blueprint's shared components in one
// batched call. A blueprint without components skips the call entirely.
func (e *Engine) generateComponents(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	var names []string
	if st.Blueprint != nil {
		names = st.Blueprint.Components
	}
	if len(names) == 0 {
		return &Delta{Messages: []string{"No shared components planned."}}, nil
	}
	if len(names) > maxComponents {
		names = names[:maxComponents]
	}

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetGeneratorSystemPrompt()},
			{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetComponentsPrompt(), blueprintJSON(st), strings.Join(names, ", "))},
		},
		Temperature: 0.3,
	}
	files, err := askJSON[[]filePayload](ctx, e, rc, req, checkFiles)
	if err != nil {
		return nil, err
	}
	return &Delta{
		Files:    toFiles(*files),
		Messages: []string{fmt.Sprintf("Generated %d components.", len(*files))},
	}, nil
}

type pageSpec struct {
	Name        string `json:"name"`
	Route       string `json:"route"`
	Description string `json:"description"`
}

type pageSetReply struct {
	Pages []pageSpec `json:"pages"`
}

// defaultPageSet is the fixed fallback when page-set extraction exhausts its
// call budget.
var defaultPageSet = []pageSpec{
	{Name: "Home", Route: "/", Description: "landing page"},
	{Name: "NotFound", Route: "*", Description: "fallback 404 page"},
}

// generatePages extracts the page set, then generates each page with its own
// call, streaming every file into the state as it lands. Page content has no
// fallback: a failed page fails the run.
func (e *Engine) generatePages(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	pages, err := e.extractPageSet(ctx, rc, st)
	if err != nil {
		return nil, err
	}

	var componentNames []string
	if st.Blueprint != nil {
		componentNames = st.Blueprint.Components
	}
	available := strings.Join(componentNames, ", ")
	if available == "" {
		available = "(none)"
	}

	for _, pg := range pages {
		req := llm.Request{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: prompts.GetGeneratorSystemPrompt()},
				{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetPagePrompt(),
					pg.Name, pg.Route, pg.Description, blueprintJSON(st), available, sanitizePageName(pg.Name))},
			},
			Temperature: 0.3,
		}
		file, err := askJSON[filePayload](ctx, e, rc, req, checkFile)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", pg.Name, err)
		}
		rc.Apply(st, &Delta{
			Files:    []types.GeneratedFile{file.toFile()},
			Messages: []string{fmt.Sprintf("Generated page %s.", pg.Name)},
		})
	}
	return nil, nil
}

func (e *Engine) extractPageSet(ctx context.Context, rc *Run, st *State) ([]pageSpec, error) {
	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetGeneratorSystemPrompt()},
			{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetPageSetPrompt(), blueprintJSON(st))},
		},
		Temperature: 0.2,
	}
	reply, err := askJSON[pageSetReply](ctx, e, rc, req, func(r *pageSetReply) error {
		if len(r.Pages) == 0 {
			return errors.New("no pages in reply")
		}
		for i, p := range r.Pages {
			if strings.TrimSpace(p.Name) == "" {
				return fmt.Errorf("page %d has no name", i)
			}
		}
		return nil
	})
	if err != nil {
		if !generationExhausted(err) {
			return nil, err
		}
		rc.Log.Warn().Err(err).Msg("page-set extraction exhausted, using the minimal page set")
		return defaultPageSet, nil
	}
	return reply.Pages, nil
}

// sanitizePageName keeps page file names to a single path-safe identifier.
func sanitizePageName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Page"
	}
	return b.String()
}
