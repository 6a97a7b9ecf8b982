package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/llm"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/prompts"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

// analyzeModification turns the user's instruction into a modification plan
// and parks it on the run for the apply stage. The plan never enters the
// workflow state.
func (e *Engine) analyzeModification(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetChangeSystemPrompt()},
			{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetModificationAnalysisPrompt(), st.UserPrompt, fileListing(st))},
		},
		Temperature: 0.2,
	}
	plan, err := askJSON[types.ModificationPlan](ctx, e, rc, req, nil)
	if err != nil {
		if !generationExhausted(err) {
			return nil, err
		}
		fallback := regexPlan(st)
		rc.Log.Warn().Err(err).Int("changes", len(fallback.Changes)).Msg("modification analysis exhausted, using best-effort plan")
		rc.SetPlan(fallback)
		return &Delta{Messages: []string{fmt.Sprintf("Planned %d change(s) (best effort).", len(fallback.Changes))}}, nil
	}

	cleaned := make([]types.ModificationChange, 0, len(plan.Changes))
	for _, ch := range plan.Changes {
		ch.File = types.NormalizePath(ch.File)
		if ch.File == "" || !ch.Action.Valid() {
			continue
		}
		cleaned = append(cleaned, ch)
	}
	plan.Changes = cleaned
	rc.SetPlan(plan)

	summary := plan.Summary
	if summary == "" {
		summary = "modification plan"
	}
	return &Delta{Messages: []string{fmt.Sprintf("Planned %d change(s): %s", len(cleaned), summary)}}, nil
}

var pathTokenRe = regexp.MustCompile(`[\w./-]+\.[A-Za-z]{1,5}`)

// regexPlan is the deterministic analysis fallback: the first path-looking
// token from the prompt that matches an existing file becomes a single
// modify change. No match means an empty plan.
func regexPlan(st *State) *types.ModificationPlan {
	for _, tok := range pathTokenRe.FindAllString(st.UserPrompt, -1) {
		p := types.NormalizePath(tok)
		if _, ok := st.Files.Get(p); ok {
			return &types.ModificationPlan{
				Summary: "best-effort single-file change",
				Changes: []types.ModificationChange{
					{File: p, Action: types.ActionModify, Description: st.UserPrompt},
				},
			}
		}
	}
	return &types.ModificationPlan{Summary: "no changes identified"}
}

// applyModification executes the parked plan: deletes are explicit, creates
// and modifies each get their own call, and every write streams into the
// state as it lands. Apply has no fallback; a failed change fails the run.
func (e *Engine) applyModification(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	plan := rc.TakePlan()
	if plan == nil || len(plan.Changes) == 0 {
		return &Delta{Messages: []string{"No applicable changes found."}}, nil
	}

	for _, ch := range plan.Changes {
		if ch.Action == types.ActionDelete {
			rc.Apply(st, &Delta{
				Deletes:  []string{ch.File},
				Messages: []string{fmt.Sprintf("Deleted %s.", ch.File)},
			})
			continue
		}

		before := ""
		currentBlock := "This is a new file."
		if current, ok := st.Files.Get(ch.File); ok {
			before = current.Content
			currentBlock = fmt.Sprintf("Current content:\n---\n%s\n---", before)
		}

		req := llm.Request{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: prompts.GetChangeSystemPrompt()},
				{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetModificationApplyPrompt(),
					st.UserPrompt, ch.File, ch.Description, currentBlock, ch.File)},
			},
			Temperature: 0.2,
		}
		file, err := askJSON[filePayload](ctx, e, rc, req, checkFile)
		if err != nil {
			return nil, fmt.Errorf("apply change to %s: %w", ch.File, err)
		}
		updated := file.toFile()
		if updated.Path == "" {
			updated.Path = ch.File
		}
		rc.Apply(st, &Delta{
			Files:    []types.GeneratedFile{updated},
			Messages: []string{changeMessage(before, updated)},
		})
	}
	return nil, nil
}

// changeMessage summarizes one applied change with line counts from a text
// diff.
func changeMessage(before string, f types.GeneratedFile) string {
	added, removed := diffStats(before, f.Content)
	if before == "" {
		return fmt.Sprintf("Created %s (+%d lines).", f.Path, added)
	}
	return fmt.Sprintf("Updated %s (+%d/-%d lines).", f.Path, added, removed)
}

func diffStats(before, after string) (added, removed int) {
	dmp := diffmatchpatch.New()
	for _, d := range dmp.DiffMain(before, after, true) {
		n := strings.Count(d.Text, "\n")
		if n == 0 && len(strings.TrimSpace(d.Text)) > 0 {
			n = 1
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		}
	}
	return added, removed
}
