package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/llm"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/prompts"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

type validationReply struct {
	Errors []types.ValidationError `json:"errors"`
}

// validateProject reviews the whole accumulated file set and replaces the
// error list with this pass's findings; an empty reply wipes stale errors.
// Validation has no fallback: an exhausted call fails the run.
func (e *Engine) validateProject(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	if st.Files.Len() == 0 {
		return &Delta{
			Errors:   []types.ValidationError{},
			Messages: []string{"Nothing to validate."},
		}, nil
	}

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetReviewSystemPrompt()},
			{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetValidationPrompt(), filesForReview(st))},
		},
		Temperature: 0.1,
	}
	reply, err := askJSON[validationReply](ctx, e, rc, req, nil)
	if err != nil {
		return nil, err
	}

	found := make([]types.ValidationError, 0, len(reply.Errors))
	for _, ve := range reply.Errors {
		ve.File = types.NormalizePath(ve.File)
		if strings.TrimSpace(ve.Message) == "" {
			continue
		}
		if ve.Severity == "" {
			ve.Severity = types.SeverityError
		}
		found = append(found, ve)
	}

	msg := "Validation passed."
	if len(found) > 0 {
		msg = fmt.Sprintf("Validation found %d issue(s).", len(found))
	}
	rc.Log.Info().Int("issues", len(found)).Int("iteration", st.Iteration).Msg("validation pass done")
	return &Delta{Errors: found, Messages: []string{msg}}, nil
}

// repairErrors rewrites each file named by the current error list, streaming
// every fix into the state, and increments the iteration count by exactly
// one. Errors without a resolvable file are left for the next validation
// pass to re-report; the iteration cap keeps that loop finite.
func (e *Engine) repairErrors(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	grouped := groupErrorsByFile(st.Errors)

	repaired := 0
	for _, group := range grouped {
		current, exists := st.Files.Get(group.file)
		content := "(file does not exist yet)"
		if exists {
			content = current.Content
		}

		req := llm.Request{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: prompts.GetReviewSystemPrompt()},
				{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetRepairPrompt(),
					group.file, bulletList(group.messages), content, group.file)},
			},
			Temperature: 0.2,
		}
		file, err := askJSON[filePayload](ctx, e, rc, req, checkFile)
		if err != nil {
			return nil, fmt.Errorf("repair %s: %w", group.file, err)
		}
		fixed := file.toFile()
		if fixed.Path == "" {
			fixed.Path = group.file
		}
		rc.Apply(st, &Delta{Files: []types.GeneratedFile{fixed}})
		repaired++
	}

	next := st.Iteration + 1
	rc.Log.Info().Int("iteration", next).Int("files", repaired).Msg("repair pass done")
	return &Delta{
		Iteration: &next,
		Messages:  []string{fmt.Sprintf("Repair pass %d rewrote %d file(s).", next, repaired)},
	}, nil
}

type errorGroup struct {
	file     string
	messages []string
}

// groupErrorsByFile buckets findings per target file, preserving first-seen
// order. Findings without a file cannot be repaired directly and are
// skipped.
func groupErrorsByFile(errs []types.ValidationError) []errorGroup {
	index := make(map[string]int)
	var groups []errorGroup
	for _, ve := range errs {
		file := types.NormalizePath(ve.File)
		if file == "" {
			continue
		}
		i, ok := index[file]
		if !ok {
			i = len(groups)
			index[file] = i
			groups = append(groups, errorGroup{file: file})
		}
		groups[i].messages = append(groups[i].messages, ve.Message)
	}
	return groups
}

func bulletList(items []string) string {
	return "- " + strings.Join(items, "\n- ")
}
