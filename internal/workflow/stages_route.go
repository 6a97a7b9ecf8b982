package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/llm"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/prompts"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

type intentReply struct {
	Intent string `json:"intent"`
}

// routeIntent decides which branch the request takes. A fresh workspace can
// only mean creation, so no model call is made: the existing-project check
// dominates any keyword in the prompt.
func (e *Engine) routeIntent(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	if st.Files.Len() == 0 && st.Blueprint == nil {
		return &Delta{
			Intent:   types.IntentCreate,
			Messages: []string{"Starting a new project."},
		}, nil
	}

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetIntentSystemPrompt()},
			{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetIntentPrompt(), st.UserPrompt, projectSummary(st))},
		},
	}
	reply, err := askJSON[intentReply](ctx, e, rc, req, func(r *intentReply) error {
		if strings.TrimSpace(r.Intent) == "" {
			return errors.New("empty intent")
		}
		return nil
	})
	if err != nil {
		if !generationExhausted(err) {
			return nil, err
		}
		intent := keywordIntent(st.UserPrompt)
		rc.Log.Warn().Err(err).Str("intent", string(intent)).Msg("intent call exhausted, falling back to keyword heuristics")
		return &Delta{
			Intent:   intent,
			Messages: []string{fmt.Sprintf("Routed request as %s.", intent)},
		}, nil
	}

	intent := types.ParseIntent(reply.Intent)
	return &Delta{
		Intent:   intent,
		Messages: []string{fmt.Sprintf("Routed request as %s.", intent)},
	}, nil
}

var (
	explainKeywords  = []string{"explain", "how does", "why does", "what does", "walk me through"}
	questionKeywords = []string{"?", "what is", "what are", "where is", "can i", "is there", "does it"}
	modifyKeywords   = []string{"add ", "change", "update", "remove", "delete", "rename", "replace", "fix ", "adjust", "make the"}
)

// keywordIntent is the deterministic routing fallback. Explain wins over
// question wins over modify; anything unrecognized creates.
func keywordIntent(prompt string) types.Intent {
	p := strings.ToLower(prompt)
	for _, kw := range explainKeywords {
		if strings.Contains(p, kw) {
			return types.IntentExplain
		}
	}
	for _, kw := range questionKeywords {
		if strings.Contains(p, kw) {
			return types.IntentQuestion
		}
	}
	for _, kw := range modifyKeywords {
		if strings.Contains(p, kw) {
			return types.IntentModify
		}
	}
	return types.IntentCreate
}

// answerQuestion handles the question/explain branch. It only reads state;
// files stay untouched all the way to the terminal node.
func (e *Engine) answerQuestion(ctx context.Context, rc *Run, st *State) (*Delta, error) {
	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetChatSystemPrompt()},
			{Role: llm.RoleUser, Content: fmt.Sprintf(prompts.GetChatPrompt(), st.UserPrompt, projectContext(st))},
		},
		Temperature: 0.4,
	}
	answer, err := e.llm.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Delta{
		Answer:   strings.TrimSpace(answer),
		Messages: []string{"Answered project question."},
	}, nil
}
