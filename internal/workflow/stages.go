package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/llm"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

// errBadReply marks a model reply that stayed unusable through the parse
// retry budget. Stages with a deterministic fallback treat it like retry
// exhaustion.
var errBadReply = errors.New("model returned unusable json")

// generationExhausted reports whether a stage error is the recoverable kind:
// the retry budget ran out or the reply never parsed. Fatal provider errors
// are not recoverable and propagate.
func generationExhausted(err error) bool {
	return llm.IsExhausted(err) || errors.Is(err, errBadReply)
}

// askJSON performs one JSON completion and decodes it into T. A reply that
// fails to decode or fails the shape check counts as a transient generation
// failure: the model is re-asked up to the engine's parse-retry budget.
func askJSON[T any](ctx context.Context, e *Engine, rc *Run, req llm.Request, check func(*T) error) (*T, error) {
	req.JSONMode = true
	var lastErr error
	for attempt := 0; attempt <= e.parseRetries; attempt++ {
		raw, err := e.llm.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		out := new(T)
		if err := llm.Decode(raw, out); err != nil {
			lastErr = err
			rc.Log.Warn().Err(err).Int("attempt", attempt+1).Msg("model reply did not decode, re-asking")
			continue
		}
		if check != nil {
			if err := check(out); err != nil {
				lastErr = err
				rc.Log.Warn().Err(err).Int("attempt", attempt+1).Msg("model reply failed shape check, re-asking")
				continue
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", errBadReply, e.parseRetries+1, lastErr)
}

// filePayload is the wire shape stages ask the model for.
type filePayload struct {
	Path    string   `json:"path"`
	Content string   `json:"content"`
	Exports []string `json:"exports,omitempty"`
}

func (p filePayload) toFile() types.GeneratedFile {
	return types.GeneratedFile{
		Path:    types.NormalizePath(p.Path),
		Content: p.Content,
		Exports: p.Exports,
	}
}

// checkFiles validates a multi-file reply: at least one entry, every entry
// with a usable path and content.
func checkFiles(files *[]filePayload) error {
	if len(*files) == 0 {
		return errors.New("no files in reply")
	}
	for i, f := range *files {
		if types.NormalizePath(f.Path) == "" {
			return fmt.Errorf("file %d has an empty path", i)
		}
		if strings.TrimSpace(f.Content) == "" {
			return fmt.Errorf("file %q has empty content", f.Path)
		}
	}
	return nil
}

// checkFile validates a single-file reply.
func checkFile(f *filePayload) error {
	if types.NormalizePath(f.Path) == "" {
		return errors.New("reply has an empty path")
	}
	if strings.TrimSpace(f.Content) == "" {
		return errors.New("reply has empty content")
	}
	return nil
}

func toFiles(payloads []filePayload) []types.GeneratedFile {
	out := make([]types.GeneratedFile, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, p.toFile())
	}
	return out
}

// fileListing renders the accumulated paths for prompts, one per line.
func fileListing(st *State) string {
	paths := st.Files.Paths()
	if len(paths) == 0 {
		return "(none)"
	}
	return "- " + strings.Join(paths, "\n- ")
}

// projectSummary is the short project description used by routing and chat.
func projectSummary(st *State) string {
	if st.Blueprint != nil {
		return fmt.Sprintf("%q: %s (%d files)", st.Blueprint.Name, st.Blueprint.Description, st.Files.Len())
	}
	if st.Files.Len() > 0 {
		return fmt.Sprintf("an existing project with %d files", st.Files.Len())
	}
	return "no project yet"
}

// projectContext renders blueprint plus file list for the chat stage.
func projectContext(st *State) string {
	var b strings.Builder
	b.WriteString("Project: ")
	b.WriteString(projectSummary(st))
	b.WriteString("\nFiles:\n")
	b.WriteString(fileListing(st))
	return b.String()
}

// filesForReview serializes every file for the validation prompt.
func filesForReview(st *State) string {
	var b strings.Builder
	for _, f := range st.Files.All() {
		fmt.Fprintf(&b, "### %s\n%s\n\n", f.Path, f.Content)
	}
	return b.String()
}

// blueprintJSON renders the blueprint for prompts; a nil blueprint becomes
// an empty object so templates stay well-formed.
func blueprintJSON(st *State) string {
	if st.Blueprint == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(st.Blueprint, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
