package workflow

import (
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

// State is the single record threaded through the graph. Stages read it and
// return a Delta; only the run context folds deltas back in.
type State struct {
	UserPrompt  string
	ProjectType types.ProjectType
	Intent      types.Intent
	Blueprint   *types.Blueprint
	Files       FileSet
	Errors      []types.ValidationError
	Iteration   int
	Phase       string
	Answer      string
	Messages    []string
}

func NewState(prompt string, projectType types.ProjectType) *State {
	return &State{
		UserPrompt:  prompt,
		ProjectType: projectType,
		Files:       NewFileSet(),
	}
}

// Clone deep-copies the state. Used by tests and by callers that want a
// snapshot unaffected by further merging.
func (s *State) Clone() *State {
	out := *s
	out.Files = s.Files.Clone()
	out.Errors = append([]types.ValidationError(nil), s.Errors...)
	out.Messages = append([]string(nil), s.Messages...)
	if s.Blueprint != nil {
		bp := *s.Blueprint
		out.Blueprint = &bp
	}
	return &out
}

// Delta is a stage's partial update. Zero-valued fields leave the state
// untouched. Errors is the exception: nil leaves errors alone while a
// non-nil slice (however empty) replaces them, because validation re-derives
// the full error set each pass.
type Delta struct {
	Intent    types.Intent
	Blueprint *types.Blueprint
	Files     []types.GeneratedFile
	Deletes   []string
	Errors    []types.ValidationError
	Iteration *int
	Phase     string
	Answer    string
	Messages  []string
}

// FileSet keeps generated files keyed by normalized path, in first-insertion
// order. Upserting an existing path overwrites content but keeps the
// original position.
type FileSet struct {
	order  []string
	byPath map[string]types.GeneratedFile
}

func NewFileSet() FileSet {
	return FileSet{byPath: make(map[string]types.GeneratedFile)}
}

func (s *FileSet) init() {
	if s.byPath == nil {
		s.byPath = make(map[string]types.GeneratedFile)
	}
}

// Upsert stores f under its normalized path and reports whether the path
// already existed. Files with empty normalized paths are dropped.
func (s *FileSet) Upsert(f types.GeneratedFile) bool {
	s.init()
	f.Path = types.NormalizePath(f.Path)
	if f.Path == "" {
		return false
	}
	_, exists := s.byPath[f.Path]
	if !exists {
		s.order = append(s.order, f.Path)
	}
	s.byPath[f.Path] = f
	return exists
}

// Delete removes the entry for path, reporting whether it was present.
func (s *FileSet) Delete(path string) bool {
	s.init()
	path = types.NormalizePath(path)
	if _, ok := s.byPath[path]; !ok {
		return false
	}
	delete(s.byPath, path)
	for i, p := range s.order {
		if p == path {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *FileSet) Get(path string) (types.GeneratedFile, bool) {
	s.init()
	f, ok := s.byPath[types.NormalizePath(path)]
	return f, ok
}

func (s *FileSet) Len() int { return len(s.order) }

// Paths returns the normalized paths in insertion order.
func (s *FileSet) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All returns the files in insertion order.
func (s *FileSet) All() []types.GeneratedFile {
	out := make([]types.GeneratedFile, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.byPath[p])
	}
	return out
}

// ContentMap flattens to path→content.
func (s *FileSet) ContentMap() map[string]string {
	out := make(map[string]string, len(s.order))
	for _, p := range s.order {
		out[p] = s.byPath[p].Content
	}
	return out
}

func (s *FileSet) Clone() FileSet {
	out := NewFileSet()
	out.order = append(out.order, s.order...)
	for p, f := range s.byPath {
		out.byPath[p] = f
	}
	return out
}
