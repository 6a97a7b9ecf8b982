package types

import (
	"fmt"
	"path"
	"strings"
)

// ProjectType selects which kind of project the pipeline scaffolds.
type ProjectType string

const (
	ProjectFrontend  ProjectType = "frontend"
	ProjectBackend   ProjectType = "backend"
	ProjectFullstack ProjectType = "fullstack"
)

// ParseProjectType normalizes and validates a user-supplied project type.
func ParseProjectType(s string) (ProjectType, error) {
	switch ProjectType(strings.ToLower(strings.TrimSpace(s))) {
	case ProjectFrontend:
		return ProjectFrontend, nil
	case ProjectBackend:
		return ProjectBackend, nil
	case ProjectFullstack:
		return ProjectFullstack, nil
	}
	return "", fmt.Errorf("unknown project type %q", s)
}

func (p ProjectType) Valid() bool {
	return p == ProjectFrontend || p == ProjectBackend || p == ProjectFullstack
}

// Intent is the routed meaning of a user request. The zero value means
// "not routed yet".
type Intent string

const (
	IntentUnset    Intent = ""
	IntentCreate   Intent = "create"
	IntentModify   Intent = "modify"
	IntentQuestion Intent = "question"
	IntentExplain  Intent = "explain"
)

// ParseIntent maps free-form model output onto a known intent. Anything
// unrecognized resolves to create, which is also the routing default.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentModify:
		return IntentModify
	case IntentQuestion:
		return IntentQuestion
	case IntentExplain:
		return IntentExplain
	default:
		return IntentCreate
	}
}

// GeneratedFile is one produced source file. Identity is the normalized
// relative path.
type GeneratedFile struct {
	Path    string   `json:"path"`
	Content string   `json:"content"`
	Exports []string `json:"exports,omitempty"`
}

// Theme is a curated palette/typography pairing injected into the blueprint
// so consecutive generations do not all look alike.
type Theme struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Colors      map[string]string `json:"colors"`
	HeadingFont string            `json:"headingFont"`
	BodyFont    string            `json:"bodyFont"`
}

// Blueprint is the project plan produced before any file generation. It is
// replaced wholesale, never field-patched.
type Blueprint struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Features     []string          `json:"features"`
	Pages        []string          `json:"pages"`
	Components   []string          `json:"components"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Theme        *Theme            `json:"theme,omitempty"`
}

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is a structured finding from the validation stage. It is
// state data, not a Go error.
type ValidationError struct {
	File     string   `json:"file"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity,omitempty"`
}

// FileAction is what a modification change does to its target file.
type FileAction string

const (
	ActionCreate FileAction = "create"
	ActionModify FileAction = "modify"
	ActionDelete FileAction = "delete"
)

func (a FileAction) Valid() bool {
	return a == ActionCreate || a == ActionModify || a == ActionDelete
}

// ModificationChange is one planned edit against an existing project.
type ModificationChange struct {
	File        string     `json:"file"`
	Action      FileAction `json:"action"`
	Description string     `json:"description"`
}

// ModificationPlan is the transient output of modification analysis. It is
// consumed by the apply stage and never stored on workflow state.
type ModificationPlan struct {
	Summary string               `json:"summary"`
	Changes []ModificationChange `json:"changes"`
}

// NormalizePath canonicalizes a file path for map identity: forward slashes,
// no leading slash or dot segments, always project-relative. Collaborators
// produce both "/src/App.tsx" and "src/App.tsx"; comparisons go through here.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return p
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	return strings.TrimPrefix(cleaned, "/")
}
