package llm

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"
)

// Fake is a scripted Client for tests and key-less local development.
// Scripted replies are served in order; when the queue is empty the Handler
// takes over, and with neither the call fails.
type Fake struct {
	Handler func(Request) (string, error)

	mu    sync.Mutex
	queue []fakeReply
	calls []Request
}

type fakeReply struct {
	text string
	err  error
}

// Enqueue appends a scripted text reply.
func (f *Fake) Enqueue(text string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeReply{text: text})
	return f
}

// EnqueueErr appends a scripted failure.
func (f *Fake) EnqueueErr(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeReply{err: err})
	return f
}

func (f *Fake) Complete(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	if len(f.queue) > 0 {
		reply := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return reply.text, reply.err
	}
	handler := f.Handler
	f.mu.Unlock()
	if handler != nil {
		return handler(req)
	}
	return "", errors.New("fake llm: script exhausted")
}

func (f *Fake) Name() string { return "fake" }

// Calls returns a copy of every request seen so far.
func (f *Fake) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// NewDev returns a Fake that plays a tiny deterministic site through the
// whole pipeline, for running the server without provider credentials.
func NewDev() *Fake { return &Fake{Handler: devHandler} }

var (
	devPageRe = regexp.MustCompile(`src/pages/([A-Za-z0-9_]+)\.tsx`)
	devPathRe = regexp.MustCompile(`"path": "([^"]+)"`)
)

func devHandler(req Request) (string, error) {
	var sb strings.Builder
	for _, m := range req.Messages {
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	text := sb.String()

	switch {
	case strings.Contains(text, "Classify the user's request"):
		return `{"intent": "create"}`, nil
	case strings.Contains(text, "Produce a project blueprint"):
		return devMarshal(map[string]any{
			"name":         "dev-site",
			"description":  "deterministic development stub",
			"features":     []string{"static pages"},
			"pages":        []string{"Home"},
			"components":   []string{"Navbar", "Footer"},
			"dependencies": map[string]string{"react-router-dom": "^6.22.0"},
		})
	case strings.Contains(text, "Generate the scaffolding files"):
		return devFiles(
			"package.json", `{"name": "dev-site", "private": true}`,
			"index.html", "<!doctype html><div id=\"root\"></div>",
			"vite.config.ts", "export default {}",
			"tailwind.config.ts", "export default { content: ['./src/**/*.tsx'] }",
			"src/main.tsx", "import App from './App'",
			"src/index.css", "@tailwind base;",
		)
	case strings.Contains(text, "Generate the core application files"):
		return devFiles("src/App.tsx", "export default function App() { return null }")
	case strings.Contains(text, "Generate the reusable components"):
		return devFiles(
			"src/components/Navbar.tsx", "export default function Navbar() { return null }",
			"src/components/Footer.tsx", "export default function Footer() { return null }",
		)
	case strings.Contains(text, "List the pages of the site"):
		return devMarshal(map[string]any{"pages": []map[string]string{
			{"name": "Home", "route": "/", "description": "landing page"},
			{"name": "NotFound", "route": "*", "description": "404 page"},
		}})
	case strings.Contains(text, "Generate the full source for the page"):
		name := "Home"
		if m := devPageRe.FindStringSubmatch(text); m != nil {
			name = m[1]
		}
		return devMarshal(map[string]string{
			"path":    "src/pages/" + name + ".tsx",
			"content": "export default function " + name + "() { return null }",
		})
	case strings.Contains(text, "Review the project files"):
		return `{"errors": []}`, nil
	case strings.Contains(text, "Fix the reported problems"),
		strings.Contains(text, "Apply the following change"):
		path := "src/App.tsx"
		if m := devPathRe.FindStringSubmatch(text); m != nil {
			path = m[1]
		}
		return devMarshal(map[string]string{
			"path":    path,
			"content": "export default function Fixed() { return null }",
		})
	case strings.Contains(text, "Produce a modification plan"):
		return devMarshal(map[string]any{"summary": "no-op", "changes": []any{}})
	default:
		return "This is a development stub answer.", nil
	}
}

func devMarshal(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func devFiles(pairs ...string) (string, error) {
	type file struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	files := make([]file, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		files = append(files, file{Path: pairs[i], Content: pairs[i+1]})
	}
	return devMarshal(files)
}
