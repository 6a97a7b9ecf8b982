package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Model output is not guaranteed to be strict JSON even in JSON mode:
// replies arrive fenced, commented, with trailing commas, or with the
// payload wrapped in an envelope object. Decode salvages all of those
// before giving up.

var (
	fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaRe    = regexp.MustCompile(`,\s*([}\]])`)
)

// wrapperKeys are envelope fields models habitually wrap arrays in.
var wrapperKeys = []string{"files", "changes", "errors", "pages", "result", "code", "data", "output"}

// Extract pulls the best JSON candidate out of raw model output: the first
// fenced block if one exists, otherwise the span from the first opening
// brace/bracket to the matching last closer.
func Extract(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fencedBlockPattern.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[1])
	}
	objStart := strings.IndexByte(raw, '{')
	arrStart := strings.IndexByte(raw, '[')
	start, closer := objStart, byte('}')
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start, closer = arrStart, ']'
	}
	if start == -1 {
		return raw
	}
	end := strings.LastIndexByte(raw, closer)
	if end <= start {
		return raw[start:]
	}
	return raw[start : end+1]
}

// Decode extracts, cleans, and unmarshals model output into v. When v wants
// an array but the model wrapped it in an envelope object, the usual wrapper
// keys are tried before failing.
func Decode(raw string, v any) error {
	candidate := cleanJSON(Extract(raw))
	if candidate == "" {
		return fmt.Errorf("no json found in model output")
	}
	firstErr := json.Unmarshal([]byte(candidate), v)
	if firstErr == nil {
		return nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &wrapper); err == nil {
		for _, key := range wrapperKeys {
			inner, ok := wrapper[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(inner, v); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("decode model json: %w", firstErr)
}

// cleanJSON strips // line comments (outside string literals) and trailing
// commas, both common in model output and both fatal to encoding/json.
func cleanJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if ch == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteByte(ch)
	}
	return trailingCommaRe.ReplaceAllString(b.String(), "$1")
}
