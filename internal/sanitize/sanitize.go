// Package sanitize validates blob names and neutralizes active HTML
// content in user-supplied values before they reach storage.
package sanitize

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	namePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

// ErrInvalidName reports a blob name outside the allowed character set.
// The name becomes a filesystem key, so this check is the sole defense
// against path escape and must run before any storage access.
type ErrInvalidName struct {
	Name string
}

func (e ErrInvalidName) Error() string {
	return fmt.Sprintf("invalid name %q: must match [A-Za-z0-9._-]+", e.Name)
}

// CheckName returns the name unchanged when it matches the allowed
// pattern. No case or Unicode normalization is applied.
func CheckName(name string) (string, error) {
	if name == "" || !namePattern.MatchString(name) {
		return "", ErrInvalidName{Name: name}
	}
	return name, nil
}

// Value recursively escapes every string leaf of v. Maps and slices
// are walked in full; scalars other than strings pass through
// unchanged. The input is never mutated.
func Value(v any) any {
	switch value := v.(type) {
	case string:
		return html.EscapeString(value)
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			out[key] = Value(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = Value(item)
		}
		return out
	default:
		return v
	}
}

// Field strips HTML tags from one complaint form field. Unlike Value
// this removes markup instead of escaping it, matching how intercepted
// form fields were cleaned before insertion.
func Field(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}
