// Package format renders CLI command output.
package format

import (
	"encoding/json"
	"io"
)

// Formatter abstracts output formatting for CLI results.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes indented JSON output.
type JSONFormatter struct{}

// Write encodes payload as JSON to a writer.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
