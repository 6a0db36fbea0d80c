// Package output renders command results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents output format types.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatText writes strings as-is and falls back to compact JSON otherwise.
	FormatText Format = "text"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatJSON, FormatYAML, FormatText}

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Option configures Write.
type Option func(*config)

type config struct {
	indent string
}

// WithIndent sets the JSON indentation string. Empty means compact.
func WithIndent(indent string) Option {
	return func(c *config) {
		c.indent = indent
	}
}

// Write serialises v to w in the given format, terminated by a newline.
func Write(w io.Writer, format Format, v any, opts ...Option) error {
	cfg := &config{indent: "  "}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, v, cfg.indent)
	case FormatYAML:
		return writeYAML(w, v)
	case FormatText:
		if s, ok := v.(string); ok {
			_, err := io.WriteString(w, strings.TrimRight(s, "\n")+"\n")
			return err
		}
		return writeJSON(w, v, "")
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeJSON(w io.Writer, v any, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(v)
}

// writeYAML goes through JSON first so that keys follow the json tags the
// document types already carry.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}
