// Package render writes a shaped report view to a concrete surface.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"streamreport/internal/report"
)

// Func writes a view to w.
type Func func(w io.Writer, v report.View) error

// Supported format names.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ForFormat returns the renderer and file extension for a format name.
func ForFormat(format string) (Func, string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return Text, "txt", nil
	case FormatHTML:
		return HTML, "html", nil
	case FormatJSON:
		return JSON, "json", nil
	case FormatYAML, "yml":
		return YAML, "yaml", nil
	default:
		return nil, "", fmt.Errorf("unknown output format %q", format)
	}
}

// ContentType returns the MIME type for a file extension produced by ForFormat.
func ContentType(ext string) string {
	switch ext {
	case "html":
		return "text/html; charset=utf-8"
	case "json":
		return "application/json"
	case "yaml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// JSON writes the view as indented JSON.
func JSON(w io.Writer, v report.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// YAML writes the view as a YAML document.
func YAML(w io.Writer, v report.View) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
