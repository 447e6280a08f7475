// Package output renders lookup results and flag lists for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/userlens/userlens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Lookup is the CLI view of one lookup: the core result enriched with the
// verified flag.
type Lookup struct {
	Login      string          `json:"login"`
	Verified   bool            `json:"verified"`
	Profile    json.RawMessage `json:"profile"`
	Provenance core.Provenance `json:"provenance"`
}

// Formatter renders CLI results.
type Formatter interface {
	FormatLookup(result *Lookup) (string, error)
	FormatFlagList(keys []string) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{Indent: true}
	}
	return &TableFormatter{}
}
