package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatLookup renders one lookup as a field/value table. Scalar profile
// fields are flattened into rows; nested objects are skipped.
func (f *TableFormatter) FormatLookup(result *Lookup) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Field", "Value"})

	t.AppendRow(table.Row{"login", result.Login})
	t.AppendRow(table.Row{"verified", result.Verified})

	for _, row := range profileRows(result.Profile) {
		t.AppendRow(row)
	}

	source := "upstream"
	if result.Provenance.FromCache {
		source = "cache"
		if result.Provenance.CacheExpires != nil {
			source = fmt.Sprintf("cache (expires %s)", result.Provenance.CacheExpires.Format(time.RFC3339))
		}
	}
	t.AppendFooter(table.Row{"source", source})

	return t.Render(), nil
}

// FormatFlagList renders the flagged logins.
func (f *TableFormatter) FormatFlagList(keys []string) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Login"})
	for _, key := range keys {
		t.AppendRow(table.Row{key})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d flagged", len(keys))})
	return t.Render(), nil
}

func profileRows(profile json.RawMessage) []table.Row {
	var fields map[string]any
	if err := json.Unmarshal(profile, &fields); err != nil {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name, value := range fields {
		switch value.(type) {
		case map[string]any, []any, nil:
			continue
		default:
			names = append(names, name)
		}
	}
	sort.Strings(names)

	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, table.Row{name, fmt.Sprintf("%v", fields[name])})
	}
	return rows
}
