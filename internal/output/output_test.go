package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/userlens/userlens/internal/core"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestTableFormatLookup(t *testing.T) {
	f := &TableFormatter{}
	rendered, err := f.FormatLookup(&Lookup{
		Login:    "octocat",
		Verified: true,
		Profile:  json.RawMessage(`{"login":"octocat","id":1,"plan":{"name":"pro"}}`),
	})
	require.NoError(t, err)
	require.Contains(t, rendered, "octocat")
	require.Contains(t, rendered, "id")
	// Nested objects are not flattened into rows.
	require.NotContains(t, rendered, "pro")
	require.Contains(t, rendered, "upstream")
}

func TestTableFormatLookupFromCache(t *testing.T) {
	f := &TableFormatter{}
	rendered, err := f.FormatLookup(&Lookup{
		Login:      "octocat",
		Profile:    json.RawMessage(`{}`),
		Provenance: core.Provenance{FromCache: true},
	})
	require.NoError(t, err)
	require.Contains(t, rendered, "cache")
}

func TestJSONFormatLookup(t *testing.T) {
	f := &JSONFormatter{Indent: true}
	rendered, err := f.FormatLookup(&Lookup{
		Login:   "octocat",
		Profile: json.RawMessage(`{"id":1}`),
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Equal(t, "octocat", decoded["login"])
}

func TestFormatFlagList(t *testing.T) {
	tf := &TableFormatter{}
	rendered, err := tf.FormatFlagList([]string{"alice", "mona"})
	require.NoError(t, err)
	require.Contains(t, rendered, "alice")
	require.Contains(t, rendered, "2 flagged")

	jf := &JSONFormatter{}
	rendered, err = jf.FormatFlagList(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", rendered)
}
