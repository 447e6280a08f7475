package output

import (
	"encoding/json"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatLookup renders one lookup as JSON.
func (f *JSONFormatter) FormatLookup(result *Lookup) (string, error) {
	return f.marshal(result)
}

// FormatFlagList renders the flagged logins as a JSON array.
func (f *JSONFormatter) FormatFlagList(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	return f.marshal(keys)
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
