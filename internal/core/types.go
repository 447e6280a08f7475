package core

import (
	"encoding/json"
	"time"
)

// LookupResult is one caller-visible fetch result: the raw upstream payload
// plus provenance. Flag enrichment happens in the caller, not here.
type LookupResult struct {
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
	Provenance Provenance      `json:"provenance"`
}

// Provenance records where a result came from and when.
type Provenance struct {
	LookupID     string     `json:"lookup_id"`
	RequestedAt  time.Time  `json:"requested_at"`
	ResolvedAt   time.Time  `json:"resolved_at"`
	Server       string     `json:"server"`
	FromCache    bool       `json:"from_cache"`
	CacheExpires *time.Time `json:"cache_expires,omitempty"`
	ToolVersion  string     `json:"tool_version,omitempty"`
}
