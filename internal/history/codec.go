package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// CurrentVersion is the schema version written by Encode.
const CurrentVersion = 1

// envelope is the persisted form:
//
//	{"version":1,"queries":[["swift","2026-10-16T09:00:00.123456789Z"]]}
type envelope struct {
	Version int         `json:"version"`
	Queries [][2]string `json:"queries"`
}

// UnsupportedVersionError is returned when the slot was written by a newer
// program. The data is left in place.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported history format version %d (newest known is %d)", e.Version, CurrentVersion)
}

// Encode serializes entries as a versioned list of [query, timestamp]
// pairs, most recent first.
func Encode(entries map[string]time.Time) (string, error) {
	records := recordsFrom(entries)

	env := envelope{
		Version: CurrentVersion,
		Queries: make([][2]string, 0, len(records)),
	}
	for _, r := range records {
		env.Queries = append(env.Queries, [2]string{r.Query, r.LastUsedAt.UTC().Format(time.RFC3339Nano)})
	}

	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to encode history: %w", err)
	}
	return string(data), nil
}

// Decode parses the persisted form. It also accepts the legacy unversioned
// layout, a bare array of pairs, which is rewritten on the next Encode.
// Keys are normalized; when two keys collapse to one the later time wins.
func Decode(data string) (map[string]time.Time, error) {
	raw := bytes.TrimSpace([]byte(data))
	if len(raw) == 0 {
		return map[string]time.Time{}, nil
	}

	var pairs [][2]string
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &pairs); err != nil {
			return nil, fmt.Errorf("failed to decode legacy history: %w", err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("failed to decode history: %w", err)
		}
		if env.Version < 1 {
			return nil, fmt.Errorf("history is missing a format version")
		}
		if env.Version > CurrentVersion {
			return nil, &UnsupportedVersionError{Version: env.Version}
		}
		pairs = env.Queries
	default:
		return nil, fmt.Errorf("failed to decode history: unexpected leading byte %q", raw[0])
	}

	entries := make(map[string]time.Time, len(pairs))
	for _, p := range pairs {
		q := Normalize(p[0])
		if q == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, p[1])
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp for %q: %w", q, err)
		}
		if prev, ok := entries[q]; !ok || t.After(prev) {
			entries[q] = t
		}
	}

	return entries, nil
}
