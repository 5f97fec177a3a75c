package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

var errUnsupportedTimestamp = errors.New("unsupported timestamp")

// firestoreTimestamp covers both the client ({seconds, nanoseconds}) and the admin SDK
// ({_seconds, _nanoseconds}) serialisations.
type firestoreTimestamp struct {
	Seconds      *int64 `json:"seconds"`
	Nanoseconds  int64  `json:"nanoseconds"`
	USeconds     *int64 `json:"_seconds"`
	UNanoseconds int64  `json:"_nanoseconds"`
}

// NormalizeTime converts a serialised timestamp into a UTC time.Time.
//
// Accepted shapes:
//   - null or absent: the zero time
//   - RFC3339 strings, and other date strings understood by dateparse (read as UTC)
//   - numbers: Unix milliseconds
//   - objects with seconds/nanoseconds or _seconds/_nanoseconds
func NormalizeTime(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		return ParseTimeString(s)

	case '{':
		var ts firestoreTimestamp
		if err := json.Unmarshal(raw, &ts); err != nil {
			return time.Time{}, err
		}
		switch {
		case ts.Seconds != nil:
			return time.Unix(*ts.Seconds, ts.Nanoseconds).UTC(), nil
		case ts.USeconds != nil:
			return time.Unix(*ts.USeconds, ts.UNanoseconds).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("%w: object without seconds", errUnsupportedTimestamp)

	default:
		var millis json.Number
		if err := json.Unmarshal(raw, &millis); err != nil {
			return time.Time{}, fmt.Errorf("%w: %s", errUnsupportedTimestamp, raw)
		}
		ms, err := millis.Int64()
		if err != nil {
			f, ferr := millis.Float64()
			if ferr != nil {
				return time.Time{}, fmt.Errorf("%w: %s", errUnsupportedTimestamp, raw)
			}
			ms = int64(f)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
}

// ParseTimeString parses a textual timestamp, preferring RFC3339.
// Strings without a zone are interpreted in UTC.
func ParseTimeString(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errUnsupportedTimestamp, s)
	}
	return t.UTC(), nil
}
