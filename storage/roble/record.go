package roble

import (
	"encoding/json"
	"strconv"
	"time"
)

// Record is one raw table row. Field names in the store are inconsistent:
// rows written by different client generations carry different spellings
// of the same column ("course" vs "CourseID", "notas" vs "Results", ...),
// so every accessor takes the candidate names in priority order and the
// mapping is written down once per repository.
type Record map[string]json.RawMessage

// Raw returns the first present field among keys.
func (r Record) Raw(keys ...string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := r[k]; ok && len(raw) > 0 && string(raw) != "null" {
			return raw
		}
	}
	return nil
}

// String returns the first non-empty string among keys. Numbers are
// stringified, since some rows store ids as raw numbers.
func (r Record) String(keys ...string) string {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

// Bool returns the first present boolean among keys; the strings "true"
// and "false" count too.
func (r Record) Bool(keys ...string) bool {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if parsed, err := strconv.ParseBool(s); err == nil {
				return parsed
			}
		}
	}
	return false
}

// Int returns the first present integer among keys, accepting both raw
// numbers and numeric strings.
func (r Record) Int(keys ...string) int {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return n
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if parsed, err := strconv.Atoi(s); err == nil {
				return parsed
			}
		}
	}
	return 0
}

// Time returns the first parseable timestamp among keys. RFC3339 strings
// and unix-millisecond numbers are both accepted.
func (r Record) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t, true
			}
			continue
		}
		var millis int64
		if err := json.Unmarshal(raw, &millis); err == nil && millis > 0 {
			return time.Unix(0, millis*int64(time.Millisecond)).UTC(), true
		}
	}
	return time.Time{}, false
}

// StringSlice returns the first present list of strings among keys. A
// JSON-encoded array string and a single bare string are accepted too.
func (r Record) StringSlice(keys ...string) []string {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		if vals, ok := decodeStringSlice(raw); ok {
			return vals
		}
	}
	return nil
}

func decodeStringSlice(raw json.RawMessage) ([]string, bool) {
	var vals []string
	if err := json.Unmarshal(raw, &vals); err == nil {
		return vals, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil, false
	}
	// string-encoded array
	if s[0] == '[' {
		if err := json.Unmarshal([]byte(s), &vals); err == nil {
			return vals, true
		}
	}
	return []string{s}, true
}
