// Package docmap normalizes loosely typed record documents, converting
// store-native timestamp representations into time.Time values using an
// explicit per-field schema instead of runtime type sniffing.
package docmap

import (
	"encoding/json"
	"time"
)

// Field describes how a single record field is decoded.
type Field struct {
	timestamp bool
	nested    Schema
}

// Schema maps field names to their decoding rule. Fields absent from
// the schema pass through untouched.
type Schema map[string]Field

// Timestamp declares a field holding a timestamp in any supported
// store-native representation.
func Timestamp() Field {
	return Field{timestamp: true}
}

// Nested declares a field holding a nested record (or an array of
// nested records) decoded with its own schema.
func Nested(s Schema) Field {
	return Field{nested: s}
}

// timeLayouts are the textual timestamp representations accepted from
// the store and from API payloads, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize returns a structurally identical copy of rec in which every
// schema-declared timestamp field holds a time.Time, descending into
// nested records and arrays of records. Values already in native form
// pass through unchanged, so applying Normalize twice yields the same
// result as applying it once. Unconvertible values are passed through
// as-is; Normalize never fails.
func Normalize(rec map[string]interface{}, schema Schema) map[string]interface{} {
	if rec == nil {
		return nil
	}

	out := make(map[string]interface{}, len(rec))
	for key, val := range rec {
		field, ok := schema[key]
		switch {
		case !ok:
			out[key] = val
		case field.timestamp:
			out[key] = coerceTime(val)
		case field.nested != nil:
			out[key] = normalizeNested(val, field.nested)
		default:
			out[key] = val
		}
	}
	return out
}

// normalizeNested applies a nested schema to a value that may be a
// record or an array of records. Arrays of scalars and any other shape
// pass through untouched.
func normalizeNested(val interface{}, schema Schema) interface{} {
	switch v := val.(type) {
	case map[string]interface{}:
		return Normalize(v, schema)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			if rec, ok := elem.(map[string]interface{}); ok {
				out[i] = Normalize(rec, schema)
			} else {
				out[i] = elem
			}
		}
		return out
	default:
		return val
	}
}

// coerceTime converts a store-native timestamp value to time.Time.
// Supported inputs: time.Time (returned unchanged), textual layouts in
// timeLayouts, and numeric epochs (seconds, or milliseconds when the
// magnitude is too large for seconds). Anything else is returned as-is.
func coerceTime(val interface{}) interface{} {
	switch v := val.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v == nil {
			return val
		}
		return *v
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
		return val
	case float64:
		return epochToTime(int64(v))
	case int64:
		return epochToTime(v)
	case int:
		return epochToTime(int64(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return epochToTime(n)
		}
		return val
	default:
		return val
	}
}

// millisThreshold separates epoch seconds from epoch milliseconds:
// values at or above it cannot be plausible second counts.
const millisThreshold = int64(1e12)

func epochToTime(n int64) time.Time {
	if n >= millisThreshold || n <= -millisThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
