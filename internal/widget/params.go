// internal/widget/params.go
//
// Params and Payload: loosely typed maps with small typed accessors.
//
// Params come from page configuration (JSON), so numbers arrive as float64.
// The accessors coerce the usual JSON shapes (numeric strings included, as
// some upstream APIs quote their numbers) and fall back to the supplied
// default when a key is missing or has the wrong shape.
package widget

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"
)

// Reserved parameter names.
const (
	ParamFetch         = "fetch"
	ParamOffsetSeconds = "offset_seconds"
	ParamWID           = "wid"
	ParamName          = "name"
)

// Params is the per-instance configuration.
type Params map[string]any

// Payload is a decoded data response.
type Payload map[string]any

// normalizeParams merges page params over class defaults and fills the
// offset default.  The result is a fresh map.
func normalizeParams(defaults, page Params) Params {
	out := make(Params, len(defaults)+len(page)+1)
	maps.Copy(out, defaults)
	maps.Copy(out, page)
	if _, ok := out[ParamOffsetSeconds]; !ok {
		out[ParamOffsetSeconds] = 0
	}
	return out
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	return maps.Clone(p)
}

// WithoutFetch returns a copy minus the fetch flag; this is the request body.
func (p Params) WithoutFetch() Params {
	out := p.Clone()
	delete(out, ParamFetch)
	return out
}

func (p Params) Bool(key string) bool         { return asBool(p[key]) }
func (p Params) String(key, def string) string { return asString(p[key], def) }
func (p Params) Int(key string, def int) int   { return asInt(p[key], def) }
func (p Params) Float(key string, def float64) float64 {
	return asFloat(p[key], def)
}

// ErrorMessage returns the server-reported error message, if any.  The
// field is a string; other shapes count only when set to something other
// than a zero value, so `"error": 0` or `"error": false` means no error.
func (d Payload) ErrorMessage() (string, bool) {
	switch e := d["error"].(type) {
	case nil:
		return "", false
	case string:
		return e, e != ""
	case bool:
		if !e {
			return "", false
		}
		return "unknown error", true
	case float64, int, int64, json.Number:
		if asFloat(e, 0) == 0 {
			return "", false
		}
		return asString(e, "unknown error"), true
	default:
		return "unknown error", true
	}
}

func (d Payload) Bool(key string) bool         { return asBool(d[key]) }
func (d Payload) String(key, def string) string { return asString(d[key], def) }
func (d Payload) Int(key string, def int) int   { return asInt(d[key], def) }
func (d Payload) Float(key string, def float64) float64 {
	return asFloat(d[key], def)
}

// Has reports whether key is present and non-null.
func (d Payload) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

// Map returns a nested object, or nil.
func (d Payload) Map(key string) Payload {
	switch m := d[key].(type) {
	case map[string]any:
		return Payload(m)
	case Payload:
		return m
	}
	return nil
}

// Strings returns a nested list of strings, skipping other shapes.
func (d Payload) Strings(key string) []string {
	raw, _ := d[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

//
// coercion helpers
//

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asString(v any, def string) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	}
	return def
}

func asFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return def
}

func asInt(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return def
}
