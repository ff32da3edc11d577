package events

import (
	"encoding/json"
	"strconv"
)

// Payload is the decoded message body. Numbers are kept as json.Number so
// identifiers survive without float rounding.
type Payload map[string]any

// Lookup returns the string form of field when it is present and truthy.
func (p Payload) Lookup(field string) (string, bool) {
	v, ok := p[field]
	if !ok || !truthy(v) {
		return "", false
	}
	return stringify(v), true
}

// Require looks up every field and reports the ones that are missing or falsy.
func (p Payload) Require(fields ...string) (map[string]string, []string) {
	values := make(map[string]string, len(fields))
	var missing []string
	for _, f := range fields {
		v, ok := p.Lookup(f)
		if !ok {
			missing = append(missing, f)
			continue
		}
		values[f] = v
	}
	return values, missing
}

// truthy treats null, empty strings, zero numbers, false, and empty containers as absent.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
