package dragonbones

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrDocumentShape reports a document whose top level is not an object.
	ErrDocumentShape = errors.New("document is not an object")
	// ErrArrayShape reports a value array whose layout does not match what
	// its record claims.
	ErrArrayShape = errors.New("malformed value array")
)

// Documents are decoded into untyped maps and the exporters are sloppy about
// scalar types, so every field read goes through one of the accessors below.
// They coerce the way a browser would: strings holding numbers count as
// numbers, numbers count as booleans, and so on.

func getBool(raw map[string]any, key string, def bool) bool {
	value, ok := raw[key]
	if !ok {
		return def
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch v {
		case "0", "NaN", "", "false", "null", "undefined":
			return false
		}
		return true
	case float64:
		return v != 0
	case nil:
		return def
	}
	return true
}

func getFloat(raw map[string]any, key string, def float64) float64 {
	value, ok := raw[key]
	if !ok {
		return def
	}
	switch v := value.(type) {
	case float64:
		return v
	case string:
		if v == "NaN" {
			return def
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	case bool:
		if v {
			return 1
		}
		return 0
	case nil:
		return def
	}
	return 0
}

func getInt(raw map[string]any, key string, def int) int {
	return int(getFloat(raw, key, float64(def)))
}

func getString(raw map[string]any, key string, def string) string {
	value, ok := raw[key]
	if !ok {
		return def
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return def
	}
	return fmt.Sprint(value)
}

func getObject(raw map[string]any, key string) map[string]any {
	value, _ := raw[key].(map[string]any)
	return value
}

// numbers coerces a raw array to floats. context names the array in the
// shape error.
func numbers(value any, context string) ([]float64, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("dragonbones: %s: %w", context, ErrArrayShape)
	}
	out := make([]float64, len(list))
	for i, item := range list {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("dragonbones: %s[%d]: %w", context, i, ErrArrayShape)
		}
		out[i] = f
	}
	return out, nil
}

// round matches ECMAScript Math.round: ties round toward positive infinity,
// so round(-0.5) is 0 where math.Round would give -1. Every fixed-point
// value in the binary sections is rounded this way.
func round(value float64) int {
	return int(math.Floor(value + 0.5))
}
