// Package mcputils binds loosely typed MCP tool arguments to Go structs.
package mcputils

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is implemented by mcp.CallToolRequest.
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// CoerceBindArguments binds request arguments to target using json tags.
// Clients often send every value as a string, including JSON-encoded arrays
// and objects, so strings are coerced into the target field's kind.
func CoerceBindArguments[T any](request ArgumentGetter, target *T) error {
	return Decode(request.GetArguments(), target)
}

// Decode binds a raw argument map to target with the same coercion rules.
func Decode(args map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}

// jsonStringHook parses string values that hold JSON for slice, map, struct,
// bool and numeric targets. Anything it cannot parse passes through unchanged.
func jsonStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw, _ := data.(string)
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Slice:
		if isJSONArray(trimmed) {
			ptr := reflect.New(to)
			if err := json.Unmarshal([]byte(trimmed), ptr.Interface()); err == nil {
				return ptr.Elem().Interface(), nil
			}
		}
	case reflect.Map, reflect.Struct:
		if isJSONObject(trimmed) {
			var result any
			if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
				return result, nil
			}
		}
	case reflect.Bool:
		if trimmed == "true" || trimmed == "false" {
			return trimmed == "true", nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		var num json.Number
		if err := json.Unmarshal([]byte(trimmed), &num); err == nil {
			return num, nil
		}
	}

	return data, nil
}

func isJSONArray(s string) bool {
	return strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}

func isJSONObject(s string) bool {
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}
