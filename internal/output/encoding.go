// Package output formats cmd/codegraph's two JSON response shapes
// (BuildResponseCLI, SearchResponseCLI) deterministically: sorted map keys,
// rounded floats (search scores), and omitted nil fields, so a build/search
// run produces byte-identical JSON across repeated invocations of the same
// repo state.
package output

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// DeterministicEncode marshals v to compact JSON with sorted map keys,
// rounded floats, and nil fields omitted.
func DeterministicEncode(v interface{}) ([]byte, error) {
	normalized := normalizeValue(v)

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(normalized); err != nil {
		return nil, err
	}

	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	return result, nil
}

// DeterministicEncodeIndented is DeterministicEncode with indentation, used
// by cmd/codegraph's --format=json output.
func DeterministicEncodeIndented(v interface{}, indent string) ([]byte, error) {
	normalized := normalizeValue(v)
	return json.MarshalIndent(normalized, "", indent)
}

// normalizeValue recursively normalizes a value for deterministic encoding
func normalizeValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}

	val := reflect.ValueOf(v)

	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		return normalizeMap(val)
	case reflect.Slice, reflect.Array:
		return normalizeSlice(val)
	case reflect.Struct:
		return normalizeStruct(val)
	case reflect.Float32, reflect.Float64:
		return RoundFloat(val.Float())
	case reflect.Interface:
		if val.IsNil() {
			return nil
		}
		return normalizeValue(val.Interface())
	default:
		return v
	}
}

// normalizeMap converts a map to an ordered map for deterministic JSON output
func normalizeMap(val reflect.Value) map[string]interface{} {
	if val.IsNil() {
		return nil
	}

	result := make(map[string]interface{})
	iter := val.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		value := normalizeValue(iter.Value().Interface())
		if value != nil {
			result[key] = value
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// normalizeSlice normalizes a slice or array
func normalizeSlice(val reflect.Value) interface{} {
	if val.Kind() == reflect.Slice && val.IsNil() {
		return nil
	}

	length := val.Len()
	if length == 0 {
		return nil
	}

	result := make([]interface{}, length)
	for i := 0; i < length; i++ {
		result[i] = normalizeValue(val.Index(i).Interface())
	}

	return result
}

// normalizeStruct converts a struct to a map for deterministic JSON output
func normalizeStruct(val reflect.Value) map[string]interface{} {
	result := make(map[string]interface{})
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		tagName, omitEmpty := parseJSONTag(jsonTag)
		if tagName == "" {
			tagName = field.Name
		}

		normalized := normalizeValue(fieldVal.Interface())

		if omitEmpty && isZeroValue(normalized) {
			continue
		}

		if normalized != nil {
			result[tagName] = normalized
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// parseJSONTag parses a JSON struct tag
func parseJSONTag(tag string) (name string, omitEmpty bool) {
	if tag == "" {
		return "", false
	}

	parts := []string{}
	current := ""
	for _, ch := range tag {
		if ch == ',' {
			parts = append(parts, current)
			current = ""
		} else {
			current += string(ch)
		}
	}
	if current != "" {
		parts = append(parts, current)
	}

	name = parts[0]
	for i := 1; i < len(parts); i++ {
		if parts[i] == "omitempty" {
			omitEmpty = true
		}
	}

	return name, omitEmpty
}

func isZeroValue(v interface{}) bool {
	if v == nil {
		return true
	}

	switch val := v.(type) {
	case bool:
		return !val
	case int, int8, int16, int32, int64:
		return val == 0
	case uint, uint8, uint16, uint32, uint64:
		return val == 0
	case float32, float64:
		return val == 0
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}
