package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/switchboard/internal/utils"
)

// StringAs parses model output into a value of type T. Primitive targets
// (string, bool, integer, unsigned, float kinds) are converted with strconv;
// any other target is treated as JSON. JSON parsing is forgiving: markdown
// code fences are stripped, JSON embedded in narrative text is extracted,
// shape mismatches are bridged (an array where one object was asked for, an
// object where an array was asked for), and almost-valid JSON is repaired
// before the final attempt.
//
//	person, err := parse.StringAs[Person](`{"name": "Ada", "age": 36}`)
//	n, err := parse.StringAs[int]("42")
func StringAs[T any](content string) (T, error) {
	var result T

	switch reflect.TypeFor[T]().Kind() {
	case reflect.String:
		reflect.ValueOf(&result).Elem().SetString(content)
		return result, nil

	case reflect.Bool:
		val, err := strconv.ParseBool(strings.TrimSpace(content))
		if err != nil {
			return result, fmt.Errorf("parsing content as bool: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetBool(val)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(strings.TrimSpace(content), 10, 64)
		if err != nil {
			return result, fmt.Errorf("parsing content as int: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetInt(val)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(strings.TrimSpace(content), 10, 64)
		if err != nil {
			return result, fmt.Errorf("parsing content as uint: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetUint(val)
		return result, nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
		if err != nil {
			return result, fmt.Errorf("parsing content as float: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetFloat(val)
		return result, nil

	default:
		return parseJSON[T](content)
	}
}

// parseJSON handles struct, map, slice, and pointer targets. Attempts, in
// order: the fence-stripped content as-is, each balanced JSON candidate
// found in the text (repairing candidates that do not unmarshal cleanly),
// and finally a repaired version of the whole content for inputs with no
// balanced candidate at all, such as truncated output.
func parseJSON[T any](content string) (T, error) {
	var result T

	stripped := stripCodeFence(strings.TrimSpace(content))
	if err := unmarshalCoerced(stripped, &result); err == nil {
		return result, nil
	}

	for _, candidate := range extractJSONCandidates(stripped) {
		if err := unmarshalCoerced(candidate, &result); err == nil {
			return result, nil
		}
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr != nil {
			continue
		}
		if err := unmarshalCoerced(repaired, &result); err == nil {
			return result, nil
		}
	}

	repaired, repairErr := jsonrepair.JSONRepair(stripped)
	if repairErr != nil {
		return result, fmt.Errorf("content is not valid JSON for %T and repair failed: %v (content: %s)",
			result, repairErr, utils.TruncateString(content, 200))
	}
	if err := unmarshalCoerced(repaired, &result); err != nil {
		return result, fmt.Errorf("unmarshaling repaired JSON as %T: %w (repaired: %s)",
			result, err, utils.TruncateString(repaired, 200))
	}
	return result, nil
}

// unmarshalCoerced unmarshals data into result, bridging the two shape
// mismatches models produce most often: a JSON array where a single object
// was asked for (first element wins) and a bare object where an array was
// asked for (wrapped into a one-element array). The original unmarshal error
// is returned when no bridge applies.
func unmarshalCoerced[T any](data string, result *T) error {
	err := json.Unmarshal([]byte(data), result)
	if err == nil {
		return nil
	}

	trimmed := strings.TrimSpace(data)
	switch kind := targetKind[T](); {
	case (kind == reflect.Struct || kind == reflect.Map) && strings.HasPrefix(trimmed, "["):
		var elements []json.RawMessage
		if json.Unmarshal([]byte(trimmed), &elements) == nil && len(elements) > 0 {
			if json.Unmarshal(elements[0], result) == nil {
				return nil
			}
		}
	case kind == reflect.Slice && strings.HasPrefix(trimmed, "{"):
		if json.Unmarshal([]byte("["+trimmed+"]"), result) == nil {
			return nil
		}
	}
	return err
}

// targetKind reports the kind of T with one level of pointer indirection
// removed, so *Person coerces like Person.
func targetKind[T any]() reflect.Kind {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind()
}

// stripCodeFence removes one surrounding markdown fence, with or without a
// language tag line. Anything not starting with a fence is returned
// untouched.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		// Drop the first line only when it is a language tag, not payload.
		if firstLine := strings.TrimSpace(body[:newline]); !strings.ContainsAny(firstLine, "{[") {
			body = body[newline+1:]
		}
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

// extractJSONCandidates scans text for balanced top-level JSON objects and
// arrays, in order of appearance. String literals and escapes are honored so
// braces inside quoted values do not confuse the depth count. Candidates are
// syntactic only; callers decide whether each one unmarshals.
func extractJSONCandidates(text string) []string {
	var candidates []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{', '[':
			if depth == 0 {
				start = i
			}
			depth++
		case '}', ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidates = append(candidates, text[start:i+1])
				start = -1
			}
		}
	}
	return candidates
}
