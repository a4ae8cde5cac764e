package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Input conversion for attribute setters. Values arrive either as native
// Go types (from code or a decoded store document) or as the loose string
// forms the CLI historically accepted: "a b c" for lists, "a=1 b=2" for
// dictionaries.

func isInherit(v any) bool {
	s, ok := v.(string)
	return ok && s == Inherit
}

func inputString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	}
	return "", fmt.Errorf("expected string, got %T", v)
}

func inputBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case string:
		switch strings.ToLower(x) {
		case "true", "1", "on", "yes", "y":
			return true, nil
		case "false", "0", "off", "no", "n", "":
			return false, nil
		}
	}
	return false, fmt.Errorf("cannot interpret %v as bool", v)
}

func inputInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("cannot interpret %q as int: %w", x, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("cannot interpret %v as int", v)
}

func inputFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot interpret %q as float: %w", x, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot interpret %v as float", v)
}

func splitListString(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// inputStringOrList accepts a []string, a decoded []any of strings, or a
// space/comma delimited string.
func inputStringOrList(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("list element %v is not a string", e)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return splitListString(x), nil
	}
	return nil, fmt.Errorf("cannot interpret %T as string list", v)
}

// inputStringOrMap accepts a map, or a space delimited string of k=v
// tokens. Bare tokens become keys with a nil value. With allowMultiples a
// repeated key accumulates its values into a list.
func inputStringOrMap(v any, allowMultiples bool) (map[string]any, error) {
	switch x := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return copyMap(x), nil
	case map[string]string:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = val
		}
		return out, nil
	case string:
		out := map[string]any{}
		for _, token := range strings.Fields(x) {
			key, val, found := strings.Cut(token, "=")
			if key == "" {
				continue
			}
			var value any
			if found {
				value = val
			}
			existing, dup := out[key]
			if dup && allowMultiples {
				if list, ok := existing.([]any); ok {
					out[key] = append(list, value)
				} else {
					out[key] = []any{existing, value}
				}
			} else {
				out[key] = value
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot interpret %T as string map", v)
}

// copyValue deep-copies the container types that can appear in an item
// dict, so cached snapshots never alias live item state.
func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return copyMap(x)
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, val := range x {
			out[k] = val
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	}
	return v
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}
