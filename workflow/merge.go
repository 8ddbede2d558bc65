package workflow

import (
	"fmt"
	"strings"

	"dario.cat/mergo"

	"github.com/AlpaslanErdag/Orchestrator/internal/xjson"
)

// mergePortValues folds the values arriving on one input port into a single
// value. A single value passes through untouched. All-string values
// concatenate in arrival order; maps deep-merge with later arrivals winning
// and slices appended; mixed values fall back to a list.
func mergePortValues(values []any) (any, error) {
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	}

	if all, ok := asStrings(values); ok {
		return strings.Join(all, "\n\n"), nil
	}

	if all, ok := asMaps(values); ok {
		merged := map[string]any{}
		for _, m := range all {
			if err := mergo.Merge(&merged, m, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
				return nil, fmt.Errorf("merge inputs: %w", err)
			}
		}
		return merged, nil
	}

	return values, nil
}

// mergeArgs overlays dynamic argument values onto a static template. The
// dynamic side wins on conflicts.
func mergeArgs(static, dynamic map[string]any) (map[string]any, error) {
	merged := map[string]any{}
	if err := mergo.Merge(&merged, static, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge args: %w", err)
	}
	if err := mergo.Merge(&merged, dynamic, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge args: %w", err)
	}
	return merged, nil
}

func asStrings(values []any) ([]string, bool) {
	out := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

func asMaps(values []any) ([]map[string]any, bool) {
	out := make([]map[string]any, len(values))
	for i, v := range values {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		out[i] = m
	}
	return out, true
}

// stringify renders a port value as task text for an agent node.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		if b, err := xjson.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", t)
	}
}
