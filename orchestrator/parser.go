package orchestrator

import (
	"strings"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/internal/xjson"
	"github.com/AlpaslanErdag/Orchestrator/model"
)

// Recognized free-text shapes: the first balanced {...} block in the
// response must decode as a JSON object naming a tool under one of
// nameKeys, with optional arguments under one of argKeys (an object, or a
// string that itself decodes to an object). Anything else, including prose
// that happens to contain braces or an object without a name key, is
// ordinary text rather than a tool call. This deliberately errs on the side
// of prose to avoid misclassifying legitimate answers.
var (
	nameKeys = []string{"tool", "tool_name", "name"}
	argKeys  = []string{"arguments", "args", "params"}
)

// resolveDecision classifies one model response. The structured tool-call
// field wins; absent that, free-text extraction runs over the response text;
// absent both, the text is the final answer.
func resolveDecision(resp *model.Response) core.Decision {
	if resp.ToolCall != nil {
		return core.ToolInvocation(*resp.ToolCall)
	}
	return classifyText(resp.Text)
}

// classifyText resolves a free-text response into exactly one Decision. A
// brace block that decodes and names a tool becomes an invocation; a block
// that clearly opens like a tool call but is broken JSON is malformed (it
// must not reach the user as an answer); everything else is the answer.
func classifyText(text string) core.Decision {
	block, ok := firstJSONObject(text)
	if !ok {
		if looksLikeToolCall(text) { // opened like a call but never closed
			return core.Malformed(text)
		}
		return core.FinalAnswer(text)
	}
	if call, ok := extractInlineToolCall(block); ok {
		return core.ToolInvocation(call)
	}
	if looksLikeToolCall(text) {
		return core.Malformed(text)
	}
	return core.FinalAnswer(text)
}

// looksLikeToolCall reports whether text opens with an unparseable object
// that names one of the tool-call keys, i.e. an intended but broken call.
func looksLikeToolCall(text string) bool {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	for _, k := range nameKeys {
		if strings.HasPrefix(trimmed, `{"`+k+`"`) || strings.HasPrefix(trimmed, `{ "`+k+`"`) {
			return true
		}
	}
	return false
}

// extractInlineToolCall decodes a candidate JSON block into a tool call. The
// returned call carries re-serialized canonical arguments so downstream
// handling is identical to the structured path.
func extractInlineToolCall(block string) (core.ToolCall, bool) {
	var obj map[string]any
	if err := xjson.Unmarshal([]byte(block), &obj); err != nil {
		return core.ToolCall{}, false
	}

	var name string
	for _, k := range nameKeys {
		if s, ok := obj[k].(string); ok && s != "" {
			name = s
			break
		}
	}
	if name == "" {
		return core.ToolCall{}, false
	}

	args := map[string]any{}
	for _, k := range argKeys {
		switch v := obj[k].(type) {
		case map[string]any:
			args = v
		case string:
			var nested map[string]any
			if err := xjson.Unmarshal([]byte(v), &nested); err == nil {
				args = nested
			}
		default:
			continue
		}
		break
	}

	raw, err := xjson.Marshal(args)
	if err != nil {
		return core.ToolCall{}, false
	}
	return core.ToolCall{Name: name, Arguments: string(raw)}, true
}

// firstJSONObject returns the first balanced top-level {...} block in text,
// tracking string literals and escapes so braces inside quoted values do not
// terminate the scan.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
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
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// parseArguments decodes a serialized argument payload into the map shape
// the registry validates. An empty payload yields an empty map; anything
// that is not a JSON object is an error.
func parseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := xjson.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
