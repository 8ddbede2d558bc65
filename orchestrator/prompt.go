package orchestrator

import (
	"fmt"
	"strings"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/tool"
)

// BuildSystemPrompt assembles the system prompt for an agent: identity, role
// and backstory, the allowed tool descriptors, the tool-use rules, and the
// ReAct instruction closing the prompt.
func BuildSystemPrompt(def core.AgentDefinition, allowed []*tool.Descriptor) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("You are an AI agent named '%s' with the role '%s'.", def.Name, def.Role))
	if def.Backstory != "" {
		parts = append(parts, "Background and instructions: "+def.Backstory)
	}

	if len(allowed) > 0 {
		names := make([]string, len(allowed))
		var schemas strings.Builder
		for i, d := range allowed {
			names[i] = d.Name
			schemas.WriteString(fmt.Sprintf("- %s: %s\n", d.Name, d.Description))
		}
		parts = append(parts, fmt.Sprintf("You have access to these tools: %s.", strings.Join(names, ", ")))
		parts = append(parts, "Tool reference:\n"+strings.TrimRight(schemas.String(), "\n"))
		parts = append(parts,
			"CRITICAL RULES FOR TOOL USE, follow these without exception:\n"+
				"1. NEVER ask the user for a URL or any other input if your instructions already specify "+
				"a website, URL, or data source. Extract it from your instructions and call the tool immediately.\n"+
				"2. If the task involves producing a document or report, call the report tool with the "+
				"collected content, do not just describe the output.\n"+
				`3. ALWAYS call tools by emitting a valid function call (or a JSON block with {"tool": "<name>", "arguments": {...}}). `+
				"Never describe what you would do; execute it.\n"+
				"4. After receiving a tool observation, synthesise a clear final answer for the user.")
	}

	parts = append(parts,
		"Follow the ReAct loop strictly: THINK → ACT (call a tool) → OBSERVE → repeat until done → give a concise final answer.")

	return strings.Join(parts, "\n")
}
