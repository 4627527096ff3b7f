package pagemine

import (
	"encoding/json"
	"strings"
)

// BuildInstruction augments the base extraction instruction with the schema
// hint, when given, and strict JSON-only output rules. Providers pass the
// result as their system instruction.
func BuildInstruction(instruction string, schema map[string]any) string {
	var sb strings.Builder
	sb.WriteString(instruction)

	if schema != nil {
		if b, err := json.MarshalIndent(schema, "", "  "); err == nil {
			sb.WriteString("\n\nOutput must strictly follow this JSON schema:\n")
			sb.Write(b)
		}
	}

	sb.WriteString("\n\nReturn ONLY the JSON object/list. No markdown formatting, no explanations.")
	return sb.String()
}
