package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/vitrine/pkg/entity"
)

// DocsMarkdown formats entity documentation as a markdown table. Blobs with
// "type" and "desc" keys fill their own columns; anything else is shown as JSON.
func DocsMarkdown(name string, docs *entity.Map) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if docs == nil || docs.Len() == 0 {
		sb.WriteString("_No documented exposures._\n")
		return sb.String()
	}

	sb.WriteString("| Field | Type | Description |\n")
	sb.WriteString("|---|---|---|\n")
	for pair := docs.Oldest(); pair != nil; pair = pair.Next() {
		typ, desc := describe(pair.Value)
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", pair.Key, cell(typ), cell(desc))
	}
	return sb.String()
}

func describe(v any) (typ, desc string) {
	switch d := v.(type) {
	case string:
		return "", d
	case map[string]any:
		typ, _ = d["type"].(string)
		desc, _ = d["desc"].(string)
		if typ != "" || desc != "" {
			return typ, desc
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Sprint(v)
	}
	return "", string(b)
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
