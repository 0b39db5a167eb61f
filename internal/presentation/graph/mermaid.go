package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/vitrine/pkg/declare"
)

// GraphOverlay highlights entities on the graph.
type GraphOverlay struct {
	Focus []string
}

// GenerateMermaid produces a Mermaid flowchart of declared entities and the
// references between them. It applies semantic styling:
// - Entity with root keys: ([Stadium])
// - Collection presenter: [[Subroutine]]
// - Default: [Rectangle]
// Extends edges are dotted; using edges are labeled with the exposure name.
func GenerateMermaid(decls map[string]declare.EntityDecl, overlay *GraphOverlay) string {
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, name := range names {
		decl := decls[name]
		safeID := sanitizeMermaidID(name)

		opener, closer := "[", "]"
		switch {
		case decl.PresentCollection != nil && decl.PresentCollection.Enabled:
			opener, closer = "[[", "]]"
		case len(decl.Root) > 0:
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, name, closer))

		extends, using := decl.References()
		for _, parent := range extends {
			sb.WriteString(fmt.Sprintf("    %s -. \"extends\" .-> %s\n", safeID, sanitizeMermaidID(parent)))
		}
		for _, ref := range using {
			label := strings.ReplaceAll(ref.Field, "\"", "'")
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(ref.Entity)))
		}
	}

	if overlay != nil && len(overlay.Focus) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Focus {
			safeID := sanitizeMermaidID(name)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s focus;\n", safeID))
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
