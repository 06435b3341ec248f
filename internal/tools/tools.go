// Package tools holds the MCP tool definitions and handlers. Each tool is
// a small struct exposing Definition and Handle, registered by the server
// composition root. Handlers render markdown so chat clients can show the
// results directly.
package tools

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/sprint-sense/internal/domain"
)

// splitMembers parses a comma-separated member list.
func splitMembers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" { out = append(out, v) }
	}
	return out
}

func fmtPts(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func severityMark(s domain.Severity) string {
	switch s {
	case domain.SeverityHigh:
		return "🔴"
	case domain.SeverityMedium:
		return "🟠"
	default:
		return "🟡"
	}
}

func writeRisks(b *strings.Builder, risks []domain.Risk) {
	for _, r := range risks {
		fmt.Fprintf(b, "- %s **%s**: %s\n", severityMark(r.Severity), r.Type, r.Message)
		if r.SuggestedAction != "" { fmt.Fprintf(b, "  - suggested: %s\n", r.SuggestedAction) }
	}
}

func writeRecommendations(b *strings.Builder, recs []domain.Recommendation) {
	for _, r := range recs {
		fmt.Fprintf(b, "- %s **%s**: %s\n", severityMark(r.Severity), r.Type, r.Message)
		if r.SuggestedAction != "" { fmt.Fprintf(b, "  - suggested: %s\n", r.SuggestedAction) }
	}
}

// sortedKeys returns map keys in stable order for rendering.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m { keys = append(keys, k) }
	sort.Strings(keys)
	return keys
}
