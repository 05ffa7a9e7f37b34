package main

import (
	"fmt"
	"strings"

	"codegraph/internal/output"
)

// OutputFormat selects how a CLI response is rendered.
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format.
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := output.DeterministicEncodeIndented(resp, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *BuildResponseCLI:
		return formatBuildHuman(v), nil
	case *SearchResponseCLI:
		return formatSearchHuman(v), nil
	default:
		json, err := formatJSON(resp)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(human format not available for this command, showing JSON)\n\n%s", json), nil
	}
}

func formatBuildHuman(resp *BuildResponseCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Indexed %s\n", resp.RepoRoot))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Directories: %d\n", resp.Stats.Directories))
	b.WriteString(fmt.Sprintf("Files:       %d\n", resp.Stats.Files))
	b.WriteString(fmt.Sprintf("Entities:    %d\n", resp.Stats.Entities))
	b.WriteString(fmt.Sprintf("\nIndex:       %s\n", resp.IndexBaseDir))
	b.WriteString(fmt.Sprintf("Duration:    %dms\n", resp.DurationMs))
	return b.String()
}

func formatSearchHuman(resp *SearchResponseCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Search Results for: %s\n", resp.Query))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Found %d matches\n\n", resp.TotalMatches))

	for i, r := range resp.Results {
		b.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, r.Name, r.Kind))
		b.WriteString(fmt.Sprintf("   ID:    %s\n", r.EntityID))
		b.WriteString(fmt.Sprintf("   Path:  %s\n", r.Path))
		b.WriteString(fmt.Sprintf("   Score: %.2f\n", r.Score))
		if len(r.MatchedTerms) > 0 {
			b.WriteString(fmt.Sprintf("   Matched: %s\n", strings.Join(r.MatchedTerms, ", ")))
		}
		b.WriteString("\n")
	}

	return b.String()
}
