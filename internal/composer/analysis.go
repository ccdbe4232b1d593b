package composer

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/college-essay-ai/essay-platform/internal/model"
)

// ParseAnalysis extracts the structured critique from an analysis response.
// The response follows the section format requested by ComposeAnalysisPrompt;
// sections the model omitted simply stay empty. The raw text is always kept
// alongside, so a loosely formatted response loses nothing.
func ParseAnalysis(text string) *model.AnalysisMetadata {
	meta := &model.AnalysisMetadata{}

	section := ""
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if heading, ok := parseHeading(line); ok {
			switch {
			case strings.Contains(heading, "overall assessment"):
				section = "score"
			case strings.Contains(heading, "strengths"):
				section = "strengths"
			case strings.Contains(heading, "areas for improvement"):
				section = "weaknesses"
			case strings.Contains(heading, "recommendations"):
				section = "suggestions"
			default:
				section = ""
			}
			continue
		}

		switch section {
		case "score":
			if meta.Score == 0 {
				if score, ok := parseScore(line); ok {
					meta.Score = score
				}
			}
		case "strengths":
			if item, ok := parseListItem(line); ok {
				meta.Strengths = append(meta.Strengths, item)
			}
		case "weaknesses":
			if item, ok := parseListItem(line); ok {
				meta.Weaknesses = append(meta.Weaknesses, item)
			}
		case "suggestions":
			if item, ok := parseListItem(line); ok {
				meta.Suggestions = append(meta.Suggestions, item)
			}
		}
	}

	return meta
}

func parseHeading(line string) (string, bool) {
	if !strings.HasPrefix(line, "**") {
		return "", false
	}
	heading := strings.Trim(line, "*: ")
	return strings.ToLower(heading), true
}

// parseScore finds the first "N/10" or "N out of 10" style score in a line.
func parseScore(line string) (float64, bool) {
	lowered := strings.ToLower(line)
	for _, marker := range []string{"/10", " out of 10"} {
		idx := strings.Index(lowered, marker)
		if idx < 0 {
			continue
		}
		start := idx
		for start > 0 && (isDigit(lowered[start-1]) || lowered[start-1] == '.') {
			start--
		}
		if start == idx {
			continue
		}
		if score, err := strconv.ParseFloat(lowered[start:idx], 64); err == nil && score >= 0 && score <= 10 {
			return score, true
		}
	}
	return 0, false
}

func parseListItem(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	// Numbered items like "1. ..." appear in some responses.
	if len(line) > 2 && isDigit(line[0]) && (line[1] == '.' || line[1] == ')') {
		return strings.TrimSpace(line[2:]), true
	}
	return "", false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
