package composer

import (
	"strings"
)

// Intent is the operation a free-text chat message resolves to.
type Intent string

const (
	IntentGenerate Intent = "generate"
	IntentEdit     Intent = "edit"
	IntentAnalyze  Intent = "analyze"
)

// intentRules are checked in order; the first rule with a matching keyword
// wins. Generate is the fallback when nothing matches.
var intentRules = []struct {
	intent   Intent
	keywords []string
}{
	{IntentEdit, []string{"edit", "revise", "rewrite", "improve", "shorten", "expand", "polish"}},
	{IntentAnalyze, []string{"analyz", "analyse", "grade", "feedback", "review", "score", "critique", "evaluate"}},
}

// ClassifyIntent routes a free-text message to one of the three essay
// operations. This is a coarse keyword heuristic, not a parser; ambiguous
// input falls back to generation.
func ClassifyIntent(text string) Intent {
	lowered := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.intent
			}
		}
	}
	return IntentGenerate
}
