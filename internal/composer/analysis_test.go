package composer

import (
	"reflect"
	"testing"
)

func TestParseAnalysis(t *testing.T) {
	text := `**Overall Assessment (1-10 scale)**
I would rate this essay 7.5/10. It shows promise but needs work.

**Content Analysis**
- Prompt Response: Addresses the prompt directly.

**Strengths**
- Vivid opening scene
- Authentic voice throughout
- Clear narrative arc

**Areas for Improvement**
- The conclusion feels rushed
- Some sentences run long

**Specific Recommendations**
1. Expand the final reflection
2. Break up the third paragraph

**Final Thoughts**
Keep going, this is close.`

	meta := ParseAnalysis(text)

	if meta.Score != 7.5 {
		t.Errorf("Score = %v, want 7.5", meta.Score)
	}
	wantStrengths := []string{"Vivid opening scene", "Authentic voice throughout", "Clear narrative arc"}
	if !reflect.DeepEqual(meta.Strengths, wantStrengths) {
		t.Errorf("Strengths = %v, want %v", meta.Strengths, wantStrengths)
	}
	wantWeaknesses := []string{"The conclusion feels rushed", "Some sentences run long"}
	if !reflect.DeepEqual(meta.Weaknesses, wantWeaknesses) {
		t.Errorf("Weaknesses = %v, want %v", meta.Weaknesses, wantWeaknesses)
	}
	wantSuggestions := []string{"Expand the final reflection", "Break up the third paragraph"}
	if !reflect.DeepEqual(meta.Suggestions, wantSuggestions) {
		t.Errorf("Suggestions = %v, want %v", meta.Suggestions, wantSuggestions)
	}
}

func TestParseAnalysisScoreVariants(t *testing.T) {
	tests := []struct {
		name string
		line string
		want float64
	}{
		{"slash form", "Score: 8/10", 8},
		{"decimal slash form", "This earns a 6.5/10 overall.", 6.5},
		{"out of form", "I give it 9 out of 10.", 9},
		{"no score", "A strong effort overall.", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ParseAnalysis("**Overall Assessment**\n" + tt.line)
			if meta.Score != tt.want {
				t.Errorf("Score = %v, want %v", meta.Score, tt.want)
			}
		})
	}
}

func TestParseAnalysisLooseText(t *testing.T) {
	meta := ParseAnalysis("This essay is good. I liked the imagery and the pacing.")
	if meta.Score != 0 || meta.Strengths != nil || meta.Weaknesses != nil || meta.Suggestions != nil {
		t.Errorf("loose text should parse to empty metadata, got %+v", meta)
	}
}

func TestParseAnalysisBulletVariants(t *testing.T) {
	text := "**Strengths**\n* Star bullet\n• Unicode bullet\n- Dash bullet"
	meta := ParseAnalysis(text)
	want := []string{"Star bullet", "Unicode bullet", "Dash bullet"}
	if !reflect.DeepEqual(meta.Strengths, want) {
		t.Errorf("Strengths = %v, want %v", meta.Strengths, want)
	}
}
