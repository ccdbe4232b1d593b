package composer

import (
	"errors"
	"strings"
	"testing"
)

func TestComposeGenerationPrompt(t *testing.T) {
	tests := []struct {
		name        string
		params      GenerationParams
		wantErr     error
		wantInUser  []string
		wantInSys   []string
		notInEither []string
	}{
		{
			name: "all fields",
			params: GenerationParams{
				TopicPrompt:     "Describe a challenge you overcame",
				WordCount:       650,
				Tone:            "reflective",
				Style:           "narrative",
				PersonalDetails: "first-generation student, robotics club captain",
			},
			wantInUser: []string{
				"Describe a challenge you overcame",
				"Tone: reflective",
				"Style: narrative",
				"Target length: 650 words",
			},
			wantInSys: []string{
				"reflective tone",
				"narrative style",
				"approximately 650 words",
				"first-generation student, robotics club captain",
			},
		},
		{
			name: "prompt only omits optional clauses",
			params: GenerationParams{
				TopicPrompt: "Why this college",
			},
			wantInUser: []string{"Why this college"},
			notInEither: []string{
				"Tone:",
				"Style:",
				"Target length:",
				"Personal Details",
			},
		},
		{
			name:    "missing prompt fails closed",
			params:  GenerationParams{WordCount: 500, Tone: "upbeat"},
			wantErr: ErrMissingPrompt,
		},
		{
			name:    "whitespace prompt fails closed",
			params:  GenerationParams{TopicPrompt: "   \n\t"},
			wantErr: ErrMissingPrompt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, usr, err := ComposeGenerationPrompt(tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if sys != "" || usr != "" {
					t.Error("failed compose must not produce prompt text")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.wantInUser {
				if !strings.Contains(usr, want) {
					t.Errorf("user prompt missing %q", want)
				}
			}
			for _, want := range tt.wantInSys {
				if !strings.Contains(sys, want) {
					t.Errorf("system prompt missing %q", want)
				}
			}
			for _, unwanted := range tt.notInEither {
				if strings.Contains(sys, unwanted) || strings.Contains(usr, unwanted) {
					t.Errorf("prompts should not contain %q when the field is absent", unwanted)
				}
			}
		})
	}
}

func TestComposeEmbedsTextVerbatim(t *testing.T) {
	topic := "Describe your \"defining moment\"\nand what it taught you"
	essay := "First paragraph about the \"big game\".\n\nSecond paragraph, with reflection."
	instructions := "Keep the quote \"never give up\";\nmake both paragraphs tighter"

	_, usr, err := ComposeGenerationPrompt(GenerationParams{TopicPrompt: topic})
	if err != nil {
		t.Fatalf("ComposeGenerationPrompt failed: %v", err)
	}
	if !strings.Contains(usr, topic) {
		t.Errorf("generation prompt does not embed the topic verbatim:\n%s", usr)
	}

	_, usr, err = ComposeAnalysisPrompt(AnalysisParams{EssayText: essay, OriginalPrompt: topic})
	if err != nil {
		t.Fatalf("ComposeAnalysisPrompt failed: %v", err)
	}
	if !strings.Contains(usr, essay) {
		t.Errorf("analysis prompt does not embed the essay verbatim:\n%s", usr)
	}
	if !strings.Contains(usr, topic) {
		t.Errorf("analysis prompt does not embed the original prompt verbatim:\n%s", usr)
	}

	_, usr, err = ComposeEditPrompt(EditParams{EssayText: essay, Instructions: instructions})
	if err != nil {
		t.Fatalf("ComposeEditPrompt failed: %v", err)
	}
	if !strings.Contains(usr, essay) {
		t.Errorf("edit prompt does not embed the essay verbatim:\n%s", usr)
	}
	if !strings.Contains(usr, instructions) {
		t.Errorf("edit prompt does not embed the instructions verbatim:\n%s", usr)
	}
	if strings.Contains(usr, `\"`) || strings.Contains(usr, `\n`) {
		t.Error("edit prompt contains escape sequences instead of raw text")
	}
}

func TestComposeGenerationPromptDeterministic(t *testing.T) {
	p := GenerationParams{TopicPrompt: "A moment of growth", WordCount: 500, Tone: "sincere"}

	sys1, usr1, err1 := ComposeGenerationPrompt(p)
	sys2, usr2, err2 := ComposeGenerationPrompt(p)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if sys1 != sys2 || usr1 != usr2 {
		t.Error("identical params must compose identical prompts")
	}
}

func TestComposeAnalysisPrompt(t *testing.T) {
	tests := []struct {
		name       string
		params     AnalysisParams
		wantErr    error
		wantInUser []string
	}{
		{
			name: "with original prompt and details",
			params: AnalysisParams{
				EssayText:       "My essay about the hospital volunteering summer.",
				OriginalPrompt:  "Describe a meaningful experience",
				PersonalDetails: "aspiring pre-med",
			},
			wantInUser: []string{
				"My essay about the hospital volunteering summer.",
				"Describe a meaningful experience",
				"aspiring pre-med",
			},
		},
		{
			name:   "essay only",
			params: AnalysisParams{EssayText: "Just the essay."},
			wantInUser: []string{
				"Just the essay.",
				"No specific prompt provided",
			},
		},
		{
			name:    "missing essay fails closed",
			params:  AnalysisParams{OriginalPrompt: "A prompt"},
			wantErr: ErrMissingEssay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, usr, err := ComposeAnalysisPrompt(tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.wantInUser {
				if !strings.Contains(usr, want) {
					t.Errorf("user prompt missing %q", want)
				}
			}
			// The structured sections the parser later relies on.
			for _, section := range []string{"Overall Assessment", "Strengths", "Areas for Improvement", "Specific Recommendations"} {
				if !strings.Contains(sys, section) {
					t.Errorf("system prompt missing section %q", section)
				}
			}
		})
	}
}

func TestComposeEditPrompt(t *testing.T) {
	tests := []struct {
		name    string
		params  EditParams
		wantErr error
	}{
		{
			name: "valid",
			params: EditParams{
				EssayText:    "The essay body.",
				Instructions: "Make the opening stronger",
			},
		},
		{
			name:    "missing essay",
			params:  EditParams{Instructions: "shorten it"},
			wantErr: ErrMissingEssay,
		},
		{
			name:    "missing instructions",
			params:  EditParams{EssayText: "The essay body."},
			wantErr: ErrMissingInstructions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, usr, err := ComposeEditPrompt(tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(usr, tt.params.Instructions) {
				t.Error("user prompt missing instructions")
			}
			if !strings.Contains(usr, tt.params.EssayText) {
				t.Error("user prompt missing essay text")
			}
		})
	}
}

func TestComposeImageAnalysisPrompt(t *testing.T) {
	_, _, err := ComposeImageAnalysisPrompt(ImageParams{})
	if !errors.Is(err, ErrMissingImageURL) {
		t.Fatalf("err = %v, want ErrMissingImageURL", err)
	}

	sys, usr, err := ComposeImageAnalysisPrompt(ImageParams{
		ImageURL:  "https://example.com/photo.jpg",
		Context:   "taken during a service trip",
		WordCount: 500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(usr, "taken during a service trip") {
		t.Error("user prompt missing context")
	}
	if !strings.Contains(sys, "500 words") {
		t.Error("system prompt missing word count")
	}
}
