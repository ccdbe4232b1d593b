// Package composer renders structured essay parameters into the request text
// sent to the completion service. All transformations are deterministic and
// stateless; required fields fail closed before any request text is produced.
package composer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingPrompt is returned when a generation has no topic prompt.
	ErrMissingPrompt = errors.New("essay prompt is required")
	// ErrMissingEssay is returned when an edit or analysis has no essay text.
	ErrMissingEssay = errors.New("essay content is required")
	// ErrMissingInstructions is returned when an edit has no instructions.
	ErrMissingInstructions = errors.New("editing instructions are required")
	// ErrMissingImageURL is returned when an image analysis has no image.
	ErrMissingImageURL = errors.New("image URL is required")
)

// GenerationParams are the inputs to a generation prompt.
type GenerationParams struct {
	TopicPrompt     string
	WordCount       int
	Tone            string
	Style           string
	PersonalDetails string
}

// AnalysisParams are the inputs to an analysis prompt.
type AnalysisParams struct {
	EssayText       string
	OriginalPrompt  string
	PersonalDetails string
}

// EditParams are the inputs to an edit prompt.
type EditParams struct {
	EssayText       string
	Instructions    string
	PersonalDetails string
}

// ImageParams are the inputs to an image-grounded generation prompt.
type ImageParams struct {
	ImageURL        string
	Context         string
	WordCount       int
	Tone            string
	Style           string
	PersonalDetails string
}

// ComposeGenerationPrompt builds the system and user prompts for essay
// generation. Every provided field is embedded verbatim; absent optional
// fields contribute no clause at all.
func ComposeGenerationPrompt(p GenerationParams) (systemPrompt, userPrompt string, err error) {
	if strings.TrimSpace(p.TopicPrompt) == "" {
		return "", "", ErrMissingPrompt
	}

	var sys strings.Builder
	sys.WriteString("You are an expert college admissions essay writer with years of experience helping students craft compelling personal statements. Your goal is to create authentic, engaging essays that showcase the student's unique voice and experiences.\n\n")
	sys.WriteString("Key Guidelines:\n")
	if p.Tone != "" && p.Style != "" {
		fmt.Fprintf(&sys, "- Write in a %s tone with a %s style\n", p.Tone, p.Style)
	} else if p.Tone != "" {
		fmt.Fprintf(&sys, "- Write in a %s tone\n", p.Tone)
	} else if p.Style != "" {
		fmt.Fprintf(&sys, "- Write with a %s style\n", p.Style)
	}
	if p.WordCount > 0 {
		fmt.Fprintf(&sys, "- Target approximately %d words\n", p.WordCount)
	}
	sys.WriteString("- Focus on personal experiences and growth\n")
	sys.WriteString("- Show, don't just tell\n")
	sys.WriteString("- Be authentic and avoid clichés\n")
	sys.WriteString("- Use vivid, specific details\n")
	sys.WriteString("- Create a strong narrative arc\n")
	sys.WriteString("- End with reflection or insight\n")
	sys.WriteString("- Ensure excellent grammar and flow\n")
	if p.PersonalDetails != "" {
		fmt.Fprintf(&sys, "\nPersonal Details to Incorporate: %s\n", p.PersonalDetails)
	}
	sys.WriteString("\nImportant: Write the essay directly without any meta-commentary or explanations. The response should be the essay itself.")

	var usr strings.Builder
	usr.WriteString("Write a college admission essay based on this prompt:\n\n")
	fmt.Fprintf(&usr, "\"%s\"\n\nRequirements:\n", p.TopicPrompt)
	if p.Tone != "" {
		fmt.Fprintf(&usr, "- Tone: %s\n", p.Tone)
	}
	if p.Style != "" {
		fmt.Fprintf(&usr, "- Style: %s\n", p.Style)
	}
	if p.WordCount > 0 {
		fmt.Fprintf(&usr, "- Target length: %d words\n", p.WordCount)
	}
	usr.WriteString("- Focus on personal experience and growth\n")
	usr.WriteString("- Be authentic and engaging")

	return sys.String(), usr.String(), nil
}

// ComposeAnalysisPrompt builds the system and user prompts instructing the
// model to produce a structured critique: overall score, strengths,
// weaknesses, and suggestions, in that section order.
func ComposeAnalysisPrompt(p AnalysisParams) (systemPrompt, userPrompt string, err error) {
	if strings.TrimSpace(p.EssayText) == "" {
		return "", "", ErrMissingEssay
	}

	var sys strings.Builder
	sys.WriteString("You are an expert college admissions counselor with decades of experience evaluating personal statements. Your role is to provide comprehensive, constructive feedback on college admission essays.\n\n")
	sys.WriteString("Provide your analysis in the following structured format:\n\n")
	sys.WriteString("**Overall Assessment (1-10 scale)**\n[Give a score and brief explanation]\n\n")
	sys.WriteString("**Content Analysis**\n")
	sys.WriteString("- Prompt Response: [How well does it address the prompt?]\n")
	sys.WriteString("- Personal Voice: [Is the author's unique voice present?]\n")
	sys.WriteString("- Authenticity: [Does it feel genuine and personal?]\n")
	if p.PersonalDetails != "" {
		sys.WriteString("- Personal Details Integration: [How well are personal details incorporated?]\n")
	}
	sys.WriteString("\n**Writing Quality**\n")
	sys.WriteString("- Grammar & Mechanics: [Assessment of technical writing]\n")
	sys.WriteString("- Flow & Structure: [How well does it read?]\n")
	sys.WriteString("- Clarity: [Is the message clear and compelling?]\n\n")
	sys.WriteString("**Strengths**\n[List 3-4 specific strengths with examples]\n\n")
	sys.WriteString("**Areas for Improvement**\n[List 3-4 specific suggestions with examples]\n\n")
	sys.WriteString("**Specific Recommendations**\n[Provide actionable advice for revision]\n\n")
	sys.WriteString("**Final Thoughts**\n[Encouraging summary with next steps]\n\n")
	sys.WriteString("Be constructive, specific, and encouraging. Focus on actionable feedback that will help improve the essay.")

	var usr strings.Builder
	usr.WriteString("Please analyze this college admission essay:\n\n")
	if p.OriginalPrompt != "" {
		fmt.Fprintf(&usr, "Original Prompt: \"%s\"\n", p.OriginalPrompt)
	} else {
		usr.WriteString("No specific prompt provided\n")
	}
	if p.PersonalDetails != "" {
		fmt.Fprintf(&usr, "Personal Details to Consider: %s\n", p.PersonalDetails)
	}
	fmt.Fprintf(&usr, "\nEssay:\n\"%s\"\n\n", p.EssayText)
	usr.WriteString("Please provide a comprehensive analysis following the structured format outlined above.")

	return sys.String(), usr.String(), nil
}

// ComposeEditPrompt builds the system and user prompts instructing the model
// to return only the revised essay text, with no added commentary.
func ComposeEditPrompt(p EditParams) (systemPrompt, userPrompt string, err error) {
	if strings.TrimSpace(p.EssayText) == "" {
		return "", "", ErrMissingEssay
	}
	if strings.TrimSpace(p.Instructions) == "" {
		return "", "", ErrMissingInstructions
	}

	var sys strings.Builder
	sys.WriteString("You are an expert college admissions essay editor with years of experience helping students improve their personal statements. Your goal is to enhance the essay based on the user's specific instructions while maintaining the student's authentic voice and original message.\n\n")
	sys.WriteString("Key Guidelines:\n")
	sys.WriteString("- Follow the user's editing instructions precisely\n")
	sys.WriteString("- Maintain the original tone and style unless specifically asked to change\n")
	sys.WriteString("- Preserve the student's authentic voice and personal experiences\n")
	sys.WriteString("- Improve clarity, flow, and impact\n")
	sys.WriteString("- Keep the same general structure unless asked to reorganize\n")
	sys.WriteString("- Ensure excellent grammar and flow\n")
	sys.WriteString("- Make the essay more engaging and compelling\n")
	if p.PersonalDetails != "" {
		fmt.Fprintf(&sys, "\nPersonal Details to Consider: %s\n", p.PersonalDetails)
	}
	sys.WriteString("\nImportant: Return only the edited essay without any meta-commentary or explanations. The response should be the improved essay itself.")

	var usr strings.Builder
	usr.WriteString("Please edit the following college essay based on these instructions:\n\n")
	fmt.Fprintf(&usr, "Editing Instructions: \"%s\"\n\n", p.Instructions)
	fmt.Fprintf(&usr, "Original Essay:\n\"%s\"\n\n", p.EssayText)
	usr.WriteString("Please provide the edited version of the essay that incorporates the requested changes while maintaining the student's authentic voice and original message.")

	return sys.String(), usr.String(), nil
}

// ComposeImageAnalysisPrompt builds the system and user prompts for
// image-grounded generation. The image itself travels as a separate content
// part on the boundary call; only the textual portion is composed here.
func ComposeImageAnalysisPrompt(p ImageParams) (systemPrompt, userPrompt string, err error) {
	if strings.TrimSpace(p.ImageURL) == "" {
		return "", "", ErrMissingImageURL
	}

	var sys strings.Builder
	sys.WriteString("You are an expert college admissions counselor and essay writer. Your task is to analyze an image and create a compelling college admission essay based on it.\n\n")
	sys.WriteString("For the analysis, provide:\n")
	sys.WriteString("1. **Image Description**: What you see in the image\n")
	sys.WriteString("2. **Potential Essay Themes**: How this image could relate to college admission topics\n")
	sys.WriteString("3. **Personal Connection Ideas**: Ways a student might connect this to their experiences\n")
	sys.WriteString("4. **Writing Suggestions**: How to approach writing about this image\n\n")
	sys.WriteString("For the essay, focus on:\n")
	sys.WriteString("- Personal experiences and growth\n")
	sys.WriteString("- Authentic voice and storytelling\n")
	sys.WriteString("- College admission relevance\n")
	sys.WriteString("- Strong narrative structure\n")
	if p.Tone != "" {
		fmt.Fprintf(&sys, "- A %s tone\n", p.Tone)
	}
	if p.Style != "" {
		fmt.Fprintf(&sys, "- A %s style\n", p.Style)
	}
	if p.WordCount > 0 {
		fmt.Fprintf(&sys, "- A target length of %d words\n", p.WordCount)
	}
	if p.PersonalDetails != "" {
		fmt.Fprintf(&sys, "- Incorporate these personal details: %s\n", p.PersonalDetails)
	}
	sys.WriteString("\nImportant: Provide both analysis and essay in your response.")

	var usr strings.Builder
	usr.WriteString("Please analyze this image and create a college admission essay:\n\n")
	if p.Context != "" {
		fmt.Fprintf(&usr, "Additional Context: %s\n", p.Context)
	}
	if p.PersonalDetails != "" {
		fmt.Fprintf(&usr, "Personal Details to Incorporate: %s\n", p.PersonalDetails)
	}
	usr.WriteString("\nRequirements:\n")
	if p.Tone != "" {
		fmt.Fprintf(&usr, "- Tone: %s\n", p.Tone)
	}
	if p.Style != "" {
		fmt.Fprintf(&usr, "- Style: %s\n", p.Style)
	}
	if p.WordCount > 0 {
		fmt.Fprintf(&usr, "- Target length: %d words\n", p.WordCount)
	}
	usr.WriteString("- Focus on personal experience and growth\n")
	usr.WriteString("- Be authentic and engaging\n\n")
	usr.WriteString("Please provide both an analysis of the image and a complete essay based on it.")

	return sys.String(), usr.String(), nil
}
