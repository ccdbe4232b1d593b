package model

import (
	"time"
)

// MessageType tags the variant of a message.
type MessageType string

const (
	MessageUserInput MessageType = "user_input"
	MessageGenerated MessageType = "generated"
	MessageEdited    MessageType = "edited"
	MessageAnalyzed  MessageType = "analyzed"
	MessageSystem    MessageType = "system"
)

// Message is one user input or one model-produced artifact within a thread.
// Messages are immutable once appended; an edit produces a new message.
//
// The metadata fields form a tagged union keyed by Type: at most one of
// Generation, Analysis, or Edit is set, and only for the matching type.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`

	// Model identifies the remote model that produced this message, when
	// applicable.
	Model string `json:"model,omitempty"`

	Generation *GenerationMetadata `json:"generation,omitempty"`
	Analysis   *AnalysisMetadata   `json:"analysis,omitempty"`
	Edit       *EditMetadata       `json:"edit,omitempty"`
}

// GenerationMetadata carries the parameters a generation request was made with.
type GenerationMetadata struct {
	WordCount int    `json:"word_count,omitempty"`
	Tone      string `json:"tone,omitempty"`
	Style     string `json:"style,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// AnalysisMetadata carries the structured critique parsed from an analysis
// response. Score is 0 when the response did not include one.
type AnalysisMetadata struct {
	Score       float64  `json:"score,omitempty"`
	Strengths   []string `json:"strengths,omitempty"`
	Weaknesses  []string `json:"weaknesses,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// EditMetadata carries the instruction text an edit was requested with.
type EditMetadata struct {
	Instructions string `json:"instructions"`
}
