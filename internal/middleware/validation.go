package middleware

import (
	"errors"
	"net/url"
	"unicode/utf8"

	"github.com/google/uuid"
)

// maxEssayBytes bounds essay and prompt payloads (~100KB).
const maxEssayBytes = 100000

// ValidateEssayText validates essay content for edit and analysis requests.
func ValidateEssayText(text string) error {
	if len(text) == 0 {
		return errors.New("essay content cannot be empty")
	}
	if len(text) > maxEssayBytes {
		return errors.New("essay content exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("essay content must be valid UTF-8")
	}
	return nil
}

// ValidatePrompt validates a topic prompt or chat message.
func ValidatePrompt(prompt string) error {
	if len(prompt) == 0 {
		return errors.New("prompt cannot be empty")
	}
	if len(prompt) > maxEssayBytes {
		return errors.New("prompt exceeds maximum length")
	}
	if !utf8.ValidString(prompt) {
		return errors.New("prompt must be valid UTF-8")
	}
	return nil
}

// ValidateInstructions validates editing instructions.
func ValidateInstructions(instructions string) error {
	if len(instructions) == 0 {
		return errors.New("editing instructions cannot be empty")
	}
	if len(instructions) > 10000 {
		return errors.New("editing instructions exceed maximum length")
	}
	return nil
}

// ValidateThreadID validates a thread ID.
func ValidateThreadID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid thread ID format")
	}
	return nil
}

// ValidateTitle validates a thread title.
func ValidateTitle(title string) error {
	if len(title) > 256 {
		return errors.New("title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("title must be valid UTF-8")
	}
	return nil
}

// ValidateWordCount validates a requested essay length. Zero means
// unspecified and is allowed.
func ValidateWordCount(count int) error {
	if count == 0 {
		return nil
	}
	if count < 50 || count > 5000 {
		return errors.New("word count must be between 50 and 5000")
	}
	return nil
}

// ValidateImageURL validates an image URL for image-grounded generation.
// Data URLs are accepted so browsers can upload images inline.
func ValidateImageURL(raw string) error {
	if raw == "" {
		return errors.New("image URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid image URL")
	}
	switch u.Scheme {
	case "http", "https", "data":
		return nil
	default:
		return errors.New("image URL must use http, https, or data scheme")
	}
}
