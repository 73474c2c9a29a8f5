package llm

import (
	"encoding/json"
	"strings"

	"github.com/pagetalk/pagetalk/internal/errors"
)

// Completion services disagree on the response wire shape: the standard
// choices list, a bare content field (string or typed parts), or a legacy
// top-level text field. DecodeCompletion normalizes every known shape into
// plain text at the boundary; an unrecognized shape is a decode error,
// never a silently-accepted fallback.

// completionWire covers every shape the decoder accepts. Absent fields
// stay zero, so shape detection is by field presence.
type completionWire struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	Content json.RawMessage `json:"content"`
	Text    string          `json:"text"`
}

// contentPart is one element of a typed content array.
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// DecodeCompletion extracts the completion text from any known response
// shape.
func DecodeCompletion(body []byte) (string, error) {
	var wire completionWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return "", errors.New(errors.ErrCodeDecodeFailed,
			"completion response is not valid JSON", err)
	}

	if len(wire.Choices) > 0 {
		choice := wire.Choices[0]
		if len(choice.Message.Content) > 0 {
			return decodeContent(choice.Message.Content)
		}
		if choice.Text != "" {
			return cleanText(choice.Text), nil
		}
	}

	if len(wire.Content) > 0 {
		return decodeContent(wire.Content)
	}
	if wire.Text != "" {
		return cleanText(wire.Text), nil
	}

	return "", errors.New(errors.ErrCodeDecodeFailed,
		"completion response has no recognized text field", nil)
}

// decodeContent handles a content field that is either a plain string or
// an array of typed parts.
func decodeContent(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return cleanText(s), nil
	}

	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err == nil {
		var b strings.Builder
		for _, p := range parts {
			if p.Type != "" && p.Type != "text" {
				continue
			}
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			return cleanText(b.String()), nil
		}
	}

	return "", errors.New(errors.ErrCodeDecodeFailed,
		"completion content has unrecognized shape", nil)
}

// cleanText trims whitespace and stray question-mark runs some services
// prepend or append to completions.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "?")
	s = strings.TrimRight(s, "?")
	return strings.TrimSpace(s)
}
