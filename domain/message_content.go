package domain

import (
	"strings"
	"team-relay/errors"
	"unicode/utf8"
)

const (
	DefaultMaxContentLength = 50_000
	previewLength           = 100
	previewEllipsis         = "..."
)

type ContentFormat string

const (
	FormatPlain    ContentFormat = "plain"
	FormatMarkdown ContentFormat = "markdown"
)

// ParseContentFormat accepts "plain" and "markdown". An empty string means plain.
func ParseContentFormat(s string) (ContentFormat, error) {
	switch ContentFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPlain:
		return FormatPlain, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	}
	return "", errors.Validation("unsupported content format %q", s)
}

// MessageContent is the immutable body of a question or an answer.
type MessageContent struct {
	text   string
	format ContentFormat
}

// NewMessageContent trims text and rejects it when empty or longer than
// maxLength characters. A maxLength <= 0 falls back to DefaultMaxContentLength.
func NewMessageContent(text string, format ContentFormat, maxLength int) (MessageContent, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxContentLength
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return MessageContent{}, errors.Validation("content must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n > maxLength {
		return MessageContent{}, errors.Validation("content is %d characters long, maximum is %d", n, maxLength)
	}
	parsed, err := ParseContentFormat(string(format))
	if err != nil {
		return MessageContent{}, err
	}
	return MessageContent{text: trimmed, format: parsed}, nil
}

func (c MessageContent) Text() string          { return c.text }
func (c MessageContent) Format() ContentFormat { return c.format }

// Preview returns the text when it fits in 100 characters, otherwise its
// first 97 characters followed by "...".
func (c MessageContent) Preview() string {
	runes := []rune(c.text)
	if len(runes) <= previewLength {
		return c.text
	}
	return string(runes[:previewLength-len(previewEllipsis)]) + previewEllipsis
}
