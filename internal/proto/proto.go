// Package proto shared protocol.
package proto

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrMalformedResponse happens when a completion response has no first
// choice to read the content from.
var ErrMalformedResponse = errors.New("malformed response: no choices")

// HTTPError is returned when the API answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// Temporary reports whether trying again later could succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// Message is a message in the conversation.
type Message struct {
	Role    string
	Content string
}

// Request is a chat request.
type Request struct {
	Messages        []Message
	API             string
	Model           string
	Temperature     *float64
	TopP            *float64
	PresencePenalty *float64
	MaxTokens       *int64
}

// Conversation is a conversation.
type Conversation []Message

func (cc Conversation) String() string {
	var sb strings.Builder
	for _, msg := range cc {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			sb.WriteString("**System**: ")
		case RoleUser:
			sb.WriteString("**User**: ")
		case RoleAssistant:
			sb.WriteString("**Assistant**: ")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
