// Package openai implements [batch.Completer] for OpenAI compatible chat
// completion endpoints.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/sheetprompt/internal/batch"
	"github.com/charmbracelet/sheetprompt/internal/proto"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var _ batch.Completer = &Client{}

// Client is the openai client.
type Client struct {
	*openai.Client
	url string
}

// Config represents the configuration for the OpenAI API client.
type Config struct {
	AuthToken string
	// URL is the full chat completions endpoint, not a base URL.
	URL        string
	HTTPClient *http.Client
	MaxRetries int
	Timeout    time.Duration
}

// DefaultConfig returns the default configuration for the OpenAI API client.
func DefaultConfig(authToken, url string) Config {
	return Config{
		AuthToken: authToken,
		URL:       url,
	}
}

// New creates a new [Client] with the given [Config].
func New(config Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(config.AuthToken),
		option.WithMaxRetries(config.MaxRetries),
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}
	client := openai.NewClient(opts...)
	return &Client{
		Client: &client,
		url:    config.URL,
	}
}

// Complete implements batch.Completer.
func (c *Client) Complete(ctx context.Context, request proto.Request) (string, error) {
	body := openai.ChatCompletionNewParams{
		Model:    request.Model,
		Messages: fromProtoMessages(request.Messages),
	}
	if request.MaxTokens != nil {
		body.MaxTokens = openai.Int(*request.MaxTokens)
	}
	if request.PresencePenalty != nil {
		body.PresencePenalty = openai.Float(*request.PresencePenalty)
	}
	if request.Temperature != nil {
		body.Temperature = openai.Float(*request.Temperature)
	}
	if request.TopP != nil {
		body.TopP = openai.Float(*request.TopP)
	}

	var resp openai.ChatCompletion
	if err := c.Post(ctx, c.url, &body, &resp); err != nil {
		ae := &openai.Error{}
		if errors.As(err, &ae) {
			return "", &proto.HTTPError{StatusCode: ae.StatusCode, Err: err}
		}
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 || !resp.Choices[0].Message.JSON.Content.Valid() {
		return "", proto.ErrMalformedResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func fromProtoMessages(input []proto.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(input))
	for _, msg := range input {
		switch msg.Role {
		case proto.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case proto.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case proto.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}
	return messages
}
