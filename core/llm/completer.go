package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/siherrmann/manualrag/helper"
)

const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser
)

// Message is a role tagged chat message.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest describes one call to a language model.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Completer returns the text of a model completion.
type Completer interface {
	Complete(ctx context.Context, request CompletionRequest) (string, error)
}

// OpenAICompleter implements Completer with the chat completions endpoint.
type OpenAICompleter struct {
	client *openai.Client
}

// NewOpenAICompleter creates a new completer.
func NewOpenAICompleter(client *openai.Client) *OpenAICompleter {
	return &OpenAICompleter{client: client}
}

// NewOpenAIClient creates an OpenAI client, pointed at baseURL when it is not empty.
func NewOpenAIClient(apiKey string, baseURL string) *openai.Client {
	if baseURL == "" {
		return openai.NewClient(apiKey)
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	return openai.NewClientWithConfig(config)
}

// Complete sends the request and returns the content of the first choice.
func (c *OpenAICompleter) Complete(ctx context.Context, request CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(request.Messages))
	for _, m := range request.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       request.Model,
		Messages:    messages,
		Temperature: request.Temperature,
		MaxTokens:   request.MaxTokens,
	})
	if err != nil {
		return "", helper.NewKindError(helper.ErrKindCompletion, "create chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", helper.NewKindError(helper.ErrKindCompletion, "create chat completion", errors.New("no choices returned from API"))
	}

	return resp.Choices[0].Message.Content, nil
}
