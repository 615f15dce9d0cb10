package gateway

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
// The default deployment points BaseURL at Gemini's compatibility layer.
type OpenAIConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

// OpenAICaller is a Caller backed by a chat completion API.
type OpenAICaller struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAICaller builds a caller from cfg.
func NewOpenAICaller(cfg OpenAIConfig) *OpenAICaller {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAICaller{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Call sends the prompt as a single user message. A reply with no choices is
// returned as empty text so the gateway can retry it.
func (c *OpenAICaller) Call(ctx context.Context, prompt Prompt) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(prompt.Images) == 0 {
		msg.Content = prompt.Text
	} else {
		parts := make([]openai.ChatMessagePart, 0, len(prompt.Images)+1)
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: prompt.Text,
		})
		for _, img := range prompt.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    img,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
		msg.MultiContent = parts
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: []openai.ChatCompletionMessage{msg},
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Caller = (*OpenAICaller)(nil)
