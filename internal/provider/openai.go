package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
// (Gemini's OpenAI endpoint, Ollama's /v1, OpenAI itself).
type OpenAIProvider struct {
	name        string
	client      *openai.Client
	model       string
	temperature float64
	limiter     *rate.Limiter
}

// NewOpenAI creates a provider. limiter may be nil.
func NewOpenAI(name, endpoint, model, apiKey string, temperature float64, limiter *rate.Limiter) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		config.BaseURL = strings.TrimRight(endpoint, "/")
	}

	return &OpenAIProvider{
		name:        name,
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		limiter:     limiter,
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Model returns the configured model.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Chat sends messages and returns the complete response.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, opts ...CallOption) (string, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	o := applyCallOptions(opts)
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    mergeSystemMessages(toOpenAIMessages(messages)),
		Temperature: float32(p.temperature),
	}
	if o.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s chat: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		result[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return result
}

// mergeSystemMessages collects every system message into one leading message.
// If only system messages exist, a minimal "Begin." user message is added
// because chat completion endpoints require a non-system turn.
func mergeSystemMessages(messages []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	if len(messages) == 0 {
		return messages
	}

	var systemBuffer strings.Builder
	nonSystemMessages := make([]openai.ChatCompletionMessage, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == openai.ChatMessageRoleSystem {
			if systemBuffer.Len() > 0 {
				systemBuffer.WriteString("\n\n")
			}
			systemBuffer.WriteString(msg.Content)
		} else {
			nonSystemMessages = append(nonSystemMessages, msg)
		}
	}

	result := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemBuffer.Len() > 0 {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemBuffer.String(),
		})
	}
	result = append(result, nonSystemMessages...)

	if len(nonSystemMessages) == 0 {
		log.Debug().Msg("Only system messages present, adding minimal user message")
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "Begin.",
		})
	}

	return result
}
