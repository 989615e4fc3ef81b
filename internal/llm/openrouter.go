package llm

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel = "openai/gpt-oss-20b:free"
)

type openRouterProvider struct {
	client *openai.Client
	model  string
}

func newOpenRouterProvider(st Settings) (Provider, error) {
	if st.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY missing")
	}
	cfg := openai.DefaultConfig(st.OpenRouterAPIKey)
	cfg.BaseURL = openRouterBaseURL
	model := st.OpenRouterModel
	if model == "" {
		model = defaultOpenRouterModel
	}
	return &openRouterProvider{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (p *openRouterProvider) Name() string { return ProviderOpenRouter }

func (p *openRouterProvider) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: completionTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		log.Printf("[OpenRouter] completion error: %v", err)
		return "", fmt.Errorf("OpenRouter API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenRouter API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
