package llm

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiProvider is the alternative backend for deployments that already
// carry a Gemini key. The client is created lazily per call because genai
// requires a context at construction time.
type geminiProvider struct {
	apiKey string
	model  string
}

func newGeminiProvider(st Settings) (Provider, error) {
	if st.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY missing")
	}
	model := st.GeminiModel
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiProvider{apiKey: st.GeminiAPIKey, model: model}, nil
}

func (p *geminiProvider) Name() string { return ProviderGemini }

func (p *geminiProvider) Complete(ctx context.Context, system, user string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	// Gemini takes a single prompt; fold the system instructions in front of
	// the user text the way the completion endpoint would see them.
	prompt := system + "\n\n" + user
	resp, err := client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		log.Printf("[Gemini API] Error generating content: %v", err)
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return resp.Text(), nil
}
