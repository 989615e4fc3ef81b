package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/ini.v1"

	"tech-translator/internal/config"
	"tech-translator/internal/sections"
)

const (
	// ProviderOpenRouter is the default chat-completion backend.
	ProviderOpenRouter = "openrouter"
	// ProviderGemini selects the Gemini backend via LLM_PROVIDER=gemini.
	ProviderGemini = "gemini"

	completionTemperature = 0.7
)

// Provider performs a single blocking chat-completion round trip.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Settings holds the provider selection and credentials read from the
// [default] section of the INI config.
type Settings struct {
	Provider         string
	OpenRouterAPIKey string
	OpenRouterModel  string
	GeminiAPIKey     string
	GeminiModel      string
}

var (
	settingsOnce   sync.Once
	settingsCached Settings
	settingsErr    error
)

// LoadSettings reads and caches LLM settings from the INI config.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		path := os.ExpandEnv(config.ConfigFilePath)
		cfg, err := ini.Load(path)
		if err != nil {
			settingsErr = err
			return
		}
		sec := cfg.Section("default")
		settingsCached = Settings{
			Provider:         strings.ToLower(strings.TrimSpace(sec.Key("LLM_PROVIDER").String())),
			OpenRouterAPIKey: strings.TrimSpace(sec.Key("OPENROUTER_API_KEY").String()),
			OpenRouterModel:  strings.TrimSpace(sec.Key("OPENROUTER_MODEL").String()),
			GeminiAPIKey:     strings.TrimSpace(sec.Key("GEMINI_API_KEY").String()),
			GeminiModel:      strings.TrimSpace(sec.Key("GEMINI_MODEL").String()),
		}
		if settingsCached.OpenRouterAPIKey == "" {
			settingsCached.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
		}
		if settingsCached.GeminiAPIKey == "" {
			settingsCached.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
		}
	})
	return settingsCached, settingsErr
}

// Active returns the configured provider. LLM_PROVIDER picks the backend;
// the default is OpenRouter.
func Active() (Provider, error) {
	st, err := LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load LLM config: %w", err)
	}
	switch st.Provider {
	case ProviderGemini:
		return newGeminiProvider(st)
	case "", ProviderOpenRouter:
		return newOpenRouterProvider(st)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", st.Provider)
	}
}

// TranslatorSystemPrompt instructs the model to produce the four numbered
// sections the sectioner splits on.
func TranslatorSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a tech explainer. For any input, output four sections:\n")
	for i, title := range sections.Titles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	return strings.TrimRight(b.String(), "\n")
}
