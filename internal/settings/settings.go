// Package settings carries the externally supplied credentials and provider
// choices. Settings are passed explicitly into each component's constructor;
// nothing here is global.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const storageKey = "readornot_settings"

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Settings holds search and AI credentials plus the chosen AI provider
type Settings struct {
	NaverClientID     string `json:"naverClientId"`
	NaverClientSecret string `json:"naverClientSecret"`

	AIProvider   string `json:"aiProvider"`
	GeminiAPIKey string `json:"geminiApiKey"`
	OpenAIAPIKey string `json:"openaiApiKey"`
	OpenAIModel  string `json:"openaiModel"`
}

// KV is the backing key-value capability settings are loaded from and saved
// to. Implementations decide where values live (a file, env, browser storage).
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Defaults returns the settings used before the user saves anything
func Defaults() Settings {
	return Settings{
		AIProvider:  ProviderGemini,
		OpenAIModel: defaultOpenAIModel,
	}
}

// Load reads settings from the store, merging over the defaults. A missing
// entry yields the defaults unchanged.
func Load(kv KV) (Settings, error) {
	s := Defaults()

	raw, ok, err := kv.Get(storageKey)
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if !ok || raw == "" {
		return s, nil
	}

	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Defaults(), fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.AIProvider == "" {
		s.AIProvider = ProviderGemini
	}
	if s.OpenAIModel == "" {
		s.OpenAIModel = defaultOpenAIModel
	}
	return s, nil
}

// Save writes settings to the store
func Save(kv KV, s Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := kv.Set(storageKey, string(raw)); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// FromEnv builds settings from environment variables, the configuration
// surface of the server deployment.
func FromEnv() Settings {
	s := Defaults()
	s.NaverClientID = os.Getenv("NAVER_CLIENT_ID")
	s.NaverClientSecret = os.Getenv("NAVER_CLIENT_SECRET")
	s.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	s.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		s.AIProvider = provider
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		s.OpenAIModel = model
	}
	return s
}

// ValidateSearch checks the credentials needed for book verification
func (s Settings) ValidateSearch() error {
	if s.NaverClientID == "" || s.NaverClientSecret == "" {
		return errors.New("네이버 API 키가 설정되지 않았습니다.")
	}
	return nil
}

// ValidateAI checks the credentials needed for review analysis
func (s Settings) ValidateAI() error {
	switch s.AIProvider {
	case ProviderGemini:
		if s.GeminiAPIKey == "" {
			return errors.New("Gemini API 키가 설정되지 않았습니다.")
		}
	case ProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return errors.New("OpenAI API 키가 설정되지 않았습니다.")
		}
	default:
		return fmt.Errorf("unsupported AI provider: %s", s.AIProvider)
	}
	return nil
}

// AIModel returns the model used by the configured provider
func (s Settings) AIModel() string {
	if s.AIProvider == ProviderOpenAI {
		return s.OpenAIModel
	}
	return defaultGeminiModel
}
