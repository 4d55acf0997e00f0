package analysis

import (
	"fmt"

	"github.com/readornot/readornot/internal/gemini"
	"github.com/readornot/readornot/internal/openai"
	"github.com/readornot/readornot/internal/settings"
)

// NewServiceFromSettings wires the configured AI provider into an analysis
// service. Missing credentials fail here, before any network call.
func NewServiceFromSettings(s settings.Settings) (*Service, error) {
	if err := s.ValidateAI(); err != nil {
		return nil, err
	}

	switch s.AIProvider {
	case settings.ProviderGemini:
		return NewService(gemini.New(s.GeminiAPIKey), s.AIModel()), nil
	case settings.ProviderOpenAI:
		return NewService(openai.New(s.OpenAIAPIKey), s.AIModel()), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", s.AIProvider)
	}
}
