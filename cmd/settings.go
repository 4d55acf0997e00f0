package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/readornot/readornot/internal/settings"
)

func newSettingsCmd() *cobra.Command {
	var (
		naverClientID     string
		naverClientSecret string
		aiProvider        string
		geminiAPIKey      string
		openaiAPIKey      string
		openaiModel       string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update saved credentials",
		Long: `Shows the saved settings, or updates the flags you pass. Settings are
stored in a file under the user config directory and are only ever sent
to the corresponding provider. Environment variables, when set, override
saved values at run time.`,
		Example: `  # Show current settings
  readornot settings

  # Save Naver credentials and switch the AI provider
  readornot settings --naver-client-id ID --naver-client-secret SECRET --ai-provider openai`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := settings.DefaultFileKV()
			if err != nil {
				return err
			}
			current, err := settings.Load(kv)
			if err != nil {
				return err
			}

			changed := false
			apply := func(flag string, target *string, value string) {
				if cmd.Flags().Changed(flag) {
					*target = value
					changed = true
				}
			}
			apply("naver-client-id", &current.NaverClientID, naverClientID)
			apply("naver-client-secret", &current.NaverClientSecret, naverClientSecret)
			apply("ai-provider", &current.AIProvider, aiProvider)
			apply("gemini-api-key", &current.GeminiAPIKey, geminiAPIKey)
			apply("openai-api-key", &current.OpenAIAPIKey, openaiAPIKey)
			apply("openai-model", &current.OpenAIModel, openaiModel)

			if changed {
				if err := settings.Save(kv, current); err != nil {
					return err
				}
				fmt.Println("Settings saved.")
				return nil
			}

			fmt.Printf("Naver client id:     %s\n", mask(current.NaverClientID))
			fmt.Printf("Naver client secret: %s\n", mask(current.NaverClientSecret))
			fmt.Printf("AI provider:         %s\n", current.AIProvider)
			fmt.Printf("Gemini API key:      %s\n", mask(current.GeminiAPIKey))
			fmt.Printf("OpenAI API key:      %s\n", mask(current.OpenAIAPIKey))
			fmt.Printf("OpenAI model:        %s\n", current.OpenAIModel)
			return nil
		},
	}

	cmd.Flags().StringVar(&naverClientID, "naver-client-id", "", "Naver API client id")
	cmd.Flags().StringVar(&naverClientSecret, "naver-client-secret", "", "Naver API client secret")
	cmd.Flags().StringVar(&aiProvider, "ai-provider", "", "AI provider (gemini or openai)")
	cmd.Flags().StringVar(&geminiAPIKey, "gemini-api-key", "", "Gemini API key")
	cmd.Flags().StringVar(&openaiAPIKey, "openai-api-key", "", "OpenAI API key")
	cmd.Flags().StringVar(&openaiModel, "openai-model", "", "OpenAI model name")

	return cmd
}

func mask(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

// resolveSettings merges saved settings with environment variables; the
// environment wins where both are set.
func resolveSettings() (settings.Settings, error) {
	kv, err := settings.DefaultFileKV()
	if err != nil {
		return settings.Settings{}, err
	}
	saved, err := settings.Load(kv)
	if err != nil {
		return settings.Settings{}, err
	}

	env := settings.FromEnv()
	overlay := func(target *string, value string) {
		if value != "" {
			*target = value
		}
	}
	overlay(&saved.NaverClientID, env.NaverClientID)
	overlay(&saved.NaverClientSecret, env.NaverClientSecret)
	overlay(&saved.GeminiAPIKey, env.GeminiAPIKey)
	overlay(&saved.OpenAIAPIKey, env.OpenAIAPIKey)
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		saved.AIProvider = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		saved.OpenAIModel = v
	}
	return saved, nil
}
