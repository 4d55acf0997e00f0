package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readornot",
		Short: "Book report verification tool with AI-powered review analysis",
		Long: `Readornot checks whether student book reports reference real books by
searching the Naver book catalog, and can ask an LLM to judge whether a
review is consistent with the matched book's description.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newTemplateCmd())
	cmd.AddCommand(newSettingsCmd())

	return cmd
}
