package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/readornot/readornot/internal/spreadsheet"
)

func newTemplateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an upload template spreadsheet",
		Long: `Writes an xlsx template with the expected columns (학번, 책제목, 작가,
감상문) and two sample rows, ready to hand out to students.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := spreadsheet.WriteTemplate()
			if err != nil {
				return fmt.Errorf("failed to build template: %w", err)
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			slog.Info("Template written", "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "독후감_업로드_템플릿.xlsx", "Output file path")

	return cmd
}
