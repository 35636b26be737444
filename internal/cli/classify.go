package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"formfill-agent/internal/adapter/transcript"
	"formfill-agent/internal/domain/entity"
	"formfill-agent/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
)

func newClassifyCmd(a *app) *cobra.Command {
	var (
		model        string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "classify [transcript-file]",
		Short: "Classify a saved agent transcript",
		Long:  `Classify a JSON array of agent history records into PASS, FAIL or DONE with bounded step notes.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}
			t, err := transcript.Decode(data)
			if err != nil {
				return err
			}

			resp := a.offline().ClassifyTranscript(t, model)
			if outputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			var opts []userinteraction.Option
			if a.noColor {
				opts = append(opts, userinteraction.WithoutColor())
			}
			userinteraction.NewConsoleReporter(cmd.OutOrStdout(), opts...).PrintResponse(args[0], resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", entity.DefaultModel, "Model name echoed in the result")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "Output format (text, json)")

	return cmd
}
