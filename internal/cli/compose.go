package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newComposeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compose [request-file]",
		Short: "Print the instructions the agent would receive for a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := LoadRequest(args[0])
			if err != nil {
				return err
			}
			task, err := a.offline().ComposeTask(req)
			if err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}
			for _, line := range task.Lines() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
