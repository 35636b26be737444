package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"formfill-agent/internal/application/port/input"
	"formfill-agent/internal/domain/entity"
	"formfill-agent/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var ErrUnsuccessful = errors.New("one or more requests did not pass")

type fileResult struct {
	File     string                  `json:"file"`
	Response entity.FormFillResponse `json:"response"`
}

func newRunCmd(a *app) *cobra.Command {
	var (
		outputFormat string
		parallel     int
		quiet        bool
	)

	cmd := &cobra.Command{
		Use:   "run [request-file...]",
		Short: "Fill the forms described by request files",
		Long: `Run one browser agent per request file (JSON or YAML) and print the
classified result of each. Exits non-zero when any result is FAIL, TIMEOUT
or ERROR.`,
		Example: `  formfill run login.yaml
  formfill run forms/*.yaml --parallel 4 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != "text" && outputFormat != "json" {
				return fmt.Errorf("unknown output format %q (want text or json)", outputFormat)
			}

			requests := make([]entity.FormFillRequest, len(args))
			for i, path := range args {
				req, err := LoadRequest(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				requests[i] = req
			}

			c, err := a.container("run")
			if err != nil {
				return err
			}
			defer c.Close()

			var opts []userinteraction.Option
			if a.noColor {
				opts = append(opts, userinteraction.WithoutColor())
			}
			progress := userinteraction.NewConsoleReporter(cmd.ErrOrStderr(), opts...)

			newFiller := func(label string) input.FormFiller {
				if quiet {
					return c.FormFiller(nil)
				}
				if len(args) == 1 {
					return c.FormFiller(progress)
				}
				return c.FormFiller(progress.Fork("[" + label + "] "))
			}

			results := runAll(cmd.Context(), args, requests, parallel, newFiller)

			if err := writeResults(cmd.OutOrStdout(), results, outputFormat, opts); err != nil {
				return err
			}
			for _, r := range results {
				if !succeeded(r.Response.Result) {
					return ErrUnsuccessful
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "Number of requests to run at once")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print live agent progress")

	return cmd
}

// runAll fills every request, at most parallel at a time. Results keep the
// order of files.
func runAll(
	ctx context.Context,
	files []string,
	requests []entity.FormFillRequest,
	parallel int,
	newFiller func(label string) input.FormFiller,
) []fileResult {
	results := make([]fileResult, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, req := range requests {
		g.Go(func() error {
			label := filepath.Base(files[i])
			results[i] = fileResult{
				File:     files[i],
				Response: newFiller(label).FillFormAndCheck(gctx, req),
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func writeResults(w io.Writer, results []fileResult, format string, opts []userinteraction.Option) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	out := userinteraction.NewConsoleReporter(w, opts...)
	for _, r := range results {
		out.PrintResponse(r.File, r.Response)
	}
	return nil
}

func succeeded(tag entity.ResultTag) bool {
	return tag == entity.ResultPass || tag == entity.ResultDone
}
