package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/plugincheck/internal/adapters/outbound/discovery"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/tui"
	"github.com/abdidvp/plugincheck/internal/application"
)

func newDiscoverCmd(root *rootOptions) *cobra.Command {
	var (
		flags    runFlags
		filter   string
		evaluate bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "discover <cache-root>",
		Short: "List or evaluate every plugin in a plugin cache",
		Long: "List the plugins installed below a cache root laid out as <name>/<version>/. " +
			"With --evaluate, score each of them and print a summary; one failing plugin does not stop the batch.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheRoot, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if !evaluate {
				refs, err := discovery.NewLocator().Locate(cacheRoot, filter)
				if err != nil {
					return err
				}
				if format == "json" {
					return renderJSON(cmd, refs)
				}
				for _, ref := range refs {
					fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-10s %s\n", ref.Name, ref.Version, ref.Path)
				}
				return nil
			}

			opts, err := flags.options()
			if err != nil {
				return err
			}
			// Cache keys are plugin-relative, so a batch spanning many roots runs uncached.
			sess := root.newSession(cacheRoot, false)
			entries, err := sess.svc.EvaluateAll(cmd.Context(), cacheRoot, filter, opts)
			if err != nil {
				return fmt.Errorf("batch evaluation failed: %w", err)
			}
			summary := application.Summarize(entries)

			if format == "json" {
				return renderJSON(cmd, struct {
					Summary application.BatchSummary `json:"summary"`
					Entries []application.BatchEntry `json:"entries"`
				}{summary, entries})
			}

			rows := make([]tui.BatchRow, 0, len(entries))
			for _, e := range entries {
				row := tui.BatchRow{Name: e.Ref.Name, Version: e.Ref.Version, Err: e.Err}
				if e.Report != nil {
					row.Overall = e.Report.Score.Overall
					row.Grade = e.Report.Score.Grade
					row.Passed = e.Report.Score.Passed
				}
				rows = append(rows, row)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderBatch(rows, summary.AverageOverall, summary.Passed))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&filter, "filter", "", "Glob on plugin names, e.g. 'code-*'")
	cmd.Flags().BoolVar(&evaluate, "evaluate", false, "Score every plugin found")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}
