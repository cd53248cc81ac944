package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abdidvp/plugincheck/internal/adapters/outbound/history"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/tui"
	"github.com/abdidvp/plugincheck/internal/application"
	"github.com/abdidvp/plugincheck/internal/domain"
)

// runFlags are the evaluation overrides shared by score, validate and discover.
type runFlags struct {
	concurrency int
	noCache     bool
	weights     map[string]string
	testsPath   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Maximum validators running at once (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Ignore and do not update the result cache")
	cmd.Flags().StringToStringVar(&f.weights, "weight", nil, "Dimension weight override, e.g. --weight code_quality=0.1")
	cmd.Flags().StringVar(&f.testsPath, "tests", "", "User test record (JSON or YAML)")
}

func (f *runFlags) options() (application.EvaluateOptions, error) {
	opts := application.EvaluateOptions{
		TestsPath:   f.testsPath,
		Concurrency: f.concurrency,
		NoCache:     f.noCache,
	}
	if len(f.weights) > 0 {
		opts.Weights = make(map[string]float64, len(f.weights))
		for k, v := range f.weights {
			w, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, fmt.Errorf("invalid weight for %s: %q", k, v)
			}
			opts.Weights[k] = w
		}
	}
	return opts, nil
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	var (
		flags       runFlags
		format      string
		components  bool
		badge       bool
		showHistory bool
	)

	cmd := &cobra.Command{
		Use:   "score [path]",
		Short: "Score a plugin",
		Long:  "Validate a plugin, score its four quality dimensions and print the composite grade with recommendations. Exits non-zero when the plugin does not pass.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveRoot(args)
			if err != nil {
				return err
			}

			hist := history.New()
			if showHistory {
				entries, err := hist.Load(path)
				if err != nil {
					return fmt.Errorf("loading history: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
				return nil
			}

			opts, err := flags.options()
			if err != nil {
				return err
			}

			sess := root.newSession(path, !flags.noCache)
			report, err := sess.svc.Evaluate(cmd.Context(), path, opts)
			sess.close(root)
			if err != nil {
				return fmt.Errorf("scoring failed: %w", err)
			}

			// --no-cache runs leave the plugin directory untouched.
			if !flags.noCache {
				if err := hist.Save(path, report.HistoryEntry()); err != nil {
					root.logger.Warn().Str("component", "cli").Err(err).Msg("saving score history")
				}
			}

			switch {
			case format == "json":
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			case badge:
				renderBadge(cmd, report)
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
				if components {
					fmt.Fprint(cmd.OutOrStdout(), tui.RenderComponents(report))
				}
			}

			if !report.Score.Passed {
				return errGate
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&components, "components", false, "Also list per-component scores")
	cmd.Flags().BoolVar(&badge, "badge", false, "Output shields.io badge URL")
	cmd.Flags().BoolVar(&showHistory, "history", false, "Show score history instead of scoring")

	return cmd
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderBadge(cmd *cobra.Command, report *domain.Report) {
	color := domain.BadgeColor(report.Score.Overall)
	url := fmt.Sprintf("https://img.shields.io/badge/plugincheck-%.0f%%2F100-%s", report.Score.Overall, color)
	fmt.Fprintln(cmd.OutOrStdout(), url)
}
