package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/plugincheck/internal/adapters/outbound/tui"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var (
		flags  runFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Run validators without scoring",
		Long:  "Run every applicable validator over a plugin and print the findings. Exits non-zero when any component has a critical or error finding.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveRoot(args)
			if err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}

			sess := root.newSession(path, !flags.noCache)
			run, err := sess.svc.Validate(cmd.Context(), path, opts)
			sess.close(root)
			if err != nil {
				return fmt.Errorf("validate failed: %w", err)
			}

			if format == "json" {
				if err := renderJSON(cmd, struct {
					Valid   bool `json:"valid"`
					Results any  `json:"results"`
				}{run.Valid(), run.Results}); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderValidation(run.Plugin, run.Results))
			}

			if !run.Valid() {
				return errGate
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}
