package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// errGate is returned when a run completed but the plugin did not pass. The
// report has already been printed, so Execute does not print it again.
var errGate = errors.New("quality gate failed")

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	logLevel   string
	logJSON    bool
	noProgress bool

	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "plugincheck",
		Short: "Validate and score Claude Code plugins",
		Long: "plugincheck runs every validator over a plugin's manifest, skills, agents, commands, hooks and MCP " +
			"config, then turns the findings into four dimension scores, a composite grade and a ranked list of fixes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logJSON)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (defaults to <plugin>/.plugincheck.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON")
	cmd.PersistentFlags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newScoreCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newDiscoverCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

func newLogger(w io.Writer, level string, asJSON bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid --log-level %q", level)
	}
	if !asJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. A failed quality gate is reported only through the
// returned error; every other error is printed to stderr.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil && !errors.Is(err, errGate) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
