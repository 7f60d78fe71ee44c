package main

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"chunkmux/internal/config"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	configFlag string

	cfg          *config.Config
	resolvedPath string
	configFound  bool
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "chunkmux",
		Short: "Reassemble captured media fragments into a final video",
		Long: "chunkmux concatenates numbered video and audio fragments, repairs their\n" +
			"timestamps with ffmpeg, exports a WAV copy of the audio, and muxes the\n" +
			"result with optional subtitles into one timestamped output file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&a.configFlag, "config", "c", "", "Configuration file path")

	root.AddCommand(
		newRunCommand(a),
		newCheckCommand(a),
		newHistoryCommand(a),
		newConfigCommand(a),
	)
	return root
}

// loadConfig reads the configuration on first use. Directories are created
// by the commands that write to them, after flag overrides apply.
func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, path, found, err := config.Load(strings.TrimSpace(a.configFlag))
	if err != nil {
		return nil, err
	}
	a.cfg, a.resolvedPath, a.configFound = cfg, path, found
	return cfg, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
