package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chunkmux/internal/deps"
	"chunkmux/internal/preflight"
	"chunkmux/internal/staging"
)

func newCheckCommand(a *app) *cobra.Command {
	var subtitles string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report tool availability, directory access, and leftover workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()

			results := preflight.RunAll(cmd.Context(), cfg)
			if subtitles != "" {
				results = append(results, preflight.CheckSubtitleFile(subtitles))
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				switch {
				case !r.Passed && r.Optional:
					status = "warn"
				case !r.Passed:
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			fmt.Fprintln(out, renderTable(out, columns("Check", "Status", "Detail"), rows))

			if version, err := deps.ToolVersion(cmd.Context(), cfg.FFmpegBinary()); err == nil {
				fmt.Fprintf(out, "ffmpeg: %s\n", deps.ShortVersion(version))
			}

			leftovers, err := staging.ListDirectories(cfg.Paths.WorkDir)
			if err != nil {
				return fmt.Errorf("list workspaces: %w", err)
			}
			if len(leftovers) > 0 {
				wsRows := make([][]string, 0, len(leftovers))
				for _, d := range leftovers {
					wsRows = append(wsRows, []string{
						d.Path,
						humanize.Time(d.ModTime),
						humanize.IBytes(uint64(max(d.Size, 0))),
					})
				}
				fmt.Fprintln(out, "Leftover workspaces (removed automatically after workspace.stale_after_hours):")
				fmt.Fprintln(out, renderTable(out, []column{{title: "Path"}, {title: "Modified"}, {title: "Size", right: true}}, wsRows))
			}

			if err := preflight.Err(results); err != nil {
				return err
			}
			fmt.Fprintf(out, "Ready (stale workspaces expire after %s)\n", time.Duration(cfg.Workspace.StaleAfterHours)*time.Hour)
			return nil
		},
	}
	cmd.Flags().StringVarP(&subtitles, "subtitles", "s", "", "Also check that this subtitle file is readable")
	return cmd
}
