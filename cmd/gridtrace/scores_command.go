package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"gridtrace/internal/classify"
	"gridtrace/internal/config"
	"gridtrace/internal/frames"
	"gridtrace/internal/report"
)

func newScoresCommand(ctx *commandContext) *cobra.Command {
	var overrides classifierOverrides
	var outputPath string

	cmd := &cobra.Command{
		Use:   "scores <recording>",
		Short: "Print the classifier score of every frame as CSV",
		Long: "Print frame,score,match for every frame of a recording. Useful for choosing a\n" +
			"threshold: rating-screen frames should score well below every other frame.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			c, threshold, err := overrides.build(cmd, cfg)
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			src, err := frames.Open(cmd.Context(), cfg, path)
			if err != nil {
				return err
			}
			defer src.Close()

			scores, err := classify.Scores(cmd.Context(), src, c)
			if err != nil {
				return err
			}
			limit := c.Threshold()
			if threshold != nil {
				limit = *threshold
			}
			write := func(w io.Writer) error { return report.WriteScores(w, scores, limit) }

			if target := strings.TrimSpace(outputPath); target != "" {
				if err := report.WriteFile(target, write); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d scores to %s\n", len(scores), target)
				return nil
			}
			return write(cmd.OutOrStdout())
		},
	}
	overrides.register(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the CSV to a file instead of stdout")
	return cmd
}

