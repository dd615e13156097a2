package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gridtrace/internal/classify"
	"gridtrace/internal/config"
	"gridtrace/internal/frames"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	var at float64
	var frameIndex int
	var outputPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "prepare <recording>",
		Short: "Save the ROI of a rating-screen frame as the template",
		Long: "Crop the configured ROI from one frame of a recording and save it as the\n" +
			"reference template. Pick the frame with --at (seconds, converted with the\n" +
			"recording's frame rate, or video.fps when it has none) or --frame (index).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			atSet := cmd.Flags().Changed("at")
			frameSet := cmd.Flags().Changed("frame")
			switch {
			case atSet == frameSet:
				return errors.New("exactly one of --at or --frame is required")
			case atSet && at < 0:
				return fmt.Errorf("--at must be non-negative, got %v", at)
			case frameSet && frameIndex < 0:
				return fmt.Errorf("--frame must be non-negative, got %d", frameIndex)
			}
			target := cfg.Paths.TemplateFile
			if trimmed := strings.TrimSpace(outputPath); trimmed != "" {
				if target, err = config.ExpandPath(trimmed); err != nil {
					return err
				}
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("template already exists at %s (use --overwrite to replace it)", target)
				}
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

			if atSet {
				frameIndex = int(math.Floor(at * frames.FrameRate(src, cfg.Video.FPS)))
			}

			picked, err := frames.NthFrames(cmd.Context(), src, []int{frameIndex})
			if err != nil {
				return err
			}
			if len(picked) == 0 {
				return fmt.Errorf("recording has no frame %d", frameIndex)
			}
			region, err := classify.ExtractTemplate(picked[0].Image, cfg.ROI.Rect())
			if err != nil {
				return err
			}
			if err := classify.SaveTemplate(target, region); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %dx%d template from frame %d to %s\n", cfg.ROI.Width, cfg.ROI.Height, frameIndex, target)
			return nil
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "Time of the rating-screen frame in seconds")
	cmd.Flags().IntVar(&frameIndex, "frame", 0, "Index of the rating-screen frame")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Template destination; defaults to paths.template_file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing template")
	return cmd
}
