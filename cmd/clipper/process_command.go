package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"clipper/internal/fileutil"
	"clipper/internal/logging"
	"clipper/internal/media/engine"
	"clipper/internal/pipeline"
	"clipper/internal/services/scribe"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Split, caption, and render a video without the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workflow.SegmentWorkers = workers
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			transcriber, err := scribe.New(cfg, logger)
			if err != nil {
				return err
			}
			eng := engine.New(cfg.FFmpeg.FFmpegBinary, cfg.FFmpeg.FFprobeBinary, cfg.FFmpeg.SegmentSeconds, logger)
			if !eng.Available() {
				return fmt.Errorf("ffmpeg binaries not found (%s, %s)", cfg.FFmpeg.FFmpegBinary, cfg.FFmpeg.FFprobeBinary)
			}
			pipe := pipeline.New(cfg, eng, transcriber, logger)

			workDir, err := fileutil.ScratchDir(cfg.Paths.WorkDir, uuid.NewString())
			if err != nil {
				return err
			}
			defer func() {
				_ = fileutil.RemoveScratchDir(workDir)
			}()

			// The pipeline consumes its upload, so work on a copy of the
			// caller's file.
			uploadPath := filepath.Join(workDir, "upload.mp4")
			if err := fileutil.CopyFile(args[0], uploadPath); err != nil {
				return fmt.Errorf("copy input: %w", err)
			}

			out := cmd.OutOrStdout()
			if info, err := eng.Probe(cmd.Context(), uploadPath); err == nil {
				fmt.Fprintf(out, "input duration %.1fs (~%d segments)\n",
					info.Duration, expectedSegments(info.Duration, cfg.FFmpeg.SegmentSeconds))
			}

			names, err := pipe.Run(cmd.Context(), uploadPath, workDir, &printReporter{out: out})
			if err != nil {
				return err
			}

			target := outputDir
			if target == "" {
				target = "."
			}
			for _, name := range names {
				dst := filepath.Join(target, name)
				if err := fileutil.CopyFile(filepath.Join(workDir, name), dst); err != nil {
					return fmt.Errorf("copy output %s: %w", name, err)
				}
				fmt.Fprintln(out, dst)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for processed clips (default current directory)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent segment workers (overrides configuration)")
	return cmd
}

// expectedSegments estimates the segment count for a duration. Stream-copy
// splitting cuts on keyframes, so this is an estimate, not a promise.
func expectedSegments(duration float64, segmentSeconds int) int {
	if segmentSeconds <= 0 {
		return 1
	}
	n := int(duration) / segmentSeconds
	if int(duration)%segmentSeconds != 0 || n == 0 {
		n++
	}
	return n
}

// printReporter writes progress lines for interactive runs.
type printReporter struct {
	out io.Writer
}

func (r *printReporter) Phase(string) {}

func (r *printReporter) SegmentDone(done, total int) {
	fmt.Fprintf(r.out, "processed segment %d/%d\n", done, total)
}
