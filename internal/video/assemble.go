package video

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"timelapse/internal/config"
	"timelapse/internal/logging"
)

// Assembler turns an ordered frame sequence into a raw intermediate video at
// a fixed frame rate by driving ffmpeg's image2 demuxer.
type Assembler struct {
	ffmpeg    string
	ffprobe   string
	frameRate int
	logger    *slog.Logger
}

// NewAssembler constructs an assembler from the video configuration.
func NewAssembler(cfg *config.Config, logger *slog.Logger) *Assembler {
	return &Assembler{
		ffmpeg:    cfg.Video.FFmpegBinary,
		ffprobe:   cfg.Video.FFprobeBinary,
		frameRate: cfg.Video.FrameRate,
		logger:    logging.NewComponentLogger(logger, "assembler"),
	}
}

// Assemble writes the raw video to output. Frame dimensions come from the
// first staged frame; subsequent frames are assumed to match, and a mismatch
// surfaces as a generic ffmpeg failure.
func (a *Assembler) Assemble(ctx context.Context, frames []string, framePattern, output string) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}

	dims, err := ProbeDimensions(ctx, a.ffprobe, frames[0])
	if err != nil {
		return fmt.Errorf("probe first frame: %w", err)
	}
	a.logger.Info("assembling raw video",
		logging.Int("frames", len(frames)),
		logging.Int("width", dims.Width),
		logging.Int("height", dims.Height),
		logging.Int("frame_rate", a.frameRate),
	)

	if err := runTool(ctx, a.ffmpeg, assembleArgs(a.frameRate, framePattern, output)...); err != nil {
		return fmt.Errorf("assemble raw video: %w", err)
	}
	return nil
}

func assembleArgs(frameRate int, framePattern, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-framerate", strconv.Itoa(frameRate),
		"-i", framePattern,
		"-c:v", "mpeg4",
		"-q:v", "5",
		output,
	}
}
