package video

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"

	"timelapse/internal/config"
	"timelapse/internal/logging"
)

// Transcoder converts a raw intermediate video into the web-deliverable asset
// with fixed codec parameters, publishing the result atomically so readers
// never observe a partially written asset.
type Transcoder struct {
	ffmpeg string
	crf    int
	preset string
	logger *slog.Logger
}

// NewTranscoder constructs a transcoder from the video configuration.
func NewTranscoder(cfg *config.Config, logger *slog.Logger) *Transcoder {
	return &Transcoder{
		ffmpeg: cfg.Video.FFmpegBinary,
		crf:    cfg.Video.CRF,
		preset: cfg.Video.Preset,
		logger: logging.NewComponentLogger(logger, "transcoder"),
	}
}

// Transcode encodes input and atomically replaces output on success. On any
// failure the previous asset, if one exists, is left untouched.
func (t *Transcoder) Transcode(ctx context.Context, input, output string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}

	// ffmpeg writes next to the input (the staging session), so a failed run
	// leaves nothing behind in the asset directory.
	encoded := input + ".x264.mp4"
	defer os.Remove(encoded)

	t.logger.Info("transcoding to web format",
		logging.String("input", input),
		logging.Int("crf", t.crf),
		logging.String("preset", t.preset),
	)
	if err := runTool(ctx, t.ffmpeg, transcodeArgs(t.crf, t.preset, input, encoded)...); err != nil {
		return fmt.Errorf("transcode video: %w", err)
	}

	if err := publish(encoded, output); err != nil {
		return fmt.Errorf("publish asset: %w", err)
	}
	t.logger.Info("asset published", logging.String(logging.FieldPath, output))
	return nil
}

func transcodeArgs(crf int, preset, input, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", input,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-crf", strconv.Itoa(crf),
		"-preset", preset,
		"-movflags", "+faststart",
		output,
	}
}

// publish copies src over dest by way of a temp file in dest's directory and
// an atomic rename, tolerating staging and asset dirs on different
// filesystems.
func publish(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open encoded video: %w", err)
	}
	defer in.Close()

	pending, err := renameio.TempFile(filepath.Dir(dest), dest)
	if err != nil {
		return fmt.Errorf("create pending asset: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck

	if _, err := io.Copy(pending, in); err != nil {
		return fmt.Errorf("write pending asset: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace asset: %w", err)
	}
	return nil
}
