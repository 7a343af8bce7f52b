package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"timelapse/internal/logging"
)

// framePattern names staged frames by sequence index so a lexical sort of the
// directory reconstructs chronological order. ffmpeg consumes the same
// pattern directly.
const framePattern = "frame_%06d.png"

// rawVideoName is the intermediate assembly output inside the session, removed
// by Cleanup along with the frames.
const rawVideoName = "timelapse_raw.mp4"

// Session is the ephemeral staging area for one job cycle: downloaded frames
// plus the raw intermediate video, all under a per-job directory.
type Session struct {
	dir    string
	logger *slog.Logger
}

// NewSession creates the staging directory for a job cycle.
func NewSession(stagingDir, jobID string, logger *slog.Logger) (*Session, error) {
	dir := filepath.Join(stagingDir, "job-"+jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging session: %w", err)
	}
	return &Session{dir: dir, logger: logging.NewComponentLogger(logger, "staging")}, nil
}

// Dir returns the session directory.
func (s *Session) Dir() string {
	return s.dir
}

// FramePath returns the staged path for the frame at the given sequence index.
func (s *Session) FramePath(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf(framePattern, index))
}

// FrameGlobPattern returns the printf-style input pattern ffmpeg reads the
// frame sequence with.
func (s *Session) FrameGlobPattern() string {
	return filepath.Join(s.dir, framePattern)
}

// RawVideoPath returns the path the assembler writes the intermediate video to.
func (s *Session) RawVideoPath() string {
	return filepath.Join(s.dir, rawVideoName)
}

// WriteFrame stages the bytes for one frame.
func (s *Session) WriteFrame(index int, data []byte) error {
	if err := os.WriteFile(s.FramePath(index), data, 0o644); err != nil {
		return fmt.Errorf("stage frame %d: %w", index, err)
	}
	return nil
}

// Frames returns the staged frame paths in sequence order.
func (s *Session) Frames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list staged frames: %w", err)
	}

	var frames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, ".png") {
			frames = append(frames, filepath.Join(s.dir, name))
		}
	}
	sort.Strings(frames)
	return frames, nil
}

// Cleanup removes every staged frame and the intermediate video. It is
// idempotent and never fails: individual deletion errors are logged and the
// sweep continues.
func (s *Session) Cleanup() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("unable to list staging session", logging.String(logging.FieldPath, s.dir), logging.Error(err))
		}
		return
	}

	for _, entry := range entries {
		path := filepath.Join(s.dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.logger.Warn("failed to remove staged file", logging.String(logging.FieldPath, path), logging.Error(err))
		}
	}

	if err := os.Remove(s.dir); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove staging session directory", logging.String(logging.FieldPath, s.dir), logging.Error(err))
	}
}
