package video

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoFrames indicates an assembly attempt over an empty frame sequence.
// The acquisition stage exits early before assembly when nothing was staged,
// so hitting this means a staging invariant was broken.
var ErrNoFrames = errors.New("no frames staged for assembly")

// ToolError carries the diagnostic output of a failed ffmpeg/ffprobe
// invocation alongside the underlying exec error.
type ToolError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	detail := strings.TrimSpace(e.Output)
	if detail == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, detail)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
