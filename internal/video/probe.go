package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Dimensions describes the pixel size of a frame.
type Dimensions struct {
	Width  int
	Height int
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ProbeDimensions executes ffprobe against an image or video file and returns
// the dimensions of its first video stream.
func ProbeDimensions(ctx context.Context, binary, path string) (Dimensions, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Dimensions{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Dimensions{}, &ToolError{Tool: "ffprobe", Output: string(output), Err: err}
	}
	return parseDimensions(output)
}

func parseDimensions(payload []byte) (Dimensions, error) {
	var result probeResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return Dimensions{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		if stream.Width <= 0 || stream.Height <= 0 {
			continue
		}
		return Dimensions{Width: stream.Width, Height: stream.Height}, nil
	}
	return Dimensions{}, errors.New("ffprobe: no video stream with usable dimensions")
}
