package video

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
)

// maxToolOutput caps the captured diagnostic output of a failed tool run.
const maxToolOutput = 8 << 10

func runTool(ctx context.Context, binary string, args ...string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		diag := output.Bytes()
		if len(diag) > maxToolOutput {
			diag = diag[len(diag)-maxToolOutput:]
		}
		return &ToolError{Tool: filepath.Base(binary), Output: string(diag), Err: err}
	}
	return nil
}
