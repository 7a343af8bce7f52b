package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timelapse/internal/api"
	"timelapse/internal/daemon"
	"timelapse/internal/epic"
	"timelapse/internal/job"
	"timelapse/internal/logging"
	"timelapse/internal/testsupport"
	"timelapse/internal/timelapse"
)

type stubCatalog struct{}

func (stubCatalog) ImagesForDay(context.Context, time.Time) ([]epic.Image, error) {
	return []epic.Image{{Name: "epic_1b_20240101000000", Date: "2024-01-01 00:00:00"}}, nil
}

func (stubCatalog) Download(context.Context, epic.Image) ([]byte, error) {
	return []byte("png"), nil
}

type stubAssembler struct{}

func (stubAssembler) Assemble(_ context.Context, _ []string, _ string, output string) error {
	return os.WriteFile(output, []byte("raw"), 0o644)
}

type stubTranscoder struct{}

func (stubTranscoder) Transcode(_ context.Context, _ string, output string) error {
	return os.WriteFile(output, []byte("mp4"), 0o644)
}

func startTestDaemon(t *testing.T) (*daemon.Daemon, string) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	logger := logging.NewNop()
	pipeline := timelapse.New(cfg, stubCatalog{}, stubAssembler{}, stubTranscoder{}, job.NewTracker(), logger)

	d, err := daemon.NewWithPipeline(cfg, logger, pipeline)
	if err != nil {
		t.Fatalf("daemon.NewWithPipeline: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		d.Stop()
	})
	return d, d.APIAddr()
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProgressCommandReportsIdle(t *testing.T) {
	_, addr := startTestDaemon(t)

	out, err := runCommand(t, "--addr", addr, "progress")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if !strings.Contains(out, "idle 0/0") {
		t.Fatalf("unexpected progress output: %q", out)
	}
}

func TestStartCommandRejectsBadDates(t *testing.T) {
	_, addr := startTestDaemon(t)

	_, err := runCommand(t, "--addr", addr, "start", "--start", "01/01/2024")
	if err == nil {
		t.Fatal("expected error for malformed date")
	}
	if !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Fatalf("error should explain the date format, got: %v", err)
	}
}

func TestStartCommandRunsJob(t *testing.T) {
	d, addr := startTestDaemon(t)

	out, err := runCommand(t, "--addr", addr, "start", "--start", "2024-01-01", "--end", "2024-01-01")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(out, "started") {
		t.Fatalf("unexpected start output: %q", out)
	}

	deadline := time.Now().Add(5 * time.Second)
	for d.Progress().Status != job.StatusDone {
		if time.Now().After(deadline) {
			t.Fatalf("job never completed, status %q", d.Progress().Status)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestCancelCommandAcknowledges(t *testing.T) {
	_, addr := startTestDaemon(t)

	out, err := runCommand(t, "--addr", addr, "cancel")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !strings.Contains(out, "cancellation requested") {
		t.Fatalf("unexpected cancel output: %q", out)
	}
}

func TestStatusCommandRendersTable(t *testing.T) {
	_, addr := startTestDaemon(t)

	out, err := runCommand(t, "--addr", addr, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"Running", "Status", "idle"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatusIncludesAssetRows(t *testing.T) {
	out := renderStatus(api.StatusResponse{
		Running: true,
		PID:     42,
		Progress: api.ProgressResponse{
			Total:     10,
			Completed: 10,
			Status:    "done",
		},
		AssetPresent: true,
		AssetSize:    2048,
		AssetPath:    "/srv/static/timelapse.mp4",
	})
	for _, want := range []string{"10/10", "2.0 KiB", "/srv/static/timelapse.mp4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered status missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInitOverwriteReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("stale = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCommand(t, "config", "init", "--path", path); err == nil {
		t.Fatal("expected refusal without --overwrite")
	}

	out, err := runCommand(t, "config", "init", "--path", path, "--overwrite")
	if err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
	if !strings.Contains(out, "wrote sample configuration") {
		t.Fatalf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Fatal("expected existing file to be replaced")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tc := range tests {
		if got := formatBytes(tc.in); got != tc.want {
			t.Fatalf("formatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
