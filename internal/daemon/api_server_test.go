package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timelapse/internal/api"
	"timelapse/internal/epic"
	"timelapse/internal/job"
	"timelapse/internal/logging"
	"timelapse/internal/testsupport"
	"timelapse/internal/timelapse"
)

type catalogStub struct {
	images []epic.Image
	data   []byte
}

func (c *catalogStub) ImagesForDay(context.Context, time.Time) ([]epic.Image, error) {
	return c.images, nil
}

func (c *catalogStub) Download(context.Context, epic.Image) ([]byte, error) {
	return c.data, nil
}

type assemblerStub struct{}

func (assemblerStub) Assemble(_ context.Context, _ []string, _ string, output string) error {
	return os.WriteFile(output, []byte("raw"), 0o644)
}

type transcoderStub struct{}

func (transcoderStub) Transcode(_ context.Context, _ string, output string) error {
	return os.WriteFile(output, []byte("mp4"), 0o644)
}

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	logger := logging.NewNop()
	catalog := &catalogStub{
		images: []epic.Image{{Name: "epic_1b_20240101000000", Date: "2024-01-01 00:00:00"}},
		data:   []byte("png"),
	}
	pipeline := timelapse.New(cfg, catalog, assemblerStub{}, transcoderStub{}, job.NewTracker(), logger)

	d, err := NewWithPipeline(cfg, logger, pipeline)
	if err != nil {
		t.Fatalf("NewWithPipeline: %v", err)
	}
	return d
}

func TestHandleStartRunsJob(t *testing.T) {
	d := newTestDaemon(t)

	body := strings.NewReader(`{"start_date":"2024-01-01","end_date":"2024-01-01"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/timelapse", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	d.api.handleStart(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Message, "started") {
		t.Fatalf("unexpected message: %q", resp.Message)
	}

	d.pipeline.Wait()
	if got := d.Progress().Status; got != job.StatusDone {
		t.Fatalf("expected done after job completed, got %q", got)
	}
	if _, err := os.Stat(d.cfg.AssetPath()); err != nil {
		t.Fatalf("expected published asset: %v", err)
	}
}

func TestHandleStartValidatesDates(t *testing.T) {
	d := newTestDaemon(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing start", `{"end_date":"2024-01-02"}`},
		{"malformed start", `{"start_date":"01/01/2024","end_date":"2024-01-02"}`},
		{"malformed end", `{"start_date":"2024-01-01","end_date":"tomorrow"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/timelapse", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			d.api.handleStart(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			var resp api.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error == "" {
				t.Fatal("expected error message in payload")
			}
		})
	}
}

func TestHandleStartRejectsConcurrentJob(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.pipeline.Tracker().Begin("busy1234"); err != nil {
		t.Fatalf("occupy job slot: %v", err)
	}

	body := strings.NewReader(`{"start_date":"2024-01-01","end_date":"2024-01-01"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/timelapse", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	d.api.handleStart(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while a job is running, got %d", w.Code)
	}
}

func TestHandleStartAcceptsFormValues(t *testing.T) {
	d := newTestDaemon(t)

	form := strings.NewReader("start_date=2024-01-01&end_date=2024-01-01")
	req := httptest.NewRequest(http.MethodPost, "/api/timelapse", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	d.api.handleStart(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK for form submit, got %d: %s", w.Code, w.Body.String())
	}
	d.pipeline.Wait()
}

func TestHandleProgressShape(t *testing.T) {
	d := newTestDaemon(t)

	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	w := httptest.NewRecorder()
	d.api.handleProgress(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"total", "completed", "status"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("progress payload missing %q: %v", key, payload)
		}
	}
	if len(payload) != 3 {
		t.Fatalf("progress payload must stay minimal, got %v", payload)
	}
	if payload["status"] != "idle" {
		t.Fatalf("expected idle before any job, got %v", payload["status"])
	}
}

func TestHandleCancelIsIdempotent(t *testing.T) {
	d := newTestDaemon(t)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/cancel", nil)
		w := httptest.NewRecorder()
		d.api.handleCancel(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("cancel must always acknowledge, got %d", w.Code)
		}
	}
	if d.Progress().Status != job.StatusIdle {
		t.Fatal("cancel while idle must not disturb status")
	}
}

func TestHandleStatusReportsAsset(t *testing.T) {
	d := newTestDaemon(t)
	if err := os.WriteFile(d.cfg.AssetPath(), []byte("mp4mp4"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	d.api.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.AssetPresent || resp.AssetSize != 6 {
		t.Fatalf("expected asset present with size 6, got %+v", resp)
	}
	if resp.PID != os.Getpid() {
		t.Fatalf("unexpected pid: %d", resp.PID)
	}
}

func TestHandleIndexServesPage(t *testing.T) {
	d := newTestDaemon(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	d.api.handleIndex(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type: %q", ct)
	}
	if !strings.Contains(w.Body.String(), "start_date") {
		t.Fatal("index page should contain the start form")
	}
}

func TestDaemonStartStop(t *testing.T) {
	d := newTestDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	addr := d.APIAddr()
	if addr == "" {
		t.Fatal("expected bound API address")
	}

	resp, err := http.Get("http://" + addr + "/api/progress")
	if err != nil {
		t.Fatalf("progress request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from live server, got %d", resp.StatusCode)
	}

	d.Stop()
	if _, err := os.Stat(filepath.Join(d.cfg.Paths.LogDir, "timelapsed.lock")); err != nil {
		t.Fatalf("lock file should remain after unlock: %v", err)
	}
}
