package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(strings.TrimPrefix(server.URL, "http://"))
}

func TestStartSendsPayload(t *testing.T) {
	var got StartRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/timelapse" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(MessageResponse{Message: "started"})
	}))

	resp, err := client.Start(context.Background(), "2021-06-01", "2021-06-03")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Message != "started" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if got.StartDate != "2021-06-01" || got.EndDate != "2021-06-03" {
		t.Fatalf("payload not forwarded: %+v", got)
	}
}

func TestErrorResponsesBecomeAPIErrors(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "a timelapse job is already running"})
	}))

	_, err := client.Start(context.Background(), "2021-06-01", "2021-06-01")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Error(), "already running") {
		t.Fatalf("server message lost: %v", apiErr)
	}
}

func TestProgressDecodes(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ProgressResponse{Total: 9, Completed: 4, Status: "downloading"})
	}))

	progress, err := client.Progress(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if progress.Total != 9 || progress.Completed != 4 || progress.Status != "downloading" {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestCancelAlwaysSucceeds(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(MessageResponse{Message: "cancellation requested"})
	}))
	if _, err := client.Cancel(context.Background()); err != nil {
		t.Fatal(err)
	}
}
