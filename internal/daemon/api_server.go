package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"timelapse/internal/api"
	"timelapse/internal/config"
	"timelapse/internal/job"
	"timelapse/internal/logging"
)

type apiServer struct {
	bind            string
	logger          *slog.Logger
	daemon          *Daemon
	assetPath       string
	shutdownTimeout time.Duration

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:            strings.TrimSpace(cfg.Paths.APIBind),
		logger:          logger,
		daemon:          d,
		assetPath:       cfg.AssetPath(),
		shutdownTimeout: time.Duration(cfg.Workflow.ShutdownTimeout) * time.Second,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleIndex)
	mux.HandleFunc("/api/timelapse", srv.handleStart)
	mux.HandleFunc("/api/progress", srv.handleProgress)
	mux.HandleFunc("/api/cancel", srv.handleCancel)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/video/"+config.AssetFileName, srv.handleAsset)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handleStart launches a job over the requested date range. Dates accompany
// the request as JSON or, for browser forms, as query or form values.
func (s *apiServer) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := decodeStartRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID, err := s.daemon.StartJob(req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, job.ErrJobRunning) {
			s.writeError(w, http.StatusConflict, "a timelapse job is already running")
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, api.MessageResponse{
		Message: fmt.Sprintf("timelapse job %s started", jobID),
	})
}

func decodeStartRequest(r *http.Request) (api.StartRequest, error) {
	var req api.StartRequest
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("invalid JSON request body")
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, errors.New("invalid request body")
	}
	req.StartDate = r.Form.Get("start_date")
	req.EndDate = r.Form.Get("end_date")
	return req, nil
}

// handleProgress reports the live job snapshot. The payload shape is stable:
// clients poll it to drive progress displays.
func (s *apiServer) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap := s.daemon.Progress()
	s.writeJSON(w, http.StatusOK, api.ProgressResponse{
		Total:     snap.Total,
		Completed: snap.Completed,
		Status:    snap.Status.String(),
	})
}

// handleCancel raises the cooperative cancel signal. It always acknowledges:
// cancelling an idle service is a no-op, not an error.
func (s *apiServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.daemon.CancelJob()
	s.writeJSON(w, http.StatusOK, api.MessageResponse{Message: "cancellation requested"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, indexPage)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>EPIC Timelapse</title></head>
<body>
<h1>EPIC Timelapse</h1>
<form method="post" action="/api/timelapse">
  <label>Start date <input name="start_date" placeholder="YYYY-MM-DD"></label>
  <label>End date <input name="end_date" placeholder="YYYY-MM-DD"></label>
  <button type="submit">Create timelapse</button>
</form>
<p><a href="/api/progress">Progress</a> | <a href="/api/status">Status</a> | <a href="/video/` + config.AssetFileName + `">Video</a></p>
</body>
</html>
`
