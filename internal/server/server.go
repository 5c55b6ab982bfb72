package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/speakdoc/speakdoc/internal/document"
	"github.com/speakdoc/speakdoc/internal/speech"
)

// Server handles the JSON API. A nil engine puts the server in degraded
// mode: extraction endpoints keep working and synthesis endpoints answer
// 503.
type Server struct {
	cfg      Config
	engine   speech.Engine
	tasks    *TaskStore
	sessions *sessions
	pool     *semaphore.Weighted
	tempDir  string
	mux      *http.ServeMux
	stop     chan struct{}
}

// New builds a server around an engine instance. engine may be nil.
func New(cfg Config, engine speech.Engine) (*Server, error) {
	tempDir := cfg.TempDir
	if tempDir == "" {
		var err error
		tempDir, err = os.MkdirTemp("", "speakdoc-audio-")
		if err != nil {
			return nil, fmt.Errorf("create audio dir: %w", err)
		}
	}

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		tasks:    NewTaskStore(),
		sessions: newSessions(cfg.SecretKey),
		pool:     semaphore.NewWeighted(cfg.MaxWorkers),
		tempDir:  tempDir,
		stop:     make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/voices", s.handleVoices)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handlePostSettings)
	mux.HandleFunc("POST /api/speak", s.handleSpeak)
	mux.HandleFunc("GET /api/status/{id}", s.handleStatus)
	mux.HandleFunc("GET /api/download/{id}", s.handleDownload)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/url", s.handleURL)
	s.mux = mux
	return s, nil
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe runs the server until ctx is canceled, sweeping expired
// tasks in the background.
func (s *Server) ListenAndServe(ctx context.Context) error {
	go s.tasks.sweepLoop(10*time.Minute, s.stop)
	defer close(s.stop)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.Info("server listening", "port", s.cfg.Port, "workers", s.cfg.MaxWorkers, "degraded", s.engine == nil)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleVoices(w http.ResponseWriter, _ *http.Request) {
	if s.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "no speech engine available")
		return
	}
	voices, err := s.engine.Voices()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voices": voices})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.id(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"settings": s.sessions.get(id)})
}

func (s *Server) handlePostSettings(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.id(w, r)

	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.sessions.merge(id, updates)
	writeJSON(w, http.StatusOK, map[string]any{"settings": s.sessions.get(id)})
}

// handleSpeak accepts a synthesis job onto the worker pool and returns its
// task id immediately. A full pool is reported as 503, not queued.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "no speech engine available")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, speech.ErrEmptyText.Error())
		return
	}

	if !s.pool.TryAcquire(1) {
		writeError(w, http.StatusServiceUnavailable, "all synthesis workers busy, try again later")
		return
	}

	sessionID := s.sessions.id(w, r)
	settings := speech.SettingsFromMap(s.sessions.get(sessionID))

	id := s.tasks.Create()
	go s.synthesize(id, req.Text, settings)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": id,
		"status":  StatusProcessing,
	})
}

// synthesize runs one synthesis job to completion and releases its worker
// slot.
func (s *Server) synthesize(id, text string, settings speech.Settings) {
	defer s.pool.Release(1)

	if err := speech.Apply(s.engine, settings); err != nil {
		log.Warn("settings not fully applied", "task", id, "err", err)
	}

	path := filepath.Join(s.tempDir, "task_"+id+s.audioExt())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.engine.SaveToFile(ctx, text, path); err != nil {
		log.Error("synthesis failed", "task", id, "err", err)
		s.tasks.Fail(id, err)
		return
	}
	s.tasks.Complete(id, path)
	log.Info("synthesis complete", "task", id, "path", path)
}

func (s *Server) audioExt() string {
	if s.engine != nil && s.engine.Name() == "espeak" {
		return ".wav"
	}
	return ".mp3"
}

// handleStatus reports a task's state. Unknown ids get a not_found status
// body, not an HTTP error.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, ok := s.tasks.Get(id)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, ok := s.tasks.Get(id)
	if !ok || task.Status != StatusCompleted {
		writeError(w, http.StatusNotFound, "audio not available")
		return
	}
	http.ServeFile(w, r, task.AudioPath)
}

// handleUpload extracts text from an uploaded document synchronously. It
// never synthesizes.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !document.IsSupported(header.Filename) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", ext))
		return
	}

	tmp, err := os.CreateTemp(s.tempDir, "upload-*"+ext)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store upload")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, "store upload")
		return
	}
	tmp.Close()

	text, err := document.Read(tmp.Name())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, document.ErrNoContent) || errors.Is(err, document.ErrUnsupportedFormat) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename": header.Filename,
		"text":     text,
		"chars":    len(text),
	})
}

// handleURL extracts readable text from a web address synchronously,
// prefixing https:// when no scheme is given.
func (s *Server) handleURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	addr := strings.TrimSpace(req.URL)
	if addr == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "https://" + addr
	}

	text, err := document.ReadURL(r.Context(), addr)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, document.ErrNoContent) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":   addr,
		"text":  text,
		"chars": len(text),
	})
}
