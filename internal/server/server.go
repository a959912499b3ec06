// Package server exposes the pipeline over HTTP for host
// applications that prefer a service boundary to linking the library.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lattice/audio2manim/internal/compiler"
	"github.com/lattice/audio2manim/internal/config"
	"github.com/lattice/audio2manim/internal/logger"
	"github.com/lattice/audio2manim/internal/render"
	"github.com/lattice/audio2manim/internal/segment"
	"github.com/lattice/audio2manim/internal/timeline"
)

// Server wires the HTTP API.
type Server struct {
	cfg      *config.Config
	pipeline *render.Pipeline
	router   *mux.Router

	mu   sync.RWMutex
	jobs map[string]*Job
}

// Job tracks an asynchronous render.
type Job struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"` // pending, running, done, failed
	VideoPath string     `json:"video_path,omitempty"`
	Frames    int        `json:"frames,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
}

func New(cfg *config.Config, pipeline *render.Pipeline) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		jobs:     make(map[string]*Job),
	}
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/detect", s.handleDetect).Methods(http.MethodPost)
	r.HandleFunc("/api/compile", s.handleCompile).Methods(http.MethodPost)
	r.HandleFunc("/api/render", s.handleRender).Methods(http.MethodPost)
	r.HandleFunc("/api/jobs/{id}", s.handleJobStatus).Methods(http.MethodGet)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.ServerAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("http server listening", logger.String("addr", s.cfg.ServerAddr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type detectRequest struct {
	AudioPath string `json:"audio_path"`
	Method    string `json:"method"`
}

// handleDetect transcribes the audio and returns a timeline with
// auto-detected scenes.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.AudioPath == "" {
		writeError(w, http.StatusBadRequest, errors.New("audio_path is required"))
		return
	}
	method := segment.Method(req.Method)
	if req.Method == "" {
		method = segment.MethodSentence
	}

	tl, words, err := s.pipeline.PrepareTimeline(r.Context(), nil, req.AudioPath)
	if err != nil {
		var empty *render.EmptyTimelineError
		if errors.As(err, &empty) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	// PrepareTimeline always detects by sentence; redo for an explicit
	// interval request.
	if method != segment.MethodSentence {
		redone := timeline.New(tl.AudioDuration)
		candidates, err := segment.Detect(words, method, tl.AudioDuration)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		for _, c := range candidates {
			redone.AddScene(c)
		}
		tl = redone
	}

	data, err := tl.Serialize()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type compileRequest struct {
	Timeline      json.RawMessage `json:"timeline"`
	TimedDispatch *bool           `json:"timed_dispatch"`
}

type compileResponse struct {
	Script string `json:"script"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tl, err := timeline.Deserialize(req.Timeline)
	if err != nil {
		var perr *timeline.ParseError
		if errors.As(err, &perr) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.pipeline.FillManimCode(tl); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	opts := compiler.Options{TimedDispatch: true, FrameRate: s.cfg.FPS, Background: s.cfg.Background}
	if req.TimedDispatch != nil {
		opts.TimedDispatch = *req.TimedDispatch
	}
	writeJSON(w, http.StatusOK, compileResponse{Script: compiler.Compile(tl, opts)})
}

type renderRequest struct {
	Timeline  json.RawMessage `json:"timeline"`
	AudioPath string          `json:"audio_path"`
}

// handleRender starts an asynchronous render job.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var tl *timeline.Timeline
	if len(req.Timeline) > 0 {
		var err error
		tl, err = timeline.Deserialize(req.Timeline)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if tl == nil && req.AudioPath == "" {
		writeError(w, http.StatusBadRequest, errors.New("timeline or audio_path is required"))
		return
	}

	job := &Job{
		ID:        uuid.NewString(),
		Status:    "pending",
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go s.runJob(job.ID, tl, req.AudioPath)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) runJob(id string, tl *timeline.Timeline, audioPath string) {
	s.setJob(id, func(j *Job) { j.Status = "running" })

	result, err := s.pipeline.Run(context.Background(), tl, audioPath)
	now := time.Now()
	if err != nil {
		logger.Error("render job failed", logger.String("job", id), logger.ErrorField(err))
		s.setJob(id, func(j *Job) {
			j.Status = "failed"
			j.Error = err.Error()
			j.DoneAt = &now
		})
		return
	}
	s.setJob(id, func(j *Job) {
		j.Status = "done"
		j.VideoPath = result.VideoPath
		j.Frames = result.Batch.Frames
		j.DoneAt = &now
	})
}

func (s *Server) setJob(id string, update func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		update(j)
	}
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.RLock()
	job, ok := s.jobs[id]
	var snapshot Job
	if ok {
		snapshot = *job
	}
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("job not found"))
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
