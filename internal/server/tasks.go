package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
	"github.com/desertthunder/ytingest/internal/tasks"
	"github.com/go-chi/chi/v5"
)

const (
	defaultSkip  = 0
	defaultLimit = 10
	maxBodyBytes = 1 << 20
)

// TaskStore is the subset of the job registry the API needs.
type TaskStore interface {
	Create(id string, kind models.Kind, description string) models.Task
	Get(id string) (models.Task, bool)
	List() map[string]models.Task
	ListByStatus(status models.Status) map[string]models.Task
	ListActive() map[string]models.Task
	Delete(id string) bool
	Len() int
}

// JobDispatcher starts a job in the background. [tasks.Dispatcher] implements it.
type JobDispatcher interface {
	Dispatch(job tasks.Job)
}

// TaskHandler serves the ingestion API: job submission, status polling and task management.
type TaskHandler struct {
	store      TaskStore
	dispatcher JobDispatcher
	logger     *log.Logger
	newID      func() string
	now        func() time.Time
}

// NewTaskHandler creates a [TaskHandler].
func NewTaskHandler(store TaskStore, dispatcher JobDispatcher, logger *log.Logger) *TaskHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TaskHandler{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		newID:      shared.GenerateID,
		now:        time.Now,
	}
}

// Routes implements [Handler].
func (h *TaskHandler) Routes() []Route {
	return []Route{
		{http.MethodPost, "/api/process_video", h.process(models.KindVideo)},
		{http.MethodPost, "/api/process_playlist", h.process(models.KindPlaylist)},
		{http.MethodPost, "/api/process_channel", h.process(models.KindChannel)},
		{http.MethodGet, "/api/task_status/{task_id}", h.status},
		{http.MethodGet, "/api/tasks", h.list},
		{http.MethodDelete, "/api/tasks/{task_id}", h.delete},
		{http.MethodGet, "/healthz", h.health},
	}
}

// process validates a submission, registers the task and hands the job to the dispatcher.
//
// The task exists in the store before the response is written, so an immediate status poll never 404s.
func (h *TaskHandler) process(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, problem := decodeProcessRequest(w, r)
		if problem != "" {
			writeError(w, http.StatusBadRequest, problem)
			return
		}

		job := tasks.Job{ID: h.newID(), Kind: kind, URL: req.URL}
		resp := models.ProcessResponse{
			TaskID:  job.ID,
			Status:  models.StatusProcessing,
			Message: kind.Label() + " processing started",
		}

		if kind != models.KindVideo {
			job.Skip, job.Limit = defaultSkip, defaultLimit
			if req.Skip != nil {
				job.Skip = *req.Skip
			}
			if req.Limit != nil {
				job.Limit = *req.Limit
			}
			if job.Skip < 0 || job.Limit < 1 {
				writeError(w, http.StatusBadRequest, "skip must be >= 0 and limit must be >= 1")
				return
			}
			resp.Skip, resp.Limit = &job.Skip, &job.Limit
		}

		h.store.Create(job.ID, kind, req.URL)
		h.dispatcher.Dispatch(job)

		h.logger.Info("job accepted", "task_id", job.ID, "kind", kind, "url", req.URL)
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *TaskHandler) status(w http.ResponseWriter, r *http.Request) {
	task, ok := h.store.Get(chi.URLParam(r, "task_id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, task.View())
}

// list returns every task, optionally narrowed by ?status= or ?active=true.
func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var found map[string]models.Task
	switch {
	case q.Get("active") == "true":
		found = h.store.ListActive()
	case q.Get("status") != "":
		status, err := models.ParseStatus(q.Get("status"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		found = h.store.ListByStatus(status)
	default:
		found = h.store.List()
	}

	writeJSON(w, http.StatusOK, models.TaskList{Tasks: found})
}

func (h *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "task_id")
	if !h.store.Delete(id) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	h.logger.Info("task deleted", "task_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Health{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Tasks:     h.store.Len(),
	})
}

// decodeProcessRequest returns the request and, when it is unusable, the message for a 400 answer.
func decodeProcessRequest(w http.ResponseWriter, r *http.Request) (models.ProcessRequest, string) {
	var req models.ProcessRequest

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, "URL is required"
		}
		return req, "Invalid JSON body"
	}
	if strings.TrimSpace(req.URL) == "" {
		return req, "URL is required"
	}
	return req, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
