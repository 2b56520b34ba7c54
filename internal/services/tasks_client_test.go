package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

func TestTaskClient(t *testing.T) {
	t.Run("Submit Playlist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/process_playlist" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var req models.ProcessRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Skip == nil || *req.Skip != 5 || req.Limit == nil || *req.Limit != 3 {
				t.Errorf("expected skip 5 and limit 3, got %+v", req)
			}
			json.NewEncoder(w).Encode(models.ProcessResponse{TaskID: "t1", Status: models.StatusProcessing, Skip: req.Skip, Limit: req.Limit})
		}))
		defer server.Close()

		resp, err := NewTaskClient(NewAPIService(server.URL, nil)).Submit(context.Background(), models.KindPlaylist, "PL1", 5, 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.TaskID != "t1" || *resp.Limit != 3 {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("Submit Video Omits Pagination", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any
			json.NewDecoder(r.Body).Decode(&req)
			if _, ok := req["skip"]; ok {
				t.Errorf("expected no skip for a video, got %v", req)
			}
			json.NewEncoder(w).Encode(models.ProcessResponse{TaskID: "t2", Status: models.StatusProcessing})
		}))
		defer server.Close()

		if _, err := NewTaskClient(NewAPIService(server.URL, nil)).Submit(context.Background(), models.KindVideo, "https://youtu.be/a", 0, 10); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Submit Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: "URL is required"})
		}))
		defer server.Close()

		_, err := NewTaskClient(NewAPIService(server.URL, nil)).Submit(context.Background(), models.KindVideo, "", 0, 0)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Status Not Found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		_, err := NewTaskClient(NewAPIService(server.URL, nil)).Status(context.Background(), "nope")
		if !errors.Is(err, shared.ErrTaskNotFound) {
			t.Errorf("expected ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("Tasks With Filter", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("status"); got != "failed" {
				t.Errorf("expected status filter, got %q", got)
			}
			json.NewEncoder(w).Encode(models.TaskList{Tasks: map[string]models.Task{
				"t1": {ID: "t1", Status: models.StatusFailed},
			}})
		}))
		defer server.Close()

		tasks, err := NewTaskClient(NewAPIService(server.URL, nil)).Tasks(context.Background(), "failed", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tasks) != 1 || tasks["t1"].Status != models.StatusFailed {
			t.Errorf("unexpected tasks %v", tasks)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/api/tasks/t1" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		if err := NewTaskClient(NewAPIService(server.URL, nil)).Delete(context.Background(), "t1"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}
