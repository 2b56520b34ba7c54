package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

// TaskClient talks to a running ytingest server.
type TaskClient struct {
	api *APIService
}

// NewTaskClient creates a client for the server behind api.
func NewTaskClient(api *APIService) *TaskClient {
	return &TaskClient{api: api}
}

// Submit starts a job of the given kind. Skip and limit are ignored for single videos.
func (c *TaskClient) Submit(ctx context.Context, kind models.Kind, target string, skip, limit int) (*models.ProcessResponse, error) {
	req := models.ProcessRequest{URL: target}
	if kind != models.KindVideo {
		req.Skip, req.Limit = &skip, &limit
	}

	resp, err := c.api.PostJSON(ctx, "/api/process_"+string(kind), req)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(resp, http.StatusOK, http.StatusAccepted); err != nil {
		return nil, err
	}

	var out models.ProcessResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the compact status of one task.
func (c *TaskClient) Status(ctx context.Context, id string) (*models.StatusView, error) {
	resp, err := c.api.Get(ctx, "/api/task_status/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var out models.StatusView
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Tasks lists every task, optionally filtered by status.
func (c *TaskClient) Tasks(ctx context.Context, status string, active bool) (map[string]models.Task, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if active {
		q.Set("active", "true")
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.api.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var out models.TaskList
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// Delete removes a task from the server's registry.
func (c *TaskClient) Delete(ctx context.Context, id string) error {
	resp, err := c.api.Delete(ctx, "/api/tasks/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	return expectStatus(resp, http.StatusNoContent, http.StatusOK)
}

func expectStatus(resp *APIResponse, codes ...int) error {
	for _, c := range codes {
		if resp.StatusCode == c {
			return nil
		}
	}

	var body models.ErrorResponse
	if resp.IsJSON && resp.Decode(&body) == nil && body.Error != "" {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, body.Error)
	}
	return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
}
