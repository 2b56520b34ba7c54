package models

// ProcessRequest is the body of the process_* endpoints.
//
// Skip and Limit are pointers so an omitted field can fall back to its default.
type ProcessRequest struct {
	URL   string `json:"url"`
	Skip  *int   `json:"skip,omitempty"`
	Limit *int   `json:"limit,omitempty"`
}

// ProcessResponse acknowledges an accepted job.
type ProcessResponse struct {
	TaskID  string `json:"task_id"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Skip    *int   `json:"skip,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
}

// TaskList is the body of GET /api/tasks.
type TaskList struct {
	Tasks map[string]Task `json:"tasks"`
}

// ErrorResponse is the body of every non-2xx API answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health is the body of GET /healthz.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Tasks     int    `json:"tasks"`
}
