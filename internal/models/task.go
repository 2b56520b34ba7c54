package models

import (
	"fmt"
	"time"
)

// Status is the coarse lifecycle state of a [Task].
type Status string

const (
	StatusCreated    Status = "created"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Active reports whether the task has not reached a terminal state.
func (s Status) Active() bool {
	return s == StatusCreated || s == StatusProcessing
}

// ParseStatus validates a status string supplied by a client.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusCreated, StatusProcessing, StatusCompleted, StatusFailed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Kind identifies what a job was asked to ingest.
type Kind string

const (
	KindVideo    Kind = "video"
	KindPlaylist Kind = "playlist"
	KindChannel  Kind = "channel"
)

// Label returns the capitalised name used in human-readable messages.
func (k Kind) Label() string {
	switch k {
	case KindVideo:
		return "Video"
	case KindPlaylist:
		return "Playlist"
	case KindChannel:
		return "Channel"
	default:
		return "Task"
	}
}

// Outcome tags how a single item left the pipeline.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeError           Outcome = "error"
	OutcomeExists          Outcome = "exists"
	OutcomeSkippedDuration Outcome = "skipped_duration"
)

// Task is the registry record for one ingestion job.
type Task struct {
	ID              string    `json:"id"`
	Kind            Kind      `json:"type"`
	Description     string    `json:"description"`
	Status          Status    `json:"status"`
	Message         string    `json:"message"`
	DetailedStatus  Phase     `json:"detailed_status,omitempty"`
	Progress        string    `json:"progress,omitempty"`
	Counters        Counters  `json:"counters"`
	LastVideoStatus Outcome   `json:"last_video_status,omitempty"`
	Result          any       `json:"result,omitempty"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StatusView is the compact projection served to polling clients.
//
// Error is only populated for failed tasks.
type StatusView struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
	Progress  string    `json:"progress,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// View projects the task into a [StatusView].
func (t Task) View() StatusView {
	v := StatusView{
		ID:        t.ID,
		Status:    t.Status,
		Message:   t.Message,
		UpdatedAt: t.UpdatedAt,
		Progress:  t.Progress,
	}
	if t.Status == StatusFailed {
		v.Error = t.Error
		if v.Error == "" {
			v.Error = t.Message
		}
	}
	return v
}

// VideoResult is the result payload of a successfully processed single video.
type VideoResult struct {
	VideoInfo VideoInfo `json:"video_info"`
	SongURL   string    `json:"song_url"`
	CoverURL  string    `json:"cover_url"`
}

// CollectionResult is the result payload of a finished playlist or channel job.
type CollectionResult struct {
	Total      int `json:"total"`
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
}
