package models

import (
	"encoding/json"
	"errors"
	"time"
)

// PublishedSong is a ledger row recording what happened to one video.
type PublishedSong struct {
	id        string
	sequence  int
	videoID   string
	taskID    string
	title     string
	artist    string
	duration  int
	outcome   Outcome
	songURL   string
	coverURL  string
	detail    string
	createdAt time.Time
	updatedAt time.Time
}

var _ Model = (*PublishedSong)(nil)

// NewPublishedSong creates a ledger entry for info with the given outcome.
func NewPublishedSong(taskID string, info VideoInfo, outcome Outcome) *PublishedSong {
	now := time.Now().UTC()
	return &PublishedSong{
		videoID:   info.ID,
		taskID:    taskID,
		title:     info.Title,
		artist:    info.Artist,
		duration:  info.Duration,
		outcome:   outcome,
		createdAt: now,
		updatedAt: now,
	}
}

// RestorePublishedSong rebuilds an entry from stored columns.
func RestorePublishedSong(
	id string, sequence int, videoID, taskID, title, artist string, duration int,
	outcome Outcome, songURL, coverURL, detail string, createdAt, updatedAt time.Time,
) *PublishedSong {
	return &PublishedSong{
		id:        id,
		sequence:  sequence,
		videoID:   videoID,
		taskID:    taskID,
		title:     title,
		artist:    artist,
		duration:  duration,
		outcome:   outcome,
		songURL:   songURL,
		coverURL:  coverURL,
		detail:    detail,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (s *PublishedSong) ID() string           { return s.id }
func (s *PublishedSong) Sequence() int        { return s.sequence }
func (s *PublishedSong) VideoID() string      { return s.videoID }
func (s *PublishedSong) TaskID() string       { return s.taskID }
func (s *PublishedSong) Title() string        { return s.title }
func (s *PublishedSong) Artist() string       { return s.artist }
func (s *PublishedSong) Duration() int        { return s.duration }
func (s *PublishedSong) Outcome() Outcome     { return s.outcome }
func (s *PublishedSong) SongURL() string      { return s.songURL }
func (s *PublishedSong) CoverURL() string     { return s.coverURL }
func (s *PublishedSong) Detail() string       { return s.detail }
func (s *PublishedSong) CreatedAt() time.Time { return s.createdAt }
func (s *PublishedSong) UpdatedAt() time.Time { return s.updatedAt }

// SetID assigns the generated identifier.
func (s *PublishedSong) SetID(id string) { s.id = id }

// SetSequence assigns the ledger sequence number.
func (s *PublishedSong) SetSequence(n int) { s.sequence = n }

// SetMedia records the hosted URLs of an uploaded song.
func (s *PublishedSong) SetMedia(songURL, coverURL string) {
	s.songURL = songURL
	s.coverURL = coverURL
	s.updatedAt = time.Now().UTC()
}

// SetDetail records a free-form note, usually an error message.
func (s *PublishedSong) SetDetail(detail string) {
	s.detail = detail
	s.updatedAt = time.Now().UTC()
}

// Validate checks required fields.
func (s *PublishedSong) Validate() error {
	if s.videoID == "" {
		return errors.New("video id is required")
	}
	switch s.outcome {
	case OutcomeSuccess, OutcomeError, OutcomeExists, OutcomeSkippedDuration:
	default:
		return errors.New("invalid outcome")
	}
	if s.outcome == OutcomeSuccess && s.songURL == "" {
		return errors.New("song url is required for a successful publish")
	}
	return nil
}

// MarshalJSON encodes the row with its exported accessors.
func (s *PublishedSong) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Sequence  int       `json:"sequence"`
		VideoID   string    `json:"video_id"`
		TaskID    string    `json:"task_id"`
		Title     string    `json:"title"`
		Artist    string    `json:"artist"`
		Duration  int       `json:"duration"`
		Outcome   Outcome   `json:"outcome"`
		SongURL   string    `json:"song_url,omitempty"`
		CoverURL  string    `json:"cover_url,omitempty"`
		Detail    string    `json:"detail,omitempty"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}{
		s.id, s.sequence, s.videoID, s.taskID, s.title, s.artist, s.duration,
		s.outcome, s.songURL, s.coverURL, s.detail, s.createdAt, s.updatedAt,
	})
}
