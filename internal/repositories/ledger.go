package repositories

import (
	"fmt"

	"github.com/desertthunder/ytingest/internal/models"
)

// SongLedger implements tasks.OutcomeRecorder using SongRepository.
//
// Every item outcome becomes one row, so re-ingesting a video appends history rather than overwriting it.
type SongLedger struct {
	repo *SongRepository
}

// NewSongLedger creates a new SongLedger with the given repository
func NewSongLedger(repo *SongRepository) *SongLedger {
	return &SongLedger{repo: repo}
}

// RecordOutcome stores res under taskID.
func (l *SongLedger) RecordOutcome(taskID string, res models.ItemResult) error {
	song := models.NewPublishedSong(taskID, res.Info, res.Outcome)
	if res.SongURL != "" {
		song.SetMedia(res.SongURL, res.CoverURL)
	}
	if res.Err != nil {
		song.SetDetail(res.Err.Error())
	}

	if err := l.repo.Create(song); err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}
