package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

const songColumns = `id, sequence, video_id, task_id, title, artist, duration, outcome, song_url, cover_url, detail, created_at, updated_at`

// ErrSongNotFound is returned when no ledger row matches a lookup.
var ErrSongNotFound = errors.New("song not found")

// SongRepository implements models.Repository[*models.PublishedSong] over the published_songs table.
type SongRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PublishedSong] = (*SongRepository)(nil)

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts song with a generated ID and sequence
func (r *SongRepository) Create(song *models.PublishedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "published_songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	song.SetID(shared.GenerateID())
	song.SetSequence(sequence)

	query := `INSERT INTO published_songs (` + songColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		song.ID(),
		song.Sequence(),
		song.VideoID(),
		song.TaskID(),
		song.Title(),
		song.Artist(),
		song.Duration(),
		string(song.Outcome()),
		song.SongURL(),
		song.CoverURL(),
		song.Detail(),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}

// Get retrieves a ledger row by ID
func (r *SongRepository) Get(id string) (*models.PublishedSong, error) {
	row := r.db.QueryRow(`SELECT `+songColumns+` FROM published_songs WHERE id = ?`, id)
	return scanSong(row)
}

// LatestByVideoID returns the most recent ledger row for a video
func (r *SongRepository) LatestByVideoID(videoID string) (*models.PublishedSong, error) {
	row := r.db.QueryRow(
		`SELECT `+songColumns+` FROM published_songs WHERE video_id = ? ORDER BY sequence DESC LIMIT 1`,
		videoID,
	)
	return scanSong(row)
}

// Update rewrites the outcome, media URLs and detail of an existing row
func (r *SongRepository) Update(song *models.PublishedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	result, err := r.db.Exec(`
		UPDATE published_songs
		SET outcome = ?, song_url = ?, cover_url = ?, detail = ?, updated_at = ?
		WHERE id = ?
	`, string(song.Outcome()), song.SongURL(), song.CoverURL(), song.Detail(), now, song.ID())
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	return expectOneRow(result, song.ID())
}

// Delete removes a ledger row by ID
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM published_songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	return expectOneRow(result, id)
}

// List retrieves ledger rows in sequence order.
//
// Supported criteria: "task_id", "video_id", "outcome" (strings) and "limit" (int, newest rows first when set).
func (r *SongRepository) List(criteria map[string]any) ([]*models.PublishedSong, error) {
	query := `SELECT ` + songColumns + ` FROM published_songs WHERE 1 = 1`
	args := []any{}

	for _, key := range []string{"task_id", "video_id", "outcome"} {
		if v, ok := criteria[key].(string); ok && v != "" {
			query += " AND " + key + " = ?"
			args = append(args, v)
		}
	}

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query = `SELECT * FROM (` + query + ` ORDER BY sequence DESC LIMIT ?) ORDER BY sequence ASC`
		args = append(args, limit)
	} else {
		query += " ORDER BY sequence ASC"
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.PublishedSong
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

// CountByOutcome tallies ledger rows per outcome
func (r *SongRepository) CountByOutcome() (map[models.Outcome]int, error) {
	rows, err := r.db.Query(`SELECT outcome, COUNT(*) FROM published_songs GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count songs: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Outcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.Outcome(outcome)] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanSong reads one row from either [sql.Row] or [sql.Rows]
func scanSong(s scanner) (*models.PublishedSong, error) {
	var (
		id, videoID, taskID, title, artist string
		outcome, songURL, coverURL, detail string
		sequence, duration                 int
		createdAt, updatedAt               time.Time
	)

	err := s.Scan(&id, &sequence, &videoID, &taskID, &title, &artist, &duration,
		&outcome, &songURL, &coverURL, &detail, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	return models.RestorePublishedSong(
		id, sequence, videoID, taskID, title, artist, duration,
		models.Outcome(outcome), songURL, coverURL, detail, createdAt, updatedAt,
	), nil
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrSongNotFound, id)
	}
	return nil
}
