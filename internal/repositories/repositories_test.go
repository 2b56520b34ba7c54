package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func testInfo(id string) models.VideoInfo {
	return models.VideoInfo{ID: id, Title: "Title " + id, Artist: "Artist", Duration: 200, URL: "https://youtu.be/" + id}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "published_songs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for table without a sequence")
	}
}

func TestSongRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewPublishedSong("task-1", testInfo("a"), models.OutcomeExists)

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if song.ID() == "" {
			t.Error("ID should be set after creation")
		}
		if song.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", song.Sequence())
		}
	})

	t.Run("Create rejects invalid rows", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewPublishedSong("task-1", testInfo("a"), models.OutcomeSuccess)

		if err := repo.Create(song); err == nil {
			t.Fatal("expected validation error for success without song url")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewPublishedSong("task-1", testInfo("a"), models.OutcomeSuccess)
		song.SetMedia("https://media.test/a.mp3", "https://media.test/a.jpg")

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		got, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if got.VideoID() != "a" || got.TaskID() != "task-1" {
			t.Errorf("unexpected identity %s/%s", got.VideoID(), got.TaskID())
		}
		if got.SongURL() != "https://media.test/a.mp3" || got.CoverURL() != "https://media.test/a.jpg" {
			t.Errorf("unexpected media %q %q", got.SongURL(), got.CoverURL())
		}
		if got.Outcome() != models.OutcomeSuccess || got.Duration() != 200 {
			t.Errorf("unexpected fields %s %d", got.Outcome(), got.Duration())
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))

		if _, err := repo.Get("nope"); !errors.Is(err, ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewPublishedSong("task-1", testInfo("a"), models.OutcomeError)
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		song.SetDetail("retry later")
		if err := repo.Update(song); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		got, _ := repo.Get(song.ID())
		if got.Detail() != "retry later" {
			t.Errorf("expected detail to be updated, got %q", got.Detail())
		}
	})

	t.Run("Update and Delete not found", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewPublishedSong("task-1", testInfo("a"), models.OutcomeError)
		song.SetID("ghost")

		if err := repo.Update(song); !errors.Is(err, ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound on update, got %v", err)
		}
		if err := repo.Delete("ghost"); !errors.Is(err, ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound on delete, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewPublishedSong("task-1", testInfo("a"), models.OutcomeExists)
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		if err := repo.Delete(song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}
		if _, err := repo.Get(song.ID()); err == nil {
			t.Error("expected deleted song to be gone")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		rows := []struct {
			task    string
			id      string
			outcome models.Outcome
		}{
			{"t1", "a", models.OutcomeExists},
			{"t1", "b", models.OutcomeError},
			{"t2", "a", models.OutcomeSkippedDuration},
			{"t2", "c", models.OutcomeExists},
		}
		for _, row := range rows {
			if err := repo.Create(models.NewPublishedSong(row.task, testInfo(row.id), row.outcome)); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
		}

		tests := []struct {
			name     string
			criteria map[string]any
			want     []string
		}{
			{"all", nil, []string{"a", "b", "a", "c"}},
			{"by task", map[string]any{"task_id": "t2"}, []string{"a", "c"}},
			{"by video", map[string]any{"video_id": "a"}, []string{"a", "a"}},
			{"by outcome", map[string]any{"outcome": "exists"}, []string{"a", "c"}},
			{"newest two", map[string]any{"limit": 2}, []string{"a", "c"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				songs, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list songs: %v", err)
				}
				if len(songs) != len(tt.want) {
					t.Fatalf("expected %d songs, got %d", len(tt.want), len(songs))
				}
				for i, song := range songs {
					if song.VideoID() != tt.want[i] {
						t.Errorf("row %d: expected %s, got %s", i, tt.want[i], song.VideoID())
					}
				}
			})
		}
	})

	t.Run("LatestByVideoID", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		repo.Create(models.NewPublishedSong("t1", testInfo("a"), models.OutcomeError))
		repo.Create(models.NewPublishedSong("t2", testInfo("a"), models.OutcomeExists))

		got, err := repo.LatestByVideoID("a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.TaskID() != "t2" {
			t.Errorf("expected latest row from t2, got %s", got.TaskID())
		}
	})

	t.Run("CountByOutcome", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		repo.Create(models.NewPublishedSong("t1", testInfo("a"), models.OutcomeError))
		repo.Create(models.NewPublishedSong("t1", testInfo("b"), models.OutcomeError))
		repo.Create(models.NewPublishedSong("t1", testInfo("c"), models.OutcomeExists))

		counts, err := repo.CountByOutcome()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if counts[models.OutcomeError] != 2 || counts[models.OutcomeExists] != 1 {
			t.Errorf("unexpected counts %v", counts)
		}
	})
}

func TestSongLedger(t *testing.T) {
	t.Run("Records success with media", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		ledger := NewSongLedger(repo)

		err := ledger.RecordOutcome("t1", models.ItemResult{
			Info:     testInfo("a"),
			Outcome:  models.OutcomeSuccess,
			SongURL:  "https://media.test/a.mp3",
			CoverURL: "https://media.test/a.jpg",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := repo.LatestByVideoID("a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.SongURL() != "https://media.test/a.mp3" || got.Outcome() != models.OutcomeSuccess {
			t.Errorf("unexpected row %+v", got)
		}
	})

	t.Run("Records error detail", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		ledger := NewSongLedger(repo)

		err := ledger.RecordOutcome("t1", models.ItemResult{
			Info:    testInfo("a"),
			Outcome: models.OutcomeError,
			Err:     shared.ErrUploadFailed,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, _ := repo.LatestByVideoID("a")
		if got.Detail() != shared.ErrUploadFailed.Error() {
			t.Errorf("expected error detail, got %q", got.Detail())
		}
	})

	t.Run("Rejects rows without a video id", func(t *testing.T) {
		ledger := NewSongLedger(NewSongRepository(setupTestDB(t)))

		if err := ledger.RecordOutcome("t1", models.ItemResult{Outcome: models.OutcomeError}); err == nil {
			t.Error("expected validation error")
		}
	})
}
