package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/registry"
	"github.com/desertthunder/ytingest/internal/repositories"
	"github.com/desertthunder/ytingest/internal/server"
	"github.com/desertthunder/ytingest/internal/shared"
	"github.com/desertthunder/ytingest/internal/tasks"
	"github.com/urfave/cli/v3"
)

// finishingDispatcher completes every job as soon as it is dispatched.
type finishingDispatcher struct {
	mu   sync.Mutex
	reg  *registry.Registry
	jobs []tasks.Job
}

func (d *finishingDispatcher) Dispatch(job tasks.Job) {
	d.mu.Lock()
	d.jobs = append(d.jobs, job)
	d.mu.Unlock()

	d.reg.Update(job.ID, registry.Update{Status: models.StatusCompleted, Message: "Video processed successfully"})
}

func (d *finishingDispatcher) Jobs() []tasks.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]tasks.Job(nil), d.jobs...)
}

type cliHarness struct {
	reg        *registry.Registry
	dispatcher *finishingDispatcher
	output     *bytes.Buffer
	runner     *Runner
	url        string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	reg := registry.New(logger, nil)
	dispatcher := &finishingDispatcher{reg: reg}

	router := server.NewBasicRouter()
	router.Handler(server.NewTaskHandler(reg, dispatcher, logger))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	output := &bytes.Buffer{}
	return &cliHarness{
		reg:        reg,
		dispatcher: dispatcher,
		output:     output,
		runner:     NewRunner(RunnerOpts{Logger: logger, Output: output, HTTPClient: srv.Client()}),
		url:        srv.URL,
	}
}

func (h *cliHarness) run(args ...string) error {
	app := &cli.Command{
		Name:      "ytingest",
		Commands:  h.runner.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(context.Background(), append([]string{"ytingest"}, args...))
}

func TestProcessCommands(t *testing.T) {
	t.Run("playlist submits skip and limit", func(t *testing.T) {
		h := newHarness(t)

		err := h.run("process", "playlist", "--server", h.url, "--skip", "2", "--limit", "5", "https://youtube.com/playlist?list=PL1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		jobs := h.dispatcher.Jobs()
		if len(jobs) != 1 {
			t.Fatalf("expected 1 job, got %d", len(jobs))
		}
		if jobs[0].Kind != models.KindPlaylist || jobs[0].Skip != 2 || jobs[0].Limit != 5 {
			t.Errorf("unexpected job %+v", jobs[0])
		}
		if !strings.Contains(h.output.String(), "Task "+jobs[0].ID) {
			t.Errorf("expected task id in output, got %q", h.output.String())
		}
	})

	t.Run("video with json output", func(t *testing.T) {
		h := newHarness(t)

		if err := h.run("process", "video", "--server", h.url, "--json", "https://youtu.be/abc"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var resp models.ProcessResponse
		if err := json.Unmarshal(h.output.Bytes(), &resp); err != nil {
			t.Fatalf("expected JSON output, got %q", h.output.String())
		}
		if resp.Status != models.StatusProcessing || resp.TaskID == "" {
			t.Errorf("unexpected response %+v", resp)
		}
		if resp.Skip != nil || resp.Limit != nil {
			t.Error("expected no skip/limit for a single video")
		}
	})

	t.Run("wait polls until the task finishes", func(t *testing.T) {
		h := newHarness(t)

		if err := h.run("process", "video", "--server", h.url, "--wait", "https://youtu.be/abc"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := h.output.String()
		if !strings.Contains(out, "Video processed successfully") || !strings.Contains(out, "completed") {
			t.Errorf("expected final status, got %q", out)
		}
	})

	t.Run("missing url", func(t *testing.T) {
		h := newHarness(t)

		err := h.run("process", "video", "--server", h.url)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("invalid limit is rejected before submitting", func(t *testing.T) {
		h := newHarness(t)

		err := h.run("process", "channel", "--server", h.url, "--limit", "0", "@artist")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if len(h.dispatcher.Jobs()) != 0 {
			t.Error("expected nothing to be dispatched")
		}
	})
}

func TestTaskCommands(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		h := newHarness(t)
		h.reg.Create("t1", models.KindVideo, "https://youtu.be/abc")
		h.reg.Update("t1", registry.Update{Status: models.StatusFailed, Message: "Failed", Error: "no audio"})

		if err := h.run("status", "--server", h.url, "t1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := h.output.String()
		for _, want := range []string{"Task t1", "failed", "Error:    no audio"} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in %q", want, out)
			}
		}
	})

	t.Run("status of unknown task", func(t *testing.T) {
		h := newHarness(t)

		err := h.run("status", "--server", h.url, "missing")
		if !errors.Is(err, shared.ErrTaskNotFound) {
			t.Errorf("expected ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("tasks filtered to active", func(t *testing.T) {
		h := newHarness(t)
		h.reg.Create("busy", models.KindPlaylist, "PL1")
		h.reg.Create("done", models.KindVideo, "abc")
		h.reg.Update("done", registry.Update{Status: models.StatusCompleted, Message: "Video processed successfully"})

		if err := h.run("tasks", "--server", h.url, "--active", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var list models.TaskList
		if err := json.Unmarshal(h.output.Bytes(), &list); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(list.Tasks) != 1 {
			t.Fatalf("expected 1 active task, got %d", len(list.Tasks))
		}
		if _, ok := list.Tasks["busy"]; !ok {
			t.Error("expected busy task")
		}
	})

	t.Run("tasks as text", func(t *testing.T) {
		h := newHarness(t)
		h.reg.Create("t1", models.KindVideo, "abc")

		if err := h.run("tasks", "--server", h.url); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(h.output.String(), "Tasks: 1\n") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("tasks with unknown status", func(t *testing.T) {
		h := newHarness(t)

		err := h.run("tasks", "--server", h.url, "--status", "paused")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		h := newHarness(t)
		h.reg.Create("t1", models.KindVideo, "abc")

		if err := h.run("delete", "--server", h.url, "t1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := h.reg.Get("t1"); ok {
			t.Error("expected task to be removed")
		}

		err := h.run("delete", "--server", h.url, "t1")
		if !errors.Is(err, shared.ErrTaskNotFound) {
			t.Errorf("expected ErrTaskNotFound on second delete, got %v", err)
		}
	})
}

func seedLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ledger.db")

	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := repositories.NewSongRepository(db)
	ok := models.NewPublishedSong("task-1", models.VideoInfo{ID: "vid1", Title: "One", Artist: "A", Duration: 200}, models.OutcomeSuccess)
	ok.SetMedia("https://media.test/vid1.mp3", "")
	skipped := models.NewPublishedSong("task-2", models.VideoInfo{ID: "vid2", Title: "Two", Artist: "B", Duration: 30}, models.OutcomeSkippedDuration)
	for _, s := range []*models.PublishedSong{ok, skipped} {
		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
	}

	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[database]\npath = \""+dbPath+"\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestHistoryCommand(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		h := newHarness(t)
		configPath := seedLedger(t)

		if err := h.run("history", "--config", configPath, "--format", "csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, err := csv.NewReader(h.output).ReadAll()
		if err != nil {
			t.Fatalf("expected CSV output: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("expected header + 2 rows, got %d", len(records))
		}
	})

	t.Run("filtered by task as json", func(t *testing.T) {
		h := newHarness(t)
		configPath := seedLedger(t)

		if err := h.run("history", "--config", configPath, "--task", "task-2", "--format", "json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var rows []map[string]any
		if err := json.Unmarshal(h.output.Bytes(), &rows); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(rows) != 1 || rows[0]["video_id"] != "vid2" {
			t.Errorf("unexpected rows %v", rows)
		}
	})

	t.Run("markdown includes the summary", func(t *testing.T) {
		h := newHarness(t)
		configPath := seedLedger(t)

		if err := h.run("history", "--config", configPath, "--format", "markdown"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "- **skipped_duration**: 1") {
			t.Errorf("expected summary, got %q", h.output.String())
		}
	})

	t.Run("export to file", func(t *testing.T) {
		h := newHarness(t)
		configPath := seedLedger(t)
		out := filepath.Join(t.TempDir(), "export.csv")

		if err := h.run("history", "--config", configPath, "--output", out); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "Exported 2 rows") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		h := newHarness(t)
		configPath := seedLedger(t)

		err := h.run("history", "--config", configPath, "--format", "xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config writes the template", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := h.run("setup", "config", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("expected loadable config, got %v", err)
		}
		if err := h.run("setup", "config", path); err == nil {
			t.Error("expected error when the file exists")
		}
	})

	t.Run("database runs migrations", func(t *testing.T) {
		h := newHarness(t)
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "setup.db")
		configPath := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(configPath, []byte("[database]\npath = \""+dbPath+"\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if err := h.run("setup", "database", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(dbPath); err != nil {
			t.Errorf("expected database file: %v", err)
		}
		if !strings.Contains(h.output.String(), "Applied 1 migration") {
			t.Errorf("expected applied summary, got %q", h.output.String())
		}
	})

	t.Run("database rollback reverts latest migration", func(t *testing.T) {
		h := newHarness(t)
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "setup.db")
		configPath := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(configPath, []byte("[database]\npath = \""+dbPath+"\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if err := h.run("setup", "database", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := h.run("setup", "database", "--config", configPath, "--rollback"); err != nil {
			t.Fatalf("expected rollback to succeed, got %v", err)
		}
		if !strings.Contains(h.output.String(), "Rolled back migration 0000 (create_published_songs)") {
			t.Errorf("expected rollback summary, got %q", h.output.String())
		}

		db, err := shared.NewDatabase(dbPath)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var tables int
		if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='published_songs'").Scan(&tables); err != nil {
			t.Fatalf("failed to query sqlite_master: %v", err)
		}
		if tables != 0 {
			t.Error("expected published_songs to be dropped")
		}

		err = h.run("setup", "database", "--config", configPath, "--rollback")
		if !errors.Is(err, shared.ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations on empty schema, got %v", err)
		}
	})
}

func TestServeValidation(t *testing.T) {
	h := newHarness(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[catalog]\nbase_url = \"\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CATALOG_BASE_URL", "")

	err := h.run("serve", "--config", configPath)
	if !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
