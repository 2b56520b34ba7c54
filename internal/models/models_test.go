package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCounters(t *testing.T) {
	t.Run("Merge overwrites only supplied keys", func(t *testing.T) {
		c := Counters{Total: 5, Pending: 5, Success: 1}
		c.Merge(CounterPatch{CounterPending: 3, CounterError: 1})

		if c.Total != 5 || c.Success != 1 {
			t.Errorf("untouched keys changed: %+v", c)
		}
		if c.Pending != 3 || c.Error != 1 {
			t.Errorf("expected pending 3 and error 1, got %+v", c)
		}
	})

	t.Run("Merge clamps negative values", func(t *testing.T) {
		c := Counters{Pending: 2}
		c.Merge(CounterPatch{CounterPending: -1})
		if c.Pending != 0 {
			t.Errorf("expected pending 0, got %d", c.Pending)
		}
	})

	t.Run("Record keeps pending derived", func(t *testing.T) {
		c := Counters{Total: 4, Pending: 4}
		for _, o := range []Outcome{OutcomeSuccess, OutcomeError, OutcomeExists, OutcomeSkippedDuration} {
			c.Record(o)
		}

		if c.Pending != 0 {
			t.Errorf("expected pending 0, got %d", c.Pending)
		}
		if c.Processed != 1 {
			t.Errorf("expected processed to count successes only, got %d", c.Processed)
		}
		if c.Success+c.Error+c.Exists+c.SkippedDuration != c.Total {
			t.Errorf("outcomes do not add up to total: %+v", c)
		}
	})
}

func TestPhase(t *testing.T) {
	t.Run("round trips through JSON", func(t *testing.T) {
		for p := PhaseInitiated; p <= PhaseSendingToAPI; p++ {
			data, err := json.Marshal(p)
			if err != nil {
				t.Fatalf("marshal %v: %v", p, err)
			}

			var got Phase
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal %s: %v", data, err)
			}
			if got != p {
				t.Errorf("expected %v, got %v", p, got)
			}
		}
	})

	t.Run("unknown tag", func(t *testing.T) {
		var p Phase
		if err := p.UnmarshalText([]byte("teleporting")); err == nil {
			t.Error("expected error for unknown phase")
		}
	})
}

func TestTaskView(t *testing.T) {
	t.Run("error only when failed", func(t *testing.T) {
		task := Task{ID: "a", Status: StatusCompleted, Message: "done", Error: "stale"}
		if v := task.View(); v.Error != "" {
			t.Errorf("expected no error for completed task, got %q", v.Error)
		}

		task.Status = StatusFailed
		if v := task.View(); v.Error != "stale" {
			t.Errorf("expected error to be carried, got %q", v.Error)
		}
	})

	t.Run("failed task falls back to message", func(t *testing.T) {
		task := Task{ID: "a", Status: StatusFailed, Message: "Failed to download audio"}
		if v := task.View(); v.Error != "Failed to download audio" {
			t.Errorf("expected message as error, got %q", v.Error)
		}
	})

	t.Run("JSON omits empty optional fields", func(t *testing.T) {
		data, err := json.Marshal(Task{ID: "a", Status: StatusProcessing}.View())
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if strings.Contains(string(data), "progress") || strings.Contains(string(data), "error") {
			t.Errorf("expected optional fields omitted, got %s", data)
		}
	})
}

func TestPublishedSong(t *testing.T) {
	info := VideoInfo{ID: "abc", Title: "Song", Artist: "Artist", Duration: 200}

	t.Run("Validate", func(t *testing.T) {
		s := NewPublishedSong("task", info, OutcomeSuccess)
		if err := s.Validate(); err == nil {
			t.Error("expected error for success without song url")
		}

		s.SetMedia("https://cdn/song.mp3", "")
		if err := s.Validate(); err != nil {
			t.Errorf("expected valid entry, got %v", err)
		}

		if err := NewPublishedSong("task", VideoInfo{}, OutcomeError).Validate(); err == nil {
			t.Error("expected error for missing video id")
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		s := NewPublishedSong("task", info, OutcomeExists)
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		out := string(data)
		for _, want := range []string{`"video_id":"abc"`, `"task_id":"task"`, `"outcome":"exists"`} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %s in %s", want, out)
			}
		}
		if strings.Contains(out, "song_url") {
			t.Errorf("expected empty song url to be omitted: %s", out)
		}
	})
}

func TestParseStatus(t *testing.T) {
	if _, err := ParseStatus("processing"); err != nil {
		t.Errorf("expected processing to parse, got %v", err)
	}
	if _, err := ParseStatus("paused"); err == nil {
		t.Error("expected error for unknown status")
	}
}
