// package formatter renders tasks and ledger history as plain text, CSV and Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

// SortTasks returns the tasks of m ordered by creation time, oldest first, with id as tie-break.
func SortTasks(m map[string]models.Task) []models.Task {
	out := make([]models.Task, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// TaskToText renders a single task with its counters.
func TaskToText(task models.Task) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Task: %s\n", task.ID)
	fmt.Fprintf(&buf, "Type: %s\n", task.Kind)
	if task.Description != "" {
		fmt.Fprintf(&buf, "Source: %s\n", task.Description)
	}
	fmt.Fprintf(&buf, "Status: %s\n", task.Status)
	fmt.Fprintf(&buf, "Message: %s\n", task.Message)
	if task.Progress != "" {
		fmt.Fprintf(&buf, "Progress: %s\n", task.Progress)
	}
	if task.DetailedStatus != models.PhaseNone {
		fmt.Fprintf(&buf, "Step: %s\n", task.DetailedStatus)
	}
	if task.Error != "" {
		fmt.Fprintf(&buf, "Error: %s\n", task.Error)
	}

	c := task.Counters
	if c.Total > 0 {
		fmt.Fprintf(&buf, "Counters: total=%d success=%d exists=%d skipped=%d error=%d pending=%d\n",
			c.Total, c.Success, c.Exists, c.SkippedDuration, c.Error, c.Pending)
	}
	fmt.Fprintf(&buf, "Updated: %s\n", task.UpdatedAt.Format(time.RFC3339))

	return buf.Bytes()
}

// TasksToText renders one line per task.
func TasksToText(tasks []models.Task) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Tasks: %d\n\n", len(tasks))
	for _, t := range tasks {
		progress := ""
		if t.Progress != "" {
			progress = " [" + t.Progress + "]"
		}
		fmt.Fprintf(&buf, "%s  %-10s %-8s%s %s\n", t.ID, t.Status, t.Kind, progress, t.Message)
	}

	return buf.Bytes()
}

// SongsToCSV converts ledger rows to CSV with columns: Sequence, Video ID, Task ID, Title, Artist, Duration, Outcome, Song URL, Cover URL, Detail, Recorded At
func SongsToCSV(songs []*models.PublishedSong) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "Video ID", "Task ID", "Title", "Artist", "Duration", "Outcome", "Song URL", "Cover URL", "Detail", "Recorded At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range songs {
		record := []string{
			strconv.Itoa(s.Sequence()),
			s.VideoID(),
			s.TaskID(),
			s.Title(),
			s.Artist(),
			strconv.Itoa(s.Duration()),
			string(s.Outcome()),
			s.SongURL(),
			s.CoverURL(),
			s.Detail(),
			s.CreatedAt().UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SongsToMarkdown renders ledger rows as a Markdown report with an outcome summary.
func SongsToMarkdown(songs []*models.PublishedSong, counts map[models.Outcome]int) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Ingestion History\n\n")

	if len(counts) > 0 {
		buf.WriteString("## Summary\n\n")
		for _, o := range []models.Outcome{models.OutcomeSuccess, models.OutcomeExists, models.OutcomeSkippedDuration, models.OutcomeError} {
			fmt.Fprintf(&buf, "- **%s**: %d\n", o, counts[o])
		}
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "## Songs (%d)\n\n", len(songs))
	for _, s := range songs {
		line := fmt.Sprintf("%d. %s - %s [%s] `%s`", s.Sequence(), s.Artist(), s.Title(), shared.FormatDuration(s.Duration()), s.Outcome())
		if s.SongURL() != "" {
			line += fmt.Sprintf(" ([audio](%s))", s.SongURL())
		}
		if s.Detail() != "" {
			line += " : " + s.Detail()
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes()
}

// SongsToText renders ledger rows as plain text.
func SongsToText(songs []*models.PublishedSong) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Songs: %d\n\n", len(songs))
	for _, s := range songs {
		fmt.Fprintf(&buf, "%d. [%s] %s - %s (%s)\n", s.Sequence(), s.Outcome(), s.Artist(), s.Title(), s.VideoID())
	}

	return buf.Bytes()
}

// WriteCSVExport writes ledger rows to path and returns the number of rows written.
func WriteCSVExport(songs []*models.PublishedSong, path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	data, err := SongsToCSV(songs)
	if err != nil {
		return 0, fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write CSV file: %w", err)
	}
	return len(songs), nil
}
