package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/ytingest/internal/formatter"
	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultPollInterval = 2 * time.Second

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// ProcessVideo submits a single video.
func (r *Runner) ProcessVideo(ctx context.Context, cmd *cli.Command) error {
	return r.submit(ctx, cmd, models.KindVideo)
}

// ProcessPlaylist submits a playlist with --skip and --limit.
func (r *Runner) ProcessPlaylist(ctx context.Context, cmd *cli.Command) error {
	return r.submit(ctx, cmd, models.KindPlaylist)
}

// ProcessChannel submits a channel with --skip and --limit.
func (r *Runner) ProcessChannel(ctx context.Context, cmd *cli.Command) error {
	return r.submit(ctx, cmd, models.KindChannel)
}

func (r *Runner) submit(ctx context.Context, cmd *cli.Command, kind models.Kind) error {
	target := strings.TrimSpace(cmd.StringArg("url"))
	if target == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	skip, limit := 0, 0
	if kind != models.KindVideo {
		skip, limit = cmd.Int("skip"), cmd.Int("limit")
		if skip < 0 || limit < 1 {
			return fmt.Errorf("%w: skip must be >= 0 and limit must be >= 1", shared.ErrInvalidArgument)
		}
	}

	client := r.client(cmd)
	resp, err := client.Submit(ctx, kind, target, skip, limit)
	if err != nil {
		return fmt.Errorf("failed to submit %s: %w", kind, err)
	}
	r.logger.Debug("task submitted", "task_id", resp.TaskID, "kind", kind)

	if !cmd.Bool("wait") {
		if cmd.Bool("json") {
			return r.writeJSON(resp, true)
		}
		r.writePlain("Task %s: %s\n", resp.TaskID, resp.Message)
		return nil
	}

	view, err := r.waitFor(ctx, cmd, resp.TaskID)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}
	return r.printView(*view)
}

// waitFor polls the task until it leaves the processing state, printing each new message.
func (r *Runner) waitFor(ctx context.Context, cmd *cli.Command, id string) (*models.StatusView, error) {
	client := r.client(cmd)
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	last := ""
	for {
		view, err := client.Status(ctx, id)
		if err != nil {
			return nil, err
		}
		if !cmd.Bool("json") && view.Message != last {
			last = view.Message
			r.writePlain("  %s\n", view.Message)
		}
		if !view.Status.Active() {
			return view, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Status prints the compact status of one task.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}

	view, err := r.client(cmd).Status(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}
	return r.printView(*view)
}

func (r *Runner) printView(view models.StatusView) error {
	status := string(view.Status)
	switch view.Status {
	case models.StatusCompleted:
		status = okStyle.Render(status)
	case models.StatusFailed:
		status = failStyle.Render(status)
	}

	r.writePlainHeader("Task " + view.ID)
	r.writePlain("Status:   %s\n", status)
	r.writePlain("Message:  %s\n", view.Message)
	if view.Progress != "" {
		r.writePlain("Progress: %s\n", view.Progress)
	}
	if view.Error != "" {
		r.writePlain("Error:    %s\n", view.Error)
	}
	return r.writePlain("Updated:  %s\n", view.UpdatedAt.Local().Format(time.DateTime))
}

// Tasks lists tasks, narrowed by --status or --active.
func (r *Runner) Tasks(ctx context.Context, cmd *cli.Command) error {
	status := cmd.String("status")
	if status != "" {
		if _, err := models.ParseStatus(status); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
	}

	found, err := r.client(cmd).Tasks(ctx, status, cmd.Bool("active"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.TaskList{Tasks: found}, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.TasksToText(formatter.SortTasks(found)))
}

// Delete removes a task from the server registry.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}

	if err := r.client(cmd).Delete(ctx, id); err != nil {
		return err
	}
	r.writePlain("✓ Deleted task %s\n", id)
	return nil
}
