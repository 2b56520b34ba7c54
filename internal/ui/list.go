package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ytingest/internal/models"
)

var _ list.Item = taskItem{}

// taskItem wraps [models.Task] to implement [list.Item].
type taskItem struct {
	task models.Task
}

func (i taskItem) FilterValue() string { return i.task.Description }
func (i taskItem) Title() string {
	return fmt.Sprintf("%s  %s", styles.Status(i.task.Status).Render(string(i.task.Status)), i.task.Kind.Label())
}
func (i taskItem) Description() string {
	desc := i.task.Message
	if i.task.Progress != "" {
		desc = fmt.Sprintf("[%s] %s", i.task.Progress, desc)
	}
	return desc
}
