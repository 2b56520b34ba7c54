package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytingest/internal/formatter"
	"github.com/desertthunder/ytingest/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TaskListView ViewState = iota
	TaskDetailView
)

// TaskSource is the slice of the task API the dashboard reads. [services.TaskClient] implements it.
type TaskSource interface {
	Tasks(ctx context.Context, status string, active bool) (map[string]models.Task, error)
	Delete(ctx context.Context, id string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	source     TaskSource
	interval   time.Duration
	view       ViewState
	width      int
	height     int
	taskList   list.Model
	tasks      map[string]models.Task
	selected   string
	activeOnly bool
	lastSync   time.Time
	notice     string
	err        error
	spinner    spinner.Model
	bar        progress.Model
	help       help.Model
	keys       keyMap
}

// NewModel creates a dashboard that polls source every interval.
func NewModel(ctx context.Context, source TaskSource, interval time.Duration) *Model {
	if interval <= 0 {
		interval = time.Second
	}

	tl := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	tl.Title = "Ingestion Tasks"
	tl.SetFilteringEnabled(false)
	tl.SetShowHelp(false)

	return &Model{
		ctx:      ctx,
		source:   source,
		interval: interval,
		view:     TaskListView,
		taskList: tl,
		tasks:    map[string]models.Task{},
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts polling and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchTasks(true), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.taskList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TaskListView:
			return m.handleListKeys(msg)
		case TaskDetailView:
			return m.handleDetailKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTasksFetched:
		data := msg.data.(tasksFetched)
		m.err = data.err
		if data.err == nil {
			m.tasks = data.tasks
			m.lastSync = time.Now()
			m.syncList()
		}
		if data.poll {
			return m, m.scheduleRefresh()
		}
		return m, nil

	case MsgRefresh:
		return m, m.fetchTasks(true)

	case MsgTaskDeleted:
		data := msg.data.(taskDeleted)
		if data.err != nil {
			m.notice = fmt.Sprintf("delete %s failed: %v", data.id, data.err)
			return m, nil
		}
		m.notice = fmt.Sprintf("deleted %s", data.id)
		delete(m.tasks, data.id)
		m.syncList()
		return m, m.fetchTasks(false)
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case TaskDetailView:
		return m.renderDetail()
	default:
		return m.renderList()
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.taskList.SelectedItem().(taskItem); ok {
			m.selected = item.task.ID
			m.view = TaskDetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.active):
		m.activeOnly = !m.activeOnly
		m.syncList()
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchTasks(false)
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.taskList.SelectedItem().(taskItem); ok {
			return m, m.deleteTask(item.task.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = TaskListView
		return m, nil
	case key.Matches(msg, m.keys.remove):
		id := m.selected
		m.view = TaskListView
		return m, m.deleteTask(id)
	}
	return m, nil
}

// syncList rebuilds the list items from the latest snapshot, keeping the cursor in range.
func (m *Model) syncList() {
	visible := make(map[string]models.Task, len(m.tasks))
	for id, t := range m.tasks {
		if !m.activeOnly || t.Status.Active() {
			visible[id] = t
		}
	}

	sorted := formatter.SortTasks(visible)
	items := make([]list.Item, len(sorted))
	for i, t := range sorted {
		items[i] = taskItem{task: t}
	}

	index := m.taskList.Index()
	m.taskList.SetItems(items)
	if index >= len(items) && len(items) > 0 {
		m.taskList.Select(len(items) - 1)
	}
}

func (m *Model) fetchTasks(poll bool) tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.source.Tasks(m.ctx, "", false)
		return tasksFetchedMsg(tasks, err, poll)
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshMsg() })
}

func (m *Model) deleteTask(id string) tea.Cmd {
	return func() tea.Msg {
		return taskDeletedMsg(id, m.source.Delete(m.ctx, id))
	}
}

func (m *Model) renderList() string {
	var b strings.Builder

	b.WriteString(m.taskList.View())
	b.WriteString("\n")

	status := fmt.Sprintf("%d tasks", len(m.tasks))
	if m.activeOnly {
		status += " (active only)"
	}
	if !m.lastSync.IsZero() {
		status += " • synced " + m.lastSync.Format("15:04:05")
	}
	b.WriteString(styles.help.Render(status))

	if m.err != nil {
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.notice != "" {
		b.WriteString("\n" + styles.warn.Render(m.notice))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.active, m.keys.refresh, m.keys.remove, m.keys.quit}
	b.WriteString("\n\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderDetail() string {
	task, ok := m.tasks[m.selected]
	if !ok {
		return styles.err.Render(fmt.Sprintf("Task %s is gone\n\nPress esc to go back, q to quit", m.selected))
	}

	var b strings.Builder

	heading := fmt.Sprintf("%s %s", task.Kind.Label(), task.ID)
	if task.Status.Active() {
		heading = m.spinner.View() + " " + heading
	}
	b.WriteString(styles.title.Render(heading))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Status:  %s\n", styles.Status(task.Status).Render(string(task.Status)))
	fmt.Fprintf(&b, "Message: %s\n", task.Message)
	if task.DetailedStatus != models.PhaseNone {
		fmt.Fprintf(&b, "Step:    %s\n", task.DetailedStatus)
	}
	if task.Description != "" {
		fmt.Fprintf(&b, "Source:  %s\n", task.Description)
	}

	if c := task.Counters; c.Total > 0 {
		done := c.Total - c.Pending
		b.WriteString("\n" + m.bar.ViewAs(float64(done)/float64(c.Total)) + "\n")
		fmt.Fprintf(&b, "%s %d  %s %d  %s %d  %s %d  pending %d of %d\n",
			styles.ok.Render("success"), c.Success,
			styles.help.Render("exists"), c.Exists,
			styles.warn.Render("skipped"), c.SkippedDuration,
			styles.err.Render("error"), c.Error,
			c.Pending, c.Total,
		)
	}

	if task.Status == models.StatusFailed && task.Error != "" {
		b.WriteString("\n" + styles.err.Render("Error: "+task.Error) + "\n")
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.remove, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}
