package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytingest/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTasksFetched MsgKind = iota
	MsgRefresh
	MsgTaskDeleted
)

type tasksFetched struct {
	tasks map[string]models.Task
	err   error
	poll  bool // Whether this fetch belongs to the polling loop and should schedule the next one
}

type taskDeleted struct {
	id  string
	err error
}

// tasksFetchedMsg is the constructor for [MsgTasksFetched]
func tasksFetchedMsg(tasks map[string]models.Task, err error, poll bool) Msg {
	return Msg{kind: MsgTasksFetched, data: tasksFetched{tasks, err, poll}}
}

// refreshMsg is the constructor for [MsgRefresh]
func refreshMsg() Msg {
	return Msg{kind: MsgRefresh}
}

// taskDeletedMsg is the constructor for [MsgTaskDeleted]
func taskDeletedMsg(id string, err error) Msg {
	return Msg{kind: MsgTaskDeleted, data: taskDeleted{id, err}}
}
