// Package ui implements a terminal dashboard for a running ingestion server using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [TaskListView] : every task with its status, progress marker and latest message
//  2. [TaskDetailView] : one task with a progress bar over its counters and the failure cause, if any
//
// The (view) [Model] polls a [TaskSource] on a fixed interval. Manual refreshes and deletes fetch once
// without starting a second polling loop.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a, r, d, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
