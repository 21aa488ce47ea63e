package ui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shoplist/internal/device"
	"github.com/five82/shoplist/internal/logging"
	"github.com/five82/shoplist/internal/state"
)

// Controller is the view-state controller the UI drives.
type Controller interface {
	Snapshot() state.Snapshot
	Changes() <-chan struct{}
	History() []device.Recent

	Resolve(ctx context.Context) error
	CreateList(ctx context.Context) error
	OpenByID(ctx context.Context, ref string, fromHistory bool) error
	DismissNotFound()
	ClearError()

	ToggleChecked(ctx context.Context, itemID string) error
	AddItem(ctx context.Context, name string) error
	DeleteItem(ctx context.Context, itemID string) error
	UpdateQuantity(itemID string, quantity int) error
	Rename(ctx context.Context, name string) error
	DeleteList(ctx context.Context, confirm state.ConfirmFunc) (bool, error)
}

var _ Controller = (*state.Controller)(nil)

// Messages

type changedMsg struct{}

type resolvedMsg struct{ err error }

// opDoneMsg reports a fire-and-forget list operation.
type opDoneMsg struct {
	op  string
	err error
}

type openResultMsg struct{ err error }

type renameResultMsg struct{ err error }

type deleteListResultMsg struct {
	deleted bool
	err     error
}

type copiedMsg struct{ err error }

type clearFlashMsg struct{ seq int }

type logsLoadedMsg struct {
	lines []logging.Line
	err   error
}

// Commands

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func resolveCmd(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ResolveTimeout)
		defer cancel()
		return resolvedMsg{err: ctrl.Resolve(ctx)}
	}
}

func opCmd(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn()}
	}
}

func openListCmd(ctx context.Context, ctrl Controller, ref string, fromHistory bool) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{err: ctrl.OpenByID(ctx, ref, fromHistory)}
	}
}

func renameCmd(ctx context.Context, ctrl Controller, name string) tea.Cmd {
	return func() tea.Msg {
		return renameResultMsg{err: ctrl.Rename(ctx, name)}
	}
}

// deleteListCmd runs after the user has answered the confirmation dialog.
func deleteListCmd(ctx context.Context, ctrl Controller, confirmed bool) tea.Cmd {
	return func() tea.Msg {
		deleted, err := ctrl.DeleteList(ctx, func(string) bool { return confirmed })
		return deleteListResultMsg{deleted: deleted, err: err}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

func clearFlashCmd(seq int) tea.Cmd {
	return tea.Tick(FlashDuration, func(_ time.Time) tea.Msg {
		return clearFlashMsg{seq: seq}
	})
}

func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logging.Tail(path, LogTailLines)
		return logsLoadedMsg{lines: lines, err: err}
	}
}
