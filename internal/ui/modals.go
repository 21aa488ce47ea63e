package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/five82/shoplist/internal/device"
	"github.com/five82/shoplist/internal/shoplist"
	"github.com/five82/shoplist/internal/state"
)

// openModal asks for a share id or link and offers the recent lists.
type openModal struct {
	ctx       context.Context
	ctrl      Controller
	input     textinput.Model
	history   []device.Recent
	currentID string

	cursor       int
	focusHistory bool
	busy         bool
	err          string
}

func newOpenModal(ctx context.Context, ctrl Controller, currentID string) *openModal {
	in := textinput.New()
	in.Placeholder = "share id or link"
	in.CharLimit = 512
	in.Width = ModalWidth - 6
	in.Focus()
	return &openModal{
		ctx:       ctx,
		ctrl:      ctrl,
		input:     in,
		history:   ctrl.History(),
		currentID: currentID,
	}
}

// openErrorText turns an OpenByID error into the inline message.
func openErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, state.ErrListNotFound):
		return "No list with that id."
	case errors.Is(err, state.ErrBlankShareID):
		return "Enter a list id or a share link."
	default:
		return "Network error, try again."
	}
}

func (m *openModal) disabled(i int) bool {
	return m.currentID != "" && m.history[i].ShareID == m.currentID
}

func (m *openModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case openResultMsg:
		m.busy = false
		if msg.err == nil {
			return m, nil, true
		}
		m.err = openErrorText(msg.err)
		m.history = m.ctrl.History()
		m.cursor = clampIndex(m.cursor, len(m.history))
		if len(m.history) == 0 {
			m.focusHistory = false
			m.input.Focus()
		}
		return m, nil, false

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Escape):
			return m, nil, true
		case m.busy:
			return m, nil, false
		case key.Matches(msg, keys.NextPane):
			if len(m.history) > 0 {
				m.focusHistory = !m.focusHistory
				if m.focusHistory {
					m.input.Blur()
				} else {
					m.input.Focus()
				}
			}
			return m, nil, false
		}

		if m.focusHistory {
			switch {
			case key.Matches(msg, keys.Up):
				m.cursor = clampIndex(m.cursor-1, len(m.history))
			case key.Matches(msg, keys.Down):
				m.cursor = clampIndex(m.cursor+1, len(m.history))
			case key.Matches(msg, keys.Confirm):
				if m.disabled(m.cursor) {
					return m, nil, false
				}
				m.busy = true
				m.err = ""
				return m, openListCmd(m.ctx, m.ctrl, m.history[m.cursor].ShareID, true), false
			}
			return m, nil, false
		}

		if key.Matches(msg, keys.Confirm) {
			m.busy = true
			m.err = ""
			return m, openListCmd(m.ctx, m.ctrl, m.input.Value(), false), false
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

func (m *openModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(modalTitle(styles, "Open a list"))
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(styles.DangerText.Render(m.err))
		b.WriteString("\n")
	} else if m.busy {
		b.WriteString(styles.MutedText.Render("Looking up list..."))
		b.WriteString("\n")
	}

	if len(m.history) > 0 {
		b.WriteString("\n")
		heading := "Recent lists"
		if m.focusHistory {
			heading = styles.AccentText.Bold(true).Render(heading)
		} else {
			heading = styles.MutedText.Render(heading + " (tab)")
		}
		b.WriteString(heading)
		b.WriteString("\n")
		for i, entry := range m.history {
			label := entry.Name
			if strings.TrimSpace(label) == "" {
				label = shoplist.PlaceholderName
			}
			line := fmt.Sprintf("%s  %s", padRight(truncate(label, 24), 24), styles.FaintText.Render(entry.ShareID))
			switch {
			case m.disabled(i):
				line = styles.FaintText.Render(padRight(truncate(label, 24), 24) + "  open now")
			case m.focusHistory && i == m.cursor:
				line = styles.Selected.Render(padRight(truncate(label, 24), 24) + "  " + entry.ShareID)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter open · esc cancel"))
	return placeModal(theme, width, height, b.String())
}

type copyResetMsg struct{}

// shareModal shows the share id, the link, and a QR code of the link.
type shareModal struct {
	shareID string
	link    string
	qr      string
	copied  bool
	copyErr string
}

func newShareModal(shareID, baseURL string) *shareModal {
	link := shoplist.ShareLink(baseURL, shareID)
	m := &shareModal{shareID: shareID, link: link}
	if code, err := qrcode.New(link, qrcode.Low); err == nil {
		m.qr = strings.TrimRight(code.ToSmallString(false), "\n")
	}
	return m
}

func (m *shareModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case copiedMsg:
		if msg.err != nil {
			m.copyErr = "Clipboard unavailable: " + msg.err.Error()
			return m, nil, false
		}
		m.copied = true
		m.copyErr = ""
		return m, tea.Tick(FlashDuration, func(time.Time) tea.Msg { return copyResetMsg{} }), false
	case copyResetMsg:
		m.copied = false
		return m, nil, false
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Copy):
			return m, copyCmd(m.link), false
		case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Confirm), key.Matches(msg, keys.Share):
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m *shareModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(modalTitle(styles, "Share this list"))
	b.WriteString(styles.MutedText.Render("List id  "))
	b.WriteString(styles.Text.Render(m.shareID))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Link     "))
	b.WriteString(styles.AccentText.Render(m.link))
	b.WriteString("\n")
	if m.qr != "" && height > strings.Count(m.qr, "\n")+14 {
		b.WriteString("\n")
		b.WriteString(m.qr)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case m.copied:
		b.WriteString(styles.SuccessText.Render("Copied!"))
	case m.copyErr != "":
		b.WriteString(styles.DangerText.Render(m.copyErr))
	default:
		b.WriteString(styles.FaintText.Render("c copy link · esc close"))
	}
	return placeModal(theme, width, height, b.String())
}

// renameModal edits the list name.
type renameModal struct {
	ctx   context.Context
	ctrl  Controller
	input textinput.Model
	busy  bool
	err   string
}

func newRenameModal(ctx context.Context, ctrl Controller, current string) *renameModal {
	in := textinput.New()
	in.CharLimit = 200
	in.Width = ModalWidth - 6
	in.SetValue(current)
	in.CursorEnd()
	in.Focus()
	return &renameModal{ctx: ctx, ctrl: ctrl, input: in}
}

func (m *renameModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case renameResultMsg:
		m.busy = false
		if msg.err == nil {
			return m, nil, true
		}
		m.err = "Could not rename: " + msg.err.Error()
		return m, nil, false
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Escape):
			return m, nil, true
		case m.busy:
			return m, nil, false
		case key.Matches(msg, keys.Confirm):
			m.busy = true
			m.err = ""
			return m, renameCmd(m.ctx, m.ctrl, m.input.Value()), false
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

func (m *renameModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(modalTitle(styles, "Rename list"))
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(styles.DangerText.Render(truncate(m.err, ModalWidth-4)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter save · esc cancel"))
	return placeModal(theme, width, height, b.String())
}

// confirmModal asks a yes/no question before a destructive action.
type confirmModal struct {
	prompt string
	onYes  tea.Cmd
}

func newConfirmModal(prompt string, onYes tea.Cmd) *confirmModal {
	return &confirmModal{prompt: prompt, onYes: onYes}
}

func (m *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Yes):
			return m, m.onYes, true
		case key.Matches(k, keys.No):
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := modalTitle(styles, "Are you sure?") +
		styles.Text.Render(m.prompt) + "\n\n" +
		styles.Key.Render("y") + styles.MutedText.Render(" yes   ") +
		styles.Key.Render("n") + styles.MutedText.Render(" no")
	return placeModal(theme, width, height, body)
}

// alertModal blocks until any key is pressed.
type alertModal struct {
	title   string
	message string
}

func newAlertModal(title, message string) *alertModal {
	return &alertModal{title: title, message: message}
}

func (m *alertModal) Update(msg tea.Msg, _ keyMap) (Modal, tea.Cmd, bool) {
	_, isKey := msg.(tea.KeyMsg)
	return m, nil, isKey
}

func (m *alertModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := modalTitle(styles, m.title) +
		styles.DangerText.Render(m.message) + "\n\n" +
		styles.FaintText.Render("press any key")
	return placeModal(theme, width, height, body)
}
