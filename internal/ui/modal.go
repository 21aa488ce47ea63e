package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// placeModal centers a rendered dialog on screen.
func placeModal(theme Theme, width, height int, content string) string {
	box := theme.Styles().Modal.Width(ModalWidth).Render(content)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// modalTitle renders a dialog heading with a rule underneath.
func modalTitle(styles Styles, title string) string {
	return styles.Text.Bold(true).Render(title) + "\n" +
		styles.FaintText.Render(repeatRule(ModalWidth-4)) + "\n\n"
}

func repeatRule(n int) string {
	return strings.Repeat("─", maxInt(n, 0))
}
