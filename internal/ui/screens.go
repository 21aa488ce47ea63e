package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shoplist/internal/shoplist"
	"github.com/five82/shoplist/internal/state"
)

type button struct {
	key   string
	label string
}

// renderButtons renders a row of key buttons. Narrow terminals get keys
// only.
func (m Model) renderButtons(buttons []button) string {
	styles := m.theme.Styles()
	compact := m.width > 0 && m.width < LayoutCompactWidth
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		if compact {
			parts = append(parts, styles.Key.Render(b.key))
			continue
		}
		parts = append(parts, styles.Button.Render(styles.Key.Render(b.key)+" "+b.label))
	}
	return strings.Join(parts, " ")
}

// renderHeader renders the top bar: app name, list name, progress.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render(" shoplist ", styles.Logo)}
	if list := m.snap.List; list != nil {
		parts = append(parts, bg.Render(truncate(list.DisplayName(), 40), styles.Text.Bold(true)))
		total := len(list.Items)
		if total > 0 {
			parts = append(parts, bg.Render(fmt.Sprintf("%d/%d checked", list.CheckedCount(), total), styles.MutedText))
		}
		if m.snap.PendingQuantities > 0 {
			parts = append(parts, bg.Render("syncing...", styles.WarningText))
		}
	}
	return bg.FillLine(bg.Join(parts, " · "), m.width)
}

// renderFooter renders the flash message or the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var content string
	switch {
	case m.flash != "" && m.flashDanger:
		content = styles.DangerText.Render(m.flash)
	case m.flash != "":
		content = styles.SuccessText.Render(m.flash)
	case m.snap.LastError != nil:
		content = styles.DangerText.Render(truncate("Error: "+m.snap.LastError.Error(), maxInt(m.width-4, 10)))
	default:
		content = m.renderShortHelp()
	}
	return styles.Footer.Width(m.width).Render(content)
}

// renderBody renders the screen for the current view.
func (m Model) renderBody(height int) string {
	switch m.view() {
	case state.ViewLoading:
		return m.centered(height, m.spinner.View()+" Loading list...")
	case state.ViewNotFound:
		return m.renderNotFound(height)
	case state.ViewEmpty:
		return m.renderEmpty(height)
	case state.ViewFilled:
		return m.renderList(height)
	default:
		return ""
	}
}

func (m Model) centered(height int, content string) string {
	return lipgloss.Place(m.width, maxInt(height, 1), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderNotFound(height int) string {
	styles := m.theme.Styles()
	body := styles.DangerText.Render("List not found") + "\n\n" +
		styles.MutedText.Render("It may have been deleted, or the link is wrong.") + "\n\n" +
		m.renderButtons([]button{{"n", "Create new list"}, {"o", "Open another"}})
	return m.centered(height, styles.Panel.Render(body))
}

func (m Model) renderEmpty(height int) string {
	styles := m.theme.Styles()
	body := styles.Logo.Render(shoplist.PlaceholderName) + "\n\n" +
		styles.MutedText.Render("Start a new list or open one shared with you.") + "\n\n" +
		m.renderButtons([]button{{"n", "New list"}, {"o", "Open list"}})
	return m.centered(height, styles.Panel.Render(body))
}

// listButtons are the list-level actions shown above the items.
var listButtons = []button{
	{"a", "Add"},
	{"r", "Rename"},
	{"s", "Share"},
	{"o", "Open"},
	{"n", "New"},
	{"D", "Delete"},
}

func (m Model) renderList(height int) string {
	styles := m.theme.Styles()
	list := m.snap.List
	items := list.SortedItems()

	var b strings.Builder
	b.WriteString(m.renderButtons(listButtons))
	b.WriteString("\n\n")
	rows := height - 2
	if m.adding {
		rows -= 2
	}

	if len(items) == 0 {
		b.WriteString(styles.MutedText.Render("  No items yet. Press a to add one."))
		b.WriteString("\n")
	} else {
		start, end := visibleRange(m.cursor, len(items), rows)
		nameWidth := maxInt(m.width-24, 10)
		for i := start; i < end; i++ {
			b.WriteString(m.renderItem(items[i], i == m.cursor, nameWidth))
			b.WriteString("\n")
		}
	}

	if m.adding {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Render("  Add: "))
		b.WriteString(m.addInput.View())
	}
	return b.String()
}

func (m Model) renderItem(item shoplist.Item, selected bool, nameWidth int) string {
	styles := m.theme.Styles()
	box := "[ ]"
	name := padRight(truncate(item.Name, nameWidth), nameWidth)
	nameStyle := styles.Text
	if item.Checked {
		box = "[x]"
		nameStyle = styles.Checked
	}
	minus := "-"
	if item.Quantity <= shoplist.MinQuantity {
		minus = " "
	}
	qty := fmt.Sprintf("%s %3d +", minus, item.Quantity)

	if selected {
		return styles.Selected.Render("> " + box + " " + name + " " + qty)
	}
	return "  " + styles.MutedText.Render(box) + " " + nameStyle.Render(name) + " " + styles.FaintText.Render(qty)
}

// visibleRange picks a window of rows that keeps cursor on screen.
func visibleRange(cursor, total, rows int) (int, int) {
	if rows <= 0 {
		rows = 1
	}
	if total <= rows {
		return 0, total
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > total {
		start = total - rows
	}
	return start, start + rows
}
