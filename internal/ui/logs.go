package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shoplist/internal/logging"
)

// logPanel shows the tail of the client's own log file.
type logPanel struct {
	viewport viewport.Model
	lines    []logging.Line
	err      error
	loaded   bool
}

func (p *logPanel) resize(width, height int) {
	p.viewport.Width = maxInt(width, 10)
	p.viewport.Height = maxInt(height, 3)
}

func (p *logPanel) setLines(lines []logging.Line, err error, theme Theme) {
	p.lines = lines
	p.err = err
	p.loaded = true
	p.render(theme)
	p.viewport.GotoBottom()
}

func (p *logPanel) render(theme Theme) {
	styles := theme.Styles()
	if p.err != nil {
		p.viewport.SetContent(styles.DangerText.Render(fmt.Sprintf("Could not read log: %v", p.err)))
		return
	}
	if len(p.lines) == 0 {
		p.viewport.SetContent(styles.MutedText.Render("Log is empty."))
		return
	}
	var b strings.Builder
	for i, line := range p.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(levelStyle(theme, line.Level).Render(padRight(levelLabel(line.Level), 6)))
		b.WriteString(styles.Text.Render(line.Raw))
	}
	p.viewport.SetContent(b.String())
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DBG"
	}
}

func levelStyle(theme Theme, level slog.Level) lipgloss.Style {
	styles := theme.Styles()
	switch {
	case level >= slog.LevelError:
		return styles.DangerText
	case level >= slog.LevelWarn:
		return styles.WarningText.Bold(true)
	case level >= slog.LevelInfo:
		return styles.InfoText.Bold(true)
	default:
		return styles.FaintText.Bold(true)
	}
}

// renderLogs renders the log panel with a title line.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Recent log")
	if m.logPath != "" {
		title += styles.FaintText.Render("  " + m.logPath)
	}
	if !m.logs.loaded {
		return title + "\n" + styles.MutedText.Render("Loading...")
	}
	return title + "\n" + m.logs.viewport.View()
}
