package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shoplist/internal/shoplist"
	"github.com/five82/shoplist/internal/state"
)

// Options configures the UI.
type Options struct {
	Context      context.Context
	Controller   Controller
	ShareBaseURL string
	ThemeName    string
	// SaveTheme persists the theme after the user cycles it. Optional.
	SaveTheme func(name string) error
	LogPath   string
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	ctrl         Controller
	keys         keyMap
	shareBaseURL string
	saveTheme    func(string) error
	logPath      string
	logger       *slog.Logger

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	snap   state.Snapshot
	cursor int

	spinner  spinner.Model
	adding   bool
	addInput textinput.Model

	modal    Modal
	showHelp bool
	showLogs bool
	logs     logPanel

	flash       string
	flashDanger bool
	flashSeq    int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}
	theme := GetTheme(themeName)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Styles().AccentText

	in := textinput.New()
	in.Placeholder = "item name"
	in.CharLimit = 200

	return Model{
		ctx:          ctx,
		ctrl:         opts.Controller,
		keys:         DefaultKeyMap(),
		shareBaseURL: opts.ShareBaseURL,
		saveTheme:    opts.SaveTheme,
		logPath:      opts.LogPath,
		logger:       logger,
		theme:        theme,
		snap:         opts.Controller.Snapshot(),
		spinner:      sp,
		addInput:     in,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForChange(m.ctrl.Changes()),
		resolveCmd(m.ctx, m.ctrl),
	)
}

// view is the screen to show for the current snapshot.
func (m Model) view() state.View {
	return m.snap.View(m.ready)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.logs.resize(m.width, m.height-3)
		m.addInput.Width = maxInt(m.width-12, 10)
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.ctrl.Changes())

	case resolvedMsg:
		m.refresh()
		if msg.err != nil {
			return m, m.setFlash("Could not load list: "+msg.err.Error(), true)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearFlashMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
			m.flashDanger = false
		}
		return m, nil

	case opDoneMsg:
		m.refresh()
		if msg.err != nil {
			m.logger.Debug("list operation failed", "op", msg.op, "error", msg.err)
			return m, m.setFlash(msg.op+" failed: "+msg.err.Error(), true)
		}
		if msg.op == "New list" {
			m.cursor = 0
			return m, m.setFlash("Created a new list", false)
		}
		return m, nil

	case deleteListResultMsg:
		m.refresh()
		switch {
		case msg.err != nil:
			m.modal = newAlertModal("Delete failed", "Could not delete the list: "+msg.err.Error())
		case msg.deleted:
			m.cursor = 0
			return m, m.setFlash("List deleted", false)
		}
		return m, nil

	case logsLoadedMsg:
		m.logs.setLines(msg.lines, msg.err, m.theme)
		return m, nil
	}

	// Results of modal commands go back to the modal.
	if m.modal != nil {
		return m.updateModal(msg)
	}
	if m.adding {
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// refresh pulls a fresh snapshot and keeps the cursor in range.
func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	n := 0
	if m.snap.List != nil {
		n = len(m.snap.List.Items)
	}
	m.cursor = clampIndex(m.cursor, n)
}

func (m *Model) setFlash(text string, danger bool) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashDanger = danger
	return clearFlashCmd(m.flashSeq)
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
		m.refresh()
	} else {
		m.modal = modal
	}
	return m, cmd
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}

	if m.showLogs {
		return m.handleLogsKey(msg)
	}

	if m.adding {
		return m.handleAddKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		return m, m.cycleTheme()
	case key.Matches(msg, m.keys.Logs):
		m.showLogs = true
		m.logs.loaded = false
		return m, loadLogsCmd(m.logPath)
	}

	switch m.view() {
	case state.ViewFilled:
		return m.handleListKey(msg)
	case state.ViewNotFound:
		switch {
		case key.Matches(msg, m.keys.NewList):
			return m, m.createList()
		case key.Matches(msg, m.keys.OpenList):
			m.ctrl.DismissNotFound()
			m.refresh()
			return m, m.openModal()
		case key.Matches(msg, m.keys.Escape):
			m.ctrl.DismissNotFound()
			m.refresh()
		}
	case state.ViewEmpty:
		switch {
		case key.Matches(msg, m.keys.NewList):
			return m, m.createList()
		case key.Matches(msg, m.keys.OpenList):
			return m, m.openModal()
		}
	}
	return m, nil
}

func (m *Model) cycleTheme() tea.Cmd {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.spinner.Style = m.theme.Styles().AccentText
	if m.logs.loaded {
		m.logs.render(m.theme)
	}
	if m.saveTheme != nil {
		if err := m.saveTheme(m.theme.Name); err != nil {
			m.logger.Warn("save theme failed", "theme", m.theme.Name, "error", err)
		}
	}
	return m.setFlash("Theme: "+m.theme.Name, false)
}

func (m *Model) createList() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return opCmd("New list", func() error { return ctrl.CreateList(ctx) })
}

func (m *Model) openModal() tea.Cmd {
	current := ""
	if m.snap.List != nil {
		current = m.snap.List.ShareID
	}
	om := newOpenModal(m.ctx, m.ctrl, current)
	m.modal = om
	return textinput.Blink
}

// selectedItem returns the item under the cursor in display order.
func (m Model) selectedItem() (shoplist.Item, bool) {
	if m.snap.List == nil {
		return shoplist.Item{}, false
	}
	items := m.snap.List.SortedItems()
	if len(items) == 0 {
		return shoplist.Item{}, false
	}
	return items[clampIndex(m.cursor, len(items))], true
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.snap.List
	count := len(list.Items)
	ctx, ctrl := m.ctx, m.ctrl

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = clampIndex(m.cursor-1, count)
	case key.Matches(msg, m.keys.Down):
		m.cursor = clampIndex(m.cursor+1, count)
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = clampIndex(count-1, count)

	case key.Matches(msg, m.keys.AddItem):
		m.adding = true
		m.addInput.Reset()
		m.addInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Rename):
		m.modal = newRenameModal(ctx, ctrl, list.Name)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Share):
		m.modal = newShareModal(list.ShareID, m.shareBaseURL)
	case key.Matches(msg, m.keys.DeleteList):
		m.modal = newConfirmModal(state.DeletePrompt, deleteListCmd(ctx, ctrl, true))
	case key.Matches(msg, m.keys.NewList):
		return m, m.createList()
	case key.Matches(msg, m.keys.OpenList):
		return m, m.openModal()
	case key.Matches(msg, m.keys.Escape):
		if m.snap.LastError != nil {
			m.ctrl.ClearError()
			m.refresh()
		}
	}

	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.ctrl.ClearError()
		return m, opCmd("Check item", func() error { return ctrl.ToggleChecked(ctx, item.ID) })
	case key.Matches(msg, m.keys.Increment):
		return m, m.setQuantity(item.ID, item.Quantity+1)
	case key.Matches(msg, m.keys.Decrement):
		if item.Quantity <= shoplist.MinQuantity {
			return m, nil
		}
		return m, m.setQuantity(item.ID, item.Quantity-1)
	case key.Matches(msg, m.keys.DeleteItem):
		return m, opCmd("Delete item", func() error { return ctrl.DeleteItem(ctx, item.ID) })
	}
	return m, nil
}

// setQuantity applies the change locally; the controller syncs it later.
func (m *Model) setQuantity(itemID string, quantity int) tea.Cmd {
	if err := m.ctrl.UpdateQuantity(itemID, quantity); err != nil {
		return m.setFlash(err.Error(), true)
	}
	m.refresh()
	return nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.addInput.Blur()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.addInput.Value())
		m.addInput.Reset()
		if name == "" {
			m.adding = false
			m.addInput.Blur()
			return m, nil
		}
		ctx, ctrl := m.ctx, m.ctrl
		// The input stays open so several items can be added in a row.
		return m, opCmd("Add item", func() error { return ctrl.AddItem(ctx, name) })
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Quit):
		m.showLogs = false
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logs.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logs.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logs.viewport, cmd = m.logs.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	bodyHeight := m.height - 3
	if m.showLogs {
		b.WriteString(m.renderLogs())
	} else {
		b.WriteString(m.renderBody(bodyHeight))
	}

	body := b.String()
	if pad := m.height - 1 - strings.Count(body, "\n") - 1; pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return body + "\n" + m.renderFooter()
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
