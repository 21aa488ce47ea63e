package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shoplist/internal/device"
	"github.com/five82/shoplist/internal/shoplist"
	"github.com/five82/shoplist/internal/state"
)

type fakeController struct {
	mu      sync.Mutex
	snap    state.Snapshot
	history []device.Recent
	changes chan struct{}

	calls      []string
	quantities map[string]int
	added      []string
	openErr    error
	confirmed  *bool
}

func newFakeController(list *shoplist.List) *fakeController {
	snap := state.Snapshot{Resolved: true, List: list}
	return &fakeController{
		snap:       snap,
		changes:    make(chan struct{}, 1),
		quantities: map[string]int{},
	}
}

func (f *fakeController) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeController) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeController) Snapshot() state.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snap
	if snap.List != nil {
		dup := snap.List.Clone()
		snap.List = &dup
	}
	return snap
}

func (f *fakeController) Changes() <-chan struct{} { return f.changes }

func (f *fakeController) History() []device.Recent { return f.history }

func (f *fakeController) Resolve(context.Context) error {
	f.record("resolve")
	return nil
}

func (f *fakeController) CreateList(context.Context) error {
	f.record("create")
	return nil
}

func (f *fakeController) OpenByID(_ context.Context, ref string, fromHistory bool) error {
	if fromHistory {
		f.record("open-history:" + ref)
	} else {
		f.record("open:" + ref)
	}
	return f.openErr
}

func (f *fakeController) DismissNotFound() {
	f.record("dismiss")
	f.mu.Lock()
	f.snap.NotFound = false
	f.mu.Unlock()
}

func (f *fakeController) ClearError() { f.record("clear-error") }

func (f *fakeController) ToggleChecked(_ context.Context, itemID string) error {
	f.record("toggle:" + itemID)
	return nil
}

func (f *fakeController) AddItem(_ context.Context, name string) error {
	f.mu.Lock()
	f.added = append(f.added, name)
	f.mu.Unlock()
	return nil
}

func (f *fakeController) DeleteItem(_ context.Context, itemID string) error {
	f.record("delete-item:" + itemID)
	return nil
}

func (f *fakeController) UpdateQuantity(itemID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quantities[itemID] = quantity
	if f.snap.List != nil {
		for i := range f.snap.List.Items {
			if f.snap.List.Items[i].ID == itemID {
				f.snap.List.Items[i].Quantity = quantity
			}
		}
	}
	return nil
}

func (f *fakeController) Rename(_ context.Context, name string) error {
	f.record("rename:" + name)
	return nil
}

func (f *fakeController) DeleteList(_ context.Context, confirm state.ConfirmFunc) (bool, error) {
	ok := confirm(state.DeletePrompt)
	f.mu.Lock()
	f.confirmed = &ok
	f.mu.Unlock()
	return ok, nil
}

func sampleList() *shoplist.List {
	return &shoplist.List{
		ShareID: "abc",
		Name:    "Groceries",
		Items: []shoplist.Item{
			{ID: "i2", Name: "Bread", Quantity: 1, Order: 2},
			{ID: "i1", Name: "Milk", Quantity: 2, Order: 1},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, ctrl Controller) Model {
	t.Helper()
	m := New(Options{Controller: ctrl, ShareBaseURL: "https://shop.example"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := New(Options{Controller: newFakeController(nil)})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() before size = %q, want Loading...", got)
	}
	if got := m.view(); got != state.ViewPlaceholder {
		t.Fatalf("view() before size = %v, want placeholder", got)
	}
}

func TestModel_Screens(t *testing.T) {
	cases := []struct {
		name string
		snap state.Snapshot
		want string
	}{
		{"loading", state.Snapshot{CandidateID: "abc"}, "Loading list"},
		{"not found", state.Snapshot{Resolved: true, NotFound: true}, "List not found"},
		{"empty", state.Snapshot{Resolved: true}, "Start a new list"},
		{"filled", state.Snapshot{Resolved: true, List: sampleList()}, "Milk"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := newFakeController(nil)
			ctrl.snap = tc.snap
			m := sized(t, ctrl)
			if got := m.View(); !strings.Contains(got, tc.want) {
				t.Fatalf("View() missing %q:\n%s", tc.want, got)
			}
		})
	}
}

func TestModel_ItemsRenderInOrder(t *testing.T) {
	m := sized(t, newFakeController(sampleList()))
	view := m.View()
	milk, bread := strings.Index(view, "Milk"), strings.Index(view, "Bread")
	if milk < 0 || bread < 0 || milk > bread {
		t.Fatalf("Milk (order 1) should render before Bread (order 2):\n%s", view)
	}
}

func TestModel_QuantityKeys(t *testing.T) {
	ctrl := newFakeController(sampleList())
	m := sized(t, ctrl)

	// Cursor starts on Milk (order 1, quantity 2).
	m, _ = press(t, m, runes("+"))
	if got := ctrl.quantities["i1"]; got != 3 {
		t.Fatalf("quantity after + = %d, want 3", got)
	}
	m, _ = press(t, m, runes("-"))
	if got := ctrl.quantities["i1"]; got != 2 {
		t.Fatalf("quantity after - = %d, want 2", got)
	}

	// Bread sits at the minimum; decrement is a no-op.
	m, _ = press(t, m, runes("j"))
	_, _ = press(t, m, runes("-"))
	if _, ok := ctrl.quantities["i2"]; ok {
		t.Fatalf("decrement at minimum should not call UpdateQuantity")
	}
}

func TestModel_ToggleRunsCommand(t *testing.T) {
	ctrl := newFakeController(sampleList())
	m := sized(t, ctrl)

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if cmd == nil {
		t.Fatalf("toggle returned nil cmd")
	}
	msg := cmd()
	if done, ok := msg.(opDoneMsg); !ok || done.err != nil {
		t.Fatalf("toggle cmd msg = %#v, want opDoneMsg without error", msg)
	}
	if !ctrl.called("toggle:i1") {
		t.Fatalf("calls = %v, want toggle:i1", ctrl.calls)
	}
}

func TestModel_DeleteItem(t *testing.T) {
	ctrl := newFakeController(sampleList())
	m := sized(t, ctrl)
	m, _ = press(t, m, runes("G"))
	_, cmd := press(t, m, runes("x"))
	if cmd == nil {
		t.Fatalf("delete returned nil cmd")
	}
	cmd()
	if !ctrl.called("delete-item:i2") {
		t.Fatalf("calls = %v, want delete-item:i2", ctrl.calls)
	}
}

func TestModel_AddItemFlow(t *testing.T) {
	ctrl := newFakeController(sampleList())
	m := sized(t, ctrl)

	m, _ = press(t, m, runes("a"))
	if !m.adding {
		t.Fatalf("a should open the add input")
	}
	m, _ = press(t, m, runes("Eggs"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter returned nil cmd")
	}
	cmd()
	if len(ctrl.added) != 1 || ctrl.added[0] != "Eggs" {
		t.Fatalf("added = %v, want [Eggs]", ctrl.added)
	}
	if !m.adding || m.addInput.Value() != "" {
		t.Fatalf("input should stay open and reset after add")
	}

	// Blank submit closes the input without a call.
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.adding {
		t.Fatalf("blank submit should close input without cmd")
	}
	if len(ctrl.added) != 1 {
		t.Fatalf("added = %v, want one entry", ctrl.added)
	}
}

func TestModel_DeleteListConfirm(t *testing.T) {
	ctrl := newFakeController(sampleList())
	m := sized(t, ctrl)

	m, _ = press(t, m, runes("D"))
	if m.modal == nil {
		t.Fatalf("D should open the confirm dialog")
	}
	if !strings.Contains(m.View(), "Delete this list?") {
		t.Fatalf("confirm dialog missing prompt")
	}

	// Declining closes the dialog and never reaches the controller.
	m, cmd := press(t, m, runes("n"))
	if m.modal != nil || cmd != nil {
		t.Fatalf("n should close the dialog without cmd")
	}
	if ctrl.confirmed != nil {
		t.Fatalf("DeleteList should not run when declined")
	}

	m, _ = press(t, m, runes("D"))
	m, cmd = press(t, m, runes("y"))
	if m.modal != nil || cmd == nil {
		t.Fatalf("y should close the dialog and return a cmd")
	}
	msg := cmd().(deleteListResultMsg)
	if !msg.deleted || ctrl.confirmed == nil || !*ctrl.confirmed {
		t.Fatalf("delete result = %#v, confirmed = %v", msg, ctrl.confirmed)
	}
}

func TestModel_DeleteListFailureShowsAlert(t *testing.T) {
	m := sized(t, newFakeController(sampleList()))
	m, _ = press(t, m, deleteListResultMsg{err: errors.New("boom")})
	if _, ok := m.modal.(*alertModal); !ok {
		t.Fatalf("modal = %T, want *alertModal", m.modal)
	}
	m, _ = press(t, m, runes("z"))
	if m.modal != nil {
		t.Fatalf("any key should close the alert")
	}
}

func TestModel_NotFoundOpenDismisses(t *testing.T) {
	ctrl := newFakeController(nil)
	ctrl.snap = state.Snapshot{Resolved: true, NotFound: true}
	m := sized(t, ctrl)

	m, _ = press(t, m, runes("o"))
	if !ctrl.called("dismiss") {
		t.Fatalf("open from not-found should dismiss first")
	}
	if _, ok := m.modal.(*openModal); !ok {
		t.Fatalf("modal = %T, want *openModal", m.modal)
	}
}

func TestModel_EmptyCreate(t *testing.T) {
	ctrl := newFakeController(nil)
	m := sized(t, ctrl)
	_, cmd := press(t, m, runes("n"))
	if cmd == nil {
		t.Fatalf("n returned nil cmd")
	}
	cmd()
	if !ctrl.called("create") {
		t.Fatalf("calls = %v, want create", ctrl.calls)
	}
}

func TestModel_CycleThemeSaves(t *testing.T) {
	var saved string
	m := New(Options{
		Controller: newFakeController(nil),
		ThemeName:  "Nightfox",
		SaveTheme:  func(name string) error { saved = name; return nil },
	})
	m, _ = press(t, m, runes("T"))
	if m.theme.Name != "Kanagawa" || saved != "Kanagawa" {
		t.Fatalf("theme = %q saved = %q, want Kanagawa", m.theme.Name, saved)
	}
}

func TestModel_HelpClosesOnAnyKey(t *testing.T) {
	m := sized(t, newFakeController(sampleList()))
	m, _ = press(t, m, runes("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("? should open help")
	}
	m, _ = press(t, m, runes("x"))
	if m.showHelp {
		t.Fatalf("any key should close help")
	}
}

func TestModel_FlashClearsBySequence(t *testing.T) {
	m := sized(t, newFakeController(sampleList()))
	m, _ = press(t, m, opDoneMsg{op: "Add item", err: errors.New("offline")})
	if !m.flashDanger || !strings.Contains(m.flash, "offline") {
		t.Fatalf("flash = %q, want failure notice", m.flash)
	}
	m, _ = press(t, m, clearFlashMsg{seq: m.flashSeq - 1})
	if m.flash == "" {
		t.Fatalf("stale clear should not remove the newer flash")
	}
	m, _ = press(t, m, clearFlashMsg{seq: m.flashSeq})
	if m.flash != "" {
		t.Fatalf("flash = %q, want cleared", m.flash)
	}
}

func TestModel_FooterSpansWidth(t *testing.T) {
	m := sized(t, newFakeController(sampleList()))
	if got := lipgloss.Width(m.renderFooter()); got != 100 {
		t.Fatalf("footer width = %d, want 100", got)
	}
	m, _ = press(t, m, opDoneMsg{op: "Add item", err: errors.New("offline")})
	if got := lipgloss.Width(m.renderFooter()); got != 100 {
		t.Fatalf("footer width with flash = %d, want 100", got)
	}
}

func TestModel_ChangedRefreshesAndClampsCursor(t *testing.T) {
	ctrl := newFakeController(sampleList())
	m := sized(t, ctrl)
	m, _ = press(t, m, runes("G"))
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	ctrl.mu.Lock()
	ctrl.snap.List.Items = ctrl.snap.List.Items[:1]
	ctrl.mu.Unlock()

	m, cmd := press(t, m, changedMsg{})
	if m.cursor != 0 {
		t.Fatalf("cursor after shrink = %d, want 0", m.cursor)
	}
	if cmd == nil {
		t.Fatalf("changedMsg should re-arm the change watcher")
	}
}

func TestVisibleRange(t *testing.T) {
	cases := []struct {
		cursor, total, rows int
		start, end          int
	}{
		{0, 3, 10, 0, 3},
		{0, 20, 5, 0, 5},
		{10, 20, 5, 8, 13},
		{19, 20, 5, 15, 20},
		{0, 2, 0, 0, 1},
	}
	for _, tc := range cases {
		start, end := visibleRange(tc.cursor, tc.total, tc.rows)
		if start != tc.start || end != tc.end {
			t.Fatalf("visibleRange(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tc.cursor, tc.total, tc.rows, start, end, tc.start, tc.end)
		}
	}
}
