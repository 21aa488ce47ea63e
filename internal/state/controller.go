package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/shoplist/internal/coalesce"
	"github.com/five82/shoplist/internal/device"
	"github.com/five82/shoplist/internal/gateway"
	"github.com/five82/shoplist/internal/shoplist"
)

// DefaultQuantityDebounce is the quiet interval before quantity edits are sent.
const DefaultQuantityDebounce = 2 * time.Second

// DeletePrompt is shown to the user before a list is deleted.
const DeletePrompt = "Delete this list? Anyone with the link will lose access."

const maxConcurrentFlushes = 4

var (
	// ErrNoList is returned by list operations when no list is loaded.
	ErrNoList = errors.New("no list is loaded")
	// ErrListNotFound is returned when a share id does not resolve.
	ErrListNotFound = errors.New("list not found")
	// ErrBlankShareID is returned when an empty share id is submitted.
	ErrBlankShareID = errors.New("share id is empty")
	// ErrItemNotFound is returned when an item id is not on the current list.
	ErrItemNotFound = errors.New("item not found")
)

// Gateway is the remote list API the controller drives.
type Gateway interface {
	CreateList(ctx context.Context) (shoplist.List, error)
	FetchList(ctx context.Context, shareID string) gateway.FetchResult
	ReplaceItems(ctx context.Context, shareID string, items []shoplist.Item) (shoplist.List, error)
	RenameList(ctx context.Context, shareID, name string) (shoplist.List, error)
	DeleteList(ctx context.Context, shareID string) error
	SetItemChecked(ctx context.Context, itemID string, checked bool) (shoplist.Item, error)
	SetItemQuantity(ctx context.Context, itemID string, quantity int) ([]shoplist.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
}

// DeviceStore keeps the active list id and the recent lists on this device.
type DeviceStore interface {
	ActiveListID() (string, bool)
	SetActiveListID(id string) error
	ClearActiveListID() error
	History() []device.Recent
	RecordRecent(shareID, name string) error
	UpdateRecentName(shareID, name string) error
	RemoveRecent(shareID string) error
}

var (
	_ Gateway     = (*gateway.Client)(nil)
	_ DeviceStore = (*device.Store)(nil)
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// Options configure a Controller.
type Options struct {
	Gateway Gateway
	Device  DeviceStore
	Logger  *slog.Logger

	// LaunchRef is the share id or share link the program was started with.
	LaunchRef string

	// QuantityDebounce defaults to DefaultQuantityDebounce.
	QuantityDebounce time.Duration

	// Context bounds background quantity flushes. Defaults to Background.
	Context context.Context

	// Now defaults to time.Now.
	Now func() time.Time
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	List        *shoplist.List
	NotFound    bool
	Resolving   bool
	Resolved    bool
	CandidateID string
	LaunchID    string
	ActiveID    string
	LastError   error

	PendingQuantities int
}

// HasList reports whether a list is loaded.
func (s Snapshot) HasList() bool { return s.List != nil }

// ViewInputs collects the inputs for DeriveView.
func (s Snapshot) ViewInputs(mounted bool) ViewInputs {
	return ViewInputs{
		Mounted:      mounted,
		HasList:      s.List != nil,
		NotFound:     s.NotFound,
		Resolved:     s.Resolved,
		HasCandidate: s.CandidateID != "",
	}
}

// View derives the screen for this snapshot.
func (s Snapshot) View(mounted bool) View {
	return DeriveView(s.ViewInputs(mounted))
}

type pendingQuantity struct {
	shareID  string
	quantity int
}

// Controller owns the current list and applies user intents to it, keeping
// the remote API and the device store in step.
type Controller struct {
	gw     Gateway
	device DeviceStore
	logger *slog.Logger
	now    func() time.Time
	ctx    context.Context

	quantities *coalesce.Queue[string, pendingQuantity]
	changes    chan struct{}

	mu          sync.Mutex
	list        *shoplist.List
	notFound    bool
	resolving   bool
	resolved    bool
	candidateID string
	launchID    string
	lastError   error
}

// New builds a Controller. The candidate list is the launch reference when
// present, otherwise the device's active list id.
func New(opts Options) (*Controller, error) {
	if opts.Gateway == nil {
		return nil, errors.New("state: gateway is required")
	}
	if opts.Device == nil {
		return nil, errors.New("state: device store is required")
	}
	c := &Controller{
		gw:      opts.Gateway,
		device:  opts.Device,
		logger:  opts.Logger,
		now:     opts.Now,
		ctx:     opts.Context,
		changes: make(chan struct{}, 1),
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	debounce := opts.QuantityDebounce
	if debounce <= 0 {
		debounce = DefaultQuantityDebounce
	}
	c.quantities = coalesce.New(debounce, c.flushQuantities)

	c.launchID = shoplist.ParseShareRef(opts.LaunchRef)
	c.candidateID = c.launchID
	if c.candidateID == "" {
		if stored, ok := c.device.ActiveListID(); ok {
			c.candidateID = stored
		}
	}
	return c, nil
}

// Changes signals that the snapshot changed. Signals coalesce; receivers
// should read Snapshot after each one.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		NotFound:    c.notFound,
		Resolving:   c.resolving,
		Resolved:    c.resolved,
		CandidateID: c.candidateID,
		LaunchID:    c.launchID,
		LastError:   c.lastError,
	}
	if c.list != nil {
		dup := c.list.Clone()
		snap.List = &dup
	}
	c.mu.Unlock()

	snap.ActiveID, _ = c.device.ActiveListID()
	snap.PendingQuantities = c.quantities.Pending()
	return snap
}

// History returns up to device.HistoryLimit recent lists, newest first.
func (c *Controller) History() []device.Recent {
	return c.device.History()
}

// Resolve loads the candidate list once. Later calls are no-ops. A list
// that no longer exists clears the stored active id when it came from the
// device; a transport failure leaves state alone and is returned.
func (c *Controller) Resolve(ctx context.Context) error {
	c.mu.Lock()
	if c.resolving || c.resolved {
		c.mu.Unlock()
		return nil
	}
	candidate := c.candidateID
	launchID := c.launchID
	if candidate == "" {
		c.resolved = true
		c.mu.Unlock()
		c.notify()
		return nil
	}
	c.resolving = true
	c.mu.Unlock()
	c.notify()

	c.logger.Debug("resolving list", "share_id", candidate, "from_launch", launchID != "")
	res := c.gw.FetchList(ctx, candidate)
	stored, hasStored := c.device.ActiveListID()

	c.mu.Lock()
	c.resolving = false
	c.resolved = true

	var err error
	switch res.Outcome {
	case gateway.Found:
		if res.List.ShareID == "" {
			res.List.ShareID = candidate
		}
		c.adoptLocked(res.List)
		c.notFound = false
		c.launchID = ""
		c.lastError = nil
		if launchID != "" && (!hasStored || stored != launchID) {
			c.storeErr("set active list", c.device.SetActiveListID(launchID))
		}
	case gateway.NotFound:
		c.list = nil
		c.notFound = true
		if hasStored && stored == candidate {
			c.storeErr("clear active list", c.device.ClearActiveListID())
		}
		c.logger.Info("list not found", "share_id", candidate)
	default:
		c.lastError = res.Err
		err = fmt.Errorf("resolve list %s: %w", candidate, res.Err)
	}
	c.mu.Unlock()
	c.notify()
	return err
}

// CreateList asks the API for a new list and makes it current.
func (c *Controller) CreateList(ctx context.Context) error {
	list, err := c.gw.CreateList(ctx)
	if err != nil {
		return c.fail("create list", err)
	}

	c.mu.Lock()
	c.adoptLocked(list)
	c.notFound = false
	c.lastError = nil
	c.storeErr("set active list", c.device.SetActiveListID(list.ShareID))
	c.storeErr("record recent list", c.device.RecordRecent(list.ShareID, list.Name))
	c.mu.Unlock()

	c.logger.Info("created list", "share_id", list.ShareID)
	c.notify()
	return nil
}

// OpenByID loads the list named by ref, a share id or share link. On
// NotFound it returns ErrListNotFound and, when fromHistory is set, drops
// the entry from the recent lists. State is untouched unless the list
// loads.
func (c *Controller) OpenByID(ctx context.Context, ref string, fromHistory bool) error {
	id := shoplist.ParseShareRef(ref)
	if id == "" {
		return ErrBlankShareID
	}

	res := c.gw.FetchList(ctx, id)
	switch res.Outcome {
	case gateway.NotFound:
		if fromHistory {
			if err := c.device.RemoveRecent(id); err != nil {
				c.logger.Warn("remove recent list failed", "share_id", id, "error", err)
			}
		}
		return ErrListNotFound
	case gateway.Failed:
		return fmt.Errorf("open list %s: %w", id, res.Err)
	}

	list := res.List
	if list.ShareID == "" {
		list.ShareID = id
	}

	c.mu.Lock()
	c.adoptLocked(list)
	c.notFound = false
	c.launchID = ""
	c.lastError = nil
	c.storeErr("set active list", c.device.SetActiveListID(list.ShareID))
	c.storeErr("record recent list", c.device.RecordRecent(list.ShareID, list.Name))
	c.mu.Unlock()

	c.logger.Info("opened list", "share_id", list.ShareID, "from_history", fromHistory)
	c.notify()
	return nil
}

// DismissNotFound leaves the not-found screen.
func (c *Controller) DismissNotFound() {
	c.mu.Lock()
	c.notFound = false
	c.mu.Unlock()
	c.notify()
}

// ClearError forgets the last surfaced error.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.lastError = nil
	c.mu.Unlock()
	c.notify()
}

// ToggleChecked flips an item locally and patches the checked flag.
func (c *Controller) ToggleChecked(ctx context.Context, itemID string) error {
	c.mu.Lock()
	if c.list == nil {
		c.mu.Unlock()
		return ErrNoList
	}
	idx := c.list.FindItem(itemID)
	if idx < 0 {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	stamp := shoplist.Timestamp(c.now())
	item := &c.list.Items[idx]
	item.Checked = !item.Checked
	item.UpdatedAt = stamp
	c.list.UpdatedAt = stamp
	shareID := c.list.ShareID
	checked := item.Checked
	c.mu.Unlock()
	c.notify()

	updated, err := c.gw.SetItemChecked(ctx, itemID, checked)
	if err != nil {
		return c.fail("toggle item", err)
	}

	// Only the checked state comes from this response; a quantity edit
	// may still be waiting in the queue.
	c.mu.Lock()
	if c.isCurrentLocked(shareID) && updated.ID == itemID {
		if i := c.list.FindItem(itemID); i >= 0 {
			c.list.Items[i].Checked = updated.Checked
			if updated.UpdatedAt != "" {
				c.list.Items[i].UpdatedAt = updated.UpdatedAt
			}
		}
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// AddItem appends a named item and replaces the remote item set. Blank
// names are ignored. The list is updated from the response only.
func (c *Controller) AddItem(ctx context.Context, name string) error {
	draft := shoplist.NewDraft(name, 0)
	if draft.Name == "" {
		return nil
	}

	c.mu.Lock()
	if c.list == nil {
		c.mu.Unlock()
		return ErrNoList
	}
	shareID := c.list.ShareID
	items := shoplist.CloneItems(c.list.Items)
	draft.Order = len(items) + 1
	items = append(items, draft)
	c.mu.Unlock()

	list, err := c.gw.ReplaceItems(ctx, shareID, items)
	if err != nil {
		return c.fail("add item", err)
	}
	c.reconcile(shareID, list)
	return nil
}

// DeleteItem removes an item locally, drops any pending quantity for it,
// and deletes it remotely. Remote failures are not rolled back.
func (c *Controller) DeleteItem(ctx context.Context, itemID string) error {
	c.mu.Lock()
	if c.list == nil {
		c.mu.Unlock()
		return ErrNoList
	}
	idx := c.list.FindItem(itemID)
	if idx < 0 {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	c.list.Items = append(c.list.Items[:idx:idx], c.list.Items[idx+1:]...)
	c.list.UpdatedAt = shoplist.Timestamp(c.now())
	c.mu.Unlock()

	c.quantities.Cancel(itemID)
	c.notify()

	if err := c.gw.DeleteItem(ctx, itemID); err != nil {
		return c.fail("delete item", err)
	}
	return nil
}

// UpdateQuantity sets an item's quantity locally, clamped to
// shoplist.MinQuantity, and schedules the debounced remote update. Only
// the latest value per item is sent.
func (c *Controller) UpdateQuantity(itemID string, quantity int) error {
	quantity = shoplist.ClampQuantity(quantity)

	c.mu.Lock()
	if c.list == nil {
		c.mu.Unlock()
		return ErrNoList
	}
	idx := c.list.FindItem(itemID)
	if idx < 0 {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	c.list.Items[idx].Quantity = quantity
	shareID := c.list.ShareID
	c.mu.Unlock()

	c.quantities.Schedule(itemID, pendingQuantity{shareID: shareID, quantity: quantity})
	c.notify()
	return nil
}

// FlushQuantities sends pending quantity updates now and waits for them.
func (c *Controller) FlushQuantities() {
	c.quantities.FlushNow()
}

// Rename sets the list name remotely and mirrors it into the recent lists.
func (c *Controller) Rename(ctx context.Context, name string) error {
	c.mu.Lock()
	if c.list == nil {
		c.mu.Unlock()
		return ErrNoList
	}
	shareID := c.list.ShareID
	c.mu.Unlock()

	list, err := c.gw.RenameList(ctx, shareID, strings.TrimSpace(name))
	if err != nil {
		return c.fail("rename list", err)
	}
	c.reconcile(shareID, list)
	if err := c.device.UpdateRecentName(shareID, list.Name); err != nil {
		c.logger.Warn("update recent name failed", "share_id", shareID, "error", err)
	}
	return nil
}

// DeleteList deletes the current list after confirm approves DeletePrompt.
// It reports whether the list was deleted. On failure nothing changes.
func (c *Controller) DeleteList(ctx context.Context, confirm ConfirmFunc) (bool, error) {
	c.mu.Lock()
	if c.list == nil {
		c.mu.Unlock()
		return false, ErrNoList
	}
	shareID := c.list.ShareID
	c.mu.Unlock()

	if confirm == nil || !confirm(DeletePrompt) {
		return false, nil
	}
	if err := c.gw.DeleteList(ctx, shareID); err != nil {
		return false, c.fail("delete list", err)
	}

	c.quantities.Discard()

	c.mu.Lock()
	if c.isCurrentLocked(shareID) {
		c.list = nil
	}
	c.notFound = false
	c.storeErr("clear active list", c.device.ClearActiveListID())
	c.storeErr("remove recent list", c.device.RemoveRecent(shareID))
	c.mu.Unlock()

	c.logger.Info("deleted list", "share_id", shareID)
	c.notify()
	return true, nil
}

// Close sends any pending quantity updates and stops the debounce timer.
func (c *Controller) Close() {
	c.quantities.FlushNow()
	c.quantities.Stop()
}

func (c *Controller) flushQuantities(batch map[string]pendingQuantity) {
	var g errgroup.Group
	g.SetLimit(maxConcurrentFlushes)

	for itemID, p := range batch {
		if !c.isCurrent(p.shareID) {
			c.logger.Debug("dropping quantity for inactive list", "item", itemID, "share_id", p.shareID)
			continue
		}
		g.Go(func() error {
			items, err := c.gw.SetItemQuantity(c.ctx, itemID, p.quantity)
			if err != nil {
				_ = c.fail("update quantity", err)
				return nil
			}
			shoplist.ClampItems(items)
			c.mu.Lock()
			if c.isCurrentLocked(p.shareID) {
				c.list.Items = items
			}
			c.mu.Unlock()
			c.notify()
			return nil
		})
	}
	_ = g.Wait()
}

// reconcile adopts a mutation response when it still belongs to the
// current list.
func (c *Controller) reconcile(shareID string, list shoplist.List) {
	if list.ShareID == "" {
		list.ShareID = shareID
	}
	c.mu.Lock()
	switch {
	case !c.isCurrentLocked(shareID):
		c.logger.Debug("ignoring response for inactive list", "share_id", shareID)
	case list.ShareID != shareID:
		c.logger.Warn("response share id mismatch", "want", shareID, "got", list.ShareID)
	default:
		c.adoptLocked(list)
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) adoptLocked(list shoplist.List) {
	if c.list != nil && c.list.ShareID != list.ShareID {
		c.quantities.Discard()
	}
	dup := list.Clone()
	dup.Normalize()
	c.list = &dup
}

func (c *Controller) isCurrent(shareID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCurrentLocked(shareID)
}

func (c *Controller) isCurrentLocked(shareID string) bool {
	return c.list != nil && c.list.ShareID == shareID
}

func (c *Controller) fail(op string, err error) error {
	c.logger.Warn(op+" failed", "error", err)
	c.mu.Lock()
	c.lastError = err
	c.mu.Unlock()
	c.notify()
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Controller) storeErr(op string, err error) {
	if err != nil {
		c.logger.Warn("device store: "+op+" failed", "error", err)
	}
}

func (c *Controller) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
