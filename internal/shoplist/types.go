package shoplist

import (
	"sort"
	"strings"
	"time"
)

// PlaceholderName is shown for lists that have never been renamed.
const PlaceholderName = "Shopping list"

// MinQuantity is the lowest quantity an item may carry.
const MinQuantity = 1

// List mirrors the list payload returned by the lists API.
type List struct {
	ID        string `json:"id"`
	ShareID   string `json:"shareId"`
	Name      string `json:"name"`
	Items     []Item `json:"items"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Item is a single entry on a list. ID is empty for drafts that have not
// been persisted yet; the server assigns it.
type Item struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Order     int    `json:"order"`
	Checked   bool   `json:"checked"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// DisplayName returns the list name, or the placeholder when it is blank.
func (l List) DisplayName() string {
	if name := strings.TrimSpace(l.Name); name != "" {
		return name
	}
	return PlaceholderName
}

// SortedItems returns a copy of the items ordered by Order ascending.
// Items sharing an order keep their relative position.
func (l List) SortedItems() []Item {
	out := CloneItems(l.Items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Clone returns a deep copy of the list.
func (l List) Clone() List {
	dup := l
	dup.Items = CloneItems(l.Items)
	return dup
}

// FindItem returns the index of the item with id, or -1.
func (l List) FindItem(id string) int {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// CheckedCount reports how many items are ticked off.
func (l List) CheckedCount() int {
	n := 0
	for _, item := range l.Items {
		if item.Checked {
			n++
		}
	}
	return n
}

// NewDraft builds an unsaved item appended after existing items.
func NewDraft(name string, existing int) Item {
	return Item{
		Name:     strings.TrimSpace(name),
		Quantity: MinQuantity,
		Order:    existing + 1,
		Checked:  false,
	}
}

// ClampQuantity keeps a quantity at or above MinQuantity.
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	return q
}

// Normalize clamps every item quantity to MinQuantity. Lists coming from
// the API pass through here before the client holds them.
func (l *List) Normalize() {
	ClampItems(l.Items)
}

// ClampItems clamps the quantity of each item in place.
func ClampItems(items []Item) {
	for i := range items {
		items[i].Quantity = ClampQuantity(items[i].Quantity)
	}
}

// CloneItems copies an item slice; nil stays nil.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}

// Timestamp formats t the way the API writes timestamps.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (l List) ParsedCreatedAt() time.Time {
	return parseTime(l.CreatedAt)
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (l List) ParsedUpdatedAt() time.Time {
	return parseTime(l.UpdatedAt)
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (i Item) ParsedUpdatedAt() time.Time {
	return parseTime(i.UpdatedAt)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
