package shoplist

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSortedItems_OrdersByOrderField(t *testing.T) {
	l := List{Items: []Item{
		{ID: "c", Order: 7},
		{ID: "a", Order: 1},
		{ID: "b", Order: 3},
		{ID: "d", Order: 3},
	}}

	got := l.SortedItems()
	want := []string{"a", "b", "d", "c"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("SortedItems()[%d] = %q, want %q (got %#v)", i, got[i].ID, id, got)
		}
	}

	// Sorting must not reorder the underlying slice.
	if l.Items[0].ID != "c" {
		t.Fatalf("SortedItems mutated list items: %#v", l.Items)
	}
}

func TestClampQuantity(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{42, 42},
	}
	for _, tc := range cases {
		if got := ClampQuantity(tc.in); got != tc.want {
			t.Fatalf("ClampQuantity(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_ClampsDecodedQuantities(t *testing.T) {
	var l List
	raw := `{"shareId":"abc","items":[{"id":"a","name":"eggs"},{"id":"b","name":"milk","quantity":-2},{"id":"c","name":"tea","quantity":3}]}`
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	l.Normalize()
	want := map[string]int{"a": 1, "b": 1, "c": 3}
	for _, item := range l.Items {
		if item.Quantity != want[item.ID] {
			t.Fatalf("item %q quantity = %d, want %d", item.ID, item.Quantity, want[item.ID])
		}
	}
}

func TestDisplayName_FallsBackToPlaceholder(t *testing.T) {
	if got := (List{Name: "   "}).DisplayName(); got != PlaceholderName {
		t.Fatalf("DisplayName = %q, want %q", got, PlaceholderName)
	}
	if got := (List{Name: " Weekend "}).DisplayName(); got != "Weekend" {
		t.Fatalf("DisplayName = %q, want Weekend", got)
	}
}

func TestClone_CopiesItems(t *testing.T) {
	l := List{ShareID: "abc", Items: []Item{{ID: "i1", Quantity: 2}}}
	dup := l.Clone()
	dup.Items[0].Quantity = 9
	if l.Items[0].Quantity != 2 {
		t.Fatalf("Clone shares item storage with original")
	}
}

func TestNewDraft(t *testing.T) {
	d := NewDraft("  milk ", 3)
	if d.Name != "milk" || d.Quantity != 1 || d.Order != 4 || d.Checked || d.ID != "" {
		t.Fatalf("NewDraft = %#v, want trimmed name, qty 1, order 4, unchecked, no id", d)
	}
}

func TestDraftOmitsIDOnTheWire(t *testing.T) {
	raw, err := json.Marshal(NewDraft("eggs", 0))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := fields["id"]; ok {
		t.Fatalf("draft payload %s carries an id", raw)
	}
}

func TestParsedTimestamps(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	l := List{CreatedAt: Timestamp(ts), UpdatedAt: "garbage"}
	if !l.ParsedCreatedAt().Equal(ts) {
		t.Fatalf("ParsedCreatedAt = %v, want %v", l.ParsedCreatedAt(), ts)
	}
	if !l.ParsedUpdatedAt().IsZero() {
		t.Fatalf("ParsedUpdatedAt = %v, want zero for malformed input", l.ParsedUpdatedAt())
	}
}
