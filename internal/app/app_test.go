package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/five82/shoplist/internal/config"
	"github.com/five82/shoplist/internal/shoplist"
	"github.com/five82/shoplist/internal/state"
)

func TestDeviceLocation(t *testing.T) {
	cfg := config.Config{DeviceStore: "file", DevicePath: "/data/device.toml"}

	kind, path := deviceLocation(cfg, "")
	if kind != "file" || path != "/data/device.toml" {
		t.Fatalf("no override = (%q, %q), want configured store", kind, path)
	}

	kind, path = deviceLocation(cfg, " FILE ")
	if kind != "file" || path != "/data/device.toml" {
		t.Fatalf("same kind override = (%q, %q), want configured path", kind, path)
	}

	kind, path = deviceLocation(cfg, "sqlite")
	if kind != "sqlite" {
		t.Fatalf("kind = %q, want sqlite", kind)
	}
	if !strings.HasSuffix(path, "device.db") {
		t.Fatalf("path = %q, want default sqlite location", path)
	}
}

func TestInteractiveRejectsBuffers(t *testing.T) {
	if interactive(&bytes.Buffer{}) {
		t.Fatalf("buffer should not be treated as a terminal")
	}
}

func TestWritePlain_List(t *testing.T) {
	snap := state.Snapshot{
		Resolved: true,
		List: &shoplist.List{
			ShareID: "abc",
			Name:    "Groceries",
			Items: []shoplist.Item{
				{ID: "2", Name: "Bread", Quantity: 1, Order: 2, Checked: true},
				{ID: "1", Name: "Milk", Quantity: 3, Order: 1},
			},
		},
	}
	var buf bytes.Buffer
	if err := writePlain(&buf, snap, "https://shop.example"); err != nil {
		t.Fatalf("writePlain: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Groceries (1/2 checked)",
		"https://shop.example/?list=abc",
		"[ ]  Milk",
		"[x]  Bread",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Milk") > strings.Index(out, "Bread") {
		t.Fatalf("items should follow their order:\n%s", out)
	}
}

func TestWritePlain_States(t *testing.T) {
	cases := []struct {
		name string
		snap state.Snapshot
		want string
	}{
		{"not found", state.Snapshot{Resolved: true, NotFound: true}, "List not found."},
		{"empty", state.Snapshot{Resolved: true}, "No list."},
		{"empty list", state.Snapshot{Resolved: true, List: &shoplist.List{ShareID: "x"}}, "(no items)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writePlain(&buf, tc.snap, "https://shop.example"); err != nil {
				t.Fatalf("writePlain: %v", err)
			}
			if !strings.Contains(buf.String(), tc.want) {
				t.Fatalf("output = %q, want %q", buf.String(), tc.want)
			}
		})
	}
}
