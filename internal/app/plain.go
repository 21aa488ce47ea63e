package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/five82/shoplist/internal/shoplist"
	"github.com/five82/shoplist/internal/state"
)

// writePlain renders a snapshot as text for pipes and scripts.
func writePlain(w io.Writer, snap state.Snapshot, shareBaseURL string) error {
	switch snap.View(true) {
	case state.ViewNotFound:
		_, err := fmt.Fprintln(w, "List not found.")
		return err
	case state.ViewFilled:
	default:
		_, err := fmt.Fprintln(w, "No list. Run with -list <id or link> to open one.")
		return err
	}

	list := snap.List
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d/%d checked)\n", list.DisplayName(), list.CheckedCount(), len(list.Items))
	fmt.Fprintf(&b, "%s\n\n", shoplist.ShareLink(shareBaseURL, list.ShareID))

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, item := range list.SortedItems() {
		box := "[ ]"
		if item.Checked {
			box = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", box, item.Name, item.Quantity)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(list.Items) == 0 {
		b.WriteString("(no items)\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
