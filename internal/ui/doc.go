// Package ui provides the Bubble Tea terminal interface for shoplist.
//
// The UI holds no list state of its own. It renders state.Snapshot values
// pulled from a Controller and turns key presses into controller calls run
// as tea.Cmds, so network round trips never block rendering. The
// controller signals changes on a channel; waitForChange turns each signal
// into a changedMsg and the model re-reads the snapshot.
//
// # Screens
//
// The body follows the controller's derived view:
//
//   - Loading: spinner while the startup list is fetched
//   - Not found: the requested list is gone; create a new one or open another
//   - Empty: no list yet; create or open one
//   - Filled: the list with its items, sorted by order
//
// Dialogs (open, share, rename, delete confirmation, alerts) implement the
// Modal interface and take all input while shown. The share dialog renders
// the share link as a QR code and can copy the link to the clipboard.
//
// # Key Bindings
//
//   - a: Add item (enter adds, esc closes the input)
//   - space/enter: Check or uncheck the selected item
//   - +/-: Change quantity (never below 1)
//   - x: Delete item
//   - r: Rename list
//   - s: Share
//   - o: Open a list by id, link or from history
//   - n: New list
//   - D: Delete list
//   - T: Cycle theme
//   - L: Recent log
//   - h/?: Help
//   - q or Ctrl+C: Quit
package ui
