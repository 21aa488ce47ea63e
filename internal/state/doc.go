// Package state holds the view-state controller for the shopping list TUI.
//
// # Overview
//
// The Controller owns the one list the user is looking at. Screens never
// talk to the API or the device store directly; they call Controller
// methods, read a Snapshot, and redraw when Changes fires.
//
//	 UI (bubbletea)                Controller                 outside
//	┌──────────────┐  intents   ┌──────────────┐  gateway  ┌───────────┐
//	│ key handlers │──────────→ │ mutate state │─────────→ │ list API  │
//	│              │            │              │           └───────────┘
//	│ View()       │ ←───────── │ Snapshot()   │  device   ┌───────────┐
//	└──────────────┘  Changes() └──────────────┘─────────→ │ kv store  │
//	                                                        └───────────┘
//
// # Startup resolution
//
// New picks a candidate share id: the launch reference (a bare id or a
// share link) when given, otherwise the device's active list id. Resolve
// fetches it exactly once:
//
//   - Found: the list becomes current and a launch id is persisted as the
//     active list.
//   - NotFound: the not-found screen is raised and a stored active id that
//     matched the candidate is cleared.
//   - Failed: the error is returned and recorded in Snapshot.LastError.
//
// Resolution is complete after any of the three.
//
// # Views
//
// DeriveView maps a handful of flags to one of five screens: placeholder
// before the terminal is ready, a loader while the candidate resolves,
// not-found, the empty start screen, and the list itself.
//
// # Mutations
//
// Toggle, delete item and quantity edits apply locally first. Add item
// and rename wait for the API and adopt its response. A response for a
// list that is no longer current is dropped.
//
// Quantity edits go through a coalesce.Queue so a burst of +/- presses on
// one item sends only the final value once input has been quiet for the
// debounce interval. Close flushes whatever is still pending.
//
// # Concurrency
//
// All fields are guarded by one mutex that is never held across network
// calls. Changes is a one-slot channel; a send that would block is
// dropped because the receiver always reads the latest Snapshot.
package state
