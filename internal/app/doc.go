// Package app is the composition root for shoplist.
//
// Run wires the pieces together in order:
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()      TOML file, .env, environment
//	       ├─────> logging.Setup()    slog to the log file
//	       ├─────> device.Open()      file, sqlite or memory backend
//	       ├─────> gateway.NewClient() HTTP client for the list API
//	       ├─────> state.New()        view-state controller
//	       └─────> ui.Run()           TUI (blocks until quit)
//
// When stdout is not a terminal, or Options.Plain is set, Run resolves the
// startup list once and prints it as text instead of starting the TUI.
//
// Fatal errors (returned from Run): a bad config file, a log file or device
// store that cannot be opened, an invalid API URL. Network failures while
// the TUI runs are shown in the footer and never end the program.
//
// On exit the controller flushes any pending quantity changes before the
// device store is closed.
package app
