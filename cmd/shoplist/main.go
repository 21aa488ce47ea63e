package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/shoplist/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	listRef := flag.String("list", "", "share id or share link to open (optional)")
	store := flag.String("store", "", "device store: file, sqlite or memory (optional)")
	plain := flag.Bool("plain", false, "print the list and exit instead of starting the TUI")
	flag.Parse()

	// A bare argument works like -list so share links can be pasted directly.
	ref := *listRef
	if ref == "" && flag.NArg() > 0 {
		ref = flag.Arg(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		ListRef:    ref,
		Store:      *store,
		Plain:      *plain,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "shoplist: %v\n", err)
		return 1
	}
	return 0
}
