package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which button labels collapse
	// to their keys.
	LayoutCompactWidth = 70

	// ModalWidth is the content width of dialogs.
	ModalWidth = 52
)

// Log display limits.
const (
	// LogTailLines is how many records the log panel reads back.
	LogTailLines = 500
)

// Timing constants.
const (
	// FlashDuration is how long transient notices stay in the footer.
	FlashDuration = 2 * time.Second

	// ResolveTimeout bounds the startup list lookup.
	ResolveTimeout = 15 * time.Second
)
