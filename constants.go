package main

import "time"

type Mode int

const (
	ModeBoard Mode = iota
	ModePrompt
	ModeConfirm
	ModeHelp
)

type PromptAction int

const (
	PromptEditTitle PromptAction = iota
	PromptSaveAs
	PromptOpen
	PromptExportPNG
	PromptExportTXT
)

type ConfirmAction int

const (
	ConfirmDelete ConfirmAction = iota
	ConfirmQuit
	ConfirmOverwrite
	ConfirmReload
)

const (
	// Screen pixels per terminal cell.
	defaultCellWidth  = 8
	defaultCellHeight = 16

	gridSpacing   = 20.0
	minGridPixels = 48.0

	// panCells is how far one navigation key press scrolls, in cells.
	panCells = 4

	doubleClickWindow = 400 * time.Millisecond
	thumbnailSize     = 64
	defaultExtension  = ".yaml"
)
