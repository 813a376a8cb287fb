package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pinboard/internal/assets"
	"pinboard/internal/board"
	"pinboard/internal/geom"
	"pinboard/internal/interact"
	"pinboard/internal/persist"
	"pinboard/internal/viewport"
)

// inspector receives the references of the selected object nodes.
type inspector struct {
	refs []board.ExternalRef
}

func (i *inspector) SelectionChanged(refs []board.ExternalRef) { i.refs = refs }

// refTracker is the part of assets.Watcher the model needs.
type refTracker interface {
	Track(ref board.ExternalRef) error
	Missing(ref board.ExternalRef) bool
	Reset(r assets.Resolver) error
}

// refEventMsg carries a watcher event into the update loop.
type refEventMsg assets.Event

type model struct {
	ctx context.Context
	cfg *Config
	log *slog.Logger

	engine   *interact.Engine
	doc      *persist.Document
	resolver assets.Resolver
	icons    *assets.IconProvider
	measurer board.TitleMeasurer
	tracker  refTracker
	inspect  *inspector

	width      int
	height     int
	mode       Mode
	helpScroll int

	prompt        textinput.Model
	promptAction  PromptAction
	confirmAction ConfirmAction
	pendingPath   string
	editTarget    board.Titled

	pointer       geom.Vec2
	lastClick     time.Time
	lastClickCell [2]int

	errorMessage   string
	successMessage string
}

type modelOption func(*model)

func withTracker(t refTracker) modelOption {
	return func(m *model) { m.tracker = t }
}

func withMeasurer(tm board.TitleMeasurer) modelOption {
	return func(m *model) { m.measurer = tm }
}

func newModel(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...modelOption) model {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := model{
		ctx:      ctx,
		cfg:      cfg,
		log:      logger,
		doc:      persist.NewDocument(logger),
		resolver: assets.Resolver{},
		inspect:  &inspector{},
		mode:     ModeBoard,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.measurer == nil {
		m.measurer = board.RuneMeasurer(cfg.CellWidth)
	}
	m.icons = assets.NewIconProvider(m.resolver, thumbnailSize)

	m.engine = interact.New(board.New(m.boardOptions()...), viewport.New(),
		interact.WithLogger(logger),
		interact.WithSink(m.inspect),
		interact.WithResolver(m.resolver),
		interact.WithGridSnap(cfg.gridStep()),
	)

	m.prompt = textinput.New()
	m.prompt.CharLimit = 256
	return m
}

func (m *model) boardOptions() []board.Option {
	return []board.Option{
		board.WithMeasurer(m.measurer),
		board.WithDefaultColor(m.cfg.categoryColor()),
	}
}

func (m model) Init() tea.Cmd {
	return tea.SetWindowTitle(m.windowTitle())
}

func (m *model) windowTitle() string {
	return "pinboard - " + m.doc.Name()
}

// cellToScreen maps a terminal cell to the screen pixel at its centre.
func (m *model) cellToScreen(x, y int) geom.Vec2 {
	return geom.V((float64(x)+0.5)*m.cfg.CellWidth, (float64(y)+0.5)*m.cfg.CellHeight)
}

func (m *model) boardRows() int {
	return max(1, m.height-1)
}

func (m *model) boardCentre() geom.Vec2 {
	return geom.V(float64(m.width)*m.cfg.CellWidth/2, float64(m.boardRows())*m.cfg.CellHeight/2)
}

func (m *model) setError(err error) {
	m.errorMessage = err.Error()
	m.successMessage = ""
}

func (m *model) setSuccess(msg string) {
	m.successMessage = msg
	m.errorMessage = ""
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.Width = max(10, msg.Width-30)
		return m, nil

	case refEventMsg:
		m.icons.Invalidate(msg.Ref)
		name := m.resolver.DisplayName(msg.Ref)
		if msg.Kind == assets.RefMissing {
			m.log.Warn("external reference missing", slog.String("ref", string(msg.Ref)))
			m.setError(fmt.Errorf("%s: %w", name, assets.ErrMissingRef))
		} else {
			m.setSuccess(name + " is back")
		}
		return m, nil

	case tea.MouseMsg:
		if m.mode != ModeBoard {
			// A gesture started before a modal opened still has to end.
			if msg.Action == tea.MouseActionRelease {
				m.engine.PointerUp(pointerEvent(msg, m.cellToScreen(msg.X, msg.Y)))
			}
			return m, nil
		}
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case ModeHelp:
			return m.handleHelpKey(msg)
		case ModePrompt:
			return m.handlePromptKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		}
		if msg.Paste {
			m.dropText(string(msg.Runes))
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func pointerEvent(msg tea.MouseMsg, pos geom.Vec2) interact.PointerEvent {
	ev := interact.PointerEvent{Pos: pos}
	switch msg.Button {
	case tea.MouseButtonLeft:
		ev.Button = interact.ButtonPrimary
	case tea.MouseButtonMiddle:
		ev.Button = interact.ButtonMiddle
	case tea.MouseButtonRight:
		ev.Button = interact.ButtonSecondary
	}
	if msg.Alt {
		ev.Mods |= interact.ModAlt
	}
	if msg.Ctrl {
		ev.Mods |= interact.ModCtrl
	}
	if msg.Shift {
		ev.Mods |= interact.ModShift
	}
	return ev
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	pos := m.cellToScreen(msg.X, msg.Y)
	m.pointer = pos
	ev := pointerEvent(msg, pos)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.engine.Scroll(m.cfg.ZoomStep, pos)
		case tea.MouseButtonWheelDown:
			m.engine.Scroll(-m.cfg.ZoomStep, pos)
		case tea.MouseButtonRight:
			if m.engine.Mode() == interact.ModeIdle && m.engine.HitAt(pos) == nil {
				c := m.engine.CreateCategoryAt(pos)
				m.setSuccess(fmt.Sprintf("Created category %d", c.ID()))
			}
		case tea.MouseButtonLeft:
			if m.isDoubleClick(msg.X, msg.Y) && !msg.Alt {
				if c, ok := m.engine.Board().TitleBandAt(m.engine.View().ScreenToWorld(pos)); ok {
					m.startEdit(c)
					return m, nil
				}
			}
			m.clearMessages()
			m.engine.PointerDown(ev)
		case tea.MouseButtonMiddle:
			m.engine.PointerDown(ev)
		}
	case tea.MouseActionMotion:
		m.engine.PointerMove(ev)
	case tea.MouseActionRelease:
		m.engine.PointerUp(ev)
	}
	return m, nil
}

func (m *model) isDoubleClick(x, y int) bool {
	now := time.Now()
	cellPos := [2]int{x, y}
	double := now.Sub(m.lastClick) <= doubleClickWindow && m.lastClickCell == cellPos
	if double {
		m.lastClick = time.Time{}
	} else {
		m.lastClick = now
	}
	m.lastClickCell = cellPos
	return double
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.cfg.Confirmations {
			m.confirm(ConfirmQuit)
			return m, nil
		}
		return m, tea.Quit
	case "?":
		m.mode = ModeHelp
		m.helpScroll = 0
		return m, nil
	case "esc":
		m.engine.ResetInteractionState()
		m.clearMessages()
		return m, nil

	case "h", "j", "k", "l", "H", "J", "K", "L",
		"left", "right", "up", "down",
		"shift+left", "shift+right", "shift+up", "shift+down":
		return m.handlePan(key, m.getMoveSpeed(key)), nil
	case "+", "=":
		m.engine.Scroll(m.cfg.ZoomStep, m.boardCentre())
		return m, nil
	case "-", "_":
		m.engine.Scroll(-m.cfg.ZoomStep, m.boardCentre())
		return m, nil
	case "0":
		m.engine.View().Reset()
		return m, nil

	case "b":
		c := m.engine.CreateCategoryAt(m.pointer)
		m.setSuccess(fmt.Sprintf("Created category %d", c.ID()))
		return m, nil
	case "d", "delete", "backspace":
		if m.engine.Selection().Len() == 0 {
			return m, nil
		}
		if m.cfg.Confirmations {
			m.confirm(ConfirmDelete)
			return m, nil
		}
		m.deleteSelection()
		return m, nil
	case "e":
		sel := m.engine.Selected()
		var c *board.CategoryNode
		if len(sel) == 1 {
			c, _ = sel[0].AsCategory()
		}
		if c == nil {
			m.setError(errors.New("select one category to rename"))
			return m, nil
		}
		m.startEdit(c)
		return m, nil
	case "c":
		m.cycleColor()
		return m, nil
	case "a", "ctrl+a":
		m.engine.SelectAll()
		return m, nil
	case "g":
		if m.engine.GridStep() > 0 {
			m.engine.SetGridStep(0)
			m.setSuccess("Grid snap off")
		} else {
			m.engine.SetGridStep(m.cfg.GridSize)
			m.setSuccess(fmt.Sprintf("Grid snap %g", m.cfg.GridSize))
		}
		return m, nil

	case "p":
		text, err := readClipboardText()
		if err != nil {
			m.setError(fmt.Errorf("clipboard: %w", err))
			return m, nil
		}
		m.dropText(cleanClipboardText(text))
		return m, nil
	case "y":
		m.copySelection()
		return m, nil

	case "ctrl+s":
		return m, m.quickSave()
	case "S":
		m.startPrompt(PromptSaveAs, m.doc.Path())
		return m, nil
	case "o":
		m.startPrompt(PromptOpen, "")
		return m, nil
	case "R":
		if m.cfg.Confirmations && m.doc.Path() != "" {
			m.confirm(ConfirmReload)
			return m, nil
		}
		return m, m.reload()
	case "P":
		m.startPrompt(PromptExportPNG, m.doc.Name()+".png")
		return m, nil
	case "T":
		m.startPrompt(PromptExportTXT, m.doc.Name()+".txt")
		return m, nil
	}
	return m, nil
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.mode = ModeBoard
		m.helpScroll = 0
	case "j", "down":
		if m.helpScroll < len(helpLines)-1 {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) confirm(action ConfirmAction) {
	m.confirmAction = action
	m.mode = ModeConfirm
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = ModeBoard
		switch m.confirmAction {
		case ConfirmDelete:
			m.deleteSelection()
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmOverwrite:
			path := m.pendingPath
			m.pendingPath = ""
			return m, m.saveAs(path)
		case ConfirmReload:
			return m, m.reload()
		}
	case "n", "N", "esc":
		m.mode = ModeBoard
		m.pendingPath = ""
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) startPrompt(action PromptAction, initial string) {
	m.promptAction = action
	m.prompt.SetValue(initial)
	m.prompt.CursorEnd()
	m.prompt.Focus()
	m.mode = ModePrompt
	m.clearMessages()
}

func (m *model) startEdit(n board.Titled) {
	m.editTarget = n
	m.startPrompt(PromptEditTitle, n.Title())
}

func (m *model) promptLabel() string {
	switch m.promptAction {
	case PromptEditTitle:
		return "Title"
	case PromptSaveAs:
		return "Save as"
	case PromptOpen:
		return "Open"
	case PromptExportPNG:
		return "Export PNG"
	case PromptExportTXT:
		return "Export TXT"
	default:
		return ""
	}
}

func (m model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt.Blur()
		m.mode = ModeBoard
		m.editTarget = nil
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		value := strings.TrimSpace(m.prompt.Value())
		m.prompt.Blur()
		m.mode = ModeBoard
		return m, m.commitPrompt(value)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *model) commitPrompt(value string) tea.Cmd {
	switch m.promptAction {
	case PromptEditTitle:
		if m.editTarget != nil && value != "" {
			m.editTarget.SetTitle(value)
			m.setSuccess("Renamed to " + value)
		}
		m.editTarget = nil
	case PromptSaveAs:
		if value == "" {
			return nil
		}
		path := m.cfg.GetSavePath(withDefaultExt(value))
		if path != m.doc.Path() && fileExists(path) && m.cfg.Confirmations {
			m.pendingPath = path
			m.confirm(ConfirmOverwrite)
			return nil
		}
		return m.saveAs(path)
	case PromptOpen:
		if value == "" {
			return nil
		}
		return m.open(m.cfg.GetSavePath(withDefaultExt(value)))
	case PromptExportPNG:
		if value == "" {
			return nil
		}
		path := m.cfg.GetSavePath(value)
		if err := exportPNG(path, m.engine.Board(), m.icons); err != nil {
			m.setError(fmt.Errorf("export PNG: %w", err))
			return nil
		}
		m.setSuccess("Exported to " + absPath(path))
	case PromptExportTXT:
		if value == "" {
			return nil
		}
		path := m.cfg.GetSavePath(value)
		if err := m.exportVisualTXT(path); err != nil {
			m.setError(fmt.Errorf("export TXT: %w", err))
			return nil
		}
		m.setSuccess("Exported to " + absPath(path))
	}
	return nil
}

func withDefaultExt(name string) string {
	if filepath.Ext(name) == "" {
		return name + defaultExtension
	}
	return name
}

// open replaces the board with the file at path. On failure the current
// board is kept.
func (m *model) open(path string) tea.Cmd {
	b, f, err := m.doc.Open(m.ctx, path, m.boardOptions()...)
	if err != nil {
		m.setError(err)
		return nil
	}
	m.setResolver(assets.ForBoard(m.doc.Path()))
	m.engine.SetBoard(b)
	f.ApplyView(m.engine.View())
	m.trackRefs(b)
	m.setSuccess(fmt.Sprintf("Opened %s", absPath(path)))
	return tea.SetWindowTitle(m.windowTitle())
}

func (m *model) saveAs(path string) tea.Cmd {
	next := assets.ForBoard(path)
	if absPath(next.Root) != absPath(m.resolver.Root) {
		m.rebaseRefs()
	}
	if err := m.doc.SaveAs(m.ctx, path, m.engine.Board(), m.engine.View()); err != nil {
		m.setError(err)
		return nil
	}
	m.setResolver(next)
	m.trackRefs(m.engine.Board())
	m.setSuccess("Saved to " + absPath(path))
	return tea.SetWindowTitle(m.windowTitle())
}

func (m *model) quickSave() tea.Cmd {
	err := m.doc.QuickSave(m.ctx, m.engine.Board(), m.engine.View())
	if errors.Is(err, persist.ErrNoPriorSave) {
		m.setError(errors.New("no file yet, press S to save as"))
		return nil
	}
	if err != nil {
		m.setError(err)
		return nil
	}
	m.setSuccess("SAVED")
	return nil
}

// reload drops all transient state and re-reads the current file when it
// still exists.
func (m *model) reload() tea.Cmd {
	m.engine.ResetInteractionState()
	if m.doc.Path() == "" {
		m.setSuccess("Interaction reset")
		return nil
	}
	if !fileExists(m.doc.Path()) {
		m.setError(fmt.Errorf("%s: %w", m.doc.Path(), persist.ErrInvalidPath))
		return nil
	}
	return m.open(m.doc.Path())
}

// setResolver switches the root relative references resolve against.
func (m *model) setResolver(r assets.Resolver) {
	m.resolver = r
	m.icons = assets.NewIconProvider(r, thumbnailSize)
	m.engine.SetResolver(r)
	if m.tracker != nil {
		if err := m.tracker.Reset(r); err != nil {
			m.log.Debug("watcher reset failed", slog.String("error", err.Error()))
		}
	}
}

// rebaseRefs makes relative references absolute under the current root so
// they survive the board moving to another directory.
func (m *model) rebaseRefs() {
	for _, o := range m.engine.Board().Objects() {
		if assets.IsRelative(o.Ref()) {
			o.SetRef(board.ExternalRef(absPath(m.resolver.Path(o.Ref()))))
		}
	}
}

func (m *model) trackRefs(b *board.Board) {
	if m.tracker == nil {
		return
	}
	for _, o := range b.Objects() {
		if err := m.tracker.Track(o.Ref()); err != nil {
			m.log.Debug("track ref failed", slog.String("ref", string(o.Ref())), slog.String("error", err.Error()))
		}
	}
}

// dropText treats each line of text as a dropped asset reference.
func (m *model) dropText(text string) {
	refs := parseDroppedRefs(text)
	if len(refs) == 0 {
		return
	}
	// Without a board file there is no directory to be relative to.
	if m.doc.Path() == "" {
		for i, ref := range refs {
			if assets.IsRelative(ref) {
				refs[i] = board.ExternalRef(absPath(string(ref)))
			}
		}
	}
	nodes := m.engine.Drop(refs, m.pointer)
	for _, o := range nodes {
		m.icons.Invalidate(o.Ref())
		if m.tracker != nil {
			if err := m.tracker.Track(o.Ref()); err != nil {
				m.log.Debug("track ref failed", slog.String("ref", string(o.Ref())), slog.String("error", err.Error()))
			}
		}
	}
	m.setSuccess(fmt.Sprintf("Added %d item(s)", len(nodes)))
}

func (m *model) deleteSelection() {
	if n := m.engine.DeleteSelection(); n > 0 {
		m.setSuccess(fmt.Sprintf("Deleted %d node(s)", n))
	}
}

// cycleColor advances every selected category to the next palette color.
func (m *model) cycleColor() {
	changed := 0
	for _, n := range m.engine.Selected() {
		c, ok := n.AsCategory()
		if !ok {
			continue
		}
		c.SetColor(nextColor(c.Color()))
		changed++
	}
	if changed == 0 {
		m.setError(errors.New("select a category to recolor"))
	}
}

func nextColor(cur board.RGBA) board.RGBA {
	for i, c := range board.Palette {
		if c == cur {
			return board.Palette[(i+1)%len(board.Palette)]
		}
	}
	return board.Palette[0]
}

func (m *model) copySelection() {
	if len(m.inspect.refs) == 0 {
		m.setError(errors.New("no items selected"))
		return
	}
	lines := make([]string, len(m.inspect.refs))
	for i, r := range m.inspect.refs {
		lines[i] = string(r)
	}
	if err := writeClipboardText(strings.Join(lines, "\n")); err != nil {
		m.setError(fmt.Errorf("clipboard: %w", err))
		return
	}
	m.setSuccess(fmt.Sprintf("Copied %d reference(s)", len(lines)))
}
