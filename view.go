package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"pinboard/internal/assets"
	"pinboard/internal/board"
	"pinboard/internal/geom"
	"pinboard/internal/interact"
	"pinboard/internal/viewport"
)

type cellStyle struct {
	fg, bg string
	bold   bool
	faint  bool
}

type cell struct {
	r  rune
	st cellStyle
}

// frame is a grid of styled terminal cells.
type frame struct {
	w, h  int
	cells []cell
}

func newFrame(w, h int) *frame {
	f := &frame{w: w, h: h, cells: make([]cell, w*h)}
	for i := range f.cells {
		f.cells[i].r = ' '
	}
	return f
}

func (f *frame) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return nil
	}
	return &f.cells[y*f.w+x]
}

// set writes r at (x, y). An empty background keeps the one underneath.
func (f *frame) set(x, y int, r rune, st cellStyle) {
	c := f.at(x, y)
	if c == nil {
		return
	}
	if st.bg == "" {
		st.bg = c.st.bg
	}
	c.r, c.st = r, st
}

func (f *frame) fill(x0, y0, x1, y1 int, bg string) {
	for y := max(0, y0); y < min(f.h, y1); y++ {
		for x := max(0, x0); x < min(f.w, x1); x++ {
			f.cells[y*f.w+x] = cell{r: ' ', st: cellStyle{bg: bg}}
		}
	}
}

// text writes s starting at (x, y), truncated to width cells.
func (f *frame) text(x, y int, s string, width int, st cellStyle) {
	if width <= 0 {
		return
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	for _, r := range s {
		f.set(x, y, r, st)
		x++
	}
}

type borderRunes struct {
	tl, tr, bl, br, h, v rune
}

var (
	roundBorder  = borderRunes{'╭', '╮', '╰', '╯', '─', '│'}
	doubleBorder = borderRunes{'╔', '╗', '╚', '╝', '═', '║'}
	lightBorder  = borderRunes{'┌', '┐', '└', '┘', '─', '│'}
	heavyBorder  = borderRunes{'┏', '┓', '┗', '┛', '━', '┃'}
	dottedBorder = borderRunes{'┌', '┐', '└', '┘', '┄', '┆'}
)

// box draws a border on the cell span [x0,x1)×[y0,y1).
func (f *frame) box(x0, y0, x1, y1 int, b borderRunes, st cellStyle) {
	if x1-x0 < 2 || y1-y0 < 2 {
		return
	}
	for x := x0 + 1; x < x1-1; x++ {
		f.set(x, y0, b.h, st)
		f.set(x, y1-1, b.h, st)
	}
	for y := y0 + 1; y < y1-1; y++ {
		f.set(x0, y, b.v, st)
		f.set(x1-1, y, b.v, st)
	}
	f.set(x0, y0, b.tl, st)
	f.set(x1-1, y0, b.tr, st)
	f.set(x0, y1-1, b.bl, st)
	f.set(x1-1, y1-1, b.br, st)
}

func (f *frame) render() string {
	styles := make(map[cellStyle]lipgloss.Style)
	styleFor := func(st cellStyle) lipgloss.Style {
		if s, ok := styles[st]; ok {
			return s
		}
		s := lipgloss.NewStyle().Bold(st.bold).Faint(st.faint)
		if st.fg != "" {
			s = s.Foreground(lipgloss.Color(st.fg))
		}
		if st.bg != "" {
			s = s.Background(lipgloss.Color(st.bg))
		}
		styles[st] = s
		return s
	}

	var out strings.Builder
	var run strings.Builder
	for y := 0; y < f.h; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		row := f.cells[y*f.w : (y+1)*f.w]
		for x := 0; x < len(row); {
			st := row[x].st
			run.Reset()
			for x < len(row) && row[x].st == st {
				run.WriteRune(row[x].r)
				x++
			}
			if st == (cellStyle{}) {
				out.WriteString(run.String())
			} else {
				out.WriteString(styleFor(st).Render(run.String()))
			}
		}
	}
	return out.String()
}

// cellSpan returns the cells whose centres fall inside a screen rect, as
// half-open ranges.
func cellSpan(r geom.Rect, cw, ch float64) (x0, y0, x1, y1 int) {
	x0 = int(math.Ceil(r.X/cw - 0.5))
	y0 = int(math.Ceil(r.Y/ch - 0.5))
	x1 = int(math.Ceil((r.X+r.W)/cw - 0.5))
	y1 = int(math.Ceil((r.Y+r.H)/ch - 0.5))
	return
}

func luminance(c board.RGBA) float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

func contrastText(c board.RGBA) string {
	if luminance(c) > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

// boardRenderer draws a board through a viewport onto a frame.
type boardRenderer struct {
	view    *viewport.Viewport
	cw, ch  float64
	icons   *assets.IconProvider
	missing func(board.ExternalRef) bool
	plain   bool
}

func (r *boardRenderer) span(world geom.Rect) (int, int, int, int) {
	return cellSpan(r.view.RectToScreen(world), r.cw, r.ch)
}

// cellAt returns the cell containing screen point p. Points left of or above
// the board land on negative cells.
func (r *boardRenderer) cellAt(p geom.Vec2) (int, int) {
	return int(math.Floor(p.X / r.cw)), int(math.Floor(p.Y / r.ch))
}

func (r *boardRenderer) grid(f *frame) {
	spacing := gridSpacing
	for spacing*r.view.Zoom() < minGridPixels {
		spacing *= 2
	}
	tl := r.view.ScreenToWorld(geom.V(0, 0))
	br := r.view.ScreenToWorld(geom.V(float64(f.w)*r.cw, float64(f.h)*r.ch))
	st := cellStyle{fg: "#444444"}
	for gy := math.Ceil(tl.Y/spacing) * spacing; gy < br.Y; gy += spacing {
		for gx := math.Ceil(tl.X/spacing) * spacing; gx < br.X; gx += spacing {
			x, y := r.cellAt(r.view.WorldToScreen(geom.V(gx, gy)))
			f.set(x, y, '·', st)
		}
	}
}

func (r *boardRenderer) category(f *frame, c *board.CategoryNode, selected bool) {
	col := c.Color()
	x0, y0, x1, y1 := r.span(c.Bounds())
	border := roundBorder
	bst := cellStyle{fg: col.Hex()}
	if selected {
		border = doubleBorder
		bst.bold = true
	}
	if !r.plain {
		f.fill(x0, y0, x1, y1, col.Scale(0.25).Hex())
	}
	f.box(x0, y0, x1, y1, border, bst)
	if selected && x1-x0 >= 2 && y1-y0 >= 2 {
		f.set(x1-1, y1-1, '◢', bst)
	}

	tx0, ty0, tx1, ty1 := r.span(c.TitleBand())
	if ty1 <= ty0 {
		ty1 = ty0 + 1
	}
	tst := cellStyle{bold: true}
	if !r.plain {
		f.fill(tx0, ty0, tx1, ty1, col.Scale(0.7).Hex())
		tst.fg = contrastText(col.Scale(0.7))
	}
	f.text(tx0+1, ty1-1, c.Title(), tx1-tx0-2, tst)
}

func (r *boardRenderer) object(f *frame, b *board.Board, o *board.ObjectNode, selected bool) {
	x0, y0, x1, y1 := r.span(o.Bounds())
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	tint := "#aaaaaa"
	if id, ok := o.CategoryID(); ok {
		if c, ok := b.Category(id); ok {
			tint = c.Color().Hex()
		}
	}

	border := lightBorder
	bst := cellStyle{fg: "#888888"}
	if selected {
		border = heavyBorder
		bst = cellStyle{fg: "#ffd75f", bold: true}
	}
	if !r.plain {
		f.fill(x0, y0, x1, y1, "#262626")
	}

	row, left, width := y0, x0, x1-x0
	if y1-y0 >= 3 && x1-x0 >= 3 {
		f.box(x0, y0, x1, y1, border, bst)
		row, left, width = y0+(y1-y0)/2, x0+1, x1-x0-2
	}

	missing := r.missing != nil && r.missing(o.Ref())
	if !missing && r.icons != nil && width > 2 {
		if icon, ok := r.icons.Icon(o.Ref()); ok {
			f.text(left, row, icon.Glyph, 1, cellStyle{fg: tint, bold: true})
			left += 2
			width -= 2
		}
	}
	f.text(left, row, o.Title(), width, cellStyle{fg: "#eeeeee", bold: selected, faint: missing})
}

func (r *boardRenderer) draw(f *frame, b *board.Board, selected func(board.Node) bool) {
	r.grid(f)
	for _, c := range b.Categories() {
		r.category(f, c, selected(c))
	}
	for _, o := range b.Objects() {
		r.object(f, b, o, selected(o))
	}
}

func (m *model) renderer() *boardRenderer {
	return &boardRenderer{
		view:  m.engine.View(),
		cw:    m.cfg.CellWidth,
		ch:    m.cfg.CellHeight,
		icons: m.icons,
		missing: func(ref board.ExternalRef) bool {
			return m.tracker != nil && m.tracker.Missing(ref)
		},
	}
}

func (m model) View() string {
	if m.mode == ModeHelp {
		return m.helpView()
	}
	width := max(1, m.width)
	height := m.boardRows()

	f := newFrame(width, height)
	r := m.renderer()
	r.draw(f, m.engine.Board(), m.engine.IsSelected)

	if band, ok := m.engine.RubberBand(); ok {
		x0, y0, x1, y1 := r.span(band)
		f.box(x0, y0, max(x1, x0+2), max(y1, y0+2), dottedBorder, cellStyle{fg: "#ffd75f"})
	}

	return f.render() + "\n" + m.statusLine(width)
}

var (
	statusStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd787"))
)

func (m model) modeString() string {
	switch m.mode {
	case ModePrompt:
		return "INPUT"
	case ModeConfirm:
		return "CONFIRM"
	case ModeHelp:
		return "HELP"
	}
	switch m.engine.Mode() {
	case interact.ModeRubberBand:
		return "SELECT"
	case interact.ModeDragging:
		return "MOVE"
	case interact.ModeResizing:
		return "RESIZE"
	case interact.ModePanning:
		return "PAN"
	default:
		return "NORMAL"
	}
}

func (m model) statusLine(width int) string {
	switch m.mode {
	case ModePrompt:
		return fmt.Sprintf("Mode: INPUT | %s: %s | Enter=confirm, Esc=cancel", m.promptLabel(), m.prompt.View())
	case ModeConfirm:
		var message string
		switch m.confirmAction {
		case ConfirmDelete:
			message = fmt.Sprintf("Delete %d selected node(s)? (y/n)", m.engine.Selection().Len())
		case ConfirmQuit:
			message = "Quit pinboard? (y/n)"
		case ConfirmOverwrite:
			message = fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.pendingPath)
		case ConfirmReload:
			message = "Reload from disk? Unsaved changes will be lost. (y/n)"
		}
		return "Mode: CONFIRM | " + message
	}

	status := fmt.Sprintf("Mode: %s | Zoom: %d%% | File: %s",
		m.modeString(), int(math.Round(m.engine.View().Zoom()*100)), m.doc.Name())
	if n := m.engine.Selection().Len(); n > 0 {
		status += fmt.Sprintf(" | Selected: %d", n)
		if len(m.inspect.refs) == 1 {
			status += " (" + string(m.inspect.refs[0]) + ")"
		}
	}
	if c, axis, ok := m.engine.ResizeTarget(); ok {
		status += fmt.Sprintf(" | %s %gx%g (%s)", c.Title(), c.Size().X, c.Size().Y, axis)
	}
	status = statusStyle.Render(status)
	switch {
	case m.errorMessage != "":
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		status += " | " + successStyle.Render(m.successMessage)
	default:
		status += statusStyle.Render(" | ? for help | q to quit")
	}
	if ansi.StringWidth(status) > width {
		status = ansi.Truncate(status, width, "…")
	}
	return status
}

var helpLines = []string{
	"pinboard Help",
	"=============",
	"",
	"Mouse:",
	"------",
	"  Left click          Select a node (objects win over categories)",
	"  Left drag           Move the selection; categories carry their members",
	"  Left drag on empty  Rubber-band select",
	"  Drag category edge  Resize (bottom, right or corner)",
	"  Double click title  Rename category",
	"  Middle / Alt+drag   Pan",
	"  Wheel               Zoom at the pointer",
	"  Right click empty   Create category",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Pan the board",
	"  Shift+h/j/k/l    Pan 2x faster",
	"  +/-              Zoom in/out at the centre",
	"  0                Reset zoom and pan",
	"",
	"Board:",
	"------",
	"  b                Create category at the pointer",
	"  e                Rename the selected node",
	"  c                Cycle color of the selected categories",
	"  d                Delete the selection",
	"  a                Select all",
	"  g                Toggle grid snap",
	"  p                Paste clipboard lines as items",
	"  y                Copy selected item references",
	"  Esc              Cancel the current interaction and clear the selection",
	"",
	"Files:",
	"------",
	"  Ctrl+S           Save",
	"  S                Save as (.yaml or .db)",
	"  o                Open",
	"  R                Reload from disk",
	"  P                Export PNG",
	"  T                Export text",
	"",
	"Dropping files onto the terminal adds them at the pointer.",
	"",
	"  q                Quit",
}

func (m model) helpView() string {
	rows := max(1, m.height-1)
	start := min(m.helpScroll, max(0, len(helpLines)-1))
	end := min(len(helpLines), start+rows)
	return strings.Join(helpLines[start:end], "\n") + "\n" + statusStyle.Render("j/k scroll | Esc to close")
}
