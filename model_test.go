package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pinboard/internal/board"
	"pinboard/internal/geom"
	"pinboard/internal/interact"
	"pinboard/internal/persist"
	"pinboard/internal/viewport"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	cfg := newDefaultConfig()
	cfg.LogFile = ""
	cfg.SaveDirectory = t.TempDir()
	m := newModel(context.Background(), cfg, nil)
	return send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func mouse(x, y int, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRightClickCreatesCategory(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))

	cats := m.engine.Board().Categories()
	if len(cats) != 1 {
		t.Fatalf("categories = %d, want 1", len(cats))
	}
	if got, want := cats[0].Position(), geom.V(84, 88); got != want {
		t.Errorf("position = %v, want %v", got, want)
	}

	// A right click on an existing node does not stack another category.
	m = send(t, m, mouse(20, 10, tea.MouseActionPress, tea.MouseButtonRight))
	if n := len(m.engine.Board().Categories()); n != 1 {
		t.Errorf("categories = %d after click on node", n)
	}
}

func TestMouseDragMovesCategory(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))
	c := m.engine.Board().Categories()[0]

	m = send(t, m, mouse(20, 10, tea.MouseActionPress, tea.MouseButtonLeft))
	if m.engine.Mode() != interact.ModeDragging {
		t.Fatalf("mode = %v, want drag", m.engine.Mode())
	}
	m = send(t, m, mouse(23, 11, tea.MouseActionMotion, tea.MouseButtonLeft))
	m = send(t, m, mouse(25, 12, tea.MouseActionRelease, tea.MouseButtonNone))

	if m.engine.Mode() != interact.ModeIdle {
		t.Errorf("mode = %v after release", m.engine.Mode())
	}
	if got, want := c.Position(), geom.V(124, 120); got != want {
		t.Errorf("position = %v, want %v", got, want)
	}
	if !m.engine.IsSelected(c) {
		t.Error("dragged category should stay selected")
	}
}

func TestPasteDropsRefsAtPointer(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(0, 0, tea.MouseActionMotion, tea.MouseButtonNone))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/tmp/a.png\n/tmp/b.txt\n"), Paste: true})

	objs := m.engine.Board().Objects()
	if len(objs) != 2 {
		t.Fatalf("objects = %d, want 2", len(objs))
	}
	if objs[0].Ref() != "/tmp/a.png" || objs[1].Ref() != "/tmp/b.txt" {
		t.Errorf("refs = %q, %q", objs[0].Ref(), objs[1].Ref())
	}
	if objs[0].Title() != "a" {
		t.Errorf("title = %q", objs[0].Title())
	}
	if got, want := objs[1].Position().Y-objs[0].Position().Y, float64(board.ObjectHeight); got != want {
		t.Errorf("stack offset = %g, want %g", got, want)
	}
}

func TestQuickSaveWithoutPath(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !strings.Contains(m.errorMessage, "no file yet") {
		t.Errorf("errorMessage = %q", m.errorMessage)
	}
}

func TestSaveAsThenQuickSave(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))

	m = send(t, m, key("S"))
	if m.mode != ModePrompt {
		t.Fatalf("mode = %v, want prompt", m.mode)
	}
	m.prompt.SetValue("moodboard")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	want := filepath.Join(m.cfg.SaveDirectory, "moodboard.yaml")
	if m.doc.Path() != want {
		t.Fatalf("doc path = %q, want %q", m.doc.Path(), want)
	}
	if !fileExists(want) {
		t.Fatal("board file not written")
	}
	if m.doc.Name() != "moodboard" {
		t.Errorf("name = %q", m.doc.Name())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.successMessage != "SAVED" {
		t.Errorf("successMessage = %q, error %q", m.successMessage, m.errorMessage)
	}

	m2 := newTestModel(t)
	m2.cfg.SaveDirectory = m.cfg.SaveDirectory
	m2 = send(t, m2, key("o"))
	m2.prompt.SetValue("moodboard")
	m2 = send(t, m2, tea.KeyMsg{Type: tea.KeyEnter})
	if n := len(m2.engine.Board().Categories()); n != 1 {
		t.Errorf("reopened categories = %d, error %q", n, m2.errorMessage)
	}
}

func TestRelativeRefsFollowBoardFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pic.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	b := board.New()
	b.AddObject("pic.png", "pic", geom.R(0, 0, 80, 50))
	src := filepath.Join(dir, "board.yaml")
	if err := persist.Save(context.Background(), src, persist.Snapshot(b, viewport.New())); err != nil {
		t.Fatal(err)
	}

	m := newTestModel(t)
	m.open(src)
	if m.errorMessage != "" {
		t.Fatalf("open: %s", m.errorMessage)
	}
	o := m.engine.Board().Objects()[0]
	if !m.resolver.Exists(o.Ref()) {
		t.Fatalf("%s should resolve next to the board file (root %q)", o.Ref(), m.resolver.Root)
	}

	moved := filepath.Join(t.TempDir(), "moved.yaml")
	m.saveAs(moved)
	if m.errorMessage != "" {
		t.Fatalf("save as: %s", m.errorMessage)
	}
	if want := board.ExternalRef(filepath.Join(dir, "pic.png")); o.Ref() != want {
		t.Errorf("ref after move = %q, want %q", o.Ref(), want)
	}
	if !m.resolver.Exists(o.Ref()) {
		t.Error("rebased ref should still resolve")
	}
}

func TestDropOnUnsavedBoardIsAbsolute(t *testing.T) {
	m := newTestModel(t)
	m.dropText("notes.txt")
	ref := m.engine.Board().Objects()[0].Ref()
	if !filepath.IsAbs(string(ref)) {
		t.Errorf("ref = %q, want absolute", ref)
	}
}

func TestOpenMissingKeepsBoard(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))
	m.open(filepath.Join(t.TempDir(), "missing.yaml"))
	if m.errorMessage == "" {
		t.Error("expected an error")
	}
	if n := len(m.engine.Board().Categories()); n != 1 {
		t.Errorf("categories = %d, board should be kept", n)
	}
	if m.doc.Path() != "" {
		t.Errorf("doc path = %q", m.doc.Path())
	}
}

func TestDeleteWithConfirmation(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))
	m = send(t, m, mouse(20, 10, tea.MouseActionPress, tea.MouseButtonLeft))
	m = send(t, m, mouse(20, 10, tea.MouseActionRelease, tea.MouseButtonNone))

	m = send(t, m, key("d"))
	if m.mode != ModeConfirm {
		t.Fatalf("mode = %v, want confirm", m.mode)
	}
	m = send(t, m, key("n"))
	if m.engine.Board().Len() != 1 {
		t.Fatal("declined delete removed the node")
	}

	m = send(t, m, key("d"))
	m = send(t, m, key("y"))
	if m.engine.Board().Len() != 0 {
		t.Errorf("board len = %d after delete", m.engine.Board().Len())
	}
	if m.engine.Selection().Len() != 0 {
		t.Error("selection should be empty")
	}
}

func TestDoubleClickTitleBandRenames(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))

	// The title band sits above the category body, at row 4.
	m = send(t, m, mouse(15, 4, tea.MouseActionPress, tea.MouseButtonLeft))
	m = send(t, m, mouse(15, 4, tea.MouseActionRelease, tea.MouseButtonNone))
	m = send(t, m, mouse(15, 4, tea.MouseActionPress, tea.MouseButtonLeft))
	if m.mode != ModePrompt || m.promptAction != PromptEditTitle {
		t.Fatalf("mode = %v action = %v, want title prompt", m.mode, m.promptAction)
	}
	if m.prompt.Value() != board.DefaultCategoryTitle {
		t.Errorf("prompt = %q", m.prompt.Value())
	}
	m.prompt.SetValue("Photos")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.engine.Board().Categories()[0].Title(); got != "Photos" {
		t.Errorf("title = %q", got)
	}
}

func TestReleaseDuringModalEndsGesture(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(5, 5, tea.MouseActionPress, tea.MouseButtonLeft))
	if m.engine.Mode() != interact.ModeRubberBand {
		t.Fatalf("mode = %v, want select", m.engine.Mode())
	}
	m = send(t, m, key("?"))
	m = send(t, m, mouse(5, 5, tea.MouseActionRelease, tea.MouseButtonNone))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.engine.Mode() != interact.ModeIdle {
		t.Fatalf("engine mode = %v after modal, want idle", m.engine.Mode())
	}

	// The next click is not swallowed.
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))
	m = send(t, m, mouse(20, 10, tea.MouseActionPress, tea.MouseButtonLeft))
	if m.engine.Mode() != interact.ModeDragging {
		t.Errorf("mode = %v, want drag", m.engine.Mode())
	}
}

func TestRenameKeyNeedsCategory(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))
	m.dropText("/tmp/far.png")
	obj := m.engine.Board().Objects()[0]
	m.engine.Select(obj)

	m = send(t, m, key("e"))
	if m.mode != ModeBoard || m.errorMessage == "" {
		t.Fatalf("mode = %v error = %q, objects are not renamed", m.mode, m.errorMessage)
	}

	m.engine.Select(m.engine.Board().Categories()[0])
	m = send(t, m, key("e"))
	if m.mode != ModePrompt || m.promptAction != PromptEditTitle {
		t.Fatalf("mode = %v, want title prompt", m.mode)
	}
}

func TestWheelZoomAndReset(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(40, 12, tea.MouseActionPress, tea.MouseButtonWheelUp))
	if z := m.engine.View().Zoom(); z < 1.09 || z > 1.11 {
		t.Errorf("zoom = %g, want 1.1", z)
	}
	m = send(t, m, key("0"))
	if z := m.engine.View().Zoom(); z != 1 {
		t.Errorf("zoom after reset = %g", z)
	}
}

func TestKeyPan(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key("l"))
	if got, want := m.engine.View().Origin(), geom.V(panCells*defaultCellWidth, 0); got != want {
		t.Errorf("origin = %v, want %v", got, want)
	}
}

func TestEscClearsSelection(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))
	m = send(t, m, key("a"))
	if m.engine.Selection().Len() != 1 {
		t.Fatalf("selection = %d", m.engine.Selection().Len())
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.engine.Selection().Len() != 0 {
		t.Error("esc should clear the selection")
	}
}

func TestCycleColor(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))
	c := m.engine.Board().Categories()[0]
	m = send(t, m, key("a"))
	m = send(t, m, key("c"))
	if c.Color() != board.Palette[0] {
		t.Errorf("color = %v, want first palette entry", c.Color())
	}
	m = send(t, m, key("c"))
	if c.Color() != board.Palette[1] {
		t.Errorf("color = %v, want second palette entry", c.Color())
	}
}

func TestViewRendersStatusAndHelp(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "Mode: NORMAL") {
		t.Error("status line missing")
	}
	m = send(t, m, key("?"))
	if !strings.Contains(m.View(), "pinboard Help") {
		t.Error("help view missing")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != ModeBoard {
		t.Errorf("mode = %v after closing help", m.mode)
	}
}

func TestExportTextFromModel(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight))
	path := filepath.Join(t.TempDir(), "board.txt")
	if err := m.exportVisualTXT(path); err != nil {
		t.Fatalf("exportVisualTXT: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) < 5 || !strings.Contains(lines[4], board.DefaultCategoryTitle) {
		t.Errorf("title not on row 4:\n%s", data)
	}
	if !strings.Contains(string(data), "╭") {
		t.Error("category border missing")
	}
}

func TestParseDroppedRefs(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		in   string
		want []board.ExternalRef
	}{
		{"/tmp/a.png", []board.ExternalRef{"/tmp/a.png"}},
		{"  notes.txt  \n\n", []board.ExternalRef{"notes.txt"}},
		{"my file.txt", []board.ExternalRef{"my file.txt"}},
		{`'/a/b c.png' /d.png`, []board.ExternalRef{"/a/b c.png", "/d.png"}},
		{`/tmp/a\ b.png`, []board.ExternalRef{"/tmp/a b.png"}},
		{"file:///tmp/x%20y.png", []board.ExternalRef{"/tmp/x y.png"}},
		{"~/pics/cat.jpg", []board.ExternalRef{board.ExternalRef(filepath.Join(home, "pics/cat.jpg"))}},
		{"/a.png\r\n/b.png", []board.ExternalRef{"/a.png", "/b.png"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := parseDroppedRefs(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseDroppedRefs(%q) = %q, want %q", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseDroppedRefs(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
