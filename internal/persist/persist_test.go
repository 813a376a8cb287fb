package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pinboard/internal/board"
	"pinboard/internal/geom"
	"pinboard/internal/viewport"
)

func sampleBoard(t *testing.T) *board.Board {
	t.Helper()
	b := board.New()
	if _, err := b.AddCategory(0, "Refs", geom.R(0, 0, 200, 300), board.Palette[1]); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddCategory(3, "Done", geom.R(400, 0, 250, 200), board.RGBA{R: 0.1, G: 0.2, B: 0.3, A: 0.5}); err != nil {
		t.Fatal(err)
	}
	b.AddObject("/a/photo.png", "photo", geom.R(20, 20, 90, 50))
	b.AddObject("/a/notes.txt", "notes", geom.R(420, 40, 80, 50))
	b.AddObject("/a/loose.wav", "loose", geom.R(900, 900, 80, 50))
	b.RecomputeMembership()
	return b
}

func assertSameBoard(t *testing.T, want, got *board.Board) {
	t.Helper()
	wc, gc := want.Categories(), got.Categories()
	if len(wc) != len(gc) {
		t.Fatalf("categories = %d, want %d", len(gc), len(wc))
	}
	for i := range wc {
		if wc[i].ID() != gc[i].ID() || wc[i].Title() != gc[i].Title() ||
			wc[i].Bounds() != gc[i].Bounds() || wc[i].Color() != gc[i].Color() {
			t.Errorf("category %d = %+v, want %+v", i, gc[i], wc[i])
		}
	}
	wo, gob := want.Objects(), got.Objects()
	if len(wo) != len(gob) {
		t.Fatalf("objects = %d, want %d", len(gob), len(wo))
	}
	for i := range wo {
		if wo[i].Ref() != gob[i].Ref() || wo[i].Title() != gob[i].Title() || wo[i].Bounds() != gob[i].Bounds() {
			t.Errorf("object %d = %+v, want %+v", i, gob[i], wo[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"board.yaml", "board.db"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), name)
			want := sampleBoard(t)
			v := viewport.New()
			v.SetZoom(1.5)
			v.SetOrigin(geom.V(-40, 12))

			if err := Save(ctx, path, Snapshot(want, v)); err != nil {
				t.Fatalf("Save: %v", err)
			}
			f, err := Load(ctx, path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			got, err := f.Board()
			if err != nil {
				t.Fatalf("Board: %v", err)
			}
			assertSameBoard(t, want, got)

			objs := got.Objects()
			if id, ok := objs[0].CategoryID(); !ok || id != 0 {
				t.Errorf("photo category = %d,%v", id, ok)
			}
			if id, ok := objs[1].CategoryID(); !ok || id != 3 {
				t.Errorf("notes category = %d,%v", id, ok)
			}
			if _, ok := objs[2].CategoryID(); ok {
				t.Error("loose object should be uncategorized")
			}

			nv := viewport.New()
			f.ApplyView(nv)
			if nv.Zoom() != 1.5 || nv.Origin() != geom.V(-40, 12) {
				t.Errorf("view = %v %v", nv.Zoom(), nv.Origin())
			}
		})
	}
}

func TestSQLiteOverwrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.sqlite")
	if err := Save(ctx, path, Snapshot(sampleBoard(t), nil)); err != nil {
		t.Fatal(err)
	}
	small := board.New()
	small.CreateCategory(geom.V(0, 0))
	if err := Save(ctx, path, Snapshot(small, nil)); err != nil {
		t.Fatal(err)
	}
	f, err := Load(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Categories) != 1 || len(f.Objects) != 0 || f.View != nil {
		t.Fatalf("file = %+v", f)
	}
}

func TestLoadInvalidPath(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, path := range []string{"", filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.db")} {
		if _, err := Load(ctx, path); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Load(%q) = %v, want ErrInvalidPath", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.db")); !errors.Is(err, os.ErrNotExist) {
		t.Error("loading a missing sqlite file created it")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("categories: [::"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(context.Background(), path)
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Path != path {
		t.Fatalf("err = %v, want FormatError", err)
	}
}

func TestBoardRejectsNewerVersion(t *testing.T) {
	f := &File{Version: Version + 1}
	if _, err := f.Board(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v", err)
	}
}

func TestBoardRejectsDuplicateIDs(t *testing.T) {
	f := &File{Version: Version, Categories: []CategoryRecord{
		{ID: 1, Title: "a", Rect: RectRecord{W: 100, H: 100}},
		{ID: 1, Title: "b", Rect: RectRecord{W: 100, H: 100}},
	}}
	if _, err := f.Board(); err == nil {
		t.Fatal("expected error")
	}
}

func TestApplyViewWithoutRecordResets(t *testing.T) {
	v := viewport.New()
	v.SetZoom(2)
	v.SetOrigin(geom.V(5, 5))
	(&File{}).ApplyView(v)
	if v.Zoom() != 1 || !v.Origin().IsZero() {
		t.Fatalf("view = %v %v", v.Zoom(), v.Origin())
	}
}

func TestDocumentQuickSave(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(nil)
	b := sampleBoard(t)

	if err := doc.QuickSave(ctx, b, nil); !errors.Is(err, ErrNoPriorSave) {
		t.Fatalf("QuickSave = %v, want ErrNoPriorSave", err)
	}
	if doc.Name() != "untitled" {
		t.Fatalf("name = %q", doc.Name())
	}

	path := filepath.Join(t.TempDir(), "moodboard.yaml")
	if err := doc.SaveAs(ctx, path, b, nil); err != nil {
		t.Fatal(err)
	}
	if doc.Path() != path || doc.Name() != "moodboard" {
		t.Fatalf("path %q name %q", doc.Path(), doc.Name())
	}

	b.CreateCategory(geom.V(1000, 1000))
	if err := doc.QuickSave(ctx, b, nil); err != nil {
		t.Fatal(err)
	}
	got, _, err := doc.Reload(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assertSameBoard(t, b, got)
}

func TestDocumentOpenFailureKeepsPath(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(nil)
	path := filepath.Join(t.TempDir(), "a.yaml")
	if err := doc.SaveAs(ctx, path, board.New(), nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := doc.Open(ctx, filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("Open = %v", err)
	}
	if _, _, err := doc.Open(ctx, ""); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("Open(\"\") = %v", err)
	}
	if doc.Path() != path {
		t.Fatalf("path changed to %q", doc.Path())
	}
}
