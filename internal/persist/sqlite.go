package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps a board in a single SQLite database file.
type SQLiteStore struct{}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		seq INTEGER PRIMARY KEY,
		id INTEGER NOT NULL UNIQUE,
		title TEXT NOT NULL,
		r REAL NOT NULL, g REAL NOT NULL, b REAL NOT NULL, a REAL NOT NULL,
		x REAL NOT NULL, y REAL NOT NULL, w REAL NOT NULL, h REAL NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS objects (
		seq INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		ref TEXT NOT NULL,
		x REAL NOT NULL, y REAL NOT NULL, w REAL NOT NULL, h REAL NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS view (
		k INTEGER PRIMARY KEY CHECK (k = 0),
		zoom REAL NOT NULL,
		origin_x REAL NOT NULL,
		origin_y REAL NOT NULL
	);`,
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (SQLiteStore) Load(ctx context.Context, path string) (*File, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	// sql.Open would create a missing file.
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("persist: %s: %w", path, ErrInvalidPath)
	}
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	defer db.Close()

	f, err := readSQLite(ctx, db)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, &FormatError{Path: path, Err: err}
	}
	return f, nil
}

func readSQLite(ctx context.Context, db *sql.DB) (*File, error) {
	f := &File{}

	var version string
	if err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = 'version'`).Scan(&version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	v, err := strconv.Atoi(version)
	if err != nil {
		return nil, fmt.Errorf("version %q: %w", version, ErrUnsupportedFormat)
	}
	f.Version = v

	rows, err := db.QueryContext(ctx, `SELECT id, title, r, g, b, a, x, y, w, h FROM categories ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c CategoryRecord
		if err := rows.Scan(&c.ID, &c.Title,
			&c.Color.R, &c.Color.G, &c.Color.B, &c.Color.A,
			&c.Rect.X, &c.Rect.Y, &c.Rect.W, &c.Rect.H); err != nil {
			rows.Close()
			return nil, err
		}
		f.Categories = append(f.Categories, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, `SELECT title, ref, x, y, w, h FROM objects ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var o ObjectRecord
		if err := rows.Scan(&o.Title, &o.Ref, &o.Rect.X, &o.Rect.Y, &o.Rect.W, &o.Rect.H); err != nil {
			rows.Close()
			return nil, err
		}
		f.Objects = append(f.Objects, o)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	var view ViewRecord
	err = db.QueryRowContext(ctx, `SELECT zoom, origin_x, origin_y FROM view WHERE k = 0`).
		Scan(&view.Zoom, &view.OriginX, &view.OriginY)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		f.View = &view
	}
	return f, nil
}

// Save replaces the whole contents of the database in one transaction.
func (SQLiteStore) Save(ctx context.Context, path string, f *File) error {
	if path == "" {
		return ErrInvalidPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("persist: mkdir: %w", err)
	}
	db, err := openSQLite(ctx, path)
	if err != nil {
		return fmt.Errorf("persist: open %s: %w", path, err)
	}
	defer db.Close()

	for _, st := range sqliteSchema {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("persist: migrate %s: %w", path, err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist: begin: %w", err)
	}
	if err := writeSQLite(ctx, tx, f); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("persist: write %s: %w", path, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("persist: commit %s: %w", path, err)
	}
	return nil
}

func writeSQLite(ctx context.Context, tx *sql.Tx, f *File) error {
	for _, table := range []string{"categories", "objects", "view"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (k, v) VALUES ('version', ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		strconv.Itoa(Version)); err != nil {
		return err
	}
	for i, c := range f.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (seq, id, title, r, g, b, a, x, y, w, h) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, c.ID, c.Title, c.Color.R, c.Color.G, c.Color.B, c.Color.A,
			c.Rect.X, c.Rect.Y, c.Rect.W, c.Rect.H); err != nil {
			return err
		}
	}
	for i, o := range f.Objects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO objects (seq, title, ref, x, y, w, h) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, o.Title, o.Ref, o.Rect.X, o.Rect.Y, o.Rect.W, o.Rect.H); err != nil {
			return err
		}
	}
	if f.View != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO view (k, zoom, origin_x, origin_y) VALUES (0, ?, ?, ?)`,
			f.View.Zoom, f.View.OriginX, f.View.OriginY); err != nil {
			return err
		}
	}
	return nil
}
