// Package library persists extracted book records in a SQLite catalog and
// orchestrates bulk imports. The catalog treats the content checksum as a
// book's natural key: two files with the same bytes are the same book, no
// matter where they live or what they are called.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/skaarfundgandr/Stellaron/internal/extract"
)

// ErrDuplicateContent is returned when a book's checksum already exists in
// the catalog
var ErrDuplicateContent = errors.New("book with this checksum already exists")

// Store is a SQLite-backed book catalog
type Store struct {
	db *sql.DB
}

// Book is one catalog row with its linked names. Empty PublishedDate or
// ISBN means the book never declared one.
type Book struct {
	ID            int64
	Title         string
	Authors       []string
	Publishers    []string
	PublishedDate string
	ISBN          string
	FileType      string
	FilePath      string
	HasCover      bool
	Checksum      string
	AddedAt       string
}

// OpenStore opens (creating if needed) the catalog at path
func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog path is empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create catalog dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply pragma: %w", err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS books (
	book_id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	published_date TEXT,
	isbn TEXT,
	file_type TEXT,
	file_path TEXT,
	has_cover INTEGER NOT NULL DEFAULT 0,
	checksum TEXT NOT NULL UNIQUE,
	added_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS authors (
	author_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS book_authors (
	book_id INTEGER NOT NULL,
	author_id INTEGER NOT NULL,
	PRIMARY KEY(book_id, author_id),
	FOREIGN KEY(book_id) REFERENCES books(book_id),
	FOREIGN KEY(author_id) REFERENCES authors(author_id)
);

CREATE TABLE IF NOT EXISTS publishers (
	publisher_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS book_publishers (
	book_id INTEGER NOT NULL,
	publisher_id INTEGER NOT NULL,
	PRIMARY KEY(book_id, publisher_id),
	FOREIGN KEY(book_id) REFERENCES books(book_id),
	FOREIGN KEY(publisher_id) REFERENCES publishers(publisher_id)
);

CREATE INDEX IF NOT EXISTS idx_books_checksum ON books(checksum);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}

// HasChecksum reports whether a book with the given checksum is cataloged
func (s *Store) HasChecksum(ctx context.Context, sum string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM books WHERE checksum = ? LIMIT 1`, sum).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check checksum: %w", err)
	}
	return true, nil
}

// AddBook catalogs an extracted metadata record, linking authors and
// publishers through find-or-create. A checksum collision yields
// ErrDuplicateContent and leaves the catalog untouched.
func (s *Store) AddBook(ctx context.Context, meta *extract.BookMetadata) (int64, error) {
	exists, err := s.HasChecksum(ctx, meta.Checksum)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateContent, meta.Checksum)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO books (title, published_date, isbn, file_type, file_path, has_cover, checksum)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, meta.Title, meta.PublishedDate, meta.ISBN, "epub", meta.FilePath, meta.HasCover(), meta.Checksum)
	if err != nil {
		// Concurrent importers can race past the existence check; the
		// UNIQUE constraint is the arbiter
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateContent, meta.Checksum)
		}
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}

	bookID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new book id: %w", err)
	}

	for _, name := range meta.Authors {
		authorID, err := findOrCreateName(ctx, tx, "authors", "author_id", name)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO book_authors (book_id, author_id) VALUES (?, ?)
`, bookID, authorID); err != nil {
			return 0, fmt.Errorf("failed to link author: %w", err)
		}
	}

	for _, name := range meta.Publishers {
		publisherID, err := findOrCreateName(ctx, tx, "publishers", "publisher_id", name)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO book_publishers (book_id, publisher_id) VALUES (?, ?)
`, bookID, publisherID); err != nil {
			return 0, fmt.Errorf("failed to link publisher: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit book: %w", err)
	}
	return bookID, nil
}

// findOrCreateName resolves a row id in a (id, name UNIQUE) table,
// inserting the name when it is new. table and idCol are fixed strings
// from the callers, never user input.
func findOrCreateName(ctx context.Context, tx *sql.Tx, table, idCol, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO `+table+` (name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT `+idCol+` FROM `+table+` WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up %s row: %w", table, err)
	}
	return id, nil
}

// GetBook returns one catalog row by id, or an error when it is absent
func (s *Store) GetBook(ctx context.Context, id int64) (*Book, error) {
	b := Book{ID: id}
	var published, isbn, fileType, filePath sql.NullString
	err := s.db.QueryRowContext(ctx, `
SELECT title, published_date, isbn, file_type, file_path, has_cover, checksum, added_at
FROM books WHERE book_id = ?
`, id).Scan(&b.Title, &published, &isbn, &fileType, &filePath, &b.HasCover, &b.Checksum, &b.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book %d: %w", id, err)
	}
	b.PublishedDate = published.String
	b.ISBN = isbn.String
	b.FileType = fileType.String
	b.FilePath = filePath.String

	if b.Authors, err = s.namesFor(ctx, id, "authors", "author_id", "book_authors"); err != nil {
		return nil, err
	}
	if b.Publishers, err = s.namesFor(ctx, id, "publishers", "publisher_id", "book_publishers"); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBooks returns the whole catalog in insertion order
func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT book_id, title, published_date, isbn, file_type, file_path, has_cover, checksum, added_at
FROM books ORDER BY book_id
`)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		var published, isbn, fileType, filePath sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &published, &isbn, &fileType, &filePath, &b.HasCover, &b.Checksum, &b.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		b.PublishedDate = published.String
		b.ISBN = isbn.String
		b.FileType = fileType.String
		b.FilePath = filePath.String
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read book rows: %w", err)
	}

	for i := range books {
		if books[i].Authors, err = s.namesFor(ctx, books[i].ID, "authors", "author_id", "book_authors"); err != nil {
			return nil, err
		}
		if books[i].Publishers, err = s.namesFor(ctx, books[i].ID, "publishers", "publisher_id", "book_publishers"); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// namesFor loads the linked names for one book. Ordering by the link
// table's rowid reproduces insertion order, which tracks the declaration
// order of the original record.
func (s *Store) namesFor(ctx context.Context, bookID int64, table, idCol, linkTable string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT t.name FROM `+table+` t
JOIN `+linkTable+` l ON l.`+idCol+` = t.`+idCol+`
WHERE l.book_id = ? ORDER BY l.rowid
`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", table, err)
	}
	return names, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver exposes no typed error for this, so the message is
// the contract.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
