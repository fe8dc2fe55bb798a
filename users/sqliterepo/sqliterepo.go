// Package sqliterepo is a users.Collection persisted in SQLite. Each record is
// a JSON document; id, sub and email are mirrored into indexed columns and the
// password is only ever stored as a bcrypt hash.
package sqliterepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-idp-bridge/internal/errors"
	"github.com/jrsteele09/go-idp-bridge/users"
	_ "modernc.org/sqlite"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var _ users.Collection = (*Repo)(nil)

type Repo struct {
	db      *sql.DB
	slug    string
	table   string
	noEmail bool
}

type Option func(*Repo)

// WithoutEmailField creates the table without an email column, so email
// lookups fail the way they do on a collection that disables local login.
func WithoutEmailField() Option {
	return func(r *Repo) { r.noEmail = true }
}

// Open opens (or creates) the database at path and prepares the collection
// table.
func Open(ctx context.Context, path, slug string, opts ...Option) (*Repo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	r, err := New(ctx, db, slug, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// New prepares the collection table on an existing handle.
func New(ctx context.Context, db *sql.DB, slug string, opts ...Option) (*Repo, error) {
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("invalid collection slug %q: %w", slug, errors.ErrInvalidInput)
	}
	r := &Repo{db: db, slug: slug, table: `"` + slug + `"`}
	for _, opt := range opts {
		opt(r)
	}

	columns := []string{
		"id TEXT PRIMARY KEY",
		"sub TEXT",
		"password_hash TEXT NOT NULL DEFAULT ''",
		"doc TEXT NOT NULL",
	}
	if !r.noEmail {
		columns = append(columns, "email TEXT")
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", r.table, strings.Join(columns, ", ")),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "%s_sub" ON %s (sub)`, slug, r.table),
	}
	if !r.noEmail {
		stmts = append(stmts, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "%s_email" ON %s (email)`, slug, r.table))
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("prepare %s table: %w", slug, err)
		}
	}
	return r, nil
}

// Close closes the SQLite handle.
func (r *Repo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repo) Slug() string {
	return r.slug
}

// Find matches id, sub and email against their columns and any other field
// against the JSON document.
func (r *Repo) Find(ctx context.Context, field string, value any) ([]users.Record, error) {
	var (
		query string
		args  []any
	)
	switch field {
	case users.FieldID, users.FieldSub, users.FieldEmail:
		query = fmt.Sprintf("SELECT id, doc FROM %s WHERE %s = ? ORDER BY id", r.table, field)
		args = []any{fmt.Sprint(value)}
	default:
		query = fmt.Sprintf("SELECT id, doc FROM %s WHERE json_extract(doc, ?) = ? ORDER BY id", r.table)
		args = []any{"$." + `"` + strings.ReplaceAll(field, `"`, "") + `"`, value}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "no such column") {
			return nil, errors.Wrapf(errors.ErrUnknownField, "%s.%s: %v", r.slug, field, err)
		}
		return nil, fmt.Errorf("find %s by %s: %w", r.slug, field, err)
	}
	defer rows.Close()

	found := make([]users.Record, 0)
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.slug, err)
		}
		rec, err := decodeDoc(id, doc)
		if err != nil {
			return nil, err
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find %s by %s: %w", r.slug, field, err)
	}
	return found, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (users.Record, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT doc FROM %s WHERE id = ?", r.table), id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s %s", r.slug, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", r.slug, id, err)
	}
	return decodeDoc(id, doc)
}

// Create inserts data. A plain-text password is hashed and never returned.
func (r *Repo) Create(ctx context.Context, data users.Record) (users.Record, error) {
	doc := data.Clone()
	if doc == nil {
		doc = users.Record{}
	}
	id := doc.ID()
	if id == "" {
		id = uuid.New().String()
	}
	delete(doc, users.FieldID)

	hash, err := takePasswordHash(doc)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", r.slug, err)
	}

	cols := "id, sub, password_hash, doc"
	marks := "?, ?, ?, ?"
	args := []any{id, nullable(doc.String(users.FieldSub)), hash, string(raw)}
	if !r.noEmail {
		cols += ", email"
		marks += ", ?"
		args = append(args, nullable(doc.String(users.FieldEmail)))
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.table, cols, marks), args...); err != nil {
		return nil, fmt.Errorf("insert %s %s: %w", r.slug, id, err)
	}

	doc[users.FieldID] = id
	return doc, nil
}

// Update merges data into the stored document inside a transaction.
func (r *Repo) Update(ctx context.Context, id string, data users.Record) (users.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update %s: %w", r.slug, err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT doc FROM %s WHERE id = ?", r.table), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s %s", r.slug, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", r.slug, id, err)
	}
	doc, err := decodeDoc(id, raw)
	if err != nil {
		return nil, err
	}
	delete(doc, users.FieldID)

	patch := data.Clone()
	delete(patch, users.FieldID)
	hash, err := takePasswordHash(patch)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		doc[k] = v
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", r.slug, err)
	}
	set := "sub = ?, doc = ?"
	args := []any{nullable(doc.String(users.FieldSub)), string(encoded)}
	if hash != "" {
		set += ", password_hash = ?"
		args = append(args, hash)
	}
	if !r.noEmail {
		set += ", email = ?"
		args = append(args, nullable(doc.String(users.FieldEmail)))
	}
	args = append(args, id)
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.table, set), args...); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", r.slug, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update %s %s: %w", r.slug, id, err)
	}

	doc[users.FieldID] = id
	return doc, nil
}

// PasswordHash returns the stored bcrypt hash for id.
func (r *Repo) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT password_hash FROM %s WHERE id = ?", r.table), id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.Wrapf(errors.ErrNotFound, "%s %s", r.slug, id)
	}
	return hash, err
}

func takePasswordHash(doc users.Record) (string, error) {
	password := doc.String(users.FieldPassword)
	delete(doc, users.FieldPassword)
	if password == "" {
		return "", nil
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func decodeDoc(id, raw string) (users.Record, error) {
	rec := users.Record{}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	rec[users.FieldID] = id
	return rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
