package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is a user-submitted title/content record. Entries are immutable
// once created.
type Entry struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const maxTitleLen = 255

// listCap is the hard ceiling on rows returned by List. There is no
// pagination cursor; clients always get the newest slice.
const listCap = 100

type EntryRepo struct{ DB *pgxpool.Pool }

func NewEntryRepo(pool *pgxpool.Pool) *EntryRepo { return &EntryRepo{DB: pool} }

// TestConnection runs a trivial query to confirm the database is reachable.
func (r *EntryRepo) TestConnection(ctx context.Context) error {
	var one int
	return r.DB.QueryRow(ctx, `SELECT 1;`).Scan(&one)
}

// List returns up to limit entries, newest first. limit is clamped to 100.
func (r *EntryRepo) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > listCap {
		limit = listCap
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, title, content, created_at
		  FROM entries
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Content, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserts a new entry and returns it with the generated id and
// server-assigned timestamp. Title and content are both required.
func (r *EntryRepo) Create(ctx context.Context, title, content string) (*Entry, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if len(title) > maxTitleLen {
		return nil, fmt.Errorf("%w: title exceeds %d characters", ErrValidation, maxTitleLen)
	}

	e := Entry{Title: title, Content: content}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO entries(title, content)
		VALUES($1, $2)
		RETURNING id, created_at;
	`, title, content).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get looks up a single entry by id.
func (r *EntryRepo) Get(ctx context.Context, id int64) (*Entry, error) {
	var e Entry
	err := r.DB.QueryRow(ctx, `
		SELECT id, title, content, created_at
		  FROM entries
		 WHERE id = $1;
	`, id).Scan(&e.ID, &e.Title, &e.Content, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: entry %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
