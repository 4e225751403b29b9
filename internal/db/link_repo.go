package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Link records that linkingURL referenced an external base domain on a
// given scan date.
type Link struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	LinkingURL string    `json:"linking_url"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

type LinkRepo struct{ DB *pgxpool.Pool }

func NewLinkRepo(pool *pgxpool.Pool) *LinkRepo { return &LinkRepo{DB: pool} }

// Exists reports whether the (date, linkingURL, url) triple is already
// recorded, so daily re-scans do not duplicate rows.
func (r *LinkRepo) Exists(ctx context.Context, date time.Time, linkingURL, url string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM links WHERE date = $1 AND linking_url = $2 AND url = $3
		);
	`, date, linkingURL, url).Scan(&exists)
	return exists, err
}

func (r *LinkRepo) Insert(ctx context.Context, date time.Time, linkingURL, url string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO links(date, linking_url, url)
		VALUES($1, $2, $3);
	`, date, linkingURL, url)
	return err
}

// List returns up to limit links, newest first.
func (r *LinkRepo) List(ctx context.Context, limit int) ([]Link, error) {
	if limit <= 0 || limit > listCap {
		limit = listCap
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, date, linking_url, url, created_at
		  FROM links
		 ORDER BY id DESC
		 LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.Date, &l.LinkingURL, &l.URL, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
