package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CronRecord marks one execution of the scheduled maintenance task.
type CronRecord struct {
	ID             int64     `json:"id"`
	SequenceNumber int       `json:"sequence_number"`
	RunTimestamp   time.Time `json:"run_timestamp"`
}

type CronRepo struct{ DB *pgxpool.Pool }

func NewCronRepo(pool *pgxpool.Pool) *CronRepo { return &CronRepo{DB: pool} }

// AppendRun inserts one execution record with sequence_number = count + 1.
// The count-then-insert is intentionally not wrapped in a transaction: the
// task runs once per schedule tick, and concurrent manual triggers may
// produce duplicate or skipped sequence numbers. Accepted, not a guarantee.
func (r *CronRepo) AppendRun(ctx context.Context) (*CronRecord, error) {
	count, err := r.CountRuns(ctx)
	if err != nil {
		return nil, err
	}

	rec := CronRecord{SequenceNumber: count + 1}
	err = r.DB.QueryRow(ctx, `
		INSERT INTO test_db(sequence_number, run_timestamp)
		VALUES($1, $2)
		RETURNING id, sequence_number, run_timestamp;
	`, rec.SequenceNumber, time.Now()).Scan(&rec.ID, &rec.SequenceNumber, &rec.RunTimestamp)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountRuns returns the number of recorded executions.
func (r *CronRepo) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM test_db;`).Scan(&n)
	return n, err
}

// ListRuns returns up to limit records, newest first.
func (r *CronRepo) ListRuns(ctx context.Context, limit int) ([]CronRecord, error) {
	if limit <= 0 || limit > listCap {
		limit = listCap
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, sequence_number, run_timestamp
		  FROM test_db
		 ORDER BY id DESC
		 LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CronRecord
	for rows.Next() {
		var rec CronRecord
		if err := rows.Scan(&rec.ID, &rec.SequenceNumber, &rec.RunTimestamp); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
