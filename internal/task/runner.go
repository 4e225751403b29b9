// Package task holds the scheduled maintenance job. The same Run body is
// invoked by cmd/cron (one-shot or on a cron schedule) and by the manual
// HTTP trigger, so it must never crash the hosting process: every failure
// is collected into the Result instead of propagating.
package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/edkuperman/techboard/internal/db"
)

// CronStore is the slice of the cron repository the runner needs.
type CronStore interface {
	AppendRun(ctx context.Context) (*db.CronRecord, error)
	CountRuns(ctx context.Context) (int, error)
}

// Result reports one execution of the maintenance task.
type Result struct {
	Success        bool      `json:"success"`
	Timestamp      time.Time `json:"timestamp"`
	SequenceNumber int       `json:"sequence_number"`
	EntryID        int64     `json:"entry_id,omitempty"`
	TotalEntries   int       `json:"total_entries"`
	Errors         []string  `json:"errors,omitempty"`
}

type Runner struct {
	Cron CronStore
}

func NewRunner(cron CronStore) *Runner { return &Runner{Cron: cron} }

// Run appends one execution record and reports the outcome. Full error
// detail goes to the log; callers decide how much of the Result to expose.
func (r *Runner) Run(ctx context.Context) Result {
	runID := uuid.NewString()[:8]
	res := Result{Timestamp: time.Now()}

	log.Printf("[cron %s] job started", runID)

	rec, err := r.Cron.AppendRun(ctx)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("append run: %v", err))
		log.Printf("[cron %s] ERROR: append run: %v", runID, err)
		return res
	}
	res.SequenceNumber = rec.SequenceNumber
	res.EntryID = rec.ID
	log.Printf("[cron %s] added entry #%d to test_db (id=%d)", runID, rec.SequenceNumber, rec.ID)

	total, err := r.Cron.CountRuns(ctx)
	if err != nil {
		// Reporting only; the insert already succeeded.
		res.Errors = append(res.Errors, fmt.Sprintf("count runs: %v", err))
		log.Printf("[cron %s] ERROR: count runs: %v", runID, err)
	} else {
		res.TotalEntries = total
	}

	res.Success = len(res.Errors) == 0
	if res.Success {
		log.Printf("[cron %s] job completed, total entries=%d", runID, res.TotalEntries)
	} else {
		log.Printf("[cron %s] job completed with errors: %v", runID, res.Errors)
	}
	return res
}
