// Package importer loads the company directory from a CSV export. Field
// parsing is deliberately lenient: blank or malformed values become NULL
// and a bad row is counted, not fatal.
package importer

import (
	"context"
	"encoding/csv"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/edkuperman/techboard/internal/db"
)

type CompanyStore interface {
	Insert(ctx context.Context, c db.Company) (int64, error)
	Truncate(ctx context.Context) error
}

type Summary struct {
	Inserted int
	Errors   int
}

// Import truncates the companies table and loads rows from r. The CSV must
// carry a header row with the export's column names.
func Import(ctx context.Context, store CompanyStore, r io.Reader) (Summary, error) {
	var sum Summary

	if err := store.Truncate(ctx); err != nil {
		return sum, err
	}

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return sum, err
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			sum.Errors++
			continue
		}

		c := db.Company{
			OrganizationName:      optString(field(row, "Organization Name")),
			Website:               optString(field(row, "Website")),
			Industries:            optString(field(row, "Industries")),
			HeadquartersLocation:  optString(field(row, "Headquarters Location")),
			CBRank:                ParseInteger(field(row, "CB Rank (Company)")),
			FoundedDate:           ParseDate(field(row, "Founded Date")),
			Description:           optString(field(row, "Description")),
			TotalFundingAmountUSD: ParseNumber(field(row, "Total Funding Amount (in USD)")),
		}

		if _, err := store.Insert(ctx, c); err != nil {
			sum.Errors++
			continue
		}
		sum.Inserted++
		if sum.Inserted%100 == 0 {
			log.Printf("imported %d companies...", sum.Inserted)
		}
	}

	return sum, nil
}

// ParseDate accepts YYYY-MM-DD; anything else is nil.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// ParseNumber accepts numbers with optional comma grouping ("1,250,000").
func ParseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &f
}

func ParseInteger(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
