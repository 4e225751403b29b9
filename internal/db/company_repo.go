package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Company is one row of the imported directory. Optional CSV columns map
// to pointer fields so blanks stay NULL.
type Company struct {
	ID                    int64      `json:"id"`
	OrganizationName      *string    `json:"organization_name"`
	Website               *string    `json:"website"`
	Industries            *string    `json:"industries"`
	HeadquartersLocation  *string    `json:"headquarters_location"`
	CBRank                *int       `json:"cb_rank_company"`
	FoundedDate           *time.Time `json:"founded_date"`
	Description           *string    `json:"description"`
	TotalFundingAmountUSD *float64   `json:"total_funding_amount_usd"`
}

type CompanyRepo struct{ DB *pgxpool.Pool }

func NewCompanyRepo(pool *pgxpool.Pool) *CompanyRepo { return &CompanyRepo{DB: pool} }

func (r *CompanyRepo) Insert(ctx context.Context, c Company) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO companies(
			organization_name, website, industries, headquarters_location,
			cb_rank_company, founded_date, description, total_funding_amount_usd
		)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id;
	`, c.OrganizationName, c.Website, c.Industries, c.HeadquartersLocation,
		c.CBRank, c.FoundedDate, c.Description, c.TotalFundingAmountUSD).Scan(&id)
	return id, err
}

// Truncate clears the table before a fresh import.
func (r *CompanyRepo) Truncate(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `TRUNCATE TABLE companies RESTART IDENTITY;`)
	return err
}

func (r *CompanyRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM companies;`).Scan(&n)
	return n, err
}

// ListWithWebsites returns the top-ranked companies that have a website,
// the input set for the link scanner.
func (r *CompanyRepo) ListWithWebsites(ctx context.Context, limit int) ([]Company, error) {
	if limit <= 0 || limit > listCap {
		limit = listCap
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, organization_name, website, industries, headquarters_location,
		       cb_rank_company, founded_date, description, total_funding_amount_usd
		  FROM companies
		 WHERE website IS NOT NULL AND website != ''
		 ORDER BY cb_rank_company ASC NULLS LAST
		 LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(
			&c.ID, &c.OrganizationName, &c.Website, &c.Industries, &c.HeadquartersLocation,
			&c.CBRank, &c.FoundedDate, &c.Description, &c.TotalFundingAmountUSD,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
