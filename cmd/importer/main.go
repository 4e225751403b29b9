package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/edkuperman/techboard/internal/config"
	"github.com/edkuperman/techboard/internal/db"
	"github.com/edkuperman/techboard/internal/importer"
)

func main() {
	path := flag.String("csv", "companies.csv", "path to the company CSV export")
	flag.Parse()

	cfg := config.Load()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool := db.MustPool(startCtx, cfg)
	if err := db.Bootstrap(startCtx, pool); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()
	defer pool.Close()

	ctx := context.Background()
	repo := db.NewCompanyRepo(pool)

	sum, err := importer.Import(ctx, repo, f)
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("count: %v", err)
	}
	log.Printf("import completed: %d inserted, %d errors, %d total companies",
		sum.Inserted, sum.Errors, total)
}
