package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edkuperman/techboard/internal/config"
	"github.com/edkuperman/techboard/internal/crawler"
	"github.com/edkuperman/techboard/internal/db"
)

// linkscan crawls the websites of the top-ranked companies and records the
// external base domains each one links to, one row per (day, site, domain).
func main() {
	limit := flag.Int("limit", 10, "number of companies to scan")
	flag.Parse()

	cfg := config.Load()

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool := db.MustPool(startCtx, cfg)
	if err := db.Bootstrap(startCtx, pool); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()
	defer pool.Close()

	ctx := context.Background()
	companies := db.NewCompanyRepo(pool)
	links := db.NewLinkRepo(pool)
	c := crawler.New()

	scanID := uuid.NewString()[:8]
	today := time.Now()

	targets, err := companies.ListWithWebsites(ctx, *limit)
	if err != nil {
		log.Fatalf("[scan %s] list companies: %v", scanID, err)
	}
	if len(targets) == 0 {
		log.Printf("[scan %s] no companies with websites found", scanID)
		return
	}

	var processed, inserted int
	for _, company := range targets {
		website := *company.Website
		if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
			website = "https://" + website
		}

		domains, err := c.ExternalDomains(ctx, website)
		if err != nil {
			log.Printf("[scan %s] crawl %s: %v", scanID, website, err)
			continue
		}

		for _, domain := range domains {
			exists, err := links.Exists(ctx, today, website, domain)
			if err != nil {
				log.Printf("[scan %s] check link %s -> %s: %v", scanID, website, domain, err)
				continue
			}
			if exists {
				continue
			}
			if err := links.Insert(ctx, today, website, domain); err != nil {
				log.Printf("[scan %s] insert link %s -> %s: %v", scanID, website, domain, err)
				continue
			}
			inserted++
		}
		processed++
		log.Printf("[scan %s] %s: %d external domains", scanID, website, len(domains))
	}

	log.Printf("[scan %s] done: %d companies processed, %d links inserted",
		scanID, processed, inserted)
}
