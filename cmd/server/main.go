package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/edkuperman/techboard/internal/api"
	"github.com/edkuperman/techboard/internal/config"
	"github.com/edkuperman/techboard/internal/db"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool := db.MustPool(ctx, cfg)
	if err := db.Bootstrap(ctx, pool); err != nil {
		log.Fatal(err)
	}

	h := api.NewHandlers(cfg, pool)
	r := api.NewRouter(h)

	log.Printf("techboard API listening on :%d (env=%s)", cfg.Port, cfg.Env)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
