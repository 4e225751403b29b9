package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/edkuperman/techboard/internal/config"
	"github.com/edkuperman/techboard/internal/db"
	"github.com/edkuperman/techboard/internal/task"
)

func main() {
	daemon := flag.Bool("daemon", false, "run on CRON_SCHEDULE instead of once")
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

	runner := task.NewRunner(db.NewCronRepo(pool))

	if !*daemon {
		// One-shot mode for external schedulers: the exit code tells the
		// invoker whether the run succeeded.
		res := runner.Run(context.Background())
		pool.Close()
		if !res.Success {
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc(cfg.CronSchedule, func() {
		runner.Run(context.Background())
	}); err != nil {
		log.Fatalf("invalid CRON_SCHEDULE %q: %v", cfg.CronSchedule, err)
	}

	log.Printf("cron daemon started (schedule=%s)", cfg.CronSchedule)
	c.Start()

	<-ctx.Done()
	log.Println("cron daemon shutting down...")
	<-c.Stop().Done()
}
