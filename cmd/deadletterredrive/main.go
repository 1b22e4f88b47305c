// Command deadletterredrive republishes stored dead letters to the CloudEvents sink.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/webhookd/internal/adapters/sqlite"
	"github.com/fr0stylo/webhookd/internal/config"
	"github.com/fr0stylo/webhookd/internal/db"
	"github.com/fr0stylo/webhookd/internal/notify"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbPath := flag.String("db", cfg.Database.Path, "database path without .sqlite suffix")
	sink := flag.String("sink", cfg.DeadLetter.SinkURL, "CloudEvents sink URL")
	kind := flag.String("kind", kindAll, "dead letters to redrive: webhook, sync or all")
	provider := flag.String("provider", "", "only redrive dead letters for this provider")
	limit := flag.Int("limit", 500, "maximum dead letters per kind")
	dryRun := flag.Bool("dry-run", false, "list dead letters without publishing")
	flag.Parse()

	opts := redriveOptions{
		Kind:     strings.ToLower(strings.TrimSpace(*kind)),
		Provider: strings.ToLower(strings.TrimSpace(*provider)),
		Limit:    *limit,
		DryRun:   *dryRun,
	}
	if err := opts.validate(); err != nil {
		log.Fatal(err)
	}

	database, err := db.New(strings.TrimSpace(*dbPath))
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	var publisher deadLetterPublisher = dryRunPublisher{}
	if !opts.DryRun {
		n, err := notify.New(notify.Options{SinkURL: *sink, Source: "webhookd/redrive"})
		if err != nil {
			log.Fatalf("create notifier: %v", err)
		}
		publisher = n
	}

	summary, err := redrive(ctx, sqlite.NewWebhookStore(database), sqlite.NewSyncStore(database), publisher, opts)
	if err != nil {
		log.Fatalf("redrive: %v", err)
	}

	mode := "published"
	if opts.DryRun {
		mode = "listed"
	}
	fmt.Printf("Redrive complete: %d webhook and %d sync dead letters %s, %d failed\n",
		summary.Webhook, summary.Sync, mode, summary.Failed)
}
