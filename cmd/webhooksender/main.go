// Command webhooksender signs and posts provider-shaped test deliveries to a webhookd instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	s := newSender(&http.Client{Timeout: 10 * time.Second}, cfg)
	for {
		result, err := s.send(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "webhook error:", err)
		} else {
			fmt.Printf("Webhook %s status: %d (source %s) %s\n", s.endpoint(), result.Status, result.SourceID, result.Body)
		}
		if cfg.Count > 0 && s.sent >= cfg.Count {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
