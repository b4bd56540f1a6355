// Command import-orders pushes a local channel export straight into
// a running server's upload endpoint. Useful for backfills when the
// marketplace integration is down.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/internal/spreadsheet"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Warranty server base URL")
	channel := flag.String("channel", string(entity.ChannelShopee), "Sales channel of the export")
	file := flag.String("file", "", "Path to the CSV export")
	timeout := flag.Duration("timeout", 60*time.Second, "Upload timeout")

	flag.Parse()

	if *file == "" {
		log.Fatal("missing -file")
	}
	if _, err := entity.ParseChannel(*channel); err != nil {
		log.Fatalf("unknown channel %q", *channel)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open export: %v", err)
	}
	defer f.Close()

	// Parse locally first so a malformed file fails fast without
	// touching the server.
	rows, err := spreadsheet.ParseOrders(f)
	if err != nil {
		log.Fatalf("parse export: %v", err)
	}
	log.Printf("parsed %d rows from %s", len(rows), *file)

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		log.Fatalf("rewind export: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	endpoint := fmt.Sprintf("%s/api/upload-orders?channel=%s",
		*serverURL, url.QueryEscape(*channel))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, f)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "text/csv")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("upload failed: status %d: %s", resp.StatusCode, body)
	}

	log.Printf("import finished: %s", body)
}
