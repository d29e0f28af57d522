// Command debug_rikishi prints the ClickHouse aggregates the prediction engine
// reads for one rikishi, or for a pairing when -vs is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/sumo-yosou/predict-api/internal/logic"
)

func main() {
	id := flag.String("id", "hoshoryu", "rikishi id")
	vs := flag.String("vs", "", "opponent id for head-to-head")
	window := flag.Int("window", 10, "recent form window")
	flag.Parse()

	chURL := os.Getenv("CLICKHOUSE_URL")
	if chURL == "" {
		chURL = "clickhouse://localhost:9000/sumo"
	}

	opts, err := clickhouse.ParseDSN(chURL)
	if err != nil {
		log.Fatalf("Failed to parse DSN: %v", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open connection: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	history := logic.NewClickHouseHistory(conn)

	rec, err := history.Record(ctx, *id)
	if err != nil {
		log.Fatalf("Record query failed: %v", err)
	}
	fmt.Printf("%s all-time: %d-%d (%.3f)\n", *id, rec.Wins, rec.Losses, rec.WinRate())

	form, err := history.RecentForm(ctx, *id, *window)
	if err != nil {
		log.Fatalf("Recent form query failed: %v", err)
	}
	fmt.Printf("%s last %d: %d-%d (%.3f)\n", *id, *window, form.Wins, form.Losses, form.WinRate())

	recent, err := history.ListMatches(ctx, *id, 5, 0)
	if err != nil {
		log.Fatalf("Match list query failed: %v", err)
	}
	for _, m := range recent {
		fmt.Printf("  %s day %2d  %s def. %s (%s)\n", m.Tournament, m.Day, m.WinnerID, m.LoserID, m.Kimarite)
	}

	if *vs != "" {
		h2h, err := history.HeadToHead(ctx, *id, *vs)
		if err != nil {
			log.Fatalf("Head-to-head query failed: %v", err)
		}
		fmt.Printf("%s vs %s: %d-%d over %d bouts\n", *id, *vs, h2h.Wins, h2h.Losses, h2h.Total())
	}
}
