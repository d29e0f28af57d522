// Command seeder loads a demo roster and a simulated basho through the ingest API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

type rikishi struct {
	ID        string  `json:"id"`
	Shikona   string  `json:"shikona"`
	Rank      string  `json:"rank"`
	Stable    string  `json:"stable"`
	Height    float64 `json:"height"`
	Weight    float64 `json:"weight"`
	DebutDate string  `json:"debut_date"`
	IsActive  bool    `json:"is_active"`
}

type bout struct {
	WinnerID   string `json:"winner_id"`
	LoserID    string `json:"loser_id"`
	Tournament string `json:"tournament"`
	Day        int    `json:"day"`
	Kimarite   string `json:"kimarite"`
	Timestamp  int64  `json:"timestamp"`
}

var roster = []rikishi{
	{"hoshoryu", "Hoshoryu", "横綱", "Tatsunami", 188, 150, "2017-01-08T00:00:00Z", true},
	{"onosato", "Onosato", "大関", "Nishonoseki", 192, 191, "2023-05-14T00:00:00Z", true},
	{"kotozakura", "Kotozakura", "大関", "Sadogatake", 189, 178, "2015-11-08T00:00:00Z", true},
	{"kirishima", "Kirishima", "関脇", "Otowayama", 186, 148, "2015-05-10T00:00:00Z", true},
	{"daieisho", "Daieisho", "関脇", "Oitekaze", 182, 160, "2012-01-08T00:00:00Z", true},
	{"wakatakakage", "Wakatakakage", "小結", "Arashio", 182, 140, "2017-03-12T00:00:00Z", true},
	{"abi", "Abi", "小結", "Shikoroyama", 187, 164, "2013-05-12T00:00:00Z", true},
	{"takayasu", "Takayasu", "前頭1", "Tagonoura", 187, 176, "2005-03-13T00:00:00Z", true},
	{"tobizaru", "Tobizaru", "前頭3", "Oitekaze", 175, 134, "2015-01-11T00:00:00Z", true},
	{"ura", "Ura", "前頭5", "Kise", 175, 138, "2015-03-08T00:00:00Z", true},
	{"tamawashi", "Tamawashi", "前頭9", "Kataonami", 189, 173, "2004-01-11T00:00:00Z", true},
	{"shonannoumi", "Shonannoumi", "十両2", "Takadagawa", 193, 170, "2016-05-08T00:00:00Z", true},
}

var kimarite = []string{"yorikiri", "oshidashi", "hatakikomi", "uwatenage", "tsukiotoshi", "yoritaoshi", "hikiotoshi"}

func main() {
	apiURL := flag.String("api", "http://localhost:8080/api/v1", "API base URL")
	token := flag.String("token", os.Getenv("INGEST_TOKEN"), "ingest token")
	tournament := flag.String("tournament", "2025.05", "tournament id to simulate")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	log := logger.Sugar()

	if *token == "" {
		log.Fatal("ingest token required (-token or INGEST_TOKEN)")
	}

	client := &http.Client{Timeout: 10 * time.Second}

	if err := post(client, *apiURL+"/ingest/rikishi", *token, roster, log); err != nil {
		log.Fatalw("Seeding rikishi failed", "error", err)
	}

	bouts := simulateBasho(*tournament, rand.New(rand.NewPCG(*seed, *seed)))
	if err := post(client, *apiURL+"/ingest/matches", *token, bouts, log); err != nil {
		log.Fatalw("Seeding matches failed", "error", err)
	}

	log.Infow("Seed complete", "rikishi", len(roster), "bouts", len(bouts))
}

// simulateBasho pairs the roster each day and picks winners weighted towards
// the higher-listed rikishi.
func simulateBasho(tournament string, rng *rand.Rand) []bout {
	start := time.Date(2025, 5, 11, 15, 0, 0, 0, time.UTC)
	var bouts []bout

	for day := 1; day <= 15; day++ {
		order := rng.Perm(len(roster))
		for i := 0; i+1 < len(order); i += 2 {
			a, b := order[i], order[i+1]
			if b < a {
				a, b = b, a
			}
			// a is higher on the banzuke
			winner, loser := roster[a], roster[b]
			if rng.Float64() > 0.6 {
				winner, loser = loser, winner
			}
			bouts = append(bouts, bout{
				WinnerID:   winner.ID,
				LoserID:    loser.ID,
				Tournament: tournament,
				Day:        day,
				Kimarite:   kimarite[rng.IntN(len(kimarite))],
				Timestamp:  start.AddDate(0, 0, day-1).Add(time.Duration(i) * 4 * time.Minute).Unix(),
			})
		}
	}
	return bouts
}

func post(client *http.Client, url, token string, payload interface{}, log *zap.SugaredLogger) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Ingest-Token", token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s: %s", url, resp.Status, respBody)
	}
	log.Infow("Posted", "url", url, "status", resp.Status, "response", string(respBody))
	return nil
}
