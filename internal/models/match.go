package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchResult is one bout as ingested into the match history store.
// Rows are immutable once written.
type MatchResult struct {
	MatchID    uuid.UUID `json:"match_id"`
	WinnerID   string    `json:"winner_id" validate:"required,nefield=LoserID"`
	LoserID    string    `json:"loser_id" validate:"required"`
	Tournament string    `json:"tournament" validate:"required"`
	Day        int       `json:"day" validate:"min=1,max=15"`
	Kimarite   string    `json:"kimarite,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	Winner *WrestlerSummary `json:"winner,omitempty"`
	Loser  *WrestlerSummary `json:"loser,omitempty"`
}

// MatchIngest is the wire form accepted by the ingestion endpoint.
// Timestamps may arrive as unix seconds or RFC3339 strings.
type MatchIngest struct {
	MatchID    string  `json:"match_id"`
	WinnerID   string  `json:"winner_id" validate:"required,nefield=LoserID"`
	LoserID    string  `json:"loser_id" validate:"required"`
	Tournament string  `json:"tournament" validate:"required"`
	Day        int     `json:"day" validate:"min=1,max=15"`
	Kimarite   string  `json:"kimarite"`
	Timestamp  float64 `json:"timestamp"`
	Time       string  `json:"time"`
}
