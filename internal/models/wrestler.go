package models

import "time"

// Wrestler is a rikishi as stored in the roster table
type Wrestler struct {
	ID        string     `json:"id" validate:"required"`
	Shikona   string     `json:"shikona" validate:"required"`
	Name      string     `json:"name,omitempty"`
	Rank      string     `json:"rank" validate:"required"`
	Stable    string     `json:"stable"`
	Height    float64    `json:"height" validate:"gte=0"` // cm
	Weight    float64    `json:"weight" validate:"gte=0"` // kg
	BirthDate *time.Time `json:"birth_date,omitempty"`
	DebutDate time.Time  `json:"debut_date" validate:"required"`
	IsActive  bool       `json:"is_active"`
}

// WrestlerSummary is the compact form embedded in predictions and match listings
type WrestlerSummary struct {
	ID      string `json:"id"`
	Shikona string `json:"shikona"`
	Rank    string `json:"rank"`
}

// WrestlerRecord is a win/loss tally over some set of matches
type WrestlerRecord struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Total returns the number of matches in the record
func (r WrestlerRecord) Total() int {
	return r.Wins + r.Losses
}

// WinRate returns wins/total, or 0.5 when there is no data.
func (r WrestlerRecord) WinRate() float64 {
	if r.Total() == 0 {
		return 0.5
	}
	return float64(r.Wins) / float64(r.Total())
}

// WrestlerDetail is the rikishi detail page payload
type WrestlerDetail struct {
	Wrestler
	Record       WrestlerRecord `json:"record"`
	RecentWins   []MatchResult  `json:"recent_wins"`
	RecentLosses []MatchResult  `json:"recent_losses"`
}

// WrestlerStats is the all-time record of a rikishi
type WrestlerStats struct {
	WrestlerID string  `json:"rikishi_id"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"win_rate"`
	Source     string  `json:"source"` // "cache" or "history"
}
