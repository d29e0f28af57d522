package models

import "time"

// Factors is the weighted breakdown behind a prediction's win probability.
// Each value is the factor's contribution after weighting.
type Factors struct {
	HeadToHead        float64 `json:"head_to_head"`
	RecentForm        float64 `json:"recent_form"`
	RankAdvantage     float64 `json:"rank_advantage"`
	Experience        float64 `json:"experience"`
	PhysicalAdvantage float64 `json:"physical_advantage"`
}

// Sum returns the total weighted contribution
func (f Factors) Sum() float64 {
	return f.HeadToHead + f.RecentForm + f.RankAdvantage + f.Experience + f.PhysicalAdvantage
}

// PredictionResult is the scoring engine's output for a nominated pairing
type PredictionResult struct {
	WinProbability float64 `json:"win_probability"`
	Confidence     float64 `json:"confidence"`
	Factors        Factors `json:"factors"`
	// SampleSize is the number of historical matches the score was derived from.
	SampleSize int  `json:"sample_size"`
	Fallback   bool `json:"fallback,omitempty"`
}

// Prediction is a user's scored nomination of a bout winner
type Prediction struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	WinnerID       string    `json:"winner_id"`
	LoserID        string    `json:"loser_id"`
	Tournament     string    `json:"tournament"`
	Day            int       `json:"day"`
	WinProbability float64   `json:"win_probability"`
	Confidence     float64   `json:"confidence"`
	Factors        Factors   `json:"factors"`
	CreatedAt      time.Time `json:"created_at"`

	// Result sub-state, write-once
	ActualWinnerID   *string    `json:"actual_winner_id,omitempty"`
	IsCorrect        *bool      `json:"is_correct,omitempty"`
	ResultRecordedAt *time.Time `json:"result_recorded_at,omitempty"`

	Winner *WrestlerSummary `json:"winner,omitempty"`
	Loser  *WrestlerSummary `json:"loser,omitempty"`
}

// Resolved reports whether the real outcome has been recorded
func (p *Prediction) Resolved() bool {
	return p.ResultRecordedAt != nil
}

// PredictionHistory is one page of a user's predictions
type PredictionHistory struct {
	Predictions []Prediction `json:"predictions"`
	Page        int          `json:"page"`
	Limit       int          `json:"limit"`
	Total       int          `json:"total"`
	TotalPages  int          `json:"total_pages"`
}
