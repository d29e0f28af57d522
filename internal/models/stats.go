package models

import "time"

// UserPredictionStats is the cached accuracy/streak summary for one user.
// It is derived entirely from the user's resolved predictions.
type UserPredictionStats struct {
	UserID             string    `json:"user_id"`
	TotalPredictions   int       `json:"total_predictions"`
	CorrectPredictions int       `json:"correct_predictions"`
	Accuracy           float64   `json:"accuracy"`
	CurrentStreak      int       `json:"current_streak"`
	BestStreak         int       `json:"best_streak"`
	LastUpdated        time.Time `json:"last_updated"`
}

// RankingEntry is a row of the prediction accuracy leaderboard
type RankingEntry struct {
	Rank               int     `json:"rank"`
	UserID             string  `json:"id"`
	Name               string  `json:"name"`
	IsPremium          bool    `json:"is_premium"`
	TotalPredictions   int     `json:"total_predictions"`
	CorrectPredictions int     `json:"correct_predictions"`
	Accuracy           float64 `json:"accuracy"`
	CurrentStreak      int     `json:"current_streak"`
	BestStreak         int     `json:"best_streak"`
}

// User is the account row the prediction core reads for tier gating
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsPremium bool   `json:"is_premium"`
}

// Identity is the authenticated caller, resolved from the bearer token
type Identity struct {
	UserID string
}
