package logic

import (
	"time"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// ComputeStats derives a user's aggregate stats from their resolved
// predictions, which must be ordered by result time ascending. Unresolved
// entries are ignored.
//
// The current streak is the run of consecutive correct results ending at the
// most recent one (0 when the latest result was wrong). The best streak is
// the longest such run anywhere in the history.
func ComputeStats(userID string, resolved []models.Prediction, now time.Time) models.UserPredictionStats {
	stats := models.UserPredictionStats{
		UserID:      userID,
		LastUpdated: now,
	}

	running := 0
	currentOpen := true
	for i := len(resolved) - 1; i >= 0; i-- {
		p := resolved[i]
		if !p.Resolved() {
			continue
		}
		stats.TotalPredictions++

		if p.IsCorrect != nil && *p.IsCorrect {
			stats.CorrectPredictions++
			running++
			if running > stats.BestStreak {
				stats.BestStreak = running
			}
			if currentOpen {
				stats.CurrentStreak = running
			}
			continue
		}

		running = 0
		currentOpen = false
	}

	if stats.TotalPredictions > 0 {
		stats.Accuracy = float64(stats.CorrectPredictions) / float64(stats.TotalPredictions)
	}
	return stats
}
