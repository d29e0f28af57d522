package logic

import (
	"math"
	"strings"
	"time"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// Factor weights. Head-to-head is applied to a raw [0,1] win rate while the
// others are tanh outputs in [-1,1], so an empty history still adds a flat
// 0.15. Kept as is pending product sign-off.
const (
	weightHeadToHead = 0.30
	weightRecentForm = 0.25
	weightRank       = 0.20
	weightExperience = 0.15
	weightPhysical   = 0.10
)

const (
	rankScale       = 0.1
	experienceScale = 0.2
	physicalScale   = 0.5
	heightDivisor   = 200.0
	weightDivisor   = 100.0

	defaultRankWeight = 5
	yearDuration      = 365 * 24 * time.Hour
)

// rankWeights maps banzuke divisions to an ordinal weight, yokozuna highest.
// Kanji, romanized and the single-letter banzuke abbreviations are all accepted.
var rankWeights = map[string]int{
	"横綱": 10, "yokozuna": 10, "y": 10,
	"大関": 9, "ozeki": 9, "o": 9,
	"関脇": 8, "sekiwake": 8, "s": 8,
	"小結": 7, "komusubi": 7, "k": 7,
	"前頭": 6, "maegashira": 6, "m": 6,
	"十両": 5, "juryo": 5,
	"幕下": 4, "makushita": 4,
	"三段目": 3, "sandanme": 3,
	"序二段": 2, "jonidan": 2,
	"序ノ口": 1, "jonokuchi": 1,
}

var rankShorthand = map[byte]int{'y': 10, 'o': 9, 's': 8, 'k': 7, 'm': 6, 'j': 5}

// RankWeight returns the ordinal weight of a rank label, or the mid-tier
// weight for labels it does not recognise.
func RankWeight(rank string) int {
	key := strings.ToLower(strings.TrimSpace(rank))
	if w, ok := rankWeights[key]; ok {
		return w
	}
	// "Maegashira 5", "前頭筆頭" and similar carry a division prefix
	for label, w := range rankWeights {
		if len(label) > 1 && strings.HasPrefix(key, label) {
			return w
		}
	}
	// Banzuke shorthand such as "M5e" or "J12w"
	if len(key) > 1 && key[1] >= '0' && key[1] <= '9' {
		if w, ok := rankShorthand[key[0]]; ok {
			return w
		}
	}
	return defaultRankWeight
}

// RankAdvantage scores the winner-candidate's banzuke edge in [-1, 1].
func RankAdvantage(winnerRank, loserRank string) float64 {
	diff := RankWeight(winnerRank) - RankWeight(loserRank)
	return math.Tanh(float64(diff) * rankScale)
}

// ExperienceAdvantage scores the difference in career length (years since
// debut) in [-1, 1]. A longer career favours the winner-candidate.
func ExperienceAdvantage(winnerDebut, loserDebut, now time.Time) float64 {
	winnerCareer := now.Sub(winnerDebut)
	loserCareer := now.Sub(loserDebut)
	years := float64(winnerCareer-loserCareer) / float64(yearDuration)
	return math.Tanh(years * experienceScale)
}

// PhysicalAdvantage combines normalized height and weight differences.
func PhysicalAdvantage(winner, loser *models.Wrestler) float64 {
	height := (winner.Height - loser.Height) / heightDivisor
	weight := (winner.Weight - loser.Weight) / weightDivisor
	return math.Tanh((height + weight) * physicalScale)
}

// RecentFormDelta is the winner-candidate's recent win rate minus the loser's.
func RecentFormDelta(winner, loser models.WrestlerRecord) float64 {
	return winner.WinRate() - loser.WinRate()
}

// Confidence maps the amount of historical evidence to a confidence score.
// It measures data volume, not calibration.
func Confidence(dataPoints int) float64 {
	switch {
	case dataPoints <= 0:
		return 0.1
	case dataPoints < 5:
		return 0.3
	case dataPoints < 10:
		return 0.5
	case dataPoints < 20:
		return 0.7
	}
	return math.Min(0.95, 0.7+float64(dataPoints-20)*0.01)
}

// WinProbability clamps the baseline plus weighted factors into [0.1, 0.9].
func WinProbability(f models.Factors) float64 {
	return clamp(0.5+f.Sum(), 0.1, 0.9)
}

// FactorInputs are the raw signals gathered for one nominated pairing
type FactorInputs struct {
	Winner     *models.Wrestler
	Loser      *models.Wrestler
	HeadToHead models.WrestlerRecord // from the winner-candidate's side
	WinnerForm models.WrestlerRecord
	LoserForm  models.WrestlerRecord
	Now        time.Time
}

// Score applies the factor weights to the gathered inputs.
func Score(in FactorInputs) models.PredictionResult {
	factors := models.Factors{
		HeadToHead:        in.HeadToHead.WinRate() * weightHeadToHead,
		RecentForm:        RecentFormDelta(in.WinnerForm, in.LoserForm) * weightRecentForm,
		RankAdvantage:     RankAdvantage(in.Winner.Rank, in.Loser.Rank) * weightRank,
		Experience:        ExperienceAdvantage(in.Winner.DebutDate, in.Loser.DebutDate, in.Now) * weightExperience,
		PhysicalAdvantage: PhysicalAdvantage(in.Winner, in.Loser) * weightPhysical,
	}

	samples := in.HeadToHead.Total() + in.WinnerForm.Total() + in.LoserForm.Total()

	return models.PredictionResult{
		WinProbability: WinProbability(factors),
		Confidence:     Confidence(samples),
		Factors:        factors,
		SampleSize:     samples,
	}
}

// FallbackResult is the neutral score used when scoring cannot complete.
func FallbackResult() models.PredictionResult {
	return models.PredictionResult{
		WinProbability: 0.5,
		Confidence:     0.3,
		Fallback:       true,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
