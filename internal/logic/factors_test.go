package logic

import (
	"math"
	"testing"
	"time"

	"github.com/sumo-yosou/predict-api/internal/models"
)

const epsilon = 1e-4

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestRankWeight(t *testing.T) {
	tests := []struct {
		rank string
		want int
	}{
		{"横綱", 10},
		{"Yokozuna", 10},
		{"Y", 10},
		{"大関", 9},
		{"ozeki", 9},
		{"関脇", 8},
		{"小結", 7},
		{"前頭", 6},
		{"Maegashira 5", 6},
		{"前頭筆頭", 6},
		{"M5e", 6},
		{"十両", 5},
		{"J12w", 5},
		{"幕下", 4},
		{"三段目", 3},
		{"序二段", 2},
		{"序ノ口", 1},
		{"", 5},
		{"unknown", 5},
	}
	for _, tt := range tests {
		t.Run(tt.rank, func(t *testing.T) {
			if got := RankWeight(tt.rank); got != tt.want {
				t.Errorf("RankWeight(%q) = %d, want %d", tt.rank, got, tt.want)
			}
		})
	}
}

func TestRankAdvantage(t *testing.T) {
	tests := []struct {
		name   string
		winner string
		loser  string
		want   float64
	}{
		{"same rank", "大関", "大関", 0},
		{"yokozuna over unknown", "横綱", "", math.Tanh(0.5)},
		{"maegashira under yokozuna", "前頭", "横綱", math.Tanh(-0.4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankAdvantage(tt.winner, tt.loser)
			if !almostEqual(got, tt.want) {
				t.Errorf("RankAdvantage() = %v, want %v", got, tt.want)
			}
			if got < -1 || got > 1 {
				t.Errorf("RankAdvantage() = %v out of [-1, 1]", got)
			}
		})
	}
}

func TestExperienceAdvantage(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	veteran := now.Add(-10 * yearDuration)
	rookie := now.Add(-5 * yearDuration)

	if got := ExperienceAdvantage(veteran, rookie, now); !almostEqual(got, math.Tanh(1)) {
		t.Errorf("veteran advantage = %v, want %v", got, math.Tanh(1))
	}
	if got := ExperienceAdvantage(rookie, veteran, now); !almostEqual(got, -math.Tanh(1)) {
		t.Errorf("rookie advantage = %v, want %v", got, -math.Tanh(1))
	}
	if got := ExperienceAdvantage(rookie, rookie, now); got != 0 {
		t.Errorf("equal careers = %v, want 0", got)
	}
}

func TestPhysicalAdvantage(t *testing.T) {
	big := &models.Wrestler{Height: 192, Weight: 180}
	small := &models.Wrestler{Height: 172, Weight: 130}

	// (20/200 + 50/100) * 0.5 = 0.3
	if got := PhysicalAdvantage(big, small); !almostEqual(got, math.Tanh(0.3)) {
		t.Errorf("PhysicalAdvantage(big, small) = %v, want %v", got, math.Tanh(0.3))
	}
	if got := PhysicalAdvantage(small, big); !almostEqual(got, -math.Tanh(0.3)) {
		t.Errorf("PhysicalAdvantage(small, big) = %v, want %v", got, -math.Tanh(0.3))
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{0, 0.1},
		{1, 0.3},
		{4, 0.3},
		{5, 0.5},
		{9, 0.5},
		{10, 0.7},
		{19, 0.7},
		{20, 0.7},
		{30, 0.8},
		{45, 0.95},
		{1000, 0.95},
	}

	prev := 0.0
	for _, tt := range tests {
		got := Confidence(tt.n)
		if !almostEqual(got, tt.want) {
			t.Errorf("Confidence(%d) = %v, want %v", tt.n, got, tt.want)
		}
		if got < prev {
			t.Errorf("Confidence(%d) = %v decreased from %v", tt.n, got, prev)
		}
		prev = got
	}
}

func TestWinProbabilityClamped(t *testing.T) {
	high := models.Factors{HeadToHead: 0.3, RecentForm: 0.25, RankAdvantage: 0.2}
	if got := WinProbability(high); got != 0.9 {
		t.Errorf("WinProbability(high) = %v, want 0.9", got)
	}
	low := models.Factors{RecentForm: -0.25, RankAdvantage: -0.2, Experience: -0.15}
	if got := WinProbability(low); got != 0.1 {
		t.Errorf("WinProbability(low) = %v, want 0.1", got)
	}
}

func TestScore_RankOnlyPairing(t *testing.T) {
	debut := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	in := FactorInputs{
		Winner: &models.Wrestler{ID: "a", Rank: "横綱", Height: 185, Weight: 160, DebutDate: debut},
		Loser:  &models.Wrestler{ID: "b", Rank: "十両", Height: 185, Weight: 160, DebutDate: debut},
		Now:    time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	got := Score(in)

	// 0.5 + 0.5*0.30 + tanh(0.5)*0.20
	want := 0.5 + 0.15 + math.Tanh(0.5)*0.2
	if !almostEqual(got.WinProbability, want) {
		t.Errorf("WinProbability = %v, want %v", got.WinProbability, want)
	}
	if !almostEqual(got.WinProbability, 0.7424) {
		t.Errorf("WinProbability = %v, want ~0.7424", got.WinProbability)
	}
	if got.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want 0.1", got.Confidence)
	}
	if got.Factors.HeadToHead != 0.15 {
		t.Errorf("HeadToHead = %v, want 0.15", got.Factors.HeadToHead)
	}
	if got.Factors.RecentForm != 0 || got.Factors.Experience != 0 || got.Factors.PhysicalAdvantage != 0 {
		t.Errorf("unexpected non-zero factors: %+v", got.Factors)
	}
	if got.Fallback {
		t.Error("Fallback = true, want false")
	}
}

func TestScore_WithHistory(t *testing.T) {
	debut := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	in := FactorInputs{
		Winner:     &models.Wrestler{Rank: "大関", DebutDate: debut},
		Loser:      &models.Wrestler{Rank: "大関", DebutDate: debut},
		HeadToHead: models.WrestlerRecord{Wins: 3, Losses: 1},
		WinnerForm: models.WrestlerRecord{Wins: 8, Losses: 2},
		LoserForm:  models.WrestlerRecord{Wins: 4, Losses: 6},
		Now:        time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	got := Score(in)

	if !almostEqual(got.Factors.HeadToHead, 0.225) {
		t.Errorf("HeadToHead = %v, want 0.225", got.Factors.HeadToHead)
	}
	if !almostEqual(got.Factors.RecentForm, 0.1) {
		t.Errorf("RecentForm = %v, want 0.1", got.Factors.RecentForm)
	}
	if !almostEqual(got.WinProbability, 0.825) {
		t.Errorf("WinProbability = %v, want 0.825", got.WinProbability)
	}
	if got.SampleSize != 24 {
		t.Errorf("SampleSize = %d, want 24", got.SampleSize)
	}
	if got.Confidence != 0.74 && !almostEqual(got.Confidence, 0.74) {
		t.Errorf("Confidence = %v, want 0.74", got.Confidence)
	}
}

func TestFallbackResult(t *testing.T) {
	got := FallbackResult()
	if got.WinProbability != 0.5 || got.Confidence != 0.3 {
		t.Errorf("FallbackResult() = %+v, want 0.5/0.3", got)
	}
	if got.Factors != (models.Factors{}) {
		t.Errorf("Factors = %+v, want zero", got.Factors)
	}
	if !got.Fallback {
		t.Error("Fallback = false, want true")
	}
}
