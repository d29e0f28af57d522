package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// MockPredictionService
type MockPredictionService struct {
	GetPredictionsFunc   func(ctx context.Context, who models.Identity, tournament string, day int) ([]models.Prediction, error)
	CreatePredictionFunc func(ctx context.Context, who models.Identity, req models.CreatePredictionRequest) (*models.Prediction, error)
	GetPredictionFunc    func(ctx context.Context, who models.Identity, id string) (*models.Prediction, error)
	RecordResultFunc     func(ctx context.Context, who models.Identity, id, actualWinnerID string) (*models.Prediction, error)
	GetStatsFunc         func(ctx context.Context, who models.Identity) (*models.UserPredictionStats, error)
	GetRankingFunc       func(ctx context.Context, limit int) ([]models.RankingEntry, error)
	GetHistoryFunc       func(ctx context.Context, who models.Identity, page, limit int) (*models.PredictionHistory, error)
}

func (m *MockPredictionService) GetPredictions(ctx context.Context, who models.Identity, tournament string, day int) ([]models.Prediction, error) {
	if m.GetPredictionsFunc != nil {
		return m.GetPredictionsFunc(ctx, who, tournament, day)
	}
	return nil, nil
}

func (m *MockPredictionService) CreatePrediction(ctx context.Context, who models.Identity, req models.CreatePredictionRequest) (*models.Prediction, error) {
	if m.CreatePredictionFunc != nil {
		return m.CreatePredictionFunc(ctx, who, req)
	}
	return &models.Prediction{UserID: who.UserID, WinnerID: req.WinnerID, LoserID: req.LoserID}, nil
}

func (m *MockPredictionService) GetPrediction(ctx context.Context, who models.Identity, id string) (*models.Prediction, error) {
	if m.GetPredictionFunc != nil {
		return m.GetPredictionFunc(ctx, who, id)
	}
	return &models.Prediction{}, nil
}

func (m *MockPredictionService) RecordResult(ctx context.Context, who models.Identity, id, actualWinnerID string) (*models.Prediction, error) {
	if m.RecordResultFunc != nil {
		return m.RecordResultFunc(ctx, who, id, actualWinnerID)
	}
	return &models.Prediction{}, nil
}

func (m *MockPredictionService) GetStats(ctx context.Context, who models.Identity) (*models.UserPredictionStats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx, who)
	}
	return &models.UserPredictionStats{UserID: who.UserID}, nil
}

func (m *MockPredictionService) GetRanking(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	if m.GetRankingFunc != nil {
		return m.GetRankingFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockPredictionService) GetHistory(ctx context.Context, who models.Identity, page, limit int) (*models.PredictionHistory, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, who, page, limit)
	}
	return &models.PredictionHistory{Page: page, Limit: limit}, nil
}

// MockWrestlerService
type MockWrestlerService struct {
	ListWrestlersFunc      func(ctx context.Context) ([]models.Wrestler, error)
	GetWrestlerDetailFunc  func(ctx context.Context, id string) (*models.WrestlerDetail, error)
	GetWrestlerMatchesFunc func(ctx context.Context, id string, limit, offset int) ([]models.MatchResult, error)
	GetWrestlerStatsFunc   func(ctx context.Context, id string) (*models.WrestlerStats, error)
	SearchWrestlersFunc    func(ctx context.Context, query string) ([]models.Wrestler, error)
	UpsertWrestlersFunc    func(ctx context.Context, wrestlers []models.Wrestler) (int, error)
}

func (m *MockWrestlerService) ListWrestlers(ctx context.Context) ([]models.Wrestler, error) {
	if m.ListWrestlersFunc != nil {
		return m.ListWrestlersFunc(ctx)
	}
	return nil, nil
}

func (m *MockWrestlerService) GetWrestlerDetail(ctx context.Context, id string) (*models.WrestlerDetail, error) {
	if m.GetWrestlerDetailFunc != nil {
		return m.GetWrestlerDetailFunc(ctx, id)
	}
	return &models.WrestlerDetail{}, nil
}

func (m *MockWrestlerService) GetWrestlerMatches(ctx context.Context, id string, limit, offset int) ([]models.MatchResult, error) {
	if m.GetWrestlerMatchesFunc != nil {
		return m.GetWrestlerMatchesFunc(ctx, id, limit, offset)
	}
	return nil, nil
}

func (m *MockWrestlerService) GetWrestlerStats(ctx context.Context, id string) (*models.WrestlerStats, error) {
	if m.GetWrestlerStatsFunc != nil {
		return m.GetWrestlerStatsFunc(ctx, id)
	}
	return &models.WrestlerStats{WrestlerID: id}, nil
}

func (m *MockWrestlerService) SearchWrestlers(ctx context.Context, query string) ([]models.Wrestler, error) {
	if m.SearchWrestlersFunc != nil {
		return m.SearchWrestlersFunc(ctx, query)
	}
	return nil, nil
}

func (m *MockWrestlerService) UpsertWrestlers(ctx context.Context, wrestlers []models.Wrestler) (int, error) {
	if m.UpsertWrestlersFunc != nil {
		return m.UpsertWrestlersFunc(ctx, wrestlers)
	}
	return len(wrestlers), nil
}

// MockIngestQueue implements IngestQueue for testing
type MockIngestQueue struct {
	EnqueueFunc func(match models.MatchResult) bool

	mu       sync.Mutex
	Enqueued []models.MatchResult
}

func (m *MockIngestQueue) Enqueue(match models.MatchResult) bool {
	if m.EnqueueFunc != nil && !m.EnqueueFunc(match) {
		return false
	}
	m.mu.Lock()
	m.Enqueued = append(m.Enqueued, match)
	m.mu.Unlock()
	return true
}

func (m *MockIngestQueue) QueueDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Enqueued)
}

// MockRateLimiter
type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, nil
}

// MockPinger
type MockPinger struct {
	Down bool
}

func (m MockPinger) Ping(ctx context.Context) error {
	if m.Down {
		return errors.New("down")
	}
	return nil
}
