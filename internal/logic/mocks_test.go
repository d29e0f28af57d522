package logic

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// MockWrestlerStore serves wrestlers from a map unless GetWrestlerFunc is set
type MockWrestlerStore struct {
	Wrestlers       map[string]*models.Wrestler
	GetWrestlerFunc func(ctx context.Context, id string) (*models.Wrestler, error)
	Upserted        []models.Wrestler
}

func (m *MockWrestlerStore) GetWrestler(ctx context.Context, id string) (*models.Wrestler, error) {
	if m.GetWrestlerFunc != nil {
		return m.GetWrestlerFunc(ctx, id)
	}
	if w, ok := m.Wrestlers[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, fmt.Errorf("wrestler %s: %w", id, ErrNotFound)
}

func (m *MockWrestlerStore) ListActiveWrestlers(ctx context.Context) ([]models.Wrestler, error) {
	out := []models.Wrestler{}
	for _, w := range m.Wrestlers {
		if w.IsActive {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shikona < out[j].Shikona })
	return out, nil
}

func (m *MockWrestlerStore) SearchWrestlers(ctx context.Context, query string, limit int) ([]models.Wrestler, error) {
	return nil, nil
}

func (m *MockWrestlerStore) UpsertWrestlers(ctx context.Context, wrestlers []models.Wrestler) (int, error) {
	m.Upserted = append(m.Upserted, wrestlers...)
	return len(wrestlers), nil
}

// MockMatchHistory returns canned records
type MockMatchHistory struct {
	HeadToHeadFunc    func(ctx context.Context, a, b string) (models.WrestlerRecord, error)
	RecentFormFunc    func(ctx context.Context, id string, n int) (models.WrestlerRecord, error)
	ListMatchesFunc   func(ctx context.Context, id string, limit, offset int) ([]models.MatchResult, error)
	ListDecisionsFunc func(ctx context.Context, id string, won bool, limit int) ([]models.MatchResult, error)
	RecordFunc        func(ctx context.Context, id string) (models.WrestlerRecord, error)
}

func (m *MockMatchHistory) HeadToHead(ctx context.Context, a, b string) (models.WrestlerRecord, error) {
	if m.HeadToHeadFunc != nil {
		return m.HeadToHeadFunc(ctx, a, b)
	}
	return models.WrestlerRecord{}, nil
}

func (m *MockMatchHistory) RecentForm(ctx context.Context, id string, n int) (models.WrestlerRecord, error) {
	if m.RecentFormFunc != nil {
		return m.RecentFormFunc(ctx, id, n)
	}
	return models.WrestlerRecord{}, nil
}

func (m *MockMatchHistory) ListMatches(ctx context.Context, id string, limit, offset int) ([]models.MatchResult, error) {
	if m.ListMatchesFunc != nil {
		return m.ListMatchesFunc(ctx, id, limit, offset)
	}
	return []models.MatchResult{}, nil
}

func (m *MockMatchHistory) ListDecisions(ctx context.Context, id string, won bool, limit int) ([]models.MatchResult, error) {
	if m.ListDecisionsFunc != nil {
		return m.ListDecisionsFunc(ctx, id, won, limit)
	}
	return []models.MatchResult{}, nil
}

func (m *MockMatchHistory) Record(ctx context.Context, id string) (models.WrestlerRecord, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, id)
	}
	return models.WrestlerRecord{}, nil
}

// MockPredictionStore is an in-memory PredictionStore
type MockPredictionStore struct {
	mu          sync.Mutex
	Users       map[string]*models.User
	Predictions map[string]*models.Prediction
	Stats       map[string]*models.UserPredictionStats
	StatsWrites int
}

func NewMockPredictionStore(users ...*models.User) *MockPredictionStore {
	m := &MockPredictionStore{
		Users:       map[string]*models.User{},
		Predictions: map[string]*models.Prediction{},
		Stats:       map[string]*models.UserPredictionStats{},
	}
	for _, u := range users {
		m.Users[u.ID] = u
	}
	return m
}

func (m *MockPredictionStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

func (m *MockPredictionStore) CreatePrediction(ctx context.Context, p *models.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.Predictions[p.ID] = &cp
	return nil
}

func (m *MockPredictionStore) GetPrediction(ctx context.Context, id string) (*models.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Predictions[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("prediction %s: %w", id, ErrNotFound)
}

func (m *MockPredictionStore) ListPredictions(ctx context.Context, f PredictionFilter) ([]models.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Prediction{}
	for _, p := range m.Predictions {
		if p.Tournament != f.Tournament || p.Day != f.Day {
			continue
		}
		if f.UserID != "" && p.UserID != f.UserID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WinProbability > out[j].WinProbability })
	return out, nil
}

func (m *MockPredictionStore) ListHistory(ctx context.Context, userID string, limit, offset int) ([]models.Prediction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Prediction
	for _, p := range m.Predictions {
		if p.UserID == userID {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return []models.Prediction{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *MockPredictionStore) WinnerCandidatesSince(ctx context.Context, userID string, since time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, p := range m.Predictions {
		if p.UserID == userID && !p.CreatedAt.Before(since) {
			ids = append(ids, p.WinnerID)
		}
	}
	return ids, nil
}

func (m *MockPredictionStore) MarkResult(ctx context.Context, id, actualWinnerID string, isCorrect bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Predictions[id]
	if !ok {
		return ErrNotFound
	}
	if p.ResultRecordedAt != nil {
		return ErrAlreadyRecorded
	}
	winner, correct, recorded := actualWinnerID, isCorrect, at
	p.ActualWinnerID = &winner
	p.IsCorrect = &correct
	p.ResultRecordedAt = &recorded
	return nil
}

func (m *MockPredictionStore) ListResolved(ctx context.Context, userID string) ([]models.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Prediction{}
	for _, p := range m.Predictions {
		if p.UserID == userID && p.ResultRecordedAt != nil {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResultRecordedAt.Before(*out[j].ResultRecordedAt) })
	return out, nil
}

func (m *MockPredictionStore) UpsertStats(ctx context.Context, s *models.UserPredictionStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.Stats[s.UserID] = &cp
	m.StatsWrites++
	return nil
}

func (m *MockPredictionStore) GetStats(ctx context.Context, userID string) (*models.UserPredictionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Stats[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("stats for %s: %w", userID, ErrNotFound)
}

func (m *MockPredictionStore) Ranking(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RankingEntry{}
	for _, s := range m.Stats {
		if s.TotalPredictions == 0 {
			continue
		}
		out = append(out, models.RankingEntry{
			UserID:             s.UserID,
			TotalPredictions:   s.TotalPredictions,
			CorrectPredictions: s.CorrectPredictions,
			Accuracy:           s.Accuracy,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Accuracy > out[j].Accuracy })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MockLocker is a process-local Locker backed by one mutex per key.
// Keys starting with FailPrefix are refused.
type MockLocker struct {
	mu         sync.Mutex
	locks      map[string]*sync.Mutex
	Acquired   []string
	FailPrefix string
}

func (m *MockLocker) SetFailPrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailPrefix = prefix
}

func (m *MockLocker) AcquireWait(ctx context.Context, key string, ttl, wait time.Duration) (func(), error) {
	m.mu.Lock()
	if m.FailPrefix != "" && strings.HasPrefix(key, m.FailPrefix) {
		m.mu.Unlock()
		return nil, fmt.Errorf("lock %s: held by another holder", key)
	}
	if m.locks == nil {
		m.locks = map[string]*sync.Mutex{}
	}
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.Acquired = append(m.Acquired, key)
	m.mu.Unlock()

	l.Lock()
	return l.Unlock, nil
}
