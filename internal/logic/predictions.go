package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sumo-yosou/predict-api/internal/models"
)

const (
	defaultRankingLimit = 10
	defaultHistoryLimit = 20
	maxPageLimit        = 100

	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 2 * time.Second
)

// PredictionServiceConfig wires the prediction service
type PredictionServiceConfig struct {
	Store     PredictionStore
	Wrestlers WrestlerStore
	Engine    *Engine
	Quota     *QuotaGuard
	Locker    Locker
	Logger    *zap.SugaredLogger
	LockTTL   time.Duration
	LockWait  time.Duration
}

type predictionService struct {
	store     PredictionStore
	wrestlers WrestlerStore
	engine    *Engine
	quota     *QuotaGuard
	locker    Locker
	logger    *zap.SugaredLogger
	validate  *validator.Validate
	lockTTL   time.Duration
	lockWait  time.Duration
	now       func() time.Time
}

func NewPredictionService(cfg PredictionServiceConfig) PredictionService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = defaultLockWait
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &predictionService{
		store:     cfg.Store,
		wrestlers: cfg.Wrestlers,
		engine:    cfg.Engine,
		quota:     cfg.Quota,
		locker:    cfg.Locker,
		logger:    cfg.Logger,
		validate:  validator.New(),
		lockTTL:   cfg.LockTTL,
		lockWait:  cfg.LockWait,
		now:       time.Now,
	}
}

func (s *predictionService) requester(ctx context.Context, who models.Identity) (*models.User, error) {
	if who.UserID == "" {
		return nil, fmt.Errorf("%w: missing identity", ErrForbidden)
	}
	user, err := s.store.GetUser(ctx, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// GetPredictions lists predictions for one tournament day. Premium users see
// every user's predictions ranked by win probability; free users see their
// own, subject to the monthly quota.
func (s *predictionService) GetPredictions(ctx context.Context, who models.Identity, tournament string, day int) ([]models.Prediction, error) {
	if err := s.validate.Struct(models.PredictionQuery{Tournament: tournament, Day: day}); err != nil {
		return nil, validationError("tournament and day (1-15) are required: %v", err)
	}

	user, err := s.requester(ctx, who)
	if err != nil {
		return nil, err
	}

	filter := PredictionFilter{Tournament: tournament, Day: day}
	if !user.IsPremium {
		if err := s.quota.CheckRead(ctx, user); err != nil {
			return nil, err
		}
		filter.UserID = user.ID
	}

	preds, err := s.store.ListPredictions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return preds, nil
}

// CreatePrediction scores and stores the caller's nomination.
func (s *predictionService) CreatePrediction(ctx context.Context, who models.Identity, req models.CreatePredictionRequest) (*models.Prediction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError("%v", err)
	}

	user, err := s.requester(ctx, who)
	if err != nil {
		return nil, err
	}

	winner, err := s.wrestlers.GetWrestler(ctx, req.WinnerID)
	if err != nil {
		return nil, fmt.Errorf("winner candidate %s: %w", req.WinnerID, err)
	}
	loser, err := s.wrestlers.GetWrestler(ctx, req.LoserID)
	if err != nil {
		return nil, fmt.Errorf("loser candidate %s: %w", req.LoserID, err)
	}

	if err := s.quota.CheckCreate(ctx, user, req.WinnerID); err != nil {
		return nil, err
	}

	result := s.engine.Predict(ctx, req.WinnerID, req.LoserID, req.Tournament, req.Day)

	p := &models.Prediction{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		WinnerID:       req.WinnerID,
		LoserID:        req.LoserID,
		Tournament:     req.Tournament,
		Day:            req.Day,
		WinProbability: result.WinProbability,
		Confidence:     result.Confidence,
		Factors:        result.Factors,
		CreatedAt:      s.now(),
		Winner:         summarize(winner),
		Loser:          summarize(loser),
	}
	if err := s.store.CreatePrediction(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	predictionsCreated.Inc()
	s.logger.Infow("Prediction created",
		"prediction_id", p.ID,
		"user_id", user.ID,
		"winner_id", p.WinnerID,
		"loser_id", p.LoserID,
		"win_probability", p.WinProbability,
		"fallback", result.Fallback,
	)
	return p, nil
}

// GetPrediction returns a stored prediction as persisted. Only the owner
// or a premium user may read it.
func (s *predictionService) GetPrediction(ctx context.Context, who models.Identity, id string) (*models.Prediction, error) {
	p, err := s.store.GetPrediction(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID == who.UserID {
		return p, nil
	}

	user, err := s.requester(ctx, who)
	if err != nil {
		return nil, err
	}
	if !user.IsPremium {
		return nil, fmt.Errorf("%w: prediction %s belongs to another user", ErrForbidden, id)
	}
	return p, nil
}

// RecordResult writes the actual outcome onto the caller's prediction once,
// then recomputes the caller's stats.
func (s *predictionService) RecordResult(ctx context.Context, who models.Identity, id, actualWinnerID string) (*models.Prediction, error) {
	if actualWinnerID == "" {
		return nil, validationError("actual winner is required")
	}

	unlock, err := s.locker.AcquireWait(ctx, "prediction:"+id+":result", s.lockTTL, s.lockWait)
	if err != nil {
		return nil, fmt.Errorf("failed to lock prediction %s: %w", id, err)
	}
	defer unlock()

	p, err := s.store.GetPrediction(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != who.UserID {
		return nil, fmt.Errorf("%w: prediction %s belongs to another user", ErrForbidden, id)
	}
	if p.Resolved() {
		s.catchUpStats(ctx, p)
		return nil, fmt.Errorf("prediction %s: %w", id, ErrAlreadyRecorded)
	}
	if actualWinnerID != p.WinnerID && actualWinnerID != p.LoserID {
		return nil, validationError("actual winner %s is not part of this bout", actualWinnerID)
	}

	now := s.now()
	correct := actualWinnerID == p.WinnerID
	if err := s.store.MarkResult(ctx, id, actualWinnerID, correct, now); err != nil {
		if errors.Is(err, ErrAlreadyRecorded) {
			return nil, fmt.Errorf("prediction %s: %w", id, err)
		}
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	p.ActualWinnerID = &actualWinnerID
	p.IsCorrect = &correct
	p.ResultRecordedAt = &now

	outcome := "incorrect"
	if correct {
		outcome = "correct"
	}
	resultsRecorded.WithLabelValues(outcome).Inc()

	// The result is committed; a failed recompute is repaired on the next
	// attempt against this prediction or by the next recorded result.
	if _, err := s.recomputeStats(ctx, p.UserID); err != nil {
		statsRecomputeFailures.Inc()
		s.logger.Warnw("Stats recompute failed after result was recorded",
			"prediction_id", id,
			"user_id", p.UserID,
			"error", err,
		)
	}

	s.logger.Infow("Prediction result recorded",
		"prediction_id", id,
		"user_id", p.UserID,
		"actual_winner_id", actualWinnerID,
		"is_correct", correct,
	)
	return p, nil
}

// catchUpStats recomputes the owner's stats when they predate the
// prediction's recorded result.
func (s *predictionService) catchUpStats(ctx context.Context, p *models.Prediction) {
	stats, err := s.store.GetStats(ctx, p.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		s.logger.Warnw("Failed to load stats for catch-up", "user_id", p.UserID, "error", err)
		return
	case !stats.LastUpdated.Before(*p.ResultRecordedAt):
		return
	}

	if _, err := s.recomputeStats(ctx, p.UserID); err != nil {
		statsRecomputeFailures.Inc()
		s.logger.Warnw("Stats catch-up failed", "prediction_id", p.ID, "user_id", p.UserID, "error", err)
		return
	}
	s.logger.Infow("Stats caught up with recorded result", "prediction_id", p.ID, "user_id", p.UserID)
}

// recomputeStats rebuilds the user's stats from every resolved prediction.
// The per-user lock keeps the last upsert consistent with the latest result.
func (s *predictionService) recomputeStats(ctx context.Context, userID string) (*models.UserPredictionStats, error) {
	unlock, err := s.locker.AcquireWait(ctx, "stats:"+userID, s.lockTTL, s.lockWait)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stats for %s: %w", userID, err)
	}
	defer unlock()

	resolved, err := s.store.ListResolved(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load resolved predictions: %w", err)
	}

	stats := ComputeStats(userID, resolved, s.now())
	if err := s.store.UpsertStats(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to save stats: %w", err)
	}
	return &stats, nil
}

// GetStats returns the caller's stats, zeroed when nothing is resolved yet.
func (s *predictionService) GetStats(ctx context.Context, who models.Identity) (*models.UserPredictionStats, error) {
	stats, err := s.store.GetStats(ctx, who.UserID)
	if errors.Is(err, ErrNotFound) {
		return &models.UserPredictionStats{UserID: who.UserID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return stats, nil
}

func (s *predictionService) GetRanking(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	if limit <= 0 {
		limit = defaultRankingLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	entries, err := s.store.Ranking(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *predictionService) GetHistory(ctx context.Context, who models.Identity, page, limit int) (*models.PredictionHistory, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	preds, total, err := s.store.ListHistory(ctx, who.UserID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if preds == nil {
		preds = []models.Prediction{}
	}

	return &models.PredictionHistory{
		Predictions: preds,
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  (total + limit - 1) / limit,
	}, nil
}

func summarize(w *models.Wrestler) *models.WrestlerSummary {
	if w == nil {
		return nil
	}
	return &models.WrestlerSummary{ID: w.ID, Shikona: w.Shikona, Rank: w.Rank}
}
