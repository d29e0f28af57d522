package logic

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sumo-yosou/predict-api/internal/models"
)

const (
	detailDecisions    = 5
	searchLimit        = 10
	defaultMatchLimit  = 20
	statsSourceCache   = "cache"
	statsSourceHistory = "history"
)

type wrestlerService struct {
	store    WrestlerStore
	history  MatchHistory
	counters RecordCounter // optional
	logger   *zap.SugaredLogger
}

func NewWrestlerService(store WrestlerStore, history MatchHistory, counters RecordCounter, logger *zap.SugaredLogger) WrestlerService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &wrestlerService{store: store, history: history, counters: counters, logger: logger}
}

func (s *wrestlerService) ListWrestlers(ctx context.Context) ([]models.Wrestler, error) {
	return s.store.ListActiveWrestlers(ctx)
}

// GetWrestlerDetail loads the rikishi and, concurrently, their record and
// latest wins and losses.
func (s *wrestlerService) GetWrestlerDetail(ctx context.Context, id string) (*models.WrestlerDetail, error) {
	w, err := s.store.GetWrestler(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.WrestlerDetail{Wrestler: *w}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.GetWrestlerStats(gctx, id)
		if err != nil {
			return err
		}
		detail.Record = models.WrestlerRecord{Wins: stats.Wins, Losses: stats.Losses}
		return nil
	})
	g.Go(func() error {
		wins, err := s.history.ListDecisions(gctx, id, true, detailDecisions)
		if err != nil {
			return fmt.Errorf("recent wins: %w", err)
		}
		detail.RecentWins = wins
		return nil
	})
	g.Go(func() error {
		losses, err := s.history.ListDecisions(gctx, id, false, detailDecisions)
		if err != nil {
			return fmt.Errorf("recent losses: %w", err)
		}
		detail.RecentLosses = losses
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *wrestlerService) GetWrestlerMatches(ctx context.Context, id string, limit, offset int) ([]models.MatchResult, error) {
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.history.ListMatches(ctx, id, limit, offset)
}

// GetWrestlerStats prefers the ingestion-maintained counters and falls back
// to aggregating match history.
func (s *wrestlerService) GetWrestlerStats(ctx context.Context, id string) (*models.WrestlerStats, error) {
	if s.counters != nil {
		rec, ok, err := s.counters.GetRecord(ctx, id)
		if err != nil {
			s.logger.Warnw("Record counter lookup failed", "rikishi_id", id, "error", err)
		}
		if err == nil && ok {
			return newWrestlerStats(id, rec, statsSourceCache), nil
		}
	}

	rec, err := s.history.Record(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("record for %s: %w", id, err)
	}
	return newWrestlerStats(id, rec, statsSourceHistory), nil
}

func newWrestlerStats(id string, rec models.WrestlerRecord, source string) *models.WrestlerStats {
	stats := &models.WrestlerStats{
		WrestlerID: id,
		Wins:       rec.Wins,
		Losses:     rec.Losses,
		Source:     source,
	}
	if rec.Total() > 0 {
		stats.WinRate = rec.WinRate()
	}
	return stats
}

func (s *wrestlerService) SearchWrestlers(ctx context.Context, query string) ([]models.Wrestler, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("search query is empty")
	}
	return s.store.SearchWrestlers(ctx, query, searchLimit)
}

// UpsertWrestlers validates and writes a roster batch. Invalid rows are
// skipped; the count written is returned.
func (s *wrestlerService) UpsertWrestlers(ctx context.Context, wrestlers []models.Wrestler) (int, error) {
	valid := make([]models.Wrestler, 0, len(wrestlers))
	for _, w := range wrestlers {
		if w.ID == "" || w.Shikona == "" || w.Rank == "" || w.DebutDate.IsZero() {
			s.logger.Warnw("Skipping invalid wrestler", "rikishi_id", w.ID)
			continue
		}
		valid = append(valid, w)
	}
	if len(valid) == 0 {
		return 0, validationError("no valid wrestlers in batch")
	}
	return s.store.UpsertWrestlers(ctx, valid)
}
