package logic

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sumo-yosou/predict-api/internal/models"
)

const defaultRecentFormWindow = 10

// EngineConfig wires the prediction engine to its collaborators
type EngineConfig struct {
	Wrestlers  WrestlerStore
	History    MatchHistory
	Logger     *zap.SugaredLogger
	FormWindow int           // recent-form sample size per wrestler
	Timeout    time.Duration // upper bound for all lookups of one prediction
}

// Engine scores a nominated (winner, loser) pairing from historical data.
// Scoring is best effort: any lookup failure yields FallbackResult.
type Engine struct {
	wrestlers  WrestlerStore
	history    MatchHistory
	logger     *zap.SugaredLogger
	formWindow int
	timeout    time.Duration
	now        func() time.Time
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.FormWindow <= 0 {
		cfg.FormWindow = defaultRecentFormWindow
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Engine{
		wrestlers:  cfg.Wrestlers,
		history:    cfg.History,
		logger:     cfg.Logger,
		formWindow: cfg.FormWindow,
		timeout:    cfg.Timeout,
		now:        time.Now,
	}
}

// Predict scores the nomination that winnerID beats loserID on the given
// tournament day. It never fails; errors are logged and replaced by the
// neutral fallback.
func (e *Engine) Predict(ctx context.Context, winnerID, loserID, tournament string, day int) models.PredictionResult {
	start := time.Now()
	defer func() { scoringDuration.Observe(time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	in, stage, err := e.gather(ctx, winnerID, loserID)
	if err != nil {
		engineFallbacks.WithLabelValues(stage).Inc()
		e.logger.Warnw("Prediction scoring fell back to neutral result",
			"winner_id", winnerID,
			"loser_id", loserID,
			"tournament", tournament,
			"day", day,
			"stage", stage,
			"error", err,
		)
		return FallbackResult()
	}

	return Score(in)
}

// gather loads both wrestlers, then issues the three history lookups
// concurrently. The returned stage names the step that failed.
func (e *Engine) gather(ctx context.Context, winnerID, loserID string) (FactorInputs, string, error) {
	in := FactorInputs{Now: e.now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := e.wrestlers.GetWrestler(gctx, winnerID)
		if err != nil {
			return fmt.Errorf("winner %s: %w", winnerID, err)
		}
		in.Winner = w
		return nil
	})
	g.Go(func() error {
		w, err := e.wrestlers.GetWrestler(gctx, loserID)
		if err != nil {
			return fmt.Errorf("loser %s: %w", loserID, err)
		}
		in.Loser = w
		return nil
	})
	if err := g.Wait(); err != nil {
		return in, "wrestlers", err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := e.history.HeadToHead(gctx, winnerID, loserID)
		if err != nil {
			return fmt.Errorf("head to head: %w", err)
		}
		in.HeadToHead = rec
		return nil
	})
	g.Go(func() error {
		rec, err := e.history.RecentForm(gctx, winnerID, e.formWindow)
		if err != nil {
			return fmt.Errorf("winner recent form: %w", err)
		}
		in.WinnerForm = rec
		return nil
	})
	g.Go(func() error {
		rec, err := e.history.RecentForm(gctx, loserID, e.formWindow)
		if err != nil {
			return fmt.Errorf("loser recent form: %w", err)
		}
		in.LoserForm = rec
		return nil
	})
	if err := g.Wait(); err != nil {
		return in, "history", err
	}

	return in, "", nil
}
