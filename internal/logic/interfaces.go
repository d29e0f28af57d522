package logic

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// WrestlerStore reads and upserts the rikishi roster
type WrestlerStore interface {
	GetWrestler(ctx context.Context, id string) (*models.Wrestler, error)
	ListActiveWrestlers(ctx context.Context) ([]models.Wrestler, error)
	SearchWrestlers(ctx context.Context, query string, limit int) ([]models.Wrestler, error)
	UpsertWrestlers(ctx context.Context, wrestlers []models.Wrestler) (int, error)
}

// MatchHistory is the read side of the immutable match results store
type MatchHistory interface {
	// HeadToHead counts meetings between a and b in either order, from a's side.
	HeadToHead(ctx context.Context, a, b string) (models.WrestlerRecord, error)
	// RecentForm tallies the wrestler's latest n matches against any opponent.
	RecentForm(ctx context.Context, id string, n int) (models.WrestlerRecord, error)
	ListMatches(ctx context.Context, id string, limit, offset int) ([]models.MatchResult, error)
	// ListDecisions returns the wrestler's latest wins (won) or losses, newest first.
	ListDecisions(ctx context.Context, id string, won bool, limit int) ([]models.MatchResult, error)
	Record(ctx context.Context, id string) (models.WrestlerRecord, error)
}

// PredictionFilter selects predictions for one tournament day.
// An empty UserID selects every user's predictions.
type PredictionFilter struct {
	UserID     string
	Tournament string
	Day        int
}

// PredictionStore persists predictions and the per-user stats view
type PredictionStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreatePrediction(ctx context.Context, p *models.Prediction) error
	GetPrediction(ctx context.Context, id string) (*models.Prediction, error)
	ListPredictions(ctx context.Context, f PredictionFilter) ([]models.Prediction, error)
	ListHistory(ctx context.Context, userID string, limit, offset int) ([]models.Prediction, int, error)
	// WinnerCandidatesSince returns winner-candidate ids of the user's
	// predictions created at or after since. Ids may repeat.
	WinnerCandidatesSince(ctx context.Context, userID string, since time.Time) ([]string, error)
	// MarkResult writes the result sub-state only if it is still unset and
	// returns ErrAlreadyRecorded otherwise.
	MarkResult(ctx context.Context, id, actualWinnerID string, isCorrect bool, at time.Time) error
	// ListResolved returns the user's resolved predictions, oldest result first.
	ListResolved(ctx context.Context, userID string) ([]models.Prediction, error)
	UpsertStats(ctx context.Context, s *models.UserPredictionStats) error
	GetStats(ctx context.Context, userID string) (*models.UserPredictionStats, error)
	Ranking(ctx context.Context, limit int) ([]models.RankingEntry, error)
}

// Locker serializes work on a key across API replicas.
type Locker interface {
	// AcquireWait blocks up to wait for the lock and returns its release func.
	AcquireWait(ctx context.Context, key string, ttl, wait time.Duration) (func(), error)
}

// RecordCounter holds per-wrestler win/loss counters maintained by ingestion
type RecordCounter interface {
	GetRecord(ctx context.Context, id string) (models.WrestlerRecord, bool, error)
}

// PredictionService is the prediction API surface used by the handlers
type PredictionService interface {
	GetPredictions(ctx context.Context, who models.Identity, tournament string, day int) ([]models.Prediction, error)
	CreatePrediction(ctx context.Context, who models.Identity, req models.CreatePredictionRequest) (*models.Prediction, error)
	GetPrediction(ctx context.Context, who models.Identity, id string) (*models.Prediction, error)
	RecordResult(ctx context.Context, who models.Identity, id, actualWinnerID string) (*models.Prediction, error)
	GetStats(ctx context.Context, who models.Identity) (*models.UserPredictionStats, error)
	GetRanking(ctx context.Context, limit int) ([]models.RankingEntry, error)
	GetHistory(ctx context.Context, who models.Identity, page, limit int) (*models.PredictionHistory, error)
}

// WrestlerService serves the public rikishi pages
type WrestlerService interface {
	ListWrestlers(ctx context.Context) ([]models.Wrestler, error)
	GetWrestlerDetail(ctx context.Context, id string) (*models.WrestlerDetail, error)
	GetWrestlerMatches(ctx context.Context, id string, limit, offset int) ([]models.MatchResult, error)
	GetWrestlerStats(ctx context.Context, id string) (*models.WrestlerStats, error)
	SearchWrestlers(ctx context.Context, query string) ([]models.Wrestler, error)
	UpsertWrestlers(ctx context.Context, wrestlers []models.Wrestler) (int, error)
}
