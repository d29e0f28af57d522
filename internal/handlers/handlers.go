package handlers

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sumo-yosou/predict-api/internal/logic"
	"github.com/sumo-yosou/predict-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// IngestQueue defines the interface for the match ingestion worker pool
type IngestQueue interface {
	Enqueue(match models.MatchResult) bool
	QueueDepth() int
}

// Pinger is any dependency the readiness probe can check
type Pinger interface {
	Ping(ctx context.Context) error
}

// RateLimiter admits or rejects a request counted against key
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Config struct {
	WorkerPool IngestQueue
	Postgres   logic.PgPool
	ClickHouse driver.Conn
	Checks     map[string]Pinger
	Logger     *zap.Logger

	JWTSecret   []byte
	IngestToken string

	// Services
	Predictions logic.PredictionService
	Wrestlers   logic.WrestlerService
}

type Handler struct {
	pool        IngestQueue
	pg          logic.PgPool
	ch          driver.Conn
	checks      map[string]Pinger
	logger      *zap.SugaredLogger
	validator   *validator.Validate
	jwtSecret   []byte
	ingestToken string
	predictions logic.PredictionService
	wrestlers   logic.WrestlerService
	now         func() time.Time
}

func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		pool:        cfg.WorkerPool,
		pg:          cfg.Postgres,
		ch:          cfg.ClickHouse,
		checks:      cfg.Checks,
		logger:      logger.Sugar(),
		validator:   validator.New(),
		jwtSecret:   cfg.JWTSecret,
		ingestToken: cfg.IngestToken,
		predictions: cfg.Predictions,
		wrestlers:   cfg.Wrestlers,
		now:         time.Now,
	}
}
