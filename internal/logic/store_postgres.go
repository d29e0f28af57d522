package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// PostgresStore is the relational store for users, wrestlers, predictions
// and the materialized per-user stats. It satisfies WrestlerStore and
// PredictionStore.
type PostgresStore struct {
	pg PgPool
}

func NewPostgresStore(pg PgPool) *PostgresStore {
	return &PostgresStore{pg: pg}
}

// =============================================================================
// WRESTLERS
// =============================================================================

const wrestlerColumns = `id, shikona, COALESCE(name, ''), rank, COALESCE(stable, ''),
	height, weight, birth_date, debut_date, is_active`

func scanWrestler(row pgx.Row) (*models.Wrestler, error) {
	var w models.Wrestler
	if err := row.Scan(&w.ID, &w.Shikona, &w.Name, &w.Rank, &w.Stable,
		&w.Height, &w.Weight, &w.BirthDate, &w.DebutDate, &w.IsActive); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *PostgresStore) GetWrestler(ctx context.Context, id string) (*models.Wrestler, error) {
	row := s.pg.QueryRow(ctx, `SELECT `+wrestlerColumns+` FROM wrestlers WHERE id = $1`, id)
	w, err := scanWrestler(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("wrestler %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wrestler: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) ListActiveWrestlers(ctx context.Context) ([]models.Wrestler, error) {
	rows, err := s.pg.Query(ctx, `SELECT `+wrestlerColumns+` FROM wrestlers WHERE is_active ORDER BY shikona`)
	if err != nil {
		return nil, fmt.Errorf("failed to list wrestlers: %w", err)
	}
	return collectWrestlers(rows)
}

// SearchWrestlers matches shikona, name or stable case-insensitively.
func (s *PostgresStore) SearchWrestlers(ctx context.Context, query string, limit int) ([]models.Wrestler, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.pg.Query(ctx, `
		SELECT `+wrestlerColumns+`
		FROM wrestlers
		WHERE shikona ILIKE $1 OR name ILIKE $1 OR stable ILIKE $1
		ORDER BY is_active DESC, shikona
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search wrestlers: %w", err)
	}
	return collectWrestlers(rows)
}

func collectWrestlers(rows pgx.Rows) ([]models.Wrestler, error) {
	defer rows.Close()

	out := []models.Wrestler{}
	for rows.Next() {
		w, err := scanWrestler(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wrestler: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// UpsertWrestlers writes roster rows, overwriting mutable attributes of
// existing ones. It returns the number of rows written.
func (s *PostgresStore) UpsertWrestlers(ctx context.Context, wrestlers []models.Wrestler) (int, error) {
	written := 0
	for _, w := range wrestlers {
		_, err := s.pg.Exec(ctx, `
			INSERT INTO wrestlers (id, shikona, name, rank, stable, height, weight, birth_date, debut_date, is_active, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			ON CONFLICT (id) DO UPDATE SET
				shikona = EXCLUDED.shikona,
				name = EXCLUDED.name,
				rank = EXCLUDED.rank,
				stable = EXCLUDED.stable,
				height = EXCLUDED.height,
				weight = EXCLUDED.weight,
				birth_date = EXCLUDED.birth_date,
				debut_date = EXCLUDED.debut_date,
				is_active = EXCLUDED.is_active,
				updated_at = NOW()
		`, w.ID, w.Shikona, w.Name, w.Rank, w.Stable, w.Height, w.Weight, w.BirthDate, w.DebutDate, w.IsActive)
		if err != nil {
			return written, fmt.Errorf("failed to upsert wrestler %s: %w", w.ID, err)
		}
		written++
	}
	return written, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// =============================================================================
// USERS & PREDICTIONS
// =============================================================================

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pg.QueryRow(ctx, `SELECT id, email, COALESCE(name, ''), is_premium FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.IsPremium)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) CreatePrediction(ctx context.Context, p *models.Prediction) error {
	factors, err := json.Marshal(p.Factors)
	if err != nil {
		return fmt.Errorf("failed to encode factors: %w", err)
	}
	_, err = s.pg.Exec(ctx, `
		INSERT INTO predictions (id, user_id, winner_id, loser_id, tournament, day, win_probability, confidence, factors, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.UserID, p.WinnerID, p.LoserID, p.Tournament, p.Day, p.WinProbability, p.Confidence, factors, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

const predictionSelect = `
	SELECT p.id, p.user_id, p.winner_id, p.loser_id, p.tournament, p.day,
	       p.win_probability, p.confidence, p.factors, p.created_at,
	       p.actual_winner_id, p.is_correct, p.result_recorded_at,
	       COALESCE(w.shikona, ''), COALESCE(w.rank, ''),
	       COALESCE(l.shikona, ''), COALESCE(l.rank, '')
	FROM predictions p
	LEFT JOIN wrestlers w ON w.id = p.winner_id
	LEFT JOIN wrestlers l ON l.id = p.loser_id`

func scanPrediction(row pgx.Row) (*models.Prediction, error) {
	var (
		p       models.Prediction
		factors []byte
		winner  models.WrestlerSummary
		loser   models.WrestlerSummary
	)
	err := row.Scan(&p.ID, &p.UserID, &p.WinnerID, &p.LoserID, &p.Tournament, &p.Day,
		&p.WinProbability, &p.Confidence, &factors, &p.CreatedAt,
		&p.ActualWinnerID, &p.IsCorrect, &p.ResultRecordedAt,
		&winner.Shikona, &winner.Rank, &loser.Shikona, &loser.Rank)
	if err != nil {
		return nil, err
	}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &p.Factors); err != nil {
			return nil, fmt.Errorf("failed to decode factors: %w", err)
		}
	}
	winner.ID, loser.ID = p.WinnerID, p.LoserID
	p.Winner, p.Loser = &winner, &loser
	return &p, nil
}

func collectPredictions(rows pgx.Rows) ([]models.Prediction, error) {
	defer rows.Close()

	out := []models.Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetPrediction(ctx context.Context, id string) (*models.Prediction, error) {
	p, err := scanPrediction(s.pg.QueryRow(ctx, predictionSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("prediction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// ListPredictions returns one tournament day's predictions, most likely first.
func (s *PostgresStore) ListPredictions(ctx context.Context, f PredictionFilter) ([]models.Prediction, error) {
	query := predictionSelect + ` WHERE p.tournament = $1 AND p.day = $2`
	args := []any{f.Tournament, f.Day}
	if f.UserID != "" {
		query += ` AND p.user_id = $3`
		args = append(args, f.UserID)
	}
	query += ` ORDER BY p.win_probability DESC, p.created_at`

	rows, err := s.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return collectPredictions(rows)
}

func (s *PostgresStore) ListHistory(ctx context.Context, userID string, limit, offset int) ([]models.Prediction, int, error) {
	var total int
	if err := s.pg.QueryRow(ctx, `SELECT COUNT(*) FROM predictions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count predictions: %w", err)
	}

	rows, err := s.pg.Query(ctx, predictionSelect+`
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list history: %w", err)
	}
	preds, err := collectPredictions(rows)
	if err != nil {
		return nil, 0, err
	}
	return preds, total, nil
}

func (s *PostgresStore) WinnerCandidatesSince(ctx context.Context, userID string, since time.Time) ([]string, error) {
	rows, err := s.pg.Query(ctx, `SELECT winner_id FROM predictions WHERE user_id = $1 AND created_at >= $2`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list winner candidates: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan winner candidate: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkResult is a conditional write: a prediction whose result is already
// recorded is left untouched.
func (s *PostgresStore) MarkResult(ctx context.Context, id, actualWinnerID string, isCorrect bool, at time.Time) error {
	tag, err := s.pg.Exec(ctx, `
		UPDATE predictions
		SET actual_winner_id = $2, is_correct = $3, result_recorded_at = $4
		WHERE id = $1 AND result_recorded_at IS NULL
	`, id, actualWinnerID, isCorrect, at)
	if err != nil {
		return fmt.Errorf("failed to update prediction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyRecorded
	}
	return nil
}

func (s *PostgresStore) ListResolved(ctx context.Context, userID string) ([]models.Prediction, error) {
	rows, err := s.pg.Query(ctx, predictionSelect+`
		WHERE p.user_id = $1 AND p.result_recorded_at IS NOT NULL
		ORDER BY p.result_recorded_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resolved predictions: %w", err)
	}
	return collectPredictions(rows)
}

// =============================================================================
// STATS
// =============================================================================

func (s *PostgresStore) UpsertStats(ctx context.Context, st *models.UserPredictionStats) error {
	_, err := s.pg.Exec(ctx, `
		INSERT INTO prediction_stats (user_id, total_predictions, correct_predictions, accuracy, current_streak, best_streak, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			total_predictions = EXCLUDED.total_predictions,
			correct_predictions = EXCLUDED.correct_predictions,
			accuracy = EXCLUDED.accuracy,
			current_streak = EXCLUDED.current_streak,
			best_streak = EXCLUDED.best_streak,
			last_updated = EXCLUDED.last_updated
	`, st.UserID, st.TotalPredictions, st.CorrectPredictions, st.Accuracy, st.CurrentStreak, st.BestStreak, st.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to upsert stats: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetStats(ctx context.Context, userID string) (*models.UserPredictionStats, error) {
	var st models.UserPredictionStats
	err := s.pg.QueryRow(ctx, `
		SELECT user_id, total_predictions, correct_predictions, accuracy, current_streak, best_streak, last_updated
		FROM prediction_stats WHERE user_id = $1
	`, userID).Scan(&st.UserID, &st.TotalPredictions, &st.CorrectPredictions, &st.Accuracy,
		&st.CurrentStreak, &st.BestStreak, &st.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("stats for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &st, nil
}

// Ranking lists users with at least one resolved prediction, best accuracy first.
func (s *PostgresStore) Ranking(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT u.id, COALESCE(u.name, ''), u.is_premium,
		       s.total_predictions, s.correct_predictions, s.accuracy, s.current_streak, s.best_streak
		FROM prediction_stats s
		JOIN users u ON u.id = s.user_id
		WHERE s.total_predictions > 0
		ORDER BY s.accuracy DESC, s.correct_predictions DESC, s.total_predictions DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	defer rows.Close()

	entries := []models.RankingEntry{}
	for rows.Next() {
		var e models.RankingEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.IsPremium, &e.TotalPredictions, &e.CorrectPredictions,
			&e.Accuracy, &e.CurrentStreak, &e.BestStreak); err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
