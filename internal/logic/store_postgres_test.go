package logic

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumo-yosou/predict-api/internal/models"
)

var predictionRowColumns = []string{
	"id", "user_id", "winner_id", "loser_id", "tournament", "day",
	"win_probability", "confidence", "factors", "created_at",
	"actual_winner_id", "is_correct", "result_recorded_at",
	"winner_shikona", "winner_rank", "loser_shikona", "loser_rank",
}

func TestPostgresStore_GetWrestlerNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM wrestlers WHERE id").
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)

	store := NewPostgresStore(mock)
	_, err = store.GetWrestler(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetWrestler(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	debut := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "shikona", "name", "rank", "stable", "height", "weight", "birth_date", "debut_date", "is_active"}).
		AddRow("hoshoryu", "豊昇龍", "Sugarragchaa Byambasuren", "横綱", "立浪部屋", 188.0, 149.0, (*time.Time)(nil), debut, true)
	mock.ExpectQuery("FROM wrestlers WHERE id").WithArgs("hoshoryu").WillReturnRows(rows)

	store := NewPostgresStore(mock)
	w, err := store.GetWrestler(context.Background(), "hoshoryu")
	require.NoError(t, err)
	assert.Equal(t, "豊昇龍", w.Shikona)
	assert.Equal(t, 188.0, w.Height)
	assert.Nil(t, w.BirthDate)
	assert.True(t, w.DebutDate.Equal(debut))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateAndGetPrediction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2025, 5, 18, 9, 0, 0, 0, time.UTC)
	p := &models.Prediction{
		ID: "p1", UserID: "u1", WinnerID: "hoshoryu", LoserID: "ura",
		Tournament: "2025.05", Day: 8, WinProbability: 0.7424, Confidence: 0.1,
		Factors:   models.Factors{HeadToHead: 0.15, RankAdvantage: 0.0924},
		CreatedAt: created,
	}
	factors, err := json.Marshal(p.Factors)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO predictions").
		WithArgs("p1", "u1", "hoshoryu", "ura", "2025.05", 8, 0.7424, 0.1, factors, created).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectQuery("FROM predictions p").
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows(predictionRowColumns).AddRow(
			"p1", "u1", "hoshoryu", "ura", "2025.05", 8,
			0.7424, 0.1, factors, created,
			(*string)(nil), (*bool)(nil), (*time.Time)(nil),
			"豊昇龍", "横綱", "宇良", "前頭",
		))

	store := NewPostgresStore(mock)
	ctx := context.Background()
	require.NoError(t, store.CreatePrediction(ctx, p))

	got, err := store.GetPrediction(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Factors, got.Factors)
	assert.Equal(t, p.WinProbability, got.WinProbability)
	assert.False(t, got.Resolved())
	assert.Equal(t, "宇良", got.Loser.Shikona)
	assert.Equal(t, "ura", got.Loser.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MarkResultConditional(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2025, 5, 18, 18, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE predictions").
		WithArgs("p1", "ura", false, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE predictions").
		WithArgs("p1", "hoshoryu", true, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewPostgresStore(mock)
	ctx := context.Background()
	assert.NoError(t, store.MarkResult(ctx, "p1", "ura", false, at))
	assert.ErrorIs(t, store.MarkResult(ctx, "p1", "hoshoryu", true, at), ErrAlreadyRecorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WinnerCandidatesSince(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	since := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT winner_id FROM predictions").
		WithArgs("u1", since).
		WillReturnRows(pgxmock.NewRows([]string{"winner_id"}).AddRow("a").AddRow("b").AddRow("a"))

	store := NewPostgresStore(mock)
	ids, err := store.WinnerCandidatesSince(context.Background(), "u1", since)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a"}, ids)
	assert.Len(t, distinctWinners(ids), 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2025, 5, 18, 18, 0, 0, 0, time.UTC)
	st := &models.UserPredictionStats{UserID: "u1", TotalPredictions: 4, CorrectPredictions: 3, Accuracy: 0.75, CurrentStreak: 1, BestStreak: 2, LastUpdated: now}

	mock.ExpectExec("INSERT INTO prediction_stats").
		WithArgs("u1", 4, 3, 0.75, 1, 2, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPostgresStore(mock)
	assert.NoError(t, store.UpsertStats(context.Background(), st))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetStatsMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM prediction_stats WHERE user_id").
		WithArgs("u1").
		WillReturnError(pgx.ErrNoRows)

	store := NewPostgresStore(mock)
	_, err = store.GetStats(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ranking(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "name", "is_premium", "total", "correct", "accuracy", "current", "best"}).
		AddRow("u1", "Taro", true, 10, 8, 0.8, 3, 5).
		AddRow("u2", "Hanako", false, 4, 2, 0.5, 0, 2)
	mock.ExpectQuery("FROM prediction_stats s").WithArgs(10).WillReturnRows(rows)

	store := NewPostgresStore(mock)
	entries, err := store.Ranking(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.Equal(t, 8, entries[0].CorrectPredictions)
	assert.Equal(t, 0.5, entries[1].Accuracy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT").WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("FROM predictions p").WithArgs("u1", 20, 0).
		WillReturnRows(pgxmock.NewRows(predictionRowColumns))

	store := NewPostgresStore(mock)
	preds, total, err := store.ListHistory(context.Background(), "u1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, preds)
	assert.Empty(t, preds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, "宇良", escapeLike("宇良"))
}
