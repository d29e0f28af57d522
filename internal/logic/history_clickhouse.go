package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// ClickHouseHistory reads aggregates from sumo.match_results
type ClickHouseHistory struct {
	ch driver.Conn
}

func NewClickHouseHistory(ch driver.Conn) *ClickHouseHistory {
	return &ClickHouseHistory{ch: ch}
}

func (h *ClickHouseHistory) HeadToHead(ctx context.Context, a, b string) (models.WrestlerRecord, error) {
	var wins, losses uint64
	query := `
		SELECT countIf(winner_id = ?), countIf(winner_id = ?)
		FROM sumo.match_results FINAL
		WHERE (winner_id = ? AND loser_id = ?) OR (winner_id = ? AND loser_id = ?)
	`
	if err := h.ch.QueryRow(ctx, query, a, b, a, b, b, a).Scan(&wins, &losses); err != nil {
		return models.WrestlerRecord{}, fmt.Errorf("failed to query head to head: %w", err)
	}
	return models.WrestlerRecord{Wins: int(wins), Losses: int(losses)}, nil
}

func (h *ClickHouseHistory) RecentForm(ctx context.Context, id string, n int) (models.WrestlerRecord, error) {
	var wins, total uint64
	query := `
		SELECT countIf(winner_id = ?), count()
		FROM (
			SELECT winner_id
			FROM sumo.match_results FINAL
			WHERE winner_id = ? OR loser_id = ?
			ORDER BY timestamp DESC
			LIMIT ?
		)
	`
	if err := h.ch.QueryRow(ctx, query, id, id, id, n).Scan(&wins, &total); err != nil {
		return models.WrestlerRecord{}, fmt.Errorf("failed to query recent form: %w", err)
	}
	return models.WrestlerRecord{Wins: int(wins), Losses: int(total - wins)}, nil
}

// ListMatches returns the wrestler's bouts, newest first.
func (h *ClickHouseHistory) ListMatches(ctx context.Context, id string, limit, offset int) ([]models.MatchResult, error) {
	rows, err := h.ch.Query(ctx, `
		SELECT match_id, winner_id, loser_id, tournament, day, kimarite, timestamp
		FROM sumo.match_results FINAL
		WHERE winner_id = ? OR loser_id = ?
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`, id, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	return scanMatches(rows)
}

// ListDecisions returns the wrestler's latest wins or latest losses.
func (h *ClickHouseHistory) ListDecisions(ctx context.Context, id string, won bool, limit int) ([]models.MatchResult, error) {
	column := "loser_id"
	if won {
		column = "winner_id"
	}
	rows, err := h.ch.Query(ctx, `
		SELECT match_id, winner_id, loser_id, tournament, day, kimarite, timestamp
		FROM sumo.match_results FINAL
		WHERE `+column+` = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	return scanMatches(rows)
}

func scanMatches(rows driver.Rows) ([]models.MatchResult, error) {
	defer rows.Close()

	matches := []models.MatchResult{}
	for rows.Next() {
		var (
			m   models.MatchResult
			mid uuid.UUID
			day uint8
			ts  time.Time
		)
		if err := rows.Scan(&mid, &m.WinnerID, &m.LoserID, &m.Tournament, &day, &m.Kimarite, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.MatchID = mid
		m.Day = int(day)
		m.Timestamp = ts
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Record is the wrestler's all-time win/loss tally.
func (h *ClickHouseHistory) Record(ctx context.Context, id string) (models.WrestlerRecord, error) {
	var wins, losses uint64
	query := `
		SELECT countIf(winner_id = ?), countIf(loser_id = ?)
		FROM sumo.match_results FINAL
		WHERE winner_id = ? OR loser_id = ?
	`
	if err := h.ch.QueryRow(ctx, query, id, id, id, id).Scan(&wins, &losses); err != nil {
		return models.WrestlerRecord{}, fmt.Errorf("failed to query record: %w", err)
	}
	return models.WrestlerRecord{Wins: int(wins), Losses: int(losses)}, nil
}
