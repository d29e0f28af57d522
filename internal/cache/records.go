package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// RecordCounter keeps all-time win/loss tallies per rikishi in a Redis hash,
// incremented by match ingestion.
type RecordCounter struct {
	rdb *redis.Client
}

func NewRecordCounter(c *Client) *RecordCounter {
	return &RecordCounter{rdb: c.Underlying()}
}

func recordKey(id string) string {
	return "rikishi:" + id + ":record"
}

// Apply increments the winner's wins and the loser's losses for each match
// in one pipeline.
func (rc *RecordCounter) Apply(ctx context.Context, matches []models.MatchResult) error {
	if len(matches) == 0 {
		return nil
	}
	pipe := rc.rdb.Pipeline()
	for _, m := range matches {
		pipe.HIncrBy(ctx, recordKey(m.WinnerID), "wins", 1)
		pipe.HIncrBy(ctx, recordKey(m.LoserID), "losses", 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: apply records: %w", err)
	}
	return nil
}

// GetRecord returns the cached tally. ok is false when nothing is cached.
func (rc *RecordCounter) GetRecord(ctx context.Context, id string) (models.WrestlerRecord, bool, error) {
	vals, err := rc.rdb.HGetAll(ctx, recordKey(id)).Result()
	if err != nil {
		return models.WrestlerRecord{}, false, fmt.Errorf("redis: get record %s: %w", id, err)
	}
	return parseRecord(vals)
}

func parseRecord(vals map[string]string) (models.WrestlerRecord, bool, error) {
	if len(vals) == 0 {
		return models.WrestlerRecord{}, false, nil
	}
	var rec models.WrestlerRecord
	for field, dst := range map[string]*int{"wins": &rec.Wins, "losses": &rec.Losses} {
		raw, ok := vals[field]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.WrestlerRecord{}, false, fmt.Errorf("redis: bad %s count %q: %w", field, raw, err)
		}
		*dst = n
	}
	return rec, true, nil
}
