package worker

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// NormalizeMatch converts an ingested bout into a storable MatchResult.
// receivedAt is the wall-clock time the request arrived, used when the
// payload carries no usable timestamp.
func NormalizeMatch(in models.MatchIngest, receivedAt time.Time) models.MatchResult {
	winner := normalizeID(in.WinnerID)
	loser := normalizeID(in.LoserID)
	tournament := strings.TrimSpace(in.Tournament)

	// Upstream feeds reuse ids across tournaments, so anything that is not
	// a UUID is hashed from the bout's natural key to keep re-ingestion idempotent.
	matchID, err := uuid.Parse(strings.TrimSpace(in.MatchID))
	if err != nil {
		key := fmt.Sprintf("%s|%d|%s|%s|%s", tournament, in.Day, winner, loser, strings.TrimSpace(in.MatchID))
		matchID = uuid.NewMD5(uuid.Nil, []byte(key))
	}

	return models.MatchResult{
		MatchID:    matchID,
		WinnerID:   winner,
		LoserID:    loser,
		Tournament: tournament,
		Day:        in.Day,
		Kimarite:   normalizeLabel(in.Kimarite),
		Timestamp:  matchTime(in, receivedAt),
	}
}

// matchTime prefers unix seconds, then an RFC3339 string, then receivedAt.
func matchTime(in models.MatchIngest, receivedAt time.Time) time.Time {
	if in.Timestamp > 0 {
		sec := int64(in.Timestamp)
		nsec := int64((in.Timestamp - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC()
	}
	if in.Time != "" {
		if ts, err := time.Parse(time.RFC3339, in.Time); err == nil {
			return ts.UTC()
		}
	}
	return receivedAt.UTC()
}

func normalizeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeLabel drops control characters and collapses runs of whitespace.
// Scraped kimarite names often carry stray tabs and non-breaking spaces.
func normalizeLabel(s string) string {
	if s == "" {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
			// dropped
		default:
			if space && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			space = false
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
