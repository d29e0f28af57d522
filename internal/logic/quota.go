package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// DefaultFreeMonthlyLimit is the number of distinct winner-candidates a
// free user may predict per calendar month.
const DefaultFreeMonthlyLimit = 3

// QuotaGuard gates free-tier users by the distinct winner-candidates they
// have nominated since the start of the current month. Checks read then
// write without a lock, so concurrent creates may narrowly exceed the limit.
// Reads are denied only above the limit, not at it (see allowRead).
type QuotaGuard struct {
	store PredictionStore
	limit int
	now   func() time.Time
}

func NewQuotaGuard(store PredictionStore, limit int) *QuotaGuard {
	if limit <= 0 {
		limit = DefaultFreeMonthlyLimit
	}
	return &QuotaGuard{store: store, limit: limit, now: time.Now}
}

// distinctWinners builds the set of winner-candidate ids.
func distinctWinners(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// monthStart is midnight on the first day of now's month, in now's location.
func monthStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

// allowCreate reports whether a new prediction for candidate fits the quota.
func allowCreate(used map[string]struct{}, candidate string, limit int) bool {
	if _, ok := used[candidate]; ok {
		return true
	}
	return len(used) < limit
}

// allowRead denies reads only once the user is already past the limit, so a
// user at exactly the limit can still list the predictions they may re-make.
// The earlier web backend denied reads at the limit itself.
func allowRead(used map[string]struct{}, limit int) bool {
	return len(used) <= limit
}

func (q *QuotaGuard) usedThisMonth(ctx context.Context, userID string) (map[string]struct{}, error) {
	ids, err := q.store.WinnerCandidatesSince(ctx, userID, monthStart(q.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly predictions: %w", err)
	}
	return distinctWinners(ids), nil
}

// CheckCreate returns a *QuotaError when a free user may not nominate candidate.
func (q *QuotaGuard) CheckCreate(ctx context.Context, user *models.User, candidate string) error {
	if user.IsPremium {
		return nil
	}
	used, err := q.usedThisMonth(ctx, user.ID)
	if err != nil {
		return err
	}
	if !allowCreate(used, candidate, q.limit) {
		quotaDenials.WithLabelValues("create").Inc()
		return &QuotaError{Limit: q.limit, Used: len(used)}
	}
	return nil
}

// CheckRead returns a *QuotaError when a free user is over quota.
func (q *QuotaGuard) CheckRead(ctx context.Context, user *models.User) error {
	if user.IsPremium {
		return nil
	}
	used, err := q.usedThisMonth(ctx, user.ID)
	if err != nil {
		return err
	}
	if !allowRead(used, q.limit) {
		quotaDenials.WithLabelValues("read").Inc()
		return &QuotaError{Limit: q.limit, Used: len(used)}
	}
	return nil
}
