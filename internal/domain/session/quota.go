package session

import (
	"context"
	"fmt"

	"voiceagent-server/internal/domain/user"
)

// PlanLimits maps each plan tier to its per-agent concurrent-session
// ceiling. Free is intentionally looser than pro and business; this mirrors
// the configured policy and must not be "corrected".
var PlanLimits = map[user.Plan]int64{
	user.PlanFree:     500,
	user.PlanPro:      20,
	user.PlanBusiness: 100,
}

// QuotaDecision is the outcome of a quota check. Reason is set only on
// denial and is safe to show to the end user.
type QuotaDecision struct {
	Allowed bool
	Reason  string
}

// QuotaEvaluator decides whether an agent may admit another concurrent
// session under its owner's plan.
//
// The check and the subsequent session insert are two separate round-trips
// with no transaction between them, so concurrent admissions can briefly
// exceed the ceiling. The limit is a documented soft bound.
type QuotaEvaluator struct {
	store Store
}

func NewQuotaEvaluator(store Store) *QuotaEvaluator {
	return &QuotaEvaluator{store: store}
}

// Evaluate counts the agent's active sessions against the plan ceiling.
// Unknown plans fall back to the free tier's limit.
func (q *QuotaEvaluator) Evaluate(ctx context.Context, agentID string, plan user.Plan) (QuotaDecision, error) {
	limit, ok := PlanLimits[plan]
	if !ok {
		limit = PlanLimits[user.PlanFree]
	}

	active, err := q.store.CountActive(ctx, agentID)
	if err != nil {
		return QuotaDecision{}, fmt.Errorf("count active sessions: %w", err)
	}

	if active >= limit {
		return QuotaDecision{
			Allowed: false,
			Reason: fmt.Sprintf(
				"Concurrent session limit reached for your plan (%s: max %d sessions). Upgrade to increase your limit.",
				plan, limit),
		}, nil
	}
	return QuotaDecision{Allowed: true}, nil
}
