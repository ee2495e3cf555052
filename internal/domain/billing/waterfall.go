package billing

import (
	"sort"
	"strings"

	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditAllocation is one planned draw against a specific credit
type CreditAllocation struct {
	CreditID uuid.UUID
	Amount   decimal.Decimal
}

// AllocationPlan is the outcome of the credit waterfall: which credits to
// draw from, how much of the requested amount is covered and what remains.
type AllocationPlan struct {
	Allocations []CreditAllocation
	Allocated   decimal.Decimal
	Shortfall   decimal.Decimal
}

// IsFull reports whether the requested amount was covered entirely
func (p AllocationPlan) IsFull() bool {
	return p.Shortfall.IsZero()
}

// PlanCreditAllocation runs the waterfall over the available credits: oldest
// grant first, credit ID as the tie-break for equal grant times. Each credit
// is drawn down to its remainder before the next is touched. The plan is pure;
// applying it to the aggregates is the caller's transaction.
func PlanCreditAllocation(toApply valueobject.Money, credits []*Credit) (AllocationPlan, error) {
	if !toApply.IsPositive() {
		return AllocationPlan{}, shared.NewDomainError("INVALID_AMOUNT", "Amount to allocate must be positive")
	}

	ordered := make([]*Credit, 0, len(credits))
	for _, c := range credits {
		if c.IsOpen() {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return strings.Compare(ordered[i].ID.String(), ordered[j].ID.String()) < 0
	})

	plan := AllocationPlan{Allocated: decimal.Zero}
	remaining := toApply.Amount()
	for _, c := range ordered {
		if !remaining.IsPositive() {
			break
		}
		draw := decimal.Min(remaining, c.RemainingAmount())
		plan.Allocations = append(plan.Allocations, CreditAllocation{CreditID: c.ID, Amount: draw})
		plan.Allocated = plan.Allocated.Add(draw)
		remaining = remaining.Sub(draw)
	}
	plan.Shortfall = remaining
	return plan, nil
}
