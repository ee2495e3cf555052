package billing

import (
	"testing"
	"time"

	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func creditGrantedAt(t *testing.T, amount float64, grantedAt time.Time) *Credit {
	c := createTestCredit(t, amount)
	c.CreatedAt = grantedAt
	return c
}

func TestPlanCreditAllocation_OldestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older := creditGrantedAt(t, 100, base)
	newer := creditGrantedAt(t, 100, base.AddDate(0, 0, 5))

	// Pass them newest-first to prove the planner re-orders
	plan, err := PlanCreditAllocation(valueobject.NewMoneyPHPFromFloat(150), []*Credit{newer, older})
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, older.ID, plan.Allocations[0].CreditID)
	assert.True(t, plan.Allocations[0].Amount.Equal(decimal.NewFromInt(100)), "oldest credit drained first")
	assert.Equal(t, newer.ID, plan.Allocations[1].CreditID)
	assert.True(t, plan.Allocations[1].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, plan.IsFull())
}

func TestPlanCreditAllocation_TieBreakByCreditID(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := creditGrantedAt(t, 100, base)
	b := creditGrantedAt(t, 100, base)
	first, second := a, b
	if b.ID.String() < a.ID.String() {
		first, second = b, a
	}

	plan, err := PlanCreditAllocation(valueobject.NewMoneyPHPFromFloat(120), []*Credit{second, first})
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, first.ID, plan.Allocations[0].CreditID)
	assert.Equal(t, second.ID, plan.Allocations[1].CreditID)
}

func TestPlanCreditAllocation_PartialCoverage(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	only := creditGrantedAt(t, 80, base)

	plan, err := PlanCreditAllocation(valueobject.NewMoneyPHPFromFloat(200), []*Credit{only})
	require.NoError(t, err)

	assert.True(t, plan.Allocated.Equal(decimal.NewFromInt(80)))
	assert.True(t, plan.Shortfall.Equal(decimal.NewFromInt(120)))
	assert.False(t, plan.IsFull())
}

func TestPlanCreditAllocation_SkipsClosedCredits(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	depleted := creditGrantedAt(t, 50, base)
	require.NoError(t, depleted.Consume(uuid.New(), valueobject.NewMoneyPHPFromFloat(50), base))
	revoked := creditGrantedAt(t, 50, base.AddDate(0, 0, 1))
	_, err := revoked.RevokeUnused(base)
	require.NoError(t, err)
	open := creditGrantedAt(t, 50, base.AddDate(0, 0, 2))

	plan, err := PlanCreditAllocation(valueobject.NewMoneyPHPFromFloat(40), []*Credit{depleted, revoked, open})
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, open.ID, plan.Allocations[0].CreditID)
}

func TestPlanCreditAllocation_UsesRemainders(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	partiallyUsed := creditGrantedAt(t, 100, base)
	require.NoError(t, partiallyUsed.Consume(uuid.New(), valueobject.NewMoneyPHPFromFloat(70), base))

	plan, err := PlanCreditAllocation(valueobject.NewMoneyPHPFromFloat(30), []*Credit{partiallyUsed})
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 1)
	assert.True(t, plan.Allocations[0].Amount.Equal(decimal.NewFromInt(30)))
	assert.True(t, plan.IsFull())
}

func TestPlanCreditAllocation_Errors(t *testing.T) {
	t.Run("zero amount", func(t *testing.T) {
		_, err := PlanCreditAllocation(valueobject.ZeroPHP(), nil)
		assert.Error(t, err)
	})

	t.Run("no credits means full shortfall", func(t *testing.T) {
		plan, err := PlanCreditAllocation(valueobject.NewMoneyPHPFromFloat(100), nil)
		require.NoError(t, err)
		assert.Empty(t, plan.Allocations)
		assert.True(t, plan.Shortfall.Equal(decimal.NewFromInt(100)))
	})
}
