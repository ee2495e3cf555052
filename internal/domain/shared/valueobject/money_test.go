package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney_CurrencyValidation(t *testing.T) {
	_, err := NewMoney(decimal.NewFromInt(10), Currency("XYZ"))
	assert.Error(t, err)

	m, err := NewMoney(decimal.NewFromInt(10), PHP)
	require.NoError(t, err)
	assert.Equal(t, PHP, m.Currency())
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyPHPFromFloat(100.50)
	b := NewMoneyPHPFromFloat(25.25)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(125.75)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromFloat(75.25)))

	// Subtraction below zero is allowed; the caller decides what negative means
	neg, err := b.Subtract(a)
	require.NoError(t, err)
	assert.True(t, neg.IsNegative())
}

func TestMoney_Min(t *testing.T) {
	a := NewMoneyPHPFromFloat(100)
	b := NewMoneyPHPFromFloat(60)

	assert.True(t, a.Min(b).Amount().Equal(decimal.NewFromInt(60)))
	assert.True(t, b.Min(a).Amount().Equal(decimal.NewFromInt(60)))
}

func TestMoney_Comparisons(t *testing.T) {
	a := NewMoneyPHPFromFloat(100)
	b := NewMoneyPHPFromFloat(60)

	assert.True(t, a.GreaterThan(b))
	assert.False(t, b.GreaterThan(a))
	assert.True(t, b.LessThanOrEqual(a))
	assert.True(t, a.LessThanOrEqual(a))
	assert.True(t, a.Equals(NewMoneyPHPFromFloat(100)))
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, ZeroPHP().IsZero())
	assert.True(t, NewMoneyPHPFromFloat(1).IsPositive())
	assert.True(t, NewMoneyPHPFromFloat(-1).IsNegative())
	assert.False(t, ZeroPHP().IsPositive())
}

func TestMoney_FromString(t *testing.T) {
	m, err := NewMoneyPHPFromString("1234.56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", m.StringFixed(2))

	_, err = NewMoneyPHPFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyPHPFromFloat(99.99)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equals(back))
}
