package gateway

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/smallbiznis/recurrent/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGateway_AlwaysApproves(t *testing.T) {
	g := NewMockGateway(rand.NewSource(1), 1.0)

	for i := 0; i < 50; i++ {
		outcome, err := g.Charge(context.Background(), "tok_test", 5000)
		require.NoError(t, err)
		assert.True(t, outcome.Approved())

		txID, err := strconv.Atoi(outcome.TransactionID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, txID, 1000)
		assert.Less(t, txID, 10000)
		assert.Empty(t, outcome.ReasonCode)
	}
}

func TestMockGateway_DeclineCarriesReasonCode(t *testing.T) {
	g := NewMockGateway(rand.NewSource(1), 1.0)
	g.successRate = 0

	outcome, err := g.Charge(context.Background(), "tok_test", 5000)
	require.NoError(t, err)
	assert.False(t, outcome.Approved())
	assert.Equal(t, "insufficient_funds", outcome.ReasonCode)
	assert.Empty(t, outcome.TransactionID)
}

func TestMockGateway_DefaultRate(t *testing.T) {
	g := NewMockGateway(rand.NewSource(1), 0)
	assert.Equal(t, defaultSuccessRate, g.successRate)

	g = NewMockGateway(rand.NewSource(1), 1.5)
	assert.Equal(t, defaultSuccessRate, g.successRate)
}

func TestMockGateway_InputValidation(t *testing.T) {
	g := NewMockGateway(rand.NewSource(1), 1.0)

	_, err := g.Charge(context.Background(), "tok_test", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = g.Charge(context.Background(), "  ", 5000)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestMockGateway_ApproximatesConfiguredRate(t *testing.T) {
	g := NewMockGateway(rand.NewSource(42), 0.7)

	approved := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		outcome, err := g.Charge(context.Background(), "tok_test", 100)
		require.NoError(t, err)
		if outcome.Approved() {
			approved++
		}
	}
	assert.InDelta(t, 0.7, float64(approved)/trials, 0.05)
}
