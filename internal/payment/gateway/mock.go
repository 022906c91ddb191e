package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/smallbiznis/recurrent/internal/payment/domain"
)

const defaultSuccessRate = 0.7

// MockGateway simulates a card network with a fixed approval probability.
// It stands in for a real gateway in development and tests; swap it for
// HTTPGateway behind the same Authorizer contract in production.
type MockGateway struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
}

// NewMockGateway builds a mock authorizer approving successRate of charges.
// Pass a seeded rand.Source for deterministic test behavior.
func NewMockGateway(src rand.Source, successRate float64) *MockGateway {
	if successRate <= 0 || successRate > 1 {
		successRate = defaultSuccessRate
	}
	return &MockGateway{
		rng:         rand.New(src),
		successRate: successRate,
	}
}

func (g *MockGateway) Charge(ctx context.Context, token string, amountCents int64) (domain.Outcome, error) {
	if amountCents <= 0 {
		return domain.Outcome{}, domain.ErrInvalidAmount
	}
	if strings.TrimSpace(token) == "" {
		return domain.Outcome{}, domain.ErrInvalidToken
	}

	g.mu.Lock()
	roll := g.rng.Float64()
	txID := 1000 + g.rng.Intn(9000)
	g.mu.Unlock()

	if roll < g.successRate {
		return domain.Outcome{
			Status:        domain.OutcomeSuccess,
			TransactionID: fmt.Sprintf("%d", txID),
		}, nil
	}
	return domain.Outcome{
		Status:     domain.OutcomeFailed,
		ReasonCode: "insufficient_funds",
	}, nil
}
