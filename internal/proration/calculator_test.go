package proration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		priceCents int64
		cancelAt   time.Time
		want       int64
	}{
		{
			name:       "ten days in refunds two thirds",
			priceCents: 5000,
			cancelAt:   start.AddDate(0, 0, 10),
			want:       3333,
		},
		{
			name:       "same day refunds full price",
			priceCents: 5000,
			cancelAt:   start,
			want:       5000,
		},
		{
			name:       "thirty days in refunds nothing",
			priceCents: 5000,
			cancelAt:   start.AddDate(0, 0, 30),
			want:       0,
		},
		{
			name:       "beyond the window refunds nothing",
			priceCents: 5000,
			cancelAt:   start.AddDate(0, 2, 0),
			want:       0,
		},
		{
			name:       "partial day does not count as elapsed",
			priceCents: 5000,
			cancelAt:   start.Add(36 * time.Hour),
			want:       4833,
		},
		{
			name:       "cancel before start clamps to zero elapsed",
			priceCents: 5000,
			cancelAt:   start.Add(-24 * time.Hour),
			want:       5000,
		},
		{
			name:       "half cent rounds up",
			priceCents: 45,
			cancelAt:   start.AddDate(0, 0, 15),
			want:       23,
		},
		{
			name:       "zero price refunds nothing",
			priceCents: 0,
			cancelAt:   start.AddDate(0, 0, 10),
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.priceCents, start, tt.cancelAt)
			assert.Equal(t, tt.want, got)
		})
	}
}
