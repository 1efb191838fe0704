package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanForAmount(t *testing.T) {
	tests := []struct {
		amount   int64
		wantDays int
		wantOK   bool
	}{
		{100, 30, true},
		{200, 60, true},
		{300, 90, true},
		{0, 0, false},
		{150, 0, false},
		{400, 0, false},
		{-100, 0, false},
	}

	for _, tt := range tests {
		p, ok := PlanForAmount(tt.amount)
		assert.Equal(t, tt.wantOK, ok, "amount %d", tt.amount)
		assert.Equal(t, tt.wantDays, p.Days, "amount %d", tt.amount)
	}
}
