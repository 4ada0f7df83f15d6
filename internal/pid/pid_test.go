package pid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTerms(t *testing.T) {
	tests := []struct {
		name     string
		gains    Gains
		setpoint float64
		measured float64
		dt       float64
		want     float64
	}{
		{
			name:     "proportional only",
			gains:    Gains{Kp: 2, Limit: 1},
			setpoint: 1.0,
			measured: 0.25,
			dt:       0.05,
			want:     1.5,
		},
		{
			name:     "integral accumulates error times dt",
			gains:    Gains{Ki: 10, Limit: 1},
			setpoint: 0.5,
			measured: 0.3,
			dt:       0.1,
			want:     10 * 0.2 * 0.1,
		},
		{
			name:     "derivative from zero previous error",
			gains:    Gains{Kd: 1, Limit: 1},
			setpoint: 0.5,
			measured: 0.0,
			dt:       0.05,
			want:     0.5 / 0.05,
		},
		{
			name:     "zero dt drops derivative",
			gains:    Gains{Kp: 1, Kd: 100, Limit: 1},
			setpoint: 0.5,
			measured: 0.0,
			dt:       0,
			want:     0.5,
		},
		{
			name:     "negative dt drops derivative",
			gains:    Gains{Kp: 1, Kd: 100, Limit: 1},
			setpoint: 0.5,
			measured: 0.0,
			dt:       -0.05,
			want:     0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.gains)
			got := c.Update(tt.setpoint, tt.measured, tt.dt)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDerivativeUsesPreviousError(t *testing.T) {
	c := New(Gains{Kd: 1, Limit: 1})
	c.Update(1.0, 0.0, 0.1)
	got := c.Update(1.0, 0.5, 0.1)
	assert.InDelta(t, (0.5-1.0)/0.1, got, 1e-9)
}

func TestIntegralClampedToLimit(t *testing.T) {
	c := New(Gains{Ki: 1, Limit: 0.5})
	for i := 0; i < 1000; i++ {
		c.Update(10, 0, 0.05)
	}
	assert.Equal(t, 0.5, c.Integral())
	assert.InDelta(t, 0.5, c.Update(0, 0, 0.05), 1e-12)

	for i := 0; i < 1000; i++ {
		c.Update(-10, 0, 0.05)
	}
	assert.Equal(t, -0.5, c.Integral())
}

func TestIntegralStaysWithinLimitForRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		limit := rng.Float64() * 2
		c := New(Gains{Kp: rng.Float64(), Ki: rng.Float64(), Kd: rng.Float64(), Limit: limit})
		for i := 0; i < 500; i++ {
			setpoint := (rng.Float64() - 0.5) * 20
			measured := (rng.Float64() - 0.5) * 20
			dt := rng.Float64()*0.2 + 1e-6
			c.Update(setpoint, measured, dt)
			require.LessOrEqual(t, c.Integral(), limit)
			require.GreaterOrEqual(t, c.Integral(), -limit)
		}
	}
}

func TestNegativeLimitIsSymmetric(t *testing.T) {
	c := New(Gains{Ki: 1, Limit: -0.2})
	c.Update(100, 0, 1)
	assert.Equal(t, 0.2, c.Integral())
	assert.Equal(t, 0.2, c.Gains().Limit)
}

func TestReset(t *testing.T) {
	c := New(Gains{Kp: 1, Ki: 1, Kd: 1, Limit: 1})
	c.Update(1, 0, 0.1)
	require.NotZero(t, c.Integral())

	c.Reset()
	assert.Zero(t, c.Integral())

	fresh := New(Gains{Kp: 1, Ki: 1, Kd: 1, Limit: 1})
	assert.Equal(t, fresh.Update(1, 0, 0.1), c.Update(1, 0, 0.1))
}

func TestStateCarriesOverWithoutReset(t *testing.T) {
	c := New(Gains{Ki: 1, Limit: 1})
	c.Update(1, 0, 0.1)
	c.Update(1, 0, 0.1)
	assert.InDelta(t, 0.2, c.Integral(), 1e-12)
}
