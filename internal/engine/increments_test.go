package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stochlab/rou-engine/internal/models"
)

func TestIncrementSourceRejectsBadConfig(t *testing.T) {
	if _, err := NewIncrementSource(0, 0.1, 1); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for dim=0, got %v", err)
	}
	if _, err := NewIncrementSource(1, 0, 1); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for dt=0, got %v", err)
	}
	if _, err := NewIncrementSource(1, -0.5, 1); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for dt<0, got %v", err)
	}
}

func TestIncrementSourceDraw(t *testing.T) {
	src, err := NewIncrementSource(2, 0.01, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dW := src.Draw(nil)
	if len(dW) != 2 {
		t.Fatalf("expected 2 components, got %d", len(dW))
	}
}

func TestIncrementSourceDeterministic(t *testing.T) {
	a, _ := NewIncrementSource(1, 0.05, 42)
	b, _ := NewIncrementSource(1, 0.05, 42)
	for i := 0; i < 100; i++ {
		if av, bv := a.Draw(nil)[0], b.Draw(nil)[0]; av != bv {
			t.Fatalf("draw %d diverged: %g vs %g", i, av, bv)
		}
	}
}

func TestIncrementSourceVariance(t *testing.T) {
	const dt = 0.04
	src, _ := NewIncrementSource(1, dt, 3)

	sum, sumSq := 0.0, 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		v := src.Draw(nil)[0]
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean) > 0.01 {
		t.Fatalf("increment mean too far from zero: %g", mean)
	}
	if math.Abs(variance-dt) > 0.15*dt {
		t.Fatalf("increment variance %g not close to dt=%g", variance, dt)
	}
}
