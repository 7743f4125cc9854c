package odds

import (
	"math"
	"testing"
)

const tol = 1e-9

func TestDecimalWithoutMarginIsFair(t *testing.T) {
	home, away := Decimal(0.6, 0)

	if math.Abs(home-1.0/0.6) > tol {
		t.Errorf("home = %v, want %v", home, 1.0/0.6)
	}
	if math.Abs(away-1.0/0.4) > tol {
		t.Errorf("away = %v, want %v", away, 1.0/0.4)
	}
}

func TestDecimalMarginShortensBothPrices(t *testing.T) {
	fairHome, fairAway := Decimal(0.6, 0)
	home, away := Decimal(0.6, 0.05)

	if home >= fairHome || away >= fairAway {
		t.Errorf("margin did not shorten prices: (%v, %v) vs fair (%v, %v)", home, away, fairHome, fairAway)
	}
	if book := Implied(home) + Implied(away); math.Abs(book-1.05) > tol {
		t.Errorf("book total = %v, want 1.05", book)
	}
}

func TestDecimalClampsDegenerateProbabilities(t *testing.T) {
	for _, p := range []float64{0, 1, -0.5, 2} {
		home, away := Decimal(p, 0.05)
		if math.IsInf(home, 0) || math.IsNaN(home) || math.IsInf(away, 0) || math.IsNaN(away) {
			t.Errorf("Decimal(%v) produced non-finite prices (%v, %v)", p, home, away)
		}
	}
}

func TestRemoveVig2RoundTrips(t *testing.T) {
	// Pricing at a margin and stripping the vig must recover the original
	// probability split.
	home, away := Decimal(0.65, 0.05)
	pHome, pAway := RemoveVig2(home, away)

	if math.Abs(pHome-0.65) > 1e-6 {
		t.Errorf("pHome = %v, want 0.65", pHome)
	}
	if math.Abs(pHome+pAway-1.0) > tol {
		t.Errorf("probabilities sum to %v, want 1", pHome+pAway)
	}
}
