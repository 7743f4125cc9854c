// Package odds converts model probabilities to bookable prices.
package odds

// DefaultMargin is the bookmaker margin applied when none is configured.
const DefaultMargin = 0.05

const probEpsilon = 1e-6

// Decimal converts a home-win probability into two-way decimal odds with a
// bookmaker margin: both implied probabilities are scaled so the book's
// overround totals 1+margin.
func Decimal(pHome, margin float64) (home, away float64) {
	p := clampProb(pHome)
	q := 1.0 - p

	pm := p * (1 + margin)
	qm := q * (1 + margin)

	return 1.0 / pm, 1.0 / qm
}

// RemoveVig2 converts two-way decimal odds back to fair probabilities by
// stripping the bookmaker's overround.
func RemoveVig2(a, b float64) (float64, float64) {
	rawA := 1.0 / a
	rawB := 1.0 / b
	total := rawA + rawB
	return rawA / total, rawB / total
}

// Implied returns the raw implied probability of a decimal price.
func Implied(decimal float64) float64 {
	return 1.0 / decimal
}

// clampProb keeps probabilities away from 0 and 1 so prices stay finite.
func clampProb(p float64) float64 {
	if p < probEpsilon {
		return probEpsilon
	}
	if p > 1-probEpsilon {
		return 1 - probEpsilon
	}
	return p
}
