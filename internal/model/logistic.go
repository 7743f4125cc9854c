package model

import (
	"fmt"
	"math"

	"github.com/fortuna/augur/internal/features"
	"github.com/fortuna/augur/internal/store"
)

const (
	minTrainingRows = 50
	trainIters      = 2000
	trainLR         = 0.5
)

// FeatureNames is the canonical feature order shared by training and
// inference. Rows persisted to game_features carry these exact columns.
var FeatureNames = []string{
	"home_win_pct_last10", "away_win_pct_last10",
	"home_pts_for_last10", "away_pts_for_last10",
	"home_pts_against_last10", "away_pts_against_last10",
	"home_net_last10", "away_net_last10",
	"home_home_win_pct_last10", "home_home_pts_for_last10", "home_home_pts_against_last10",
	"away_away_win_pct_last10", "away_away_pts_for_last10", "away_away_pts_against_last10",
	"home_season_win_pct_to_date", "away_season_win_pct_to_date",
	"home_rest_days", "away_rest_days", "home_b2b", "away_b2b",
}

// Vector extracts the feature vector from a paired row, in FeatureNames order.
func Vector(p *store.PairedGameFeatures) []float64 {
	return []float64{
		p.HomeWinPctLast10, p.AwayWinPctLast10,
		p.HomePtsForLast10, p.AwayPtsForLast10,
		p.HomePtsAgainstLast10, p.AwayPtsAgainstLast10,
		p.HomeNetLast10, p.AwayNetLast10,
		p.HomeHomeWinPctLast10, p.HomeHomePtsForLast10, p.HomeHomePtsAgainstLast10,
		p.AwayAwayWinPctLast10, p.AwayAwayPtsForLast10, p.AwayAwayPtsAgainstLast10,
		p.HomeSeasonWinPctToDate, p.AwaySeasonWinPctToDate,
		float64(p.HomeRestDays), float64(p.AwayRestDays),
		float64(p.HomeB2B), float64(p.AwayB2B),
	}
}

// VectorFromSnapshots assembles the feature vector for an upcoming game from
// both teams' form snapshots: the home team contributes its home-only split,
// the away team its away-only split.
func VectorFromSnapshots(home, away features.Snapshot) []float64 {
	return []float64{
		home.WinPctLast10, away.WinPctLast10,
		home.PtsForLast10, away.PtsForLast10,
		home.PtsAgainstLast10, away.PtsAgainstLast10,
		home.NetLast10, away.NetLast10,
		home.HomeWinPctLast10, home.HomePtsForLast10, home.HomePtsAgainstLast10,
		away.AwayWinPctLast10, away.AwayPtsForLast10, away.AwayPtsAgainstLast10,
		home.SeasonWinPctToDate, away.SeasonWinPctToDate,
		float64(home.RestDays), float64(away.RestDays),
		boolToFloat(home.BackToBack), boolToFloat(away.BackToBack),
	}
}

// Logistic is a trained home-win probability model: logistic regression fit
// by batch gradient descent on log-loss over standardised features.
type Logistic struct {
	weights []float64 // bias first, then one weight per feature
	means   []float64
	stds    []float64
}

// TrainLogistic fits a model on the paired dataset. Returns an error when
// there are too few rows to fit anything meaningful.
func TrainLogistic(rows []store.PairedGameFeatures) (*Logistic, error) {
	if len(rows) < minTrainingRows {
		return nil, fmt.Errorf("need at least %d training rows, have %d", minTrainingRows, len(rows))
	}

	n := len(rows)
	d := len(FeatureNames)
	xs := make([][]float64, n)
	ys := make([]float64, n)
	for i := range rows {
		xs[i] = Vector(&rows[i])
		ys[i] = float64(rows[i].HomeWin)
	}

	// Standardise so points-scale and rate-scale features train together.
	means := make([]float64, d)
	stds := make([]float64, d)
	for j := 0; j < d; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += xs[i][j]
		}
		means[j] = sum / float64(n)

		var sq float64
		for i := 0; i < n; i++ {
			diff := xs[i][j] - means[j]
			sq += diff * diff
		}
		stds[j] = math.Sqrt(sq / float64(n))
		if stds[j] == 0 {
			stds[j] = 1 // constant feature: leave it centred, weight stays ~0
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			xs[i][j] = (xs[i][j] - means[j]) / stds[j]
		}
	}

	// Batch gradient descent on log-loss: grad = mean((p-y) * x).
	w := make([]float64, d+1)
	grad := make([]float64, d+1)
	for iter := 0; iter < trainIters; iter++ {
		for k := range grad {
			grad[k] = 0
		}
		for i := 0; i < n; i++ {
			z := w[0]
			for j := 0; j < d; j++ {
				z += w[j+1] * xs[i][j]
			}
			err := sigmoid(z) - ys[i]
			grad[0] += err
			for j := 0; j < d; j++ {
				grad[j+1] += err * xs[i][j]
			}
		}
		for k := range w {
			w[k] -= trainLR * grad[k] / float64(n)
		}
	}

	return &Logistic{weights: w, means: means, stds: stds}, nil
}

// PredictProba returns the home-win probability for a raw (unstandardised)
// feature vector in FeatureNames order.
func (m *Logistic) PredictProba(x []float64) float64 {
	z := m.weights[0]
	for j := range x {
		z += m.weights[j+1] * (x[j] - m.means[j]) / m.stds[j]
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1.0
	}
	if z < -20 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
