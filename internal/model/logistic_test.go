package model

import (
	"math/rand"
	"testing"
	"time"

	"github.com/fortuna/augur/internal/store"
)

// syntheticRows builds a dataset where the home side wins exactly when its
// trailing win rate beats the away side's by a clear margin.
func syntheticRows(n int, seed int64) []store.PairedGameFeatures {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]store.PairedGameFeatures, 0, n)
	for i := 0; i < n; i++ {
		homePct := rng.Float64()
		awayPct := rng.Float64()
		win := 0
		if homePct > awayPct {
			win = 1
		}
		rows = append(rows, store.PairedGameFeatures{
			GameID:   "g",
			GameDate: time.Now(),
			HomeWin:  win,

			HomeWinPctLast10: homePct,
			AwayWinPctLast10: awayPct,

			// Held constant: training must tolerate zero-variance features.
			HomePtsForLast10: 110, AwayPtsForLast10: 110,
			HomePtsAgainstLast10: 110, AwayPtsAgainstLast10: 110,
			HomeHomeWinPctLast10: 0.5, HomeHomePtsForLast10: 110, HomeHomePtsAgainstLast10: 110,
			AwayAwayWinPctLast10: 0.5, AwayAwayPtsForLast10: 110, AwayAwayPtsAgainstLast10: 110,
			HomeSeasonWinPctToDate: 0.5, AwaySeasonWinPctToDate: 0.5,
			HomeRestDays: 2, AwayRestDays: 2,
		})
	}
	return rows
}

func TestTrainLogisticRejectsTinyDatasets(t *testing.T) {
	if _, err := TrainLogistic(syntheticRows(10, 1)); err == nil {
		t.Error("expected an error for a 10-row dataset")
	}
}

func TestTrainLogisticLearnsSeparableSignal(t *testing.T) {
	m, err := TrainLogistic(syntheticRows(400, 42))
	if err != nil {
		t.Fatalf("TrainLogistic: %v", err)
	}

	strongHome := Vector(&store.PairedGameFeatures{
		HomeWinPctLast10: 0.9, AwayWinPctLast10: 0.1,
		HomePtsForLast10: 110, AwayPtsForLast10: 110,
		HomePtsAgainstLast10: 110, AwayPtsAgainstLast10: 110,
		HomeHomeWinPctLast10: 0.5, HomeHomePtsForLast10: 110, HomeHomePtsAgainstLast10: 110,
		AwayAwayWinPctLast10: 0.5, AwayAwayPtsForLast10: 110, AwayAwayPtsAgainstLast10: 110,
		HomeSeasonWinPctToDate: 0.5, AwaySeasonWinPctToDate: 0.5,
		HomeRestDays: 2, AwayRestDays: 2,
	})
	strongAway := Vector(&store.PairedGameFeatures{
		HomeWinPctLast10: 0.1, AwayWinPctLast10: 0.9,
		HomePtsForLast10: 110, AwayPtsForLast10: 110,
		HomePtsAgainstLast10: 110, AwayPtsAgainstLast10: 110,
		HomeHomeWinPctLast10: 0.5, HomeHomePtsForLast10: 110, HomeHomePtsAgainstLast10: 110,
		AwayAwayWinPctLast10: 0.5, AwayAwayPtsForLast10: 110, AwayAwayPtsAgainstLast10: 110,
		HomeSeasonWinPctToDate: 0.5, AwaySeasonWinPctToDate: 0.5,
		HomeRestDays: 2, AwayRestDays: 2,
	})

	pHome := m.PredictProba(strongHome)
	pAway := m.PredictProba(strongAway)

	if pHome <= 0.6 {
		t.Errorf("p(home win | strong home form) = %v, want > 0.6", pHome)
	}
	if pAway >= 0.4 {
		t.Errorf("p(home win | strong away form) = %v, want < 0.4", pAway)
	}
	if pHome <= pAway {
		t.Errorf("model is not monotone in relative form: %v <= %v", pHome, pAway)
	}
}

func TestVectorMatchesFeatureNamesLength(t *testing.T) {
	row := store.PairedGameFeatures{}
	if got := len(Vector(&row)); got != len(FeatureNames) {
		t.Errorf("Vector length = %d, FeatureNames length = %d", got, len(FeatureNames))
	}
}
