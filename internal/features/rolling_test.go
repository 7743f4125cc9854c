package features

import (
	"database/sql"
	"fmt"
	"math"
	"testing"
	"time"
)

const floatTol = 1e-9

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// mkGame builds a cleaned team game with known points on both sides.
func mkGame(gameID, date, season string, home, win bool, ptsFor, ptsAgainst float64) TeamGame {
	return TeamGame{
		GameID:     gameID,
		GameDate:   day(date),
		Season:     season,
		TeamID:     "T1",
		TeamAbbr:   "AAA",
		IsHome:     home,
		Win:        win,
		PtsFor:     sql.NullFloat64{Float64: ptsFor, Valid: true},
		PtsAgainst: sql.NullFloat64{Float64: ptsAgainst, Valid: true},
	}
}

// seriesOfLength builds n games on consecutive weeks, alternating wins, with
// distinct point totals so window means are distinguishable.
func seriesOfLength(n int) []TeamGame {
	s := make([]TeamGame, 0, n)
	d := day("2023-11-01")
	for i := 0; i < n; i++ {
		s = append(s, mkGame(
			fmt.Sprintf("g%02d", i+1),
			d.AddDate(0, 0, i*7).Format("2006-01-02"),
			"2023-24",
			i%2 == 0,
			i%2 == 0,
			float64(100+i),
			float64(95+i),
		))
	}
	return s
}

func TestFirstGameDefaults(t *testing.T) {
	// A team's very first record in history has no prior games at all: every
	// trailing stat must take its documented neutral default.
	got := ComputeFeatures(seriesOfLength(1))[0]

	if got.WinPctLast10 != 0.5 {
		t.Errorf("WinPctLast10 = %v, want 0.5", got.WinPctLast10)
	}
	if got.PtsForLast10 != 110.0 {
		t.Errorf("PtsForLast10 = %v, want 110.0", got.PtsForLast10)
	}
	if got.PtsAgainstLast10 != 110.0 {
		t.Errorf("PtsAgainstLast10 = %v, want 110.0", got.PtsAgainstLast10)
	}
	if got.NetLast10 != 0.0 {
		t.Errorf("NetLast10 = %v, want 0.0 when inputs are defaulted", got.NetLast10)
	}
	if got.RestDays != 3 {
		t.Errorf("RestDays = %d, want 3", got.RestDays)
	}
	if got.BackToBack {
		t.Error("BackToBack = true, want false for a first game")
	}
	if got.SeasonWinPctToDate != 0.5 {
		t.Errorf("SeasonWinPctToDate = %v, want 0.5", got.SeasonWinPctToDate)
	}
}

func TestCausalityOwnOutcomeCannotLeak(t *testing.T) {
	// Mutating game 15's own points and outcome must not change any trailing
	// stat attached to game 15 itself, nor to any earlier game. Only records
	// at positions < i may influence position i.
	base := seriesOfLength(15)
	mutated := make([]TeamGame, len(base))
	copy(mutated, base)
	mutated[14].PtsFor = sql.NullFloat64{Float64: 999, Valid: true}
	mutated[14].PtsAgainst = sql.NullFloat64{Float64: 1, Valid: true}
	mutated[14].Win = !mutated[14].Win

	want := ComputeFeatures(base)
	got := ComputeFeatures(mutated)

	for i := range want {
		if got[i].PtsForLast10 != want[i].PtsForLast10 {
			t.Errorf("game %d: PtsForLast10 changed (%v -> %v) after mutating game 15",
				i+1, want[i].PtsForLast10, got[i].PtsForLast10)
		}
		if got[i].WinPctLast10 != want[i].WinPctLast10 {
			t.Errorf("game %d: WinPctLast10 changed after mutating game 15", i+1)
		}
		if got[i].SeasonWinPctToDate != want[i].SeasonWinPctToDate {
			t.Errorf("game %d: SeasonWinPctToDate changed after mutating game 15", i+1)
		}
	}
}

func TestWindowUsesAllAvailablePriorGames(t *testing.T) {
	// With exactly 3 prior games [W, L, W], the trailing win rate at the 4th
	// game is 2/3 — divided by the games available, never by 10.
	s := []TeamGame{
		mkGame("g1", "2024-01-01", "2023-24", true, true, 100, 90),
		mkGame("g2", "2024-01-03", "2023-24", false, false, 90, 100),
		mkGame("g3", "2024-01-05", "2023-24", true, true, 105, 95),
		mkGame("g4", "2024-01-07", "2023-24", false, true, 110, 100),
	}

	got := ComputeFeatures(s)[3]
	if math.Abs(got.WinPctLast10-2.0/3.0) > floatTol {
		t.Errorf("WinPctLast10 = %v, want 2/3", got.WinPctLast10)
	}
}

func TestWindowCapsAtTenPriorGames(t *testing.T) {
	// 12 prior games: only the 10 most recent may contribute. Games carry
	// points 100..111, so the mean over games 3..12 is 106.5; a window that
	// leaked games 1-2 would read lower.
	s := seriesOfLength(13)
	got := ComputeFeatures(s)[12]

	want := 0.0
	for i := 2; i < 12; i++ {
		want += float64(100 + i)
	}
	want /= 10

	if math.Abs(got.PtsForLast10-want) > floatTol {
		t.Errorf("PtsForLast10 = %v, want %v (last 10 prior games only)", got.PtsForLast10, want)
	}
}

func TestVenueSplitSkipsInterleavedGames(t *testing.T) {
	// Alternating H/A/H/A: the home-only stat at the 3rd game (2nd home game)
	// must equal the single prior home game's values, unaffected by the away
	// game in between.
	s := []TeamGame{
		mkGame("g1", "2024-01-01", "2023-24", true, true, 120, 100),
		mkGame("g2", "2024-01-03", "2023-24", false, false, 80, 130),
		mkGame("g3", "2024-01-05", "2023-24", true, false, 90, 95),
		mkGame("g4", "2024-01-07", "2023-24", false, true, 100, 99),
	}

	enriched := ComputeFeatures(s)

	third := enriched[2]
	if third.SplitWinPctLast10 != 1.0 {
		t.Errorf("home-only WinPct at 3rd game = %v, want 1.0 (game 1 alone)", third.SplitWinPctLast10)
	}
	if third.SplitPtsForLast10 != 120.0 {
		t.Errorf("home-only PtsFor at 3rd game = %v, want 120.0 (game 1 alone)", third.SplitPtsForLast10)
	}

	// First away game has no prior away games: split defaults apply even
	// though an overall prior game exists.
	second := enriched[1]
	if second.SplitWinPctLast10 != 0.5 || second.SplitPtsForLast10 != 110.0 {
		t.Errorf("away-only stats at 2nd game = (%v, %v), want defaults (0.5, 110.0)",
			second.SplitWinPctLast10, second.SplitPtsForLast10)
	}
}

func TestSeasonToDateResetsAtSeasonBoundary(t *testing.T) {
	// The team wins every game of 2022-23, then opens 2023-24. The cumulative
	// rate must reset to 0.5 at the new label even though absolute history is
	// continuous, and must not count the current game.
	s := []TeamGame{
		mkGame("g1", "2023-04-01", "2022-23", true, true, 100, 90),
		mkGame("g2", "2023-04-03", "2022-23", false, true, 100, 90),
		mkGame("g3", "2023-10-25", "2023-24", true, false, 90, 100),
		mkGame("g4", "2023-10-27", "2023-24", false, true, 100, 90),
	}

	enriched := ComputeFeatures(s)

	if enriched[1].SeasonWinPctToDate != 1.0 {
		t.Errorf("2nd game of 2022-23: SeasonWinPctToDate = %v, want 1.0", enriched[1].SeasonWinPctToDate)
	}
	if enriched[2].SeasonWinPctToDate != 0.5 {
		t.Errorf("first game of 2023-24: SeasonWinPctToDate = %v, want 0.5 (reset)", enriched[2].SeasonWinPctToDate)
	}
	if enriched[3].SeasonWinPctToDate != 0.0 {
		t.Errorf("2nd game of 2023-24: SeasonWinPctToDate = %v, want 0.0 (loss before it)", enriched[3].SeasonWinPctToDate)
	}
}

func TestRestDaysAndBackToBack(t *testing.T) {
	s := []TeamGame{
		mkGame("g1", "2024-01-01", "2023-24", true, true, 100, 90),
		mkGame("g2", "2024-01-02", "2023-24", false, true, 100, 90), // next day
		mkGame("g3", "2024-01-05", "2023-24", true, true, 100, 90),  // two off days
	}

	enriched := ComputeFeatures(s)

	if enriched[1].RestDays != 0 || !enriched[1].BackToBack {
		t.Errorf("consecutive-day game: RestDays = %d, BackToBack = %v, want 0/true",
			enriched[1].RestDays, enriched[1].BackToBack)
	}
	if enriched[2].RestDays != 2 || enriched[2].BackToBack {
		t.Errorf("game after two off days: RestDays = %d, BackToBack = %v, want 2/false",
			enriched[2].RestDays, enriched[2].BackToBack)
	}
}

func TestUnknownPointsExcludedFromPointsMeans(t *testing.T) {
	// A game with unknown points still counts toward the win rate and the
	// window size, but contributes nothing to the points means.
	s := []TeamGame{
		mkGame("g1", "2024-01-01", "2023-24", true, true, 100, 90),
		{
			GameID: "g2", GameDate: day("2024-01-03"), Season: "2023-24",
			TeamID: "T1", TeamAbbr: "AAA", IsHome: false, Win: false,
			// PtsFor/PtsAgainst unknown
		},
		mkGame("g3", "2024-01-05", "2023-24", true, true, 100, 90),
	}

	got := ComputeFeatures(s)[2]
	if got.WinPctLast10 != 0.5 {
		t.Errorf("WinPctLast10 = %v, want 0.5 (both prior games count)", got.WinPctLast10)
	}
	if got.PtsForLast10 != 100.0 {
		t.Errorf("PtsForLast10 = %v, want 100.0 (only the known game)", got.PtsForLast10)
	}
}

func TestSnapshotUsesGamesStrictlyBeforeDate(t *testing.T) {
	// The snapshot for an upcoming game must include the most recently played
	// game — unlike a played game's own features, there is no current record
	// to exclude, only the cutoff date.
	s := []TeamGame{
		mkGame("g1", "2024-01-01", "2023-24", true, true, 100, 90),
		mkGame("g2", "2024-01-03", "2023-24", false, true, 120, 90),
	}

	snap := ComputeSnapshot(s, day("2024-01-05"), "2023-24")

	if snap.WinPctLast10 != 1.0 {
		t.Errorf("WinPctLast10 = %v, want 1.0 over both played games", snap.WinPctLast10)
	}
	if snap.PtsForLast10 != 110.0 {
		t.Errorf("PtsForLast10 = %v, want 110.0 (mean of 100 and 120)", snap.PtsForLast10)
	}
	if snap.SeasonWinPctToDate != 1.0 {
		t.Errorf("SeasonWinPctToDate = %v, want 1.0", snap.SeasonWinPctToDate)
	}
	if snap.RestDays != 1 {
		t.Errorf("RestDays = %d, want 1 (Jan 3 -> Jan 5)", snap.RestDays)
	}

	// Games on or after the as-of date must be invisible.
	withFuture := append(s, mkGame("g3", "2024-01-05", "2023-24", true, false, 50, 150))
	snap2 := ComputeSnapshot(withFuture, day("2024-01-05"), "2023-24")
	if snap2 != snap {
		t.Error("snapshot changed when a game on the as-of date was appended")
	}
}

func TestSnapshotNoHistoryDefaults(t *testing.T) {
	snap := ComputeSnapshot(nil, day("2024-01-05"), "2023-24")

	if snap.WinPctLast10 != 0.5 || snap.PtsForLast10 != 110.0 || snap.PtsAgainstLast10 != 110.0 {
		t.Errorf("overall snapshot defaults = (%v, %v, %v), want (0.5, 110.0, 110.0)",
			snap.WinPctLast10, snap.PtsForLast10, snap.PtsAgainstLast10)
	}
	if snap.HomeWinPctLast10 != 0.5 || snap.AwayWinPctLast10 != 0.5 {
		t.Error("venue split snapshot defaults missing")
	}
	if snap.RestDays != 3 || snap.BackToBack {
		t.Errorf("RestDays = %d, BackToBack = %v, want 3/false", snap.RestDays, snap.BackToBack)
	}
}
