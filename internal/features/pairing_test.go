package features

import (
	"math"
	"testing"

	"github.com/fortuna/augur/internal/store"
)

// buildPaired runs the full pipeline: raw rows -> history -> per-team
// features -> paired rows.
func buildPaired(t *testing.T, rows []store.TeamGameLog) []store.PairedGameFeatures {
	t.Helper()
	teams, _ := BuildHistory(rows)
	enriched := make(map[string][]EnrichedTeamGame, len(teams))
	for teamID, series := range teams {
		enriched[teamID] = ComputeFeatures(series)
	}
	return PairGames(enriched)
}

func TestPairingCompleteness(t *testing.T) {
	// Three games with two clean sides each must yield exactly three paired
	// rows, each labelled by the points comparison.
	rows := []store.TeamGameLog{
		mkLog("g1", "2024-01-01", "2023-24", "T1", "AAA", true, "W", 100),
		mkLog("g1", "2024-01-01", "2023-24", "T2", "BBB", false, "L", 90),
		mkLog("g2", "2024-01-03", "2023-24", "T1", "AAA", false, "L", 95),
		mkLog("g2", "2024-01-03", "2023-24", "T3", "CCC", true, "W", 99),
		mkLog("g3", "2024-01-05", "2023-24", "T2", "BBB", true, "W", 120),
		mkLog("g3", "2024-01-05", "2023-24", "T3", "CCC", false, "L", 110),
	}

	paired := buildPaired(t, rows)

	if len(paired) != 3 {
		t.Fatalf("paired rows = %d, want 3", len(paired))
	}

	wantHomeWin := map[string]int{"g1": 1, "g2": 1, "g3": 1}
	for _, p := range paired {
		if p.HomeWin != wantHomeWin[p.GameID] {
			t.Errorf("%s: HomeWin = %d, want %d", p.GameID, p.HomeWin, wantHomeWin[p.GameID])
		}
	}

	// Ordered by date.
	for i := 1; i < len(paired); i++ {
		if paired[i].GameDate.Before(paired[i-1].GameDate) {
			t.Error("paired rows not ordered by date")
		}
	}
}

func TestPairingDropsOneSidedGames(t *testing.T) {
	// g2's away side is malformed and dropped during cleaning: the game must
	// be omitted from output entirely, never emitted half-filled.
	badSide := mkLog("g2", "2024-01-03", "2023-24", "T2", "BBB", false, "L", 90)
	badSide.TeamAbbr = ""

	rows := []store.TeamGameLog{
		mkLog("g1", "2024-01-01", "2023-24", "T1", "AAA", true, "W", 100),
		mkLog("g1", "2024-01-01", "2023-24", "T2", "BBB", false, "L", 90),
		mkLog("g2", "2024-01-03", "2023-24", "T1", "AAA", true, "W", 100),
		badSide,
	}

	paired := buildPaired(t, rows)

	if len(paired) != 1 {
		t.Fatalf("paired rows = %d, want 1 (one-sided game dropped)", len(paired))
	}
	if paired[0].GameID != "g1" {
		t.Errorf("kept game = %s, want g1", paired[0].GameID)
	}
}

func TestPairingDropsGamesWithUnknownPoints(t *testing.T) {
	// No label can be derived when either side's points are unknown.
	noPts := mkLog("g1", "2024-01-01", "2023-24", "T1", "AAA", true, "W", 0)
	noPts.Pts.Valid = false

	rows := []store.TeamGameLog{
		noPts,
		mkLog("g1", "2024-01-01", "2023-24", "T2", "BBB", false, "L", 90),
	}

	if paired := buildPaired(t, rows); len(paired) != 0 {
		t.Errorf("paired rows = %d, want 0 when a side's points are unknown", len(paired))
	}
}

func TestEndToEndThreeGameScenario(t *testing.T) {
	// Teams A and B play three games (scores listed A-B):
	//   g1: A home, 100-90  -> A wins
	//   g2: B home,  95-98  -> B wins
	//   g3: A home, 110-100
	// At g3, A's overall trailing win rate is 1/2 (one win, one loss) and
	// A's home-only rate is 1/1 from g1 alone.
	rows := []store.TeamGameLog{
		mkLog("g1", "2024-01-01", "2023-24", "A", "AAA", true, "W", 100),
		mkLog("g1", "2024-01-01", "2023-24", "B", "BBB", false, "L", 90),
		mkLog("g2", "2024-01-03", "2023-24", "B", "BBB", true, "W", 98),
		mkLog("g2", "2024-01-03", "2023-24", "A", "AAA", false, "L", 95),
		mkLog("g3", "2024-01-05", "2023-24", "A", "AAA", true, "W", 110),
		mkLog("g3", "2024-01-05", "2023-24", "B", "BBB", false, "L", 100),
	}

	paired := buildPaired(t, rows)
	if len(paired) != 3 {
		t.Fatalf("paired rows = %d, want 3", len(paired))
	}

	var g3 store.PairedGameFeatures
	for _, p := range paired {
		if p.GameID == "g3" {
			g3 = p
		}
	}

	if math.Abs(g3.HomeWinPctLast10-0.5) > floatTol {
		t.Errorf("g3 HomeWinPctLast10 = %v, want 0.5 (one win, one loss prior)", g3.HomeWinPctLast10)
	}
	if math.Abs(g3.HomeHomeWinPctLast10-1.0) > floatTol {
		t.Errorf("g3 HomeHomeWinPctLast10 = %v, want 1.0 (g1 alone)", g3.HomeHomeWinPctLast10)
	}

	// A's overall points means at g3: (100+95)/2 for, (90+98)/2 against.
	if math.Abs(g3.HomePtsForLast10-97.5) > floatTol {
		t.Errorf("g3 HomePtsForLast10 = %v, want 97.5", g3.HomePtsForLast10)
	}
	if math.Abs(g3.HomePtsAgainstLast10-94.0) > floatTol {
		t.Errorf("g3 HomePtsAgainstLast10 = %v, want 94.0", g3.HomePtsAgainstLast10)
	}
	if math.Abs(g3.HomeNetLast10-3.5) > floatTol {
		t.Errorf("g3 HomeNetLast10 = %v, want 3.5", g3.HomeNetLast10)
	}

	// B at g3 is the away side: away-only split comes from g1 (away loss).
	if math.Abs(g3.AwayAwayWinPctLast10-0.0) > floatTol {
		t.Errorf("g3 AwayAwayWinPctLast10 = %v, want 0.0", g3.AwayAwayWinPctLast10)
	}
	if g3.HomeWin != 1 {
		t.Errorf("g3 HomeWin = %d, want 1 (110 > 100)", g3.HomeWin)
	}

	// Rest: both teams played Jan 3, so g3 on Jan 5 means one off day.
	if g3.HomeRestDays != 1 || g3.HomeB2B != 0 {
		t.Errorf("g3 home rest = %d b2b = %d, want 1/0", g3.HomeRestDays, g3.HomeB2B)
	}
}
