package features

import (
	"database/sql"
	"sort"
	"time"

	"github.com/fortuna/augur/internal/store"
)

// TeamGame is one cleaned per-team game with the opponent's points resolved.
// Built once per ingestion pass; read-only afterwards.
type TeamGame struct {
	GameID   string
	GameDate time.Time
	Season   string
	TeamID   string
	TeamAbbr string
	IsHome   bool
	Win      bool

	// Points may be unknown on malformed source rows (the row itself is kept:
	// only missing identifying fields force a drop).
	PtsFor     sql.NullFloat64
	PtsAgainst sql.NullFloat64
}

// CleanStats counts what the history builder did to the raw rows. Anomalies
// are reported as counts, never as per-row errors.
type CleanStats struct {
	Input            int
	DroppedMissing   int // rows missing an identifying field
	DroppedDuplicate int // extra rows for the same (game_id, team_id)
	Unpaired         int // rows whose opponent row did not survive cleaning
	Kept             int
}

// BuildHistory converts raw team game log rows into per-team chronological
// series with the opponent's points resolved. Rows missing any identifying
// field are dropped, duplicates for a (game_id, team_id) pair keep the
// earliest-dated row, and each team's series is ordered by date with game id
// as the tie-break. An empty input yields an empty history, not an error.
func BuildHistory(raws []store.TeamGameLog) (map[string][]TeamGame, CleanStats) {
	stats := CleanStats{Input: len(raws)}

	// Drop malformed rows: a missing identifier makes pairing impossible, so
	// the row is discarded rather than repaired.
	clean := make([]store.TeamGameLog, 0, len(raws))
	for _, r := range raws {
		if r.GameID == "" || !r.GameDate.Valid || r.TeamID == "" || r.TeamAbbr == "" || r.WL == "" || r.Season == "" {
			stats.DroppedMissing++
			continue
		}
		clean = append(clean, r)
	}

	// Deduplicate on (game_id, team_id), keeping the earliest row by
	// (date, abbr) as a stable secondary key. Sorting first makes the choice
	// deterministic regardless of input order.
	sort.SliceStable(clean, func(i, j int) bool {
		if clean[i].GameID != clean[j].GameID {
			return clean[i].GameID < clean[j].GameID
		}
		if clean[i].TeamID != clean[j].TeamID {
			return clean[i].TeamID < clean[j].TeamID
		}
		if !clean[i].GameDate.Time.Equal(clean[j].GameDate.Time) {
			return clean[i].GameDate.Time.Before(clean[j].GameDate.Time)
		}
		return clean[i].TeamAbbr < clean[j].TeamAbbr
	})

	type pairKey struct{ gameID, teamID string }
	seen := make(map[pairKey]bool, len(clean))
	deduped := clean[:0]
	for _, r := range clean {
		k := pairKey{r.GameID, r.TeamID}
		if seen[k] {
			stats.DroppedDuplicate++
			continue
		}
		seen[k] = true
		deduped = append(deduped, r)
	}

	// Index surviving rows by game so each row can resolve its opponent's
	// points. A row whose opponent was dropped stays in the history (it still
	// counts toward its own team's form) but can never be paired.
	byGame := make(map[string][]store.TeamGameLog, len(deduped)/2+1)
	for _, r := range deduped {
		byGame[r.GameID] = append(byGame[r.GameID], r)
	}

	teams := make(map[string][]TeamGame)
	for _, r := range deduped {
		tg := TeamGame{
			GameID:   r.GameID,
			GameDate: r.GameDate.Time,
			Season:   r.Season,
			TeamID:   r.TeamID,
			TeamAbbr: r.TeamAbbr,
			IsHome:   r.IsHome,
			Win:      r.WL == "W",
		}
		if r.Pts.Valid {
			tg.PtsFor = sql.NullFloat64{Float64: float64(r.Pts.Int32), Valid: true}
		}

		opp, ok := findOpponent(byGame[r.GameID], r.TeamID)
		if !ok {
			stats.Unpaired++
		} else if opp.Pts.Valid {
			tg.PtsAgainst = sql.NullFloat64{Float64: float64(opp.Pts.Int32), Valid: true}
		}

		teams[r.TeamID] = append(teams[r.TeamID], tg)
		stats.Kept++
	}

	// Chronological order within each team; game id breaks date ties so
	// historical double-headers stay deterministic.
	for teamID := range teams {
		series := teams[teamID]
		sort.SliceStable(series, func(i, j int) bool {
			if !series[i].GameDate.Equal(series[j].GameDate) {
				return series[i].GameDate.Before(series[j].GameDate)
			}
			return series[i].GameID < series[j].GameID
		})
	}

	return teams, stats
}

// findOpponent returns the row in the same game belonging to a different
// team. Rows are pre-sorted by team id, so with more than two participants
// (malformed data) the pick is still deterministic.
func findOpponent(rows []store.TeamGameLog, teamID string) (store.TeamGameLog, bool) {
	for _, r := range rows {
		if r.TeamID != teamID {
			return r, true
		}
	}
	return store.TeamGameLog{}, false
}
