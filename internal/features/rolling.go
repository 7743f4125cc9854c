package features

import "time"

// Neutral placeholders substituted when a team has no prior games to average
// over. 110 is a league-average scoring placeholder.
const (
	DefaultWinPct   = 0.5
	DefaultPts      = 110.0
	DefaultRestDays = 3

	windowSize = 10
)

// EnrichedTeamGame is a TeamGame plus the trailing statistics describing the
// team's form strictly before this game. The statistic at position i depends
// only on records at positions < i — a feature here never sees its own game's
// outcome.
type EnrichedTeamGame struct {
	TeamGame

	WinPctLast10     float64
	PtsForLast10     float64
	PtsAgainstLast10 float64
	NetLast10        float64

	// Venue split over the filtered subsequence: home-only form for home
	// games, away-only form for away games. The window skips interleaved
	// games at the other venue entirely.
	SplitWinPctLast10     float64
	SplitPtsForLast10     float64
	SplitPtsAgainstLast10 float64

	SeasonWinPctToDate float64
	RestDays           int
	BackToBack         bool
}

// trailing summarises an already-sliced window of strictly-prior games.
// Games with unknown points still count toward the win rate but not the
// points means; a window with no usable points falls back to the neutral
// placeholder and zeroes the net rating.
type trailing struct {
	WinPct     float64
	PtsFor     float64
	PtsAgainst float64
	Net        float64
}

func summarizeWindow(window []TeamGame) trailing {
	if len(window) == 0 {
		return trailing{WinPct: DefaultWinPct, PtsFor: DefaultPts, PtsAgainst: DefaultPts, Net: 0}
	}

	wins := 0
	var forSum, againstSum float64
	var forN, againstN int
	for _, g := range window {
		if g.Win {
			wins++
		}
		if g.PtsFor.Valid {
			forSum += g.PtsFor.Float64
			forN++
		}
		if g.PtsAgainst.Valid {
			againstSum += g.PtsAgainst.Float64
			againstN++
		}
	}

	t := trailing{WinPct: float64(wins) / float64(len(window))}
	defaulted := false
	if forN > 0 {
		t.PtsFor = forSum / float64(forN)
	} else {
		t.PtsFor = DefaultPts
		defaulted = true
	}
	if againstN > 0 {
		t.PtsAgainst = againstSum / float64(againstN)
	} else {
		t.PtsAgainst = DefaultPts
		defaulted = true
	}
	if !defaulted {
		t.Net = t.PtsFor - t.PtsAgainst
	}
	return t
}

// lastN returns up to the n most recent elements of prior.
func lastN(prior []TeamGame, n int) []TeamGame {
	if len(prior) > n {
		return prior[len(prior)-n:]
	}
	return prior
}

// ComputeFeatures derives the trailing statistics for every record of one
// team's chronologically ordered series. Pure function: the input series is
// not modified, and every input yields a defined output (insufficient history
// degrades to the documented defaults, never to an error).
func ComputeFeatures(series []TeamGame) []EnrichedTeamGame {
	out := make([]EnrichedTeamGame, 0, len(series))

	// Venue-partitioned prior subsequences, grown as we walk forward so a
	// record can only ever see games before its own position.
	homePrior := make([]TeamGame, 0, len(series))
	awayPrior := make([]TeamGame, 0, len(series))

	type seasonTally struct{ games, wins int }
	bySeason := make(map[string]seasonTally)

	for i, g := range series {
		e := EnrichedTeamGame{TeamGame: g}

		overall := summarizeWindow(lastN(series[:i], windowSize))
		e.WinPctLast10 = overall.WinPct
		e.PtsForLast10 = overall.PtsFor
		e.PtsAgainstLast10 = overall.PtsAgainst
		e.NetLast10 = overall.Net

		venuePrior := awayPrior
		if g.IsHome {
			venuePrior = homePrior
		}
		split := summarizeWindow(lastN(venuePrior, windowSize))
		e.SplitWinPctLast10 = split.WinPct
		e.SplitPtsForLast10 = split.PtsFor
		e.SplitPtsAgainstLast10 = split.PtsAgainst

		tally := bySeason[g.Season]
		if tally.games > 0 {
			e.SeasonWinPctToDate = float64(tally.wins) / float64(tally.games)
		} else {
			// First game of a season: the cumulative rate resets, no
			// carry-over from the previous season label.
			e.SeasonWinPctToDate = DefaultWinPct
		}

		if i == 0 {
			e.RestDays = DefaultRestDays
		} else {
			e.RestDays = restDaysBetween(series[i-1].GameDate, g.GameDate)
		}
		e.BackToBack = e.RestDays == 0

		out = append(out, e)

		if g.IsHome {
			homePrior = append(homePrior, g)
		} else {
			awayPrior = append(awayPrior, g)
		}
		tally.games++
		if g.Win {
			tally.wins++
		}
		bySeason[g.Season] = tally
	}

	return out
}

// restDaysBetween counts full off days between consecutive games. Negative
// gaps (out-of-order dates) clamp to zero rather than erroring.
func restDaysBetween(prev, cur time.Time) int {
	days := int(cur.Sub(prev).Hours()/24) - 1
	if days < 0 {
		return 0
	}
	return days
}

// Snapshot is the feature vector a team would carry into a hypothetical next
// game: the same trailing windows, computed over every game strictly before
// the as-of date. Both venue splits are present so the caller can pick the
// side that matches the upcoming fixture.
type Snapshot struct {
	WinPctLast10     float64 `json:"win_pct_last10"`
	PtsForLast10     float64 `json:"pts_for_last10"`
	PtsAgainstLast10 float64 `json:"pts_against_last10"`
	NetLast10        float64 `json:"net_last10"`

	HomeWinPctLast10     float64 `json:"home_win_pct_last10"`
	HomePtsForLast10     float64 `json:"home_pts_for_last10"`
	HomePtsAgainstLast10 float64 `json:"home_pts_against_last10"`
	AwayWinPctLast10     float64 `json:"away_win_pct_last10"`
	AwayPtsForLast10     float64 `json:"away_pts_for_last10"`
	AwayPtsAgainstLast10 float64 `json:"away_pts_against_last10"`

	SeasonWinPctToDate float64 `json:"season_win_pct_to_date"`
	RestDays           int     `json:"rest_days"`
	BackToBack         bool    `json:"b2b"`
}

// ComputeSnapshot summarises a team's form as of asOf, using only games
// played strictly before that date. season selects which label the
// season-to-date rate accumulates over. A team with no prior games gets the
// full set of neutral defaults.
func ComputeSnapshot(series []TeamGame, asOf time.Time, season string) Snapshot {
	cut := len(series)
	for i, g := range series {
		if !g.GameDate.Before(asOf) {
			cut = i
			break
		}
	}
	prior := series[:cut]

	var homePrior, awayPrior []TeamGame
	seasonGames, seasonWins := 0, 0
	for _, g := range prior {
		if g.IsHome {
			homePrior = append(homePrior, g)
		} else {
			awayPrior = append(awayPrior, g)
		}
		if g.Season == season {
			seasonGames++
			if g.Win {
				seasonWins++
			}
		}
	}

	overall := summarizeWindow(lastN(prior, windowSize))
	home := summarizeWindow(lastN(homePrior, windowSize))
	away := summarizeWindow(lastN(awayPrior, windowSize))

	snap := Snapshot{
		WinPctLast10:     overall.WinPct,
		PtsForLast10:     overall.PtsFor,
		PtsAgainstLast10: overall.PtsAgainst,
		NetLast10:        overall.Net,

		HomeWinPctLast10:     home.WinPct,
		HomePtsForLast10:     home.PtsFor,
		HomePtsAgainstLast10: home.PtsAgainst,
		AwayWinPctLast10:     away.WinPct,
		AwayPtsForLast10:     away.PtsFor,
		AwayPtsAgainstLast10: away.PtsAgainst,

		SeasonWinPctToDate: DefaultWinPct,
		RestDays:           DefaultRestDays,
	}
	if seasonGames > 0 {
		snap.SeasonWinPctToDate = float64(seasonWins) / float64(seasonGames)
	}
	if len(prior) > 0 {
		snap.RestDays = restDaysBetween(prior[len(prior)-1].GameDate, asOf)
	}
	snap.BackToBack = snap.RestDays == 0

	return snap
}
