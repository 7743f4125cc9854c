package features

import (
	"sort"
	"time"

	"github.com/fortuna/augur/internal/store"
)

// pairingKey matches one team's home-flagged record with the opponent's
// away-flagged record for the same game.
type pairingKey struct {
	GameID string
	Date   time.Time
	Season string
}

// PairGames inner-joins home and away enriched records into one row per game.
// Games where either side failed cleaning, or where either side's points are
// unknown (no home_win label can be derived), are silently omitted — a
// coverage gap, not an error. The result is ordered by (date, game id).
func PairGames(teams map[string][]EnrichedTeamGame) []store.PairedGameFeatures {
	var homes []EnrichedTeamGame
	aways := make(map[pairingKey]EnrichedTeamGame)

	for _, series := range teams {
		for _, e := range series {
			if e.IsHome {
				homes = append(homes, e)
			} else {
				aways[pairingKey{e.GameID, e.GameDate, e.Season}] = e
			}
		}
	}

	out := make([]store.PairedGameFeatures, 0, len(homes))
	for _, home := range homes {
		away, ok := aways[pairingKey{home.GameID, home.GameDate, home.Season}]
		if !ok {
			continue
		}
		if !home.PtsFor.Valid || !away.PtsFor.Valid {
			continue
		}

		homeWin := 0
		if home.PtsFor.Float64 > away.PtsFor.Float64 {
			homeWin = 1
		}

		out = append(out, store.PairedGameFeatures{
			GameID:       home.GameID,
			GameDate:     home.GameDate,
			Season:       home.Season,
			HomeTeamID:   home.TeamID,
			AwayTeamID:   away.TeamID,
			HomeTeamAbbr: home.TeamAbbr,
			AwayTeamAbbr: away.TeamAbbr,
			HomeWin:      homeWin,

			HomeWinPctLast10:     home.WinPctLast10,
			AwayWinPctLast10:     away.WinPctLast10,
			HomePtsForLast10:     home.PtsForLast10,
			AwayPtsForLast10:     away.PtsForLast10,
			HomePtsAgainstLast10: home.PtsAgainstLast10,
			AwayPtsAgainstLast10: away.PtsAgainstLast10,
			HomeNetLast10:        home.NetLast10,
			AwayNetLast10:        away.NetLast10,

			HomeHomeWinPctLast10:     home.SplitWinPctLast10,
			HomeHomePtsForLast10:     home.SplitPtsForLast10,
			HomeHomePtsAgainstLast10: home.SplitPtsAgainstLast10,
			AwayAwayWinPctLast10:     away.SplitWinPctLast10,
			AwayAwayPtsForLast10:     away.SplitPtsForLast10,
			AwayAwayPtsAgainstLast10: away.SplitPtsAgainstLast10,

			HomeSeasonWinPctToDate: home.SeasonWinPctToDate,
			AwaySeasonWinPctToDate: away.SeasonWinPctToDate,

			HomeRestDays: home.RestDays,
			AwayRestDays: away.RestDays,
			HomeB2B:      boolToInt(home.BackToBack),
			AwayB2B:      boolToInt(away.BackToBack),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].GameDate.Equal(out[j].GameDate) {
			return out[i].GameDate.Before(out[j].GameDate)
		}
		return out[i].GameID < out[j].GameID
	})

	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
