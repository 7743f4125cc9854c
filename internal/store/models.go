package store

import (
	"database/sql"
	"time"
)

// TeamGameLog is one raw per-team per-game row from the team_game_logs table.
// The upstream ingester owns the table; augur only reads it. Identifying
// fields may be empty on malformed source rows; the history builder drops
// those, it never repairs them.
type TeamGameLog struct {
	GameID     string         `json:"game_id" db:"game_id"`
	GameDate   sql.NullTime   `json:"game_date" db:"game_date"`
	Season     string         `json:"season" db:"season"`
	SeasonType sql.NullString `json:"season_type,omitempty" db:"season_type"`
	TeamID     string         `json:"team_id" db:"team_id"`
	TeamAbbr   string         `json:"team_abbr" db:"team_abbr"`
	IsHome     bool           `json:"is_home" db:"is_home"`
	WL         string         `json:"wl" db:"wl"`
	Pts        sql.NullInt32  `json:"pts,omitempty" db:"pts"`
	Matchup    sql.NullString `json:"matchup,omitempty" db:"matchup"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// PairedGameFeatures is one row of the training dataset: both teams' derived
// form statistics for a single game, every statistic computed strictly from
// games played before this one. Keyed on game_id.
type PairedGameFeatures struct {
	GameID       string    `json:"game_id" db:"game_id"`
	GameDate     time.Time `json:"game_date" db:"game_date"`
	Season       string    `json:"season" db:"season"`
	HomeTeamID   string    `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   string    `json:"away_team_id" db:"away_team_id"`
	HomeTeamAbbr string    `json:"home_team_abbr" db:"home_team_abbr"`
	AwayTeamAbbr string    `json:"away_team_abbr" db:"away_team_abbr"`

	// Label: 1 if the home side outscored the away side.
	HomeWin int `json:"home_win" db:"home_win"`

	HomeWinPctLast10     float64 `json:"home_win_pct_last10" db:"home_win_pct_last10"`
	AwayWinPctLast10     float64 `json:"away_win_pct_last10" db:"away_win_pct_last10"`
	HomePtsForLast10     float64 `json:"home_pts_for_last10" db:"home_pts_for_last10"`
	AwayPtsForLast10     float64 `json:"away_pts_for_last10" db:"away_pts_for_last10"`
	HomePtsAgainstLast10 float64 `json:"home_pts_against_last10" db:"home_pts_against_last10"`
	AwayPtsAgainstLast10 float64 `json:"away_pts_against_last10" db:"away_pts_against_last10"`
	HomeNetLast10        float64 `json:"home_net_last10" db:"home_net_last10"`
	AwayNetLast10        float64 `json:"away_net_last10" db:"away_net_last10"`

	// Venue splits: the home team's home-only form and the away team's
	// away-only form.
	HomeHomeWinPctLast10     float64 `json:"home_home_win_pct_last10" db:"home_home_win_pct_last10"`
	HomeHomePtsForLast10     float64 `json:"home_home_pts_for_last10" db:"home_home_pts_for_last10"`
	HomeHomePtsAgainstLast10 float64 `json:"home_home_pts_against_last10" db:"home_home_pts_against_last10"`
	AwayAwayWinPctLast10     float64 `json:"away_away_win_pct_last10" db:"away_away_win_pct_last10"`
	AwayAwayPtsForLast10     float64 `json:"away_away_pts_for_last10" db:"away_away_pts_for_last10"`
	AwayAwayPtsAgainstLast10 float64 `json:"away_away_pts_against_last10" db:"away_away_pts_against_last10"`

	HomeSeasonWinPctToDate float64 `json:"home_season_win_pct_to_date" db:"home_season_win_pct_to_date"`
	AwaySeasonWinPctToDate float64 `json:"away_season_win_pct_to_date" db:"away_season_win_pct_to_date"`

	HomeRestDays int `json:"home_rest_days" db:"home_rest_days"`
	AwayRestDays int `json:"away_rest_days" db:"away_rest_days"`
	HomeB2B      int `json:"home_b2b" db:"home_b2b"`
	AwayB2B      int `json:"away_b2b" db:"away_b2b"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UpcomingGame is a scheduled game from the game_schedule table.
type UpcomingGame struct {
	GameID       string         `json:"game_id" db:"game_id"`
	GameDate     time.Time      `json:"game_date" db:"game_date"`
	StartTime    sql.NullTime   `json:"start_time,omitempty" db:"start_time"`
	Season       sql.NullString `json:"season,omitempty" db:"season"`
	HomeTeamID   string         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   string         `json:"away_team_id" db:"away_team_id"`
	HomeTeamAbbr sql.NullString `json:"home_team_abbr,omitempty" db:"home_team_abbr"`
	AwayTeamAbbr sql.NullString `json:"away_team_abbr,omitempty" db:"away_team_abbr"`
	Status       string         `json:"status" db:"status"`
}

// GamePrediction is one priced game for one model. Keyed on
// (game_id, model_name) so several models can price the same game.
type GamePrediction struct {
	GameID          string         `json:"game_id" db:"game_id"`
	ModelName       string         `json:"model_name" db:"model_name"`
	StartTimeUTC    sql.NullTime   `json:"start_time_utc,omitempty" db:"start_time_utc"`
	HomeTeamID      sql.NullString `json:"home_team_id,omitempty" db:"home_team_id"`
	AwayTeamID      sql.NullString `json:"away_team_id,omitempty" db:"away_team_id"`
	HomeTeamAbbr    sql.NullString `json:"home_team_abbr,omitempty" db:"home_team_abbr"`
	AwayTeamAbbr    sql.NullString `json:"away_team_abbr,omitempty" db:"away_team_abbr"`
	PHome           float64        `json:"p_home" db:"p_home"`
	PAway           float64        `json:"p_away" db:"p_away"`
	OddsHomeDecimal float64        `json:"odds_home_decimal" db:"odds_home_decimal"`
	OddsAwayDecimal float64        `json:"odds_away_decimal" db:"odds_away_decimal"`
	Margin          float64        `json:"margin" db:"margin"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}
