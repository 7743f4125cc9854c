package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/augur/internal/store"
)

// FeatureRepository handles paired game feature rows
type FeatureRepository struct {
	db *store.Database
}

// NewFeatureRepository creates a new feature repository
func NewFeatureRepository(db *store.Database) *FeatureRepository {
	return &FeatureRepository{db: db}
}

const featureColumns = `game_id, game_date, season, home_team_id, away_team_id,
	home_team_abbr, away_team_abbr, home_win,
	home_win_pct_last10, away_win_pct_last10,
	home_pts_for_last10, away_pts_for_last10,
	home_pts_against_last10, away_pts_against_last10,
	home_net_last10, away_net_last10,
	home_home_win_pct_last10, home_home_pts_for_last10, home_home_pts_against_last10,
	away_away_win_pct_last10, away_away_pts_for_last10, away_away_pts_against_last10,
	home_season_win_pct_to_date, away_season_win_pct_to_date,
	home_rest_days, away_rest_days, home_b2b, away_b2b,
	created_at, updated_at`

// GetByGameID returns the paired feature row for one game
func (r *FeatureRepository) GetByGameID(ctx context.Context, gameID string) (*store.PairedGameFeatures, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM game_features
		WHERE game_id = $1
	`, featureColumns)

	row := r.db.DB().QueryRowContext(ctx, query, gameID)
	p, err := scanFeatureRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying feature row for game %s: %w", gameID, err)
	}

	return p, nil
}

// GetByDate returns all paired rows for games played on one calendar date
func (r *FeatureRepository) GetByDate(ctx context.Context, date time.Time) ([]store.PairedGameFeatures, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM game_features
		WHERE game_date = $1
		ORDER BY game_id
	`, featureColumns)

	rows, err := r.db.DB().QueryContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("querying feature rows for date: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetAll returns the full paired dataset in chronological order. The model
// trainer consumes this directly.
func (r *FeatureRepository) GetAll(ctx context.Context) ([]store.PairedGameFeatures, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM game_features
		ORDER BY game_date, game_id
	`, featureColumns)

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying all feature rows: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetBySeason returns all paired rows for one season in chronological order
func (r *FeatureRepository) GetBySeason(ctx context.Context, season string) ([]store.PairedGameFeatures, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM game_features
		WHERE season = $1
		ORDER BY game_date, game_id
	`, featureColumns)

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying feature rows for season %s: %w", season, err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// UpsertBatch writes paired rows in chunks, keyed on game_id. A rebuild of the
// dataset replaces every row it touches.
func (r *FeatureRepository) UpsertBatch(ctx context.Context, features []store.PairedGameFeatures, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 200
	}

	written := 0
	for start := 0; start < len(features); start += batchSize {
		end := start + batchSize
		if end > len(features) {
			end = len(features)
		}

		if err := r.upsertChunk(ctx, features[start:end]); err != nil {
			return written, err
		}
		written = end
	}

	return written, nil
}

func (r *FeatureRepository) upsertChunk(ctx context.Context, features []store.PairedGameFeatures) error {
	const cols = 28
	values := make([]string, 0, len(features))
	args := make([]interface{}, 0, len(features)*cols)

	for i := range features {
		f := &features[i]
		base := i * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			f.GameID, f.GameDate, f.Season, f.HomeTeamID, f.AwayTeamID,
			f.HomeTeamAbbr, f.AwayTeamAbbr, f.HomeWin,
			f.HomeWinPctLast10, f.AwayWinPctLast10,
			f.HomePtsForLast10, f.AwayPtsForLast10,
			f.HomePtsAgainstLast10, f.AwayPtsAgainstLast10,
			f.HomeNetLast10, f.AwayNetLast10,
			f.HomeHomeWinPctLast10, f.HomeHomePtsForLast10, f.HomeHomePtsAgainstLast10,
			f.AwayAwayWinPctLast10, f.AwayAwayPtsForLast10, f.AwayAwayPtsAgainstLast10,
			f.HomeSeasonWinPctToDate, f.AwaySeasonWinPctToDate,
			f.HomeRestDays, f.AwayRestDays, f.HomeB2B, f.AwayB2B,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO game_features (game_id, game_date, season, home_team_id, away_team_id,
			home_team_abbr, away_team_abbr, home_win,
			home_win_pct_last10, away_win_pct_last10,
			home_pts_for_last10, away_pts_for_last10,
			home_pts_against_last10, away_pts_against_last10,
			home_net_last10, away_net_last10,
			home_home_win_pct_last10, home_home_pts_for_last10, home_home_pts_against_last10,
			away_away_win_pct_last10, away_away_pts_for_last10, away_away_pts_against_last10,
			home_season_win_pct_to_date, away_season_win_pct_to_date,
			home_rest_days, away_rest_days, home_b2b, away_b2b)
		VALUES %s
		ON CONFLICT (game_id) DO UPDATE SET
			game_date = EXCLUDED.game_date,
			season = EXCLUDED.season,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_team_abbr = EXCLUDED.home_team_abbr,
			away_team_abbr = EXCLUDED.away_team_abbr,
			home_win = EXCLUDED.home_win,
			home_win_pct_last10 = EXCLUDED.home_win_pct_last10,
			away_win_pct_last10 = EXCLUDED.away_win_pct_last10,
			home_pts_for_last10 = EXCLUDED.home_pts_for_last10,
			away_pts_for_last10 = EXCLUDED.away_pts_for_last10,
			home_pts_against_last10 = EXCLUDED.home_pts_against_last10,
			away_pts_against_last10 = EXCLUDED.away_pts_against_last10,
			home_net_last10 = EXCLUDED.home_net_last10,
			away_net_last10 = EXCLUDED.away_net_last10,
			home_home_win_pct_last10 = EXCLUDED.home_home_win_pct_last10,
			home_home_pts_for_last10 = EXCLUDED.home_home_pts_for_last10,
			home_home_pts_against_last10 = EXCLUDED.home_home_pts_against_last10,
			away_away_win_pct_last10 = EXCLUDED.away_away_win_pct_last10,
			away_away_pts_for_last10 = EXCLUDED.away_away_pts_for_last10,
			away_away_pts_against_last10 = EXCLUDED.away_away_pts_against_last10,
			home_season_win_pct_to_date = EXCLUDED.home_season_win_pct_to_date,
			away_season_win_pct_to_date = EXCLUDED.away_season_win_pct_to_date,
			home_rest_days = EXCLUDED.home_rest_days,
			away_rest_days = EXCLUDED.away_rest_days,
			home_b2b = EXCLUDED.home_b2b,
			away_b2b = EXCLUDED.away_b2b,
			updated_at = NOW()
	`, strings.Join(values, ", "))

	if _, err := r.db.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting feature chunk: %w", err)
	}

	return nil
}

func scanFeatureRow(row *sql.Row) (*store.PairedGameFeatures, error) {
	var f store.PairedGameFeatures
	err := row.Scan(
		&f.GameID, &f.GameDate, &f.Season, &f.HomeTeamID, &f.AwayTeamID,
		&f.HomeTeamAbbr, &f.AwayTeamAbbr, &f.HomeWin,
		&f.HomeWinPctLast10, &f.AwayWinPctLast10,
		&f.HomePtsForLast10, &f.AwayPtsForLast10,
		&f.HomePtsAgainstLast10, &f.AwayPtsAgainstLast10,
		&f.HomeNetLast10, &f.AwayNetLast10,
		&f.HomeHomeWinPctLast10, &f.HomeHomePtsForLast10, &f.HomeHomePtsAgainstLast10,
		&f.AwayAwayWinPctLast10, &f.AwayAwayPtsForLast10, &f.AwayAwayPtsAgainstLast10,
		&f.HomeSeasonWinPctToDate, &f.AwaySeasonWinPctToDate,
		&f.HomeRestDays, &f.AwayRestDays, &f.HomeB2B, &f.AwayB2B,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func scanFeatureRows(rows *sql.Rows) ([]store.PairedGameFeatures, error) {
	var out []store.PairedGameFeatures
	for rows.Next() {
		var f store.PairedGameFeatures
		err := rows.Scan(
			&f.GameID, &f.GameDate, &f.Season, &f.HomeTeamID, &f.AwayTeamID,
			&f.HomeTeamAbbr, &f.AwayTeamAbbr, &f.HomeWin,
			&f.HomeWinPctLast10, &f.AwayWinPctLast10,
			&f.HomePtsForLast10, &f.AwayPtsForLast10,
			&f.HomePtsAgainstLast10, &f.AwayPtsAgainstLast10,
			&f.HomeNetLast10, &f.AwayNetLast10,
			&f.HomeHomeWinPctLast10, &f.HomeHomePtsForLast10, &f.HomeHomePtsAgainstLast10,
			&f.AwayAwayWinPctLast10, &f.AwayAwayPtsForLast10, &f.AwayAwayPtsAgainstLast10,
			&f.HomeSeasonWinPctToDate, &f.AwaySeasonWinPctToDate,
			&f.HomeRestDays, &f.AwayRestDays, &f.HomeB2B, &f.AwayB2B,
			&f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning feature row: %w", err)
		}
		out = append(out, f)
	}

	return out, rows.Err()
}
