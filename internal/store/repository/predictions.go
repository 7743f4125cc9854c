package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/augur/internal/store"
)

// PredictionRepository handles priced games and the upcoming schedule
type PredictionRepository struct {
	db *store.Database
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *store.Database) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// GetUpcoming returns scheduled games that have not started yet, soonest first
func (r *PredictionRepository) GetUpcoming(ctx context.Context, limit int) ([]store.UpcomingGame, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT game_id, game_date, start_time, season, home_team_id, away_team_id,
			home_team_abbr, away_team_abbr, status
		FROM game_schedule
		WHERE status = 'scheduled'
		  AND (start_time IS NULL OR start_time > NOW())
		ORDER BY start_time NULLS LAST, game_date
		LIMIT $1
	`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming games: %w", err)
	}
	defer rows.Close()

	var games []store.UpcomingGame
	for rows.Next() {
		var g store.UpcomingGame
		err := rows.Scan(
			&g.GameID, &g.GameDate, &g.StartTime, &g.Season, &g.HomeTeamID,
			&g.AwayTeamID, &g.HomeTeamAbbr, &g.AwayTeamAbbr, &g.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning upcoming game: %w", err)
		}
		games = append(games, g)
	}

	return games, rows.Err()
}

// Upsert writes one priced game, keyed on (game_id, model_name). Repricing a
// game overwrites the previous price for the same model.
func (r *PredictionRepository) Upsert(ctx context.Context, p *store.GamePrediction) error {
	query := `
		INSERT INTO game_predictions (game_id, model_name, start_time_utc,
			home_team_id, away_team_id, home_team_abbr, away_team_abbr,
			p_home, p_away, odds_home_decimal, odds_away_decimal, margin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (game_id, model_name) DO UPDATE SET
			start_time_utc = EXCLUDED.start_time_utc,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_team_abbr = EXCLUDED.home_team_abbr,
			away_team_abbr = EXCLUDED.away_team_abbr,
			p_home = EXCLUDED.p_home,
			p_away = EXCLUDED.p_away,
			odds_home_decimal = EXCLUDED.odds_home_decimal,
			odds_away_decimal = EXCLUDED.odds_away_decimal,
			margin = EXCLUDED.margin,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		p.GameID, p.ModelName, p.StartTimeUTC,
		p.HomeTeamID, p.AwayTeamID, p.HomeTeamAbbr, p.AwayTeamAbbr,
		p.PHome, p.PAway, p.OddsHomeDecimal, p.OddsAwayDecimal, p.Margin,
	)
	if err != nil {
		return fmt.Errorf("upserting prediction for game %s: %w", p.GameID, err)
	}

	return nil
}

// GetLatest returns the most recently updated prices for one model
func (r *PredictionRepository) GetLatest(ctx context.Context, modelName string, limit int) ([]store.GamePrediction, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT game_id, model_name, start_time_utc, home_team_id, away_team_id,
			home_team_abbr, away_team_abbr, p_home, p_away,
			odds_home_decimal, odds_away_decimal, margin, created_at, updated_at
		FROM game_predictions
		WHERE model_name = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, modelName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying predictions for model %s: %w", modelName, err)
	}
	defer rows.Close()

	var preds []store.GamePrediction
	for rows.Next() {
		var p store.GamePrediction
		err := rows.Scan(
			&p.GameID, &p.ModelName, &p.StartTimeUTC, &p.HomeTeamID, &p.AwayTeamID,
			&p.HomeTeamAbbr, &p.AwayTeamAbbr, &p.PHome, &p.PAway,
			&p.OddsHomeDecimal, &p.OddsAwayDecimal, &p.Margin, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning prediction: %w", err)
		}
		preds = append(preds, p)
	}

	return preds, rows.Err()
}
