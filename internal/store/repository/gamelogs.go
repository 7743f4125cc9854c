package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/augur/internal/store"
)

// GameLogRepository reads raw team game log rows. The upstream ingester owns
// the table; augur never writes to it.
type GameLogRepository struct {
	db *store.Database
}

// NewGameLogRepository creates a new game log repository
func NewGameLogRepository(db *store.Database) *GameLogRepository {
	return &GameLogRepository{db: db}
}

const gameLogColumns = `game_id, game_date, season, season_type, team_id, team_abbr,
	is_home, wl, pts, matchup, created_at, updated_at`

// FetchAll pages through the whole team_game_logs table. The table is the
// row-paging boundary with the upstream ingester: rows come back in fixed-size
// pages ordered by (game_id, team_id) until a short page signals the end.
func (r *GameLogRepository) FetchAll(ctx context.Context, pageSize int) ([]store.TeamGameLog, error) {
	if pageSize <= 0 {
		pageSize = 1000
	}

	var all []store.TeamGameLog
	offset := 0
	for {
		query := fmt.Sprintf(`
			SELECT %s
			FROM team_game_logs
			ORDER BY game_id, team_id
			LIMIT $1 OFFSET $2
		`, gameLogColumns)

		rows, err := r.db.DB().QueryContext(ctx, query, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("querying game logs page at %d: %w", offset, err)
		}

		page, err := scanGameLogs(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
		offset += pageSize
	}

	return all, nil
}

func scanGameLogs(rows *sql.Rows) ([]store.TeamGameLog, error) {
	var logs []store.TeamGameLog
	for rows.Next() {
		var l store.TeamGameLog
		err := rows.Scan(
			&l.GameID, &l.GameDate, &l.Season, &l.SeasonType, &l.TeamID, &l.TeamAbbr,
			&l.IsHome, &l.WL, &l.Pts, &l.Matchup, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
