package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"database/sql"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database represents the Atlas PostgreSQL database connection
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase creates a new database connection to Atlas
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

// migration is an embedded schema migration. SQL lives in the binary so a
// fresh deployment needs nothing on disk.
type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_create_team_game_logs.sql",
		sql: `
			CREATE TABLE IF NOT EXISTS team_game_logs (
				game_id     VARCHAR(32)  NOT NULL,
				game_date   DATE         NOT NULL,
				season      VARCHAR(16)  NOT NULL,
				season_type VARCHAR(32),
				team_id     VARCHAR(32)  NOT NULL,
				team_abbr   VARCHAR(8)   NOT NULL,
				is_home     BOOLEAN      NOT NULL,
				wl          VARCHAR(4)   NOT NULL,
				pts         INTEGER,
				matchup     VARCHAR(64),
				created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
				updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
				PRIMARY KEY (game_id, team_id)
			);
			CREATE INDEX IF NOT EXISTS idx_team_game_logs_team_date
				ON team_game_logs (team_id, game_date);
		`,
	},
	{
		version: "002_create_game_features.sql",
		sql: `
			CREATE TABLE IF NOT EXISTS game_features (
				game_id        VARCHAR(32) PRIMARY KEY,
				game_date      DATE         NOT NULL,
				season         VARCHAR(16)  NOT NULL,
				home_team_id   VARCHAR(32)  NOT NULL,
				away_team_id   VARCHAR(32)  NOT NULL,
				home_team_abbr VARCHAR(8)   NOT NULL,
				away_team_abbr VARCHAR(8)   NOT NULL,
				home_win       SMALLINT     NOT NULL,

				home_win_pct_last10          DOUBLE PRECISION NOT NULL,
				away_win_pct_last10          DOUBLE PRECISION NOT NULL,
				home_pts_for_last10          DOUBLE PRECISION NOT NULL,
				away_pts_for_last10          DOUBLE PRECISION NOT NULL,
				home_pts_against_last10      DOUBLE PRECISION NOT NULL,
				away_pts_against_last10      DOUBLE PRECISION NOT NULL,
				home_net_last10              DOUBLE PRECISION NOT NULL,
				away_net_last10              DOUBLE PRECISION NOT NULL,
				home_home_win_pct_last10     DOUBLE PRECISION NOT NULL,
				home_home_pts_for_last10     DOUBLE PRECISION NOT NULL,
				home_home_pts_against_last10 DOUBLE PRECISION NOT NULL,
				away_away_win_pct_last10     DOUBLE PRECISION NOT NULL,
				away_away_pts_for_last10     DOUBLE PRECISION NOT NULL,
				away_away_pts_against_last10 DOUBLE PRECISION NOT NULL,
				home_season_win_pct_to_date  DOUBLE PRECISION NOT NULL,
				away_season_win_pct_to_date  DOUBLE PRECISION NOT NULL,
				home_rest_days               INTEGER NOT NULL,
				away_rest_days               INTEGER NOT NULL,
				home_b2b                     SMALLINT NOT NULL,
				away_b2b                     SMALLINT NOT NULL,

				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_game_features_season_date
				ON game_features (season, game_date);
		`,
	},
	{
		version: "003_create_game_predictions.sql",
		sql: `
			CREATE TABLE IF NOT EXISTS game_predictions (
				game_id           VARCHAR(32)  NOT NULL,
				model_name        VARCHAR(64)  NOT NULL,
				start_time_utc    TIMESTAMPTZ,
				home_team_id      VARCHAR(32),
				away_team_id      VARCHAR(32),
				home_team_abbr    VARCHAR(8),
				away_team_abbr    VARCHAR(8),
				p_home            DOUBLE PRECISION NOT NULL,
				p_away            DOUBLE PRECISION NOT NULL,
				odds_home_decimal DOUBLE PRECISION NOT NULL,
				odds_away_decimal DOUBLE PRECISION NOT NULL,
				margin            DOUBLE PRECISION NOT NULL,
				created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (game_id, model_name)
			);
		`,
	},
	{
		version: "004_create_game_schedule.sql",
		sql: `
			CREATE TABLE IF NOT EXISTS game_schedule (
				game_id        VARCHAR(32) PRIMARY KEY,
				game_date      DATE        NOT NULL,
				start_time     TIMESTAMPTZ,
				season         VARCHAR(16),
				home_team_id   VARCHAR(32) NOT NULL,
				away_team_id   VARCHAR(32) NOT NULL,
				home_team_abbr VARCHAR(8),
				away_team_abbr VARCHAR(8),
				status         VARCHAR(16) NOT NULL DEFAULT 'scheduled'
			);
			CREATE INDEX IF NOT EXISTS idx_game_schedule_start
				ON game_schedule (start_time);
		`,
	},
}

// RunMigrations executes all embedded migrations in order
func (db *Database) RunMigrations() error {
	log.Println("Running database migrations...")

	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All migrations completed successfully")

	return nil
}

// createMigrationsTable creates a table to track which migrations have been run
func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

// runMigration runs a single migration if it hasn't been applied yet
func (db *Database) runMigration(m migration) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		log.Printf("  ⊘ Skipping %s (already applied)", m.version)
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("  ✓ Applied %s", m.version)
	return nil
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
