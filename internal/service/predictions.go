package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/fortuna/augur/internal/features"
	"github.com/fortuna/augur/internal/model"
	"github.com/fortuna/augur/internal/odds"
	"github.com/fortuna/augur/internal/publisher"
	"github.com/fortuna/augur/internal/store"
	"github.com/fortuna/augur/internal/store/repository"
)

// ModelName identifies this pricer's rows in game_predictions
const ModelName = "augur-logit-v2"

// PredictionService trains the home-win model and prices upcoming games
type PredictionService struct {
	logRepo     *repository.GameLogRepository
	featureRepo *repository.FeatureRepository
	predRepo    *repository.PredictionRepository
	publisher   *publisher.RedisStreamPublisher

	margin float64
}

// NewPredictionService creates a new prediction service. pub may be nil.
func NewPredictionService(db *store.Database, pub *publisher.RedisStreamPublisher, margin float64) *PredictionService {
	if margin < 0 {
		margin = odds.DefaultMargin
	}

	return &PredictionService{
		logRepo:     repository.NewGameLogRepository(db),
		featureRepo: repository.NewFeatureRepository(db),
		predRepo:    repository.NewPredictionRepository(db),
		publisher:   pub,
		margin:      margin,
	}
}

// PriceResult summarises one pricing run
type PriceResult struct {
	TrainingRows int `json:"training_rows"`
	Upcoming     int `json:"upcoming"`
	Priced       int `json:"priced"`
	Skipped      int `json:"skipped"`
}

// PriceUpcoming trains on the current paired dataset, then prices every
// not-yet-started game on the schedule: a form snapshot per side, a model
// probability, and decimal odds at the configured margin.
func (s *PredictionService) PriceUpcoming(ctx context.Context) (*PriceResult, error) {
	log.Println("Pricing upcoming games...")

	rows, err := s.featureRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading training dataset: %w", err)
	}

	m, err := model.TrainLogistic(rows)
	if err != nil {
		return nil, fmt.Errorf("training model: %w", err)
	}
	log.Printf("  Trained %s on %d paired games", ModelName, len(rows))

	upcoming, err := s.predRepo.GetUpcoming(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("loading upcoming games: %w", err)
	}

	// Opponent points resolve across rows, so histories are built from the
	// whole table once and shared by every snapshot in this run.
	raws, err := s.logRepo.FetchAll(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching game logs: %w", err)
	}
	histories, _ := features.BuildHistory(raws)

	result := &PriceResult{TrainingRows: len(rows), Upcoming: len(upcoming)}
	for i := range upcoming {
		if err := s.priceGame(ctx, m, histories, &upcoming[i]); err != nil {
			log.Printf("  ⚠️  Skipping game %s: %v", upcoming[i].GameID, err)
			result.Skipped++
			continue
		}
		result.Priced++
	}

	log.Printf("✓ Priced %d/%d upcoming games", result.Priced, len(upcoming))
	return result, nil
}

func (s *PredictionService) priceGame(ctx context.Context, m *model.Logistic, histories map[string][]features.TeamGame, game *store.UpcomingGame) error {
	season := game.Season.String

	homeSnap := features.ComputeSnapshot(histories[game.HomeTeamID], game.GameDate, season)
	awaySnap := features.ComputeSnapshot(histories[game.AwayTeamID], game.GameDate, season)

	pHome := m.PredictProba(model.VectorFromSnapshots(homeSnap, awaySnap))
	oddsHome, oddsAway := odds.Decimal(pHome, s.margin)

	pred := &store.GamePrediction{
		GameID:          game.GameID,
		ModelName:       ModelName,
		StartTimeUTC:    game.StartTime,
		HomeTeamID:      sql.NullString{String: game.HomeTeamID, Valid: true},
		AwayTeamID:      sql.NullString{String: game.AwayTeamID, Valid: true},
		HomeTeamAbbr:    game.HomeTeamAbbr,
		AwayTeamAbbr:    game.AwayTeamAbbr,
		PHome:           pHome,
		PAway:           1 - pHome,
		OddsHomeDecimal: oddsHome,
		OddsAwayDecimal: oddsAway,
		Margin:          s.margin,
	}

	if err := s.predRepo.Upsert(ctx, pred); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishPrediction(ctx, pred); err != nil {
			log.Printf("  ⚠️  Failed to publish prediction for game %s: %v", game.GameID, err)
		}
	}

	return nil
}

// LatestPredictions returns the most recent prices for this model
func (s *PredictionService) LatestPredictions(ctx context.Context, limit int) ([]store.GamePrediction, error) {
	return s.predRepo.GetLatest(ctx, ModelName, limit)
}
