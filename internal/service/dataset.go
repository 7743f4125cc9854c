package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/features"
	"github.com/fortuna/augur/internal/publisher"
	"github.com/fortuna/augur/internal/store"
	"github.com/fortuna/augur/internal/store/repository"
)

// DatasetService owns the full dataset build: raw rows in, paired feature
// rows out.
type DatasetService struct {
	logRepo     *repository.GameLogRepository
	featureRepo *repository.FeatureRepository
	cache       *cache.RedisCache
	publisher   *publisher.RedisStreamPublisher

	fetchPageSize   int
	upsertBatchSize int
}

// NewDatasetService creates a new dataset service. cache and pub may be nil
// (the one-shot CLI runs without them).
func NewDatasetService(db *store.Database, c *cache.RedisCache, pub *publisher.RedisStreamPublisher) *DatasetService {
	return &DatasetService{
		logRepo:         repository.NewGameLogRepository(db),
		featureRepo:     repository.NewFeatureRepository(db),
		cache:           c,
		publisher:       pub,
		fetchPageSize:   1000,
		upsertBatchSize: 200,
	}
}

// BuildOptions narrows or defuses a build. The zero value is a full build.
type BuildOptions struct {
	Seasons []string // restrict to these season labels; empty means all
	DryRun  bool     // compute and report, write nothing
}

// BuildResult summarises one dataset build
type BuildResult struct {
	RawRows          int           `json:"raw_rows"`
	Teams            int           `json:"teams"`
	DroppedMissing   int           `json:"dropped_missing"`
	DroppedDuplicate int           `json:"dropped_duplicate"`
	UnpairedRows     int           `json:"unpaired_rows"`
	PairedGames      int           `json:"paired_games"`
	Duration         time.Duration `json:"-"`
}

// BuildDataset runs the full pipeline: fetch raw logs, clean and pair them
// into per-team histories, derive rolling features, join both sides of each
// game, and persist the result. Snapshots and a stream event go out at the
// end when cache/publisher are wired.
func (s *DatasetService) BuildDataset(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	startTime := time.Now()
	log.Println("Building feature dataset...")

	raws, err := s.logRepo.FetchAll(ctx, s.fetchPageSize)
	if err != nil {
		return nil, fmt.Errorf("fetching game logs: %w", err)
	}
	log.Printf("  Fetched %d raw game log rows", len(raws))

	if len(opts.Seasons) > 0 {
		raws = filterSeasons(raws, opts.Seasons)
		log.Printf("  Season filter %v: %d rows remain", opts.Seasons, len(raws))
	}

	histories, stats := features.BuildHistory(raws)
	log.Printf("  Cleaned: kept %d rows across %d teams (dropped %d missing, %d duplicate, %d unpaired)",
		stats.Kept, len(histories), stats.DroppedMissing, stats.DroppedDuplicate, stats.Unpaired)

	enriched := make(map[string][]features.EnrichedTeamGame, len(histories))
	for teamID, series := range histories {
		enriched[teamID] = features.ComputeFeatures(series)
	}

	paired := features.PairGames(enriched)
	log.Printf("  Paired %d games", len(paired))

	result := &BuildResult{
		RawRows:          len(raws),
		Teams:            len(histories),
		DroppedMissing:   stats.DroppedMissing,
		DroppedDuplicate: stats.DroppedDuplicate,
		UnpairedRows:     stats.Unpaired,
		PairedGames:      len(paired),
	}

	if opts.DryRun {
		result.Duration = time.Since(startTime)
		log.Printf("✓ Dry run complete: %d paired games, nothing written", len(paired))
		return result, nil
	}

	written, err := s.featureRepo.UpsertBatch(ctx, paired, s.upsertBatchSize)
	if err != nil {
		return nil, fmt.Errorf("upserting feature rows (wrote %d before failure): %w", written, err)
	}

	result.Duration = time.Since(startTime)
	s.cacheSnapshots(ctx, histories)
	s.publishUpdate(ctx, result)

	log.Printf("✓ Dataset build complete: %d paired games in %v", len(paired), result.Duration.Round(time.Second))
	return result, nil
}

// filterSeasons keeps only rows whose season label is in the allow list
func filterSeasons(raws []store.TeamGameLog, seasons []string) []store.TeamGameLog {
	allowed := make(map[string]bool, len(seasons))
	for _, s := range seasons {
		allowed[s] = true
	}

	out := raws[:0]
	for _, r := range raws {
		if allowed[r.Season] {
			out = append(out, r)
		}
	}
	return out
}

// TeamSnapshot returns one team's current form, cache-first. A cache miss
// falls through to Atlas and repopulates the cache.
func (s *DatasetService) TeamSnapshot(ctx context.Context, teamID string, asOf time.Time, season string) (*features.Snapshot, error) {
	if s.cache != nil {
		if snap, err := s.cache.GetTeamSnapshot(ctx, teamID); err == nil {
			return snap, nil
		}
	}

	// The whole table, not just this team's rows: opponent points resolve
	// from the sibling row of each game.
	raws, err := s.logRepo.FetchAll(ctx, s.fetchPageSize)
	if err != nil {
		return nil, fmt.Errorf("fetching game logs: %w", err)
	}

	histories, _ := features.BuildHistory(raws)
	snap := features.ComputeSnapshot(histories[teamID], asOf, season)

	if s.cache != nil {
		if err := s.cache.SetTeamSnapshot(ctx, teamID, snap); err != nil {
			log.Printf("  ⚠️  Failed to cache snapshot for team %s: %v", teamID, err)
		}
	}

	return &snap, nil
}

// cacheSnapshots refreshes every team's cached form after a build
func (s *DatasetService) cacheSnapshots(ctx context.Context, histories map[string][]features.TeamGame) {
	if s.cache == nil {
		return
	}

	now := time.Now()
	cached := 0
	for teamID, series := range histories {
		season := ""
		if len(series) > 0 {
			season = series[len(series)-1].Season
		}
		snap := features.ComputeSnapshot(series, now, season)
		if err := s.cache.SetTeamSnapshot(ctx, teamID, snap); err != nil {
			log.Printf("  ⚠️  Failed to cache snapshot for team %s: %v", teamID, err)
			continue
		}
		cached++
	}
	log.Printf("  ✓ Cached %d team form snapshots", cached)
}

// publishUpdate announces the build on the dataset stream
func (s *DatasetService) publishUpdate(ctx context.Context, result *BuildResult) {
	if s.publisher == nil {
		return
	}

	update := publisher.DatasetUpdate{
		Rows:            result.PairedGames,
		Teams:           result.Teams,
		DroppedMissing:  result.DroppedMissing,
		DroppedDupe:     result.DroppedDuplicate,
		UnpairedGames:   result.UnpairedRows,
		DurationSeconds: int(result.Duration.Seconds()),
	}
	if err := s.publisher.PublishDatasetUpdate(ctx, update); err != nil {
		log.Printf("  ⚠️  Failed to publish dataset update: %v", err)
	}
}
