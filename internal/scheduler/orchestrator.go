package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/publisher"
	"github.com/fortuna/augur/internal/service"
	"github.com/fortuna/augur/internal/store"
)

// Orchestrator manages the scheduled dataset builds and pricing runs
type Orchestrator struct {
	datasets    *service.DatasetService
	predictions *service.PredictionService
	config      *Config
	cancel      context.CancelFunc

	buildCtx    context.Context
	buildCancel context.CancelFunc
	priceCtx    context.Context
	priceCancel context.CancelFunc

	mu        sync.Mutex
	lastBuild time.Time
	lastPrice time.Time
}

// Config holds scheduler configuration
type Config struct {
	DailyBuildHour int           // Default: 4 (4 AM, after the ingester finishes)
	PriceInterval  time.Duration // Default: 1h
	EnableBuilds   bool          // Default: true
	EnablePricing  bool          // Default: true
	MaxRetries     int           // Default: 3
	RetryDelay     time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		DailyBuildHour: 4,
		PriceInterval:  time.Hour,
		EnableBuilds:   true,
		EnablePricing:  true,
		MaxRetries:     3,
		RetryDelay:     5 * time.Second,
	}
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(db *store.Database, c *cache.RedisCache, pub *publisher.RedisStreamPublisher, margin float64, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}

	return &Orchestrator{
		datasets:    service.NewDatasetService(db, c, pub),
		predictions: service.NewPredictionService(db, pub, margin),
		config:      config,
	}
}

// Start begins all scheduled tasks and blocks until the context is cancelled
func (o *Orchestrator) Start(ctx context.Context) {
	log.Println("╔════════════════════════════════════════╗")
	log.Println("║    Augur Scheduler Orchestrator        ║")
	log.Println("╚════════════════════════════════════════╝")
	log.Printf("Daily builds: %v (at %02d:00)", o.config.EnableBuilds, o.config.DailyBuildHour)
	log.Printf("Pricing: %v (interval: %v)", o.config.EnablePricing, o.config.PriceInterval)
	log.Println()

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableBuilds {
		o.buildCtx, o.buildCancel = context.WithCancel(ctx)
		go o.runDailyBuilds(o.buildCtx)
	}

	if o.config.EnablePricing {
		o.priceCtx, o.priceCancel = context.WithCancel(ctx)
		go o.runPricing(o.priceCtx)
	}

	<-ctx.Done()
	log.Println("Scheduler orchestrator stopping...")
}

// runDailyBuilds rebuilds the dataset once a day at the configured hour
func (o *Orchestrator) runDailyBuilds(ctx context.Context) {
	log.Printf("→ Daily build scheduler started (runs at %02d:00 daily)", o.config.DailyBuildHour)

	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), o.config.DailyBuildHour, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}

		waitDuration := time.Until(nextRun)
		log.Printf("  Next dataset build: %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), waitDuration.Round(time.Second))

		select {
		case <-ctx.Done():
			log.Println("→ Daily build scheduler stopped")
			return
		case <-time.After(waitDuration):
			log.Println()
			log.Println("═══ Daily Dataset Build Starting ═══")
			o.buildWithRetry(ctx)
			log.Println("═══ Daily Dataset Build Complete ═══")
			log.Println()
		}
	}
}

// buildWithRetry runs one dataset build with retry logic
func (o *Orchestrator) buildWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		_, err := o.datasets.BuildDataset(ctx, service.BuildOptions{})
		if err == nil {
			o.mu.Lock()
			o.lastBuild = time.Now()
			o.mu.Unlock()
			return
		}

		log.Printf("  ⚠️  Build attempt %d/%d failed: %v", attempt, o.config.MaxRetries, err)
		if attempt < o.config.MaxRetries {
			log.Printf("  Retrying in %v...", o.config.RetryDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.config.RetryDelay):
			}
		}
	}

	log.Printf("  ❌ All %d build attempts failed", o.config.MaxRetries)
}

// runPricing reprices upcoming games on a fixed interval
func (o *Orchestrator) runPricing(ctx context.Context) {
	log.Printf("→ Pricing loop started (interval: %v)", o.config.PriceInterval)

	ticker := time.NewTicker(o.config.PriceInterval)
	defer ticker.Stop()

	consecutiveErrors := 0
	maxConsecutiveErrors := 5

	// Run immediately on start
	o.priceWithDamping(ctx, &consecutiveErrors, maxConsecutiveErrors)

	for {
		select {
		case <-ctx.Done():
			log.Println("→ Pricing loop stopped")
			return
		case <-ticker.C:
			o.priceWithDamping(ctx, &consecutiveErrors, maxConsecutiveErrors)
		}
	}
}

// priceWithDamping runs one pricing pass, slowing down after repeated failures
func (o *Orchestrator) priceWithDamping(ctx context.Context, consecutiveErrors *int, maxConsecutiveErrors int) {
	_, err := o.predictions.PriceUpcoming(ctx)
	if err == nil {
		*consecutiveErrors = 0
		o.mu.Lock()
		o.lastPrice = time.Now()
		o.mu.Unlock()
		return
	}

	*consecutiveErrors++
	log.Printf("  ⚠️  Pricing run failed (%d/%d consecutive): %v", *consecutiveErrors, maxConsecutiveErrors, err)

	if *consecutiveErrors >= maxConsecutiveErrors {
		log.Printf("  ⚠️  High error rate detected. Backing off before next run...")
		select {
		case <-ctx.Done():
		case <-time.After(o.config.RetryDelay * 4):
		}
	}
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	log.Println("Stopping scheduler orchestrator...")

	if o.buildCancel != nil {
		o.buildCancel()
	}
	if o.priceCancel != nil {
		o.priceCancel()
	}
	if o.cancel != nil {
		o.cancel()
	}

	log.Println("✓ Scheduler orchestrator stopped")
}

// TriggerBuild manually runs one dataset build followed by a pricing pass
func (o *Orchestrator) TriggerBuild(ctx context.Context) (*service.BuildResult, error) {
	log.Println("Manual dataset build triggered")

	result, err := o.datasets.BuildDataset(ctx, service.BuildOptions{})
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.lastBuild = time.Now()
	o.mu.Unlock()

	if _, err := o.predictions.PriceUpcoming(ctx); err != nil {
		log.Printf("  ⚠️  Post-build pricing failed: %v", err)
	} else {
		o.mu.Lock()
		o.lastPrice = time.Now()
		o.mu.Unlock()
	}

	return result, nil
}

// Datasets exposes the dataset service to the API layer
func (o *Orchestrator) Datasets() *service.DatasetService {
	return o.datasets
}

// Predictions exposes the prediction service to the API layer
func (o *Orchestrator) Predictions() *service.PredictionService {
	return o.predictions
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := map[string]interface{}{
		"builds_enabled":   o.config.EnableBuilds,
		"daily_build_hour": o.config.DailyBuildHour,
		"pricing_enabled":  o.config.EnablePricing,
		"price_interval":   o.config.PriceInterval.String(),
	}
	if !o.lastBuild.IsZero() {
		status["last_build"] = o.lastBuild.Format(time.RFC3339)
	}
	if !o.lastPrice.IsZero() {
		status["last_price_run"] = o.lastPrice.Format(time.RFC3339)
	}

	return status
}
