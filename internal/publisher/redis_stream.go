package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/augur/internal/store"
)

// Stream names consumed by downstream fortuna services
const (
	datasetStream    = "features.dataset.basketball_nba"
	predictionStream = "predictions.moneyline.basketball_nba"
)

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// DatasetUpdate announces a completed dataset build
type DatasetUpdate struct {
	Rows            int `json:"rows"`
	Teams           int `json:"teams"`
	DroppedMissing  int `json:"dropped_missing"`
	DroppedDupe     int `json:"dropped_duplicate"`
	UnpairedGames   int `json:"unpaired_games"`
	DurationSeconds int `json:"duration_seconds"`
}

// PublishDatasetUpdate publishes a dataset.updated event to the stream
func (rsp *RedisStreamPublisher) PublishDatasetUpdate(ctx context.Context, update DatasetUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: datasetStream,
		Values: map[string]interface{}{
			"event":     "dataset.updated",
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// PublishPrediction publishes one priced game to the stream
func (rsp *RedisStreamPublisher) PublishPrediction(ctx context.Context, pred *store.GamePrediction) error {
	data, err := json.Marshal(pred)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: predictionStream,
		Values: map[string]interface{}{
			"event":     "prediction.priced",
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
