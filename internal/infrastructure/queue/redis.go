package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/streamtip/donation-service/internal/config"
	"go.uber.org/zap"
)

// DonationMessage is the signed payload carried on the donation queue.
type DonationMessage struct {
	DonationID int64           `json:"donation_id"`
	StreamerID int64           `json:"streamer_id"`
	DonorName  string          `json:"donor_name"`
	Amount     decimal.Decimal `json:"amount"`
	Message    string          `json:"message"`
}

// Envelope wraps a donation message with its HMAC signature. This is the
// exact JSON shape stored on the redis list. MessageID is a tracing aid
// only; it is not covered by the signature.
type Envelope struct {
	MessageID string          `json:"message_id"`
	Donation  DonationMessage `json:"donation"`
	Signature string          `json:"signature"`
}

// NewRedisClient creates a redis client and verifies connectivity.
func NewRedisClient(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Redis connection failed",
			zap.String("addr", cfg.Addr()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connection established",
		zap.String("addr", cfg.Addr()))

	return client, nil
}

// DonationQueue is a durable FIFO list of signed donation events.
// Producers push to the tail; the worker blocks on the head.
type DonationQueue struct {
	client *redis.Client
	name   string
	logger *zap.Logger
}

// NewDonationQueue creates a queue over the given redis list name.
func NewDonationQueue(client *redis.Client, name string, logger *zap.Logger) *DonationQueue {
	return &DonationQueue{
		client: client,
		name:   name,
		logger: logger,
	}
}

// Push appends an envelope to the queue.
func (q *DonationQueue) Push(ctx context.Context, envelope *Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to serialize queue message: %w", err)
	}

	if err := q.client.LPush(ctx, q.name, payload).Err(); err != nil {
		q.logger.Error("Failed to push donation to queue",
			zap.String("queue", q.name),
			zap.String("message_id", envelope.MessageID),
			zap.Int64("donation_id", envelope.Donation.DonationID),
			zap.Error(err))
		return fmt.Errorf("failed to push to queue: %w", err)
	}
	return nil
}

// Pop blocks until a message arrives or ctx is cancelled, then returns
// the decoded envelope from the head of the queue.
func (q *DonationQueue) Pop(ctx context.Context) (*Envelope, error) {
	result, err := q.client.BRPop(ctx, 0, q.name).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	// BRPOP returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply length %d", len(result))
	}

	var envelope Envelope
	if err := json.Unmarshal([]byte(result[1]), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode queue message: %w", err)
	}
	return &envelope, nil
}

// Close releases the underlying redis client.
func (q *DonationQueue) Close() error {
	return q.client.Close()
}
