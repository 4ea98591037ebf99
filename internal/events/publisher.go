package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"covid-testing-server/internal/models"
)

// StatusChange is emitted after a test request moves to a new status.
type StatusChange struct {
	RequestID uint                 `json:"requestId"`
	From      models.RequestStatus `json:"from"`
	To        models.RequestStatus `json:"to"`
	ChangedBy string               `json:"changedBy"`
	At        time.Time            `json:"at"`
}

// Publisher delivers status changes to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, change StatusChange) error
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, StatusChange) error { return nil }

// RedisStreamPublisher appends status changes to a Redis stream with XADD.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisStreamPublisher creates a publisher writing to stream.
func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream}
}

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Publish writes the change as flat string fields plus a JSON copy in "data".
func (p *RedisStreamPublisher) Publish(ctx context.Context, change StatusChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"request_id": strconv.FormatUint(uint64(change.RequestID), 10),
			"from":       string(change.From),
			"to":         string(change.To),
			"changed_by": change.ChangedBy,
			"timestamp":  strconv.FormatInt(change.At.Unix(), 10),
			"data":       string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
