package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covid-testing-server/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStreamPublisher_Publish(t *testing.T) {
	_, client := setupTestRedis(t)
	publisher := NewRedisStreamPublisher(client, "testrequest:status")
	ctx := context.Background()

	change := StatusChange{
		RequestID: 1234,
		From:      models.StatusInitiated,
		To:        models.StatusLabTestInProgress,
		ChangedBy: "tester-1",
		At:        time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, publisher.Publish(ctx, change))

	msgs, err := client.XRange(ctx, "testrequest:status", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	values := msgs[0].Values
	assert.Equal(t, "1234", values["request_id"])
	assert.Equal(t, "INITIATED", values["from"])
	assert.Equal(t, "LAB_TEST_IN_PROGRESS", values["to"])
	assert.Equal(t, "tester-1", values["changed_by"])
	assert.Equal(t, "1700000000", values["timestamp"])

	var decoded StatusChange
	require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &decoded))
	assert.Equal(t, change, decoded)
}

func TestRedisStreamPublisher_ServerDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	publisher := NewRedisStreamPublisher(client, "testrequest:status")
	mr.Close()

	err := publisher.Publish(context.Background(), StatusChange{RequestID: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "xadd testrequest:status")
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), StatusChange{}))
}
