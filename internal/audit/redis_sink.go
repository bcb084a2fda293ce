package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"distribution-backend/internal/core"

	"github.com/redis/go-redis/v9"
)

// RedisStreamSink appends audit events to a Redis stream with XADD.
type RedisStreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	MaxLen   int64 // approximate stream cap, 0 for unbounded
}

// NewRedisStreamSink connects to Redis and verifies the connection.
func NewRedisStreamSink(ctx context.Context, cfg RedisConfig) (*RedisStreamSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStreamSinkWithClient(client, cfg.Stream, cfg.MaxLen), nil
}

// NewRedisStreamSinkWithClient creates a sink with an existing Redis client
func NewRedisStreamSinkWithClient(client *redis.Client, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamSink) Write(ctx context.Context, event core.AuditEvent) error {
	values, err := streamValues(event)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStreamSink) Close() error {
	return s.client.Close()
}

// streamValues flattens an event into stream entry fields. Snapshots are
// JSON-encoded; absent snapshots are omitted.
func streamValues(event core.AuditEvent) (map[string]any, error) {
	values := map[string]any{
		"event_id":      event.ID,
		"actor_id":      event.ActorID,
		"action":        string(event.Action),
		"target_entity": event.TargetEntity,
		"target_id":     strconv.FormatInt(event.TargetID, 10),
		"timestamp":     event.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	for key, snapshot := range map[string]any{"before": event.Before, "after": event.After} {
		if snapshot == nil {
			continue
		}
		data, err := json.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to encode audit %s snapshot: %w", key, err)
		}
		values[key] = string(data)
	}
	return values, nil
}
