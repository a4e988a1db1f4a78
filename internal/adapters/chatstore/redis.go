// Package chatstore persists chat history in redis, one append-only
// list per room.
package chatstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkeye/Plaza/internal/domain"
)

type Config struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type Store struct {
	client *redis.Client
	prefix string
}

// New connects and pings; an unreachable store is a startup failure,
// not something to limp past.
func New(cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "chat"
	}
	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) keyFor(roomKey domain.RoomKey) string {
	return fmt.Sprintf("%s:%s", s.prefix, string(roomKey))
}

func (s *Store) Append(ctx context.Context, msg domain.ChatMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}
	if err := s.client.RPush(ctx, s.keyFor(msg.RoomKey), b).Err(); err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// Recent returns up to limit messages, newest first.
func (s *Store) Recent(ctx context.Context, roomKey domain.RoomKey, limit int) ([]domain.ChatMessage, error) {
	vals, err := s.client.LRange(ctx, s.keyFor(roomKey), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}

	// LRANGE yields oldest first within the tail; flip to newest first.
	out := make([]domain.ChatMessage, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(vals[i]), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat message: %w", err)
		}
		msg.RoomKey = roomKey
		out = append(out, msg)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
