package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bodul/crossword/internal/crossword"
)

const (
	redisPuzzlePrefix = "crossword:puzzle:"
	redisPuzzleIndex  = "crossword:puzzles"
)

// RedisStore keeps puzzles as JSON strings, indexed by a sorted set scored
// by generation time. Entries expire after ttl when it is non-zero.
type RedisStore struct {
	client *redis.Client
	cfg    StoreConfig
}

// NewRedisStore connects to cfg.RedisAddr and checks the connection.
func NewRedisStore(ctx context.Context, cfg StoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	return &RedisStore{client: client, cfg: cfg}, nil
}

func (s *RedisStore) Save(ctx context.Context, p *crossword.Puzzle) (*crossword.Puzzle, error) {
	stamp(p)

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode puzzle: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisPuzzlePrefix+p.ID, data, s.cfg.TTL)
	pipe.ZAdd(ctx, redisPuzzleIndex, redis.Z{
		Score:  float64(p.GeneratedAt.UnixMilli()),
		Member: p.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("save puzzle %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*crossword.Puzzle, error) {
	data, err := s.client.Get(ctx, redisPuzzlePrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPuzzleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get puzzle %s: %w", id, err)
	}

	var p crossword.Puzzle
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode puzzle %s: %w", id, err)
	}
	return &p, nil
}

// List drops index entries whose puzzle has expired.
func (s *RedisStore) List(ctx context.Context) ([]*crossword.Puzzle, error) {
	ids, err := s.client.ZRevRange(ctx, redisPuzzleIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list puzzles: %w", err)
	}
	if len(ids) == 0 {
		return []*crossword.Puzzle{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisPuzzlePrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list puzzles: %w", err)
	}

	list := make([]*crossword.Puzzle, 0, len(values))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var p crossword.Puzzle
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode puzzle %s: %w", ids[i], err)
		}
		list = append(list, &p)
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, redisPuzzleIndex, stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune puzzle index: %w", err)
		}
	}
	return list, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// openStore returns the store selected by cfg.Backend.
func openStore(ctx context.Context, cfg StoreConfig) (PuzzleStore, error) {
	if cfg.Backend == backendRedis {
		s, err := NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return NewMemoryStore(), nil
}
