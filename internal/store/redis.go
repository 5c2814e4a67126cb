package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanCount = 256

// RedisStore keeps every leaf as a field of one hash. A batch is sent as a
// single MULTI/EXEC and each written path is published on the change channel.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, prefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "roomkeeper:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) treeKey() string {
	return s.prefix + "tree"
}

func (s *RedisStore) changesChannel() string {
	return s.prefix + "changes"
}

func (s *RedisStore) Get(ctx context.Context, path string) (any, bool, error) {
	if err := validatePath(path, true); err != nil {
		return nil, false, err
	}

	if path != "" {
		raw, err := s.client.HGet(ctx, s.treeKey(), path).Result()
		switch {
		case err == nil:
			return assemble(path, map[string]string{path: raw})
		case !errors.Is(err, redis.Nil):
			return nil, false, fmt.Errorf("redis get %q: %w", path, err)
		}
	}

	leaves, err := s.scanSubtree(ctx, path)
	if err != nil {
		return nil, false, err
	}
	return assemble(path, leaves)
}

func (s *RedisStore) scanSubtree(ctx context.Context, path string) (map[string]string, error) {
	pattern := "*"
	if path != "" {
		pattern = escapeGlob(path) + "/*"
	}

	leaves := make(map[string]string)
	var cursor uint64
	for {
		kvs, next, err := s.client.HScan(ctx, s.treeKey(), cursor, pattern, scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %q: %w", path, err)
		}
		for i := 0; i+1 < len(kvs); i += 2 {
			leaves[kvs[i]] = kvs[i+1]
		}
		if next == 0 {
			return leaves, nil
		}
		cursor = next
	}
}

func (s *RedisStore) Set(ctx context.Context, path string, value any) error {
	return s.Update(ctx, map[string]any{path: value})
}

func (s *RedisStore) Update(ctx context.Context, writes map[string]any) error {
	batch, err := prepareBatch(writes)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	var stale []string
	fresh := make(map[string]any)
	for _, w := range batch {
		existing, err := s.scanSubtree(ctx, w.path)
		if err != nil {
			return err
		}
		for p := range existing {
			stale = append(stale, p)
		}
		stale = append(stale, w.path)
		stale = append(stale, ancestors(w.path)...)
		for p, v := range w.leaves {
			fresh[p] = v
		}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.treeKey(), stale...)
		if len(fresh) > 0 {
			pipe.HSet(ctx, s.treeKey(), fresh)
		}
		for _, p := range changedPaths(batch) {
			pipe.Publish(ctx, s.changesChannel(), p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis update: %w", err)
	}
	return nil
}

func (s *RedisStore) Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	if err := validatePath(path, true); err != nil {
		return nil, err
	}

	sub := s.client.Subscribe(ctx, s.changesChannel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan struct{}, 1)
	messages := sub.Channel()

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if !related(path, msg.Payload) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
