package store

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Node is one stored leaf.
type Node struct {
	Path  string `gorm:"size:1024;primaryKey"`
	Value string `gorm:"type:text;not null"`
}

func (Node) TableName() string {
	return "store_nodes"
}

// PostgresStore keeps leaves in the store_nodes table. A batch runs in one
// database transaction. Watch polls a fingerprint of the watched subtree.
type PostgresStore struct {
	db           *gorm.DB
	pollInterval time.Duration
}

func OpenPostgres(dsn string, pollInterval time.Duration) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Node{}); err != nil {
		return nil, fmt.Errorf("migrate store nodes: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return NewPostgresStore(db, pollInterval), nil
}

func NewPostgresStore(db *gorm.DB, pollInterval time.Duration) *PostgresStore {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &PostgresStore{db: db, pollInterval: pollInterval}
}

func (s *PostgresStore) Get(ctx context.Context, path string) (any, bool, error) {
	if err := validatePath(path, true); err != nil {
		return nil, false, err
	}

	leaves, err := s.load(ctx, s.db, path)
	if err != nil {
		return nil, false, err
	}
	return assemble(path, leaves)
}

func (s *PostgresStore) load(ctx context.Context, db *gorm.DB, path string) (map[string]string, error) {
	var nodes []Node
	q := db.WithContext(ctx)
	if path != "" {
		q = q.Where("path = ? OR path LIKE ?", path, likePrefix(path))
	}
	if err := q.Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}

	leaves := make(map[string]string, len(nodes))
	for _, n := range nodes {
		leaves[n.Path] = n.Value
	}
	return leaves, nil
}

func (s *PostgresStore) Set(ctx context.Context, path string, value any) error {
	return s.Update(ctx, map[string]any{path: value})
}

func (s *PostgresStore) Update(ctx context.Context, writes map[string]any) error {
	batch, err := prepareBatch(writes)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range batch {
			res := tx.Where("path = ? OR path LIKE ?", w.path, likePrefix(w.path)).Delete(&Node{})
			if res.Error != nil {
				return fmt.Errorf("delete %q: %w", w.path, res.Error)
			}
			if up := ancestors(w.path); len(up) > 0 {
				if err := tx.Where("path IN ?", up).Delete(&Node{}).Error; err != nil {
					return fmt.Errorf("delete ancestors of %q: %w", w.path, err)
				}
			}

			if len(w.leaves) == 0 {
				continue
			}
			nodes := make([]Node, 0, len(w.leaves))
			for p, v := range w.leaves {
				nodes = append(nodes, Node{Path: p, Value: v})
			}
			if err := tx.CreateInBatches(nodes, 200).Error; err != nil {
				return fmt.Errorf("write %q: %w", w.path, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	if err := validatePath(path, true); err != nil {
		return nil, err
	}

	last, err := s.fingerprint(ctx, path)
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current, err := s.fingerprint(ctx, path)
				if err != nil || current == last {
					continue
				}
				last = current
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, nil
}

// fingerprint hashes the watched subtree together with its ancestors, which
// covers writes above and below path.
func (s *PostgresStore) fingerprint(ctx context.Context, path string) (uint64, error) {
	leaves, err := s.load(ctx, s.db, path)
	if err != nil {
		return 0, err
	}
	if up := ancestors(path); len(up) > 0 {
		var nodes []Node
		if err := s.db.WithContext(ctx).Where("path IN ?", up).Find(&nodes).Error; err != nil {
			return 0, err
		}
		for _, n := range nodes {
			leaves[n.Path] = n.Value
		}
	}

	paths := make([]string, 0, len(leaves))
	for p := range leaves {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := fnv.New64a()
	for _, p := range paths {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(leaves[p]))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64(), nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func likePrefix(path string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(path) + "/%"
}
