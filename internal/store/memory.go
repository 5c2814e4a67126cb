package store

import (
	"context"
	"strings"
	"sync"
)

type watcher struct {
	path string
	ch   chan struct{}
}

// MemoryStore keeps leaves in process. A batch is applied under one lock, so
// unlike the network backends it is atomic.
type MemoryStore struct {
	mu     sync.RWMutex
	leaves map[string]string

	watchMu  sync.Mutex
	watchers map[int]*watcher
	nextID   int
	closed   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leaves:   make(map[string]string),
		watchers: make(map[int]*watcher),
	}
}

func (s *MemoryStore) Get(ctx context.Context, path string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := validatePath(path, true); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	matched := make(map[string]string)
	prefix := path + "/"
	for p, v := range s.leaves {
		if path == "" || p == path || strings.HasPrefix(p, prefix) {
			matched[p] = v
		}
	}
	s.mu.RUnlock()

	return assemble(path, matched)
}

func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	return s.Update(ctx, map[string]any{path: value})
}

func (s *MemoryStore) Update(ctx context.Context, writes map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch, err := prepareBatch(writes)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	for _, w := range batch {
		s.deleteLocked(w.path)
		for p, v := range w.leaves {
			s.leaves[p] = v
		}
	}
	s.mu.Unlock()

	s.notify(changedPaths(batch))
	return nil
}

func (s *MemoryStore) deleteLocked(path string) {
	prefix := path + "/"
	for p := range s.leaves {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(s.leaves, p)
		}
	}
	for _, a := range ancestors(path) {
		delete(s.leaves, a)
	}
}

func (s *MemoryStore) Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	if err := validatePath(path, true); err != nil {
		return nil, err
	}

	s.watchMu.Lock()
	if s.closed {
		s.watchMu.Unlock()
		return nil, ErrClosed
	}
	id := s.nextID
	s.nextID++
	w := &watcher{path: path, ch: make(chan struct{}, 1)}
	s.watchers[id] = w
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		if _, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(w.ch)
		}
		s.watchMu.Unlock()
	}()

	return w.ch, nil
}

func (s *MemoryStore) notify(paths []string) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for _, w := range s.watchers {
		for _, p := range paths {
			if !related(w.path, p) {
				continue
			}
			select {
			case w.ch <- struct{}{}:
			default:
			}
			break
		}
	}
}

// Close releases every watcher.
func (s *MemoryStore) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	s.closed = true
	for id, w := range s.watchers {
		delete(s.watchers, id)
		close(w.ch)
	}
	return nil
}
