// Package store is a key-path document store. Values are JSON shaped trees
// addressed by slash separated paths such as rooms/{id}/members/{uid}.
//
// Writing a value at a path replaces the whole subtree below it and a nil
// value deletes it. Empty maps and lists are not stored.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

var (
	ErrInvalidPath      = errors.New("store: invalid path")
	ErrOverlappingPaths = errors.New("store: overlapping paths in batch")
	ErrClosed           = errors.New("store: closed")
)

type Store interface {
	// Get returns the value at path. ok is false when nothing is stored there.
	Get(ctx context.Context, path string) (value any, ok bool, err error)
	// Set replaces the value at path.
	Set(ctx context.Context, path string, value any) error
	// Update submits every write in one request. A nil value deletes the path.
	// Backends without transactions give no cross-path atomicity.
	Update(ctx context.Context, writes map[string]any) error
	// Watch signals whenever something at, above or below path changes.
	// The channel is closed once ctx is done.
	Watch(ctx context.Context, path string) (<-chan struct{}, error)
	Close() error
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// GetInto reads path and decodes it into dst.
func GetInto(ctx context.Context, s Store, path string, dst any) (bool, error) {
	value, ok, err := s.Get(ctx, path)
	if err != nil || !ok {
		return false, err
	}
	if err := Decode(value, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Decode converts a stored tree into a typed value. Lists and numerically
// keyed maps are interchangeable in a stored tree, so the tree is first
// reshaped to match the kinds dst expects.
func Decode(value any, dst any) error {
	if t := reflect.TypeOf(dst); t != nil && t.Kind() == reflect.Pointer {
		value = conform(value, t.Elem())
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode tree: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("store: decode tree: %w", err)
	}
	return nil
}

func validatePath(path string, allowRoot bool) error {
	if path == "" {
		if allowRoot {
			return nil
		}
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	for _, seg := range strings.Split(path, "/") {
		if err := validateSegment(seg); err != nil {
			return fmt.Errorf("%w: %q", err, path)
		}
	}
	return nil
}

func validateSegment(seg string) error {
	if seg == "" {
		return ErrInvalidPath
	}
	if strings.ContainsAny(seg, ".#$[]") {
		return ErrInvalidPath
	}
	return nil
}

// related reports whether a and b are equal or one contains the other.
func related(a, b string) bool {
	if a == "" || b == "" || a == b {
		return true
	}
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

func ancestors(path string) []string {
	var out []string
	for i := strings.LastIndex(path, "/"); i > 0; i = strings.LastIndex(path[:i], "/") {
		out = append(out, path[:i])
	}
	return out
}

type preparedWrite struct {
	path   string
	leaves map[string]string
}

// prepareBatch validates and flattens a batch. Writes are returned sorted by
// path so every backend applies them in the same order.
func prepareBatch(writes map[string]any) ([]preparedWrite, error) {
	paths := make([]string, 0, len(writes))
	for path := range writes {
		if err := validatePath(path, false); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for i := range paths {
		for j := i + 1; j < len(paths); j++ {
			if related(paths[i], paths[j]) {
				return nil, fmt.Errorf("%w: %q and %q", ErrOverlappingPaths, paths[i], paths[j])
			}
		}
	}

	out := make([]preparedWrite, 0, len(paths))
	for _, path := range paths {
		leaves, err := encode(path, writes[path])
		if err != nil {
			return nil, err
		}
		out = append(out, preparedWrite{path: path, leaves: leaves})
	}
	return out, nil
}

func changedPaths(batch []preparedWrite) []string {
	out := make([]string, 0, len(batch))
	for _, w := range batch {
		out = append(out, w.path)
	}
	return out
}
