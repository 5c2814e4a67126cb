package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// encode normalizes value to a JSON tree and flattens it into scalar leaves
// keyed by absolute path. A nil value yields no leaves.
func encode(path string, value any) (map[string]string, error) {
	leaves := make(map[string]string)
	if value == nil {
		return leaves, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("store: encode %q: %w", path, err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("store: encode %q: %w", path, err)
	}

	if err := flatten(path, tree, leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

func flatten(path string, node any, out map[string]string) error {
	switch v := node.(type) {
	case nil:
		return nil
	case map[string]any:
		for key, child := range v {
			if err := validateSegment(key); err != nil {
				return fmt.Errorf("%w: key %q under %q", err, key, path)
			}
			if err := flatten(path+"/"+key, child, out); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, child := range v {
			if err := flatten(path+"/"+strconv.Itoa(i), child, out); err != nil {
				return err
			}
		}
		return nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("store: encode leaf %q: %w", path, err)
		}
		out[path] = string(raw)
		return nil
	}
}

// assemble rebuilds the tree stored at base from leaves whose paths are at or
// below base.
func assemble(base string, leaves map[string]string) (any, bool, error) {
	if raw, ok := leaves[base]; ok && base != "" {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, false, fmt.Errorf("store: decode leaf %q: %w", base, err)
		}
		return v, true, nil
	}

	prefix := ""
	if base != "" {
		prefix = base + "/"
	}

	root := make(map[string]any)
	found := false
	for path, raw := range leaves {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, false, fmt.Errorf("store: decode leaf %q: %w", path, err)
		}
		insert(root, strings.Split(strings.TrimPrefix(path, prefix), "/"), v)
		found = true
	}
	if !found {
		return nil, false, nil
	}
	return listify(root), true, nil
}

func insert(node map[string]any, segments []string, value any) {
	if len(segments) == 1 {
		node[segments[0]] = value
		return
	}
	child, ok := node[segments[0]].(map[string]any)
	if !ok {
		child = make(map[string]any)
		node[segments[0]] = child
	}
	insert(child, segments[1:], value)
}

// listify turns maps keyed exactly 0..n-1 back into lists.
func listify(node any) any {
	m, ok := node.(map[string]any)
	if !ok {
		return node
	}
	for k, v := range m {
		m[k] = listify(v)
	}

	idx := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || strconv.Itoa(i) != k {
			return m
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for pos, i := range idx {
		if pos != i {
			return m
		}
	}

	list := make([]any, len(idx))
	for _, i := range idx {
		list[i] = m[strconv.Itoa(i)]
	}
	return list
}
