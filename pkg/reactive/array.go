package reactive

import (
	"cmp"
	"fmt"
	"slices"
)

// mutate applies op to the node's slice, stores the result back into the
// parent container and dispatches exactly once with a snapshot of the
// slice taken before op ran. The parent is then notified, followed by
// every further ancestor up to the root.
func (n *Node) mutate(name string, op func(s []any) ([]any, any)) (any, error) {
	n.mu.Lock()
	s, ok := n.target.([]any)
	if !ok {
		n.mu.Unlock()
		return nil, fmt.Errorf("%s at %s: %w", name, n.path, ErrNotArray)
	}
	snapshot := slices.Clone(s)
	next, result := op(s)
	n.target = next
	parent, key := n.parent, n.key
	n.mu.Unlock()

	n.graph.rekey(n, s, next)
	if parent != nil {
		parent.storeKey(key, next)
	}

	n.debug(name, snapshot, next)
	n.dispatch(snapshot, next)
	if parent != nil {
		parent.dispatch(snapshot, next)
		parent.bubble()
	}
	return result, nil
}

// Push appends items and returns the new length.
func (n *Node) Push(items ...any) (int, error) {
	res, err := n.mutate("push", func(s []any) ([]any, any) {
		s = append(s, items...)
		return s, len(s)
	})
	if err != nil {
		return 0, err
	}
	return res.(int), nil
}

// Pop removes and returns the last element. Popping an empty array returns
// nil and still dispatches.
func (n *Node) Pop() (any, error) {
	return n.mutate("pop", func(s []any) ([]any, any) {
		if len(s) == 0 {
			return s, nil
		}
		last := s[len(s)-1]
		return slices.Delete(s, len(s)-1, len(s)), last
	})
}

// Shift removes and returns the first element.
func (n *Node) Shift() (any, error) {
	return n.mutate("shift", func(s []any) ([]any, any) {
		if len(s) == 0 {
			return s, nil
		}
		first := s[0]
		return slices.Delete(s, 0, 1), first
	})
}

// Unshift inserts items at the front and returns the new length.
func (n *Node) Unshift(items ...any) (int, error) {
	res, err := n.mutate("unshift", func(s []any) ([]any, any) {
		s = slices.Insert(s, 0, items...)
		return s, len(s)
	})
	if err != nil {
		return 0, err
	}
	return res.(int), nil
}

// Splice removes deleteCount elements starting at start, inserts items in
// their place and returns the removed elements. A negative start counts
// from the end. A negative deleteCount removes nothing; a deleteCount past
// the end removes everything after start.
func (n *Node) Splice(start, deleteCount int, items ...any) ([]any, error) {
	res, err := n.mutate("splice", func(s []any) ([]any, any) {
		from := clampStart(start, len(s))
		to := from + max(deleteCount, 0)
		if to > len(s) || to < from {
			to = len(s)
		}
		removed := slices.Clone(s[from:to])
		return slices.Replace(s, from, to, items...), removed
	})
	if err != nil {
		return nil, err
	}
	return res.([]any), nil
}

// Sort sorts the array in place with a stable sort. A nil compare orders
// elements by their string form with nil elements last.
func (n *Node) Sort(compare func(a, b any) int) error {
	if compare == nil {
		compare = defaultCompare
	}
	_, err := n.mutate("sort", func(s []any) ([]any, any) {
		slices.SortStableFunc(s, compare)
		return s, nil
	})
	return err
}

// Reverse reverses the array in place.
func (n *Node) Reverse() error {
	_, err := n.mutate("reverse", func(s []any) ([]any, any) {
		slices.Reverse(s)
		return s, nil
	})
	return err
}

func clampStart(start, length int) int {
	if start < 0 {
		start += length
		if start < 0 {
			return 0
		}
	}
	if start > length {
		return length
	}
	return start
}

func defaultCompare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
