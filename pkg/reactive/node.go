package reactive

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Node is a reactive value and its own handle: the *Node returned for a
// value is the identity callers compare, subscribe to and write through.
type Node struct {
	id    uint64
	graph *Graph

	// mu guards target, object, parent and children.
	mu sync.RWMutex

	// target is the raw object, or the primitive this node boxes.
	target any

	// object is true when target is a map[string]any or []any.
	object bool

	// parent and key locate this node in the container it was read from.
	// Writes through the node are stored back at parent[key].
	parent *Node
	key    Key
	path   Path

	// children memoizes property reads so they return identical nodes.
	children map[Key]*Node

	subMu sync.RWMutex
	subs  []Subscriber
}

var _ Observable = (*Node)(nil)

// ID returns the unique identifier for this node.
func (n *Node) ID() uint64 {
	return n.id
}

// Path returns the keys leading from the root node to this one.
func (n *Node) Path() Path {
	return n.path
}

// Parent returns the node this one was read from, or nil for roots.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// IsObject reports whether the node holds a map or slice rather than a
// boxed primitive.
func (n *Node) IsObject() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.object
}

// IsArray reports whether the node holds a []any.
func (n *Node) IsArray() bool {
	_, ok := n.raw().([]any)
	return ok
}

// raw returns the target without reading through the parent.
func (n *Node) raw() any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.target
}

// Value returns the current value. Object nodes return the raw map or
// slice; primitive nodes read through to their parent container so that
// they observe structural changes made through the parent.
func (n *Node) Value() any {
	n.mu.RLock()
	target, object, parent, key := n.target, n.object, n.parent, n.key
	n.mu.RUnlock()

	if !object && parent != nil {
		if v, ok := parent.lookupRaw(key); ok {
			return v
		}
	}
	return target
}

// Len returns the length of an array or map value and 0 otherwise.
func (n *Node) Len() int {
	switch v := n.Value().(type) {
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	default:
		return 0
	}
}

// Keys returns the map keys in insertion-independent sorted order, or the
// indices of an array.
func (n *Node) Keys() []Key {
	switch v := n.Value().(type) {
	case map[string]any:
		names := make([]string, 0, len(v))
		for k := range v {
			names = append(names, k)
		}
		slices.Sort(names)
		keys := make([]Key, len(names))
		for i, name := range names {
			keys[i] = FieldKey(name)
		}
		return keys
	case []any:
		keys := make([]Key, len(v))
		for i := range v {
			keys[i] = IndexKey(i)
		}
		return keys
	default:
		return nil
	}
}

func (n *Node) lookupRaw(k Key) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return getValueOfKey(n.target, k)
}

// Field returns the node for a map field.
func (n *Node) Field(name string) *Node {
	return n.Get(FieldKey(name))
}

// Index returns the node for a slice element.
func (n *Node) Index(i int) *Node {
	return n.Get(IndexKey(i))
}

// At walks a sequence of keys. Each element may be a string, an int or a
// Key; any other type stops the walk and yields a detached nil node.
func (n *Node) At(keys ...any) *Node {
	cur := n
	for _, raw := range keys {
		k, ok := KeyOf(raw)
		if !ok {
			return n.graph.newNode(nil, nil, Key{}, cur.path)
		}
		cur = cur.Get(k)
	}
	return cur
}

// Get returns the node for property k. Object values resolve through the
// identity cache; primitive values get a boxed node memoized per key.
// Either way, repeated calls return the same *Node while the property
// keeps holding the same object.
func (n *Node) Get(k Key) *Node {
	v, _ := n.lookupRaw(k)

	n.mu.Lock()
	if n.children == nil {
		n.children = make(map[Key]*Node)
	}
	cached := n.children[k]
	n.mu.Unlock()

	if isObject(v) {
		if cached != nil && cached.IsObject() && sameObject(cached.raw(), v) {
			return cached
		}
		child := n.graph.nodeFor(v, n, k, n.path.Append(k))
		n.setChild(k, child)
		return child
	}

	if cached != nil && !cached.IsObject() && cached.Parent() == n {
		return cached
	}
	child := n.graph.newNode(v, n, k, n.path.Append(k))
	n.setChild(k, child)
	return child
}

func (n *Node) setChild(k Key, child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.children == nil {
		n.children = make(map[Key]*Node)
	}
	n.children[k] = child
}

// scalarChild returns the memoized primitive node for k, if any.
func (n *Node) scalarChild(k Key) *Node {
	n.mu.RLock()
	c := n.children[k]
	n.mu.RUnlock()
	if c == nil || c.IsObject() || c.Parent() != n {
		return nil
	}
	return c
}

// Set replaces the node's value and dispatches once on this node and then
// once on every ancestor, innermost first. The whole ancestor chain is
// notified, not only the immediate parent, so a subscriber on the root
// sees writes at any depth. Nested nodes store the new value back into
// their parent container.
func (n *Node) Set(v any) {
	old := n.Value()

	n.mu.Lock()
	n.target = v
	n.object = isObject(v)
	parent, key := n.parent, n.key
	n.mu.Unlock()

	n.graph.adopt(n, v)
	if parent != nil {
		parent.storeKey(key, v)
	}

	n.debug("set", old, v)
	n.dispatch(old, v)
	if parent != nil {
		parent.dispatch(old, v)
		parent.bubble()
	}
}

// SetKey writes property k of an object node. The memoized primitive node
// for k, if one exists, is notified first, then this node and its
// ancestors. Returns false when the node holds no container or the key
// does not fit it.
func (n *Node) SetKey(k Key, v any) bool {
	old, _ := n.lookupRaw(k)
	if !n.storeKey(k, v) {
		return false
	}

	n.debug("set_key", old, v, "key", k.String())
	if c := n.scalarChild(k); c != nil {
		c.dispatch(old, v)
	}
	n.dispatch(old, v)
	n.bubble()
	return true
}

// Delete removes a map field. The memoized primitive node for the field is
// notified and evicted; object nodes stay cached by identity. Returns false
// for non-map nodes.
func (n *Node) Delete(k Key) bool {
	n.mu.Lock()
	old, _ := getValueOfKey(n.target, k)
	if !deleteKey(n.target, k) {
		n.mu.Unlock()
		return false
	}
	evicted := n.children[k]
	n.mu.Unlock()

	// The child may be n itself when the map contains itself, so its kind
	// is read without holding n.mu.
	if evicted != nil && evicted != n && !evicted.IsObject() {
		n.mu.Lock()
		if n.children[k] == evicted {
			delete(n.children, k)
		} else {
			evicted = nil
		}
		n.mu.Unlock()
	} else {
		evicted = nil
	}

	n.debug("delete", old, nil, "key", k.String())
	if evicted != nil {
		evicted.detach(old)
		evicted.dispatch(old, nil)
	}
	n.dispatch(old, nil)
	n.bubble()
	return true
}

// detach turns a keyed child into a root holding last.
func (n *Node) detach(last any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parent = nil
	n.target = last
}

// storeKey writes container[k] without dispatching. A slice that grows is
// re-registered and stored back into this node's own parent.
func (n *Node) storeKey(k Key, v any) bool {
	n.mu.Lock()
	before := n.target
	after, ok := setValueOfKey(n.target, k, v)
	if ok {
		n.target = after
	}
	parent, key := n.parent, n.key
	n.mu.Unlock()

	if !ok {
		return false
	}
	if !sameObject(before, after) {
		n.graph.rekey(n, before, after)
		if parent != nil {
			parent.storeKey(key, after)
		}
	}
	return true
}

// bubble notifies every ancestor that a descendant changed, up to the
// root rather than stopping at the immediate parent. Each ancestor
// receives its direct child's current value as both old and new value,
// since the child was modified in place.
func (n *Node) bubble() {
	child := n
	for p := n.Parent(); p != nil; p = p.Parent() {
		v := child.Value()
		p.dispatch(v, v)
		child = p
	}
}

// Subscribe adds s to the node's subscriber set. Subscribing the same ID
// twice keeps its original position.
func (n *Node) Subscribe(s Subscriber) bool {
	if isNilSubscriber(s) {
		return false
	}

	n.subMu.Lock()
	defer n.subMu.Unlock()

	sid := s.ID()
	for _, existing := range n.subs {
		if existing.ID() == sid {
			return true
		}
	}
	n.subs = append(n.subs, s)
	return true
}

// SubscribeNow subscribes s and immediately notifies it with the current
// value as both old and new value.
func (n *Node) SubscribeNow(s Subscriber) bool {
	if !n.Subscribe(s) {
		return false
	}
	v := n.Value()
	s.Notify(v, v)
	return true
}

// Unsubscribe removes s, keeping the order of the remaining subscribers.
func (n *Node) Unsubscribe(s Subscriber) bool {
	if isNilSubscriber(s) {
		return false
	}

	n.subMu.Lock()
	defer n.subMu.Unlock()

	sid := s.ID()
	for i, existing := range n.subs {
		if existing.ID() == sid {
			n.subs = slices.Delete(n.subs, i, i+1)
			return true
		}
	}
	return false
}

// Subscribers returns the number of subscribers.
func (n *Node) Subscribers() int {
	n.subMu.RLock()
	defer n.subMu.RUnlock()
	return len(n.subs)
}

// dispatch notifies subscribers, most recently added first. The list is
// copied first so subscribers may subscribe or unsubscribe while running.
func (n *Node) dispatch(oldValue, newValue any) {
	n.subMu.RLock()
	subs := make([]Subscriber, len(n.subs))
	copy(subs, n.subs)
	n.subMu.RUnlock()

	for i := len(subs) - 1; i >= 0; i-- {
		subs[i].Notify(oldValue, newValue)
	}
	n.graph.recorder.Dispatched(len(subs))
}

func (n *Node) debug(op string, oldValue, newValue any, attrs ...any) {
	logger := n.graph.logger
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	args := append([]any{
		"node", n.id,
		"path", n.path.String(),
		"old", oldValue,
		"new", newValue,
	}, attrs...)
	logger.Debug("reactive: "+op, args...)
}

// String returns a short description for logs and test failures.
func (n *Node) String() string {
	return fmt.Sprintf("Node(%d %s %v)", n.id, n.path, n.Value())
}

// sameObject compares two raw values by identity.
func sameObject(a, b any) bool {
	ia, okA := identityOf(a)
	ib, okB := identityOf(b)
	if okA && okB {
		return ia == ib
	}
	if okA != okB {
		return false
	}
	// Neither has an identity: empty slices or primitives.
	as, aSlice := a.([]any)
	bs, bSlice := b.([]any)
	if aSlice && bSlice {
		return len(as) == 0 && len(bs) == 0
	}
	return false
}
