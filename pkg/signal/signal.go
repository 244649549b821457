package signal

import "github.com/vango-dev/ripple/pkg/reactive"

// New creates a root node holding v in the default graph.
func New(v any) *reactive.Node {
	return reactive.New(v)
}

// UseSignal is an alias for New.
func UseSignal(v any) *reactive.Node {
	return New(v)
}

// Typed is a read/write view of a node with a static value type.
type Typed[T any] struct {
	node *reactive.Node
}

// Of returns a typed view of n.
func Of[T any](n *reactive.Node) Typed[T] {
	return Typed[T]{node: n}
}

// NewTyped creates a root node holding v and returns its typed view.
func NewTyped[T any](v T) Typed[T] {
	return Of[T](New(v))
}

// Get returns the current value, or the zero value of T if the node holds
// something else.
func (t Typed[T]) Get() T {
	v, _ := t.node.Value().(T)
	return v
}

// Set writes v to the node.
func (t Typed[T]) Set(v T) {
	t.node.Set(v)
}

// Update applies fn to the current value and writes the result.
func (t Typed[T]) Update(fn func(T) T) {
	t.node.Set(fn(t.Get()))
}

// Node returns the underlying node.
func (t Typed[T]) Node() *reactive.Node {
	return t.node
}
