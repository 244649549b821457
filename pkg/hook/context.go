package hook

import (
	"context"

	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/signal"
)

// RenderContext is passed to every render call. Subscriptions made
// through it belong to the rendering instance.
type RenderContext struct {
	tree *Tree
	inst *Instance
	ctx  context.Context
}

var _ signal.Binder = (*RenderContext)(nil)

// Context returns the context of the render, carrying its span.
func (rc *RenderContext) Context() context.Context {
	return rc.ctx
}

// Instance returns the rendering instance.
func (rc *RenderContext) Instance() *Instance {
	return rc.inst
}

// Tree returns the tree the render runs in.
func (rc *RenderContext) Tree() *Tree {
	return rc.tree
}

// Snapshot returns the resolved props of this render.
func (rc *RenderContext) Snapshot() Props {
	return rc.inst.Snapshot()
}

// Subscribe subscribes sub to src on behalf of the rendering instance.
func (rc *RenderContext) Subscribe(src reactive.Observable, sub reactive.Subscriber) bool {
	return rc.Bind(src, sub)
}

// Bind implements signal.Binder.
func (rc *RenderContext) Bind(src reactive.Observable, sub reactive.Subscriber) bool {
	src, ok := reactive.AsObservable(src)
	if !ok {
		return false
	}
	return rc.inst.intercept(src, sub)
}

// Read returns the value of src and re-renders the instance whenever src
// changes.
func (rc *RenderContext) Read(src reactive.Observable) any {
	src, ok := reactive.AsObservable(src)
	if !ok {
		return nil
	}
	rc.inst.intercept(src, rc.inst.refresh)
	return src.Value()
}

// UseSignal creates a signal. It is not owned by the instance: it holds
// state, not a subscription.
func (rc *RenderContext) UseSignal(v any) *reactive.Node {
	return signal.UseSignal(v)
}

// UseComputed creates a computed whose source subscriptions are owned by
// the rendering instance.
func (rc *RenderContext) UseComputed(derive func() any, sources ...reactive.Observable) *reactive.Node {
	return signal.Computed(derive, sources, signal.WithBinder(rc))
}
