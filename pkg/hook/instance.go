package hook

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ripple/pkg/reactive"
)

// subKey identifies one subscription: the same subscriber may be bound to
// several sources and must be removed from each of them.
type subKey struct {
	sub uint64
	src uint64
}

type subscription struct {
	src reactive.Observable
	sub reactive.Subscriber
}

// Instance is one rendered use of a component.
type Instance struct {
	id      uint64
	factory *Factory
	tree    *Tree
	ctx     context.Context

	// mu guards every field below.
	mu       sync.Mutex
	props    Props
	snapshot Props
	parent   *Instance
	children []*Instance
	subs     map[subKey]subscription
	propSubs map[string]subscription
	output   any
	rendered bool

	destroyed atomic.Bool

	// update and refresh are created once so that re-subscribing them is
	// deduplicated by the source.
	update  *reactive.Callback
	refresh *reactive.Callback
}

func newInstance(f *Factory, t *Tree, parentCtx context.Context) *Instance {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	inst := &Instance{
		id:       reactive.NextID(),
		factory:  f,
		tree:     t,
		ctx:      parentCtx,
		props:    Props{},
		subs:     make(map[subKey]subscription),
		propSubs: make(map[string]subscription),
	}
	inst.update = reactive.Func(func(_, _ any) { inst.Update() })
	inst.refresh = reactive.Func(func(_, _ any) { inst.Refresh() })
	t.recorder.InstancesChanged(1)
	return inst
}

// ID returns the unique identifier for this instance.
func (i *Instance) ID() uint64 {
	return i.id
}

// Name returns the component name.
func (i *Instance) Name() string {
	return i.factory.name
}

// Tree returns the tree the instance renders in.
func (i *Instance) Tree() *Tree {
	return i.tree
}

// Parent returns the instance that was rendering when this one first
// rendered, or nil.
func (i *Instance) Parent() *Instance {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.parent
}

// Children returns the instances created by the last render, in order.
func (i *Instance) Children() []*Instance {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.children)
}

// Output returns the value returned by the last render.
func (i *Instance) Output() any {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.output
}

// Props returns a copy of the current props.
func (i *Instance) Props() Props {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.props.clone()
}

// Snapshot returns the resolved props taken at the last render.
func (i *Instance) Snapshot() Props {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.snapshot.clone()
}

// Subscriptions returns the number of subscriptions recorded on this
// instance.
func (i *Instance) Subscriptions() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.subs)
}

// Destroyed reports whether Destroy was called.
func (i *Instance) Destroyed() bool {
	return i.destroyed.Load()
}

// Prop sets a prop and returns the instance for chaining. A reactive value
// subscribes the instance's Update, owned by whichever instance is
// rendering at the time.
func (i *Instance) Prop(key string, v any) *Instance {
	if i.destroyed.Load() {
		return i
	}

	i.mu.Lock()
	prev, had := i.propSubs[key]
	delete(i.propSubs, key)
	i.props[key] = v
	shared := false
	for _, s := range i.propSubs {
		if had && s.src.ID() == prev.src.ID() {
			shared = true
			break
		}
	}
	i.mu.Unlock()

	if had && !shared && prev.src.ID() != idOf(v) {
		prev.src.Unsubscribe(i.update)
	}
	if src, ok := reactive.AsObservable(v); ok {
		i.tree.Intercept(src, i.update)
		i.mu.Lock()
		i.propSubs[key] = subscription{src: src, sub: i.update}
		i.mu.Unlock()
	}
	return i
}

func idOf(v any) uint64 {
	if o, ok := reactive.AsObservable(v); ok {
		return o.ID()
	}
	return 0
}

// Render stores children under ChildrenKey and renders unconditionally.
func (i *Instance) Render(children ...any) any {
	if i.destroyed.Load() {
		return nil
	}
	i.mu.Lock()
	i.props[ChildrenKey] = children
	i.mu.Unlock()
	return i.render()
}

// Update re-renders if the component's ShouldUpdateFunc reports a change
// between the last snapshot and the current props. Otherwise it returns
// the previous output.
func (i *Instance) Update() any {
	if i.destroyed.Load() {
		return nil
	}
	i.mu.Lock()
	prev, next, output := i.snapshot, i.props, i.output
	i.mu.Unlock()

	if !i.factory.shouldUpdate(prev, next) {
		i.tree.logger.Debug("hook: update skipped", "component", i.Name(), "instance", i.id)
		i.tree.recorder.UpdateSkipped(i.Name())
		return output
	}
	return i.render()
}

// Refresh re-renders without consulting ShouldUpdateFunc.
func (i *Instance) Refresh() any {
	if i.destroyed.Load() {
		return nil
	}
	return i.render()
}

func (i *Instance) render() (output any) {
	i.clear()

	i.mu.Lock()
	i.snapshot = i.props.Resolve()
	props := i.props.clone()
	prev, rendered := i.output, i.rendered
	i.mu.Unlock()

	name := i.Name()
	ctx, span := i.tree.tracer.Start(i.ctx, "ripple.render "+name,
		trace.WithAttributes(
			attribute.String("ripple.component", name),
			attribute.Int64("ripple.instance", int64(i.id)),
			attribute.Bool("ripple.rerender", rendered),
		),
	)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(codes.Error, fmt.Sprint(r))
			span.End()
			panic(r)
		}
		span.End()
	}()

	rc := &RenderContext{tree: i.tree, inst: i, ctx: ctx}
	i.tree.BindStart(i)
	func() {
		defer i.tree.BindEnd()
		output = i.factory.render(rc, props)
	}()

	i.mu.Lock()
	i.output = output
	i.rendered = true
	i.mu.Unlock()

	d := time.Since(start)
	i.tree.logger.Debug("hook: render",
		"component", name,
		"instance", i.id,
		"rerender", rendered,
		"duration", d,
	)
	i.tree.recorder.Rendered(name, d)
	if rendered && i.tree.patcher != nil {
		i.tree.patcher.Patch(i, prev, output)
	}
	return output
}

// intercept records sub -> src on this instance and subscribes.
func (i *Instance) intercept(src reactive.Observable, sub reactive.Subscriber) bool {
	if !src.Subscribe(sub) {
		return false
	}
	k := subKey{sub: sub.ID(), src: src.ID()}
	i.mu.Lock()
	_, existed := i.subs[k]
	i.subs[k] = subscription{src: src, sub: sub}
	i.mu.Unlock()
	if !existed {
		i.tree.recorder.SubscriptionsChanged(1)
	}
	return true
}

// attach makes parent the owner of i unless i already has one.
func (i *Instance) attach(parent *Instance) {
	i.mu.Lock()
	if i.parent != nil {
		i.mu.Unlock()
		return
	}
	i.parent = parent
	i.mu.Unlock()

	parent.mu.Lock()
	if !slices.Contains(parent.children, i) {
		parent.children = append(parent.children, i)
	}
	parent.mu.Unlock()
}

func (i *Instance) detachChild(child *Instance) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if idx := slices.Index(i.children, child); idx >= 0 {
		i.children = slices.Delete(i.children, idx, idx+1)
	}
}

// clear removes every subscription recorded on i and destroys its
// children.
func (i *Instance) clear() {
	i.mu.Lock()
	subs := i.subs
	children := i.children
	i.subs = make(map[subKey]subscription)
	i.children = nil
	i.mu.Unlock()

	for _, s := range subs {
		s.src.Unsubscribe(s.sub)
	}
	if len(subs) > 0 {
		i.tree.recorder.SubscriptionsChanged(-len(subs))
	}
	for _, child := range children {
		child.destroy(false)
	}
}

// Destroy unsubscribes everything the instance owns, destroys its
// children and detaches it from its parent. Calling it again does
// nothing.
func (i *Instance) Destroy() {
	i.destroy(true)
}

func (i *Instance) destroy(detach bool) {
	if !i.destroyed.CompareAndSwap(false, true) {
		return
	}
	i.clear()

	i.mu.Lock()
	propSubs := i.propSubs
	parent := i.parent
	i.propSubs = make(map[string]subscription)
	i.props = Props{}
	i.snapshot = nil
	i.parent = nil
	i.mu.Unlock()

	for _, s := range propSubs {
		s.src.Unsubscribe(s.sub)
	}
	if detach && parent != nil {
		parent.detachChild(i)
	}

	name := i.Name()
	i.tree.logger.Debug("hook: destroy", "component", name, "instance", i.id)
	i.tree.recorder.Destroyed(name)
	i.tree.recorder.InstancesChanged(-1)
}

// String returns a short description for logs and test failures.
func (i *Instance) String() string {
	return fmt.Sprintf("Instance(%s#%d)", i.Name(), i.id)
}
