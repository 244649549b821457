package hook

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/signal"
)

type countingRecorder struct {
	mu            sync.Mutex
	renders       map[string]int
	skipped       int
	destroyed     int
	instances     int
	subscriptions int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{renders: make(map[string]int)}
}

func (r *countingRecorder) Rendered(component string, _ time.Duration) {
	r.mu.Lock()
	r.renders[component]++
	r.mu.Unlock()
}

func (r *countingRecorder) UpdateSkipped(string) {
	r.mu.Lock()
	r.skipped++
	r.mu.Unlock()
}

func (r *countingRecorder) Destroyed(string) {
	r.mu.Lock()
	r.destroyed++
	r.mu.Unlock()
}

func (r *countingRecorder) InstancesChanged(delta int) {
	r.mu.Lock()
	r.instances += delta
	r.mu.Unlock()
}

func (r *countingRecorder) SubscriptionsChanged(delta int) {
	r.mu.Lock()
	r.subscriptions += delta
	r.mu.Unlock()
}

type countingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	names []string
}

func (t *countingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	t.mu.Lock()
	t.names = append(t.names, name)
	t.mu.Unlock()
	return t.Tracer.Start(ctx, name, opts...)
}

func static(output any) RenderFunc {
	return func(*RenderContext, Props) any { return output }
}

func TestTreeStack(t *testing.T) {
	tree := NewTree()
	a := tree.New(Hook(static("a")))
	b := tree.New(Hook(static("b")))

	if tree.Current() != nil || tree.Depth() != 0 {
		t.Fatal("new tree should have an empty stack")
	}

	tree.BindStart(a)
	if tree.Root() != a {
		t.Error("first instance on an empty stack should become root")
	}
	tree.BindStart(b)
	if tree.Current() != b || tree.Depth() != 2 {
		t.Errorf("expected b on top at depth 2, got %v at %d", tree.Current(), tree.Depth())
	}
	if b.Parent() != a {
		t.Error("b should become a child of a")
	}
	if children := a.Children(); len(children) != 1 || children[0] != b {
		t.Errorf("a.Children() = %v", children)
	}

	tree.BindEnd()
	if tree.Current() != a {
		t.Error("BindEnd should pop b")
	}
	tree.BindEnd()
	tree.BindEnd()
	if tree.Current() != nil {
		t.Error("extra BindEnd should leave the stack empty")
	}
}

func TestChildReflectsSignalWithoutParentRender(t *testing.T) {
	count := signal.UseSignal(0)
	parentRenders, childRenders := 0, 0

	Child := Hook(func(rc *RenderContext, props Props) any {
		childRenders++
		return fmt.Sprintf("count: %v", props.Get("count"))
	}, WithName("Child"))
	Parent := Hook(func(rc *RenderContext, props Props) any {
		parentRenders++
		return Child.New(rc).Prop("count", count).Render()
	}, WithName("Parent"))

	parent := NewTree().New(Parent)
	if got := parent.Render(); got != "count: 0" {
		t.Fatalf("initial render = %v", got)
	}
	children := parent.Children()
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
	child := children[0]

	count.Set(1)

	if got := child.Output(); got != "count: 1" {
		t.Errorf("child output = %v, want count: 1", got)
	}
	if parentRenders != 1 {
		t.Errorf("parent should not re-render, rendered %d times", parentRenders)
	}
	if childRenders != 2 {
		t.Errorf("child should render twice, rendered %d times", childRenders)
	}
}

func TestDestroyedChildReceivesNoCallbacks(t *testing.T) {
	s := signal.UseSignal("a")
	trigger := signal.UseSignal(0)
	renders := map[*Instance]int{}

	Child := Hook(func(rc *RenderContext, _ Props) any {
		renders[rc.Instance()]++
		return rc.Read(s)
	}, WithName("Child"))
	Parent := Hook(func(rc *RenderContext, _ Props) any {
		rc.Read(trigger)
		return Child.Render(rc)
	}, WithName("Parent"))

	parent := NewTree().New(Parent)
	parent.Render()
	first := parent.Children()[0]

	trigger.Set(1)

	second := parent.Children()[0]
	if first == second {
		t.Fatal("parent re-render should recreate the child")
	}
	if !first.Destroyed() {
		t.Error("old child should be destroyed")
	}
	if first.Subscriptions() != 0 {
		t.Errorf("old child still owns %d subscriptions", first.Subscriptions())
	}

	before := renders[first]
	s.Set("b")

	if renders[first] != before {
		t.Errorf("destroyed child rendered %d more times", renders[first]-before)
	}
	if renders[second] != 2 {
		t.Errorf("new child rendered %d times, want 2", renders[second])
	}
	if s.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber on s, got %d", s.Subscribers())
	}
}

func TestShouldUpdateFalseKeepsOutput(t *testing.T) {
	count := signal.UseSignal(0)
	renders := 0
	C := Hook(func(_ *RenderContext, props Props) any {
		renders++
		return props.Get("count")
	}, WithShouldUpdate(Never))

	inst := C.New(nil).Prop("count", count)
	inst.Render()
	count.Set(7)

	if renders != 1 {
		t.Errorf("expected 1 render, got %d", renders)
	}
	if inst.Output() != 0 {
		t.Errorf("expected previous output 0, got %v", inst.Output())
	}
	if got := inst.Update(); got != 0 {
		t.Errorf("Update() = %v, want previous output", got)
	}
}

func TestDefaultShouldUpdateSkipsSameValue(t *testing.T) {
	rec := newCountingRecorder()
	tree := NewTree(WithRecorder(rec))
	count := signal.UseSignal(3)
	renders := 0
	C := Hook(func(_ *RenderContext, props Props) any {
		renders++
		return props.Get("count")
	}, WithName("C"))

	inst := tree.New(C).Prop("count", count)
	inst.Render()
	count.Set(3)
	count.Set(4)

	if renders != 2 {
		t.Errorf("expected 2 renders, got %d", renders)
	}
	if rec.skipped != 1 {
		t.Errorf("expected 1 skipped update, got %d", rec.skipped)
	}
	if rec.renders["C"] != 2 {
		t.Errorf("recorder saw %d renders", rec.renders["C"])
	}
}

func TestInPlaceContainerMutationRerenders(t *testing.T) {
	tests := []struct {
		name   string
		value  func() any
		mutate func(n *reactive.Node)
		want   string
	}{
		{
			name:   "set key",
			value:  func() any { return map[string]any{"name": "ada"} },
			mutate: func(n *reactive.Node) { n.SetKey(reactive.FieldKey("name"), "grace") },
			want:   "map[name:grace]",
		},
		{
			name:   "nested set",
			value:  func() any { return map[string]any{"profile": map[string]any{"name": "ada"}} },
			mutate: func(n *reactive.Node) { n.Field("profile").Field("name").Set("grace") },
			want:   "map[profile:map[name:grace]]",
		},
		{
			name:   "delete",
			value:  func() any { return map[string]any{"name": "ada", "age": 36} },
			mutate: func(n *reactive.Node) { n.Delete(reactive.FieldKey("age")) },
			want:   "map[name:ada]",
		},
		{
			name:   "sort",
			value:  func() any { return []any{"b", "c", "a"} },
			mutate: func(n *reactive.Node) { n.Sort(nil) },
			want:   "[a b c]",
		},
		{
			name:   "reverse",
			value:  func() any { return []any{"b", "c", "a"} },
			mutate: func(n *reactive.Node) { n.Reverse() },
			want:   "[a c b]",
		},
		{
			name:   "index set",
			value:  func() any { return []any{"b", "c", "a"} },
			mutate: func(n *reactive.Node) { n.Index(0).Set("z") },
			want:   "[z c a]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newCountingRecorder()
			tree := NewTree(WithRecorder(rec))
			Child := Hook(func(_ *RenderContext, props Props) any {
				return fmt.Sprint(props.Get("v"))
			}, WithName("Child"))

			state := reactive.NewGraph().New(tt.value())
			inst := tree.New(Child).Prop("v", state)
			inst.Render()

			tt.mutate(state)

			if got := inst.Output(); got != tt.want {
				t.Errorf("Output() = %v, want %v", got, tt.want)
			}
			if rec.renders["Child"] < 2 {
				t.Errorf("Child rendered %d times, want a re-render", rec.renders["Child"])
			}
			if rec.skipped != 0 {
				t.Errorf("skipped %d updates, want 0", rec.skipped)
			}
		})
	}
}

func TestNoReactiveReadsNoUpdates(t *testing.T) {
	count := signal.UseSignal(0)
	renders := 0
	C := Hook(func(_ *RenderContext, _ Props) any {
		renders++
		return count.Value()
	})

	inst := C.New(nil)
	inst.Render()
	count.Set(1)

	if renders != 1 || inst.Output() != 0 {
		t.Errorf("component without subscriptions updated: renders=%d output=%v", renders, inst.Output())
	}
	if count.Subscribers() != 0 {
		t.Errorf("expected no subscribers, got %d", count.Subscribers())
	}
}

func TestDestroyIsRecursive(t *testing.T) {
	rec := newCountingRecorder()
	tree := NewTree(WithRecorder(rec))
	s := signal.UseSignal(0)

	Leaf := Hook(func(rc *RenderContext, _ Props) any { return rc.Read(s) }, WithName("Leaf"))
	Middle := Hook(func(rc *RenderContext, _ Props) any { return Leaf.Render(rc) }, WithName("Middle"))
	Top := Hook(func(rc *RenderContext, _ Props) any { return Middle.Render(rc) }, WithName("Top"))

	top := tree.New(Top)
	top.Render()
	middle := top.Children()[0]
	leaf := middle.Children()[0]

	top.Destroy()
	top.Destroy()

	for _, inst := range []*Instance{top, middle, leaf} {
		if !inst.Destroyed() {
			t.Errorf("%v not destroyed", inst)
		}
	}
	if s.Subscribers() != 0 {
		t.Errorf("expected no subscribers after destroy, got %d", s.Subscribers())
	}
	if rec.destroyed != 3 || rec.instances != 0 || rec.subscriptions != 0 {
		t.Errorf("recorder: destroyed=%d instances=%d subscriptions=%d", rec.destroyed, rec.instances, rec.subscriptions)
	}
	if top.Update() != nil || top.Refresh() != nil || top.Render() != nil {
		t.Error("destroyed instance should not render")
	}
}

func TestDestroyDetachesFromParent(t *testing.T) {
	Child := Hook(static("child"))
	Parent := Hook(func(rc *RenderContext, _ Props) any { return Child.Render(rc) })

	parent := NewTree().New(Parent)
	parent.Render()
	parent.Children()[0].Destroy()

	if len(parent.Children()) != 0 {
		t.Errorf("destroyed child still attached: %v", parent.Children())
	}
}

func TestPropReplacesSubscription(t *testing.T) {
	a := signal.UseSignal(1)
	b := signal.UseSignal(2)
	C := Hook(func(_ *RenderContext, props Props) any { return props.Get("v") })

	inst := C.New(nil).Prop("v", a)
	inst.Render()
	inst.Prop("v", b)

	if a.Subscribers() != 0 {
		t.Errorf("old source still has %d subscribers", a.Subscribers())
	}
	if b.Subscribers() != 1 {
		t.Errorf("new source has %d subscribers", b.Subscribers())
	}

	inst.Prop("v", "plain")
	if b.Subscribers() != 0 {
		t.Errorf("plain prop should drop the subscription, got %d", b.Subscribers())
	}
}

func TestPropChainingAndChildren(t *testing.T) {
	C := Hook(func(_ *RenderContext, props Props) any {
		return fmt.Sprintf("%v:%v:%v", props.Get("a"), props.Get("b"), props.Children())
	})

	inst := C.New(nil).Prop("a", 1).Prop("b", signal.UseSignal("x"))
	if got := inst.Render("c1", "c2"); got != "1:x:[c1 c2]" {
		t.Errorf("Render() = %v", got)
	}
	snap := inst.Snapshot()
	if snap["b"] != "x" {
		t.Errorf("snapshot should hold resolved values, got %v", snap["b"])
	}
	if children, _ := snap[ChildrenKey].([]any); len(children) != 2 {
		t.Errorf("snapshot children = %v", snap[ChildrenKey])
	}
}

func TestReadRefreshesWithoutGate(t *testing.T) {
	s := signal.UseSignal("a")
	C := Hook(func(rc *RenderContext, _ Props) any { return rc.Read(s) }, WithShouldUpdate(Never))

	inst := C.New(nil)
	inst.Render()
	s.Set("b")

	if inst.Output() != "b" {
		t.Errorf("Read should refresh regardless of shouldUpdate, got %v", inst.Output())
	}
	if inst.Subscriptions() != 1 {
		t.Errorf("re-render should replace, not add, subscriptions: %d", inst.Subscriptions())
	}
}

func TestUseComputedOwnedByInstance(t *testing.T) {
	src := signal.UseSignal(2)
	trigger := signal.UseSignal(0)
	var doubled *reactive.Node

	C := Hook(func(rc *RenderContext, _ Props) any {
		rc.Read(trigger)
		doubled = rc.UseComputed(func() any { return src.Value().(int) * 2 }, src)
		return doubled.Value()
	})

	inst := C.New(nil)
	inst.Render()
	if src.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber on src, got %d", src.Subscribers())
	}

	trigger.Set(1)
	if src.Subscribers() != 1 {
		t.Errorf("re-render should drop the old computed subscription, got %d", src.Subscribers())
	}

	src.Set(5)
	if doubled.Value() != 10 {
		t.Errorf("expected 10, got %v", doubled.Value())
	}
	inst.Destroy()
	if src.Subscribers() != 0 {
		t.Errorf("destroy should drop the computed subscription, got %d", src.Subscribers())
	}
}

func TestPatcherCalledOnRerender(t *testing.T) {
	type patch struct{ prev, next any }
	var patches []patch
	tree := NewTree(WithPatcher(PatcherFunc(func(_ *Instance, prev, next any) {
		patches = append(patches, patch{prev, next})
	})))
	s := signal.UseSignal(1)

	inst := tree.New(Hook(func(rc *RenderContext, _ Props) any { return rc.Read(s) }))
	inst.Render()
	if len(patches) != 0 {
		t.Fatalf("first render should not patch, got %v", patches)
	}

	s.Set(2)
	if len(patches) != 1 || patches[0].prev != 1 || patches[0].next != 2 {
		t.Errorf("patches = %v", patches)
	}
}

func TestRenderSpans(t *testing.T) {
	tracer := &countingTracer{}
	tree := NewTree(WithTracer(tracer))
	Child := Hook(static("x"), WithName("Child"))
	Parent := Hook(func(rc *RenderContext, _ Props) any {
		if rc.Context() == nil {
			t.Error("render context should carry a context")
		}
		return Child.Render(rc)
	}, WithName("Parent"))

	tree.New(Parent).Render()

	want := []string{"ripple.render Parent", "ripple.render Child"}
	if len(tracer.names) != len(want) {
		t.Fatalf("spans = %v", tracer.names)
	}
	for i := range want {
		if tracer.names[i] != want[i] {
			t.Errorf("span %d = %q, want %q", i, tracer.names[i], want[i])
		}
	}
}

func TestRenderPanicUnwindsStack(t *testing.T) {
	tree := NewTree()
	inst := tree.New(Hook(func(*RenderContext, Props) any { panic("boom") }))

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("expected panic to propagate, got %v", r)
			}
		}()
		inst.Render()
	}()

	if tree.Depth() != 0 {
		t.Errorf("stack depth after panic = %d", tree.Depth())
	}
}

func TestInterceptWithoutInstance(t *testing.T) {
	tree := NewTree()
	s := signal.UseSignal(0)
	calls := 0

	if !tree.Intercept(s, reactive.Func(func(_, _ any) { calls++ })) {
		t.Fatal("Intercept should subscribe directly")
	}
	s.Set(1)

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	var missing *reactive.Node
	if tree.Intercept(missing, reactive.Func(func(_, _ any) {})) {
		t.Error("Intercept on a nil node should fail")
	}
}

func TestFactoryNewWithoutContext(t *testing.T) {
	a := Hook(static(1)).New(nil)
	b := Hook(static(2)).New(nil)
	if a.Tree() == b.Tree() {
		t.Error("top-level instances created without a context get their own tree")
	}
	if a.Render() != 1 || a.Tree().Root() != a {
		t.Error("top-level instance should render and become root")
	}
}
