// Package hook turns render functions into components whose reactive
// subscriptions are owned by the instance that created them.
//
// A Tree keeps the stack of instances currently rendering. While an
// instance renders, every subscription made through the Tree or through
// the RenderContext handed to the render function is recorded on that
// instance, and components created inside the render become its children.
// When the instance renders again, its children are destroyed and its
// recorded subscriptions are dropped before the render function runs, so
// stale subscriptions never outlive the tree that made them.
//
// # Components
//
//	Counter := hook.Hook(func(rc *hook.RenderContext, props hook.Props) any {
//	    return fmt.Sprintf("count: %v", props.Get("count"))
//	}, hook.WithName("Counter"))
//
//	count := signal.New(0)
//	inst := Counter.New(nil).Prop("count", count)
//	inst.Render()     // "count: 0"
//	count.Set(1)      // inst re-renders: "count: 1"
//
// A reactive prop subscribes the instance's Update. Update consults the
// component's ShouldUpdateFunc, which by default compares the snapshot of
// the props taken at the last render with their current resolved values.
//
// # Ownership
//
//	Parent := hook.Hook(func(rc *hook.RenderContext, props hook.Props) any {
//	    return Child.New(rc).Prop("count", props.Raw("count")).Render()
//	})
//
// The Child instance above becomes a child of the Parent instance. Its
// prop subscription is recorded on Parent, which is rendering when Prop is
// called. When Parent renders again the old Child is destroyed and the
// subscription is removed.
//
// # Concurrency
//
// A Tree is driven from one goroutine at a time. Rendering an instance
// again from inside its own render is not guarded against. Separate Trees
// share nothing and may be used concurrently.
package hook
