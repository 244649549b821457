// Package reactive provides the observable value graph for ripple.
//
// A Node wraps a raw value and dispatches (oldValue, newValue) to its
// subscribers every time it is written. Raw objects are map[string]any
// and []any; every other value is a primitive and is held boxed by its
// node.
//
// # Nodes
//
//	count := reactive.New(0)
//	count.Value()   // 0
//	count.Set(5)    // dispatches (0, 5)
//
// Property access on an object node returns nested nodes. Reading the same
// property twice returns the same *Node, and the same raw map reached
// through any path always resolves to one node:
//
//	state := reactive.New(map[string]any{
//	    "user": map[string]any{"name": "ada"},
//	})
//	name := state.Field("user").Field("name")
//	name.Set("grace") // dispatches on name, then on user, then on state
//
// # Arrays
//
// Push, Pop, Shift, Unshift, Splice, Sort and Reverse mutate an array node
// and dispatch exactly once per call with a snapshot of the slice taken
// before the mutation and the slice after it.
//
// # Subscribers
//
// Subscribers are an ordered set keyed by Subscriber.ID. Dispatch runs the
// most recently added subscriber first. Use Func to adapt a plain function:
//
//	cb := reactive.Func(func(old, new any) { fmt.Println(old, "->", new) })
//	count.Subscribe(cb)
//	count.Unsubscribe(cb)
//
// # Thread Safety
//
// Node state is guarded by locks and subscribers are copied before
// notification, but dispatch is synchronous: a Set returns only after every
// subscriber, and everything they trigger, has run.
package reactive
