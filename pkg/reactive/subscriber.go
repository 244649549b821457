package reactive

import "reflect"

// Subscriber is anything that can be notified when a node is written.
type Subscriber interface {
	// Notify receives the value before and after the write.
	Notify(oldValue, newValue any)

	// ID returns a unique identifier for this subscriber.
	// Nodes use it to keep their subscriber list a set.
	ID() uint64
}

// Observable is the capability shared by every reactive handle.
// Composition and interception layers depend on this interface rather
// than on *Node so that other handle types can take part in the graph.
type Observable interface {
	// Value returns the current resolved value.
	Value() any

	// Subscribe adds s to the subscriber set. Returns false for nil s.
	Subscribe(s Subscriber) bool

	// Unsubscribe removes s from the subscriber set. Returns false if s
	// is nil or was not subscribed.
	Unsubscribe(s Subscriber) bool

	// ID returns a unique identifier for this observable.
	ID() uint64
}

// Callback adapts a function to the Subscriber interface.
// Each Callback has its own ID, so the same *Callback can be unsubscribed
// later by identity.
type Callback struct {
	id uint64
	fn func(oldValue, newValue any)
}

// Func wraps fn in a Callback. Returns nil if fn is nil, which every
// Subscribe and Unsubscribe treats as a no-op.
func Func(fn func(oldValue, newValue any)) *Callback {
	if fn == nil {
		return nil
	}
	return &Callback{id: NextID(), fn: fn}
}

// Notify implements Subscriber.
func (c *Callback) Notify(oldValue, newValue any) {
	c.fn(oldValue, newValue)
}

// ID implements Subscriber.
func (c *Callback) ID() uint64 {
	return c.id
}

// IsReactive reports whether v is a non-nil Observable.
func IsReactive(v any) bool {
	_, ok := AsObservable(v)
	return ok
}

// AsObservable returns v as an Observable when it is a usable handle.
// Typed nil pointers are rejected.
func AsObservable(v any) (Observable, bool) {
	switch o := v.(type) {
	case nil:
		return nil, false
	case *Node:
		return o, o != nil
	case Observable:
		rv := reflect.ValueOf(o)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, false
		}
		return o, true
	default:
		return nil, false
	}
}

// Subscribe subscribes s to v. Returns false if v is not reactive.
func Subscribe(v any, s Subscriber) bool {
	o, ok := AsObservable(v)
	if !ok {
		return false
	}
	return o.Subscribe(s)
}

// Unsubscribe removes s from v. Returns false if v is not reactive.
func Unsubscribe(v any, s Subscriber) bool {
	o, ok := AsObservable(v)
	if !ok {
		return false
	}
	return o.Unsubscribe(s)
}

// Resolve unwraps v if it is reactive and returns it unchanged otherwise.
func Resolve(v any) any {
	if o, ok := AsObservable(v); ok {
		return o.Value()
	}
	return v
}

// isNilSubscriber guards against nil interfaces and typed nil pointers.
func isNilSubscriber(s Subscriber) bool {
	if s == nil {
		return true
	}
	rv := reflect.ValueOf(s)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
