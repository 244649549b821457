package hook

import (
	"maps"
	"reflect"

	"github.com/vango-dev/ripple/pkg/reactive"
)

// ChildrenKey is the prop under which Render stores its children.
const ChildrenKey = "children"

// Props is the property bag of a component instance. Values may be plain
// values or reactive handles.
type Props map[string]any

// Get returns the resolved value of key: reactive handles are unwrapped.
func (p Props) Get(key string) any {
	return reactive.Resolve(p[key])
}

// Raw returns the value stored under key without unwrapping it.
func (p Props) Raw(key string) any {
	return p[key]
}

// Children returns the children passed to the last Render call.
func (p Props) Children() []any {
	children, _ := p[ChildrenKey].([]any)
	return children
}

// Resolve returns a copy of p with every reactive handle unwrapped.
func (p Props) Resolve() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = reactive.Resolve(v)
	}
	return out
}

func (p Props) clone() Props {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// ShouldUpdateFunc decides whether an instance re-renders. prev is the
// resolved snapshot taken at the last render; next holds the current
// props, which may contain reactive handles.
type ShouldUpdateFunc func(prev, next Props) bool

// PropsChanged is the default ShouldUpdateFunc. It resolves next and
// reports whether any key was added, removed or holds a different value
// than in prev. Values are compared shallowly: maps, slices, pointers and
// functions by reference, everything else with ==.
//
// A reactive prop holding a map or slice always counts as changed. Its
// node mutates the container in place, so the snapshot shares the same
// reference and cannot tell an edit apart from no edit.
func PropsChanged(prev, next Props) bool {
	if prev == nil || next == nil {
		return (prev == nil) != (next == nil)
	}
	if len(prev) != len(next) {
		return true
	}
	for k, pv := range prev {
		nv, ok := next[k]
		if !ok || propChanged(pv, nv) {
			return true
		}
	}
	return false
}

// KeysChanged returns a ShouldUpdateFunc that compares only the listed
// keys, with the same rules as PropsChanged.
func KeysChanged(keys ...string) ShouldUpdateFunc {
	return func(prev, next Props) bool {
		for _, k := range keys {
			if propChanged(prev[k], next[k]) {
				return true
			}
		}
		return false
	}
}

// propChanged compares a snapshot value with a live prop.
func propChanged(prev, next any) bool {
	resolved := reactive.Resolve(next)
	if reactive.IsReactive(next) && isContainer(resolved) {
		return true
	}
	return !sameValue(prev, resolved)
}

func isContainer(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice:
		return true
	}
	return false
}

// Always re-renders on every update.
func Always(_, _ Props) bool { return true }

// Never ignores updates. The instance only renders when Render or Refresh
// is called.
func Never(_, _ Props) bool { return false }

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Comparable() {
		return va.Equal(vb)
	}
	return false
}
