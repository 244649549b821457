package reactive

import (
	"reflect"
	"strconv"
	"strings"
)

// Key addresses one property of an object node: a field name for maps or
// an index for slices.
type Key struct {
	name    string
	index   int
	indexed bool
}

// FieldKey returns the key for a map field. Numeric names address slice
// indices when used against an array.
func FieldKey(name string) Key {
	return Key{name: name}
}

// IndexKey returns the key for a slice index.
func IndexKey(i int) Key {
	return Key{index: i, indexed: true}
}

// KeyOf converts a string, int or Key into a Key.
// Any other type yields false.
func KeyOf(k any) (Key, bool) {
	switch v := k.(type) {
	case Key:
		return v, true
	case string:
		return FieldKey(v), true
	case int:
		return IndexKey(v), true
	case int64:
		return IndexKey(int(v)), true
	case int32:
		return IndexKey(int(v)), true
	default:
		return Key{}, false
	}
}

// IsIndex reports whether k was built from an index.
func (k Key) IsIndex() bool {
	return k.indexed
}

// String returns the field name or the decimal index.
func (k Key) String() string {
	if k.indexed {
		return strconv.Itoa(k.index)
	}
	return k.name
}

// asIndex resolves k to a slice index. Numeric field names count.
func (k Key) asIndex() (int, bool) {
	if k.indexed {
		return k.index, true
	}
	i, err := strconv.Atoi(k.name)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Path is the sequence of keys from a root node to a nested node.
type Path []Key

// Append returns a new path with k added. The receiver is not modified.
func (p Path) Append(k Key) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, k)
}

// Last returns the final key of the path.
func (p Path) Last() (Key, bool) {
	if len(p) == 0 {
		return Key{}, false
	}
	return p[len(p)-1], true
}

// String renders the path as user.items[2].name.
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	b.WriteByte('$')
	for _, k := range p {
		if k.indexed {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(k.index))
			b.WriteByte(']')
			continue
		}
		b.WriteByte('.')
		b.WriteString(k.name)
	}
	return b.String()
}

// isObject reports whether v is one of the raw object kinds.
// A nil map is treated as a primitive because it cannot be written to.
func isObject(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return t != nil
	case []any:
		return true
	default:
		return false
	}
}

// getValueOfKey reads container[k]. Wrong key kinds and out of range
// indices report false rather than panicking.
func getValueOfKey(container any, k Key) (any, bool) {
	switch c := container.(type) {
	case map[string]any:
		v, ok := c[k.String()]
		return v, ok
	case []any:
		i, ok := k.asIndex()
		if !ok || i < 0 || i >= len(c) {
			return nil, false
		}
		return c[i], true
	default:
		return nil, false
	}
}

// setValueOfKey writes container[k] = v and returns the container, which
// differs from the input when a slice had to grow. Writing one past the end
// of a slice appends; larger gaps are padded with nil.
func setValueOfKey(container any, k Key, v any) (any, bool) {
	switch c := container.(type) {
	case map[string]any:
		if c == nil {
			return container, false
		}
		c[k.String()] = v
		return c, true
	case []any:
		i, ok := k.asIndex()
		if !ok || i < 0 {
			return container, false
		}
		for len(c) <= i {
			c = append(c, nil)
		}
		c[i] = v
		return c, true
	default:
		return container, false
	}
}

// deleteKey removes k from a map container.
func deleteKey(container any, k Key) bool {
	m, ok := container.(map[string]any)
	if !ok || m == nil {
		return false
	}
	delete(m, k.String())
	return true
}

// identity is the cache key for a raw object: the map header pointer, or
// the backing array pointer plus length for slices.
type identity struct {
	ptr   uintptr
	n     int
	slice bool
}

// identityOf returns the cache identity of v. Slices without a backing
// array have no identity and are never cached.
func identityOf(v any) (identity, bool) {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return identity{}, false
		}
		return identity{ptr: reflect.ValueOf(t).Pointer()}, true
	case []any:
		if cap(t) == 0 {
			return identity{}, false
		}
		return identity{ptr: reflect.ValueOf(t).Pointer(), n: len(t), slice: true}, true
	default:
		return identity{}, false
	}
}
