package reactive

import (
	"errors"
	"reflect"
	"testing"
)

func TestArrayMutationsDispatchOnce(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(n *Node) error
		want   []any
	}{
		{"push", func(n *Node) error { _, err := n.Push(4, 5); return err }, []any{3, 1, 2, 4, 5}},
		{"pop", func(n *Node) error { _, err := n.Pop(); return err }, []any{3, 1}},
		{"shift", func(n *Node) error { _, err := n.Shift(); return err }, []any{1, 2}},
		{"unshift", func(n *Node) error { _, err := n.Unshift(0); return err }, []any{0, 3, 1, 2}},
		{"splice", func(n *Node) error { _, err := n.Splice(1, 1, "x", "y"); return err }, []any{3, "x", "y", 2}},
		{"sort", func(n *Node) error { return n.Sort(nil) }, []any{1, 2, 3}},
		{"reverse", func(n *Node) error { return n.Reverse() }, []any{2, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := New([]any{3, 1, 2})
			rec := newRecorder()
			list.Subscribe(rec)

			if err := tt.mutate(list); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if rec.count() != 1 {
				t.Fatalf("expected exactly 1 notification, got %d", rec.count())
			}
			oldValue, newValue := rec.last()
			if !reflect.DeepEqual(oldValue, []any{3, 1, 2}) {
				t.Errorf("old snapshot = %v, want [3 1 2]", oldValue)
			}
			if !reflect.DeepEqual(newValue, tt.want) {
				t.Errorf("new value = %v, want %v", newValue, tt.want)
			}
			if !reflect.DeepEqual(list.Value(), tt.want) {
				t.Errorf("Value() = %v, want %v", list.Value(), tt.want)
			}
		})
	}
}

func TestArrayMutationResults(t *testing.T) {
	list := New([]any{"a", "b", "c"})

	if n, _ := list.Push("d"); n != 4 {
		t.Errorf("Push returned %d, want 4", n)
	}
	if v, _ := list.Pop(); v != "d" {
		t.Errorf("Pop returned %v, want d", v)
	}
	if v, _ := list.Shift(); v != "a" {
		t.Errorf("Shift returned %v, want a", v)
	}
	if n, _ := list.Unshift("z", "y"); n != 4 {
		t.Errorf("Unshift returned %d, want 4", n)
	}
	removed, _ := list.Splice(-2, 10)
	if !reflect.DeepEqual(removed, []any{"b", "c"}) {
		t.Errorf("Splice returned %v, want [b c]", removed)
	}
	if !reflect.DeepEqual(list.Value(), []any{"z", "y"}) {
		t.Errorf("Value() = %v", list.Value())
	}
}

func TestSpliceDeleteCount(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		deleteCount int
		wantRemoved []any
		wantValue   []any
	}{
		{"negative count removes nothing", 1, -1, []any{}, []any{"a", "x", "b", "c"}},
		{"zero count inserts only", 0, 0, []any{}, []any{"x", "a", "b", "c"}},
		{"count within range", 1, 1, []any{"b"}, []any{"a", "x", "c"}},
		{"count past the end", 1, 99, []any{"b", "c"}, []any{"a", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := New([]any{"a", "b", "c"})
			removed, err := list.Splice(tt.start, tt.deleteCount, "x")
			if err != nil {
				t.Fatalf("Splice() error: %v", err)
			}
			if !reflect.DeepEqual(removed, tt.wantRemoved) {
				t.Errorf("removed = %v, want %v", removed, tt.wantRemoved)
			}
			if !reflect.DeepEqual(list.Value(), tt.wantValue) {
				t.Errorf("Value() = %v, want %v", list.Value(), tt.wantValue)
			}
		})
	}
}

func TestPopEmptyStillDispatches(t *testing.T) {
	list := New([]any{})
	rec := newRecorder()
	list.Subscribe(rec)

	v, err := list.Pop()
	if err != nil || v != nil {
		t.Fatalf("Pop on empty = (%v, %v)", v, err)
	}
	if rec.count() != 1 {
		t.Errorf("expected 1 notification, got %d", rec.count())
	}
}

func TestMutationOnNonArray(t *testing.T) {
	n := New(map[string]any{"a": 1})
	rec := newRecorder()
	n.Subscribe(rec)

	_, err := n.Push(1)
	if !errors.Is(err, ErrNotArray) {
		t.Fatalf("expected ErrNotArray, got %v", err)
	}
	if err := New(5).Reverse(); !errors.Is(err, ErrNotArray) {
		t.Errorf("expected ErrNotArray, got %v", err)
	}
	if rec.count() != 0 {
		t.Errorf("failed mutation should not dispatch, got %d", rec.count())
	}
}

func TestNestedArrayWritesBack(t *testing.T) {
	state := New(map[string]any{"items": []any{1}})
	items := state.Field("items")
	itemsRec := newRecorder()
	rootRec := newRecorder()
	items.Subscribe(itemsRec)
	state.Subscribe(rootRec)

	for i := 2; i <= 10; i++ {
		if _, err := items.Push(i); err != nil {
			t.Fatal(err)
		}
	}

	stored := state.Value().(map[string]any)["items"].([]any)
	if len(stored) != 10 {
		t.Errorf("parent container holds %d items, want 10", len(stored))
	}
	if state.Field("items") != items {
		t.Error("array node identity should survive reallocation")
	}
	if itemsRec.count() != 9 || rootRec.count() != 9 {
		t.Errorf("expected 9 notifications each, got items=%d root=%d", itemsRec.count(), rootRec.count())
	}
}

func TestSortWithCompare(t *testing.T) {
	list := New([]any{3, 10, 1})
	err := list.Sort(func(a, b any) int { return a.(int) - b.(int) })
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(list.Value(), []any{1, 3, 10}) {
		t.Errorf("Value() = %v", list.Value())
	}
}

func TestDefaultSortIsStringOrder(t *testing.T) {
	list := New([]any{10, nil, 9, 1})
	if err := list.Sort(nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(list.Value(), []any{1, 10, 9, nil}) {
		t.Errorf("Value() = %v", list.Value())
	}
}

func TestSetKeyGrowsNestedArray(t *testing.T) {
	state := New(map[string]any{"list": []any{}})
	list := state.Field("list")

	if !list.SetKey(IndexKey(2), "c") {
		t.Fatal("SetKey past the end should grow the slice")
	}

	stored := state.Value().(map[string]any)["list"].([]any)
	if !reflect.DeepEqual(stored, []any{nil, nil, "c"}) {
		t.Errorf("stored = %v", stored)
	}
}
