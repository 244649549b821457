// Package signal composes reactive nodes into signals and computed values.
//
// A signal is a root node created directly from a value:
//
//	count := signal.New(0)
//
// A computed value is a node whose value is derived from other nodes. It is
// recomputed eagerly: every dispatch from any source runs derive inside the
// triggering Set, so the new value is visible as soon as Set returns.
//
//	a, b := signal.New(1), signal.New(2)
//	sum := signal.UseComputed(func() any {
//	    return a.Value().(int) + b.Value().(int)
//	}, a, b)
//	a.Set(10)
//	sum.Value() // 12
//
// Recomputation is not deduplicated. Two source changes trigger two full
// recomputations, and a computed that depends on two values derived from
// one root recomputes twice per root change. Both behaviors go through the
// Scheduler interface, so a different policy can be plugged in per
// computed without changing node semantics.
package signal
