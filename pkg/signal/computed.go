package signal

import "github.com/vango-dev/ripple/pkg/reactive"

// Scheduler decides when a computed value's recomputation runs.
type Scheduler interface {
	Schedule(job func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(job func())

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(job func()) {
	f(job)
}

type eager struct{}

func (eager) Schedule(job func()) {
	job()
}

// Eager runs every job inline. It is the default scheduler.
var Eager Scheduler = eager{}

// Binder attaches a subscriber to a source. Binders decide who owns the
// subscription; the hook package binds to the rendering component.
type Binder interface {
	Bind(src reactive.Observable, sub reactive.Subscriber) bool
}

type direct struct{}

func (direct) Bind(src reactive.Observable, sub reactive.Subscriber) bool {
	return src.Subscribe(sub)
}

// Direct subscribes without any ownership tracking.
var Direct Binder = direct{}

type options struct {
	scheduler Scheduler
	binder    Binder
	graph     *reactive.Graph
}

// Option configures Computed.
type Option func(*options)

// WithScheduler sets the scheduler used for recomputation.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithBinder sets the binder used to subscribe to sources.
func WithBinder(b Binder) Option {
	return func(o *options) {
		if b != nil {
			o.binder = b
		}
	}
}

// WithGraph creates the computed node in g instead of the default graph.
func WithGraph(g *reactive.Graph) Option {
	return func(o *options) {
		if g != nil {
			o.graph = g
		}
	}
}

// Computed creates a node initialized to derive() and subscribes a
// recomputation to every source. Sources that are not reactive are
// skipped.
func Computed(derive func() any, sources []reactive.Observable, opts ...Option) *reactive.Node {
	o := options{
		scheduler: Eager,
		binder:    Direct,
		graph:     reactive.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}

	out := o.graph.Box(derive())
	recompute := reactive.Func(func(_, _ any) {
		o.scheduler.Schedule(func() {
			out.Set(derive())
		})
	})

	for _, src := range sources {
		if src, ok := reactive.AsObservable(src); ok {
			o.binder.Bind(src, recompute)
		}
	}
	return out
}

// UseComputed is the variadic form of Computed with default options.
func UseComputed(derive func() any, sources ...reactive.Observable) *reactive.Node {
	return Computed(derive, sources)
}
