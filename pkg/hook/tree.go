package hook

import (
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ripple/pkg/reactive"
)

const defaultTracerName = "ripple/hook"

// Recorder receives component lifecycle events. pkg/metrics provides a
// Prometheus implementation.
type Recorder interface {
	Rendered(component string, d time.Duration)
	UpdateSkipped(component string)
	Destroyed(component string)
	InstancesChanged(delta int)
	SubscriptionsChanged(delta int)
}

type nopRecorder struct{}

func (nopRecorder) Rendered(string, time.Duration) {}
func (nopRecorder) UpdateSkipped(string)           {}
func (nopRecorder) Destroyed(string)               {}
func (nopRecorder) InstancesChanged(int)           {}
func (nopRecorder) SubscriptionsChanged(int)       {}

// Patcher is told about every re-render of an instance that had already
// rendered. It is the seam through which a view layer swaps the old output
// for the new one.
type Patcher interface {
	Patch(inst *Instance, prev, next any)
}

// PatcherFunc adapts a function to the Patcher interface.
type PatcherFunc func(inst *Instance, prev, next any)

// Patch implements Patcher.
func (f PatcherFunc) Patch(inst *Instance, prev, next any) {
	f(inst, prev, next)
}

// Tree tracks which instance is rendering. It replaces a process-wide
// "current component" with an explicit value that every RenderContext
// carries.
type Tree struct {
	mu    sync.Mutex
	stack []*Instance
	root  *Instance

	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
	patcher  Patcher
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) TreeOption {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTracer sets the tracer used for render spans.
func WithTracer(tracer trace.Tracer) TreeOption {
	return func(t *Tree) {
		if tracer != nil {
			t.tracer = tracer
		}
	}
}

// WithRecorder sets the recorder notified of lifecycle events.
func WithRecorder(r Recorder) TreeOption {
	return func(t *Tree) {
		if r != nil {
			t.recorder = r
		}
	}
}

// WithPatcher sets the patcher called after each re-render.
func WithPatcher(p Patcher) TreeOption {
	return func(t *Tree) {
		if p != nil {
			t.patcher = p
		}
	}
}

// NewTree creates an empty tree.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		logger:   slog.Default(),
		tracer:   otel.Tracer(defaultTracerName),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// New creates a top-level instance of f in this tree.
func (t *Tree) New(f *Factory) *Instance {
	return newInstance(f, t, nil)
}

// BindStart pushes inst. An instance bound while another is rendering
// becomes that instance's child; one bound on an empty stack without a
// parent becomes the root.
func (t *Tree) BindStart(inst *Instance) {
	t.mu.Lock()
	var current *Instance
	if len(t.stack) > 0 {
		current = t.stack[len(t.stack)-1]
	}
	t.stack = append(t.stack, inst)
	if current == nil && inst.Parent() == nil {
		t.root = inst
	}
	t.mu.Unlock()

	if current != nil && current != inst {
		inst.attach(current)
	}
}

// BindEnd pops the instance pushed by the matching BindStart.
func (t *Tree) BindEnd() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.stack) > 0 {
		t.stack[len(t.stack)-1] = nil
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// Current returns the instance on top of the stack, or nil.
func (t *Tree) Current() *Instance {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

// Root returns the last parentless instance that rendered on an empty
// stack.
func (t *Tree) Root() *Instance {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// Depth returns the number of instances currently rendering.
func (t *Tree) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stack)
}

// Intercept subscribes sub to src. While an instance is rendering the
// subscription is recorded on it and removed when it renders again or is
// destroyed; otherwise the subscription is made directly and nobody owns
// it.
func (t *Tree) Intercept(src reactive.Observable, sub reactive.Subscriber) bool {
	src, ok := reactive.AsObservable(src)
	if !ok {
		return false
	}
	if current := t.Current(); current != nil {
		return current.intercept(src, sub)
	}
	return src.Subscribe(sub)
}
