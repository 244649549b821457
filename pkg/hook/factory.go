package hook

// RenderFunc renders a component. props holds the current props,
// including ChildrenKey; reactive props are passed as handles.
type RenderFunc func(rc *RenderContext, props Props) any

// Factory creates instances of one component.
type Factory struct {
	name         string
	render       RenderFunc
	shouldUpdate ShouldUpdateFunc
}

// Option configures a Factory.
type Option func(*Factory)

// WithName sets the component name used in logs, spans and metrics.
func WithName(name string) Option {
	return func(f *Factory) {
		if name != "" {
			f.name = name
		}
	}
}

// WithShouldUpdate sets the strategy Update consults before re-rendering.
func WithShouldUpdate(fn ShouldUpdateFunc) Option {
	return func(f *Factory) {
		if fn != nil {
			f.shouldUpdate = fn
		}
	}
}

// Hook creates a component from a render function.
func Hook(render RenderFunc, opts ...Option) *Factory {
	f := &Factory{
		name:         "component",
		render:       render,
		shouldUpdate: PropsChanged,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the component name.
func (f *Factory) Name() string {
	return f.name
}

// New creates an instance. Inside a render, pass the RenderContext: the
// instance joins that tree as a child of the rendering instance. A nil rc
// creates a top-level instance in a fresh Tree.
func (f *Factory) New(rc *RenderContext) *Instance {
	if rc == nil {
		return NewTree().New(f)
	}
	inst := newInstance(f, rc.tree, rc.ctx)
	if rc.inst != nil {
		inst.attach(rc.inst)
	}
	return inst
}

// Render creates an instance and renders it with children.
func (f *Factory) Render(rc *RenderContext, children ...any) any {
	return f.New(rc).Render(children...)
}
