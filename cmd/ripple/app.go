package main

import (
	"log/slog"

	"github.com/vango-dev/ripple/pkg/hook"
	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/signal"
	"github.com/vango-dev/ripple/pkg/view"
)

// Counter renders the count it receives as a reactive prop. It re-renders
// on its own whenever the count is written.
var Counter = hook.Hook(func(_ *hook.RenderContext, props hook.Props) any {
	return view.El("span", view.Attrs{"class": "count"}, "count: ", props.Get("count"))
}, hook.WithName("Counter"))

// Doubled derives a second value from the count during render. The
// computed's subscription belongs to the Doubled instance.
var Doubled = hook.Hook(func(rc *hook.RenderContext, props hook.Props) any {
	count, _ := reactive.AsObservable(props.Raw("count"))
	doubled := rc.UseComputed(func() any {
		n, _ := count.Value().(int)
		return n * 2
	}, count)
	return view.El("span", view.Attrs{"class": "doubled"}, "doubled: ", rc.Read(doubled))
}, hook.WithName("Doubled"))

// App holds the count and passes it down. It never reads the count itself,
// so writes to the count do not re-render it.
var App = hook.Hook(func(rc *hook.RenderContext, props hook.Props) any {
	count := props.Raw("count")
	return view.El("div", view.Attrs{"id": "app"},
		view.El("h1", nil, props.Get("title")),
		Counter.New(rc).Prop("count", count).Render(),
		Doubled.New(rc).Prop("count", count).Render(),
	)
}, hook.WithName("App"), hook.WithShouldUpdate(hook.KeysChanged("title")))

// counterApp is the App component mounted in its own tree.
type counterApp struct {
	count *reactive.Node
	tree  *hook.Tree
	root  *hook.Instance
}

func newCounterApp(graph *reactive.Graph, logger *slog.Logger, opts ...hook.TreeOption) *counterApp {
	opts = append([]hook.TreeOption{hook.WithLogger(logger)}, opts...)
	tree := hook.NewTree(opts...)
	count := signal.NewTyped(0)
	if graph != nil {
		count = signal.Of[int](graph.New(0))
	}

	a := &counterApp{
		count: count.Node(),
		tree:  tree,
	}
	a.root = tree.New(App).
		Prop("title", "ripple counter").
		Prop("count", a.count)
	return a
}

// mount renders the root component once.
func (a *counterApp) mount() *view.Node {
	out, _ := a.root.Render().(*view.Node)
	return out
}

// increment adds one to the count.
func (a *counterApp) increment() {
	signal.Of[int](a.count).Update(func(n int) int { return n + 1 })
}

// instances returns the root followed by its children.
func (a *counterApp) instances() []*hook.Instance {
	return append([]*hook.Instance{a.root}, a.root.Children()...)
}
