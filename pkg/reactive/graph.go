package reactive

import (
	"log/slog"
	"runtime"
	"sync"
	"weak"
)

// Recorder receives graph events. pkg/metrics provides a Prometheus
// implementation.
type Recorder interface {
	// NodeCreated is called once for every node the graph constructs.
	NodeCreated()

	// Dispatched is called after a node notified its subscribers.
	Dispatched(subscribers int)
}

type nopRecorder struct{}

func (nopRecorder) NodeCreated()   {}
func (nopRecorder) Dispatched(int) {}

// Graph owns the identity cache that maps raw objects to their nodes.
// Entries are weak: once nothing references a node it is collected and
// its entry is dropped.
type Graph struct {
	mu    sync.Mutex
	nodes map[identity]weak.Pointer[Node]

	logger   *slog.Logger
	recorder Recorder
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) GraphOption {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRecorder sets the recorder notified of graph events.
func WithRecorder(r Recorder) GraphOption {
	return func(g *Graph) {
		if r != nil {
			g.recorder = r
		}
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		nodes:    make(map[identity]weak.Pointer[Node]),
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Default is the process-wide graph used by New.
var Default = NewGraph()

// New wraps v in a node of the default graph.
func New(v any) *Node {
	return Default.New(v)
}

// New returns the node for v. Objects already known to the graph return
// their existing node; primitives always get a fresh boxed node.
func (g *Graph) New(v any) *Node {
	return g.nodeFor(v, nil, Key{}, nil)
}

// Box returns a fresh root node for v without consulting the identity
// cache. Computed values use it so that a derived object never aliases
// the node of the object it was derived from.
func (g *Graph) Box(v any) *Node {
	return g.newNode(v, nil, Key{}, nil)
}

// Len returns the number of live entries in the identity cache.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for id, wp := range g.nodes {
		if wp.Value() == nil {
			delete(g.nodes, id)
			continue
		}
		n++
	}
	return n
}

// Lookup returns the node cached for the raw object v, if any.
func (g *Graph) Lookup(v any) (*Node, bool) {
	id, ok := identityOf(v)
	if !ok {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.lookupLocked(id)
	return n, n != nil
}

// nodeFor returns the cached node for an object or constructs a new one
// with the given parent position.
func (g *Graph) nodeFor(v any, parent *Node, key Key, path Path) *Node {
	id, ok := identityOf(v)
	if !ok {
		return g.newNode(v, parent, key, path)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if n := g.lookupLocked(id); n != nil {
		return n
	}
	n := g.newNode(v, parent, key, path)
	g.registerLocked(id, n)
	return n
}

func (g *Graph) newNode(v any, parent *Node, key Key, path Path) *Node {
	n := &Node{
		id:     NextID(),
		graph:  g,
		target: v,
		object: isObject(v),
		parent: parent,
		key:    key,
		path:   path,
	}
	g.recorder.NodeCreated()
	return n
}

// lookupLocked returns the node for id if it is alive and still holds the
// object the id was taken from.
func (g *Graph) lookupLocked(id identity) *Node {
	wp, ok := g.nodes[id]
	if !ok {
		return nil
	}
	n := wp.Value()
	if n == nil {
		delete(g.nodes, id)
		return nil
	}
	if cur, ok := identityOf(n.raw()); !ok || cur != id {
		return nil
	}
	return n
}

func (g *Graph) registerLocked(id identity, n *Node) {
	g.nodes[id] = weak.Make(n)
	runtime.AddCleanup(n, g.evict, id)
}

func (g *Graph) evict(id identity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if wp, ok := g.nodes[id]; ok && wp.Value() == nil {
		delete(g.nodes, id)
	}
}

// adopt registers v under n when v is an object nobody else owns yet.
func (g *Graph) adopt(n *Node, v any) {
	id, ok := identityOf(v)
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lookupLocked(id) == nil {
		g.registerLocked(id, n)
	}
}

// rekey moves n from the identity of its previous slice header to the
// identity of its current one after a structural mutation.
func (g *Graph) rekey(n *Node, before any, after any) {
	oldID, hadOld := identityOf(before)
	newID, hasNew := identityOf(after)
	if hadOld && hasNew && oldID == newID {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if hadOld {
		if wp, ok := g.nodes[oldID]; ok && wp.Value() == n {
			delete(g.nodes, oldID)
		}
	}
	if hasNew && g.lookupLocked(newID) == nil {
		g.registerLocked(newID, n)
	}
}
