package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/colinsongf/rgr/pkg/metrics"
)

// DefaultNamespace is used when Options.Namespace is empty.
const DefaultNamespace = "rgr"

// Options configures a graph opened with Open.
type Options struct {
	// DataDir is the directory for the underlying store's data files.
	// Required unless InMemory is set.
	DataDir string

	// Namespace is the key prefix isolating this graph from others sharing
	// the same store. Defaults to DefaultNamespace.
	Namespace string

	// InMemory runs the store in memory-only mode. Useful for testing.
	InMemory bool

	// SyncWrites forces fsync after each commit. Slower but more durable.
	SyncWrites bool

	// Logger for the store's internal logging. Quiet when nil.
	Logger badger.Logger
}

// Graph is a directed property graph overlaid on an ordered key-value store.
//
// Every composite mutation (AddNode, AddEdge, DelNode, DelEdge, and each
// single-property write) executes as one store transaction: concurrent
// writers see the full pre-mutation state or the full post-mutation state,
// never an interleaving. Conflicting writers receive the store's conflict
// error; there are no automatic retries. Reads run on snapshots and never
// block writers.
//
// Example:
//
//	g, err := graph.Open(graph.Options{DataDir: "./data", Namespace: "social"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer g.Close()
//
//	alice, _ := g.AddNode(map[string]string{"name": "alice"})
//	bob, _ := g.AddNode(map[string]string{"name": "bob"})
//	g.AddEdge(alice.ID(), bob.ID(), map[string]string{"rel": "friends"})
//
//	found, _ := g.FindNodes(graph.Criteria{"name": "^a"})
type Graph struct {
	db    *badger.DB
	ns    string
	ks    keyspace
	ids   idAllocator
	props propertyIndex
	adj   adjacencyTracker

	ownsDB bool

	mu     sync.RWMutex // Protects closed
	closed bool
}

// Open opens (or creates) a store and overlays a graph on it.
func Open(opts Options) (*Graph, error) {
	dir := opts.DataDir
	if opts.InMemory {
		dir = ""
	}

	badgerOpts := badger.DefaultOptions(dir)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	badgerOpts = badgerOpts.WithLogger(opts.Logger)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	g := New(db, opts.Namespace)
	g.ownsDB = true
	return g, nil
}

// New overlays a graph on a caller-provided store. The caller keeps ownership
// of db; Close on the returned graph will not close it. Multiple graphs with
// distinct namespaces can share one store.
func New(db *badger.DB, namespace string) *Graph {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	ks := keyspace{ns: namespace}
	return &Graph{
		db:    db,
		ns:    namespace,
		ks:    ks,
		ids:   idAllocator{ks: ks},
		props: propertyIndex{ks: ks},
		adj:   adjacencyTracker{ks: ks},
	}
}

// Namespace returns the graph's key prefix.
func (g *Graph) Namespace() string { return g.ns }

// Close releases the graph. The underlying store is closed only if Open
// created it.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true

	if g.ownsDB {
		return g.db.Close()
	}
	return nil
}

// update runs fn in one read-write store transaction.
func (g *Graph) update(fn func(txn *badger.Txn) error) error {
	g.mu.RLock()
	if g.closed {
		g.mu.RUnlock()
		return ErrClosed
	}
	g.mu.RUnlock()

	return g.db.Update(fn)
}

// view runs fn on a read-only snapshot.
func (g *Graph) view(fn func(txn *badger.Txn) error) error {
	g.mu.RLock()
	if g.closed {
		g.mu.RUnlock()
		return ErrClosed
	}
	g.mu.RUnlock()

	return g.db.View(fn)
}

// requireMember fails with NotFoundError unless id is a live member of its
// kind's membership set.
func (g *Graph) requireMember(txn *badger.Txn, kind Kind, id string) error {
	ok, err := setHas(txn, g.ks.members(kind), id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// ============================================================================
// Mutations
// ============================================================================

// AddNode creates a node, registers its membership and indexes the supplied
// properties, all in one transaction.
func (g *Graph) AddNode(props map[string]string) (*Node, error) {
	var id string
	err := g.update(func(txn *badger.Txn) error {
		var err error
		id, err = g.ids.next(txn, KindNode)
		if err != nil {
			return err
		}
		if err := setAdd(txn, g.ks.members(KindNode), id); err != nil {
			return err
		}
		for _, field := range sortedFields(props) {
			if err := g.props.set(txn, KindNode, id, field, props[field]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.NodesCreated.WithLabelValues(g.ns).Inc()
	return &Node{g: g, id: id}, nil
}

// AddEdge creates a directed edge from parent to child. Both endpoints must
// be live nodes; the edge id, endpoint references, adjacency entries,
// properties and membership are written in one transaction.
func (g *Graph) AddEdge(parentID, childID string, props map[string]string) (*Edge, error) {
	var id string
	err := g.update(func(txn *badger.Txn) error {
		if err := g.requireMember(txn, KindNode, parentID); err != nil {
			return err
		}
		if err := g.requireMember(txn, KindNode, childID); err != nil {
			return err
		}

		var err error
		id, err = g.ids.next(txn, KindEdge)
		if err != nil {
			return err
		}
		if err := txn.Set(g.ks.parentRef(id), []byte(parentID)); err != nil {
			return err
		}
		if err := txn.Set(g.ks.childRef(id), []byte(childID)); err != nil {
			return err
		}
		if err := g.adj.connect(txn, parentID, childID, id); err != nil {
			return err
		}
		for _, field := range sortedFields(props) {
			if err := g.props.set(txn, KindEdge, id, field, props[field]); err != nil {
				return err
			}
		}
		return setAdd(txn, g.ks.members(KindEdge), id)
	})
	if err != nil {
		return nil, err
	}

	metrics.EdgesCreated.WithLabelValues(g.ns).Inc()
	return &Edge{g: g, id: id}, nil
}

// DelNode deletes a node and cascades over its incident edges: every
// in/out edge is deleted first, then the node's properties are deindexed and
// its membership dropped. One transaction; after it commits the id is absent
// from every index and relationship set.
func (g *Graph) DelNode(id string) error {
	var cascaded int
	err := g.update(func(txn *badger.Txn) error {
		if err := g.requireMember(txn, KindNode, id); err != nil {
			return err
		}

		incident := make(map[string]struct{})
		for _, set := range []string{g.ks.inEdges(id), g.ks.outEdges(id)} {
			if err := setScan(txn, set, func(edgeID string) error {
				incident[edgeID] = struct{}{}
				return nil
			}); err != nil {
				return err
			}
		}
		for _, edgeID := range sortedKeys(incident) {
			if err := g.delEdgeTx(txn, edgeID); err != nil {
				return err
			}
		}
		cascaded = len(incident)

		if err := g.props.dropAll(txn, KindNode, id); err != nil {
			return err
		}
		return setRemove(txn, g.ks.members(KindNode), id)
	})
	if err != nil {
		return err
	}

	metrics.NodesDeleted.WithLabelValues(g.ns).Inc()
	metrics.EdgesDeleted.WithLabelValues(g.ns).Add(float64(cascaded))
	return nil
}

// DelEdge deletes one edge: adjacency entries, properties, endpoint
// references and membership, in one transaction.
func (g *Graph) DelEdge(id string) error {
	err := g.update(func(txn *badger.Txn) error {
		return g.delEdgeTx(txn, id)
	})
	if err != nil {
		return err
	}

	metrics.EdgesDeleted.WithLabelValues(g.ns).Inc()
	return nil
}

// delEdgeTx removes an edge inside an open transaction. Shared by DelEdge
// and the DelNode cascade.
func (g *Graph) delEdgeTx(txn *badger.Txn, id string) error {
	if err := g.requireMember(txn, KindEdge, id); err != nil {
		return err
	}

	parent, ok, err := getString(txn, g.ks.parentRef(id))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("edge %s: missing parent reference", id)
	}
	child, ok, err := getString(txn, g.ks.childRef(id))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("edge %s: missing child reference", id)
	}

	if err := g.adj.disconnect(txn, parent, child, id); err != nil {
		return err
	}
	if err := g.props.dropAll(txn, KindEdge, id); err != nil {
		return err
	}
	if err := txn.Delete(g.ks.parentRef(id)); err != nil {
		return err
	}
	if err := txn.Delete(g.ks.childRef(id)); err != nil {
		return err
	}
	return setRemove(txn, g.ks.members(KindEdge), id)
}

// ============================================================================
// Lookups and queries
// ============================================================================

// Node resolves a node id to a handle, or NotFoundError.
func (g *Graph) Node(id string) (*Node, error) {
	err := g.view(func(txn *badger.Txn) error {
		return g.requireMember(txn, KindNode, id)
	})
	if err != nil {
		return nil, err
	}
	return &Node{g: g, id: id}, nil
}

// Edge resolves an edge id to a handle, or NotFoundError.
func (g *Graph) Edge(id string) (*Edge, error) {
	err := g.view(func(txn *badger.Txn) error {
		return g.requireMember(txn, KindEdge, id)
	})
	if err != nil {
		return nil, err
	}
	return &Edge{g: g, id: id}, nil
}

// GetNodes returns the nodes whose properties equal every (field, value)
// pair in criteria, via the composite index. Empty criteria returns all
// live nodes.
func (g *Graph) GetNodes(criteria Criteria) ([]*Node, error) {
	ids, err := g.match(KindNode, criteria, false)
	if err != nil {
		return nil, err
	}
	return g.wrapNodes(ids), nil
}

// GetEdges is GetNodes for edges.
func (g *Graph) GetEdges(criteria Criteria) ([]*Edge, error) {
	ids, err := g.match(KindEdge, criteria, false)
	if err != nil {
		return nil, err
	}
	return g.wrapEdges(ids), nil
}

// FindNodes returns the nodes whose properties match every (field, pattern)
// pair in criteria, by scanning the forward index and testing current values
// against the compiled patterns. Cost grows with the forward-set size of each
// field. Empty criteria returns all live nodes.
func (g *Graph) FindNodes(criteria Criteria) ([]*Node, error) {
	ids, err := g.match(KindNode, criteria, true)
	if err != nil {
		return nil, err
	}
	return g.wrapNodes(ids), nil
}

// FindEdges is FindNodes for edges.
func (g *Graph) FindEdges(criteria Criteria) ([]*Edge, error) {
	ids, err := g.match(KindEdge, criteria, true)
	if err != nil {
		return nil, err
	}
	return g.wrapEdges(ids), nil
}

func (g *Graph) match(kind Kind, criteria Criteria, regex bool) ([]string, error) {
	var ids []string
	err := g.view(func(txn *badger.Txn) error {
		var err error
		if regex {
			ids, err = g.props.regexMatch(txn, kind, criteria)
		} else {
			ids, err = g.props.exactMatch(txn, kind, criteria)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() (int64, error) {
	return g.countMembers(KindNode)
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() (int64, error) {
	return g.countMembers(KindEdge)
}

func (g *Graph) countMembers(kind Kind) (int64, error) {
	var n int64
	err := g.view(func(txn *badger.Txn) error {
		var err error
		n, err = setLen(txn, g.ks.members(kind))
		return err
	})
	return n, err
}

func (g *Graph) wrapNodes(ids []string) []*Node {
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = &Node{g: g, id: id}
	}
	return nodes
}

func (g *Graph) wrapEdges(ids []string) []*Edge {
	edges := make([]*Edge, len(ids))
	for i, id := range ids {
		edges[i] = &Edge{g: g, id: id}
	}
	return edges
}

// sortedFields gives property writes a stable order within a transaction.
func sortedFields(props map[string]string) []string {
	fields := make([]string, 0, len(props))
	for field := range props {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
