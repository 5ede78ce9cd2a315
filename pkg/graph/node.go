package graph

import "github.com/dgraph-io/badger/v4"

// Node is a lightweight handle binding a node id to its property and
// relationship operations. Handles hold no state beyond the identity; every
// operation reads or writes the store and fails with NotFoundError once the
// node has been deleted.
type Node struct {
	g  *Graph
	id string
}

// ID returns the node's namespace-unique identifier.
func (n *Node) ID() string { return n.id }

// Get returns the current value of field, or PropertyNotFoundError.
func (n *Node) Get(field string) (string, error) {
	var val string
	err := n.g.view(func(txn *badger.Txn) error {
		if err := n.g.requireMember(txn, KindNode, n.id); err != nil {
			return err
		}
		var err error
		val, err = n.g.props.get(txn, KindNode, n.id, field)
		return err
	})
	return val, err
}

// Set writes field=value and re-derives the forward and composite index
// entries, as one transaction.
func (n *Node) Set(field, value string) error {
	return n.g.update(func(txn *badger.Txn) error {
		if err := n.g.requireMember(txn, KindNode, n.id); err != nil {
			return err
		}
		return n.g.props.set(txn, KindNode, n.id, field, value)
	})
}

// Remove deletes field and its index entries, or fails with
// PropertyNotFoundError if the field is not set.
func (n *Node) Remove(field string) error {
	return n.g.update(func(txn *badger.Txn) error {
		if err := n.g.requireMember(txn, KindNode, n.id); err != nil {
			return err
		}
		return n.g.props.remove(txn, KindNode, n.id, field)
	})
}

// Properties returns a snapshot of the full property map.
func (n *Node) Properties() (map[string]string, error) {
	var props map[string]string
	err := n.g.view(func(txn *badger.Txn) error {
		if err := n.g.requireMember(txn, KindNode, n.id); err != nil {
			return err
		}
		var err error
		props, err = n.g.props.dump(txn, KindNode, n.id)
		return err
	})
	return props, err
}

// Children returns the node's child neighbors ordered by parallel-edge
// weight ascending, ties broken by neighbor id.
func (n *Node) Children() ([]Neighbor, error) {
	var out []Neighbor
	err := n.g.view(func(txn *badger.Txn) error {
		if err := n.g.requireMember(txn, KindNode, n.id); err != nil {
			return err
		}
		var err error
		out, err = n.g.adj.children(txn, n.id)
		return err
	})
	return out, err
}

// Parents returns the node's parent neighbors, ordered like Children.
func (n *Node) Parents() ([]Neighbor, error) {
	var out []Neighbor
	err := n.g.view(func(txn *badger.Txn) error {
		if err := n.g.requireMember(txn, KindNode, n.id); err != nil {
			return err
		}
		var err error
		out, err = n.g.adj.parents(txn, n.id)
		return err
	})
	return out, err
}

// OutEdges returns the ids of edges leaving this node. Unordered.
func (n *Node) OutEdges() ([]string, error) {
	var out []string
	err := n.g.view(func(txn *badger.Txn) error {
		if err := n.g.requireMember(txn, KindNode, n.id); err != nil {
			return err
		}
		var err error
		out, err = n.g.adj.outEdges(txn, n.id)
		return err
	})
	return out, err
}

// InEdges returns the ids of edges arriving at this node. Unordered.
func (n *Node) InEdges() ([]string, error) {
	var out []string
	err := n.g.view(func(txn *badger.Txn) error {
		if err := n.g.requireMember(txn, KindNode, n.id); err != nil {
			return err
		}
		var err error
		out, err = n.g.adj.inEdges(txn, n.id)
		return err
	})
	return out, err
}
