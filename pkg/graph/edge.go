package graph

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Edge is a lightweight handle binding an edge id to its property operations
// and its stored, immutable parent/child references.
type Edge struct {
	g  *Graph
	id string
}

// ID returns the edge's namespace-unique identifier.
func (e *Edge) ID() string { return e.id }

// Get returns the current value of field, or PropertyNotFoundError.
func (e *Edge) Get(field string) (string, error) {
	var val string
	err := e.g.view(func(txn *badger.Txn) error {
		if err := e.g.requireMember(txn, KindEdge, e.id); err != nil {
			return err
		}
		var err error
		val, err = e.g.props.get(txn, KindEdge, e.id, field)
		return err
	})
	return val, err
}

// Set writes field=value and re-derives the index entries, as one
// transaction.
func (e *Edge) Set(field, value string) error {
	return e.g.update(func(txn *badger.Txn) error {
		if err := e.g.requireMember(txn, KindEdge, e.id); err != nil {
			return err
		}
		return e.g.props.set(txn, KindEdge, e.id, field, value)
	})
}

// Remove deletes field and its index entries, or fails with
// PropertyNotFoundError if the field is not set.
func (e *Edge) Remove(field string) error {
	return e.g.update(func(txn *badger.Txn) error {
		if err := e.g.requireMember(txn, KindEdge, e.id); err != nil {
			return err
		}
		return e.g.props.remove(txn, KindEdge, e.id, field)
	})
}

// Properties returns a snapshot of the full property map.
func (e *Edge) Properties() (map[string]string, error) {
	var props map[string]string
	err := e.g.view(func(txn *badger.Txn) error {
		if err := e.g.requireMember(txn, KindEdge, e.id); err != nil {
			return err
		}
		var err error
		props, err = e.g.props.dump(txn, KindEdge, e.id)
		return err
	})
	return props, err
}

// Parent returns the edge's parent (source) node.
func (e *Edge) Parent() (*Node, error) {
	id, err := e.endpoint(e.g.ks.parentRef(e.id))
	if err != nil {
		return nil, err
	}
	return &Node{g: e.g, id: id}, nil
}

// Child returns the edge's child (target) node.
func (e *Edge) Child() (*Node, error) {
	id, err := e.endpoint(e.g.ks.childRef(e.id))
	if err != nil {
		return nil, err
	}
	return &Node{g: e.g, id: id}, nil
}

func (e *Edge) endpoint(key []byte) (string, error) {
	var id string
	err := e.g.view(func(txn *badger.Txn) error {
		if err := e.g.requireMember(txn, KindEdge, e.id); err != nil {
			return err
		}
		var ok bool
		var err error
		id, ok, err = getString(txn, key)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("edge %s: missing endpoint reference", e.id)
		}
		return nil
	})
	return id, err
}
