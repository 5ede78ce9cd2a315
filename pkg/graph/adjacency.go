package graph

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// adjacencyTracker maintains the per-node incoming/outgoing edge-id sets and
// the weighted parent/child counts. A neighbor's weight is the number of live
// parallel edges between the pair; entries are deleted at weight zero.
type adjacencyTracker struct {
	ks keyspace
}

// connect records a new edge from parent to child in every adjacency
// structure. Runs inside the caller's transaction together with the edge's
// own writes.
func (a adjacencyTracker) connect(txn *badger.Txn, parent, child, edgeID string) error {
	if err := setAdd(txn, a.ks.outEdges(parent), edgeID); err != nil {
		return err
	}
	if err := setAdd(txn, a.ks.inEdges(child), edgeID); err != nil {
		return err
	}
	if err := weightIncr(txn, a.ks.children(parent), child); err != nil {
		return err
	}
	return weightIncr(txn, a.ks.parents(child), parent)
}

// disconnect reverses connect for one edge.
func (a adjacencyTracker) disconnect(txn *badger.Txn, parent, child, edgeID string) error {
	if err := setRemove(txn, a.ks.outEdges(parent), edgeID); err != nil {
		return err
	}
	if err := setRemove(txn, a.ks.inEdges(child), edgeID); err != nil {
		return err
	}
	if err := weightDecr(txn, a.ks.children(parent), child); err != nil {
		return err
	}
	return weightDecr(txn, a.ks.parents(child), parent)
}

// children returns a node's child neighbors with parallel-edge weights.
func (a adjacencyTracker) children(txn *badger.Txn, nodeID string) ([]Neighbor, error) {
	return a.neighbors(txn, a.ks.children(nodeID))
}

// parents returns a node's parent neighbors with parallel-edge weights.
func (a adjacencyTracker) parents(txn *badger.Txn, nodeID string) ([]Neighbor, error) {
	return a.neighbors(txn, a.ks.parents(nodeID))
}

// neighbors reads one weighted set, ordered by weight ascending with ties
// broken by id. The same order a sorted set keyed on weight would yield.
func (a adjacencyTracker) neighbors(txn *badger.Txn, set string) ([]Neighbor, error) {
	var out []Neighbor
	prefix := memberPrefix(set)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		id := string(item.Key()[len(prefix):])
		var w int64
		err := item.Value(func(val []byte) error {
			var parseErr error
			w, parseErr = strconv.ParseInt(string(val), 10, 64)
			return parseErr
		})
		if err != nil {
			return nil, fmt.Errorf("reading weight for neighbor %s: %w", id, err)
		}
		out = append(out, Neighbor{ID: id, Weight: w})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight < out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// outEdges returns a node's outgoing edge ids. Unordered.
func (a adjacencyTracker) outEdges(txn *badger.Txn, nodeID string) ([]string, error) {
	return setMembers(txn, a.ks.outEdges(nodeID))
}

// inEdges returns a node's incoming edge ids. Unordered.
func (a adjacencyTracker) inEdges(txn *badger.Txn, nodeID string) ([]string, error) {
	return setMembers(txn, a.ks.inEdges(nodeID))
}
