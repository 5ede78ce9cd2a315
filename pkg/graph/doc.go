// Package graph overlays a directed property graph onto an ordered key-value
// store: nodes and edges with arbitrary string properties, adjacency tracking
// with parallel-edge weighting, and secondary indexes supporting exact-match
// and regex property search.
//
// The store is BadgerDB; its transaction primitive and ordered prefix
// iteration are consumed, not reimplemented. A graph lives under one
// namespace, a key prefix isolating it from other graphs sharing the store.
// Node and edge identifiers are monotonically increasing per kind and are
// never reused, even across deletions.
//
// Property values are opaque strings. The composite index matches by exact
// byte equality with no normalization; typed comparison or parsing is a
// caller concern.
//
// Basic usage:
//
//	g, err := graph.Open(graph.Options{DataDir: "./data"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer g.Close()
//
//	john, _ := g.AddNode(map[string]string{"name": "john", "type": "person"})
//	mary, _ := g.AddNode(map[string]string{"name": "mary", "type": "person"})
//	e, _ := g.AddEdge(john.ID(), mary.ID(), map[string]string{"rel": "friends"})
//	fmt.Println("edge:", e.ID())
//
//	people, _ := g.GetNodes(graph.Criteria{"type": "person"})
//	for _, p := range people {
//		name, _ := p.Get("name")
//		fmt.Println(p.ID(), name)
//	}
//
// Deleting a node cascades: all incident edges are removed first, in the same
// transaction, so neighbors never observe a half-deleted node.
package graph
