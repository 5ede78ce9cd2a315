package graph

// Kind distinguishes the two entity kinds sharing a namespace. Each kind has
// its own id counter, membership set and index families.
type Kind int

const (
	KindNode Kind = iota
	KindEdge
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	if k == KindNode {
		return "node"
	}
	return "edge"
}

// code is the single-letter key segment for this kind.
func (k Kind) code() string {
	if k == KindNode {
		return "n"
	}
	return "e"
}

// Criteria maps field names to required values (exact queries) or regular
// expression patterns (find queries). All values are opaque strings; matching
// is exact byte equality for composite-index lookups, with no normalization.
type Criteria map[string]string

// Neighbor is one entry of a node's weighted adjacency: a neighboring node id
// and the number of live parallel edges connecting the pair.
type Neighbor struct {
	ID     string
	Weight int64
}
