package graph

import (
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Key layout within a namespace ns, the compatibility contract with the
// underlying store:
//
//	ns:next_nid, ns:next_eid           scalar    next id to allocate
//	ns:nodes, ns:edges                 set       all live ids
//	ns:n:{id}:p, ns:e:{id}:p           map       properties, one entry per field
//	ns:e:{id}:in, ns:e:{id}:on         scalar    parent / child node id
//	ns:n:{id}:oe, ns:n:{id}:ie         set       outgoing / incoming edge ids
//	ns:n:{id}:cn, ns:n:{id}:pn         weighted  child→count, parent→count
//	ns:i:n:{field}, ns:i:e:{field}     set       forward index
//	ns:i:n:{field}:{value}             set       composite index
//
// Sets, maps and weighted sets are stored one member per key: the pattern
// above is the fixed part, followed by a 0x00 separator and the member (set
// element, field name, or neighbor id). Membership is a point read,
// enumeration a prefix scan over the ordered store. Field and value segments
// inside set names are escaped so they never contain the separator byte; the
// separator is therefore always the first 0x00 of a full key, and no set name
// is a byte-prefix of another set name plus separator. Field names containing
// ':' can collide with composite index entries; the layout inherits that
// ambiguity from the published key patterns.
const memberSep = 0x00

// keyspace builds store keys for one namespace.
type keyspace struct {
	ns string
}

func (k keyspace) counter(kind Kind) []byte {
	if kind == KindNode {
		return []byte(k.ns + ":next_nid")
	}
	return []byte(k.ns + ":next_eid")
}

// members returns the membership set holding all live ids of a kind.
func (k keyspace) members(kind Kind) string {
	if kind == KindNode {
		return k.ns + ":nodes"
	}
	return k.ns + ":edges"
}

// props returns the property map of one entity.
func (k keyspace) props(kind Kind, id string) string {
	return k.ns + ":" + kind.code() + ":" + id + ":p"
}

// parentRef and childRef hold an edge's immutable endpoint references.
func (k keyspace) parentRef(edgeID string) []byte {
	return []byte(k.ns + ":e:" + edgeID + ":in")
}

func (k keyspace) childRef(edgeID string) []byte {
	return []byte(k.ns + ":e:" + edgeID + ":on")
}

func (k keyspace) outEdges(nodeID string) string {
	return k.ns + ":n:" + nodeID + ":oe"
}

func (k keyspace) inEdges(nodeID string) string {
	return k.ns + ":n:" + nodeID + ":ie"
}

// children and parents are the weighted adjacency sets; the weight of a
// member is the number of live parallel edges to/from that neighbor.
func (k keyspace) children(nodeID string) string {
	return k.ns + ":n:" + nodeID + ":cn"
}

func (k keyspace) parents(nodeID string) string {
	return k.ns + ":n:" + nodeID + ":pn"
}

// forward indexes every id that has a field set, regardless of value.
func (k keyspace) forward(kind Kind, field string) string {
	return k.ns + ":i:" + kind.code() + ":" + escapeSegment(field)
}

// composite indexes every id whose field equals a value exactly.
func (k keyspace) composite(kind Kind, field, value string) string {
	return k.ns + ":i:" + kind.code() + ":" + escapeSegment(field) + ":" + escapeSegment(value)
}

// escapeSegment makes a caller-supplied field or value safe to embed in a set
// name. Properties are opaque strings, so they may contain the member
// separator; without escaping, the composite set for value "va" would be a
// byte-prefix of the set for "va\x00lue" and prefix scans would leak entries
// between them. 0x00 becomes 0x01 0x02 and the escape byte 0x01 becomes
// 0x01 0x03, which keeps the mapping injective and separator-free.
func escapeSegment(s string) string {
	if !strings.ContainsAny(s, "\x00\x01") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 0x00:
			b.WriteByte(0x01)
			b.WriteByte(0x02)
		case 0x01:
			b.WriteByte(0x01)
			b.WriteByte(0x03)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ============================================================================
// Set, scalar and weighted-set primitives over a transaction
// ============================================================================

func memberKey(set, member string) []byte {
	key := make([]byte, 0, len(set)+1+len(member))
	key = append(key, set...)
	key = append(key, memberSep)
	key = append(key, member...)
	return key
}

func memberPrefix(set string) []byte {
	key := make([]byte, 0, len(set)+1)
	key = append(key, set...)
	key = append(key, memberSep)
	return key
}

func setAdd(txn *badger.Txn, set, member string) error {
	return txn.Set(memberKey(set, member), []byte{})
}

func setRemove(txn *badger.Txn, set, member string) error {
	return txn.Delete(memberKey(set, member))
}

func setHas(txn *badger.Txn, set, member string) (bool, error) {
	_, err := txn.Get(memberKey(set, member))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// setScan calls fn for every member of a set, in the store's key order.
func setScan(txn *badger.Txn, set string, fn func(member string) error) error {
	prefix := memberPrefix(set)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		member := string(it.Item().Key()[len(prefix):])
		if err := fn(member); err != nil {
			return err
		}
	}
	return nil
}

func setMembers(txn *badger.Txn, set string) ([]string, error) {
	var members []string
	err := setScan(txn, set, func(member string) error {
		members = append(members, member)
		return nil
	})
	return members, err
}

func setLen(txn *badger.Txn, set string) (int64, error) {
	var n int64
	err := setScan(txn, set, func(string) error {
		n++
		return nil
	})
	return n, err
}

// getString reads a scalar key. Missing keys report ok=false, not an error.
func getString(txn *badger.Txn, key []byte) (string, bool, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", false, err
	}
	return string(val), true, nil
}

// mapScan calls fn for every (field, value) entry of a stored map.
func mapScan(txn *badger.Txn, set string, fn func(field, value string) error) error {
	prefix := memberPrefix(set)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		field := string(item.Key()[len(prefix):])
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(field, string(val)); err != nil {
			return err
		}
	}
	return nil
}

// weightIncr adds 1 to a member's weight, creating the entry at 1.
func weightIncr(txn *badger.Txn, set, member string) error {
	key := memberKey(set, member)
	cur, _, err := weightRead(txn, key)
	if err != nil {
		return err
	}
	return txn.Set(key, []byte(strconv.FormatInt(cur+1, 10)))
}

// weightDecr subtracts 1 from a member's weight and deletes the entry when
// it reaches zero; zero-weight entries never persist.
func weightDecr(txn *badger.Txn, set, member string) error {
	key := memberKey(set, member)
	cur, ok, err := weightRead(txn, key)
	if err != nil {
		return err
	}
	if !ok || cur <= 1 {
		return txn.Delete(key)
	}
	return txn.Set(key, []byte(strconv.FormatInt(cur-1, 10)))
}

func weightRead(txn *badger.Txn, key []byte) (int64, bool, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var w int64
	err = item.Value(func(val []byte) error {
		var parseErr error
		w, parseErr = strconv.ParseInt(string(val), 10, 64)
		return parseErr
	})
	if err != nil {
		return 0, false, err
	}
	return w, true, nil
}
