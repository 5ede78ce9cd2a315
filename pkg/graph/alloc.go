package graph

import (
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// idAllocator issues monotonically increasing, never-reused identifiers per
// entity kind. It is the single source of new ids; membership-set size is
// never consulted. The counter write rides the enclosing mutation's
// transaction, so a discarded mutation leaves no observable gap.
type idAllocator struct {
	ks keyspace
}

// next returns the current counter value for kind, string-encoded, and
// advances the counter. The counter starts at 0 on first use.
func (a idAllocator) next(txn *badger.Txn, kind Kind) (string, error) {
	key := a.ks.counter(kind)

	var cur uint64
	item, err := txn.Get(key)
	switch {
	case err == badger.ErrKeyNotFound:
		// First allocation in this namespace.
	case err != nil:
		return "", fmt.Errorf("reading %s id counter: %w", kind, err)
	default:
		if err := item.Value(func(val []byte) error {
			var parseErr error
			cur, parseErr = strconv.ParseUint(string(val), 10, 64)
			return parseErr
		}); err != nil {
			return "", fmt.Errorf("decoding %s id counter: %w", kind, err)
		}
	}

	if err := txn.Set(key, []byte(strconv.FormatUint(cur+1, 10))); err != nil {
		return "", fmt.Errorf("advancing %s id counter: %w", kind, err)
	}
	return strconv.FormatUint(cur, 10), nil
}
