package graph

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

// propertyIndex maintains each entity's property map plus the two derived
// index families: forward (field → id set) and composite (field+value → id
// set). The property map is authoritative; both indexes are always
// re-derivable from it and are updated in the same transaction as the map.
type propertyIndex struct {
	ks keyspace
}

// set writes field=value and re-derives the index entries. A previously set
// value is deindexed before the new entries are added, all within the caller's
// transaction: concurrent readers see the old state or the new one, never a
// field indexed under two values.
func (p propertyIndex) set(txn *badger.Txn, kind Kind, id, field, value string) error {
	pm := p.ks.props(kind, id)

	old, ok, err := getString(txn, memberKey(pm, field))
	if err != nil {
		return fmt.Errorf("reading %s %s property %q: %w", kind, id, field, err)
	}
	if ok {
		if err := setRemove(txn, p.ks.forward(kind, field), id); err != nil {
			return err
		}
		if err := setRemove(txn, p.ks.composite(kind, field, old), id); err != nil {
			return err
		}
	}

	if err := txn.Set(memberKey(pm, field), []byte(value)); err != nil {
		return err
	}
	if err := setAdd(txn, p.ks.forward(kind, field), id); err != nil {
		return err
	}
	return setAdd(txn, p.ks.composite(kind, field, value), id)
}

// get returns the current value of field, or PropertyNotFoundError.
func (p propertyIndex) get(txn *badger.Txn, kind Kind, id, field string) (string, error) {
	val, ok, err := getString(txn, memberKey(p.ks.props(kind, id), field))
	if err != nil {
		return "", fmt.Errorf("reading %s %s property %q: %w", kind, id, field, err)
	}
	if !ok {
		return "", &PropertyNotFoundError{Field: field}
	}
	return val, nil
}

// remove deletes field and its index entries, or fails with
// PropertyNotFoundError if the field was never set.
func (p propertyIndex) remove(txn *badger.Txn, kind Kind, id, field string) error {
	pm := p.ks.props(kind, id)
	old, ok, err := getString(txn, memberKey(pm, field))
	if err != nil {
		return fmt.Errorf("reading %s %s property %q: %w", kind, id, field, err)
	}
	if !ok {
		return &PropertyNotFoundError{Field: field}
	}

	if err := txn.Delete(memberKey(pm, field)); err != nil {
		return err
	}
	if err := setRemove(txn, p.ks.forward(kind, field), id); err != nil {
		return err
	}
	return setRemove(txn, p.ks.composite(kind, field, old), id)
}

// dump returns a snapshot of the full property map.
func (p propertyIndex) dump(txn *badger.Txn, kind Kind, id string) (map[string]string, error) {
	props := make(map[string]string)
	err := mapScan(txn, p.ks.props(kind, id), func(field, value string) error {
		props[field] = value
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s %s properties: %w", kind, id, err)
	}
	return props, nil
}

// dropAll deindexes every currently-set field and deletes the property map.
// The deletion path shared by node and edge removal.
func (p propertyIndex) dropAll(txn *badger.Txn, kind Kind, id string) error {
	pm := p.ks.props(kind, id)

	// Collect first: the iterator must not observe its own deletes.
	fields := make(map[string]string)
	if err := mapScan(txn, pm, func(field, value string) error {
		fields[field] = value
		return nil
	}); err != nil {
		return fmt.Errorf("reading %s %s properties: %w", kind, id, err)
	}

	for field, value := range fields {
		if err := txn.Delete(memberKey(pm, field)); err != nil {
			return err
		}
		if err := setRemove(txn, p.ks.forward(kind, field), id); err != nil {
			return err
		}
		if err := setRemove(txn, p.ks.composite(kind, field, value), id); err != nil {
			return err
		}
	}
	return nil
}

// exactMatch intersects the composite sets for every (field, value) pair.
// Empty criteria returns the full membership set for the kind.
func (p propertyIndex) exactMatch(txn *badger.Txn, kind Kind, criteria Criteria) ([]string, error) {
	if len(criteria) == 0 {
		ids, err := setMembers(txn, p.ks.members(kind))
		if err != nil {
			return nil, err
		}
		sortIDs(ids)
		return ids, nil
	}

	var result map[string]struct{}
	for field, value := range criteria {
		matched := make(map[string]struct{})
		err := setScan(txn, p.ks.composite(kind, field, value), func(id string) error {
			matched[id] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, err
		}
		result = intersect(result, matched)
		if len(result) == 0 {
			return nil, nil
		}
	}
	return sortedKeys(result), nil
}

// regexMatch scans the forward set of every requested field, testing each
// entity's current value against the compiled pattern, and intersects the
// per-field match sets. Unindexed by design: cost is proportional to the
// forward-set size per field.
func (p propertyIndex) regexMatch(txn *badger.Txn, kind Kind, criteria Criteria) ([]string, error) {
	if len(criteria) == 0 {
		return p.exactMatch(txn, kind, criteria)
	}

	patterns := make(map[string]*regexp.Regexp, len(criteria))
	for field, pattern := range criteria {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern for field %q: %w", field, err)
		}
		patterns[field] = re
	}

	var result map[string]struct{}
	for field, re := range patterns {
		ids, err := setMembers(txn, p.ks.forward(kind, field))
		if err != nil {
			return nil, err
		}
		matched := make(map[string]struct{})
		for _, id := range ids {
			val, ok, err := getString(txn, memberKey(p.ks.props(kind, id), field))
			if err != nil {
				return nil, err
			}
			if ok && re.MatchString(val) {
				matched[id] = struct{}{}
			}
		}
		result = intersect(result, matched)
		if len(result) == 0 {
			return nil, nil
		}
	}
	return sortedKeys(result), nil
}

// intersect narrows acc by next; a nil acc means "first set".
func intersect(acc, next map[string]struct{}) map[string]struct{} {
	if acc == nil {
		return next
	}
	for id := range acc {
		if _, ok := next[id]; !ok {
			delete(acc, id)
		}
	}
	return acc
}

func sortedKeys(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// sortIDs orders string-encoded integer ids numerically: shorter decimal
// strings first, equal lengths lexicographically.
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
}
