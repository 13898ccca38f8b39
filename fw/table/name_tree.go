package table

import (
	enc "github.com/ndnrtr/fwcore/std/encoding"
)

// NameTreeMaxDepth bounds how many components a name may have before being
// rejected: it keeps FindLongestPrefixMatch's component-by-component walk
// bounded and matches the teacher's NDN deployment assumptions.
const NameTreeMaxDepth = 64

// NameTreeEntry is one node of the prefix index: it corresponds to exactly
// one name, and optionally carries a back-pointer into each of the tables
// that index by name (FIB+StrategyChoice, PIT, Content Store, Measurements).
type NameTreeEntry struct {
	name     enc.Name
	hash     uint64
	depth    int
	parent   *NameTreeEntry
	children map[uint64]*NameTreeEntry

	fibStrategy  *baseFibStrategyEntry
	measurements *measurementsEntry
	pitEntries   []*basePitEntry
	csEntries    []*baseCsEntry
	rib          *ribEntry
}

// Name returns the name this entry indexes.
func (e *NameTreeEntry) Name() enc.Name { return e.name }

// isEmpty reports whether the entry carries no table data and has no
// children, i.e. whether it may be pruned from the tree.
func (e *NameTreeEntry) isEmpty() bool {
	return len(e.children) == 0 &&
		e.fibStrategy == nil &&
		e.measurements == nil &&
		len(e.pitEntries) == 0 &&
		len(e.csEntries) == 0 &&
		e.rib == nil
}

// NameTree is the hash-table-backed prefix index shared by every table that
// needs exact-match and longest-prefix-match lookup by name: the FIB (+
// StrategyChoice), the PIT, the Content Store and Measurements.
type NameTree struct {
	root *NameTreeEntry
	// table indexes every entry by the xxhash of its full name, mirroring
	// the hash Name.Hash() already computes for std/encoding callers.
	table map[uint64]*NameTreeEntry
}

// NewNameTree constructs an empty NameTree. Each forwarding thread builds
// its own, separate from the process-wide one backing the FIB and RIB, so
// that its Pit/Cs/Measurements never contend with another thread's.
func NewNameTree() *NameTree {
	return newNameTree()
}

func newNameTree() *NameTree {
	root := &NameTreeEntry{name: enc.Name{}, children: make(map[uint64]*NameTreeEntry)}
	root.hash = root.name.Hash()
	nt := &NameTree{root: root, table: make(map[uint64]*NameTreeEntry)}
	nt.table[root.hash] = root
	return nt
}

// Lookup returns the NameTreeEntry for name, creating it (and any missing
// prefix ancestors) if it does not already exist.
func (nt *NameTree) Lookup(name enc.Name) (*NameTreeEntry, error) {
	if len(name) > NameTreeMaxDepth {
		return nil, ErrNameTooLong{Name: name}
	}

	cur := nt.root
	for depth := 1; depth <= len(name); depth++ {
		prefix := name[:depth]
		h := prefix.Hash()
		child, ok := cur.children[h]
		if !ok {
			child = &NameTreeEntry{
				name:     prefix.Clone(),
				hash:     h,
				depth:    depth,
				parent:   cur,
				children: make(map[uint64]*NameTreeEntry),
			}
			cur.children[h] = child
			nt.table[h] = child
		}
		cur = child
	}
	return cur, nil
}

// FindExactMatch returns the entry for name if it exists, without creating it.
func (nt *NameTree) FindExactMatch(name enc.Name) *NameTreeEntry {
	if len(name) == 0 {
		return nt.root
	}
	return nt.table[name.Hash()]
}

// FindLongestPrefixMatch walks from name down to the empty prefix, returning
// the deepest existing entry for which match returns true. match is nil-safe:
// a nil match accepts any existing entry.
func (nt *NameTree) FindLongestPrefixMatch(name enc.Name, match func(*NameTreeEntry) bool) *NameTreeEntry {
	hashes := name.PrefixHash()
	for depth := len(name); depth >= 0; depth-- {
		entry, ok := nt.table[hashes[depth]]
		if !ok {
			continue
		}
		if match == nil || match(entry) {
			return entry
		}
	}
	return nil
}

// EraseEntryIfEmpty removes entry (and any now-empty ancestors) from the tree
// once it carries no table data and has no children.
func (nt *NameTree) EraseEntryIfEmpty(entry *NameTreeEntry) {
	for entry != nil && entry.parent != nil && entry.isEmpty() {
		delete(entry.parent.children, entry.hash)
		delete(nt.table, entry.hash)
		next := entry.parent
		entry = next
	}
}

// size returns the number of entries in the tree, including the root.
func (nt *NameTree) size() int {
	return len(nt.table)
}
