package table

import (
	"testing"

	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/stretchr/testify/assert"
)

// Looks up a name in a fresh NameTree and verifies every missing prefix
// ancestor (including the implicit root) was created along the way.
func TestNameTreeLookupCreatesAncestors(t *testing.T) {
	nt := NewNameTree()
	name, _ := enc.NameFromStr("/a/b/c")

	entry, err := nt.Lookup(name)
	assert.Nil(t, err)
	assert.True(t, entry.Name().Equal(name))

	for depth := 1; depth <= 3; depth++ {
		prefix := name[:depth]
		assert.NotNil(t, nt.FindExactMatch(prefix))
	}
	assert.Equal(t, 4, nt.size()) // root + /a + /a/b + /a/b/c
}

// Looking up the same name twice returns the identical NameTreeEntry rather
// than creating a duplicate.
func TestNameTreeLookupIsIdempotent(t *testing.T) {
	nt := NewNameTree()
	name, _ := enc.NameFromStr("/a/b")

	first, err := nt.Lookup(name)
	assert.Nil(t, err)
	second, err := nt.Lookup(name)
	assert.Nil(t, err)
	assert.Same(t, first, second)
}

// FindExactMatch returns nil for a name that was never looked up, and the
// root entry for the empty name.
func TestNameTreeFindExactMatch(t *testing.T) {
	nt := NewNameTree()
	name, _ := enc.NameFromStr("/a/b")

	assert.Nil(t, nt.FindExactMatch(name))

	_, err := nt.Lookup(name)
	assert.Nil(t, err)
	entry := nt.FindExactMatch(name)
	assert.NotNil(t, entry)
	assert.True(t, entry.Name().Equal(name))

	assert.Same(t, nt.root, nt.FindExactMatch(enc.Name{}))
}

// FindLongestPrefixMatch walks from the full name down to the root, returning
// the deepest existing entry that satisfies match.
func TestNameTreeFindLongestPrefixMatch(t *testing.T) {
	nt := NewNameTree()
	aName, _ := enc.NameFromStr("/a")
	abName, _ := enc.NameFromStr("/a/b")
	abcName, _ := enc.NameFromStr("/a/b/c")

	_, err := nt.Lookup(aName)
	assert.Nil(t, err)
	_, err = nt.Lookup(abName)
	assert.Nil(t, err)

	// /a/b/c was never inserted, so the longest existing match is /a/b.
	match := nt.FindLongestPrefixMatch(abcName, nil)
	assert.NotNil(t, match)
	assert.True(t, match.Name().Equal(abName))

	// A match predicate that only accepts /a skips over /a/b.
	match = nt.FindLongestPrefixMatch(abcName, func(e *NameTreeEntry) bool {
		return e.Name().Equal(aName)
	})
	assert.NotNil(t, match)
	assert.True(t, match.Name().Equal(aName))

	// No entry satisfies an always-false predicate.
	assert.Nil(t, nt.FindLongestPrefixMatch(abcName, func(*NameTreeEntry) bool { return false }))
}

// EraseEntryIfEmpty prunes a childless, table-data-free entry and its
// now-empty ancestors, but stops at an ancestor still carrying table data or
// other children.
func TestNameTreeEraseEntryIfEmptyPrunesAncestors(t *testing.T) {
	nt := NewNameTree()
	aName, _ := enc.NameFromStr("/a")
	abName, _ := enc.NameFromStr("/a/b")
	acName, _ := enc.NameFromStr("/a/c")

	abEntry, err := nt.Lookup(abName)
	assert.Nil(t, err)
	acEntry, err := nt.Lookup(acName)
	assert.Nil(t, err)

	nt.EraseEntryIfEmpty(abEntry)
	assert.Nil(t, nt.FindExactMatch(abName))
	// /a survives: it still has /a/c as a child.
	assert.NotNil(t, nt.FindExactMatch(aName))

	nt.EraseEntryIfEmpty(acEntry)
	assert.Nil(t, nt.FindExactMatch(acName))
	// /a is now childless and carries no table data, so it is pruned too.
	assert.Nil(t, nt.FindExactMatch(aName))
	assert.Equal(t, 1, nt.size()) // root only
}

// An entry still holding table data (here, a fibStrategy back-pointer) is
// never pruned, even once it has no children.
func TestNameTreeEraseEntryIfEmptyKeepsEntryWithTableData(t *testing.T) {
	nt := NewNameTree()
	aName, _ := enc.NameFromStr("/a")

	entry, err := nt.Lookup(aName)
	assert.Nil(t, err)
	entry.fibStrategy = &baseFibStrategyEntry{}

	nt.EraseEntryIfEmpty(entry)
	assert.NotNil(t, nt.FindExactMatch(aName))
}

// A name longer than NameTreeMaxDepth is rejected rather than inserted.
func TestNameTreeLookupRejectsNameTooLong(t *testing.T) {
	nt := NewNameTree()
	comps := make([]string, NameTreeMaxDepth+1)
	for i := range comps {
		comps[i] = "x"
	}
	name := enc.Name{}
	for range comps {
		name = append(name, enc.NewGenericComponent("x"))
	}

	_, err := nt.Lookup(name)
	assert.NotNil(t, err)
}
