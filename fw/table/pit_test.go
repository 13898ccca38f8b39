package table

import (
	"testing"

	"github.com/ndnrtr/fwcore/fw/defn"
	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/ndnrtr/fwcore/std/types/optional"
	"github.com/stretchr/testify/assert"
)

// Two Interests for the same name arriving on different faces are deduped
// into a single PIT entry carrying both in-records; a matching Data then
// satisfies it once and it can be erased, leaving the PIT empty.
func TestPitDedupesInterestsAndSatisfiesOnMatchingData(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	pit := NewPit(nt, sched, false)
	name, _ := enc.NameFromStr("/a/b")

	interest := &defn.FwInterest{NameV: name, NonceV: optional.Some(uint32(1))}

	entry1, isNew1, err := pit.FindOrInsert(interest)
	assert.Nil(t, err)
	assert.True(t, isNew1)
	entry1.InsertInRecord(interest, 1, nil)

	entry2, isNew2, err := pit.FindOrInsert(interest)
	assert.Nil(t, err)
	assert.False(t, isNew2)
	assert.Same(t, entry1, entry2)
	entry2.InsertInRecord(interest, 2, nil)

	assert.Equal(t, 1, pit.Size())
	assert.Equal(t, 2, len(entry1.InRecords()))

	data := &defn.FwData{NameV: name, InterestDigestV: optional.Some(entry1.digest)}
	matches := pit.FindMatches(data)
	assert.Equal(t, 1, len(matches))
	assert.Same(t, entry1, matches[0])

	pit.Erase(entry1)
	assert.Equal(t, 0, pit.Size())
}

// An Interest with CanBePrefix set gets its own PIT entry distinct from an
// exact-match Interest for the same name, and FindExactMatch only ever
// returns the non-selector entry.
func TestPitFindOrInsertDistinguishesBySelectors(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	pit := NewPit(nt, sched, false)
	name, _ := enc.NameFromStr("/a/b")

	exact := &defn.FwInterest{NameV: name}
	prefix := &defn.FwInterest{NameV: name, CanBePrefixV: true}

	exactEntry, isNew, err := pit.FindOrInsert(exact)
	assert.Nil(t, err)
	assert.True(t, isNew)

	prefixEntry, isNew, err := pit.FindOrInsert(prefix)
	assert.Nil(t, err)
	assert.True(t, isNew)
	assert.NotSame(t, exactEntry, prefixEntry)

	assert.Same(t, exactEntry, pit.FindExactMatch(name))
}

// FindMatches accepts a CanBePrefix entry's Data by descendant name.
func TestPitFindMatchesRespectsCanBePrefix(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	pit := NewPit(nt, sched, false)
	name, _ := enc.NameFromStr("/a/b")
	childName, _ := enc.NameFromStr("/a/b/c")

	prefix := &defn.FwInterest{NameV: name, CanBePrefixV: true}
	entry, _, err := pit.FindOrInsert(prefix)
	assert.Nil(t, err)

	data := &defn.FwData{NameV: childName, InterestDigestV: optional.Some(entry.digest)}
	matches := pit.FindMatches(data)
	assert.Equal(t, 1, len(matches))
}

// A Data with no InterestDigestTag falls back to the NameTree walk instead
// of matching nothing.
func TestPitFindMatchesFallsBackWithoutDigestTag(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	pit := NewPit(nt, sched, false)
	name, _ := enc.NameFromStr("/a/b")

	interest := &defn.FwInterest{NameV: name}
	entry, _, err := pit.FindOrInsert(interest)
	assert.Nil(t, err)

	data := &defn.FwData{NameV: name}
	matches := pit.FindMatches(data)
	assert.Equal(t, 1, len(matches))
	assert.Same(t, entry, matches[0])
}

// InsertOutRecord records the nonce an Interest was forwarded out a face
// with, which is what the forwarding pipeline's loop check later compares a
// returning retransmission's nonce against.
func TestPitOutRecordTracksForwardedNonce(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	pit := NewPit(nt, sched, false)
	name, _ := enc.NameFromStr("/a/b")

	interest := &defn.FwInterest{NameV: name, NonceV: optional.Some(uint32(42))}
	entry, _, err := pit.FindOrInsert(interest)
	assert.Nil(t, err)

	out := entry.InsertOutRecord(interest, 2)
	assert.Equal(t, uint32(42), out.LatestNonce)

	record, ok := entry.OutRecords()[2]
	assert.True(t, ok)
	assert.Same(t, out, record)
}
