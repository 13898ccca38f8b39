package table

import (
	"crypto/sha256"
	"time"

	"github.com/ndnrtr/fwcore/fw/core"
	"github.com/ndnrtr/fwcore/fw/defn"
	enc "github.com/ndnrtr/fwcore/std/encoding"
)

// PitInRecord is a PIT entry's record of one Interest arriving on one face.
type PitInRecord struct {
	Face            uint64
	LatestNonce     uint32
	LatestTimestamp time.Time
	PitToken        []byte
	ExpirationTime  time.Time
}

// PitOutRecord is a PIT entry's record of one Interest forwarded out one
// face, used to match returning Data and to detect duplicate retransmission.
type PitOutRecord struct {
	Face            uint64
	LatestNonce     uint32
	LatestTimestamp time.Time
	ExpirationTime  time.Time
}

// PitEntry is the interface the forwarding pipeline and strategies use to
// read and update a pending Interest's bookkeeping, independent of the
// concrete basePitEntry implementation.
type PitEntry interface {
	EncName() enc.Name
	CanBePrefix() bool
	MustBeFresh() bool
	ForwardingHintNew() enc.Name
	Digest() [32]byte
	InRecords() map[uint64]*PitInRecord
	OutRecords() map[uint64]*PitOutRecord
	ExpirationTime() time.Time
	Satisfied() bool
	Token() uint32
	SetSatisfied(bool)
	ClearInRecords()
	ClearOutRecords()
	InsertInRecord(interest *defn.FwInterest, faceID uint64, pitToken []byte) (inRecord *PitInRecord, alreadyExists bool, prevNonce uint32)
	InsertOutRecord(interest *defn.FwInterest, faceID uint64) *PitOutRecord
}

// basePitEntry is a single pending-Interest record, keyed in the PIT by its
// name (plus CanBePrefix/MustBeFresh selectors, which is why a name may have
// more than one live basePitEntry at once).
type basePitEntry struct {
	encname           enc.Name
	canBePrefix       bool
	mustBeFresh       bool
	forwardingHintNew enc.Name
	digest            [32]byte
	expirationTime    time.Time
	satisfied         bool
	token             uint32

	inRecords  map[uint64]*PitInRecord
	outRecords map[uint64]*PitOutRecord
}

// computeDigest derives a PIT entry's digest = H(name ‖ selectors): the
// SHA-256 of the Interest's name together with its CanBePrefix/MustBeFresh/
// ForwardingHint selectors, so that two Interests differing only by
// selector (and therefore holding distinct PIT entries) never collide.
func computeDigest(name enc.Name, canBePrefix, mustBeFresh bool, fh enc.Name) [32]byte {
	h := sha256.New()
	h.Write(name.Bytes())
	if canBePrefix {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	if mustBeFresh {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	if fh != nil {
		h.Write(fh.Bytes())
	}
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

func (e *basePitEntry) EncName() enc.Name                          { return e.encname }
func (e *basePitEntry) CanBePrefix() bool                          { return e.canBePrefix }
func (e *basePitEntry) MustBeFresh() bool                          { return e.mustBeFresh }
func (e *basePitEntry) ForwardingHintNew() enc.Name                { return e.forwardingHintNew }
func (e *basePitEntry) Digest() [32]byte                           { return e.digest }
func (e *basePitEntry) InRecords() map[uint64]*PitInRecord         { return e.inRecords }
func (e *basePitEntry) OutRecords() map[uint64]*PitOutRecord       { return e.outRecords }
func (e *basePitEntry) ExpirationTime() time.Time                  { return e.expirationTime }
func (e *basePitEntry) Satisfied() bool                            { return e.satisfied }
func (e *basePitEntry) Token() uint32                              { return e.token }

func (e *basePitEntry) setExpirationTime(t time.Time) { e.expirationTime = t }
func (e *basePitEntry) SetSatisfied(v bool)           { e.satisfied = v }

func (e *basePitEntry) ClearInRecords() {
	e.inRecords = make(map[uint64]*PitInRecord)
}

func (e *basePitEntry) ClearOutRecords() {
	e.outRecords = make(map[uint64]*PitOutRecord)
}

// InsertInRecord records that interest arrived on faceID carrying pitToken,
// creating a new in-record or updating the existing one for that face. It
// returns the (created or updated) record, whether one already existed, and
// its nonce before this call (zero if it was new).
func (e *basePitEntry) InsertInRecord(
	interest *defn.FwInterest, faceID uint64, pitToken []byte,
) (inRecord *PitInRecord, alreadyExists bool, prevNonce uint32) {
	if e.inRecords == nil {
		e.inRecords = make(map[uint64]*PitInRecord)
	}
	nonce, _ := interest.NonceV.Get()
	now := time.Now()

	if existing, ok := e.inRecords[faceID]; ok {
		prevNonce = existing.LatestNonce
		existing.LatestNonce = nonce
		existing.LatestTimestamp = now
		existing.PitToken = pitToken
		if lifetime, ok := interest.InterestLifetimeV.Get(); ok {
			existing.ExpirationTime = now.Add(time.Duration(lifetime) * time.Millisecond)
		}
		return existing, true, prevNonce
	}

	record := &PitInRecord{
		Face:            faceID,
		LatestNonce:     nonce,
		LatestTimestamp: now,
		PitToken:        pitToken,
	}
	if lifetime, ok := interest.InterestLifetimeV.Get(); ok {
		record.ExpirationTime = now.Add(time.Duration(lifetime) * time.Millisecond)
	}
	e.inRecords[faceID] = record
	return record, false, 0
}

// InsertOutRecord records that interest was forwarded out faceID, creating
// or updating the out-record for that face.
func (e *basePitEntry) InsertOutRecord(interest *defn.FwInterest, faceID uint64) *PitOutRecord {
	if e.outRecords == nil {
		e.outRecords = make(map[uint64]*PitOutRecord)
	}
	nonce, _ := interest.NonceV.Get()
	now := time.Now()

	if existing, ok := e.outRecords[faceID]; ok {
		existing.LatestNonce = nonce
		existing.LatestTimestamp = now
		if lifetime, ok := interest.InterestLifetimeV.Get(); ok {
			existing.ExpirationTime = now.Add(time.Duration(lifetime) * time.Millisecond)
		}
		return existing
	}

	record := &PitOutRecord{
		Face:            faceID,
		LatestNonce:     nonce,
		LatestTimestamp: now,
	}
	if lifetime, ok := interest.InterestLifetimeV.Get(); ok {
		record.ExpirationTime = now.Add(time.Duration(lifetime) * time.Millisecond)
	}
	e.outRecords[faceID] = record
	return record
}

var _ PitEntry = (*basePitEntry)(nil)

// Pit is the Pending Interest Table: a NameTree-indexed set of
// basePitEntry, one per distinct (name, CanBePrefix, MustBeFresh,
// ForwardingHint) combination currently awaiting Data.
type Pit struct {
	nt            *NameTree
	sched         *Scheduler
	nItems        int
	nextToken     uint32
	retainExpired bool

	// byDigest is the digest-keyed index mirroring original_source's
	// Pit::Table (std::map<InterestDigest, shared_ptr<Entry>>): it is what
	// lets findAllDataMatches resolve a returning Data's PIT entry in O(1)
	// instead of a NameTree walk.
	byDigest map[[32]byte]*basePitEntry
}

// NewPit constructs an empty Pit backed by nt, scheduling entry expiration
// on sched.
func NewPit(nt *NameTree, sched *Scheduler, retainExpired bool) *Pit {
	return &Pit{nt: nt, sched: sched, retainExpired: retainExpired, byDigest: make(map[[32]byte]*basePitEntry)}
}

// FindOrInsert returns the existing basePitEntry that matches interest
// exactly (name + CanBePrefix + MustBeFresh + ForwardingHint), or creates a
// new one. The second return value is true iff a new entry was created.
func (p *Pit) FindOrInsert(interest *defn.FwInterest) (*basePitEntry, bool, error) {
	nte, err := p.nt.Lookup(interest.NameV)
	if err != nil {
		return nil, false, err
	}
	for _, e := range nte.pitEntries {
		if e.canBePrefix == interest.CanBePrefixV &&
			e.mustBeFresh == interest.MustBeFreshV &&
			e.forwardingHintNew.Equal(interest.ForwardingHintV) {
			return e, false, nil
		}
	}

	p.nextToken++
	lifetime := 4 * time.Second
	if ms, ok := interest.InterestLifetimeV.Get(); ok {
		lifetime = time.Duration(ms) * time.Millisecond
	}
	entry := &basePitEntry{
		encname:           interest.NameV.Clone(),
		canBePrefix:       interest.CanBePrefixV,
		mustBeFresh:       interest.MustBeFreshV,
		forwardingHintNew: interest.ForwardingHintV,
		digest:            computeDigest(interest.NameV, interest.CanBePrefixV, interest.MustBeFreshV, interest.ForwardingHintV),
		expirationTime:    time.Now().Add(lifetime),
		token:             p.nextToken,
		inRecords:         make(map[uint64]*PitInRecord),
		outRecords:        make(map[uint64]*PitOutRecord),
	}
	nte.pitEntries = append(nte.pitEntries, entry)
	p.byDigest[entry.digest] = entry
	p.nItems++
	if p.sched != nil {
		p.sched.Schedule(lifetime, func() { p.Erase(entry) })
	}
	return entry, true, nil
}

// FindExactMatch returns the basePitEntry with exactly name (and no
// selectors set), or nil.
func (p *Pit) FindExactMatch(name enc.Name) *basePitEntry {
	nte := p.nt.FindExactMatch(name)
	if nte == nil {
		return nil
	}
	for _, e := range nte.pitEntries {
		if !e.canBePrefix && !e.mustBeFresh {
			return e
		}
	}
	return nil
}

// FindMatches returns the basePitEntry (or entries) a returning Data
// satisfies. This mirrors original_source/daemon/table/pit.cpp's
// findAllDataMatches: the defining match path is O(1) off the Data's
// InterestDigestTag (data.InterestDigestV), looked up directly in byDigest
// and verified against the Data's name the way Pit::findAllDataMatches
// verifies matchesData() before accepting the hit.
//
// The NFD original returns zero matches (after logging a warning) when the
// tag is absent, since mainline NFD Data always carries it end-to-end over
// NDNLPv2. This implementation still logs that warning, but falls back to
// the slower NameTree-indexed prefix/selector walk instead of giving up
// outright, so a Data arriving without the tag (e.g. from a non-cooperating
// upstream, or a locally-generated Data in a test) can still be matched.
func (p *Pit) FindMatches(data *defn.FwData) []*basePitEntry {
	if digest, ok := data.InterestDigestV.Get(); ok {
		e, ok := p.byDigest[digest]
		if !ok || !pitEntryMatchesData(e, data) {
			return nil
		}
		return []*basePitEntry{e}
	}

	core.Log.Warn(p, "Data has no InterestDigestTag, falling back to NameTree walk", "name", data.NameV)
	return p.findMatchesByNameTree(data)
}

// String identifies the Pit for core.Log's Stringer-based call sites.
func (p *Pit) String() string { return "pit" }

// pitEntryMatchesData reports whether a Data named data.NameV could satisfy
// the Interest recorded by e: an exact match for a non-CanBePrefix entry, or
// any descendant name for a CanBePrefix one.
func pitEntryMatchesData(e *basePitEntry, data *defn.FwData) bool {
	if e.canBePrefix {
		return e.encname.IsPrefix(data.NameV)
	}
	return e.encname.Equal(data.NameV)
}

// findMatchesByNameTree is the pre-digest matching path, kept as a fallback
// for Data that arrives without an InterestDigestTag.
func (p *Pit) findMatchesByNameTree(data *defn.FwData) []*basePitEntry {
	var ret []*basePitEntry

	if nte := p.nt.FindExactMatch(data.NameV); nte != nil {
		ret = append(ret, nte.pitEntries...)
	}

	hashes := data.NameV.PrefixHash()
	for depth := len(data.NameV) - 1; depth >= 0; depth-- {
		nte, ok := p.nt.table[hashes[depth]]
		if !ok {
			continue
		}
		for _, e := range nte.pitEntries {
			if e.canBePrefix {
				ret = append(ret, e)
			}
		}
	}
	return ret
}

// Erase removes entry from the PIT, pruning its NameTreeEntry if it is left
// empty.
func (p *Pit) Erase(entry *basePitEntry) {
	nte := p.nt.FindExactMatch(entry.encname)
	if nte == nil {
		return
	}
	for i, e := range nte.pitEntries {
		if e == entry {
			nte.pitEntries = append(nte.pitEntries[:i], nte.pitEntries[i+1:]...)
			delete(p.byDigest, e.digest)
			p.nItems--
			break
		}
	}
	p.nt.EraseEntryIfEmpty(nte)
}

// Size returns the number of live PIT entries.
func (p *Pit) Size() int { return p.nItems }
