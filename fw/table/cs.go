package table

import (
	"time"

	"github.com/ndnrtr/fwcore/fw/defn"
	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/ndnrtr/fwcore/std/types/optional"
)

// csTypeData/csTypeMetaInfo/csTypeFreshness mirror the NDN packet
// format's TLV type numbers. Duplicated locally (rather than importing
// std/ndn/spec_2022) because the Content Store only ever needs a Data
// packet's Name and FreshnessPeriod, never its full decoded content or
// signature: depending on the full codec here would pull an unrelated
// concern into the table package for three integers' worth of parsing.
const (
	csTypeData       enc.TLNum = 6
	csTypeMetaInfo   enc.TLNum = 0x14
	csTypeFreshness  enc.TLNum = 0x19
)

// decodeCsWireName extracts the Name (and FreshnessPeriod, if present) from
// an encoded Data packet's wire bytes.
func decodeCsWireName(raw []byte) (*defn.FwData, error) {
	typ, p1 := enc.ParseTLNum(raw)
	if typ != csTypeData {
		return nil, errCsNotData
	}
	l, p2 := enc.ParseTLNum(raw[p1:])
	start := p1 + p2
	body := raw[start : start+int(l)]

	d := &defn.FwData{}
	pos := 0
	for pos < len(body) {
		t, tp := enc.ParseTLNum(body[pos:])
		vl, lp := enc.ParseTLNum(body[pos+tp:])
		vstart := pos + tp + lp
		vend := vstart + int(vl)

		switch t {
		case enc.TypeName:
			name, err := enc.NameFromBytes(body[pos:vend])
			if err != nil {
				return nil, err
			}
			d.NameV = name
		case csTypeMetaInfo:
			decodeCsFreshness(d, body[vstart:vend])
		}
		pos = vend
	}
	return d, nil
}

func decodeCsFreshness(d *defn.FwData, meta []byte) {
	pos := 0
	for pos < len(meta) {
		t, tp := enc.ParseTLNum(meta[pos:])
		vl, lp := enc.ParseTLNum(meta[pos+tp:])
		vstart := pos + tp + lp
		vend := vstart + int(vl)
		if t == csTypeFreshness {
			n, _, _ := enc.ParseNat(meta[vstart:vend])
			d.FreshV = optional.Some(uint64(n))
		}
		pos = vend
	}
}

type errCsNotDataT struct{}

func (errCsNotDataT) Error() string { return "wire is not a Data packet" }

var errCsNotData = errCsNotDataT{}

// baseCsEntry is a single cached Data packet.
type baseCsEntry struct {
	index     uint64
	staleTime time.Time
	wire      enc.Wire
}

// Index returns the entry's cache-internal identifier.
func (e *baseCsEntry) Index() uint64 { return e.index }

// StaleTime returns when the cached Data becomes stale and may no longer
// satisfy a MustBeFresh Interest.
func (e *baseCsEntry) StaleTime() time.Time { return e.staleTime }

// Copy decodes the entry's cached wire back into a Data packet, returning
// the decoded packet and the original wire.
func (e *baseCsEntry) Copy() (*defn.FwData, enc.Wire, error) {
	d, err := decodeCsWireName(e.wire.Join())
	if err != nil {
		return nil, nil, err
	}
	d.WireV = e.wire
	return d, e.wire, nil
}

// Cs is the Content Store: a NameTree-indexed, capacity-bounded cache of
// recently seen Data, consulted before forwarding a new Interest and
// populated from every Data that passes through.
type Cs struct {
	nt       *NameTree
	capacity int
	admit    bool
	serve    bool
	nItems   int
	nextIdx  uint64
	lru      []*csLruNode
}

type csLruNode struct {
	nte   *NameTreeEntry
	entry *baseCsEntry
}

// NewCs constructs an empty Content Store backed by nt.
func NewCs(nt *NameTree, capacity int, admit, serve bool) *Cs {
	return &Cs{nt: nt, capacity: capacity, admit: admit, serve: serve}
}

// Insert admits a Data packet into the store, evicting the oldest entry if
// the store is at capacity. It is a no-op if admission is disabled.
func (c *Cs) Insert(name enc.Name, wire enc.Wire, freshness time.Duration) error {
	if !c.admit {
		return nil
	}
	nte, err := c.nt.Lookup(name)
	if err != nil {
		return err
	}

	c.nextIdx++
	entry := &baseCsEntry{
		index:     c.nextIdx,
		staleTime: time.Now().Add(freshness),
		wire:      wire,
	}
	nte.csEntries = append(nte.csEntries, entry)
	c.lru = append(c.lru, &csLruNode{nte: nte, entry: entry})
	c.nItems++

	if c.capacity > 0 && c.nItems > c.capacity {
		c.evictOldest()
	}
	return nil
}

func (c *Cs) evictOldest() {
	if len(c.lru) == 0 {
		return
	}
	oldest := c.lru[0]
	c.lru = c.lru[1:]
	for i, e := range oldest.nte.csEntries {
		if e == oldest.entry {
			oldest.nte.csEntries = append(oldest.nte.csEntries[:i], oldest.nte.csEntries[i+1:]...)
			c.nItems--
			break
		}
	}
	c.nt.EraseEntryIfEmpty(oldest.nte)
}

// FindExactMatch returns the freshest cached entry with exactly name, or nil
// if none exists. mustBeFresh restricts the result to entries not yet stale.
func (c *Cs) FindExactMatch(name enc.Name, mustBeFresh bool) *baseCsEntry {
	if !c.serve {
		return nil
	}
	nte := c.nt.FindExactMatch(name)
	if nte == nil || len(nte.csEntries) == 0 {
		return nil
	}
	return pickFreshest(nte.csEntries, mustBeFresh)
}

// FindPrefixMatch returns a cached entry in the subtree rooted at name, as
// required for CanBePrefix Interests. It walks the NameTree breadth-first
// from name's own entry and returns the freshest usable entry of the first
// node that has one; deeper entries are not compared against it, and the
// order among siblings is not defined.
func (c *Cs) FindPrefixMatch(name enc.Name, mustBeFresh bool) *baseCsEntry {
	if !c.serve {
		return nil
	}
	root := c.nt.FindExactMatch(name)
	if root == nil {
		return nil
	}
	queue := []*NameTreeEntry{root}
	for len(queue) > 0 {
		nte := queue[0]
		queue = queue[1:]
		if len(nte.csEntries) > 0 {
			if e := pickFreshest(nte.csEntries, mustBeFresh); e != nil {
				return e
			}
		}
		for _, child := range nte.children {
			queue = append(queue, child)
		}
	}
	return nil
}

func pickFreshest(entries []*baseCsEntry, mustBeFresh bool) *baseCsEntry {
	now := time.Now()
	var best *baseCsEntry
	for _, e := range entries {
		if mustBeFresh && !e.staleTime.After(now) {
			continue
		}
		if best == nil || e.index > best.index {
			best = e
		}
	}
	return best
}

// Size returns the number of cached Data packets.
func (c *Cs) Size() int { return c.nItems }
