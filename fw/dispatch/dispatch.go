// Package dispatch routes decoded network-layer packets to the forwarding
// thread responsible for them, and exposes each thread's counters to
// management without the dispatch package needing to know anything about
// strategies or the forwarding pipeline itself.
package dispatch

import (
	"sync"

	defn "github.com/ndnrtr/fwcore/fw/defn"
)

// ManagementHandler, if set, receives every Interest under
// defn.LOCAL_PREFIX instead of it being hashed to a forwarding thread. It is
// wired up at startup to the management Thread's HandleIncomingInterest,
// kept as a package-level hook (rather than a direct import) because fw/mgmt
// itself depends on fw/fw, which depends on this package.
var ManagementHandler func(pkt *defn.Pkt, inFace uint64)

// Counters is the set of per-thread statistics management reports on.
type Counters struct {
	NPitEntries           uint64
	NCsEntries            uint64
	NInInterests          uint64
	NInData               uint64
	NOutInterests         uint64
	NOutData              uint64
	NSatisfiedInterests   uint64
	NUnsatisfiedInterests uint64
	NCsHits               uint64
	NCsMisses             uint64
}

// QueuedPkt is one packet queued for a forwarding thread to process, with
// the face it arrived on (zero for packets synthesized locally).
type QueuedPkt struct {
	Pkt    *defn.Pkt
	InFace uint64
}

// FWThread is the dispatch-visible face of a forwarding thread: a queue of
// incoming work and a snapshot of its counters. fw.Thread embeds this and
// updates the counters as it processes packets.
type FWThread struct {
	ID    int
	Queue chan *QueuedPkt

	mu       sync.Mutex
	counters Counters
}

// NewFWThread constructs an FWThread with the given queue depth.
func NewFWThread(id int, queueDepth int) *FWThread {
	return &FWThread{ID: id, Queue: make(chan *QueuedPkt, queueDepth)}
}

// Counters returns a snapshot of the thread's current counters.
func (t *FWThread) Counters() Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters
}

// UpdateCounters applies fn to the thread's counters under its lock. Used by
// fw.Thread, the only writer, to keep counter updates atomic with respect to
// concurrent Counters() reads from management.
func (t *FWThread) UpdateCounters(fn func(c *Counters)) {
	t.mu.Lock()
	fn(&t.counters)
	t.mu.Unlock()
}

var (
	mu      sync.RWMutex
	threads []*FWThread
)

// AddThread registers t as forwarding thread t.ID. Threads must be added in
// ID order starting at 0, matching how fw.CfgNumThreads threads are created
// at startup.
func AddThread(t *FWThread) {
	mu.Lock()
	defer mu.Unlock()
	for len(threads) <= t.ID {
		threads = append(threads, nil)
	}
	threads[t.ID] = t
}

// GetFWThread returns the forwarding thread with the given ID, or nil if
// none is registered there.
func GetFWThread(threadID int) *FWThread {
	mu.RLock()
	defer mu.RUnlock()
	if threadID < 0 || threadID >= len(threads) {
		return nil
	}
	return threads[threadID]
}

// NumThreads returns the number of forwarding threads currently registered.
func NumThreads() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(threads)
}

// Dispatch hands pkt to the forwarding thread responsible for its name,
// selected by hashing the name so that all Interests/Data for a given name
// (and therefore its PIT entries) are always handled by the same thread.
func Dispatch(pkt *defn.Pkt) {
	inFace, _ := pkt.IncomingFaceID.Get()

	if pkt.L3.Interest != nil && ManagementHandler != nil && defn.LOCAL_PREFIX.IsPrefix(pkt.Name) {
		ManagementHandler(pkt, inFace)
		return
	}

	mu.RLock()
	n := len(threads)
	mu.RUnlock()
	if n == 0 {
		return
	}

	threadID := int(pkt.Name.Hash() % uint64(n))
	t := GetFWThread(threadID)
	if t == nil {
		return
	}

	select {
	case t.Queue <- &QueuedPkt{Pkt: pkt, InFace: inFace}:
	default:
		// Queue full: drop rather than block the receiving face's I/O loop.
	}
}
