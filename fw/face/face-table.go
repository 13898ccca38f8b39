/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ndnrtr/fwcore/fw/core"
	defn "github.com/ndnrtr/fwcore/fw/defn"
	"github.com/ndnrtr/fwcore/fw/table"
)

// Face is one registered network face: a transport plus the link service
// framing/deframing NDNLPv2 over it.
type Face struct {
	transport   transport
	linkService LinkService
}

// FaceID returns the face's unique identifier.
func (f *Face) FaceID() uint64 { return f.transport.FaceID() }

// String identifies the face for core.Log's Stringer-based call sites.
func (f *Face) String() string {
	return fmt.Sprintf("face (id=%d remote=%s)", f.FaceID(), f.transport.RemoteURI())
}

// SendPacket sends pkt out this face, through its link service.
func (f *Face) SendPacket(pkt *defn.Pkt) { f.linkService.SendPacket(pkt) }

// IsRunning reports whether the face's transport is still up.
func (f *Face) IsRunning() bool { return f.transport.IsRunning() }

// Close tears down the face's transport.
func (f *Face) Close() { f.transport.Close() }

// faceTable is the process-wide table of registered faces, indexed by the
// face ID assigned when a face is added.
type faceTable struct {
	mu     sync.RWMutex
	faces  map[uint64]*Face
	nextID atomic.Uint64
}

// FaceTable is the process-wide FaceTable.
var FaceTable = newFaceTable()

func newFaceTable() *faceTable {
	return &faceTable{faces: make(map[uint64]*Face)}
}

// Add registers tr (with its link service ls) under a freshly assigned face
// ID and returns the resulting Face.
func (t *faceTable) Add(tr transport, ls LinkService) *Face {
	id := t.nextID.Add(1)
	tr.setFaceID(id)

	f := &Face{transport: tr, linkService: ls}
	t.mu.Lock()
	t.faces[id] = f
	t.mu.Unlock()

	core.Log.Info(t, "Registered face", "faceid", id, "remote", tr.RemoteURI())
	return f
}

// Get returns the face with faceID, or nil if none is registered.
func (t *faceTable) Get(faceID uint64) *Face {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.faces[faceID]
}

// GetAll returns every currently registered face.
func (t *faceTable) GetAll() []*Face {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ret := make([]*Face, 0, len(t.faces))
	for _, f := range t.faces {
		ret = append(ret, f)
	}
	return ret
}

// Remove unregisters faceID and cascades its removal into the FIB and RIB,
// so no table keeps routing to a face that no longer exists: this is the
// FaceTable's half of the erase-face cascade (table.FibStrategyTable.RemoveFace
// drops the face's next hops tree-wide, table.Rib.EraseFace removes every
// route it held and recomputes the FIB for each affected name).
func (t *faceTable) Remove(faceID uint64) {
	t.mu.Lock()
	_, ok := t.faces[faceID]
	delete(t.faces, faceID)
	t.mu.Unlock()
	if !ok {
		return
	}

	core.Log.Info(t, "Unregistered face", "faceid", faceID)
	table.FibStrategyTable.RemoveFace(faceID)
	table.Rib.EraseFace(faceID)
}

// String identifies the FaceTable for core.Log's Stringer-based call sites.
func (t *faceTable) String() string { return "face-table" }
