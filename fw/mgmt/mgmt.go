/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package mgmt implements the /localhost/nfd management protocol: each
// namespace (cs, fib, rib, strategy-choice, status) is a Module that decodes
// ControlParameters off an incoming command Interest and replies with a
// signed ControlResponse or status dataset Data.
package mgmt

import (
	"fmt"

	"github.com/ndnrtr/fwcore/fw/core"
	"github.com/ndnrtr/fwcore/fw/defn"
	"github.com/ndnrtr/fwcore/fw/dispatch"
	"github.com/ndnrtr/fwcore/fw/face"
	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/ndnrtr/fwcore/std/ndn"
	mgmt "github.com/ndnrtr/fwcore/std/ndn/mgmt_2022"
	spec "github.com/ndnrtr/fwcore/std/ndn/spec_2022"
	"github.com/ndnrtr/fwcore/std/types/optional"
)

// LOCAL_PREFIX is the name prefix every management Interest must fall under.
var LOCAL_PREFIX = defn.LOCAL_PREFIX

// Module is one management namespace under LOCAL_PREFIX, e.g. "fib" for
// /localhost/nfd/fib/*. It dispatches by the verb component following its
// own name (add-nexthop, remove-nexthop, list, ...).
type Module interface {
	fmt.Stringer

	registerManager(manager *Thread)
	getManager() *Thread
	handleIncomingInterest(interest *Interest)
}

// Interest is a decoded management command or status-dataset Interest,
// together with the face it arrived on.
type Interest struct {
	decoded ndn.Interest
	inFace  optional.Option[uint64]
}

// Name returns the Interest's name.
func (i *Interest) Name() enc.Name { return i.decoded.Name() }

// AppParam returns the Interest's ApplicationParameters, if any - used by
// commands (like rib/announce) that carry a nested Data rather than a plain
// ControlParameters component.
func (i *Interest) AppParam() enc.Wire { return i.decoded.AppParam() }

// Thread is the management-plane dispatcher: it owns every registered
// Module, routes decoded Interests to them by name, and builds/signs every
// ControlResponse and status dataset Data sent back out.
type Thread struct {
	modules map[string]Module
}

// NewThread constructs a management Thread with every Module registered
// under its LOCAL_PREFIX namespace.
func NewThread() *Thread {
	t := &Thread{modules: make(map[string]Module)}
	t.register("cs", &ContentStoreModule{})
	t.register("fib", &FIBModule{})
	t.register("rib", &RIBModule{})
	t.register("strategy-choice", &StrategyChoiceModule{})
	t.register("status", &ForwarderStatusModule{})

	dispatch.ManagementHandler = func(pkt *defn.Pkt, inFace uint64) {
		t.HandleIncomingInterest(pkt.Raw.Join(), inFace)
	}
	return t
}

func (t *Thread) register(name string, m Module) {
	m.registerManager(t)
	t.modules[name] = m
}

// String identifies the thread for core.Log's Stringer-based call sites.
func (t *Thread) String() string { return "mgmt-thread" }

// HandleIncomingInterest decodes raw as an Interest and routes it to the
// Module named by the name component immediately following LOCAL_PREFIX,
// e.g. /localhost/nfd/fib/list routes to the "fib" module. inFace is the
// face the Interest arrived on.
func (t *Thread) HandleIncomingInterest(raw []byte, inFace uint64) {
	decoded, err := spec.Spec{}.ReadInterest(raw)
	if err != nil {
		core.Log.Warn(t, "Could not decode management Interest", "err", err)
		return
	}

	name := decoded.Name()
	if !LOCAL_PREFIX.IsPrefix(name) || len(name) <= len(LOCAL_PREFIX) {
		core.Log.Warn(t, "Received management Interest outside LOCAL_PREFIX", "name", name)
		return
	}

	interest := &Interest{decoded: decoded, inFace: optional.Some(inFace)}

	verb := name[len(LOCAL_PREFIX)].String()
	module, ok := t.modules[verb]
	if !ok {
		core.Log.Warn(t, "Received Interest for non-existent module", "module", verb)
		t.sendCtrlResp(interest, 501, "Unknown module", nil)
		return
	}
	module.handleIncomingInterest(interest)
}

// sendCtrlResp builds a ControlResponse (code, text, and the params actually
// applied) and sends it as a Data satisfying interest.
func (t *Thread) sendCtrlResp(interest *Interest, code uint64, text string, params *mgmt.ControlArgs) {
	resp := &mgmt.ControlResponse{Code: code, Text: text, Parameters: params}
	t.sendData(interest, interest.Name(), resp.Encode())
}

// sendStatusDataset sends content (an already-encoded status dataset) as a
// Data named name, satisfying interest.
func (t *Thread) sendStatusDataset(interest *Interest, name enc.Name, content enc.Wire) {
	t.sendData(interest, name, content)
}

// sendData builds a Data under name carrying content and sends it out the
// face interest arrived on. Management responses are digest-signed (no
// signer) since this router has no keychain of its own; NFD clients treat a
// digest-signed ControlResponse from /localhost as trusted by construction.
func (t *Thread) sendData(interest *Interest, name enc.Name, content enc.Wire) {
	data, err := spec.Spec{}.MakeData(
		name,
		&ndn.DataConfig{ContentType: optional.Some(ndn.ContentTypeBlob)},
		content,
		nil,
	)
	if err != nil {
		core.Log.Warn(t, "Could not build management response", "name", name, "err", err)
		return
	}

	faceID, ok := interest.inFace.Get()
	if !ok {
		return
	}
	f := face.FaceTable.Get(faceID)
	if f == nil {
		return
	}
	f.SendPacket(&defn.Pkt{Name: data.NameV, Raw: data.Wire})
}
