/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"time"

	"github.com/ndnrtr/fwcore/fw/core"
)

// CfgUDPLifetime returns the on-demand expiration period for unicast UDP
// faces: how long an idle face survives before being torn down.
func CfgUDPLifetime() time.Duration {
	return time.Duration(core.C.Faces.Udp.Lifetime) * time.Second
}

// CfgUDPUnicastPort returns the default local port used for outgoing
// unicast UDP faces when no local URI is specified.
func CfgUDPUnicastPort() int {
	return int(core.C.Faces.Udp.PortUnicast)
}

// CfgUDP4MulticastAddress returns the IPv4 multicast group address used for
// UDP multicast faces.
func CfgUDP4MulticastAddress() string {
	return core.C.Faces.Udp.MulticastAddress4
}

// CfgUDP6MulticastAddress returns the IPv6 multicast group address used for
// UDP multicast faces.
func CfgUDP6MulticastAddress() string {
	return core.C.Faces.Udp.MulticastAddress6
}

// CfgUDPMulticastPort returns the UDP port used for multicast faces.
func CfgUDPMulticastPort() int {
	return int(core.C.Faces.Udp.PortMulticast)
}
