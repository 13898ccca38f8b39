/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

// Config is the top-level YAML-decoded configuration for the forwarder,
// read via toolutils.ReadYaml from the file named on the command line.
type Config struct {
	Core   CoreConfig   `json:"core" yaml:"core"`
	Faces  FacesConfig  `json:"faces" yaml:"faces"`
	Tables TablesConfig `json:"tables" yaml:"tables"`
	Fw     FwConfig     `json:"fw" yaml:"fw"`
}

// CoreConfig holds daemon-wide settings unrelated to any specific table or face.
type CoreConfig struct {
	// BaseDir is the directory the config file was read from; relative
	// paths elsewhere in the config are resolved against it.
	BaseDir string `json:"-" yaml:"-"`
	// Log is the minimum level of messages that are printed.
	Log string `json:"log" yaml:"log"`
	// CpuProfile is the file to write a CPU profile to, if any.
	CpuProfile string `json:"-" yaml:"-"`
	// MemProfile is the file to write a heap profile to, if any.
	MemProfile string `json:"-" yaml:"-"`
	// BlockProfile is the file to write a blocking-profile to, if any.
	BlockProfile string `json:"-" yaml:"-"`
}

// FacesConfig groups face-transport settings by scheme.
type FacesConfig struct {
	Udp  UdpConfig  `json:"udp" yaml:"udp"`
	Unix UnixConfig `json:"unix" yaml:"unix"`
	Ws   WsConfig   `json:"websocket" yaml:"websocket"`
}

// UdpConfig configures UDP unicast and multicast faces.
type UdpConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// DefaultMtu is the MTU assumed for a new UDP face.
	DefaultMtu uint64 `json:"default_mtu" yaml:"default_mtu"`
	// PortUnicast is the local port used when dialing an on-demand face.
	PortUnicast int `json:"port_unicast" yaml:"port_unicast"`
	// PortMulticast is the port used for multicast faces.
	PortMulticast int `json:"port_multicast" yaml:"port_multicast"`
	// MulticastAddress4/6 are the multicast group addresses joined on
	// startup for IPv4/IPv6 respectively.
	MulticastAddress4 string `json:"multicast_address_v4" yaml:"multicast_address_v4"`
	MulticastAddress6 string `json:"multicast_address_v6" yaml:"multicast_address_v6"`
	// Lifetime is how long an on-demand UDP face survives without traffic.
	Lifetime int `json:"lifetime" yaml:"lifetime"`
	// KeepAliveInterval is accepted for config compatibility but unused:
	// UDP is connectionless and NDNLPv2 has no standard keepalive frame.
	KeepAliveInterval int `json:"keep_alive_interval" yaml:"keep_alive_interval"`
}

// UnixConfig configures the Unix stream socket listener used by local apps.
type UnixConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	SockPath string `json:"socket_path" yaml:"socket_path"`
}

// WsConfig configures the WebSocket listener.
type WsConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Bind       string `json:"bind" yaml:"bind"`
	Port       uint16 `json:"port" yaml:"port"`
	TLSEnabled bool   `json:"tls_enabled" yaml:"tls_enabled"`
	TLSCert    string `json:"tls_cert" yaml:"tls_cert"`
	TLSKey     string `json:"tls_key" yaml:"tls_key"`
}

// TablesConfig groups per-table capacity/behavior settings.
type TablesConfig struct {
	Cs  CsConfig  `json:"cs" yaml:"cs"`
	Pit PitConfig `json:"pit" yaml:"pit"`
	Fib FibConfig `json:"fib" yaml:"fib"`
	Rib RibConfig `json:"rib" yaml:"rib"`
}

// CsConfig configures the Content Store.
type CsConfig struct {
	// Capacity is the maximum number of Data packets cached per thread.
	Capacity int `json:"capacity" yaml:"capacity"`
	// Admit controls whether incoming Data is cached at all.
	Admit bool `json:"admit" yaml:"admit"`
	// Serve controls whether cached Data may satisfy new Interests.
	Serve bool `json:"serve" yaml:"serve"`
}

// PitConfig configures the Pending Interest Table.
type PitConfig struct {
	// RetainExpired keeps an exhausted PIT entry around until its
	// expiration time rather than erasing it the moment its last
	// in/out record is removed; this lets a straggling Data still land
	// on a just-satisfied entry instead of going unmatched.
	RetainExpired bool `json:"retain_expired" yaml:"retain_expired"`
}

// FibConfig configures the FIB/StrategyChoice table.
type FibConfig struct {
	DefaultStrategy string `json:"default_strategy" yaml:"default_strategy"`
}

// RibConfig configures the RIB to FIB update engine.
type RibConfig struct {
	// ReadvertiseNacks is accepted for config compatibility but unused:
	// nothing in the forwarder reads it.
	ReadvertiseNacks bool `json:"readvertise_nacks" yaml:"readvertise_nacks"`
}

// FwConfig configures the forwarding pipeline.
type FwConfig struct {
	Threads int `json:"threads" yaml:"threads"`
}

// C is the process-wide active configuration, set once at startup.
var C *Config

// DefaultConfig returns a Config populated with the forwarder's built-in
// defaults, to be further overridden by the YAML config file.
func DefaultConfig() *Config {
	cfg := &Config{
		Core: CoreConfig{
			Log: "INFO",
		},
		Faces: FacesConfig{
			Udp: UdpConfig{
				Enabled:           true,
				DefaultMtu:        1400,
				PortUnicast:       6363,
				PortMulticast:     56363,
				MulticastAddress4: "224.0.23.170",
				MulticastAddress6: "ff02::1234",
				Lifetime:          600,
				KeepAliveInterval: 30,
			},
			Unix: UnixConfig{
				Enabled:  true,
				SockPath: "/run/ndnd.sock",
			},
			Ws: WsConfig{
				Enabled: false,
				Bind:    "",
				Port:    9696,
			},
		},
		Tables: TablesConfig{
			Cs: CsConfig{
				Capacity: 1024,
				Admit:    true,
				Serve:    true,
			},
			Pit: PitConfig{
				RetainExpired: true,
			},
			Fib: FibConfig{
				DefaultStrategy: "/localhost/nfd/strategy/multicast",
			},
			Rib: RibConfig{
				ReadvertiseNacks: false,
			},
		},
		Fw: FwConfig{
			Threads: 1,
		},
	}
	C = cfg
	return cfg
}

func init() {
	// Ensure C is never nil even if a package is imported without going
	// through fw/cmd (e.g. from a test binary).
	if C == nil {
		DefaultConfig()
	}
}
