//go:build !wasm

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package impl

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// SyscallReuseAddr sets SO_REUSEADDR on the raw connection, used as a
// net.Dialer/net.ListenConfig Control hook so bound local addresses can be
// reused across face restarts.
func SyscallReuseAddr(network string, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// SyscallGetSocketSendQueueSize returns the number of bytes currently queued
// for transmission on the socket's send buffer via the TIOCOUTQ ioctl.
func SyscallGetSocketSendQueueSize(c syscall.RawConn) uint64 {
	var size int
	err := c.Control(func(fd uintptr) {
		v, ioctlErr := unix.IoctlGetInt(int(fd), unix.TIOCOUTQ)
		if ioctlErr == nil {
			size = v
		}
	})
	if err != nil {
		return 0
	}
	return uint64(size)
}
