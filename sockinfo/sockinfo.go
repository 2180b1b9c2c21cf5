/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package sockinfo captures and reconstructs the descriptive fields of a
// socket file descriptor: domain, type, protocol, and the cloexec/nonblock
// flags folded into SOCK_* type constants on Linux.
package sockinfo

import (
	"golang.org/x/sys/unix"
)

const typeMask = 0xf

// Info mirrors the sock_info fields every socket/forked_socket/ghost_socket
// event carries: domain, a masked type, protocol, and the two flag bits
// SOCK_CLOEXEC/SOCK_NONBLOCK fold into the raw type argument.
type Info struct {
	Domain   int
	Type     int
	Protocol int
	CloExec  bool
	NonBlock bool
	Filled   bool
}

// FromArgs builds an Info from the arguments of a recorded socket() call,
// masking the type field and extracting the flag bits the platform packs
// into its high bits.
func FromArgs(domain, rawType, protocol int) Info {
	return Info{
		Domain:   domain,
		Type:     rawType & typeMask,
		Protocol: protocol,
		CloExec:  rawType&unix.SOCK_CLOEXEC != 0,
		NonBlock: rawType&unix.SOCK_NONBLOCK != 0,
		Filled:   true,
	}
}

// Query reconstructs an Info by asking the kernel about an already-open fd,
// used for ghost entries and internal duplication-family lookups where no
// socket() call was observed to supply the arguments directly.
func Query(fd int) (Info, error) {
	var info Info

	domain, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_DOMAIN)
	if err != nil {
		return info, err
	}
	rawType, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		return info, err
	}
	protocol, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PROTOCOL)
	if err != nil {
		return info, err
	}

	flags, ferr := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	cloexec := false
	nonblock := false
	if ferr == nil {
		nonblock = flags&unix.O_NONBLOCK != 0
	}
	if fdflags, ferr2 := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); ferr2 == nil {
		cloexec = fdflags&unix.FD_CLOEXEC != 0
	}

	info = Info{
		Domain:   domain,
		Type:     rawType & typeMask,
		Protocol: protocol,
		CloExec:  cloexec,
		NonBlock: nonblock,
		Filled:   true,
	}

	return info, nil
}

// IsINET reports whether info describes an AF_INET/AF_INET6 socket. An
// AF_PACKET socket also counts as INET, but only when captureInProgress is
// false: libpcap opens an AF_PACKET socket to sniff, so once the capture
// side-car itself is running, classifying AF_PACKET as INET would trace
// (and deadlock on) the side-car's own socket.
func IsINET(info Info, captureInProgress bool) bool {
	if info.Domain == unix.AF_INET || info.Domain == unix.AF_INET6 {
		return true
	}
	return info.Domain == unix.AF_PACKET && !captureInProgress
}

// IsTCP reports whether info describes a TCP stream socket, the
// precondition for TCP-info sampling.
func IsTCP(info Info) bool {
	return (info.Domain == unix.AF_INET || info.Domain == unix.AF_INET6) &&
		info.Type == unix.SOCK_STREAM
}
