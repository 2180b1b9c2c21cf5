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

// Package capture narrows a packet-capture side-car's filter to a single
// connection: force-binding an unbound socket to a free ephemeral port
// before the capture starts, and driving the side-car's start/stop
// lifecycle.
package capture

import (
	"golang.org/x/sys/unix"
)

// EphemeralLow and EphemeralHigh bound the force-bind port scan.
const (
	EphemeralLow  = 32768
	EphemeralHigh = 60999
)

// ForceBind binds fd to the wildcard address of the given family on the
// first free port in [EphemeralLow, EphemeralHigh], stopping at the
// first success. On EADDRINUSE it tries the next candidate; any other
// error aborts the scan immediately (the caller falls back to a
// destination-only filter rather than retrying).
func ForceBind(fd int, family int) (port int, err error) {
	for p := EphemeralLow; p <= EphemeralHigh; p++ {
		var sa unix.Sockaddr

		switch family {
		case unix.AF_INET:
			sa = &unix.SockaddrInet4{Port: p}
		case unix.AF_INET6:
			sa = &unix.SockaddrInet6{Port: p}
		default:
			return 0, ErrorForceBindAborted.Error(nil)
		}

		bindErr := unix.Bind(fd, sa)
		if bindErr == nil {
			return p, nil
		}
		if bindErr == unix.EADDRINUSE {
			continue
		}
		return 0, ErrorForceBindAborted.Error(bindErr)
	}

	return 0, ErrorForceBindExhausted.Error(nil)
}
