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

package main

import (
	"golang.org/x/sys/unix"

	"github.com/shekkbuilder/tcpsnitch/logger"
	"github.com/shekkbuilder/tcpsnitch/record"
	"github.com/shekkbuilder/tcpsnitch/tracer"
)

// demonstrate drives one real TCP loopback connection through a handful
// of traced syscalls, exercising socket/bind/connect/write/close without
// needing a ptrace or LD_PRELOAD interception layer attached. Errors are
// logged, never fatal: the point is to populate a dump, not to succeed
// at networking in every sandbox this binary runs in.
func demonstrate(tr *tracer.Tracer, log logger.Logger) {
	r := record.New(tr)

	listenFD, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		log.Warning("demonstration socket() failed", err)
		return
	}
	r.Socket(listenFD, unix.AF_INET, unix.SOCK_STREAM, 0, int64(listenFD), 0)
	defer closeTraced(r, listenFD)

	addr := &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}
	bindErrno := errnoOf(unix.Bind(listenFD, addr))
	r.Bind(listenFD, addr, retvalOf(bindErrno), bindErrno)
	if bindErrno != 0 {
		log.Warning("demonstration bind() failed", nil)
		return
	}

	listenErrno := errnoOf(unix.Listen(listenFD, 1))
	r.Listen(listenFD, 1, retvalOf(listenErrno), listenErrno)

	bound, err := unix.Getsockname(listenFD)
	if err != nil {
		log.Warning("demonstration getsockname() failed", err)
		return
	}
	boundAddr, ok := bound.(*unix.SockaddrInet4)
	if !ok {
		return
	}

	clientFD, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		log.Warning("demonstration client socket() failed", err)
		return
	}
	r.Socket(clientFD, unix.AF_INET, unix.SOCK_STREAM, 0, int64(clientFD), 0)
	defer closeTraced(r, clientFD)

	peer := &unix.SockaddrInet4{Addr: boundAddr.Addr, Port: boundAddr.Port}
	connectErrno := errnoOf(unix.Connect(clientFD, peer))
	r.Connect(clientFD, peer, retvalOf(connectErrno), connectErrno)
	if connectErrno != 0 {
		log.Warning("demonstration connect() failed", nil)
		return
	}

	payload := []byte("tcpsnitchd\n")
	n, werr := unix.Write(clientFD, payload)
	r.Write(clientFD, len(payload), int64(n), errnoOf(werr))

	acceptedFD, _, aerr := unix.Accept(listenFD)
	if aerr != nil {
		log.Warning("demonstration accept() failed", aerr)
		return
	}
	r.Accept(listenFD, acceptedFD, nil, int64(acceptedFD), 0)
	defer closeTraced(r, acceptedFD)

	buf := make([]byte, len(payload))
	rn, rerr := unix.Read(acceptedFD, buf)
	r.Read(acceptedFD, len(buf), int64(rn), errnoOf(rerr))
}

func closeTraced(r *record.Recorder, fd int) {
	errno := errnoOf(unix.Close(fd))
	r.Close(fd, retvalOf(errno), errno)
}

func errnoOf(err error) int {
	if errno, ok := err.(unix.Errno); ok {
		return int(errno)
	}
	if err != nil {
		return int(unix.EIO)
	}
	return 0
}

func retvalOf(errno int) int64 {
	if errno != 0 {
		return -1
	}
	return 0
}
