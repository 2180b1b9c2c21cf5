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

package record

import (
	"golang.org/x/sys/unix"

	"github.com/shekkbuilder/tcpsnitch/capture"
	"github.com/shekkbuilder/tcpsnitch/dump"
	"github.com/shekkbuilder/tcpsnitch/event"
	"github.com/shekkbuilder/tcpsnitch/socket"
	"github.com/shekkbuilder/tcpsnitch/sockinfo"
)

// Socket records a socket(2) call, creating a fresh entry at fd.
func (r *Recorder) Socket(fd, domain, typ, protocol int, retval int64, errno int) {
	if old, ok := r.T.Table.Remove(fd); ok {
		if r.T.Log != nil {
			r.T.Log.Warning("unclosed socket collision on socket()", nil)
		}
		_ = old
	}

	info := sockinfo.FromArgs(domain, typ, protocol)
	e := socket.New(r.T.NextConnectionID(), fd, info)

	ev := &event.SocketEvent{
		Header: r.header(event.Socket, e, retval, errno),
		Info:   info,
	}
	e.Append(ev)

	_ = r.T.Table.Put(fd, e)
}

// Bind records a bind(2) call. On success it caches the bound address,
// the prerequisite capture's force-bind/filter logic checks.
func (r *Recorder) Bind(fd int, sa unix.Sockaddr, retval int64, errno int) {
	e := r.lockOrGhost(fd)

	addr := event.Addr{}
	if a := addrFromSockaddr(sa); a != nil {
		addr = *a
	}

	ev := &event.BindEvent{
		Header: r.header(event.Bind, e, retval, errno),
		Addr:   addr,
	}

	if retval != event.Bind.FailureSentinel() {
		e.SetBound(addr)
	}

	r.finish(fd, e, ev)
}

// Connect records a connect(2) call. On success against an INET TCP
// socket, it also starts the packet-capture side-car (force-binding the
// socket first if it was never explicitly bound), per spec.md §4.8.
func (r *Recorder) Connect(fd int, sa unix.Sockaddr, retval int64, errno int) {
	e := r.lockOrGhost(fd)

	addr := event.Addr{}
	if a := addrFromSockaddr(sa); a != nil {
		addr = *a
	}

	ev := &event.ConnectEvent{
		Header: r.header(event.Connect, e, retval, errno),
		Addr:   addr,
	}

	if retval != event.Connect.FailureSentinel() {
		r.maybeStartCapture(fd, e, sa)
	}

	r.finish(fd, e, ev)
}

// Shutdown records a shutdown(2) call, deriving shut_rd/shut_wr from how.
func (r *Recorder) Shutdown(fd, how int, retval int64, errno int) {
	e := r.lockOrGhost(fd)

	ev := &event.ShutdownEvent{
		Header: r.header(event.Shutdown, e, retval, errno),
		ShutRD: how == unix.SHUT_RD || how == unix.SHUT_RDWR,
		ShutWR: how == unix.SHUT_WR || how == unix.SHUT_RDWR,
	}

	r.finish(fd, e, ev)
}

// Listen records a listen(2) call.
func (r *Recorder) Listen(fd, backlog int, retval int64, errno int) {
	e := r.lockOrGhost(fd)

	ev := &event.ListenEvent{
		Header:  r.header(event.Listen, e, retval, errno),
		Backlog: backlog,
	}

	r.finish(fd, e, ev)
}

// Close records a close(2) call on fd, then (per spec.md §4.4) removes
// the entry from the table, stops any live capture with a 2*rtt grace
// period, flushes its events to disk, and destroys it.
func (r *Recorder) Close(fd int, retval int64, errno int) {
	e := r.lockOrGhost(fd)

	ev := &event.CloseEvent{Header: r.header(event.Close, e, retval, errno)}
	e.Append(ev)
	r.T.Table.Store(fd, e)
	r.T.Table.Unlock(fd)

	entry, ok := r.T.Table.Remove(fd)
	if !ok {
		return
	}

	if h, ok := entry.CaptureHandle.(capture.Handle); ok && r.T.Capture != nil {
		grace := uint64(2) * uint64(entry.RTTMicros)
		r.T.Capture.Stop(h, grace)
	}

	if err := dump.Entry(r.T.Config.OutputDir, entry); err != nil && r.T.Log != nil {
		r.T.Log.Error("dump on close failed", err)
	}
}
