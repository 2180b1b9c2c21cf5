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
	"github.com/shekkbuilder/tcpsnitch/event"
)

// Accept records an accept(2) call on the listening fd, then (on
// success) creates the accepted connection's own entry via the
// duplication tail, inheriting the listener's sock-info.
func (r *Recorder) Accept(listenFD, acceptedFD int, peer *event.Addr, retval int64, errno int) {
	e := r.lockOrGhost(listenFD)
	info := e.Info
	ev := &event.AcceptEvent{Header: r.header(event.Accept, e, retval, errno), Peer: peer}
	ok := retval != event.Accept.FailureSentinel()
	e.Append(ev)
	r.T.Table.Store(listenFD, e)
	r.T.Table.Unlock(listenFD)

	if ok {
		r.duplicateInto(acceptedFD, info, event.Accept)
	}
}

// Accept4 records an accept4(2) call, identical to Accept plus flags.
func (r *Recorder) Accept4(listenFD, acceptedFD int, peer *event.Addr, flags int, retval int64, errno int) {
	e := r.lockOrGhost(listenFD)
	info := e.Info
	ev := &event.Accept4Event{Header: r.header(event.Accept4, e, retval, errno), Peer: peer, Flags: flags}
	ok := retval != event.Accept4.FailureSentinel()
	e.Append(ev)
	r.T.Table.Store(listenFD, e)
	r.T.Table.Unlock(listenFD)

	if ok {
		r.duplicateInto(acceptedFD, info, event.Accept4)
	}
}

// Dup records a dup(2) call, duplicating oldFD's entry onto newFD.
func (r *Recorder) Dup(oldFD, newFD int, retval int64, errno int) {
	e := r.lockOrGhost(oldFD)
	info := e.Info
	ev := &event.DupEvent{Header: r.header(event.Dup, e, retval, errno)}
	ok := retval != event.Dup.FailureSentinel()
	e.Append(ev)
	r.T.Table.Store(oldFD, e)
	r.T.Table.Unlock(oldFD)

	if ok {
		r.duplicateInto(newFD, info, event.Dup)
	}
}

// Dup2 records a dup2(2) call.
func (r *Recorder) Dup2(oldFD, newFD int, retval int64, errno int) {
	e := r.lockOrGhost(oldFD)
	info := e.Info
	ev := &event.Dup2Event{Header: r.header(event.Dup2, e, retval, errno), NewFD: newFD}
	ok := retval != event.Dup2.FailureSentinel()
	e.Append(ev)
	r.T.Table.Store(oldFD, e)
	r.T.Table.Unlock(oldFD)

	if ok && oldFD != newFD {
		r.duplicateInto(newFD, info, event.Dup2)
	}
}

// Dup3 records a dup3(2) call.
func (r *Recorder) Dup3(oldFD, newFD int, oCloExec bool, retval int64, errno int) {
	e := r.lockOrGhost(oldFD)
	info := e.Info
	ev := &event.Dup3Event{Header: r.header(event.Dup3, e, retval, errno), NewFD: newFD, OCloExec: oCloExec}
	ok := retval != event.Dup3.FailureSentinel()
	e.Append(ev)
	r.T.Table.Store(oldFD, e)
	r.T.Table.Unlock(oldFD)

	if ok {
		r.duplicateInto(newFD, info, event.Dup3)
	}
}
