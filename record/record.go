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

// Package record implements the recording entry points: one function per
// traced syscall, each following the same Prelude/Body/Postlude template.
// Every exported method has void effect semantics — none of them return
// an error the interception layer could propagate to the tracee; internal
// failures are logged and swallowed, per the tracer's error-handling
// contract.
package record

import (
	"golang.org/x/sys/unix"

	"github.com/shekkbuilder/tcpsnitch/clockid"
	"github.com/shekkbuilder/tcpsnitch/event"
	"github.com/shekkbuilder/tcpsnitch/socket"
	"github.com/shekkbuilder/tcpsnitch/sockinfo"
	"github.com/shekkbuilder/tcpsnitch/tracer"
)

// Recorder implements the recording API against a single Tracer.
type Recorder struct {
	T *tracer.Tracer
}

// New builds a Recorder over tr.
func New(tr *tracer.Tracer) *Recorder {
	return &Recorder{T: tr}
}

// lockOrGhost acquires fd's lock, materializing a ghost entry first if
// the table has no prior observation of fd (spec.md §4.6). Returns the
// entry still locked; callers must Unlock(fd) themselves.
func (r *Recorder) lockOrGhost(fd int) *socket.Entry {
	if e, ok := r.T.Table.GetAndLock(fd); ok {
		return e
	}

	info, err := sockinfo.Query(fd)
	if err != nil && r.T.Log != nil {
		r.T.Log.Warning("ghost socket sock_info query failed", err)
	}

	e := socket.New(r.T.NextConnectionID(), fd, info)
	e.Append(&event.GhostSocketEvent{
		Header: event.NewHeader(event.GhostSocket, clockid.NowMicros(), e.NextEventID(), clockid.ThreadID(), 0, 0),
		Info:   info,
	})

	if r.T.Log != nil {
		r.T.Log.Warning("ghost socket materialized", nil)
	}

	_ = r.T.Table.Put(fd, e)

	locked, _ := r.T.Table.GetAndLock(fd)
	return locked
}

// header builds the common event header for the current call.
func (r *Recorder) header(typ event.Type, entry *socket.Entry, retval int64, errno int) event.Header {
	return event.NewHeader(typ, clockid.NowMicros(), entry.NextEventID(), clockid.ThreadID(), retval, errno)
}

// finish runs the shared postlude: append, store back, evaluate the
// TCP-info sampling predicate, then unlock. If the predicate fires (and
// the event just recorded isn't itself tcp_info), it samples outside the
// lock, per spec.md §4.7.
func (r *Recorder) finish(fd int, entry *socket.Entry, ev event.Record) {
	entry.Append(ev)
	r.T.Table.Store(fd, entry)

	sample := ev.Kind() != event.TCPInfo && r.shouldSampleLocked(entry)

	r.T.Table.Unlock(fd)

	if sample {
		r.TCPInfo(fd)
	}
}

// shouldSampleLocked evaluates the TCP-info sampling predicate (spec.md
// §4.7) under the entry's lock. Must be called with fd already locked.
func (r *Recorder) shouldSampleLocked(entry *socket.Entry) bool {
	if !sockinfo.IsTCP(entry.Info) {
		return false
	}

	u := r.T.Config.SampleIntervalMicros
	b := r.T.Config.SampleByteThreshold

	now := clockid.NowMicros()
	if u > 0 && now-entry.LastInfoDumpMicros > u {
		return true
	}

	total := entry.BytesSent + entry.BytesReceived
	if b > 0 && total-entry.LastInfoDumpBytes > b {
		return true
	}

	return false
}

// duplicateInto is the shared tail of the duplication family (accept,
// accept4, dup, dup2, dup3, fcntl F_DUPFD/F_DUPFD_CLOEXEC): after the
// source event is recorded and the syscall succeeded, install a new
// entry at dstFD copying the source's sock-info, carrying a synthetic
// duplicated event with a fresh header (return value 0, no error). Only
// dup2 and dup3 carry a payload field, NewFD set to dstFD; the rest of the
// triggering event's payload (accept's peer, accept4's and dup3's flags)
// is not copied, accept4 yields an accept event and fcntl a dup event. The
// source lock must already be released before this runs, avoiding the
// lock-order inversion spec.md §4.4 calls out.
func (r *Recorder) duplicateInto(dstFD int, sourceInfo sockinfo.Info, dupType event.Type) {
	e := socket.New(r.T.NextConnectionID(), dstFD, sourceInfo)

	var dupEvent event.Record
	switch dupType {
	case event.Accept, event.Accept4:
		dupEvent = &event.AcceptEvent{Header: r.header(event.Accept, e, 0, 0)}
	case event.Dup:
		dupEvent = &event.DupEvent{Header: r.header(event.Dup, e, 0, 0)}
	case event.Dup2:
		dupEvent = &event.Dup2Event{Header: r.header(event.Dup2, e, 0, 0), NewFD: dstFD}
	case event.Dup3:
		dupEvent = &event.Dup3Event{Header: r.header(event.Dup3, e, 0, 0), NewFD: dstFD}
	default:
		dupEvent = &event.DupEvent{Header: r.header(event.Dup, e, 0, 0)}
	}

	e.Append(dupEvent)

	if old, ok := r.T.Table.Remove(dstFD); ok {
		if r.T.Log != nil {
			r.T.Log.Warning("unclosed socket replaced by duplication target", nil)
		}
		_ = old
	}

	_ = r.T.Table.Put(dstFD, e)
}

func addrFromSockaddr(sa unix.Sockaddr) *event.Addr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		raw := make([]byte, 4)
		copy(raw, v.Addr[:])
		return &event.Addr{Family: unix.AF_INET, Raw: raw, Port: v.Port}
	case *unix.SockaddrInet6:
		raw := make([]byte, 16)
		copy(raw, v.Addr[:])
		return &event.Addr{Family: unix.AF_INET6, Raw: raw, Port: v.Port}
	default:
		return nil
	}
}
