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

// Package socket holds the per-fd entry every recording entry point
// mutates: its event list, cumulative byte counters, bound-address
// cache, and TCP-info sampling watermarks.
package socket

import (
	"github.com/shekkbuilder/tcpsnitch/event"
	"github.com/shekkbuilder/tcpsnitch/sockinfo"
)

// Entry is one live fd's state. The table package is responsible for
// mutual exclusion around an Entry; Entry itself assumes a single
// caller at a time (the holder of the fd's per-slot lock).
type Entry struct {
	ID  uint64
	FD  int

	Info sockinfo.Info

	Bound     bool
	BoundAddr event.Addr

	BytesSent     uint64
	BytesReceived uint64

	LastInfoDumpMicros uint64
	LastInfoDumpBytes  uint64
	RTTMicros          uint32

	Events []event.Record

	CaptureHandle any
}

// New builds an entry for a freshly observed fd.
func New(id uint64, fd int, info sockinfo.Info) *Entry {
	return &Entry{
		ID:     id,
		FD:     fd,
		Info:   info,
		Events: make([]event.Record, 0, 8),
	}
}

// Append adds an event to the entry's ordered list. The caller is
// responsible for stamping the event's ID as len(Events) before
// appending, so IDs stay strictly increasing within this entry.
func (e *Entry) Append(r event.Record) {
	e.Events = append(e.Events, r)
}

// NextEventID returns the sequence number the next appended event must
// carry.
func (e *Entry) NextEventID() uint64 {
	return uint64(len(e.Events))
}

// AddBytesSent increments the cumulative sent-byte budget. Per the
// recording contract, the *requested* byte count is accrued, not the
// value actually returned by the syscall.
func (e *Entry) AddBytesSent(n int) {
	if n > 0 {
		e.BytesSent += uint64(n)
	}
}

// AddBytesReceived increments the cumulative received-byte budget.
func (e *Entry) AddBytesReceived(n int) {
	if n > 0 {
		e.BytesReceived += uint64(n)
	}
}

// SetBound records a successful bind, caching the bound address; this is
// the prerequisite the capture package checks before force-binding.
func (e *Entry) SetBound(addr event.Addr) {
	e.Bound = true
	e.BoundAddr = addr
}

// Reset clears the event history (releasing every owned buffer) while
// preserving sock-info, used when converting a surviving entry into a
// forked_socket after the tracee forks.
func (e *Entry) Reset() {
	for _, r := range e.Events {
		event.Release(r)
	}
	e.Events = e.Events[:0]
	e.BytesSent = 0
	e.BytesReceived = 0
	e.LastInfoDumpMicros = 0
	e.LastInfoDumpBytes = 0
}

// Drain empties the event list and returns the drained slice, handing
// ownership to the caller. It is the entry-side half of
// dump_events_as_json: dump serializes and releases each event; Drain
// only transfers ownership so the entry's own list is never left
// holding freed events.
func (e *Entry) Drain() []event.Record {
	drained := e.Events
	e.Events = nil
	return drained
}
