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

// Package tracer is the process-wide singleton spec.md's "ambient global
// tables" redesign note asks for: it owns the socket table, the
// connection-id counter, and the collaborators (config, logger, capture
// side-car) every recording entry point needs, with explicit
// New/Reset/Free instead of package-level globals.
package tracer

import (
	"github.com/shekkbuilder/tcpsnitch/atomic"
	"github.com/shekkbuilder/tcpsnitch/capture"
	"github.com/shekkbuilder/tcpsnitch/clockid"
	"github.com/shekkbuilder/tcpsnitch/config"
	"github.com/shekkbuilder/tcpsnitch/dump"
	"github.com/shekkbuilder/tcpsnitch/event"
	"github.com/shekkbuilder/tcpsnitch/logger"
	"github.com/shekkbuilder/tcpsnitch/socket"
	"github.com/shekkbuilder/tcpsnitch/table"
)

// Tracer is the single owner of process-wide tracer state. Construct
// with New; it is safe for concurrent use by the tracee's arbitrary
// threads, exactly as spec.md §5 requires of the recording entry points.
type Tracer struct {
	Table   *table.Array[*socket.Entry]
	Config  *config.Config
	Log     logger.Logger
	Capture capture.Sidecar

	connCounter atomic.Value[uint64]
}

// New builds a Tracer. cfg and log must be non-nil; sidecar may be nil,
// in which case packet-capture integration (§4.8) is skipped entirely
// (no force-bind, no capture handle ever set on an entry).
func New(cfg *config.Config, log logger.Logger, sidecar capture.Sidecar) *Tracer {
	t := &Tracer{
		Table:       table.New[*socket.Entry](),
		Config:      cfg,
		Log:         log,
		Capture:     sidecar,
		connCounter: atomic.NewValue[uint64](),
	}
	// sync/atomic.Value.CompareAndSwap only accepts a nil old on an empty
	// Value; a boxed uint64(0) never matches that, so NextConnectionID's
	// CAS loop would spin forever against a never-Store'd counter. Seed it
	// so the first CAS compares against a real stored value.
	t.connCounter.Store(0)
	return t
}

// NextConnectionID assigns the next monotonically increasing connection
// id, the "id" field of §3's Socket entry. connections_count in spec.md
// §5 is a dedicated-mutex counter; here it is a lock-free CompareAndSwap
// loop over the teacher's generic atomic.Value, which gives the same
// "assignment is atomic, no lost updates" guarantee without a bespoke
// mutex.
func (t *Tracer) NextConnectionID() uint64 {
	for {
		cur := t.connCounter.Load()
		if t.connCounter.CompareAndSwap(cur, cur+1) {
			return cur
		}
	}
}

// Reset converts every currently-known entry into a forked_socket,
// called post-fork so the child's inherited fds get fresh event history
// under the new process's tracer instance (spec.md §4.6).
func (t *Tracer) Reset() {
	t.Table.Range(func(_ int, e *socket.Entry) bool {
		info := e.Info
		e.Reset()
		e.Append(&event.ForkedSocketEvent{
			Header: event.NewHeader(event.ForkedSocket, clockid.NowMicros(), e.NextEventID(), clockid.ThreadID(), 0, 0),
			Info:   info,
		})
		return true
	})
}

// DumpAll flushes every present entry to its per-connection output file.
// Called once at tracee shutdown.
func (t *Tracer) DumpAll() []error {
	return dump.All(t.Config.OutputDir, t.Table)
}

// Free tears the tracer down: dumps every remaining entry, then frees
// the table. Idempotent only in the sense that a second call finds an
// empty table; it is not safe to use the Tracer afterward.
func (t *Tracer) Free() {
	_ = t.DumpAll()
	t.Table.Free()
}
