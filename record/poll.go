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
	"time"

	"golang.org/x/sys/unix"

	"github.com/shekkbuilder/tcpsnitch/clockid"
	"github.com/shekkbuilder/tcpsnitch/event"
)

// MillisToTimeout converts poll(2)'s millisecond timeout into the
// seconds/nanoseconds split every polling event's payload carries. The
// original implementation divided by 1e6 where it should have multiplied,
// reporting a timeout a million times too short; spec.md §9 flags this as
// a bug to fix rather than preserve, so this does the arithmetic correctly.
func MillisToTimeout(ms int) event.Timeout {
	if ms < 0 {
		return event.Timeout{}
	}
	d := time.Duration(ms) * time.Millisecond
	return event.Timeout{
		Seconds:     int64(d / time.Second),
		Nanoseconds: int64(d % time.Second),
	}
}

// Poll records a poll(2) call that reported fd among its results.
func (r *Recorder) Poll(fd int, requested, returned int16, timeout event.Timeout, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	ev := &event.PollEvent{
		Header:          r.header(event.Poll, e, retval, errno),
		RequestedEvents: requested,
		ReturnedEvents:  returned,
		Timeout:         timeout,
	}
	r.finish(fd, e, ev)
}

// PPoll records a ppoll(2) call.
func (r *Recorder) PPoll(fd int, requested, returned int16, timeout event.Timeout, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	ev := &event.PPollEvent{
		Header:          r.header(event.PPoll, e, retval, errno),
		RequestedEvents: requested,
		ReturnedEvents:  returned,
		Timeout:         timeout,
	}
	r.finish(fd, e, ev)
}

// Select records a select(2) call that reported fd ready in one of its
// three descriptor sets.
func (r *Recorder) Select(fd int, reqRead, reqWrite, reqExcept, retRead, retWrite, retExcept bool, timeout event.Timeout, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	ev := &event.SelectEvent{
		Header:    r.header(event.Select, e, retval, errno),
		ReqRead:   reqRead,
		ReqWrite:  reqWrite,
		ReqExcept: reqExcept,
		RetRead:   retRead,
		RetWrite:  retWrite,
		RetExcept: retExcept,
		Timeout:   timeout,
	}
	r.finish(fd, e, ev)
}

// PSelect records a pselect(2) call.
func (r *Recorder) PSelect(fd int, reqRead, reqWrite, reqExcept, retRead, retWrite, retExcept bool, timeout event.Timeout, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	ev := &event.PSelectEvent{
		Header:    r.header(event.PSelect, e, retval, errno),
		ReqRead:   reqRead,
		ReqWrite:  reqWrite,
		ReqExcept: reqExcept,
		RetRead:   retRead,
		RetWrite:  retWrite,
		RetExcept: retExcept,
		Timeout:   timeout,
	}
	r.finish(fd, e, ev)
}

// TCPInfo samples the kernel's struct tcp_info for fd and appends a
// tcp_info event, resetting the sampling watermarks. Called from
// finish's sampling dispatch; never recurses, since event.TCPInfo events are excluded from
// the sampling predicate in finish.
func (r *Recorder) TCPInfo(fd int) {
	e := r.lockOrGhost(fd)

	info, err := unix.GetsockoptTCPInfo(fd, unix.SOL_TCP, unix.TCP_INFO)
	if err != nil {
		if r.T.Log != nil {
			r.T.Log.Warning("tcp_info sample failed", err)
		}
		r.T.Table.Unlock(fd)
		return
	}

	payload := event.TCPInfo{
		State:        info.State,
		RTTMicros:    info.Rtt,
		RTTVarMicros: info.Rttvar,
		SndCwnd:      info.Snd_cwnd,
		TotalRetrans: info.Total_retrans,
	}

	ev := &event.TCPInfoEvent{
		Header: r.header(event.TCPInfo, e, 0, 0),
		Info:   payload,
	}
	e.Append(ev)

	e.RTTMicros = info.Rtt
	e.LastInfoDumpMicros = clockid.NowMicros()
	e.LastInfoDumpBytes = e.BytesSent + e.BytesReceived

	r.T.Table.Store(fd, e)
	r.T.Table.Unlock(fd)
}
