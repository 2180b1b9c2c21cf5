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

// Write records a write(2) call. Byte accounting accrues budget, the
// requested count, never the syscall's return value.
func (r *Recorder) Write(fd int, budget int, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesSent(budget)
	ev := &event.WriteEvent{Header: r.header(event.Write, e, retval, errno), Budget: budget}
	r.finish(fd, e, ev)
}

// Read records a read(2) call.
func (r *Recorder) Read(fd int, budget int, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesReceived(budget)
	ev := &event.ReadEvent{Header: r.header(event.Read, e, retval, errno), Budget: budget}
	r.finish(fd, e, ev)
}

// Send records a send(2) call.
func (r *Recorder) Send(fd int, budget, flags int, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesSent(budget)
	ev := &event.SendEvent{Header: r.header(event.Send, e, retval, errno), Budget: budget, Flags: flags}
	r.finish(fd, e, ev)
}

// Recv records a recv(2) call.
func (r *Recorder) Recv(fd int, budget, flags int, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesReceived(budget)
	ev := &event.RecvEvent{Header: r.header(event.Recv, e, retval, errno), Budget: budget, Flags: flags}
	r.finish(fd, e, ev)
}

// SendTo records a sendto(2) call.
func (r *Recorder) SendTo(fd int, budget, flags int, addr *event.Addr, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesSent(budget)
	ev := &event.SendToEvent{Header: r.header(event.SendTo, e, retval, errno), Budget: budget, Flags: flags, Addr: addr}
	r.finish(fd, e, ev)
}

// RecvFrom records a recvfrom(2) call.
func (r *Recorder) RecvFrom(fd int, budget, flags int, addr *event.Addr, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesReceived(budget)
	ev := &event.RecvFromEvent{Header: r.header(event.RecvFrom, e, retval, errno), Budget: budget, Flags: flags, Addr: addr}
	r.finish(fd, e, ev)
}

// SendMsg records a sendmsg(2) call. iovecSizes is the per-iovec
// requested length, summed for byte accounting.
func (r *Recorder) SendMsg(fd int, iovecSizes []int, flags int, control []byte, name *event.Addr, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesSent(sumInts(iovecSizes))
	ev := &event.SendMsgEvent{
		Header:     r.header(event.SendMsg, e, retval, errno),
		IovecSizes: iovecSizes,
		Flags:      flags,
		Control:    control,
		Name:       name,
	}
	r.finish(fd, e, ev)
}

// RecvMsg records a recvmsg(2) call.
func (r *Recorder) RecvMsg(fd int, iovecSizes []int, flags, msgFlags int, control []byte, name *event.Addr, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesReceived(sumInts(iovecSizes))
	ev := &event.RecvMsgEvent{
		Header:     r.header(event.RecvMsg, e, retval, errno),
		IovecSizes: iovecSizes,
		Flags:      flags,
		Control:    control,
		MsgFlags:   msgFlags,
		Name:       name,
	}
	r.finish(fd, e, ev)
}

// SendMMsg records a sendmmsg(2) call covering every message in one batch.
func (r *Recorder) SendMMsg(fd int, messages []event.MMsg, flags int, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	for _, m := range messages {
		e.AddBytesSent(sumInts(m.IovecSizes))
	}
	ev := &event.SendMMsgEvent{Header: r.header(event.SendMMsg, e, retval, errno), Messages: messages, Flags: flags}
	r.finish(fd, e, ev)
}

// RecvMMsg records a recvmmsg(2) call.
func (r *Recorder) RecvMMsg(fd int, messages []event.MMsg, flags int, timeout *event.Timeout, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	for _, m := range messages {
		e.AddBytesReceived(sumInts(m.IovecSizes))
	}
	ev := &event.RecvMMsgEvent{Header: r.header(event.RecvMMsg, e, retval, errno), Messages: messages, Flags: flags, Timeout: timeout}
	r.finish(fd, e, ev)
}

// WriteV records a writev(2) call.
func (r *Recorder) WriteV(fd int, iovecSizes []int, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesSent(sumInts(iovecSizes))
	ev := &event.WriteVEvent{Header: r.header(event.WriteV, e, retval, errno), IovecSizes: iovecSizes}
	r.finish(fd, e, ev)
}

// ReadV records a readv(2) call.
func (r *Recorder) ReadV(fd int, iovecSizes []int, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	e.AddBytesReceived(sumInts(iovecSizes))
	ev := &event.ReadVEvent{Header: r.header(event.ReadV, e, retval, errno), IovecSizes: iovecSizes}
	r.finish(fd, e, ev)
}

// SendFile records a sendfile(2) call. The original implementation
// charges the byte budget to the *input* file descriptor's entry, not
// the output socket's; that is a bug spec.md §9 flags rather than a
// contract, so here the budget is charged against the socket fd actually
// being traced (outFD), which is the only side this tracer ever sees a
// table entry for.
func (r *Recorder) SendFile(outFD int, budget int, retval int64, errno int) {
	e := r.lockOrGhost(outFD)
	e.AddBytesSent(budget)
	ev := &event.SendFileEvent{Header: r.header(event.SendFile, e, retval, errno), Budget: budget}
	r.finish(outFD, e, ev)
}

// Ioctl records an ioctl(2) call against a socket fd.
func (r *Recorder) Ioctl(fd int, request uint, retval int64, errno int) {
	e := r.lockOrGhost(fd)
	ev := &event.IoctlEvent{Header: r.header(event.Ioctl, e, retval, errno), Request: request}
	r.finish(fd, e, ev)
}

func sumInts(xs []int) int {
	total := 0
	for _, x := range xs {
		if x > 0 {
			total += x
		}
	}
	return total
}
