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

package event

import (
	"github.com/shekkbuilder/tcpsnitch/sockinfo"
)

// Addr is a generic capture of a sockaddr: family plus the raw bytes, so
// the event model never needs to special-case AF_INET vs AF_INET6
// layouts.
type Addr struct {
	Family int    `json:"family"`
	Raw    []byte `json:"raw"`
	Port   int    `json:"port"`
}

// --- socket / forked_socket / ghost_socket -------------------------------

type SocketEvent struct {
	Header
	Info sockinfo.Info `json:"sock_info"`
}

func (e *SocketEvent) Kind() Type    { return e.Type }
func (e *SocketEvent) Hdr() *Header  { return &e.Header }

type ForkedSocketEvent struct {
	Header
	Info sockinfo.Info `json:"sock_info"`
}

func (e *ForkedSocketEvent) Kind() Type   { return e.Type }
func (e *ForkedSocketEvent) Hdr() *Header { return &e.Header }

type GhostSocketEvent struct {
	Header
	Info sockinfo.Info `json:"sock_info"`
}

func (e *GhostSocketEvent) Kind() Type   { return e.Type }
func (e *GhostSocketEvent) Hdr() *Header { return &e.Header }

// --- bind / connect -------------------------------------------------------

type BindEvent struct {
	Header
	Addr Addr `json:"addr"`
}

func (e *BindEvent) Kind() Type   { return e.Type }
func (e *BindEvent) Hdr() *Header { return &e.Header }

type ConnectEvent struct {
	Header
	Addr Addr `json:"addr"`
}

func (e *ConnectEvent) Kind() Type   { return e.Type }
func (e *ConnectEvent) Hdr() *Header { return &e.Header }

// --- shutdown / listen -----------------------------------------------------

type ShutdownEvent struct {
	Header
	ShutRD bool `json:"shut_rd"`
	ShutWR bool `json:"shut_wr"`
}

func (e *ShutdownEvent) Kind() Type   { return e.Type }
func (e *ShutdownEvent) Hdr() *Header { return &e.Header }

type ListenEvent struct {
	Header
	Backlog int `json:"backlog"`
}

func (e *ListenEvent) Kind() Type   { return e.Type }
func (e *ListenEvent) Hdr() *Header { return &e.Header }

// --- accept / accept4 -------------------------------------------------------

type AcceptEvent struct {
	Header
	Peer    *Addr `json:"peer,omitempty"`
}

func (e *AcceptEvent) Kind() Type   { return e.Type }
func (e *AcceptEvent) Hdr() *Header { return &e.Header }

type Accept4Event struct {
	Header
	Peer  *Addr `json:"peer,omitempty"`
	Flags int   `json:"flags"`
}

func (e *Accept4Event) Kind() Type   { return e.Type }
func (e *Accept4Event) Hdr() *Header { return &e.Header }

// --- getsockopt / setsockopt -------------------------------------------------

type GetSockOptEvent struct {
	Header
	Level   int    `json:"level"`
	OptName int    `json:"optname"`
	OptLen  int    `json:"optlen"`
	OptVal  []byte `json:"optval"`
}

func (e *GetSockOptEvent) Kind() Type    { return e.Type }
func (e *GetSockOptEvent) Hdr() *Header  { return &e.Header }
func (e *GetSockOptEvent) Release()      { e.OptVal = nil }

type SetSockOptEvent struct {
	Header
	Level   int    `json:"level"`
	OptName int    `json:"optname"`
	OptLen  int    `json:"optlen"`
	OptVal  []byte `json:"optval"`
}

func (e *SetSockOptEvent) Kind() Type   { return e.Type }
func (e *SetSockOptEvent) Hdr() *Header { return &e.Header }
func (e *SetSockOptEvent) Release()     { e.OptVal = nil }

// --- send / recv / write / read ---------------------------------------------

type SendEvent struct {
	Header
	Budget int `json:"budget"`
	Flags  int `json:"flags"`
}

func (e *SendEvent) Kind() Type   { return e.Type }
func (e *SendEvent) Hdr() *Header { return &e.Header }

type RecvEvent struct {
	Header
	Budget int `json:"budget"`
	Flags  int `json:"flags"`
}

func (e *RecvEvent) Kind() Type   { return e.Type }
func (e *RecvEvent) Hdr() *Header { return &e.Header }

type WriteEvent struct {
	Header
	Budget int `json:"budget"`
}

func (e *WriteEvent) Kind() Type   { return e.Type }
func (e *WriteEvent) Hdr() *Header { return &e.Header }

type ReadEvent struct {
	Header
	Budget int `json:"budget"`
}

func (e *ReadEvent) Kind() Type   { return e.Type }
func (e *ReadEvent) Hdr() *Header { return &e.Header }

// --- sendto / recvfrom -------------------------------------------------------

type SendToEvent struct {
	Header
	Budget int   `json:"budget"`
	Flags  int   `json:"flags"`
	Addr   *Addr `json:"addr,omitempty"`
}

func (e *SendToEvent) Kind() Type   { return e.Type }
func (e *SendToEvent) Hdr() *Header { return &e.Header }

type RecvFromEvent struct {
	Header
	Budget int   `json:"budget"`
	Flags  int   `json:"flags"`
	Addr   *Addr `json:"addr,omitempty"`
}

func (e *RecvFromEvent) Kind() Type   { return e.Type }
func (e *RecvFromEvent) Hdr() *Header { return &e.Header }

// --- sendmsg / recvmsg -------------------------------------------------------

type SendMsgEvent struct {
	Header
	IovecSizes []int  `json:"iovec_sizes"`
	Flags      int    `json:"flags"`
	Control    []byte `json:"control"`
	Name       *Addr  `json:"name,omitempty"`
}

func (e *SendMsgEvent) Kind() Type   { return e.Type }
func (e *SendMsgEvent) Hdr() *Header { return &e.Header }
func (e *SendMsgEvent) Release()     { e.IovecSizes = nil; e.Control = nil }

type RecvMsgEvent struct {
	Header
	IovecSizes []int  `json:"iovec_sizes"`
	Flags      int    `json:"flags"`
	Control    []byte `json:"control"`
	MsgFlags   int    `json:"msg_flags"`
	Name       *Addr  `json:"name,omitempty"`
}

func (e *RecvMsgEvent) Kind() Type   { return e.Type }
func (e *RecvMsgEvent) Hdr() *Header { return &e.Header }
func (e *RecvMsgEvent) Release()     { e.IovecSizes = nil; e.Control = nil }

// --- sendmmsg / recvmmsg -----------------------------------------------------

// MMsg is one message of a sendmmsg/recvmmsg vector.
type MMsg struct {
	IovecSizes         []int  `json:"iovec_sizes"`
	Control            []byte `json:"control"`
	Flags              int    `json:"flags"`
	BytesTransmitted   int    `json:"bytes_transmitted"`
}

type SendMMsgEvent struct {
	Header
	Messages []MMsg `json:"messages"`
	Flags    int    `json:"flags"`
}

func (e *SendMMsgEvent) Kind() Type   { return e.Type }
func (e *SendMMsgEvent) Hdr() *Header { return &e.Header }
func (e *SendMMsgEvent) Release()     { e.Messages = nil }

type RecvMMsgEvent struct {
	Header
	Messages []MMsg `json:"messages"`
	Flags    int    `json:"flags"`
	Timeout  *Timeout `json:"timeout,omitempty"`
}

func (e *RecvMMsgEvent) Kind() Type   { return e.Type }
func (e *RecvMMsgEvent) Hdr() *Header { return &e.Header }
func (e *RecvMMsgEvent) Release()     { e.Messages = nil }

// --- getsockname / getpeername / sockatmark / isfdtype ----------------------

type GetSockNameEvent struct {
	Header
	Addr *Addr `json:"addr,omitempty"`
}

func (e *GetSockNameEvent) Kind() Type   { return e.Type }
func (e *GetSockNameEvent) Hdr() *Header { return &e.Header }

type GetPeerNameEvent struct {
	Header
	Addr *Addr `json:"addr,omitempty"`
}

func (e *GetPeerNameEvent) Kind() Type   { return e.Type }
func (e *GetPeerNameEvent) Hdr() *Header { return &e.Header }

type SockAtMarkEvent struct {
	Header
}

func (e *SockAtMarkEvent) Kind() Type   { return e.Type }
func (e *SockAtMarkEvent) Hdr() *Header { return &e.Header }

type IsFDTypeEvent struct {
	Header
	FDType int `json:"fdtype"`
}

func (e *IsFDTypeEvent) Kind() Type   { return e.Type }
func (e *IsFDTypeEvent) Hdr() *Header { return &e.Header }

// --- close / dup family -------------------------------------------------------

type CloseEvent struct {
	Header
}

func (e *CloseEvent) Kind() Type   { return e.Type }
func (e *CloseEvent) Hdr() *Header { return &e.Header }

type DupEvent struct {
	Header
}

func (e *DupEvent) Kind() Type   { return e.Type }
func (e *DupEvent) Hdr() *Header { return &e.Header }

type Dup2Event struct {
	Header
	NewFD int `json:"newfd"`
}

func (e *Dup2Event) Kind() Type   { return e.Type }
func (e *Dup2Event) Hdr() *Header { return &e.Header }

type Dup3Event struct {
	Header
	NewFD     int  `json:"newfd"`
	OCloExec  bool `json:"o_cloexec"`
}

func (e *Dup3Event) Kind() Type   { return e.Type }
func (e *Dup3Event) Hdr() *Header { return &e.Header }

// --- writev / readv -----------------------------------------------------------

type WriteVEvent struct {
	Header
	IovecSizes []int `json:"iovec_sizes"`
}

func (e *WriteVEvent) Kind() Type   { return e.Type }
func (e *WriteVEvent) Hdr() *Header { return &e.Header }
func (e *WriteVEvent) Release()     { e.IovecSizes = nil }

type ReadVEvent struct {
	Header
	IovecSizes []int `json:"iovec_sizes"`
}

func (e *ReadVEvent) Kind() Type   { return e.Type }
func (e *ReadVEvent) Hdr() *Header { return &e.Header }
func (e *ReadVEvent) Release()     { e.IovecSizes = nil }

// --- ioctl / sendfile ----------------------------------------------------------

type IoctlEvent struct {
	Header
	Request uint `json:"request"`
}

func (e *IoctlEvent) Kind() Type   { return e.Type }
func (e *IoctlEvent) Hdr() *Header { return &e.Header }

type SendFileEvent struct {
	Header
	Budget int `json:"budget"`
}

func (e *SendFileEvent) Kind() Type   { return e.Type }
func (e *SendFileEvent) Hdr() *Header { return &e.Header }

// --- poll / ppoll / select / pselect --------------------------------------------

// Timeout splits a duration into seconds and nanoseconds, the shape every
// polling variant's timeout payload is captured in.
type Timeout struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

type PollEvent struct {
	Header
	RequestedEvents int16    `json:"requested_events"`
	ReturnedEvents  int16    `json:"returned_events"`
	Timeout         Timeout  `json:"timeout"`
}

func (e *PollEvent) Kind() Type   { return e.Type }
func (e *PollEvent) Hdr() *Header { return &e.Header }

type PPollEvent struct {
	Header
	RequestedEvents int16   `json:"requested_events"`
	ReturnedEvents  int16   `json:"returned_events"`
	Timeout         Timeout `json:"timeout"`
}

func (e *PPollEvent) Kind() Type   { return e.Type }
func (e *PPollEvent) Hdr() *Header { return &e.Header }

type SelectEvent struct {
	Header
	ReqRead, ReqWrite, ReqExcept bool
	RetRead, RetWrite, RetExcept bool
	Timeout                      Timeout `json:"timeout"`
}

func (e *SelectEvent) Kind() Type   { return e.Type }
func (e *SelectEvent) Hdr() *Header { return &e.Header }

type PSelectEvent struct {
	Header
	ReqRead, ReqWrite, ReqExcept bool
	RetRead, RetWrite, RetExcept bool
	Timeout                      Timeout `json:"timeout"`
}

func (e *PSelectEvent) Kind() Type   { return e.Type }
func (e *PSelectEvent) Hdr() *Header { return &e.Header }

// --- fcntl -----------------------------------------------------------------------

type FcntlEvent struct {
	Header
	Cmd      int  `json:"cmd"`
	Arg      int  `json:"arg"`
	HasArg   bool `json:"has_arg"`
}

func (e *FcntlEvent) Kind() Type   { return e.Type }
func (e *FcntlEvent) Hdr() *Header { return &e.Header }

// --- epoll family ------------------------------------------------------------------

type EpollCtlEvent struct {
	Header
	Op           int   `json:"op"`
	RequestedMask uint32 `json:"requested_mask"`
}

func (e *EpollCtlEvent) Kind() Type   { return e.Type }
func (e *EpollCtlEvent) Hdr() *Header { return &e.Header }

type EpollWaitEvent struct {
	Header
	ReturnedMask uint32  `json:"returned_mask"`
	Timeout      Timeout `json:"timeout"`
}

func (e *EpollWaitEvent) Kind() Type   { return e.Type }
func (e *EpollWaitEvent) Hdr() *Header { return &e.Header }

type EpollPWaitEvent struct {
	Header
	ReturnedMask uint32  `json:"returned_mask"`
	Timeout      Timeout `json:"timeout"`
}

func (e *EpollPWaitEvent) Kind() Type   { return e.Type }
func (e *EpollPWaitEvent) Hdr() *Header { return &e.Header }

// --- fdopen / tcp_info ---------------------------------------------------------------

type FDOpenEvent struct {
	Header
	Mode string `json:"mode"`
}

func (e *FDOpenEvent) Kind() Type   { return e.Type }
func (e *FDOpenEvent) Hdr() *Header { return &e.Header }
func (e *FDOpenEvent) Release()     { e.Mode = "" }

// TCPInfo mirrors the kernel fields this tracer actually consumes out of
// struct tcp_info; it is not a complete copy of every kernel field, only
// the ones later analysis needs (notably smoothed RTT).
type TCPInfo struct {
	State       uint8  `json:"state"`
	RTTMicros   uint32 `json:"rtt_micros"`
	RTTVarMicros uint32 `json:"rttvar_micros"`
	SndCwnd     uint32 `json:"snd_cwnd"`
	TotalRetrans uint32 `json:"total_retrans"`
}

type TCPInfoEvent struct {
	Header
	Info TCPInfo `json:"tcp_info"`
}

func (e *TCPInfoEvent) Kind() Type   { return e.Type }
func (e *TCPInfoEvent) Hdr() *Header { return &e.Header }
