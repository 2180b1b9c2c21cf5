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

// Package event is the closed, tagged-union event taxonomy: one Go type
// per traced syscall variant, a common header every variant embeds, and
// a destructor dispatch for the handful of variants that own heap
// buffers.
package event

// Type tags which syscall a Record describes. The set is closed: every
// value here has exactly one corresponding payload type in variants.go.
type Type uint8

const (
	Socket Type = iota
	ForkedSocket
	GhostSocket
	Bind
	Connect
	Shutdown
	Listen
	Accept
	Accept4
	GetSockOpt
	SetSockOpt
	Send
	Recv
	SendTo
	RecvFrom
	SendMsg
	RecvMsg
	SendMMsg
	RecvMMsg
	GetSockName
	GetPeerName
	SockAtMark
	IsFDType
	Write
	Read
	Close
	Dup
	Dup2
	Dup3
	WriteV
	ReadV
	Ioctl
	SendFile
	Poll
	PPoll
	Select
	PSelect
	Fcntl
	EpollCtl
	EpollWait
	EpollPWait
	FDOpen
	TCPInfo
)

var typeNames = [...]string{
	"socket", "forked_socket", "ghost_socket", "bind", "connect", "shutdown",
	"listen", "accept", "accept4", "getsockopt", "setsockopt", "send", "recv",
	"sendto", "recvfrom", "sendmsg", "recvmsg", "sendmmsg", "recvmmsg",
	"getsockname", "getpeername", "sockatmark", "isfdtype", "write", "read",
	"close", "dup", "dup2", "dup3", "writev", "readv", "ioctl", "sendfile",
	"poll", "ppoll", "select", "pselect", "fcntl", "epoll_ctl", "epoll_wait",
	"epoll_pwait", "fdopen", "tcp_info",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// FailureSentinel returns the return-value that means "failure" for this
// variant. Every variant uses -1 except socket and fdopen, which use 0
// (they return a non-negative fd / non-null handle on success); forked
// and ghost sockets are synthetic and never compared against a sentinel.
func (t Type) FailureSentinel() int64 {
	switch t {
	case Socket, FDOpen:
		return 0
	default:
		return -1
	}
}
