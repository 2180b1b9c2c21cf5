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
	"net"

	"golang.org/x/sys/unix"

	"github.com/shekkbuilder/tcpsnitch/capture"
	"github.com/shekkbuilder/tcpsnitch/event"
	"github.com/shekkbuilder/tcpsnitch/socket"
	"github.com/shekkbuilder/tcpsnitch/sockinfo"
)

// maybeStartCapture starts the packet-capture side-car for a freshly
// connected TCP/INET socket, force-binding it to a free ephemeral port
// first if no explicit bind was ever observed. A socket already carrying
// a capture handle, a non-INET/non-TCP socket, or a tracer with no
// configured side-car are all no-ops. Must be called with fd's entry
// already locked.
func (r *Recorder) maybeStartCapture(fd int, e *socket.Entry, peer unix.Sockaddr) {
	if r.T.Capture == nil || e.CaptureHandle != nil || !r.T.Config.DumpEnabled() {
		return
	}
	if !sockinfo.IsINET(e.Info, r.T.Config.CaptureInProgress) || !sockinfo.IsTCP(e.Info) {
		return
	}

	peerHost, peerPort := sockaddrHostPort(peer)
	if peerHost == "" {
		return
	}

	if !e.Bound {
		if _, err := capture.ForceBind(fd, e.Info.Domain); err != nil {
			if r.T.Log != nil {
				r.T.Log.Warning("force-bind before capture failed", err)
			}
			return
		}
		if local, lerr := unix.Getsockname(fd); lerr == nil {
			if a := addrFromSockaddr(local); a != nil {
				e.SetBound(*a)
			}
		}
	}

	localHost, localPort := "", 0
	if e.Bound {
		localHost, localPort = addrHostPort(e.BoundAddr)
	}

	filter := capture.Filter{
		LocalAddr: localHost,
		LocalPort: localPort,
		PeerAddr:  peerHost,
		PeerPort:  peerPort,
	}

	pcapPath, err := capture.NewPcapPath(r.T.Config.OutputDir)
	if err != nil {
		if r.T.Log != nil {
			r.T.Log.Warning("capture path generation failed", err)
		}
		return
	}

	handle, err := r.T.Capture.Start(filter, pcapPath)
	if err != nil {
		if r.T.Log != nil {
			r.T.Log.Warning("capture side-car start failed", err)
		}
		return
	}

	e.CaptureHandle = handle
}

func sockaddrHostPort(sa unix.Sockaddr) (string, int) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(v.Addr[:]).String(), v.Port
	case *unix.SockaddrInet6:
		return net.IP(v.Addr[:]).String(), v.Port
	default:
		return "", 0
	}
}

func addrHostPort(a event.Addr) (string, int) {
	switch len(a.Raw) {
	case 4, 16:
		return net.IP(a.Raw).String(), a.Port
	default:
		return "", 0
	}
}
