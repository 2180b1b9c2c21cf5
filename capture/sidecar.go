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

package capture

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	libuuid "github.com/hashicorp/go-uuid"
)

// Filter is a 5-tuple-narrowed BPF-style capture expression: the bound
// local address (once force-bind has run, or the originally bound one)
// and the peer address the first outbound call targeted.
type Filter struct {
	LocalAddr string
	LocalPort int
	PeerAddr  string
	PeerPort  int
}

// String renders a tcpdump-style host/port filter expression.
func (f Filter) String() string {
	expr := fmt.Sprintf("host %s and port %d", f.PeerAddr, f.PeerPort)
	if f.LocalAddr != "" {
		expr = fmt.Sprintf("%s and (host %s and port %d)", expr, f.LocalAddr, f.LocalPort)
	}
	return expr
}

// Handle identifies one live capture; returned by Start, consumed by Stop.
type Handle struct {
	PcapPath string
	cancel   context.CancelFunc
	done     chan struct{}
}

// Sidecar starts and stops the external packet-capture process. The
// production implementation drives a tcpdump-compatible binary; tests
// substitute a fake.
type Sidecar interface {
	Start(filter Filter, pcapPath string) (Handle, error)
	Stop(h Handle, graceMicros uint64)
}

// ProcessSidecar shells out to an external capture binary (tcpdump by
// default) per connection, matching the side-car contract spec.md §4.8
// describes: start_capture(filter, pcap_path) / stop_capture(handle, grace).
type ProcessSidecar struct {
	Binary string // defaults to "tcpdump" when empty

	mu sync.Mutex
}

// NewProcessSidecar builds a side-car driving the named capture binary.
func NewProcessSidecar(binary string) *ProcessSidecar {
	if binary == "" {
		binary = "tcpdump"
	}
	return &ProcessSidecar{Binary: binary}
}

// NewPcapPath builds a capture output path in dir whose basename is a
// random UUID rather than the connection id, so the filesystem does not
// leak connection ordering/count to anyone who can list the directory.
func NewPcapPath(dir string) (string, error) {
	id, err := libuuid.GenerateUUID()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, id+".pcap"), nil
}

func (s *ProcessSidecar) Start(filter Filter, pcapPath string) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, s.Binary, "-i", "any", "-w", pcapPath, filter.String())

	done := make(chan struct{})
	if err := cmd.Start(); err != nil {
		cancel()
		return Handle{}, ErrorSidecarStart.Error(err)
	}

	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	return Handle{PcapPath: pcapPath, cancel: cancel, done: done}, nil
}

func (s *ProcessSidecar) Stop(h Handle, graceMicros uint64) {
	if h.cancel == nil {
		return
	}

	if graceMicros > 0 {
		select {
		case <-h.done:
		case <-time.After(time.Duration(graceMicros) * time.Microsecond):
		}
	}

	h.cancel()
	<-h.done
}
