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

// Header is embedded by every variant payload; it carries the fields
// common to all recorded events regardless of which syscall they describe.
type Header struct {
	TimestampUsec uint64 `json:"timestamp_usec"`
	Type          Type   `json:"type"`
	ReturnValue   int64  `json:"return_value"`
	Success       bool   `json:"success"`
	Err           int    `json:"err"`
	ID            uint64 `json:"id"`
	ThreadID      int    `json:"thread_id"`
}

// NewHeader stamps a Header from the recording entry point's captured
// return value and errno, deriving Success from the variant's failure
// sentinel. Once built, Success is never mutated again.
func NewHeader(typ Type, timestampUsec uint64, id uint64, threadID int, retval int64, errno int) Header {
	return Header{
		TimestampUsec: timestampUsec,
		Type:          typ,
		ReturnValue:   retval,
		Success:       retval != typ.FailureSentinel(),
		Err:           errno,
		ID:            id,
		ThreadID:      threadID,
	}
}

// Record is the closed tagged union: every concrete payload type in
// variants.go implements it by embedding Header and, where it owns heap
// buffers, a Release method.
type Record interface {
	Kind() Type
	Hdr() *Header
}

// releaser is implemented by the variants that copy heap-owned buffers
// (getsockopt/setsockopt optval, iovec size arrays, mmsghdr vectors,
// fdopen mode, sendmsg/recvmsg ancillary bytes) so Release can free them
// without every caller needing to know which variants require it.
type releaser interface {
	Release()
}

// Release frees r's owned buffers, if it has any. Variants without heap
// buffers are a no-op.
func Release(r Record) {
	if rel, ok := r.(releaser); ok {
		rel.Release()
	}
}
