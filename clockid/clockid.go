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

// Package clockid provides the two primitives every recorded event is
// stamped with: a microsecond wall-clock reading and the calling
// thread's OS identifier.
package clockid

import (
	"golang.org/x/sys/unix"
)

// NowMicros returns seconds-since-epoch * 1e6 + microseconds. Returns 0
// on failure; callers treat 0 as "unknown" rather than propagating an error.
func NowMicros() uint64 {
	var ts unix.Timeval
	if err := unix.Gettimeofday(&ts); err != nil {
		return 0
	}
	return uint64(ts.Sec)*1_000_000 + uint64(ts.Usec)
}

// ThreadID returns the OS-level thread id of the calling goroutine's
// current carrier thread. Stable for as long as the goroutine stays
// locked to that thread (see runtime.LockOSThread); recording call sites
// that care about a stable value must lock themselves to their thread.
func ThreadID() int {
	return unix.Gettid()
}
