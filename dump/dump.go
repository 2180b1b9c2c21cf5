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

// Package dump flushes a socket entry's event list to its per-connection
// output file as newline-delimited JSON, freeing each event as it is
// serialized.
package dump

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shekkbuilder/tcpsnitch/event"
	"github.com/shekkbuilder/tcpsnitch/socket"
)

// PathFor derives a connection's output path from the configured output
// directory and its connection id.
func PathFor(outputDir string, connectionID uint64) string {
	return filepath.Join(outputDir, fmt.Sprintf("%d.jsonl", connectionID))
}

// Entry opens the entry's output file in append mode, serializes each
// queued event as one line, releases it, and closes the file. Called on
// close and at tracee shutdown (dump_all).
func Entry(outputDir string, e *socket.Entry) error {
	if outputDir == "" {
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return ErrorOpenFailed.Error(err)
	}

	path := PathFor(outputDir, e.ID)
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return ErrorOpenFailed.Error(err)
	}
	defer fh.Close()

	enc := json.NewEncoder(fh)

	for _, r := range e.Drain() {
		if err := enc.Encode(r); err != nil {
			event.Release(r)
			return ErrorEncodeFailed.Error(err)
		}
		event.Release(r)
	}

	return nil
}

// Table is the subset of table.Array this package sweeps at shutdown; it
// avoids importing the generic table package just for this one method
// shape.
type Table interface {
	Range(f func(fd int, e *socket.Entry) bool)
}

// All iterates every present entry and dumps it. Called once at tracee
// shutdown; idempotent, since Entry drains (and Drain empties) each
// entry's list as it goes, so a second call with no intervening
// activity writes nothing further.
func All(outputDir string, t Table) []error {
	var errs []error

	t.Range(func(_ int, e *socket.Entry) bool {
		if err := Entry(outputDir, e); err != nil {
			errs = append(errs, err)
		}
		return true
	})

	return errs
}
