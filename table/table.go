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

// Package table is the concurrent, fd-indexed container every recorded
// socket lives in: one slot per descriptor, a per-slot lock so unrelated
// fds never contend, and an occupancy bitmap so presence checks never
// need to take a slot lock at all.
package table

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

const initialCapacity = 256

type slot[T any] struct {
	mu      sync.Mutex
	held    bool
	present bool
	value   T
}

// Array is a resizable, fd-indexed table of entries of type T. The zero
// value is not usable; construct with New.
type Array[T any] struct {
	grow sync.RWMutex
	bits *bitset.BitSet
	rows []*slot[T]
}

// New builds an empty Array with room for initialCapacity descriptors
// before its first growth.
func New[T any]() *Array[T] {
	return &Array[T]{
		bits: bitset.New(initialCapacity),
		rows: make([]*slot[T], initialCapacity),
	}
}

// growTo doubles capacity until fd fits, called under grow's write lock.
func (a *Array[T]) growTo(fd int) {
	if fd < len(a.rows) {
		return
	}

	newCap := len(a.rows)
	if newCap == 0 {
		newCap = initialCapacity
	}
	for newCap <= fd {
		newCap *= 2
	}

	rows := make([]*slot[T], newCap)
	copy(rows, a.rows)
	a.rows = rows
}

func (a *Array[T]) ensureSlot(fd int) *slot[T] {
	a.grow.Lock()
	defer a.grow.Unlock()

	a.growTo(fd)

	if a.rows[fd] == nil {
		a.rows[fd] = &slot[T]{}
	}
	return a.rows[fd]
}

// Put installs entry at fd, growing capacity if needed. The caller must
// not hold fd's lock already; Put takes ownership of marking the slot
// present and leaves it unlocked.
func (a *Array[T]) Put(fd int, entry T) error {
	if fd < 0 {
		return ErrorNegativeFD.Error(nil)
	}

	s := a.ensureSlot(fd)

	s.mu.Lock()
	s.value = entry
	s.present = true
	s.mu.Unlock()

	a.grow.Lock()
	a.bits.Set(uint(fd))
	a.grow.Unlock()

	return nil
}

// IsPresent is a nonblocking occupancy check: it never waits on a slot's
// own lock, only on the table-wide growth lock (held only for the
// duration of a bitmap read).
func (a *Array[T]) IsPresent(fd int) bool {
	if fd < 0 {
		return false
	}

	a.grow.RLock()
	defer a.grow.RUnlock()

	return a.bits.Test(uint(fd))
}

// GetAndLock returns the entry at fd and acquires its per-slot lock,
// blocking if another holder has it. ok is false if the slot is empty,
// in which case no lock is held.
func (a *Array[T]) GetAndLock(fd int) (entry T, ok bool) {
	if fd < 0 {
		return entry, false
	}

	a.grow.RLock()
	var s *slot[T]
	if fd < len(a.rows) {
		s = a.rows[fd]
	}
	a.grow.RUnlock()

	if s == nil {
		return entry, false
	}

	s.mu.Lock()
	if !s.present {
		s.mu.Unlock()
		return entry, false
	}

	s.held = true
	return s.value, true
}

// Unlock releases fd's per-slot lock. It is a programming error to call
// Unlock on a slot the caller does not hold; ErrorNotLocked is returned
// in that case rather than panicking, since lock discipline violations
// must never reach the tracee.
func (a *Array[T]) Unlock(fd int) error {
	if fd < 0 {
		return ErrorNegativeFD.Error(nil)
	}

	a.grow.RLock()
	var s *slot[T]
	if fd < len(a.rows) {
		s = a.rows[fd]
	}
	a.grow.RUnlock()

	if s == nil || !s.held {
		return ErrorNotLocked.Error(nil)
	}

	s.held = false
	s.mu.Unlock()
	return nil
}

// Store updates the value at fd in place. The caller must already hold
// fd's lock (i.e. called GetAndLock first).
func (a *Array[T]) Store(fd int, entry T) {
	if fd < 0 {
		return
	}

	a.grow.RLock()
	var s *slot[T]
	if fd < len(a.rows) {
		s = a.rows[fd]
	}
	a.grow.RUnlock()

	if s != nil {
		s.value = entry
	}
}

// Remove removes and returns the entry at fd, atomically with respect to
// presence. ok is false if the slot was empty.
func (a *Array[T]) Remove(fd int) (entry T, ok bool) {
	if fd < 0 {
		return entry, false
	}

	a.grow.Lock()
	var s *slot[T]
	if fd < len(a.rows) {
		s = a.rows[fd]
	}
	if s == nil || !s.present {
		a.grow.Unlock()
		return entry, false
	}
	a.bits.Clear(uint(fd))
	a.grow.Unlock()

	s.mu.Lock()
	entry = s.value
	var zero T
	s.value = zero
	s.present = false
	s.held = false
	s.mu.Unlock()

	return entry, true
}

// Size returns current slot capacity, not population.
func (a *Array[T]) Size() int {
	a.grow.RLock()
	defer a.grow.RUnlock()
	return len(a.rows)
}

// Free tears the table down. Present slots are cleared; callers that
// need to flush entries before teardown must do so beforehand (see
// dump.All), since Free does not invoke any destructor on T.
func (a *Array[T]) Free() {
	a.grow.Lock()
	defer a.grow.Unlock()

	a.rows = nil
	a.bits = bitset.New(initialCapacity)
}

// Range calls f for every present entry, in ascending fd order. f must
// not call Put/Remove/GetAndLock on the same Array; it is intended for
// read-mostly sweeps like dump_all.
func (a *Array[T]) Range(f func(fd int, entry T) bool) {
	a.grow.RLock()
	rows := a.rows
	a.grow.RUnlock()

	for fd, s := range rows {
		if s == nil {
			continue
		}

		s.mu.Lock()
		present := s.present
		value := s.value
		s.mu.Unlock()

		if !present {
			continue
		}
		if !f(fd, value) {
			return
		}
	}
}
