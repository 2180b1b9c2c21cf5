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

package logger

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"

	jww "github.com/spf13/jwalterweatherman"

	libctx "github.com/shekkbuilder/tcpsnitch/context"
)

// FuncLog returns a Logger instance, used for lazy injection.
type FuncLog func() Logger

// Logger is the sink the tracer and the recording engine write
// diagnostics to. It extends io.WriteCloser so it can double as the
// destination of a standard log.Logger or any io.Writer-based integration.
type Logger interface {
	io.WriteCloser

	SetLevel(lvl Level)
	GetLevel() Level

	SetIOWriterLevel(lvl Level)
	GetIOWriterLevel() Level

	// SetIOWriterFilter replaces the set of substrings that, if found in a
	// message written through the io.Writer interface, drop that message.
	SetIOWriterFilter(pattern ...string)
	AddIOWriterFilter(pattern ...string)

	SetOptions(opt *Options) error
	GetOptions() *Options

	SetFields(field Fields)
	GetFields() Fields

	Clone() (Logger, error)

	// SetSPF13Level pipes this logger into a jwalterweatherman notepad, the
	// logger cobra/viper expect for their own diagnostics.
	SetSPF13Level(lvl Level, log *jww.Notepad)

	GetStdLogger(lvl Level, logFlags int) *log.Logger
	SetStdLogger(lvl Level, logFlags int)

	Debug(message string, data interface{}, args ...interface{})
	Info(message string, data interface{}, args ...interface{})
	Warning(message string, data interface{}, args ...interface{})
	Error(message string, data interface{}, args ...interface{})
	Fatal(message string, data interface{}, args ...interface{})
	Panic(message string, data interface{}, args ...interface{})

	LogDetails(lvl Level, message string, data interface{}, err []error, fields Fields, args ...interface{})

	// CheckError logs at lvlKO when err holds a non-nil error, or at lvlOK
	// (unless NilLevel) otherwise. Returns true when an error was logged.
	CheckError(lvlKO, lvlOK Level, message string, err ...error) bool

	Entry(lvl Level, message string, args ...interface{}) *Entry
}

// New returns a Logger at InfoLevel bound to ctx.
func New(ctx context.Context) Logger {
	l := &lgr{
		m: sync.RWMutex{},
		x: libctx.New[uint8](ctx),
		f: NewFields(),
		c: new(atomic.Value),
	}

	l.SetLevel(InfoLevel)

	return l
}

// NewFrom builds a Logger, optionally seeding level/fields/options from an
// existing Logger or FuncLog found among other.
func NewFrom(ctx context.Context, opt *Options, other ...any) (Logger, error) {
	var (
		e error
		l *lgr
	)

	for _, i := range other {
		if i == nil {
			continue
		}

		var h Logger

		if f, k := i.(FuncLog); k && f != nil {
			h = f()
		} else if g, c := i.(Logger); c && g != nil {
			h = g
		}

		if h == nil {
			continue
		}

		if g, k := h.(*lgr); k {
			l = g
			break
		}
	}

	n := &lgr{
		m: sync.RWMutex{},
		x: libctx.New[uint8](ctx),
		f: NewFields(),
		c: new(atomic.Value),
	}

	n.SetLevel(InfoLevel)

	if l != nil {
		n.SetLevel(l.GetLevel())
		n.SetFields(l.GetFields())
	}

	if opt != nil {
		if l != nil {
			if ptr := l.GetOptions(); ptr != nil {
				oo := *ptr
				oo.Merge(opt)
				*opt = oo
			}
		}

		e = n.SetOptions(opt)
	}

	return n, e
}
