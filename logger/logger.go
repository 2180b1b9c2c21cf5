/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"time"

	jww "github.com/spf13/jwalterweatherman"
)

func (o *lgr) GetStdLogger(lvl Level, logFlags int) *log.Logger {
	o.SetIOWriterLevel(lvl)
	return log.New(o, "", logFlags)
}

func (o *lgr) SetStdLogger(lvl Level, logFlags int) {
	o.SetIOWriterLevel(lvl)
	log.SetOutput(o)
	log.SetPrefix("")
	log.SetFlags(logFlags)
}

func (o *lgr) SetSPF13Level(lvl Level, nb *jww.Notepad) {
	var (
		fOutLog func(handle io.Writer)
		fLvl    func(threshold jww.Threshold)
	)

	if nb == nil {
		jww.SetStdoutOutput(io.Discard)
		fOutLog = jww.SetLogOutput
		fLvl = jww.SetLogThreshold
	} else {
		fOutLog = nb.SetLogOutput
		fLvl = nb.SetLogThreshold
	}

	switch lvl {
	case NilLevel:
		fOutLog(io.Discard)
		fLvl(jww.LevelCritical)
	case DebugLevel:
		fOutLog(o)
		if opt := o.GetOptions(); opt != nil && opt.EnableTrace {
			fLvl(jww.LevelTrace)
		} else {
			fLvl(jww.LevelDebug)
		}
	case InfoLevel:
		fOutLog(o)
		fLvl(jww.LevelInfo)
	case WarnLevel:
		fOutLog(o)
		fLvl(jww.LevelWarn)
	case ErrorLevel:
		fOutLog(o)
		fLvl(jww.LevelError)
	case FatalLevel:
		fOutLog(o)
		fLvl(jww.LevelFatal)
	case PanicLevel:
		fOutLog(o)
		fLvl(jww.LevelCritical)
	}
}

func (o *lgr) SetLevel(lvl Level) {
	o.x.Store(keyLevel, lvl)
	o.setLogrusLevel(lvl)
}

func (o *lgr) GetLevel() Level {
	if i, l := o.x.Load(keyLevel); !l {
		return InfoLevel
	} else if v, k := i.(Level); !k {
		return InfoLevel
	} else {
		return v
	}
}

func (o *lgr) SetIOWriterLevel(lvl Level) {
	o.x.Store(keyIOLevel, lvl)
}

func (o *lgr) GetIOWriterLevel() Level {
	if i, l := o.x.Load(keyIOLevel); !l {
		return InfoLevel
	} else if v, k := i.(Level); !k {
		return InfoLevel
	} else {
		return v
	}
}

func (o *lgr) SetIOWriterFilter(pattern ...string) {
	o.x.Store(keyIOFilter, pattern)
}

func (o *lgr) AddIOWriterFilter(pattern ...string) {
	cur := o.getIOWriterFilter()
	o.x.Store(keyIOFilter, append(cur, pattern...))
}

func (o *lgr) getIOWriterFilter() []string {
	if i, l := o.x.Load(keyIOFilter); !l {
		return nil
	} else if v, k := i.([]string); !k {
		return nil
	} else {
		return v
	}
}

func (o *lgr) SetFields(field Fields) {
	o.m.Lock()
	defer o.m.Unlock()
	o.f = field
}

func (o *lgr) GetFields() Fields {
	o.m.RLock()
	defer o.m.RUnlock()
	return o.f
}

func (o *lgr) Clone() (Logger, error) {
	o.m.RLock()
	opt := o.GetOptions()
	lvl := o.GetLevel()
	fld := o.f
	o.m.RUnlock()

	n := &lgr{
		x: o.x.Clone(o.x.GetContext()),
		f: fld,
		c: new(atomic.Value),
	}

	n.SetLevel(lvl)

	if opt != nil {
		oo := *opt
		return n, n.SetOptions(&oo)
	}

	return n, nil
}

func (o *lgr) Write(p []byte) (n int, err error) {
	msg := strings.TrimRight(string(p), "\n")

	for _, f := range o.getIOWriterFilter() {
		if f != "" && strings.Contains(msg, f) {
			return len(p), nil
		}
	}

	o.Entry(o.GetIOWriterLevel(), msg).Log()

	return len(p), nil
}

func (o *lgr) Close() error {
	if o.c == nil {
		return nil
	}

	if v := o.c.Load(); v != nil {
		if clo, k := v.(io.Closer); k && clo != nil {
			return clo.Close()
		}
	}

	return nil
}

func (o *lgr) Debug(message string, data interface{}, args ...interface{}) {
	o.Entry(DebugLevel, message, args...).DataSet(data).Log()
}

func (o *lgr) Info(message string, data interface{}, args ...interface{}) {
	o.Entry(InfoLevel, message, args...).DataSet(data).Log()
}

func (o *lgr) Warning(message string, data interface{}, args ...interface{}) {
	o.Entry(WarnLevel, message, args...).DataSet(data).Log()
}

func (o *lgr) Error(message string, data interface{}, args ...interface{}) {
	o.Entry(ErrorLevel, message, args...).DataSet(data).Log()
}

func (o *lgr) Fatal(message string, data interface{}, args ...interface{}) {
	o.Entry(FatalLevel, message, args...).DataSet(data).Log()
}

func (o *lgr) Panic(message string, data interface{}, args ...interface{}) {
	o.Entry(PanicLevel, message, args...).DataSet(data).Log()
}

func (o *lgr) LogDetails(lvl Level, message string, data interface{}, err []error, fields Fields, args ...interface{}) {
	o.Entry(lvl, message, args...).DataSet(data).ErrorSet(err).FieldMerge(fields).Log()
}

func (o *lgr) CheckError(lvlKO, lvlOK Level, message string, err ...error) bool {
	e := o.Entry(lvlKO, message).ErrorAdd(true, err...)
	return e.Check(lvlOK)
}

func (o *lgr) Entry(lvl Level, message string, args ...interface{}) *Entry {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}

	frame := o.getCaller()

	return &Entry{
		log:     o.getLogrus,
		Time:    time.Now(),
		Level:   lvl,
		Stack:   o.getStack(),
		Caller:  frame.Function,
		File:    frame.File,
		Line:    uint32(frame.Line),
		Message: message,
		Fields:  o.GetFields(),
	}
}
