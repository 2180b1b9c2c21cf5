/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
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
	"fmt"
	"io"
	"os"

	libval "github.com/go-playground/validator/v10"

	liberr "github.com/shekkbuilder/tcpsnitch/errors"
)

type FuncCustomConfig func(log Logger)
type FuncOpt func() *Options

type OptionsFile struct {
	// Filepath is the destination for logged diagnostics; independent of
	// the per-connection event dump directory.
	Filepath string `json:"filepath,omitempty" yaml:"filepath,omitempty" mapstructure:"filepath,omitempty"`

	Create     bool        `json:"create,omitempty" yaml:"create,omitempty" mapstructure:"create,omitempty"`
	CreatePath bool        `json:"createPath,omitempty" yaml:"createPath,omitempty" mapstructure:"createPath,omitempty"`
	FileMode   os.FileMode `json:"fileMode,omitempty" yaml:"fileMode,omitempty" mapstructure:"fileMode,omitempty"`
	PathMode   os.FileMode `json:"pathMode,omitempty" yaml:"pathMode,omitempty" mapstructure:"pathMode,omitempty"`
}

type OptionsFiles []OptionsFile

func (o OptionsFile) Clone() OptionsFile {
	return o
}

func (o OptionsFiles) Clone() OptionsFiles {
	c := make(OptionsFiles, 0, len(o))
	for _, i := range o {
		c = append(c, i.Clone())
	}
	return c
}

type Options struct {
	// InheritDefault merges these options onto whatever was previously set
	// instead of replacing it wholesale.
	InheritDefault bool `json:"inheritDefault" yaml:"inheritDefault" mapstructure:"inheritDefault"`

	// DisableStandard stops writing to stdout/stderr.
	DisableStandard bool `json:"disableStandard,omitempty" yaml:"disableStandard,omitempty" mapstructure:"disableStandard,omitempty"`

	// DisableColor forces plain text output even on a tty.
	DisableColor bool `json:"disableColor,omitempty" yaml:"disableColor,omitempty" mapstructure:"disableColor,omitempty"`

	// EnableTrace adds caller file/line/function to every entry.
	EnableTrace bool `json:"enableTrace,omitempty" yaml:"enableTrace,omitempty" mapstructure:"enableTrace,omitempty"`

	// LogFile lists additional file sinks for diagnostics.
	LogFile OptionsFiles `json:"logFile,omitempty" yaml:"logFile,omitempty" mapstructure:"logFile,omitempty"`

	init   FuncCustomConfig
	change FuncCustomConfig
	opts   FuncOpt
}

func (o *Options) RegisterDefaultFunc(fct FuncOpt) {
	o.opts = fct
}

func (o *Options) RegisterFuncUpdateLogger(fct FuncCustomConfig) {
	o.init = fct
}

func (o *Options) RegisterFuncUpdateLevel(fct FuncCustomConfig) {
	o.change = fct
}

func (o *Options) Validate() liberr.Error {
	e := ErrorValidatorError.Error(nil)

	if err := libval.New().Struct(o); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		} else if ers, ok := err.(libval.ValidationErrors); ok {
			for _, er := range ers {
				//nolint #goerr113
				e.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
			}
		}
	}

	if !e.HasParent() {
		return nil
	}

	return e
}

// Merge overlays other onto o, favouring values explicitly set on other.
func (o *Options) Merge(other *Options) {
	if other == nil {
		return
	}

	if other.DisableStandard {
		o.DisableStandard = true
	}
	if other.DisableColor {
		o.DisableColor = true
	}
	if other.EnableTrace {
		o.EnableTrace = true
	}
	if len(other.LogFile) > 0 {
		o.LogFile = append(o.LogFile, other.LogFile...)
	}
	if other.init != nil {
		o.init = other.init
	}
	if other.change != nil {
		o.change = other.change
	}
}

func (o *Options) Clone() Options {
	return Options{
		InheritDefault:  o.InheritDefault,
		DisableStandard: o.DisableStandard,
		DisableColor:    o.DisableColor,
		EnableTrace:     o.EnableTrace,
		LogFile:         o.LogFile.Clone(),
		init:            o.init,
		change:          o.change,
		opts:            o.opts,
	}
}

func (o *lgr) SetOptions(opt *Options) error {
	if opt == nil {
		return nil
	}

	if opt.InheritDefault {
		o.optionsMerge(opt)
	}

	if err := opt.Validate(); err != nil {
		return err
	}

	writers := make([]io.Writer, 0, len(opt.LogFile)+1)
	clo := _NewCloser()

	if !opt.DisableStandard {
		writers = append(writers, os.Stderr)
	}

	for _, f := range opt.LogFile {
		if f.Filepath == "" {
			continue
		}

		if f.CreatePath {
			mode := f.PathMode
			if mode == 0 {
				mode = 0o755
			}
			_ = os.MkdirAll(dirOf(f.Filepath), mode)
		}

		flags := os.O_APPEND | os.O_WRONLY
		if f.Create {
			flags |= os.O_CREATE
		}

		mode := f.FileMode
		if mode == 0 {
			mode = 0o644
		}

		fh, err := os.OpenFile(f.Filepath, flags, mode)
		if err != nil {
			return ErrorFileOpenError.Error(err)
		}

		writers = append(writers, fh)
		clo.Add(fh)
	}

	o.m.Lock()
	o.x.Store(keyOptions, opt)
	o.c.Store(clo)
	o.m.Unlock()

	lg := o.getLogrus()
	if lg == nil {
		lg = newLogrus()
	}

	if len(writers) == 0 {
		lg.SetOutput(io.Discard)
	} else {
		lg.SetOutput(io.MultiWriter(writers...))
	}

	lg.SetFormatter(o.defaultFormatter(opt))
	o.x.Store(keyLogrus, lg)
	o.setLogrusLevel(o.GetLevel())

	if opt.init != nil {
		opt.init(o)
	}

	return nil
}

func (o *lgr) GetOptions() *Options {
	if i, l := o.x.Load(keyOptions); !l {
		return nil
	} else if v, k := i.(*Options); !k {
		return nil
	} else {
		return v
	}
}

func dirOf(p string) string {
	i := len(p) - 1
	for i >= 0 && p[i] != '/' {
		i--
	}
	if i <= 0 {
		return "."
	}
	return p[:i]
}
