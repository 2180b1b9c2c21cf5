/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package config loads the tracer's external interface: the output
// directory for per-connection event dumps and the TCP-info sampling
// thresholds, the only state a collaborator reads from outside the
// process image.
package config

import (
	"os"
	"sync"

	spfpfg "github.com/spf13/pflag"
	spfvpr "github.com/spf13/viper"

	liberr "github.com/shekkbuilder/tcpsnitch/errors"
)

const (
	// KeyOutputDir names the env var pointing at the dump directory.
	// Matches the original OPT_D variable; an empty value disables dumping.
	KeyOutputDir = "OPT_D"

	// KeySampleIntervalMicros names the env var for the TCP-info sampling
	// interval, in microseconds since the last sample (conf_opt_u). 0 disables.
	KeySampleIntervalMicros = "TCPSNITCH_OPT_U"

	// KeySampleByteThreshold names the env var for the TCP-info sampling
	// byte-delta threshold (conf_opt_b). 0 disables.
	KeySampleByteThreshold = "TCPSNITCH_OPT_B"

	// KeyCaptureInProgress names the env var the packet-capture side-car
	// sets on the traced process so AF_PACKET sockets it opens are excluded
	// from INET classification (conf_opt_c), avoiding recursive tracing.
	KeyCaptureInProgress = "TCPSNITCH_OPT_C"
)

// Config is the tracer's external interface, read once at attach time.
type Config struct {
	m sync.Mutex
	v *spfvpr.Viper

	// OutputDir is the directory event dumps are written to. Empty disables
	// dumping entirely; no [MODULE] in this tracer creates it lazily.
	OutputDir string

	// SampleIntervalMicros is the minimum elapsed time, in microseconds,
	// between two tcp_info samples for the same socket. 0 disables
	// time-based sampling.
	SampleIntervalMicros uint64

	// SampleByteThreshold is the minimum cumulative byte delta between two
	// tcp_info samples for the same socket. 0 disables byte-based sampling.
	SampleByteThreshold uint64

	// CaptureInProgress marks this process as the packet-capture side-car
	// itself, so its own AF_PACKET sockets are never reclassified as INET.
	CaptureInProgress bool
}

// New builds a Config bound to a fresh viper instance with the tracer's
// environment-variable bindings registered but not yet read.
func New() *Config {
	v := spfvpr.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	_ = v.BindEnv("outputdir", KeyOutputDir)
	_ = v.BindEnv("sampleintervalmicros", KeySampleIntervalMicros)
	_ = v.BindEnv("samplebytethreshold", KeySampleByteThreshold)
	_ = v.BindEnv("captureinprogress", KeyCaptureInProgress)

	v.SetDefault("outputdir", "")
	v.SetDefault("sampleintervalmicros", 0)
	v.SetDefault("samplebytethreshold", 0)
	v.SetDefault("captureinprogress", false)

	return &Config{v: v}
}

// BindFlags registers command-line equivalents of the output-directory and
// sampling environment variables onto a cobra flag set, so a CLI invocation
// can override them. TCPSNITCH_OPT_C has no flag and is read from the
// environment only.
func (c *Config) BindFlags(fs *spfpfg.FlagSet) error {
	fs.String("output-dir", "", "directory to write per-connection event dumps (OPT_D)")
	fs.Uint64("sample-interval-us", 0, "tcp_info sampling interval in microseconds (0 disables)")
	fs.Uint64("sample-byte-threshold", 0, "tcp_info sampling byte threshold (0 disables)")

	c.m.Lock()
	defer c.m.Unlock()

	if err := c.v.BindPFlag("outputdir", fs.Lookup("output-dir")); err != nil {
		return err
	}
	if err := c.v.BindPFlag("sampleintervalmicros", fs.Lookup("sample-interval-us")); err != nil {
		return err
	}
	if err := c.v.BindPFlag("samplebytethreshold", fs.Lookup("sample-byte-threshold")); err != nil {
		return err
	}

	return nil
}

// Load reads the bound environment/flags into the Config fields.
func (c *Config) Load() liberr.Error {
	c.m.Lock()
	defer c.m.Unlock()

	c.OutputDir = c.v.GetString("outputdir")
	c.SampleIntervalMicros = c.v.GetUint64("sampleintervalmicros")
	c.SampleByteThreshold = c.v.GetUint64("samplebytethreshold")
	c.CaptureInProgress = c.v.GetBool("captureinprogress")

	if c.OutputDir != "" {
		if fi, err := os.Stat(c.OutputDir); err != nil {
			if mkErr := os.MkdirAll(c.OutputDir, 0o755); mkErr != nil {
				return ErrorOutputDirCreate.Error(mkErr)
			}
		} else if !fi.IsDir() {
			return ErrorOutputDirCreate.Error(nil)
		}
	}

	return nil
}

// DumpEnabled reports whether OutputDir names a usable destination.
func (c *Config) DumpEnabled() bool {
	return c.OutputDir != ""
}
