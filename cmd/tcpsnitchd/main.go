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

// Command tcpsnitchd drives the recording engine directly, standing in
// for the ptrace/LD_PRELOAD interception layer a real deployment would
// sit behind. It traces its own process's socket syscalls rather than a
// child's, driving one loopback TCP connection through the socket, bind,
// listen, connect, write, accept, read and close entry points and the
// dump format. The tracer is built without a capture side-car, so packet
// capture is not exercised.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shekkbuilder/tcpsnitch/config"
	"github.com/shekkbuilder/tcpsnitch/logger"
	"github.com/shekkbuilder/tcpsnitch/tracer"
)

func main() {
	cfg := config.New()

	root := &cobra.Command{
		Use:   "tcpsnitchd",
		Short: "Record socket syscall activity for a traced process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	if err := cfg.BindFlags(root.Flags()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Load(); err != nil {
		return err
	}

	log := logger.New(ctx)
	defer log.Close()

	tr := tracer.New(cfg, log, nil)
	defer tr.Free()

	log.Info("tcpsnitchd attached", nil, "output_dir", cfg.OutputDir)

	demonstrate(tr, log)

	<-ctx.Done()
	log.Info("tcpsnitchd shutting down", nil)
	return nil
}
