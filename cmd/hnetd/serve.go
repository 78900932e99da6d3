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

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/hnet/config"
	"github.com/nabbar/hnet/flags"
	"github.com/nabbar/hnet/internal/metrics"
	"github.com/nabbar/hnet/logger"
	"github.com/nabbar/hnet/master"
)

// serveFlags mirrors the --worker-* flags master.spawn passes to a
// re-exec'd child (see master/reexec.go); they are hidden because no
// operator sets them by hand.
type serveFlags struct {
	config     string
	chanFd     string
	mutexFd    string
	workerSlot int
}

func newServeCommand() *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the master, or (when re-exec'd) a single worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(f)
		},
	}

	cmd.Flags().StringVar(&f.config, "config", "", "path to the configuration file")
	cmd.Flags().StringVar(&f.chanFd, master.FlagWorkerChanFd, "", "")
	cmd.Flags().StringVar(&f.mutexFd, master.FlagWorkerMutexFd, "", "")
	cmd.Flags().IntVar(&f.workerSlot, master.FlagWorkerSlot, -1, "")
	_ = cmd.Flags().MarkHidden(master.FlagWorkerChanFd)
	_ = cmd.Flags().MarkHidden(master.FlagWorkerMutexFd)
	_ = cmd.Flags().MarkHidden(master.FlagWorkerSlot)

	return cmd
}

func runServe(f *serveFlags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}

	log := buildLogger(*cfg)

	if os.Getenv(master.WorkerEnv) == "1" {
		return runWorker(cfg, log, f)
	}

	return runMaster(cfg, f.config, log)
}

func buildLogger(cfg config.Config) logger.Logger {
	if cfg.LogFile != "" {
		if fh, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			return logger.New(fh, cfg.Level())
		}
	}

	return logger.New(os.Stderr, cfg.Level())
}

// installSignals maps the two signals a deployed hnetd expects into the
// flags package's cooperative shutdown switches: SIGQUIT requests a
// graceful drain, SIGTERM/SIGINT an immediate stop.
func installSignals() {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		for sig := range ch {
			switch sig {
			case syscall.SIGQUIT:
				flags.Quit()
			default:
				flags.Terminate()
			}
		}
	}()
}

func runMaster(cfg *config.Config, cfgPath string, log logger.Logger) error {
	var met *metrics.Registry
	if cfg.MetricsListen != "" {
		met = metrics.New()

		srv := &http.Server{Addr: cfg.MetricsListen, Handler: met.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics listener: %s", err.Error())
			}
		}()
	}

	m, err := master.New(*cfg, cfgPath, log, met)
	if err != nil {
		return err
	}

	installSignals()
	flags.Reset()

	ctx := context.Background()
	if err = m.Start(ctx); err != nil {
		return err
	}

	for !flags.IsTerminate() && !flags.IsQuit() {
		time.Sleep(100 * time.Millisecond)
	}

	return m.Stop()
}
