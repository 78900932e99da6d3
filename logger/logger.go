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

// Package logger provides the structured logger shared by the master and
// every worker process. It wraps logrus for field-based, leveled output.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	logfld "github.com/nabbar/hnet/logger/fields"
	loglvl "github.com/nabbar/hnet/logger/level"
)

// Logger is the logging surface used throughout the master, the reactor and
// every worker component.
type Logger interface {
	io.Writer

	SetLevel(lvl loglvl.Level)
	GetLevel() loglvl.Level

	SetFields(f logfld.Fields)
	GetFields() logfld.Fields

	// WithFields returns a derived Logger that always includes f in addition
	// to the receiver's own fields. Used to stamp every line emitted while
	// handling one connection with its fd and remote address.
	WithFields(f logfld.Fields) Logger

	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warning(message string, args ...interface{})
	Error(message string, args ...interface{})

	// Fatal logs at fatal level and calls os.Exit(1).
	Fatal(message string, args ...interface{})

	// CheckError logs err at lvlKO if non-nil, else at lvlOK (when lvlOK is
	// not NilLevel), and reports whether err was nil.
	CheckError(lvlKO, lvlOK loglvl.Level, message string, err error) bool

	// StdLogger returns a *log.Logger that writes through the receiver at lvl,
	// for libraries that only accept the standard library logger (net/http
	// Server.ErrorLog, for instance).
	StdLogger(lvl loglvl.Level) *log.Logger
}

type lgr struct {
	mu sync.RWMutex
	lr *logrus.Logger
	lv loglvl.Level
	fd logfld.Fields
}

// New returns a Logger writing to out in the given minimal level.
func New(out io.Writer, lvl loglvl.Level) Logger {
	lr := logrus.New()
	lr.SetOutput(out)
	lr.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lr.SetLevel(lvl.Logrus())

	return &lgr{
		lr: lr,
		lv: lvl,
		fd: logfld.New(),
	}
}

// Default returns a Logger writing to os.Stderr at InfoLevel, used before a
// configuration file has been loaded.
func Default() Logger {
	return New(os.Stderr, loglvl.InfoLevel)
}

func (l *lgr) Write(p []byte) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.lr.Out.Write(p)
}

func (l *lgr) SetLevel(lvl loglvl.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lv = lvl
	l.lr.SetLevel(lvl.Logrus())
}

func (l *lgr) GetLevel() loglvl.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.lv
}

func (l *lgr) SetFields(f logfld.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.fd = f
}

func (l *lgr) GetFields() logfld.Fields {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.fd.Clone()
}

func (l *lgr) WithFields(f logfld.Fields) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return &lgr{
		lr: l.lr,
		lv: l.lv,
		fd: l.fd.Merge(f),
	}
}

func (l *lgr) entry() *logrus.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.lv == loglvl.NilLevel {
		d := logrus.New()
		d.SetOutput(io.Discard)
		return d.WithFields(l.fd.Logrus())
	}

	return l.lr.WithFields(l.fd.Logrus())
}

func (l *lgr) Debug(message string, args ...interface{}) {
	l.entry().Debug(fmt.Sprintf(message, args...))
}

func (l *lgr) Info(message string, args ...interface{}) {
	l.entry().Info(fmt.Sprintf(message, args...))
}

func (l *lgr) Warning(message string, args ...interface{}) {
	l.entry().Warning(fmt.Sprintf(message, args...))
}

func (l *lgr) Error(message string, args ...interface{}) {
	l.entry().Error(fmt.Sprintf(message, args...))
}

func (l *lgr) Fatal(message string, args ...interface{}) {
	l.entry().Fatal(fmt.Sprintf(message, args...))
}

func (l *lgr) CheckError(lvlKO, lvlOK loglvl.Level, message string, err error) bool {
	if err != nil {
		l.entry().WithField("error", err.Error()).Log(lvlKO.Logrus(), message)
		return false
	}

	if lvlOK != loglvl.NilLevel {
		l.entry().Log(lvlOK.Logrus(), message)
	}

	return true
}

func (l *lgr) StdLogger(lvl loglvl.Level) *log.Logger {
	return log.New(l.entry().WriterLevel(lvl.Logrus()), "", 0)
}
