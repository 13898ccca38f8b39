/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	stdlog "github.com/ndnrtr/fwcore/std/log"
)

// Logger wraps slog with the subject-first call shape used throughout the
// forwarder: every loggable type implements fmt.Stringer, and that string
// becomes the "subject" field of every line it logs.
type Logger struct {
	level  stdlog.Level
	sl     *slog.Logger
	nofail bool // used in tests, where Fatal should not os.Exit
}

// Log is the process-wide logger, initialized to INFO until SetLevel is
// called (e.g. once the config file has been read).
var Log = NewLogger(stdlog.LevelInfo)

// StartTimestamp records when the process started, used by the forwarder
// status management dataset.
var StartTimestamp = time.Now()

// ShouldQuit is polled by listener accept loops to exit cleanly on shutdown.
var ShouldQuit = false

// NewLogger constructs a Logger at the given minimum level, writing to stderr.
func NewLogger(level stdlog.Level) *Logger {
	return &Logger{
		level: level,
		sl: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.Level(level),
		})),
	}
}

// SetLevel changes the minimum level of messages that are printed.
func (l *Logger) SetLevel(level stdlog.Level) {
	l.level = level
	l.sl = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(level),
	}))
}

func (l *Logger) log(level stdlog.Level, subject fmt.Stringer, msg string, kvs ...any) {
	if level < l.level {
		return
	}
	args := make([]any, 0, len(kvs)+2)
	args = append(args, "subject", subject.String())
	args = append(args, kvs...)
	l.sl.Log(context.Background(), slog.Level(level), msg, args...)
}

// Trace logs a fine-grained per-packet message.
func (l *Logger) Trace(subject fmt.Stringer, msg string, kvs ...any) {
	l.log(stdlog.LevelTrace, subject, msg, kvs...)
}

// Debug logs a diagnostic message.
func (l *Logger) Debug(subject fmt.Stringer, msg string, kvs ...any) {
	l.log(stdlog.LevelDebug, subject, msg, kvs...)
}

// Info logs a notable but expected event.
func (l *Logger) Info(subject fmt.Stringer, msg string, kvs ...any) {
	l.log(stdlog.LevelInfo, subject, msg, kvs...)
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(subject fmt.Stringer, msg string, kvs ...any) {
	l.log(stdlog.LevelWarn, subject, msg, kvs...)
}

// Error logs a failure that aborts the current operation but not the process.
func (l *Logger) Error(subject fmt.Stringer, msg string, kvs ...any) {
	l.log(stdlog.LevelError, subject, msg, kvs...)
}

// Fatal logs an unrecoverable error and terminates the process, unless the
// logger was constructed for tests (see testutils).
func (l *Logger) Fatal(subject fmt.Stringer, msg string, kvs ...any) {
	l.log(stdlog.LevelFatal, subject, msg, kvs...)
	if !l.nofail {
		os.Exit(1)
	}
}
