// Copyright 2026 The Dubug Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger is the level-filtered line printer spec.md §6 places
// out of scope as a host-supplied interface, implemented here as a
// real log/slog-backed one in the teacher's style: a package-level
// default logger, a level var that can be adjusted at runtime, and
// Tracef/Debugf/Infof/Warnf/Errorf convenience functions.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level names spec.md §6 defines for -q/-v, ordered from least to most
// verbose. critical always logs; quiet suppresses everything else.
const (
	Critical = "critical"
	Quiet    = "quiet"
	Error    = "error"
	Warning  = "warning"
	Info     = "info"
	Debug    = "debug"
)

// slog has no built-in TRACE/WARNING/CRITICAL; these extend its level
// space the way the teacher's logger does for its own custom names.
const (
	LevelTrace    = slog.Level(-8)
	LevelCritical = slog.Level(12)
)

var levelNames = map[string]slog.Level{
	Critical: LevelCritical,
	Error:    slog.LevelError,
	Warning:  slog.LevelWarn,
	Info:     slog.LevelInfo,
	Debug:    slog.LevelDebug,
}

// LevelForVerbosity maps a verbosity step count (negative = quieter,
// via -q; positive = more verbose, via -v) onto one of the named
// levels above, with 0 landing on "warning" as the default.
func LevelForVerbosity(steps int) string {
	ladder := []string{Quiet, Error, Warning, Info, Debug}
	base := 2 // "warning"
	idx := base + steps
	if idx < 0 {
		return Quiet
	}
	if idx >= len(ladder) {
		return Debug
	}
	return ladder[idx]
}

type factory struct {
	format string
	rank   int
	runID  string
	level  *slog.LevelVar
}

var defaultFactory = &factory{format: "text", level: new(slog.LevelVar)}
var defaultLogger = slog.New(defaultFactory.handler(os.Stderr))

// rankHandler prefixes every record's message with the peer's rank,
// since lines from every peer interleave on one shared console.
type rankHandler struct {
	slog.Handler
	rank  int
	runID string
}

func (h *rankHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.runID != "" {
		r.Message = fmt.Sprintf("[peer %d][%s] %s", h.rank, h.runID, r.Message)
	} else {
		r.Message = fmt.Sprintf("[peer %d] %s", h.rank, r.Message)
	}
	return h.Handler.Handle(ctx, r)
}

func (f *factory) handler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: f.level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.LevelKey:
				lvl := a.Value.Any().(slog.Level)
				a.Value = slog.StringValue(severityName(lvl))
			case slog.MessageKey:
				a.Key = "message"
			case slog.TimeKey:
				a.Key = "timestamp"
			}
			return a
		},
	}
	var h slog.Handler
	if f.format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &rankHandler{Handler: h, rank: f.rank, runID: f.runID}
}

func severityName(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return "TRACE"
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARNING"
	case l < LevelCritical:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}

// Options configures Init.
type Options struct {
	Format string // "text" or "json"
	Level  string // one of the named levels above
	Rank   int
	RunID  string // shared correlation id from peer.Group.RunID, if any

	// LogFile, when non-empty, routes output through a rotating file
	// instead of stderr.
	LogFile    string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// asyncLogger holds the currently installed AsyncLogger, if any, so
// Init can Close the previous one before installing a replacement.
var asyncLogger *AsyncLogger

// Init (re)configures the package-level default logger. It is not
// safe to call concurrently with logging calls.
func Init(opts Options) error {
	defaultFactory = &factory{format: opts.Format, rank: opts.Rank, runID: opts.RunID, level: new(slog.LevelVar)}
	setLevel(opts.Level)

	var w io.Writer = os.Stderr
	if opts.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
	}

	if asyncLogger != nil {
		asyncLogger.Close()
	}
	asyncLogger = NewAsyncLogger(w, 1024)

	defaultLogger = slog.New(defaultFactory.handler(asyncLogger))
	// Library code that still logs through the bare slog package
	// functions — rather than this package's Tracef/Warnf/Errorf — gets
	// the same rank prefix, level filter, and file routing by going
	// through the installed default.
	slog.SetDefault(defaultLogger)
	return nil
}

// Close flushes and releases the file or buffer Init's logger is
// writing to. Callers should defer it once, after Init, so buffered
// records are not lost on exit.
func Close() error {
	if asyncLogger == nil {
		return nil
	}
	return asyncLogger.Close()
}

func orDefault(v, d int) int {
	if v == 0 {
		return d
	}
	return v
}

func setLevel(name string) {
	if name == Quiet {
		// Nothing below critical will pass; critical always does.
		defaultFactory.level.Set(LevelCritical)
		return
	}
	lvl, ok := levelNames[name]
	if !ok {
		lvl = slog.LevelWarn
	}
	defaultFactory.level.Set(lvl)
}

func logAt(level slog.Level, format string, args ...any) {
	defaultLogger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

func Tracef(format string, args ...any)    { logAt(LevelTrace, format, args...) }
func Debugf(format string, args ...any)    { logAt(slog.LevelDebug, format, args...) }
func Infof(format string, args ...any)     { logAt(slog.LevelInfo, format, args...) }
func Warnf(format string, args ...any)     { logAt(slog.LevelWarn, format, args...) }
func Errorf(format string, args ...any)    { logAt(slog.LevelError, format, args...) }
func Criticalf(format string, args ...any) { logAt(LevelCritical, format, args...) }
