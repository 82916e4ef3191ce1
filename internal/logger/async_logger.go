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

package logger

import (
	"fmt"
	"io"
	"os"
)

// AsyncLogger decouples log writes from whatever might block the
// underlying writer (file rotation, a slow disk) by handing each
// write to a background goroutine over a bounded channel. A write that
// would block because the channel is full is dropped rather than
// stalling the caller's scan.
type AsyncLogger struct {
	w    io.Writer
	ch   chan []byte
	done chan struct{}
}

// NewAsyncLogger starts the background writer goroutine and returns a
// logger ready to accept writes.
func NewAsyncLogger(w io.Writer, bufferSize int) *AsyncLogger {
	l := &AsyncLogger{
		w:    w,
		ch:   make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for msg := range l.ch {
		if _, err := l.w.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "asynclogger: write failed: %v\n", err)
		}
	}
}

// Write enqueues p for the background writer, copying it since the
// caller may reuse its buffer after Write returns.
func (l *AsyncLogger) Write(p []byte) (int, error) {
	msg := make([]byte, len(p))
	copy(msg, p)
	select {
	case l.ch <- msg:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close drains the remaining queued writes, then closes the
// underlying writer if it supports that.
func (l *AsyncLogger) Close() error {
	close(l.ch)
	<-l.done
	if closer, ok := l.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
