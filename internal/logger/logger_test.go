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
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	textDebugString = `^timestamp=[a-zA-Z0-9/:. +-]+ level=DEBUG message="\[peer 3\] www.debugExample.com"`
	textInfoString  = `^timestamp=[a-zA-Z0-9/:. +-]+ level=INFO message="\[peer 3\] www.infoExample.com"`
	textWarnString  = `^timestamp=[a-zA-Z0-9/:. +-]+ level=WARNING message="\[peer 3\] www.warningExample.com"`
	textErrorString = `^timestamp=[a-zA-Z0-9/:. +-]+ level=ERROR message="\[peer 3\] www.errorExample.com"`
)

type LoggerTest struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

func redirectToBuffer(buf *bytes.Buffer, format, level string) {
	defaultFactory = &factory{format: format, rank: 3, level: new(slog.LevelVar)}
	setLevel(level)
	defaultLogger = slog.New(defaultFactory.handler(buf))
}

func (t *LoggerTest) TestQuietSuppressesEverythingButCritical() {
	var buf bytes.Buffer
	redirectToBuffer(&buf, "text", Quiet)

	Errorf("www.errorExample.com")
	t.Empty(buf.String())

	buf.Reset()
	Criticalf("still shows")
	t.Contains(buf.String(), "still shows")
}

func (t *LoggerTest) TestErrorLevelHidesWarningAndBelow() {
	var buf bytes.Buffer
	redirectToBuffer(&buf, "text", Error)

	Warnf("www.warningExample.com")
	t.Empty(buf.String())

	buf.Reset()
	Errorf("www.errorExample.com")
	t.Regexp(regexp.MustCompile(textErrorString), buf.String())
}

func (t *LoggerTest) TestWarningLevelShowsWarningAndError() {
	var buf bytes.Buffer
	redirectToBuffer(&buf, "text", Warning)

	Infof("www.infoExample.com")
	t.Empty(buf.String())

	buf.Reset()
	Warnf("www.warningExample.com")
	t.Regexp(regexp.MustCompile(textWarnString), buf.String())
}

func (t *LoggerTest) TestDebugLevelShowsEverythingDownToDebug() {
	var buf bytes.Buffer
	redirectToBuffer(&buf, "text", Debug)

	Debugf("www.debugExample.com")
	t.Regexp(regexp.MustCompile(textDebugString), buf.String())

	buf.Reset()
	Infof("www.infoExample.com")
	t.Regexp(regexp.MustCompile(textInfoString), buf.String())
}

func (t *LoggerTest) TestJSONFormatEmitsJSONLines() {
	var buf bytes.Buffer
	redirectToBuffer(&buf, "json", Debug)

	Infof("www.infoExample.com")
	t.Contains(buf.String(), `"message":"[peer 3] www.infoExample.com"`)
	t.Contains(buf.String(), `"level":"INFO"`)
}

func TestLevelForVerbosityLadder(t *testing.T) {
	assert.Equal(t, Warning, LevelForVerbosity(0))
	assert.Equal(t, Quiet, LevelForVerbosity(-2))
	assert.Equal(t, Debug, LevelForVerbosity(2))
	assert.Equal(t, Debug, LevelForVerbosity(100))
	assert.Equal(t, Quiet, LevelForVerbosity(-100))
}

func TestRankHandlerPrefixesMessage(t *testing.T) {
	var buf bytes.Buffer
	f := &factory{format: "text", rank: 7, level: new(slog.LevelVar)}
	l := slog.New(f.handler(&buf))
	l.Log(context.Background(), slog.LevelInfo, "hello")
	assert.Contains(t, buf.String(), "[peer 7] hello")
}
