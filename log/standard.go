// Copyright 2025 The Leakgate Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// StandardLogger is the default Logger implementation, backed by logrus.
// Output goes to stderr so the engine's own output on stdout stays clean.
type StandardLogger struct {
	l *logrus.Logger
}

func newStandardLogger() *StandardLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		ForceColors:      isatty.IsTerminal(os.Stderr.Fd()),
	})

	return &StandardLogger{l: l}
}

// SetLevel parses a logrus level name and applies it to the standard
// logger. Unknown level names are an error and leave the level unchanged.
func (sl *StandardLogger) SetLevel(levelStr string) error {
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("could not parse log level %v: %w", levelStr, err)
	}

	sl.l.SetLevel(level)
	return nil
}

func (sl *StandardLogger) Errorf(format string, args ...interface{}) {
	sl.l.Errorf(format, args...)
}

func (sl *StandardLogger) Error(args ...interface{}) {
	sl.l.Error(args...)
}

func (sl *StandardLogger) Warnf(format string, args ...interface{}) {
	sl.l.Warnf(format, args...)
}

func (sl *StandardLogger) Warn(args ...interface{}) {
	sl.l.Warn(args...)
}

func (sl *StandardLogger) Debugf(format string, args ...interface{}) {
	sl.l.Debugf(format, args...)
}

func (sl *StandardLogger) Debug(args ...interface{}) {
	sl.l.Debug(args...)
}

func (sl *StandardLogger) Infof(format string, args ...interface{}) {
	sl.l.Infof(format, args...)
}

func (sl *StandardLogger) Info(args ...interface{}) {
	sl.l.Info(args...)
}
