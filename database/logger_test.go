/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("trace"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel(" WARNING "))
	assert.Equal(t, LogLevelError, ParseLogLevel("fatal"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("bogus"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	boom := errors.New("boom")
	l.Info("saved", "uow", "abc", "ops", 2)
	l.Error("save failed", "error", boom)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "saved", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"uow": "abc", "ops": int64(2)}, entries[0].ContextMap())
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	l.SetLevel(LogLevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", "dangling")
	require.Equal(t, 3, logs.Len())
	assert.Empty(t, logs.All()[2].Context)
}

func TestToLogrusFields(t *testing.T) {
	f := toLogrusFields([]interface{}{"a", 1, 2, "b", "odd"})
	assert.Equal(t, 1, f["a"])
	assert.Equal(t, "b", f["2"])
	assert.Len(t, f, 2)
}

func TestInitLogger(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { InitLogger(prev) })

	rec := &recordLogger{}
	InitLogger(rec)
	InitLogger(nil)
	assert.Same(t, rec, GetLogger())
}

type logEntry struct {
	level  LogLevel
	msg    string
	fields []interface{}
}

type recordLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recordLogger) add(level LogLevel, msg string, fields []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (r *recordLogger) SetLevel(LogLevel) {}

func (r *recordLogger) Debug(msg string, fields ...interface{}) { r.add(LogLevelDebug, msg, fields) }
func (r *recordLogger) Info(msg string, fields ...interface{})  { r.add(LogLevelInfo, msg, fields) }
func (r *recordLogger) Warn(msg string, fields ...interface{})  { r.add(LogLevelWarn, msg, fields) }
func (r *recordLogger) Error(msg string, fields ...interface{}) { r.add(LogLevelError, msg, fields) }
