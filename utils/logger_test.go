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

package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(data logrus.Fields) *logrus.Entry {
	return &logrus.Entry{
		Time:    time.Date(2025, 3, 4, 5, 6, 7, 8_000_000, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "hello",
		Data:    data,
	}
}

func TestConsoleFormatter(t *testing.T) {
	f := &ConsoleFormatter{LoggerName: "DATABASE-LAYER", NameWidth: 8}
	out, err := f.Format(entry(logrus.Fields{"b": 2, "a": "x"}))
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasPrefix(line, "2025-03-04 05:06:07.008 WARNING "))
	assert.Contains(t, line, "[DATABASE] : hello a=x b=2\n")
}

func TestJSONLogFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "HTTP"}
	out, err := f.Format(entry(logrus.Fields{
		"req_method":   "GET",
		"req_uri":      "/api/products",
		"status_code":  404,
		"latency_time": "1ms",
		"client_ip":    7,
		"error":        errors.New("boom"),
	}))
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "warning", rec["level"])
	assert.Equal(t, "HTTP", rec["model"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "/api/products", rec["path"])
	assert.Equal(t, float64(404), rec["status_code"])
	assert.Equal(t, map[string]interface{}{"client_ip": float64(7), "error": "boom"}, rec["fields"])
}

func TestLoggerRegistry(t *testing.T) {
	var buf bytes.Buffer
	ConfigureOutput(&buf)
	t.Cleanup(func() { ConfigureOutput(nil) })

	l := NewLogger("REGISTRY_TEST")
	assert.Same(t, l, NewLogger("REGISTRY_TEST"))

	assert.True(t, SetLoggerLevel("REGISTRY_TEST", "error"))
	assert.False(t, SetLoggerLevel("NOT_CREATED", "error"))
	l.Warn("dropped")
	l.Error("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("Warning"))
	assert.Equal(t, logrus.TraceLevel, ParseLogLevel("trace"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("loud"))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_FLAG", "1")
	assert.True(t, EnvDefaultBool("STOREFRONT_FLAG", true))
	t.Setenv("STOREFRONT_FLAG", "false")
	assert.False(t, EnvDefaultBool("STOREFRONT_FLAG", true))
	assert.Equal(t, "x", EnvDefaultString("STOREFRONT_UNSET_VALUE", "x"))
}
