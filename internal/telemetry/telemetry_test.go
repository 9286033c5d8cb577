/*
Zaparoo VFD
Copyright (c) 2025 The Zaparoo Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Zaparoo VFD.

Zaparoo VFD is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Zaparoo VFD is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Zaparoo VFD.  If not, see <http://www.gnu.org/licenses/>.
*/

package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "device path", input: "/dev/ttyUSB0", want: "/dev/ttyUSB0"},
		{
			name:  "linux config",
			input: "/home/rija/.config/zaparoo-vfd/config.toml",
			want:  "/home/<user>/.config/zaparoo-vfd/config.toml",
		},
		{
			name:  "linux any case",
			input: "/HOME/Rija/.local/state/zaparoo-vfd/vfd.log",
			want:  "/home/<user>/.local/state/zaparoo-vfd/vfd.log",
		},
		{
			name:  "macos",
			input: "/Users/rija/Library/Application Support/zaparoo-vfd/config.toml",
			want:  "/Users/<user>/Library/Application Support/zaparoo-vfd/config.toml",
		},
		{
			name:  "windows",
			input: `d:\Users\Caisse1\AppData\Local\zaparoo-vfd\vfd.log`,
			want:  `C:\Users\<user>\AppData\Local\zaparoo-vfd\vfd.log`,
		},
		{
			name:  "embedded in a message",
			input: "failed to read /home/rija/.config/zaparoo-vfd/config.toml: denied",
			want:  "failed to read /home/<user>/.config/zaparoo-vfd/config.toml: denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizePath(tt.input))
		})
	}
}

func TestSanitizeEvent(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "caisse-1",
		Message:    "open /home/rija/vfd.log: permission denied",
		Extra:      map[string]any{"path": "/Users/rija/config.toml", "count": 3},
		Exception: []sentry.Exception{
			{Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{
				{AbsPath: "/home/rija/src/zaparoo-vfd/pkg/vfd/conn.go", Filename: "pkg/vfd/conn.go"},
			}}},
			{},
		},
	}

	got := sanitizeEvent(event)
	assert.Empty(t, got.ServerName)
	assert.Equal(t, "open /home/<user>/vfd.log: permission denied", got.Message)
	assert.Equal(t, "/Users/<user>/config.toml", got.Extra["path"])
	assert.Equal(t, 3, got.Extra["count"])
	assert.Equal(t, "/home/<user>/src/zaparoo-vfd/pkg/vfd/conn.go", got.Exception[0].Stacktrace.Frames[0].AbsPath)
	assert.Equal(t, "pkg/vfd/conn.go", got.Exception[0].Stacktrace.Frames[0].Filename)
}

func TestInit_NoDSN(t *testing.T) {
	t.Parallel()

	w, err := Init("", "test")
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.False(t, Enabled())

	// no-ops while disabled
	Flush()
	Close()
}

func TestInit_BadDSN(t *testing.T) {
	t.Parallel()

	w, err := Init("not a dsn", "test")
	require.Error(t, err)
	assert.Nil(t, w)
	assert.False(t, Enabled())
}
