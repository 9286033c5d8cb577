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

package helpers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogConfig(t *testing.T, env map[string]string) *config.Instance {
	t.Helper()
	cfg, err := config.NewConfig(afero.NewMemMapFs(), "/cfg", config.BaseDefaults,
		config.WithLookupEnv(func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}))
	require.NoError(t, err)
	return cfg
}

func TestInitLogging(t *testing.T) {
	// Note: Cannot use t.Parallel() because InitLogging modifies global log.Logger
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	t.Run("extra writers receive json", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := newLogConfig(t, nil)

		require.NoError(t, InitLogging(cfg, []io.Writer{&buf}))
		log.Info().Str("port", "/dev/ttyUSB0").Msg("hello display")

		assert.Contains(t, buf.String(), `"message":"hello display"`)
		assert.Contains(t, buf.String(), `"port":"/dev/ttyUSB0"`)
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("level from environment", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := newLogConfig(t, map[string]string{config.EnvLogLevel: "warn"})

		require.NoError(t, InitLogging(cfg, nil))
		log.Logger = log.Output(&buf)
		log.Info().Msg("hidden")
		log.Warn().Msg("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("writes rotating file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "vfd.log")
		cfg := newLogConfig(t, map[string]string{
			config.EnvLogToFile: "true",
			config.EnvLogFile:   path,
		})

		require.NoError(t, InitLogging(cfg, nil))
		log.Info().Msg("to file")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})
}

func TestConfigDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, config.AppName, filepath.Base(ConfigDir()))
}
