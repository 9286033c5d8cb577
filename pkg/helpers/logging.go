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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/config"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	LogFile        = "vfd.log"
	ConsoleTimeFmt = "2006-01-02 15:04:05"
	logMaxSizeMB   = 1
	logMaxBackups  = 2
	logDirPerm     = 0o750
)

// ConfigDir is where the config file lives by default.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DefaultLogPath returns the log file under the XDG state directory,
// creating the directory.
func DefaultLogPath() (string, error) {
	path, err := xdg.StateFile(filepath.Join(config.AppName, LogFile))
	if err != nil {
		return "", fmt.Errorf("failed to resolve log path: %w", err)
	}
	return path, nil
}

// InitLogging sets up the global logger: human readable output on stderr,
// a rotating file when enabled in the config, and any extra writers.
func InitLogging(cfg *config.Instance, writers []io.Writer) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel())
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	logWriters := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: ConsoleTimeFmt,
	}}

	if cfg.LogToFile() {
		path, err := logFilePath(cfg)
		if err != nil {
			return err
		}
		logWriters = append(logWriters, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
		})
	}

	if len(writers) > 0 {
		logWriters = append(logWriters, writers...)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.SetGlobalLevel(level)

	log.Logger = log.Output(zerolog.MultiLevelWriter(logWriters...)).
		With().Timestamp().Caller().Logger()

	return nil
}

func logFilePath(cfg *config.Instance) (string, error) {
	path := cfg.LogFilePath()
	if path == "" {
		return DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), logDirPerm); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return path, nil
}
