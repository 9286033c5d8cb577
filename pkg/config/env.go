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

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment variables that override config file values.
const (
	EnvPort      = "VFD_PORT"
	EnvBaudRates = "VFD_BAUD_RATES"
	EnvWidth     = "VFD_WIDTH"
	EnvHeight    = "VFD_HEIGHT"
	EnvAPIListen = "VFD_API_LISTEN"
	EnvSentryDSN = "VFD_SENTRY_DSN"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogToFile = "LOG_TO_FILE"
	EnvLogFile   = "LOG_FILE_PATH"
)

func applyEnv(vals *Values, env LookupEnvFunc) error {
	if v, ok := env(EnvPort); ok && v != "" {
		vals.Display.Port = v
	}
	if v, ok := env(EnvBaudRates); ok && v != "" {
		rates, err := ParseBaudRates(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBaudRates, err)
		}
		vals.Display.BaudRates = rates
	}
	if v, ok := env(EnvWidth); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWidth, err)
		}
		vals.Display.Width = n
	}
	if v, ok := env(EnvHeight); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHeight, err)
		}
		vals.Display.Height = n
	}
	if v, ok := env(EnvAPIListen); ok && v != "" {
		vals.API.Listen = v
	}
	if v, ok := env(EnvSentryDSN); ok {
		vals.Telemetry.SentryDSN = v
	}
	if v, ok := env(EnvLogLevel); ok && v != "" {
		vals.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := env(EnvLogToFile); ok && v != "" {
		// anything but "true" is false
		vals.Logging.ToFile = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	if v, ok := env(EnvLogFile); ok && v != "" {
		vals.Logging.FilePath = v
	}
	return nil
}

// ParseBaudRates parses a comma separated list such as "9600,2400".
func ParseBaudRates(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	rates := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid baud rate %q: %w", p, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("invalid baud rate %d", n)
		}
		rates = append(rates, n)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no baud rates in %q", s)
	}
	return rates, nil
}
