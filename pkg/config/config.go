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
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/validation"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/subosito/gotenv"
)

const (
	SchemaVersion = 1
	CfgEnv        = "VFD_CFG"
	CfgFile       = "config.toml"
	DotEnvFile    = ".env"
	AppName       = "zaparoo-vfd"
)

type Values struct {
	Display      Display   `toml:"display"`
	Messages     Messages  `toml:"messages"`
	Telemetry    Telemetry `toml:"telemetry,omitempty"`
	Logging      Logging   `toml:"logging"`
	API          API       `toml:"api"`
	Scroll       Scroll    `toml:"scroll"`
	ConfigSchema int       `toml:"config_schema"`
	DebugLogging bool      `toml:"debug_logging"`
}

// Logging controls where log output goes. Level is a zerolog level name.
type Logging struct {
	Level    string `toml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	FilePath string `toml:"file_path,omitempty"`
	ToFile   bool   `toml:"to_file"`
}

type Telemetry struct {
	SentryDSN string `toml:"sentry_dsn,omitempty"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Display: Display{
		Port:        defaultPort(),
		BaudRates:   []int{9600, 2400, 4800, 19200},
		Width:       20,
		Height:      2,
		SettleDelay: "1s",
		LineDelay:   "100ms",
	},
	Scroll: Scroll{
		Speed: "500ms",
	},
	Messages: Messages{
		Welcome:  "CAISSE ILO MARKET\nPret a vous servir !",
		Currency: "Ar",
	},
	API: API{
		Listen: DefaultAPIListen,
	},
	Logging: Logging{
		Level: "info",
	},
}

func defaultPort() string {
	if runtime.GOOS == "windows" {
		return "COM4"
	}
	return "/dev/ttyUSB0"
}

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

type Instance struct {
	fs       afero.Fs
	env      LookupEnvFunc
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// Option configures NewConfig.
type Option func(*Instance)

// WithLookupEnv replaces os.LookupEnv, for tests.
func WithLookupEnv(fn LookupEnvFunc) Option {
	return func(c *Instance) {
		c.env = fn
	}
}

// WithPath loads the config from path instead of $VFD_CFG or configDir.
func WithPath(path string) Option {
	return func(c *Instance) {
		c.cfgPath = path
	}
}

// NewConfig loads the config file from configDir, or the path in $VFD_CFG,
// writing the defaults first if no file exists. Variables from a .env file
// in the working directory are used for overrides unless already set in
// the environment.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, configDir string, defaults Values, opts ...Option) (*Instance, error) {
	cfg := Instance{
		fs:       fs,
		env:      os.LookupEnv,
		vals:     cloneValues(defaults),
		defaults: cloneValues(defaults),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	dotenv, err := LoadDotEnv(fs, DotEnvFile)
	if err != nil {
		return nil, err
	}
	cfg.env = withDotEnv(cfg.env, dotenv)

	cfgPath := cfg.cfgPath
	if cfgPath == "" {
		cfgPath, _ = cfg.env(CfgEnv)
		log.Debug().Msgf("env config path: %s", cfgPath)
	}
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}
	cfg.cfgPath = cfgPath

	exists, err := afero.Exists(fs, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !exists {
		log.Info().Str("path", cfgPath).Msg("saving new default config to disk")

		err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err = cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDotEnv reads KEY=VALUE pairs from path. A missing file is not an
// error.
func LoadDotEnv(fs afero.Fs, path string) (gotenv.Env, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return gotenv.Env{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	env, err := gotenv.StrictParse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("vars", len(env)).Msg("loaded dotenv file")
	return env, nil
}

// withDotEnv falls back to dotenv values for anything the real
// environment does not set.
func withDotEnv(env LookupEnvFunc, dotenv gotenv.Env) LookupEnvFunc {
	if len(dotenv) == 0 {
		return env
	}
	return func(key string) (string, bool) {
		if v, ok := env(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := cloneValues(c.defaults)
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if c.env != nil {
		if err := applyEnv(&newVals, c.env); err != nil {
			return err
		}
	}

	if err := validation.DefaultValidator.Validate(&newVals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = newVals
	return nil
}

// Save writes the current values to the config file. Values overridden by
// the environment are written as they are in effect.
func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	// set current schema version
	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path returns the config file in use.
func (c *Instance) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfgPath
}

// Values returns a copy of everything currently in effect.
func (c *Instance) Values() Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneValues(c.vals)
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}

// LogLevel returns the configured level, "debug" when debug logging is
// forced on.
func (c *Instance) LogLevel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.DebugLogging {
		return "debug"
	}
	if c.vals.Logging.Level == "" {
		return "info"
	}
	return c.vals.Logging.Level
}

func (c *Instance) LogToFile() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Logging.ToFile
}

func (c *Instance) LogFilePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Logging.FilePath
}

func (c *Instance) SentryDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.SentryDSN
}

//nolint:gocritic // value copy is the point
func cloneValues(v Values) Values {
	v.Display.BaudRates = slices.Clone(v.Display.BaudRates)
	v.API.AllowedOrigins = slices.Clone(v.API.AllowedOrigins)
	v.API.AllowedIPs = slices.Clone(v.API.AllowedIPs)
	return v
}
