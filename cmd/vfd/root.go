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

package main

import (
	"fmt"
	"io"

	"github.com/ZaparooProject/zaparoo-vfd/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/config"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/service"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app is what the subcommands share. Tests replace fs, defaults and
// serviceOpts.
type app struct {
	fs          afero.Fs
	cfg         *config.Instance
	configPath  string
	configDir   string
	defaults    config.Values
	serviceOpts []service.Option
	debug       bool
}

func newApp() *app {
	return &app{
		fs:        afero.NewOsFs(),
		configDir: helpers.ConfigDir(),
		defaults:  config.BaseDefaults,
	}
}

// setup loads the config and starts logging. It runs before every
// subcommand.
func (a *app) setup() error {
	var opts []config.Option
	if a.configPath != "" {
		opts = append(opts, config.WithPath(a.configPath))
	}
	cfg, err := config.NewConfig(a.fs, a.configDir, a.defaults, opts...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.debug {
		cfg.SetDebugLogging(true)
	}

	var writers []io.Writer
	sentryWriter, err := telemetry.Init(cfg.SentryDSN(), version)
	if err != nil {
		return err
	}
	if sentryWriter != nil {
		writers = append(writers, sentryWriter)
	}
	if err := helpers.InitLogging(cfg, writers); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	a.cfg = cfg
	return nil
}

func (a *app) newService() (*service.Service, error) {
	svc, err := service.New(a.cfg, a.serviceOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create display service: %w", err)
	}
	return svc, nil
}

// skipSetup marks commands that need neither config nor logging.
const skipSetup = "skip-setup"

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "vfd",
		Short:         "Customer display driver and HTTP API for VFD220 pole displays",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $VFD_CFG or the user config dir)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newTestCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newScrollCmd(a))
	root.AddCommand(newBeepCmd(a))
	root.AddCommand(newPortsCmd())
	root.AddCommand(newVersionCmd())

	return root
}
