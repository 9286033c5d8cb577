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
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and drive the display",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), a)
		},
	}
}

// serve runs until ctx is cancelled. A display that cannot be reached at
// startup is only logged; the API keeps retrying on each request.
func serve(ctx context.Context, a *app) error {
	svc, err := a.newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error().Err(err).Msg("error stopping display service")
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msg("testing display connection on startup")
		if err := svc.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("display test failed, server will start but display may not work")
			return nil
		}
		log.Info().Msg("display test successful")
		return nil
	})
	g.Go(func() error {
		return api.Start(ctx, a.cfg, svc)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
