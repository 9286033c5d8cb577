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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/audio"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// withService runs fn against a connected display and closes it after.
func withService(a *app, fn func(*service.Service) error) error {
	svc, err := a.newService()
	if err != nil {
		return err
	}
	err = fn(svc)
	if closeErr := svc.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("error closing display")
	}
	return err
}

func newTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Connect to the display and show the welcome message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(a, func(svc *service.Service) error {
				if err := svc.Start(cmd.Context()); err != nil {
					return err
				}
				st := svc.Status()
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "display connected on %s at %d baud\n", st.Port, st.Rate)
				return err
			})
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var center bool
	cmd := &cobra.Command{
		Use:   "show TEXT...",
		Short: "Show static text, one display row per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := service.ModeStatic
			if center {
				mode = service.ModeCenter
			}
			return withService(a, func(svc *service.Service) error {
				_, err := svc.ShowText(cmd.Context(), service.TextRequest{
					Text: strings.Join(args, "\n"),
					Mode: mode,
				})
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&center, "center", false, "center every line")
	return cmd
}

func newScrollCmd(a *app) *cobra.Command {
	var (
		loop  bool
		all   bool
		speed time.Duration
	)
	cmd := &cobra.Command{
		Use:   "scroll TEXT...",
		Short: "Scroll text across the display",
		Long: "Scroll text across the display. With --loop the text repeats until " +
			"the command is interrupted.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.TextRequest{
				Text:  strings.Join(args, "\n"),
				Mode:  service.ModeScroll,
				Speed: speed,
			}
			if loop {
				req.Mode = service.ModeLoop
			}
			if cmd.Flags().Changed("all") {
				req.ScrollAllLines = &all
			}
			return withService(a, func(svc *service.Service) error {
				return scroll(cmd.Context(), svc, req)
			})
		},
	}
	cmd.Flags().BoolVar(&loop, "loop", false, "repeat until interrupted")
	cmd.Flags().BoolVar(&all, "all", false, "scroll lines that already fit")
	cmd.Flags().DurationVar(&speed, "speed", 0, "delay between steps (default from config)")
	return cmd
}

func scroll(ctx context.Context, svc *service.Service, req service.TextRequest) error {
	job, err := svc.ShowText(ctx, req)
	if err != nil {
		return err
	}
	err = job.Wait(ctx)
	if errors.Is(err, context.Canceled) {
		svc.StopScroll()
		return nil
	}
	return err
}

func newBeepCmd(a *app) *cobra.Command {
	var melody string
	cmd := &cobra.Command{
		Use:   "beep",
		Short: "Sound the display buzzer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(a, func(svc *service.Service) error {
				if melody == "" {
					return svc.PlayMelody(cmd.Context(), audio.MelodyNotification)
				}
				return svc.PlayMelody(cmd.Context(), melody)
			})
		},
	}
	cmd.Flags().StringVar(&melody, "melody", "",
		"melody to play: "+strings.Join(audio.Names(), ", ")+" (default "+audio.MelodyNotification+")")
	return cmd
}

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports that could be a display",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := helpers.GetSerialDeviceList()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(devices) == 0 {
				_, err := fmt.Fprintln(out, "no serial ports found")
				return err
			}
			for _, d := range devices {
				if _, err := fmt.Fprintln(out, d.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "zaparoo-vfd %s\n", version)
			return err
		},
	}
}
