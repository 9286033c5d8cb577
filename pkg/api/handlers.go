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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/orders"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/service"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/validation"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/vfd"
	"github.com/rs/zerolog/log"
)

// errorStatus maps an error from the display service to an HTTP status.
func errorStatus(err error) int {
	var vErr *validation.Error
	switch {
	case errors.Is(err, vfd.ErrNotConnected), errors.Is(err, vfd.ErrNoResponsiveRate):
		return http.StatusServiceUnavailable
	case errors.As(err, &vErr),
		errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams),
		errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrAmountTooLarge),
		errors.Is(err, service.ErrUnknownMode),
		errors.Is(err, service.ErrUnknownMelody):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := errorStatus(err)
	ev := log.Warn()
	if code >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("code", code).Msg("api request failed")
	models.WriteError(w, code, err.Error())
}

func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", validation.ErrInvalidParams, err)
	}
	return body, nil
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ShowWelcome(r.Context()); err != nil {
		writeErr(w, r, err)
		return
	}
	models.WriteSuccess(w, "Welcome message displayed", nil)
}

func (s *Server) handleReceiveOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if len(body) == 0 {
		writeErr(w, r, validation.ErrMissingParams)
		return
	}

	var items []orders.Item
	if err := json.Unmarshal(body, &items); err != nil {
		writeErr(w, r, fmt.Errorf("%w: %w", validation.ErrInvalidParams, err))
		return
	}
	log.Info().Int("items", len(items)).Msg("received order")

	if err := s.svc.ShowOrder(r.Context(), items); err != nil {
		writeErr(w, r, err)
		return
	}
	models.WriteSuccess(w, "Order displayed", nil)
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	var params models.DisplayParams
	if err := validation.ValidateAndUnmarshal(body, &params); err != nil {
		writeErr(w, r, err)
		return
	}

	req := service.TextRequest{
		Text:           params.Text,
		Mode:           service.Mode(params.Mode),
		ScrollAllLines: params.ScrollAllLines,
	}
	if params.Speed != "" {
		// already checked by the duration validator
		req.Speed, _ = time.ParseDuration(params.Speed)
	}

	job, err := s.svc.ShowText(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if job == nil {
		models.WriteSuccess(w, "Text displayed", nil)
		return
	}
	models.WriteSuccess(w, "Scrolling started", models.DisplayResult{
		Job:  job.ID(),
		Kind: string(job.Kind()),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Clear(r.Context()); err != nil {
		writeErr(w, r, err)
		return
	}
	models.WriteSuccess(w, "Display cleared", nil)
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	if !s.svc.StopScroll() {
		models.WriteSuccess(w, "Nothing to stop", nil)
		return
	}
	models.WriteSuccess(w, "Scrolling stopped", nil)
}

func (s *Server) handleMelody(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	var params models.MelodyParams
	if err := validation.ValidateAndUnmarshal(body, &params); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.svc.PlayMelody(r.Context(), params.Name); err != nil {
		writeErr(w, r, err)
		return
	}
	models.WriteSuccess(w, "Melody played", nil)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	models.WriteSuccess(w, "ok", s.svc.Status())
}
