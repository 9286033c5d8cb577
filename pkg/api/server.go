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

// Package api serves the customer display over HTTP. Every reply is a JSON
// object with a status and a message, as the till software expects.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/api/middleware"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/config"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/orders"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

const (
	RequestTimeout    = 30 * time.Second
	ShutdownTimeout   = 5 * time.Second
	ReadHeaderTimeout = 10 * time.Second
	// MaxRequestSize caps request bodies.
	MaxRequestSize = 64 * 1024
)

var defaultOrigins = []string{"https://*", "http://*"}

// Display is the part of the display service the API drives.
type Display interface {
	ShowWelcome(ctx context.Context) error
	ShowOrder(ctx context.Context, items []orders.Item) error
	ShowText(ctx context.Context, req service.TextRequest) (*service.Job, error)
	Clear(ctx context.Context) error
	StopScroll() bool
	PlayMelody(ctx context.Context, name string) error
	Status() service.Status
}

// Server routes HTTP requests to a Display.
type Server struct {
	svc     Display
	limiter *middleware.IPRateLimiter
	handler http.Handler
}

// NewServer builds the router from the [api] config section.
func NewServer(cfg *config.Instance, svc Display) *Server {
	perSecond, burst := cfg.RateLimit()
	s := &Server{
		svc:     svc,
		limiter: middleware.NewIPRateLimiter(perSecond, burst, nil),
	}

	origins := cfg.AllowedOrigins()
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(chimiddleware.Timeout(RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowClients(middleware.NewClientAllowlist(cfg.AllowedIPs())))
		r.Use(middleware.HTTPRateLimitMiddleware(s.limiter))

		r.Get("/welcome", s.handleWelcome)
		r.Post("/receive_order", s.handleReceiveOrder)
		r.Post("/display", s.handleDisplay)
		r.Post("/clear", s.handleClear)
		r.Post("/stop", s.handleStop)
		r.Post("/melody", s.handleMelody)
		r.Get("/status", s.handleStatus)
	})

	s.handler = r
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve answers requests on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.limiter.StartCleanup(ctx)

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info().Str("address", ln.Addr().String()).Msg("api server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("api server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Debug().Msg("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down api server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server stopped: %w", err)
	}
	return nil
}

// Start listens on the configured address and serves until ctx is done.
func Start(ctx context.Context, cfg *config.Instance, svc Display) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.APIListen())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.APIListen(), err)
	}
	return NewServer(cfg, svc).Serve(ctx, ln)
}
