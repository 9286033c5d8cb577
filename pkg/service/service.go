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

// Package service owns the display and runs display jobs one at a time.
// The HTTP API and the CLI both go through it.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/audio"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/config"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/layout"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/orders"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/scroll"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/vfd"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultStopTimeout is how long a new request waits for the previous job
// to notice its cancellation.
const DefaultStopTimeout = 2 * time.Second

var (
	ErrUnknownMode   = errors.New("unknown display mode")
	ErrUnknownMelody = errors.New("unknown melody")
)

// Mode is how text is put on the display.
type Mode string

const (
	ModeStatic Mode = "static"
	ModeCenter Mode = "center"
	ModeScroll Mode = "scroll"
	ModeLoop   Mode = "loop"
)

// ParseMode accepts the mode names used by the API and CLI. Empty means
// static.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeStatic:
		return ModeStatic, nil
	case ModeCenter, ModeScroll, ModeLoop:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// TextRequest is a request to show text.
type TextRequest struct {
	// ScrollAllLines overrides the configured policy when set.
	ScrollAllLines *bool
	Text           string
	Mode           Mode
	// Speed overrides the configured scroll speed when non-zero.
	Speed time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithPortFactory replaces the serial port opener, for tests.
func WithPortFactory(f vfd.PortFactory) Option {
	return func(s *Service) {
		s.factory = f
	}
}

// WithClock replaces the real clock used for delays and scroll ticks.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithStopTimeout changes DefaultStopTimeout.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.stopTimeout = d
	}
}

// Service serialises access to one display. Requests take the service
// lock, stop whatever job is running, make sure the display is connected
// and then draw. Long running work (scrolling) runs as a Job on its own
// goroutine and never takes the lock.
type Service struct {
	cfg         *config.Instance
	factory     vfd.PortFactory
	clock       clockwork.Clock
	conn        *vfd.Conn
	display     *vfd.Display
	engine      *scroll.Engine
	seq         *audio.Sequencer
	job         *Job
	stopTimeout time.Duration
	mu          syncutil.Mutex // protects job; serialises requests
}

// New builds a service from the config. Nothing is opened until Start or
// the first request.
func New(cfg *config.Instance, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:         cfg,
		factory:     vfd.DefaultPortFactory,
		clock:       clockwork.NewRealClock(),
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	g := cfg.Geometry()
	geom, err := layout.NewGeometry(g.Width, g.Height)
	if err != nil {
		return nil, err
	}

	s.conn = vfd.NewConn(vfd.ConnOptions{
		Factory:     s.factory,
		Clock:       s.clock,
		Port:        cfg.DisplayPort(),
		BaudRates:   cfg.BaudRates(),
		SettleDelay: cfg.SettleDelay(),
	})
	s.display, err = vfd.NewDisplay(s.conn, geom,
		vfd.WithClock(s.clock),
		vfd.WithLineDelay(cfg.LineDelay()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create display: %w", err)
	}
	s.engine = scroll.NewEngine(s.display, geom, s.clock)
	s.seq = audio.NewSequencer(s.display, s.clock)

	return s, nil
}

// Start connects, shows the welcome message and plays the startup melody
// if one is configured.
func (s *Service) Start(ctx context.Context) error {
	log.Info().
		Str("port", s.conn.Port()).
		Ints("baud_rates", s.conn.BaudRates()).
		Stringer("geometry", s.display.Geometry()).
		Msg("starting display service")

	if err := s.ShowWelcome(ctx); err != nil {
		return err
	}

	if name := s.cfg.StartupMelody(); name != "" {
		if err := s.PlayMelody(ctx, name); err != nil {
			log.Warn().Err(err).Str("melody", name).Msg("startup melody failed")
		}
	}
	return nil
}

// Close stops any running job and closes the port.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopJobLocked()
	if err := s.conn.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect display: %w", err)
	}
	log.Info().Msg("display service stopped")
	return nil
}

// ensureConnectedLocked reconnects if the display dropped or was never
// connected.
func (s *Service) ensureConnectedLocked(ctx context.Context) error {
	if s.conn.Connected() {
		return nil
	}
	log.Info().Stringer("state", s.conn.State()).Msg("display not connected, connecting")
	if _, err := s.conn.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect display: %w", err)
	}
	return nil
}

// prepareLocked stops the running job and connects. Caller must hold mu.
func (s *Service) prepareLocked(ctx context.Context) error {
	s.stopJobLocked()
	return s.ensureConnectedLocked(ctx)
}

// ShowWelcome shows the configured welcome message, centered.
func (s *Service) ShowWelcome(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareLocked(ctx); err != nil {
		return err
	}
	if err := s.display.ShowCentered(s.cfg.WelcomeMessage()); err != nil {
		return fmt.Errorf("failed to show welcome message: %w", err)
	}
	log.Info().Msg("welcome message displayed")
	return nil
}

// ShowOrder shows the last item and the total of an order.
func (s *Service) ShowOrder(ctx context.Context, items []orders.Item) error {
	if err := orders.Validate(items); err != nil {
		return err
	}
	lines := orders.Lines(items, s.cfg.Currency())

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareLocked(ctx); err != nil {
		return err
	}
	if err := s.display.ShowLines(lines); err != nil {
		return fmt.Errorf("failed to show order: %w", err)
	}
	log.Info().Int("items", len(items)).Strs("lines", lines).Msg("order displayed")
	return nil
}

// ShowText shows text in the requested mode. Scroll modes start a job and
// return it; static modes return a nil job.
func (s *Service) ShowText(ctx context.Context, req TextRequest) (*Job, error) {
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	if mode == ModeScroll || mode == ModeLoop {
		opts := scroll.Options{
			Speed:          s.cfg.ScrollSpeed(),
			ScrollAllLines: s.cfg.ScrollAllLines(),
		}
		if req.Speed != 0 {
			opts.Speed = req.Speed
		}
		if req.ScrollAllLines != nil {
			opts.ScrollAllLines = *req.ScrollAllLines
		}
		return s.Scroll(ctx, req.Text, opts, mode == ModeLoop)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareLocked(ctx); err != nil {
		return nil, err
	}
	if mode == ModeCenter {
		err = s.display.ShowCentered(req.Text)
	} else {
		err = s.display.ShowStatic(req.Text)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to show text: %w", err)
	}
	return nil, nil
}

// Scroll starts a scroll job. With loop set it runs until stopped or
// replaced, otherwise for one pass.
func (s *Service) Scroll(ctx context.Context, text string, opts scroll.Options, loop bool) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareLocked(ctx); err != nil {
		return nil, err
	}
	if err := s.display.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear display: %w", err)
	}

	sess := s.engine.NewSession(text, opts)
	kind := JobScroll
	run := sess.Once
	if loop {
		kind = JobLoop
		run = sess.Loop
	}

	job := newJob(sess.ID(), kind, s.clock.Now(), sess.Cancel)
	s.job = job
	go job.run(run)

	log.Info().
		Str("job", job.ID()).
		Str("kind", string(kind)).
		Dur("speed", opts.Speed).
		Bool("scroll_all_lines", opts.ScrollAllLines).
		Msg("scroll job started")
	return job, nil
}

// StopScroll cancels the running job, reporting whether there was one.
func (s *Service) StopScroll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopJobLocked()
}

// Clear stops any job and blanks the display.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareLocked(ctx); err != nil {
		return err
	}
	if err := s.display.Clear(); err != nil {
		return fmt.Errorf("failed to clear display: %w", err)
	}
	return nil
}

// PlayMelody plays a preset and returns when it has finished. A running
// scroll job keeps going; beeps do not touch the screen.
func (s *Service) PlayMelody(ctx context.Context, name string) error {
	m, ok := audio.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMelody, name)
	}

	s.mu.Lock()
	err := s.ensureConnectedLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := s.seq.PlayMelody(ctx, m); err != nil {
		return fmt.Errorf("failed to play melody: %w", err)
	}
	return nil
}

// stopJobLocked cancels the current job and waits for it up to the stop
// timeout. A job that does not stop in time is left to finish on its own.
// It reports whether a job was still running.
func (s *Service) stopJobLocked() bool {
	job := s.job
	if job == nil {
		return false
	}
	s.job = nil

	select {
	case <-job.Done():
		return false
	default:
	}

	job.Stop()
	timer := time.NewTimer(s.stopTimeout)
	defer timer.Stop()
	select {
	case <-job.Done():
		log.Info().Str("job", job.ID()).Msg("stopped previous display job")
	case <-timer.C:
		log.Warn().Str("job", job.ID()).Dur("timeout", s.stopTimeout).
			Msg("previous display job did not stop in time")
	}
	return true
}
