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

// Package scroll animates text across a fixed size display. A Session
// advances every row on one shared tick and writes the whole frame before
// waiting, so rows never drift apart on a slow link.
package scroll

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/layout"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrSessionUsed is returned when Once or Loop is called on a session
// that has already run.
var ErrSessionUsed = errors.New("scroll session already used")

// Sink receives one row of a frame. vfd.Display satisfies it.
type Sink interface {
	WriteRow(row int, text string) error
}

// Options controls a scroll session.
type Options struct {
	// Speed is the wait after each tick. Zero or negative means no wait.
	Speed time.Duration
	// ScrollAllLines makes rows that already fit scroll too.
	ScrollAllLines bool
}

// State is the lifecycle of a Session.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Engine builds sessions that write to a single sink.
type Engine struct {
	sink  Sink
	clock clockwork.Clock
	geom  layout.Geometry
}

// NewEngine returns an engine for a display of the given geometry. A nil
// clock means the real clock.
func NewEngine(sink Sink, geom layout.Geometry, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{sink: sink, geom: geom, clock: clock}
}

// Geometry returns the display size frames are built for.
func (e *Engine) Geometry() layout.Geometry {
	return e.geom
}

// NewSession prepares text for scrolling. Text is folded to ASCII and
// split on newlines, one line per row; extra lines are dropped.
func (e *Engine) NewSession(text string, opts Options) *Session {
	lines := layout.Split(layout.Fold(text))
	rows := make([]row, e.geom.Height)
	for i := range rows {
		var line []rune
		if i < len(lines) {
			line = []rune(lines[i])
		}
		rows[i] = row{
			text:    line,
			scrolls: opts.ScrollAllLines || len(line) > e.geom.Width,
		}
	}
	return &Session{
		id:     uuid.New().String(),
		engine: e,
		rows:   rows,
		opts:   opts,
	}
}

// ScrollOnce runs a single pass. Cancelling ctx stops it at the next tick.
func (e *Engine) ScrollOnce(ctx context.Context, text string, opts Options) error {
	sess := e.NewSession(text, opts)
	stop := e.bind(ctx, sess)
	defer stop()
	return sess.Once()
}

// ScrollLoop scrolls until ctx is cancelled.
func (e *Engine) ScrollLoop(ctx context.Context, text string, opts Options) error {
	sess := e.NewSession(text, opts)
	stop := e.bind(ctx, sess)
	defer stop()
	return sess.Loop()
}

// bind cancels sess when ctx is done. An already cancelled ctx is applied
// synchronously so not even the first tick runs.
func (*Engine) bind(ctx context.Context, sess *Session) func() bool {
	if ctx.Err() != nil {
		sess.Cancel()
	}
	return context.AfterFunc(ctx, sess.Cancel)
}

type row struct {
	text    []rune
	scrolls bool
}

// Session is one scroll run. It is not reusable; Cancel may be called from
// any goroutine at any time.
type Session struct {
	engine    *Engine
	id        string
	rows      []row
	opts      Options
	ticks     atomic.Int64
	state     atomic.Int32
	cancelled atomic.Bool
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Ticks returns how many frames have been written.
func (s *Session) Ticks() int {
	return int(s.ticks.Load())
}

// Cancel asks the session to stop. It takes effect before the next tick's
// writes; a tick already in progress finishes, including its wait.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

// PassLength is the number of ticks in one pass: the longest scrolling
// row's length, and at least one.
func (s *Session) PassLength() int {
	n := 1
	for _, r := range s.rows {
		if r.scrolls && len(r.text) > n {
			n = len(r.text)
		}
	}
	return n
}

// Frame returns the rows shown at the given tick of a pass.
func (s *Session) Frame(tick int) []string {
	w := s.engine.geom.Width
	out := make([]string, len(s.rows))
	for i, r := range s.rows {
		switch {
		case !r.scrolls:
			out[i] = layout.Fit(string(r.text), w)
		case tick < len(r.text):
			end := min(tick+w, len(r.text))
			out[i] = layout.Fit(string(r.text[tick:end]), w)
		default:
			out[i] = layout.Fit("", w)
		}
	}
	return out
}

// Once runs a single pass and ends Completed, or Cancelled if Cancel was
// observed first. A cancelled run is not an error.
func (s *Session) Once() error {
	if err := s.start("once"); err != nil {
		return err
	}
	cancelled, err := s.pass()
	return s.finish(cancelled, err)
}

// Loop repeats passes until cancelled. It never ends Completed.
func (s *Session) Loop() error {
	if err := s.start("loop"); err != nil {
		return err
	}
	for {
		cancelled, err := s.pass()
		if cancelled || err != nil {
			return s.finish(cancelled, err)
		}
	}
}

func (s *Session) start(mode string) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrSessionUsed
	}
	log.Debug().
		Str("session", s.id).
		Str("mode", mode).
		Int("pass_ticks", s.PassLength()).
		Dur("speed", s.opts.Speed).
		Msg("scroll: session started")
	return nil
}

func (s *Session) finish(cancelled bool, err error) error {
	switch {
	case err != nil:
		s.state.Store(int32(StateFailed))
		log.Warn().Err(err).Str("session", s.id).Int("ticks", s.Ticks()).Msg("scroll: session failed")
		return fmt.Errorf("scroll session %s: %w", s.id, err)
	case cancelled:
		s.state.Store(int32(StateCancelled))
	default:
		s.state.Store(int32(StateCompleted))
	}
	log.Debug().Str("session", s.id).Stringer("state", s.State()).Int("ticks", s.Ticks()).Msg("scroll: session ended")
	return nil
}

// pass runs one pass, reporting whether it stopped on a cancel.
func (s *Session) pass() (bool, error) {
	n := s.PassLength()
	for tick := range n {
		if s.cancelled.Load() {
			return true, nil
		}
		for i, line := range s.Frame(tick) {
			if err := s.engine.sink.WriteRow(i, line); err != nil {
				return false, fmt.Errorf("write row %d at tick %d: %w", i, tick, err)
			}
		}
		s.ticks.Add(1)
		s.wait()
	}
	return false, nil
}

func (s *Session) wait() {
	if s.opts.Speed <= 0 {
		// lets a canceller run even when frames are back to back
		runtime.Gosched()
		return
	}
	s.engine.clock.Sleep(s.opts.Speed)
}
