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

// Package vfd talks to VFD220-style character displays over a serial link:
// baud rate detection, the command encoding and a display facade.
package vfd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoResponsiveRate means every candidate baud rate failed to open or
	// to take the probe command.
	ErrNoResponsiveRate = errors.New("no responsive baud rate")
	// ErrNotConnected is returned by display operations while no
	// connection is up.
	ErrNotConnected = errors.New("display not connected")
)

// DefaultBaudRates are tried in this order when nothing is configured.
var DefaultBaudRates = []int{9600, 2400, 4800, 19200}

// ConnOptions configures a Conn.
type ConnOptions struct {
	Factory PortFactory
	Clock   clockwork.Clock
	// Port is the serial device name, e.g. /dev/ttyUSB0 or COM4.
	Port string
	// BaudRates are tried in order, first success wins.
	BaudRates []int
	// SettleDelay is waited after a successful probe so the display can
	// finish initialising before the first real command.
	SettleDelay time.Duration
}

// Conn owns the serial link to a single display. It finds the baud rate
// the display is set to by trying candidates in order, and serialises all
// writes so commands from different goroutines never interleave.
//
// A successful probe only means the port opened and the probe write
// returned no error. The device never acknowledges anything, so a wrong
// rate that happens to accept writes is indistinguishable from the right
// one.
type Conn struct {
	port    Port
	factory PortFactory
	clock   clockwork.Clock
	state   *StateManager
	name    string
	rates   []int
	settle  time.Duration
	rate    atomic.Int64
	mu      syncutil.Mutex // protects port; held for every write
}

// NewConn creates a disconnected Conn.
func NewConn(opts ConnOptions) *Conn {
	factory := opts.Factory
	if factory == nil {
		factory = DefaultPortFactory
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	rates := slices.Clone(opts.BaudRates)
	if len(rates) == 0 {
		rates = slices.Clone(DefaultBaudRates)
	}
	return &Conn{
		factory: factory,
		clock:   clock,
		state:   NewStateManager(),
		name:    opts.Port,
		rates:   rates,
		settle:  opts.SettleDelay,
	}
}

// Connect probes the candidate baud rates in order and keeps the port open
// at the first one that works. Candidates are tried one at a time, a
// failed candidate's port is closed before the next is opened. If the
// connection is already up it returns the current rate.
func (c *Conn) Connect(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != nil && c.state.GetState() == StateConnected {
		return c.Rate(), nil
	}

	var lastErr error
	for i, rate := range c.rates {
		if err := ctx.Err(); err != nil {
			c.rate.Store(0)
			c.state.ForceState(StateDisconnected)
			return 0, fmt.Errorf("connect cancelled: %w", err)
		}

		c.state.SetState(StateProbing)
		c.rate.Store(int64(rate))
		log.Info().
			Str("port", c.name).
			Int("baud", rate).
			Int("attempt", i+1).
			Msg("vfd: trying baud rate")

		port, err := c.factory(c.name, serialMode(rate))
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Str("port", c.name).Int("baud", rate).Msg("vfd: failed to open port")
			continue
		}

		if err := probe(port); err != nil {
			lastErr = err
			log.Warn().Err(err).Str("port", c.name).Int("baud", rate).Msg("vfd: probe failed")
			if closeErr := port.Close(); closeErr != nil {
				log.Debug().Err(closeErr).Str("port", c.name).Msg("vfd: failed to close port after probe")
			}
			continue
		}

		c.port = port

		if err := c.wait(ctx, c.settle); err != nil {
			c.closeLocked()
			return 0, fmt.Errorf("connect cancelled: %w", err)
		}

		c.state.SetState(StateConnected)
		log.Info().Str("port", c.name).Int("baud", rate).Msg("vfd: display connected")
		return rate, nil
	}

	c.rate.Store(0)
	c.state.SetState(StateFailed)
	log.Error().Str("port", c.name).Ints("baud_rates", c.rates).Msg("vfd: could not open port at any baud rate")
	if lastErr == nil {
		return 0, fmt.Errorf("%w on %s", ErrNoResponsiveRate, c.name)
	}
	return 0, fmt.Errorf("%w on %s: %w", ErrNoResponsiveRate, c.name, lastErr)
}

func probe(port Port) error {
	if _, err := port.Write(EncodeProbe()); err != nil {
		return fmt.Errorf("failed to write probe: %w", err)
	}
	if err := port.Drain(); err != nil {
		return fmt.Errorf("failed to drain probe: %w", err)
	}
	return nil
}

func (c *Conn) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := c.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect closes the port. Calling it on a closed connection is a no-op.
func (c *Conn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		if c.state.GetState() != StateDisconnected {
			c.state.ForceState(StateDisconnected)
		}
		return nil
	}

	c.closeLocked()
	log.Info().Str("port", c.name).Msg("vfd: serial port closed")
	return nil
}

// closeLocked drops the port. Close errors are logged only: the port is
// gone either way.
func (c *Conn) closeLocked() {
	if c.port != nil {
		if err := c.port.Close(); err != nil {
			log.Debug().Err(err).Str("port", c.name).Msg("vfd: error closing port")
		}
		c.port = nil
	}
	c.rate.Store(0)
	c.state.ForceState(StateDisconnected)
}

// Write sends raw bytes to the display. Writes are serialised; a write
// error that means the device disappeared drops the connection.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil || c.state.GetState() != StateConnected {
		return ErrNotConnected
	}

	n, err := c.port.Write(data)
	if err != nil {
		if isDisconnectionError(err) {
			log.Info().Err(err).Str("port", c.name).Msg("vfd: display disconnected - write error")
			c.closeLocked()
		}
		return fmt.Errorf("failed to write to port: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}
	return nil
}

// State returns the current connection state.
func (c *Conn) State() ConnectionState {
	return c.state.GetState()
}

// Connected reports whether display commands can be sent.
func (c *Conn) Connected() bool {
	return c.state.GetState() == StateConnected
}

// Rate returns the baud rate in use, or the candidate being tried while
// probing. It is 0 otherwise.
func (c *Conn) Rate() int {
	return int(c.rate.Load())
}

// Port returns the configured serial device name.
func (c *Conn) Port() string {
	return c.name
}

// BaudRates returns the candidate list in probe order.
func (c *Conn) BaudRates() []int {
	return slices.Clone(c.rates)
}
