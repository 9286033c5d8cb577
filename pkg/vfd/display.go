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

package vfd

import (
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/layout"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Display is the text-level interface to a connected display. Every
// operation fails with ErrNotConnected while the Conn is down.
type Display struct {
	conn      *Conn
	clock     clockwork.Clock
	geom      layout.Geometry
	lineDelay time.Duration
}

// DisplayOption configures a Display.
type DisplayOption func(*Display)

// WithLineDelay sets the pause before each row written by ShowLines. Slow
// firmwares drop bytes when a clear is followed immediately by text.
func WithLineDelay(delay time.Duration) DisplayOption {
	return func(d *Display) {
		d.lineDelay = delay
	}
}

// WithClock replaces the real clock, for tests.
func WithClock(clock clockwork.Clock) DisplayOption {
	return func(d *Display) {
		d.clock = clock
	}
}

// NewDisplay wraps conn for a display of the given geometry.
func NewDisplay(conn *Conn, geom layout.Geometry, opts ...DisplayOption) (*Display, error) {
	if geom.Width <= 0 || geom.Height <= 0 {
		return nil, fmt.Errorf("%w: %s", layout.ErrInvalidGeometry, geom)
	}
	if geom.Width*geom.Height > MaxCells {
		return nil, fmt.Errorf("%w: %s has more than %d cells", layout.ErrInvalidGeometry, geom, MaxCells)
	}
	d := &Display{
		conn:  conn,
		geom:  geom,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Geometry returns the display size.
func (d *Display) Geometry() layout.Geometry {
	return d.geom
}

// Conn returns the underlying connection.
func (d *Display) Conn() *Conn {
	return d.conn
}

func (d *Display) send(cmd Command) error {
	if !d.conn.Connected() {
		return ErrNotConnected
	}
	data, err := Encode(d.geom, cmd)
	if err != nil {
		return err
	}
	if err := d.conn.Write(data); err != nil {
		return fmt.Errorf("%s: %w", cmd.Op, err)
	}
	return nil
}

// Clear blanks the screen.
func (d *Display) Clear() error {
	return d.send(Command{Op: OpClear})
}

// MoveCursor positions the cursor at row, col.
func (d *Display) MoveCursor(row, col int) error {
	return d.send(Command{Op: OpMoveCursor, Row: row, Col: col})
}

// WriteRow replaces the content of one row.
func (d *Display) WriteRow(row int, text string) error {
	return d.send(Command{Op: OpWriteRow, Row: row, Text: text})
}

// Beep sounds the buzzer once.
func (d *Display) Beep() error {
	return d.send(Command{Op: OpBeep})
}

// SendText writes text at the cursor, padded to the row width. Text longer
// than a row runs on into the next one the way the firmware wraps it.
func (d *Display) SendText(text string) error {
	if !d.conn.Connected() {
		return ErrNotConnected
	}
	folded := strings.ReplaceAll(layout.Fold(text), "\n", " ")
	if layout.Len(folded) < d.geom.Width {
		folded = layout.Fit(folded, d.geom.Width)
	}
	if err := d.conn.Write([]byte(folded)); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	log.Debug().Str("text", folded).Msg("vfd: sent text")
	return nil
}

// ShowBuffer clears the screen and writes every row of buf.
func (d *Display) ShowBuffer(buf layout.Buffer) error {
	if err := d.Clear(); err != nil {
		return err
	}
	for row, line := range buf {
		if d.lineDelay > 0 {
			d.clock.Sleep(d.lineDelay)
		}
		if err := d.WriteRow(row, line); err != nil {
			return err
		}
	}
	log.Debug().Strs("rows", buf).Msg("vfd: displayed buffer")
	return nil
}

// ShowLines displays one line per row, left aligned.
func (d *Display) ShowLines(lines []string) error {
	return d.ShowBuffer(layout.FromLines(lines, d.geom))
}

// ShowStatic displays text split on newlines, left aligned.
func (d *Display) ShowStatic(text string) error {
	return d.ShowBuffer(layout.Layout(layout.Fold(text), d.geom))
}

// ShowCentered displays text split on newlines with every line centered.
func (d *Display) ShowCentered(text string) error {
	return d.ShowBuffer(layout.LayoutCentered(layout.Fold(text), d.geom))
}
