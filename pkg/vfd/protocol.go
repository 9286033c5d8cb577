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
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/layout"
)

// Control bytes of the VFD220 / ESC-POS customer display command set.
const (
	ByteBEL byte = 0x07
	ByteFF  byte = 0x0C
	ByteESC byte = 0x1B

	// ESC 'L' n: move cursor to cell n, counted row-major from the top left
	cmdCursor byte = 'L'
	// ESC 'B': sound the buzzer
	cmdBeep byte = 'B'

	// MaxCells is how many cells a single cursor position byte can address.
	MaxCells = 256
)

// ErrOutOfRange is returned for cursor coordinates outside the display.
var ErrOutOfRange = errors.New("cursor position out of range")

// Op identifies a display command.
type Op int

const (
	OpClear Op = iota
	OpMoveCursor
	OpWriteRow
	OpBeep
)

func (o Op) String() string {
	switch o {
	case OpClear:
		return "clear"
	case OpMoveCursor:
		return "move_cursor"
	case OpWriteRow:
		return "write_row"
	case OpBeep:
		return "beep"
	default:
		return "unknown"
	}
}

// Command is a single display operation. Row and Col are used by
// OpMoveCursor and OpWriteRow, Text only by OpWriteRow.
type Command struct {
	Text string
	Op   Op
	Row  int
	Col  int
}

// Encode maps a command to the bytes sent on the wire.
func Encode(g layout.Geometry, cmd Command) ([]byte, error) {
	switch cmd.Op {
	case OpClear:
		return EncodeClear(), nil
	case OpMoveCursor:
		return EncodeMoveCursor(g, cmd.Row, cmd.Col)
	case OpWriteRow:
		return EncodeWriteRow(g, cmd.Row, cmd.Text)
	case OpBeep:
		return EncodeBeep(), nil
	default:
		return nil, fmt.Errorf("unknown display command: %d", cmd.Op)
	}
}

// EncodeClear clears the screen and homes the cursor.
func EncodeClear() []byte {
	return []byte{ByteFF}
}

// EncodeMoveCursor positions the cursor. This is the only place row and
// column bounds are checked.
func EncodeMoveCursor(g layout.Geometry, row, col int) ([]byte, error) {
	if row < 0 || row >= g.Height || col < 0 || col >= g.Width {
		return nil, fmt.Errorf("%w: row %d col %d on %s display", ErrOutOfRange, row, col, g)
	}
	pos := row*g.Width + col
	if pos >= MaxCells {
		return nil, fmt.Errorf("%w: cell %d not addressable", ErrOutOfRange, pos)
	}
	return []byte{ByteESC, cmdCursor, byte(pos)}, nil
}

// EncodeWriteRow moves to the start of row and writes text folded to ASCII
// and fitted to the row width.
func EncodeWriteRow(g layout.Geometry, row int, text string) ([]byte, error) {
	move, err := EncodeMoveCursor(g, row, 0)
	if err != nil {
		return nil, err
	}
	line := layout.Fit(strings.ReplaceAll(layout.Fold(text), "\n", " "), g.Width)
	out := make([]byte, 0, len(move)+len(line))
	out = append(out, move...)
	return append(out, line...), nil
}

// EncodeBeep sounds the buzzer. Both the BEL byte and ESC 'B' are sent
// since firmwares differ on which one they honour. The device takes no
// duration operand, callers wait after sending.
func EncodeBeep() []byte {
	return []byte{ByteBEL, ByteESC, cmdBeep}
}

// EncodeProbe is the command written while probing a baud rate: the
// cursor goes home, nothing on screen changes.
func EncodeProbe() []byte {
	return []byte{ByteESC, cmdCursor, 0}
}
