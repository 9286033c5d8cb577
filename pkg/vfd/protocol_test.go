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
	"testing"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var geom20x2 = layout.Geometry{Width: 20, Height: 2}

func TestEncodeMoveCursor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    []byte
		row     int
		col     int
		wantErr bool
	}{
		{name: "home", row: 0, col: 0, want: []byte{0x1B, 'L', 0}},
		{name: "second row start", row: 1, col: 0, want: []byte{0x1B, 'L', 20}},
		{name: "last cell", row: 1, col: 19, want: []byte{0x1B, 'L', 39}},
		{name: "row past bottom", row: 2, col: 0, wantErr: true},
		{name: "col past right edge", row: 0, col: 20, wantErr: true},
		{name: "negative row", row: -1, col: 0, wantErr: true},
		{name: "negative col", row: 0, col: -3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := EncodeMoveCursor(geom20x2, tt.row, tt.col)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrOutOfRange)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeMoveCursor_UnaddressableCell(t *testing.T) {
	t.Parallel()

	g := layout.Geometry{Width: 40, Height: 8}
	_, err := EncodeMoveCursor(g, 6, 16)
	require.ErrorIs(t, err, ErrOutOfRange)

	got, err := EncodeMoveCursor(g, 6, 15)
	require.NoError(t, err)
	assert.Equal(t, []byte{ByteESC, 'L', 255}, got)
}

func TestEncodeWriteRow(t *testing.T) {
	t.Parallel()

	got, err := EncodeWriteRow(geom20x2, 1, "VFD220 Display")
	require.NoError(t, err)
	want := append([]byte{0x1B, 'L', 20}, []byte("VFD220 Display      ")...)
	assert.Equal(t, want, got)

	got, err = EncodeWriteRow(geom20x2, 0, "Prêt à vous servir tout de suite")
	require.NoError(t, err)
	assert.Equal(t, "Pret a vous servir t", string(got[3:]))

	got, err = EncodeWriteRow(geom20x2, 0, "a\nb\x0c")
	require.NoError(t, err)
	assert.Equal(t, "a b                 ", string(got[3:]), "control bytes never reach the device")

	_, err = EncodeWriteRow(geom20x2, 2, "x")
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestEncodeFixedCommands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0x0C}, EncodeClear())
	assert.Equal(t, []byte{0x07, 0x1B, 0x42}, EncodeBeep())
	assert.Equal(t, []byte{0x1B, 0x4C, 0x00}, EncodeProbe())
}

func TestEncode(t *testing.T) {
	t.Parallel()

	got, err := Encode(geom20x2, Command{Op: OpClear})
	require.NoError(t, err)
	assert.Equal(t, EncodeClear(), got)

	got, err = Encode(geom20x2, Command{Op: OpBeep})
	require.NoError(t, err)
	assert.Equal(t, EncodeBeep(), got)

	got, err = Encode(geom20x2, Command{Op: OpMoveCursor, Row: 1, Col: 4})
	require.NoError(t, err)
	assert.Equal(t, []byte{ByteESC, 'L', 24}, got)

	_, err = Encode(geom20x2, Command{Op: Op(42)})
	require.Error(t, err)
}

func TestOpString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "clear", OpClear.String())
	assert.Equal(t, "move_cursor", OpMoveCursor.String())
	assert.Equal(t, "write_row", OpWriteRow.String())
	assert.Equal(t, "beep", OpBeep.String())
	assert.Equal(t, "unknown", Op(9).String())
}

// TestPropertyWriteRowShape checks every encoded row is a cursor move
// followed by exactly Width printable ASCII bytes.
func TestPropertyWriteRowShape(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 40).Draw(t, "width")
		h := rapid.IntRange(1, MaxCells/w).Draw(t, "height")
		g := layout.Geometry{Width: w, Height: h}
		row := rapid.IntRange(0, h-1).Draw(t, "row")
		text := rapid.String().Draw(t, "text")

		got, err := EncodeWriteRow(g, row, text)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if len(got) != 3+w {
			t.Fatalf("got %d bytes, want %d", len(got), 3+w)
		}
		if got[0] != ByteESC || got[1] != 'L' || int(got[2]) != row*w {
			t.Fatalf("bad cursor prefix %v", got[:3])
		}
		for _, b := range got[3:] {
			if b < 0x20 || b > 0x7E {
				t.Fatalf("non printable byte %#x", b)
			}
		}
	})
}
