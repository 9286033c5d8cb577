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

package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeometry(t *testing.T) {
	t.Parallel()

	g, err := NewGeometry(20, 2)
	require.NoError(t, err)
	assert.Equal(t, Geometry{Width: 20, Height: 2}, g)
	assert.Equal(t, "20x2", g.String())

	for _, bad := range [][2]int{{0, 2}, {20, 0}, {-1, 2}, {20, -4}} {
		_, err := NewGeometry(bad[0], bad[1])
		require.ErrorIs(t, err, ErrInvalidGeometry)
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", ""}, Split("a\r\nb\n"))
	assert.Equal(t, []string{""}, Split(""))
}

func TestFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		line  string
		want  string
		width int
	}{
		{name: "pads short line", line: "Hi", width: 5, want: "Hi   "},
		{name: "exact width", line: "Hello", width: 5, want: "Hello"},
		{name: "truncates long line", line: "Hello World", width: 5, want: "Hello"},
		{name: "empty line", line: "", width: 3, want: "   "},
		{name: "counts runes", line: "héllo!", width: 5, want: "héllo"},
		{name: "zero width", line: "abc", width: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Fit(tt.line, tt.width))
		})
	}
}

func TestCenter(t *testing.T) {
	t.Parallel()

	got := Center("Hi", 20)
	assert.Equal(t, strings.Repeat(" ", 9)+"Hi"+strings.Repeat(" ", 9), got)

	// odd remainder goes to the right
	assert.Equal(t, " abc  ", Center("abc", 6))

	// overflowing lines are truncated, not centered
	assert.Equal(t, "abcdef", Center("abcdefgh", 6))
}

func TestLayout_Scenario(t *testing.T) {
	t.Parallel()

	g := Geometry{Width: 20, Height: 2}
	buf := Layout("Hello World!\nVFD220 Display", g)

	require.Len(t, buf, 2)
	assert.Equal(t, "Hello World!        ", buf[0])
	assert.Equal(t, "VFD220 Display      ", buf[1])
}

func TestLayout_DropsExtraLines(t *testing.T) {
	t.Parallel()

	g := Geometry{Width: 4, Height: 2}
	buf := Layout("one\ntwo\nthree", g)

	assert.Equal(t, Buffer{"one ", "two "}, buf)
}

func TestLayout_FillsMissingRows(t *testing.T) {
	t.Parallel()

	g := Geometry{Width: 4, Height: 3}
	buf := Layout("only", g)

	assert.Equal(t, Buffer{"only", "    ", "    "}, buf)
}

func TestLayoutCentered(t *testing.T) {
	t.Parallel()

	g := Geometry{Width: 20, Height: 2}
	buf := LayoutCentered("CAISSE ILO MARKET\nPret a vous servir !", g)

	assert.Equal(t, " CAISSE ILO MARKET  ", buf[0])
	assert.Equal(t, "Pret a vous servir !", buf[1])
}

func TestFromLines(t *testing.T) {
	t.Parallel()

	g := Geometry{Width: 3, Height: 2}
	assert.Equal(t, Buffer{"ab ", "   "}, FromLines([]string{"ab"}, g))
	assert.Equal(t, Buffer{"abc", "def"}, FromLines([]string{"abcd", "defg", "hij"}, g))
}

func TestFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii untouched", in: "TOTAL = 45 000 Ar", want: "TOTAL = 45 000 Ar"},
		{name: "french accents", in: "Prêt à vous servir", want: "Pret a vous servir"},
		{name: "keeps newline", in: "a\nb", want: "a\nb"},
		{name: "drops carriage return", in: "a\r\nb", want: "a\nb"},
		{name: "control bytes become spaces", in: "a\x0cb\x1bc\td", want: "a b c d"},
		{name: "unmappable symbols", in: "5€", want: "5?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}
