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

	"pgregory.net/rapid"
)

func drawGeometry(t *rapid.T) Geometry {
	return Geometry{
		Width:  rapid.IntRange(1, 40).Draw(t, "width"),
		Height: rapid.IntRange(1, 4).Draw(t, "height"),
	}
}

// TestPropertyLayoutShape verifies every layout has exactly Height rows of
// exactly Width characters.
func TestPropertyLayoutShape(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		g := drawGeometry(t)
		text := rapid.String().Draw(t, "text")

		for _, buf := range []Buffer{Layout(text, g), LayoutCentered(text, g)} {
			if len(buf) != g.Height {
				t.Fatalf("got %d rows, want %d", len(buf), g.Height)
			}
			for i, row := range buf {
				if Len(row) != g.Width {
					t.Fatalf("row %d has %d chars, want %d: %q", i, Len(row), g.Width, row)
				}
			}
		}
	})
}

// TestPropertyLayoutKeepsPrefix verifies rows are truncations of the input
// lines rather than reflowed text.
func TestPropertyLayoutKeepsPrefix(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		g := drawGeometry(t)
		lines := rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z0-9 ]{0,60}`), 0, 8).Draw(t, "lines")

		buf := Layout(strings.Join(lines, "\n"), g)
		for i, row := range buf {
			src := ""
			if i < len(lines) {
				src = lines[i]
			}
			trimmed := strings.TrimRight(row, " ")
			if !strings.HasPrefix(src, trimmed) {
				t.Fatalf("row %d %q is not a prefix of %q", i, row, src)
			}
		}
	})
}

// TestPropertyFoldIsPrintableASCII verifies folded text only contains bytes
// the display renders as glyphs, plus newlines.
func TestPropertyFoldIsPrintableASCII(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := Fold(rapid.String().Draw(t, "text"))
		for i := 0; i < len(s); i++ {
			b := s[i]
			if b != '\n' && (b < 0x20 || b > 0x7E) {
				t.Fatalf("byte %#x at %d in %q", b, i, s)
			}
		}
	})
}
