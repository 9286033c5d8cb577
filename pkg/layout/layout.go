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

// Package layout turns free text into fixed-width rows for a character
// display. Lengths are counted in runes; text meant for the device should
// go through Fold first so that runes and bytes line up.
package layout

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidGeometry is returned for a display with no rows or columns.
var ErrInvalidGeometry = errors.New("invalid display geometry")

// Geometry is the character grid of a display. It is set once when the
// display is configured and never changes afterwards.
type Geometry struct {
	Width  int
	Height int
}

// NewGeometry validates width and height.
func NewGeometry(width, height int) (Geometry, error) {
	if width <= 0 || height <= 0 {
		return Geometry{}, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	return Geometry{Width: width, Height: height}, nil
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// Buffer is a full screen of rows, each exactly Width characters long.
type Buffer []string

// Split breaks text into raw lines on line breaks. A trailing "\r" from
// CRLF input is dropped.
func Split(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Len returns the number of characters in s.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Fit right-pads line with spaces, or truncates it, to exactly width
// characters. Overflow is dropped, never wrapped.
func Fit(line string, width int) string {
	if width <= 0 {
		return ""
	}
	n := Len(line)
	switch {
	case n == width:
		return line
	case n < width:
		return line + strings.Repeat(" ", width-n)
	default:
		return string([]rune(line)[:width])
	}
}

// Center places line in the middle of a width-wide row with
// floor((width-len)/2) leading spaces. Lines that do not fit are
// truncated like Fit.
func Center(line string, width int) string {
	n := Len(line)
	if n >= width {
		return Fit(line, width)
	}
	return Fit(strings.Repeat(" ", (width-n)/2)+line, width)
}

// FromLines builds a buffer from already split lines. Extra lines are
// dropped and missing rows are blank.
func FromLines(lines []string, g Geometry) Buffer {
	return build(lines, g, Fit)
}

// Layout splits text and fits it to the display, left aligned.
func Layout(text string, g Geometry) Buffer {
	return build(Split(text), g, Fit)
}

// LayoutCentered splits text and centers every line on its row.
func LayoutCentered(text string, g Geometry) Buffer {
	return build(Split(text), g, Center)
}

func build(lines []string, g Geometry, fit func(string, int) string) Buffer {
	buf := make(Buffer, g.Height)
	for i := range buf {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		buf[i] = fit(line, g.Width)
	}
	return buf
}

// Fold reduces text to what the display can render: accents are stripped
// ("Prêt" becomes "Pret"), control characters other than newline become
// spaces so they can't be taken for device commands, carriage returns are
// removed, and anything left
// outside printable ASCII becomes '?'.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\r':
			return -1
		case r < 0x20 || r == 0x7F:
			return ' '
		case r > 0x7E:
			return '?'
		default:
			return r
		}
	}, folded)
}
