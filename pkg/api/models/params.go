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

package models

// DisplayParams is the body of POST /api/display. Speed is a duration
// string such as "200ms" and overrides the configured scroll speed.
type DisplayParams struct {
	ScrollAllLines *bool  `json:"scroll_all_lines"`
	Text           string `json:"text" validate:"required"`
	Mode           string `json:"mode" validate:"omitempty,oneof=static center scroll loop"`
	Speed          string `json:"speed" validate:"omitempty,scrollspeed"`
}

// MelodyParams is the body of POST /api/melody.
type MelodyParams struct {
	Name string `json:"name" validate:"required,melody"`
}

// DisplayResult is returned when a scroll job was started.
type DisplayResult struct {
	Job  string `json:"job"`
	Kind string `json:"kind"`
}
