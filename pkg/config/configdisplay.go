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

package config

import (
	"slices"
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/layout"
	"github.com/rs/zerolog/log"
)

type Display struct {
	Port          string `toml:"port" validate:"required"`
	SettleDelay   string `toml:"settle_delay" validate:"duration"`
	LineDelay     string `toml:"line_delay" validate:"duration"`
	StartupMelody string `toml:"startup_melody,omitempty" validate:"melody"`
	BaudRates     []int  `toml:"baud_rates" validate:"min=1,dive,gt=0"`
	Width         int    `toml:"width" validate:"gt=0"`
	Height        int    `toml:"height" validate:"gt=0"`
}

type Scroll struct {
	Speed          string `toml:"speed" validate:"duration"`
	ScrollAllLines bool   `toml:"scroll_all_lines"`
}

type Messages struct {
	Welcome  string `toml:"welcome"`
	Currency string `toml:"currency"`
}

func (c *Instance) DisplayPort() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.Port
}

func (c *Instance) SetDisplayPort(port string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.Port = port
}

func (c *Instance) BaudRates() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Display.BaudRates)
}

// Geometry returns the configured display size. It is validated on load,
// not against the cursor addressing limit.
func (c *Instance) Geometry() layout.Geometry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return layout.Geometry{Width: c.vals.Display.Width, Height: c.vals.Display.Height}
}

func (c *Instance) SettleDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("display.settle_delay", c.vals.Display.SettleDelay)
}

func (c *Instance) LineDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("display.line_delay", c.vals.Display.LineDelay)
}

// StartupMelody is the preset played after connecting, empty for none.
func (c *Instance) StartupMelody() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.StartupMelody
}

func (c *Instance) ScrollSpeed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("scroll.speed", c.vals.Scroll.Speed)
}

func (c *Instance) ScrollAllLines() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scroll.ScrollAllLines
}

func (c *Instance) WelcomeMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Messages.Welcome
}

func (c *Instance) Currency() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Messages.Currency
}

// parseDuration reads an already validated duration; an empty value is
// zero.
func parseDuration(key, s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("invalid duration in config")
		return 0
	}
	return d
}
