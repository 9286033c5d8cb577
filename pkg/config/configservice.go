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

import "slices"

const DefaultAPIListen = "127.0.0.1:8086"

type API struct {
	Listen         string   `toml:"listen" validate:"listenaddr"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
	AllowedIPs     []string `toml:"allowed_ips,omitempty"`
	RateLimit      float64  `toml:"rate_limit,omitempty" validate:"gte=0"`
	RateBurst      int      `toml:"rate_burst,omitempty" validate:"gte=0"`
}

// Request rate defaults per client IP.
const (
	DefaultRateLimit = 20.0
	DefaultRateBurst = 40
)

func (c *Instance) APIListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.API.Listen == "" {
		return DefaultAPIListen
	}
	return c.vals.API.Listen
}

func (c *Instance) SetAPIListen(listen string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.API.Listen = listen
}

// AllowedOrigins lists extra CORS origins. Empty means any origin, which
// is what a till on the local network expects.
func (c *Instance) AllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.API.AllowedOrigins)
}

// AllowedIPs lists client IPs, CIDRs and the "lan" keyword allowed to use
// the API. Empty allows everyone.
func (c *Instance) AllowedIPs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.API.AllowedIPs)
}

// RateLimit returns requests per second and burst allowed per client IP.
func (c *Instance) RateLimit() (float64, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	limit, burst := c.vals.API.RateLimit, c.vals.API.RateBurst
	if limit == 0 {
		limit = DefaultRateLimit
	}
	if burst == 0 {
		burst = DefaultRateBurst
	}
	return limit, burst
}
