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

package service

import (
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/vfd"
)

// JobStatus describes the running job.
type JobStatus struct {
	Started time.Time `json:"started"`
	ID      string    `json:"id"`
	Kind    JobKind   `json:"kind"`
}

// Status is a snapshot of the display and its current job.
type Status struct {
	Job       *JobStatus `json:"job,omitempty"`
	State     string     `json:"state"`
	Port      string     `json:"port"`
	BaudRates []int      `json:"baud_rates"`
	Rate      int        `json:"rate"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Connected bool       `json:"connected"`
}

// Status reports the connection and the running job, if any.
func (s *Service) Status() Status {
	s.mu.Lock()
	job := s.job
	s.mu.Unlock()

	g := s.display.Geometry()
	st := Status{
		State:     s.conn.State().String(),
		Connected: s.conn.State() == vfd.StateConnected,
		Port:      s.conn.Port(),
		Rate:      s.conn.Rate(),
		BaudRates: s.conn.BaudRates(),
		Width:     g.Width,
		Height:    g.Height,
	}
	if job != nil && job.Running() {
		st.Job = &JobStatus{ID: job.ID(), Kind: job.Kind(), Started: job.Started()}
	}
	return st
}
