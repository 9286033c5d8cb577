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
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// JobKind names what a job does.
type JobKind string

const (
	JobScroll JobKind = "scroll"
	JobLoop   JobKind = "loop"
)

// Job is a display task running on its own goroutine.
type Job struct {
	started time.Time
	err     error
	stop    func()
	done    chan struct{}
	id      string
	kind    JobKind
}

func newJob(id string, kind JobKind, started time.Time, stop func()) *Job {
	return &Job{
		id:      id,
		kind:    kind,
		started: started,
		stop:    stop,
		done:    make(chan struct{}),
	}
}

func (j *Job) run(fn func() error) {
	defer close(j.done)
	j.err = fn()
	if j.err != nil {
		log.Error().Err(j.err).Str("job", j.id).Msg("display job failed")
		return
	}
	log.Debug().Str("job", j.id).Msg("display job finished")
}

func (j *Job) ID() string {
	return j.id
}

func (j *Job) Kind() JobKind {
	return j.kind
}

func (j *Job) Started() time.Time {
	return j.started
}

// Stop asks the job to end. It returns immediately.
func (j *Job) Stop() {
	j.stop()
}

// Done is closed when the job has ended.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Running reports whether the job has not ended yet.
func (j *Job) Running() bool {
	select {
	case <-j.done:
		return false
	default:
		return true
	}
}

// Err is the job's result. Only meaningful after Done is closed.
func (j *Job) Err() error {
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

// Wait blocks until the job ends or ctx is done.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
