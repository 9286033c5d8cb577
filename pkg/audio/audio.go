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

// Package audio plays beep melodies on the display's buzzer.
package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Beeper sounds the buzzer once, allowing tests to mock sound output.
// vfd.Display satisfies it.
type Beeper interface {
	Beep() error
}

// Note is a group of beeps followed by a pause.
type Note struct {
	Beeps int
	Pause time.Duration
}

// Melody is a named, fixed beep pattern. NoteDuration is the wait after
// each beep.
type Melody struct {
	Name         string
	Notes        []Note
	NoteDuration time.Duration
}

// Beeps returns the total number of beeps the melody sounds.
func (m Melody) Beeps() int {
	n := 0
	for _, note := range m.Notes {
		n += max(note.Beeps, 0)
	}
	return n
}

const (
	MelodyStartup      = "startup"
	MelodyNotification = "notification"
)

// StartupSong is played once the display comes up.
var StartupSong = Melody{
	Name: MelodyStartup,
	Notes: []Note{
		{Beeps: 1, Pause: 200 * time.Millisecond},
		{Beeps: 2, Pause: 300 * time.Millisecond},
		{Beeps: 3, Pause: 500 * time.Millisecond},
		{Beeps: 1, Pause: 200 * time.Millisecond},
	},
	NoteDuration: 150 * time.Millisecond,
}

// NotificationSong is played when an order arrives.
var NotificationSong = Melody{
	Name: MelodyNotification,
	Notes: []Note{
		{Beeps: 2, Pause: 100 * time.Millisecond},
		{Beeps: 1, Pause: 200 * time.Millisecond},
		{Beeps: 2, Pause: 300 * time.Millisecond},
	},
	NoteDuration: 100 * time.Millisecond,
}

// Lookup returns the preset melody with the given name.
func Lookup(name string) (Melody, bool) {
	switch name {
	case MelodyStartup:
		return StartupSong, true
	case MelodyNotification:
		return NotificationSong, true
	default:
		return Melody{}, false
	}
}

// Names lists the preset melodies.
func Names() []string {
	return []string{MelodyStartup, MelodyNotification}
}

// Sequencer turns notes into timed beeps.
type Sequencer struct {
	beeper Beeper
	clock  clockwork.Clock
}

// NewSequencer returns a sequencer. A nil clock means the real clock.
func NewSequencer(beeper Beeper, clock clockwork.Clock) *Sequencer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sequencer{beeper: beeper, clock: clock}
}

// PlayMelody plays a preset.
func (s *Sequencer) PlayMelody(ctx context.Context, m Melody) error {
	log.Debug().Str("melody", m.Name).Int("beeps", m.Beeps()).Msg("audio: playing melody")
	return s.Play(ctx, m.Notes, m.NoteDuration)
}

// Play sounds each note's beeps, waiting noteDuration after every beep,
// then waits the note's pause. It returns ctx's error if cancelled.
func (s *Sequencer) Play(ctx context.Context, notes []Note, noteDuration time.Duration) error {
	for i, note := range notes {
		for range note.Beeps {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("melody cancelled: %w", err)
			}
			if err := s.beeper.Beep(); err != nil {
				return fmt.Errorf("beep %d: %w", i, err)
			}
			if err := s.wait(ctx, noteDuration); err != nil {
				return err
			}
		}
		if err := s.wait(ctx, note.Pause); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequencer) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("melody cancelled: %w", err)
		}
		return nil
	}
	timer := s.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("melody cancelled: %w", ctx.Err())
	}
}
