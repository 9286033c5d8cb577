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
	"testing"
	"time"
)

// TestLogLevel_NoRecursiveLock guards against LogLevel calling
// DebugLogging while holding the read lock. With -tags=deadlock,
// go-deadlock panics on the recursive lock.
func TestLogLevel_NoRecursiveLock(t *testing.T) {
	t.Parallel()

	cfg := &Instance{}

	done := make(chan struct{})
	go func() {
		_ = cfg.LogLevel()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("LogLevel() deadlocked")
	}
}

// TestAccessors_ConcurrentAccess reads while another goroutine writes.
func TestAccessors_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cfg := &Instance{}

	done := make(chan struct{})
	for i := range 10 {
		go func() {
			for range 100 {
				if i%2 == 0 {
					cfg.SetDisplayPort("/dev/ttyUSB0")
					cfg.SetDebugLogging(true)
				}
				_ = cfg.DisplayPort()
				_ = cfg.LogLevel()
				_ = cfg.Geometry()
				_ = cfg.APIListen()
			}
			done <- struct{}{}
		}()
	}

	for range 10 {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent access deadlocked")
		}
	}
}
