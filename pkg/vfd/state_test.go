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

package vfd

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Disconnected", StateDisconnected.String())
	assert.Equal(t, "Probing", StateProbing.String())
	assert.Equal(t, "Connected", StateConnected.String())
	assert.Equal(t, "Failed", StateFailed.String())
	assert.Equal(t, "Unknown", ConnectionState(99).String())
}

func TestIsValidTransition(t *testing.T) {
	t.Parallel()

	valid := map[ConnectionState][]ConnectionState{
		StateDisconnected: {StateProbing},
		StateProbing:      {StateProbing, StateConnected, StateFailed, StateDisconnected},
		StateConnected:    {StateDisconnected},
		StateFailed:       {StateProbing, StateDisconnected},
	}
	all := []ConnectionState{StateDisconnected, StateProbing, StateConnected, StateFailed}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, v := range valid[from] {
				if v == to {
					want = true
				}
			}
			assert.Equal(t, want, IsValidTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestStateManager(t *testing.T) {
	t.Parallel()

	sm := NewStateManager()
	assert.Equal(t, StateDisconnected, sm.GetState())

	assert.False(t, sm.SetState(StateConnected), "cannot connect without probing")
	assert.True(t, sm.SetState(StateProbing))
	assert.True(t, sm.SetState(StateConnected))
	assert.False(t, sm.SetState(StateFailed))

	sm.ForceState(StateFailed)
	assert.Equal(t, StateFailed, sm.GetState())
}

func TestStateManager_Concurrent(t *testing.T) {
	t.Parallel()

	sm := NewStateManager()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sm.SetState(StateProbing) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Probing -> Probing is allowed, so every caller wins.
	assert.Equal(t, 16, wins)
	assert.Equal(t, StateProbing, sm.GetState())
}
