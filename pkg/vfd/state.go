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

import "sync/atomic"

// ConnectionState is where the connection manager is in its lifecycle.
type ConnectionState int32

const (
	// StateDisconnected means no port is open.
	StateDisconnected ConnectionState = iota
	// StateProbing means a candidate baud rate is being tried.
	StateProbing
	// StateConnected means a candidate accepted the probe and the port is
	// ready for display commands.
	StateConnected
	// StateFailed means every candidate rate was tried and none worked.
	StateFailed
)

// String returns a human-readable representation of the connection state
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateProbing:
		return "Probing"
	case StateConnected:
		return "Connected"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsValidTransition checks if transitioning from one state to another is valid
func IsValidTransition(from, to ConnectionState) bool {
	switch from {
	case StateDisconnected:
		return to == StateProbing
	case StateProbing:
		// next candidate, success, exhaustion, or an aborted probe
		return to == StateProbing || to == StateConnected ||
			to == StateFailed || to == StateDisconnected
	case StateConnected:
		// explicit disconnect or the device going away
		return to == StateDisconnected
	case StateFailed:
		// retry, or a disconnect to reset
		return to == StateProbing || to == StateDisconnected
	default:
		return false
	}
}

// StateManager provides thread-safe state management for the connection
type StateManager struct {
	state atomic.Int32
}

// NewStateManager creates a new state manager initialized to StateDisconnected
func NewStateManager() *StateManager {
	sm := &StateManager{}
	sm.state.Store(int32(StateDisconnected))
	return sm
}

// GetState returns the current connection state
func (sm *StateManager) GetState() ConnectionState {
	return ConnectionState(sm.state.Load())
}

// SetState atomically sets the connection state if the transition is valid
func (sm *StateManager) SetState(newState ConnectionState) bool {
	for {
		current := sm.state.Load()
		if !IsValidTransition(ConnectionState(current), newState) {
			return false
		}
		if sm.state.CompareAndSwap(current, int32(newState)) {
			return true
		}
	}
}

// ForceState sets the state without validation. Only for resetting after
// the port was lost underneath us.
func (sm *StateManager) ForceState(newState ConnectionState) {
	sm.state.Store(int32(newState))
}
