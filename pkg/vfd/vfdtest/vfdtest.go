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

// Package vfdtest provides an in-memory serial port and a scripted port
// factory for testing code that talks to a display.
package vfdtest

import (
	"errors"
	"slices"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/vfd"
	"go.bug.st/serial"
)

// ErrRejected is what a scripted port returns for a baud rate the fake
// device does not accept.
var ErrRejected = errors.New("vfdtest: rate rejected")

// ErrPortClosed is returned by writes to a closed MockPort.
var ErrPortClosed = errors.New("vfdtest: port closed")

// MockPort is a mock implementation of a serial port for testing.
// Everything written is recorded.
type MockPort struct {
	WriteErr  error
	DrainErr  error
	CloseErr  error
	WriteFunc func(p []byte) (n int, err error)
	writes    [][]byte
	Rate      int
	closed    bool
	mu        syncutil.RWMutex // protects writes, closed
}

// NewMockPort creates a new mock serial port for testing.
func NewMockPort() *MockPort {
	return &MockPort{}
}

// Write records p unless an error is injected or the port is closed.
// WriteFunc, when set, replaces the default behaviour.
func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return 0, ErrPortClosed
	}
	if m.WriteFunc != nil {
		return m.WriteFunc(p)
	}
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}

	m.mu.Lock()
	m.writes = append(m.writes, slices.Clone(p))
	m.mu.Unlock()
	return len(p), nil
}

// Drain implements the Drain method for serial ports.
func (m *MockPort) Drain() error {
	return m.DrainErr
}

// Close marks the port closed.
func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.CloseErr
}

// IsClosed returns true if the port has been closed (thread-safe).
func (m *MockPort) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Writes returns every successful write in order.
func (m *MockPort) Writes() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, len(m.writes))
	for i, w := range m.writes {
		out[i] = slices.Clone(w)
	}
	return out
}

// Written returns all bytes written so far, concatenated.
func (m *MockPort) Written() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []byte
	for _, w := range m.writes {
		out = append(out, w...)
	}
	return out
}

// Reset forgets recorded writes.
func (m *MockPort) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// Factory opens MockPorts and plays a device that only understands some
// baud rates. A rejected rate either fails to open (FailOpen) or opens and
// then fails the probe write.
type Factory struct {
	accept   map[int]bool
	attempts []int
	ports    []*MockPort
	FailOpen bool
	mu       syncutil.Mutex
}

// NewFactory returns a factory whose device accepts the given rates.
func NewFactory(accept ...int) *Factory {
	f := &Factory{accept: make(map[int]bool, len(accept))}
	for _, r := range accept {
		f.accept[r] = true
	}
	return f
}

// Open satisfies vfd.PortFactory.
func (f *Factory) Open(_ string, mode *serial.Mode) (vfd.Port, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts = append(f.attempts, mode.BaudRate)
	ok := f.accept[mode.BaudRate]
	if !ok && f.FailOpen {
		return nil, ErrRejected
	}

	port := NewMockPort()
	port.Rate = mode.BaudRate
	if !ok {
		port.WriteErr = ErrRejected
	}
	f.ports = append(f.ports, port)
	return port, nil
}

// Attempts lists the baud rates Open was called with, in order.
func (f *Factory) Attempts() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.attempts)
}

// Ports lists every port handed out, in order.
func (f *Factory) Ports() []*MockPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ports)
}

// Last returns the most recently opened port, or nil.
func (f *Factory) Last() *MockPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ports) == 0 {
		return nil
	}
	return f.ports[len(f.ports)-1]
}
