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

package helpers

import (
	"cmp"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialDevice is a serial port that could have a display attached.
type SerialDevice struct {
	Name    string
	VID     string
	PID     string
	Product string
	USB     bool
}

func (d SerialDevice) String() string {
	if !d.USB {
		return d.Name
	}
	s := fmt.Sprintf("%s (%s:%s)", d.Name, strings.ToLower(d.VID), strings.ToLower(d.PID))
	if d.Product != "" {
		s += " " + d.Product
	}
	return s
}

// isCandidatePort filters out ports no customer display is plugged into,
// such as Bluetooth and debug consoles.
func isCandidatePort(name, goos string) bool {
	switch goos {
	case "linux":
		for _, prefix := range []string{"/dev/ttyUSB", "/dev/ttyACM", "/dev/ttyS", "/dev/ttyAMA"} {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
		return false
	case "darwin":
		return strings.HasPrefix(name, "/dev/tty.usbserial") ||
			strings.HasPrefix(name, "/dev/tty.usbmodem")
	case "windows":
		return strings.HasPrefix(name, "COM")
	default:
		return true
	}
}

func filterSerialDevices(ports []*enumerator.PortDetails, goos string) []SerialDevice {
	devices := make([]SerialDevice, 0, len(ports))
	for _, p := range ports {
		if p == nil || !isCandidatePort(p.Name, goos) {
			continue
		}
		devices = append(devices, SerialDevice{
			Name:    p.Name,
			USB:     p.IsUSB,
			VID:     p.VID,
			PID:     p.PID,
			Product: p.Product,
		})
	}
	// USB adapters first, they are what a till display is usually on
	slices.SortStableFunc(devices, func(a, b SerialDevice) int {
		if a.USB != b.USB {
			if a.USB {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return devices
}

// GetSerialDeviceList lists serial ports a display may be attached to.
// When detailed enumeration is not supported it falls back to plain names.
func GetSerialDeviceList() ([]SerialDevice, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err == nil {
		return filterSerialDevices(ports, runtime.GOOS), nil
	}
	log.Debug().Err(err).Msg("detailed port list unavailable, using plain list")

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports list: %w", err)
	}
	details := make([]*enumerator.PortDetails, 0, len(names))
	for _, name := range names {
		details = append(details, &enumerator.PortDetails{Name: name})
	}
	return filterSerialDevices(details, runtime.GOOS), nil
}
