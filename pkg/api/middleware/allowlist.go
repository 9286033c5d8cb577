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

package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/api/models"
	"github.com/rs/zerolog/log"
)

// LANKeyword in allowed_ips admits loopback, private and link-local
// clients, i.e. tills on the shop network.
const LANKeyword = "lan"

// ParseRemoteIP returns the client address of a request's RemoteAddr,
// with or without a port. IPv4-mapped IPv6 addresses are unmapped. The
// result is invalid when the address can't be parsed.
func ParseRemoteIP(remoteAddr string) netip.Addr {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().Unmap()
	}
	addr, err := netip.ParseAddr(strings.Trim(remoteAddr, "[]"))
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}

// clientKey identifies a client for logs and rate limiting.
func clientKey(remoteAddr string) string {
	if addr := ParseRemoteIP(remoteAddr); addr.IsValid() {
		return addr.String()
	}
	return remoteAddr
}

// ClientAllowlist decides which clients may drive the display. An empty
// allowlist admits everyone.
type ClientAllowlist struct {
	prefixes   []netip.Prefix
	lan        bool
	restricted bool
}

// NewClientAllowlist builds an allowlist from allowed_ips entries: single
// addresses (a trailing port is ignored), CIDR prefixes and the "lan"
// keyword. Bad entries are logged and skipped; a list of only bad entries
// refuses every client.
func NewClientAllowlist(entries []string) *ClientAllowlist {
	al := &ClientAllowlist{restricted: len(entries) > 0}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.EqualFold(entry, LANKeyword) {
			al.lan = true
			continue
		}
		prefix, ok := parseEntry(entry)
		if !ok {
			log.Warn().Str("entry", entry).Msg("api: invalid allowed_ips entry, skipping")
			continue
		}
		al.prefixes = append(al.prefixes, prefix)
	}
	if al.restricted && !al.lan && len(al.prefixes) == 0 {
		log.Warn().Strs("allowed_ips", entries).Msg("api: no usable allowed_ips entries, all clients will be refused")
	}
	return al
}

func parseEntry(entry string) (netip.Prefix, bool) {
	if prefix, err := netip.ParsePrefix(entry); err == nil {
		return prefix.Masked(), true
	}
	if host, _, err := net.SplitHostPort(entry); err == nil {
		entry = host
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, false
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), true
}

// Open reports whether the allowlist admits every client.
func (al *ClientAllowlist) Open() bool {
	return !al.restricted
}

// Allows reports whether the client at remoteAddr may use the API.
func (al *ClientAllowlist) Allows(remoteAddr string) bool {
	if al.Open() {
		return true
	}
	addr := ParseRemoteIP(remoteAddr)
	if !addr.IsValid() {
		return false
	}
	if al.lan && (addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast()) {
		return true
	}
	for _, p := range al.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// AllowClients answers 403 to clients the allowlist refuses.
func AllowClients(al *ClientAllowlist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !al.Allows(r.RemoteAddr) {
				log.Debug().
					Str("client", clientKey(r.RemoteAddr)).
					Str("path", r.URL.Path).
					Msg("api: client not in allowed_ips")
				models.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
