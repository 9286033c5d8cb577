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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRate  = 1.0
	testBurst = 5
)

func TestIPRateLimiter_Burst(t *testing.T) {
	t.Parallel()
	limiter := NewIPRateLimiter(testRate, testBurst, nil)

	rl := limiter.GetLimiter("192.168.1.100")
	for i := range testBurst {
		assert.True(t, rl.Allow(), "request %d is within the burst", i+1)
	}
	assert.False(t, rl.Allow(), "burst exhausted")
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	t.Parallel()
	limiter := NewIPRateLimiter(testRate, testBurst, nil)

	rl1 := limiter.GetLimiter("192.168.1.100")
	rl2 := limiter.GetLimiter("192.168.1.101")
	assert.NotSame(t, rl1, rl2)
	assert.Same(t, rl1, limiter.GetLimiter("192.168.1.100"))

	for range testBurst {
		rl1.Allow()
	}
	assert.False(t, rl1.Allow())
	assert.True(t, rl2.Allow())
}

func TestHTTPRateLimitMiddleware(t *testing.T) {
	t.Parallel()
	limiter := NewIPRateLimiter(testRate, testBurst, nil)

	handler := HTTPRateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, testBurst+1)
	for range testBurst + 1 {
		req := httptest.NewRequest(http.MethodPost, "/api/display", http.NoBody)
		req.RemoteAddr = "192.168.1.100:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	for i := range testBurst {
		assert.Equal(t, http.StatusOK, codes[i])
	}
	assert.Equal(t, http.StatusTooManyRequests, codes[testBurst])

	// another client is unaffected
	req := httptest.NewRequest(http.MethodPost, "/api/display", http.NoBody)
	req.RemoteAddr = "[2001:db8::1]:8080"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, limiter.Len())
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	limiter := NewIPRateLimiter(testRate, testBurst, clock)

	limiter.GetLimiter("old.ip")
	clock.Advance(StaleAfter)
	limiter.GetLimiter("new.ip")
	clock.Advance(time.Minute)

	limiter.Cleanup()
	assert.Equal(t, 1, limiter.Len())
	assert.Contains(t, limiter.limiters, "new.ip")
}

func TestIPRateLimiter_StartCleanup(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	limiter := NewIPRateLimiter(testRate, testBurst, clock)
	limiter.GetLimiter("192.168.1.100")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter.StartCleanup(ctx)

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	clock.Advance(StaleAfter + CleanupInterval)
	require.Eventually(t, func() bool { return limiter.Len() == 0 }, 5*time.Second, time.Millisecond)
}
