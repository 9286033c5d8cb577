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

package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/config"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/service"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/vfd"
	"github.com/ZaparooProject/zaparoo-vfd/pkg/vfd/vfdtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDisplayService(t *testing.T, cfg *config.Instance, f *vfdtest.Factory) *service.Service {
	t.Helper()

	svc, err := service.New(cfg, service.WithPortFactory(f.Open))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestServer_OrderOnDisplay(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	f := vfdtest.NewFactory(9600)
	h := NewServer(cfg, newDisplayService(t, cfg, f)).Handler()

	code, _ := do(t, h, http.MethodPost, "/api/receive_order",
		`[{"name":"Biscuit sec","price":1500,"quantity":2},{"name":"Coca","price":2000}]`)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, [][]byte{
		vfd.EncodeProbe(),
		{vfd.ByteFF},
		append([]byte{vfd.ByteESC, 'L', 0}, "Coca : 2 000 Ar     "...),
		append([]byte{vfd.ByteESC, 'L', 20}, "TOTAL = 5 000 Ar    "...),
	}, f.Last().Writes())

	code, resp := do(t, h, http.MethodPost, "/api/receive_order", `[]`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "order has no items", resp.Message)

	code, resp = do(t, h, http.MethodPost, "/api/receive_order", `[{"price":10}]`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "name is required")
}

func TestServer_NoDevice(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	h := NewServer(cfg, newDisplayService(t, cfg, vfdtest.NewFactory())).Handler()

	code, resp := do(t, h, http.MethodGet, "/api/welcome", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, models.StatusError, resp.Status)
}

func TestServer_ScrollAndStop(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	f := vfdtest.NewFactory(9600)
	h := NewServer(cfg, newDisplayService(t, cfg, f)).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/display",
		jsonBody(t, map[string]any{"text": "Promotion du jour", "mode": "loop", "speed": "1ms", "scroll_all_lines": true}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var started struct {
		Data    models.DisplayResult `json:"data"`
		Message string               `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, "Scrolling started", started.Message)
	assert.Equal(t, "loop", started.Data.Kind)
	assert.NotEmpty(t, started.Data.Job)

	port := f.Last()
	require.Eventually(t, func() bool { return len(port.Writes()) > 4 }, 5*time.Second, time.Millisecond)

	_, resp := do(t, h, http.MethodPost, "/api/stop", "")
	assert.Equal(t, "Scrolling stopped", resp.Message)
	_, resp = do(t, h, http.MethodPost, "/api/stop", "")
	assert.Equal(t, "Nothing to stop", resp.Message)
}

func TestServer_RateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, func(v *config.Values) {
		v.API.RateLimit = 0.001
		v.API.RateBurst = 2
	})
	h := NewServer(cfg, &fakeDisplay{}).Handler()

	for range 2 {
		code, _ := do(t, h, http.MethodGet, "/api/status", "")
		require.Equal(t, http.StatusOK, code)
	}
	code, resp := do(t, h, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "too many requests", resp.Message)
}

func TestServer_AllowedIPs(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, func(v *config.Values) {
		v.API.AllowedIPs = []string{"10.0.0.0/8"}
	})
	fd := &fakeDisplay{}
	h := NewServer(cfg, fd).Handler()

	// httptest requests come from 192.0.2.1
	code, _ := do(t, h, http.MethodGet, "/api/welcome", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Empty(t, fd.calls)
}

func TestServer_CORSPreflight(t *testing.T) {
	t.Parallel()

	h := NewServer(testConfig(t, nil), &fakeDisplay{}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/receive_order", http.NoBody)
	req.Header.Set("Origin", "http://pos.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://pos.local", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	srv := NewServer(cfg, &fakeDisplay{})

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	client := &http.Client{Timeout: 5 * time.Second}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet,
		"http://"+ln.Addr().String()+"/api/status", http.NoBody)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
