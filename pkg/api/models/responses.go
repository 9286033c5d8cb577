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

package models

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the body of every API reply.
type Response struct {
	Data    any    `json:"data,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteJSON writes resp with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("error writing response")
	}
}

// WriteSuccess writes a 200 success reply.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{Status: StatusSuccess, Message: message, Data: data})
}

// WriteError writes an error reply with the given status code.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Response{Status: StatusError, Message: message})
}
