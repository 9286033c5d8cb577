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

package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// messages maps a validator tag to its message. Verbs are indexed:
// %[1]s is the field path, %[2]s the tag parameter and %[3]v the value.
var messages = map[string]string{
	"required":    "%[1]s is required",
	"duration":    "%[1]s must be a valid duration (e.g., 500ms)",
	"scrollspeed": "%[1]s must be a duration between 1ms and 10s",
	"melody":      "melody %[3]q not found",
	"listenaddr":  "%[1]s must be a host:port address",
	"oneof":       "%[1]s must be one of: %[2]s",
	"min":         "%[1]s must be at least %[2]s",
	"max":         "%[1]s must be at most %[2]s",
	"gt":          "%[1]s must be greater than %[2]s",
	"gte":         "%[1]s must be greater than or equal to %[2]s",
	"lt":          "%[1]s must be less than %[2]s",
	"lte":         "%[1]s must be less than or equal to %[2]s",
}

// Error lists every field that failed validation. It maps to a 400 in the
// HTTP API.
type Error struct {
	Fields []FieldError
}

// FieldError is one failed check. Field is the wire name of the field and
// Path locates it inside the validated value, e.g. "display.width" or
// "[1].price".
type FieldError struct {
	Value   any
	Field   string
	Path    string
	Tag     string
	Param   string
	Message string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// NewError converts validator output into an Error.
func NewError(errs validator.ValidationErrors) *Error {
	out := &Error{Fields: make([]FieldError, 0, len(errs))}
	for _, fe := range errs {
		path := fieldPath(fe.Namespace())
		out.Fields = append(out.Fields, FieldError{
			Value:   fe.Value(),
			Field:   fe.Field(),
			Path:    path,
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(path, fe.Tag(), fe.Param(), fe.Value()),
		})
	}
	return out
}

// fieldPath drops the root struct name from a namespace and lowercases
// the rest. Slice namespaces start with an index and are kept whole.
func fieldPath(ns string) string {
	if !strings.HasPrefix(ns, "[") {
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
	}
	return strings.ToLower(ns)
}

func message(path, tag, param string, value any) string {
	format, ok := messages[tag]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", path, tag)
	}
	return fmt.Sprintf(format, path, param, value)
}
