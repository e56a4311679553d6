// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"errors"
	"fmt"
)

// APIError is a structured error response from the Discord API.
// Callers use errors.As to branch on the structured code:
//
//	var apiErr *platform.APIError
//	if errors.As(err, &apiErr) && apiErr.Code == platform.CodeUnknownMessage { ... }
type APIError struct {
	// Code is the Discord JSON error code (e.g., 10008 for
	// "Unknown Message").
	Code int `json:"code"`
	// Message is the human-readable description from the API.
	Message string `json:"message"`
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: %d (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Discord JSON error codes warden branches on.
const (
	CodeUnknownMember      = 10007
	CodeUnknownMessage     = 10008
	CodeUnknownRole        = 10011
	CodeUnknownUser        = 10013
	CodeUnknownEmoji       = 10014
	CodeUnknownGuild       = 10004
	CodeMissingAccess      = 50001
	CodeMissingPermissions = 50013
	CodeInvalidFormBody    = 50035
)

// IsAPICode checks whether err is an *APIError with the given code.
func IsAPICode(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is the API saying the referenced
// entity (guild, member, message, role, user, or emoji) doesn't
// exist. Missing-access errors count too: a guild the bot was kicked
// from looks like 50001, not 10004.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case CodeUnknownGuild, CodeUnknownMember, CodeUnknownMessage,
		CodeUnknownRole, CodeUnknownUser, CodeUnknownEmoji,
		CodeMissingAccess:
		return true
	}
	return false
}
