// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"errors"
	"fmt"

	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// ErrUnknownTrip is returned when waiting for a trip which was not requested by this Client.
var ErrUnknownTrip = errors.New("trip was not requested by this client")

// FailureError is a FAILURE received from a remote agent.
type FailureError struct {
	Sender  string
	TripID  string
	Message string
}

// newFailureError from a FAILURE's content, which is either a mcp.FailureReport or a plain message.
func newFailureError(env mcp.Envelope) *FailureError {
	var report mcp.FailureReport
	if err := env.Unmarshal(&report); err == nil && report.Message != "" {
		return &FailureError{Sender: env.Sender, TripID: report.TripID, Message: report.Message}
	}
	return &FailureError{Sender: env.Sender, Message: env.Content}
}

func (fe *FailureError) Error() string {
	if fe.TripID != "" {
		return fmt.Sprintf("%s failed trip %s: %s", fe.Sender, fe.TripID, fe.Message)
	}
	return fmt.Sprintf("%s failed: %s", fe.Sender, fe.Message)
}
