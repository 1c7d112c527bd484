// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mcp

import "errors"

// ErrMalformedEnvelope is matched by every MalformedEnvelopeError using errors.Is.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// MalformedEnvelopeError is returned by Decode for data which cannot be an Envelope.
type MalformedEnvelopeError struct {
	Err error
}

func (mee *MalformedEnvelopeError) Error() string {
	return "malformed envelope: " + mee.Err.Error()
}

func (mee *MalformedEnvelopeError) Unwrap() error {
	return mee.Err
}

// Is allows errors.Is(err, ErrMalformedEnvelope).
func (mee *MalformedEnvelopeError) Is(target error) bool {
	return target == ErrMalformedEnvelope
}
