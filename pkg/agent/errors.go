// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"errors"
	"fmt"
)

// ErrNotStarted is returned when sending on a Runtime which is not running.
var ErrNotStarted = errors.New("agent not started")

// Op names the transport operation of a TransportError.
type Op string

const (
	OpBind    Op = "bind"
	OpConnect Op = "connect"
	OpSend    Op = "send"
	OpReceive Op = "receive"
)

// TransportError wraps a failure of the underlying transport.Socket.
type TransportError struct {
	Op   Op
	Addr string
	Err  error
}

func (te *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", te.Op, te.Addr, te.Err)
}

func (te *TransportError) Unwrap() error {
	return te.Err
}

// IsBindError checks if err is a TransportError of a failed bind.
func IsBindError(err error) bool {
	return isOp(err, OpBind)
}

// IsConnectError checks if err is a TransportError of a failed connect.
func IsConnectError(err error) bool {
	return isOp(err, OpConnect)
}

// IsSendError checks if err is a TransportError of a failed send.
func IsSendError(err error) bool {
	return isOp(err, OpSend)
}

func isOp(err error, op Op) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Op == op
}
