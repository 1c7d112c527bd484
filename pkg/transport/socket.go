// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"errors"
	"time"
)

var (
	// ErrWouldBlock is returned by Receive if no Delivery arrived within the timeout.
	ErrWouldBlock = errors.New("no delivery available")

	// ErrClosed is returned by a closed Socket.
	ErrClosed = errors.New("socket is closed")

	// ErrUnknownPeer is returned by a Hub's Send for an identity without a registered spoke.
	ErrUnknownPeer = errors.New("no peer registered for this identity")
)

// Event describes the kind of a Delivery.
type Event uint

const (
	// DataReceived is a Delivery carrying data from a peer.
	DataReceived Event = iota

	// PeerLeft reports that a registered peer's connection was closed.
	PeerLeft
)

func (e Event) String() string {
	switch e {
	case DataReceived:
		return "data received"
	case PeerLeft:
		return "peer left"
	default:
		return "unknown event"
	}
}

// Delivery is an incoming event of a Socket.
type Delivery struct {
	Event Event

	// Peer is the identity of the remote side. A Connector reports its Hub's URL.
	Peer string

	Data []byte
}

// Socket is the common interface of a Hub and a Connector.
type Socket interface {
	// Send data to the peer. A Hub requires the peer's identity, a Connector ignores it.
	Send(peer string, data []byte) error

	// Receive the next Delivery. ErrWouldBlock is returned if nothing arrived within the timeout.
	Receive(timeout time.Duration) (Delivery, error)

	// Close this Socket. Closing twice is allowed.
	Close() error
}

// receive is a shared Receive implementation for an inbox channel and a channel closed with its Socket.
func receive(inbox <-chan Delivery, closed <-chan struct{}, timeout time.Duration) (Delivery, error) {
	// Pending deliveries are handed out even after the Socket was closed.
	select {
	case d := <-inbox:
		return d, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-closed:
		return Delivery{}, ErrClosed

	case d := <-inbox:
		return d, nil

	case <-timer.C:
		return Delivery{}, ErrWouldBlock
	}
}

// deliver puts a Delivery into an inbox unless its Socket was closed in the meantime.
func deliver(inbox chan<- Delivery, closed <-chan struct{}, d Delivery) bool {
	select {
	case <-closed:
		return false
	case inbox <- d:
		return true
	}
}
