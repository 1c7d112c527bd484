// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"fmt"
	"sync"
)

// ConnState describes the state of a spoke's connection to its hub.
type ConnState int

const (
	// Disconnected is the initial state and the state after a teardown.
	Disconnected ConnState = iota

	// Connecting is entered after the handshake was sent.
	Connecting

	// Connected is entered after the hub confirmed the handshake.
	Connected
)

func (cs ConnState) String() string {
	switch cs {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "INVALID"
	}
}

// Connection is the record a spoke keeps for its hub. It is only mutated by the handshake or a teardown.
type Connection struct {
	mutex sync.Mutex

	state ConnState
	peer  string

	// changed is closed and replaced on each transition.
	changed chan struct{}
}

// NewConnection creates a disconnected Connection.
func NewConnection() *Connection {
	return &Connection{
		state:   Disconnected,
		changed: make(chan struct{}),
	}
}

func (c *Connection) transition(state ConnState, peer string) {
	c.state = state
	c.peer = peer

	close(c.changed)
	c.changed = make(chan struct{})
}

// Begin the handshake with a peer, moving from disconnected to connecting.
func (c *Connection) Begin(peer string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != Disconnected {
		return fmt.Errorf("cannot begin handshake with %s in state %v", peer, c.state)
	}

	c.transition(Connecting, peer)
	return nil
}

// Establish the connection after the peer's confirmation, moving from connecting to connected.
func (c *Connection) Establish(peer string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != Connecting {
		return fmt.Errorf("cannot establish connection with %s in state %v", peer, c.state)
	} else if c.peer != peer {
		return fmt.Errorf("confirmation from %s, but handshake was sent to %s", peer, c.peer)
	}

	c.transition(Connected, peer)
	return nil
}

// Reset the connection to disconnected, independent of its current state.
func (c *Connection) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != Disconnected {
		c.transition(Disconnected, "")
	}
}

// State returns the current ConnState.
func (c *Connection) State() ConnState {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.state
}

// Peer returns the peer of the current or pending connection.
func (c *Connection) Peer() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.peer
}

// watch returns the current state and a channel which will be closed on the next transition.
func (c *Connection) watch() (ConnState, <-chan struct{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.state, c.changed
}
