// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"reflect"
	"testing"
)

func TestConnectionStateMachine(t *testing.T) {
	c := NewConnection()
	if state := c.State(); state != Disconnected {
		t.Fatalf("initial state is %v", state)
	}

	if err := c.Establish("planner"); err == nil {
		t.Fatal("establishing a disconnected connection succeeded")
	}

	if err := c.Begin("planner"); err != nil {
		t.Fatal(err)
	} else if state := c.State(); state != Connecting {
		t.Fatalf("state after Begin is %v", state)
	}

	if err := c.Begin("planner"); err == nil {
		t.Fatal("second Begin succeeded")
	}

	if err := c.Establish("intruder"); err == nil {
		t.Fatal("confirmation from another peer was accepted")
	}

	if err := c.Establish("planner"); err != nil {
		t.Fatal(err)
	} else if state, peer := c.State(), c.Peer(); state != Connected || peer != "planner" {
		t.Fatalf("state after Establish is %v with %s", state, peer)
	}

	c.Reset()
	if state, peer := c.State(), c.Peer(); state != Disconnected || peer != "" {
		t.Fatalf("state after Reset is %v with %q", state, peer)
	}
}

func TestConnectionResetWhileConnecting(t *testing.T) {
	c := NewConnection()
	if err := c.Begin("planner"); err != nil {
		t.Fatal(err)
	}

	state, changed := c.watch()
	if state != Connecting {
		t.Fatalf("watched state is %v", state)
	}

	c.Reset()

	select {
	case <-changed:
	default:
		t.Fatal("watch channel was not closed on Reset")
	}

	if c.State() != Disconnected {
		t.Fatalf("state after Reset is %v", c.State())
	}
}

func TestConnStateString(t *testing.T) {
	tests := map[ConnState]string{
		Disconnected:  "disconnected",
		Connecting:    "connecting",
		Connected:     "connected",
		ConnState(42): "INVALID",
	}

	for state, expected := range tests {
		if s := state.String(); s != expected {
			t.Fatalf("%d: expected %s, got %s", state, expected, s)
		}
	}
}

func TestPeerSet(t *testing.T) {
	ps := NewPeerSet()

	if !ps.Add("travel") || !ps.Add("hotel") {
		t.Fatal("adding new peers failed")
	}
	if ps.Add("travel") {
		t.Fatal("adding a present peer succeeded")
	}

	if peers := ps.List(); !reflect.DeepEqual(peers, []string{"hotel", "travel"}) {
		t.Fatalf("unexpected peers %v", peers)
	}

	if !ps.Remove("travel") || ps.Remove("travel") {
		t.Fatal("removing behaved unexpectedly")
	}
	if ps.Contains("travel") || !ps.Contains("hotel") {
		t.Fatal("Contains does not match the set")
	}

	ps.Clear()
	if peers := ps.List(); len(peers) != 0 {
		t.Fatalf("peers after Clear: %v", peers)
	}
}
