// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package negotiation

import (
	"sort"
	"testing"

	"github.com/tripmesh/tripmesh-go/pkg/agent"
	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// fakeNode records all sent envelopes instead of transmitting them.
type fakeNode struct {
	id        string
	connected map[string]bool
	sent      []mcp.Envelope
}

func newFakeNode(id string, connected ...string) *fakeNode {
	fn := &fakeNode{id: id, connected: make(map[string]bool)}
	for _, peer := range connected {
		fn.connected[peer] = true
	}
	return fn
}

func (fn *fakeNode) ID() string {
	return fn.id
}

func (fn *fakeNode) Send(env mcp.Envelope) error {
	fn.sent = append(fn.sent, env)
	return nil
}

func (fn *fakeNode) IsConnected(peer string) bool {
	return fn.connected[peer]
}

func (fn *fakeNode) Peers() (peers []string) {
	for peer := range fn.connected {
		peers = append(peers, peer)
	}
	sort.Strings(peers)
	return
}

func (fn *fakeNode) State() agent.ConnState {
	return agent.Connected
}

// take returns and forgets all sent envelopes.
func (fn *fakeNode) take() (sent []mcp.Envelope) {
	sent, fn.sent = fn.sent, nil
	return
}

// sentTo filters envelopes by their receiver.
func sentTo(envs []mcp.Envelope, receiver string) (filtered []mcp.Envelope) {
	for _, env := range envs {
		if env.Receiver == receiver {
			filtered = append(filtered, env)
		}
	}
	return
}

func mustPayload(t *testing.T, performative mcp.Performative, payload interface{}, sender, receiver string) mcp.Envelope {
	env, err := mcp.NewPayloadEnvelope(performative, payload, sender, receiver)
	if err != nil {
		t.Fatal(err)
	}
	return env
}
