// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"sort"
	"sync"
)

// PeerSet is a hub's bookkeeping of its connected peers.
type PeerSet struct {
	mutex sync.RWMutex
	peers map[string]struct{}
}

// NewPeerSet creates an empty PeerSet.
func NewPeerSet() *PeerSet {
	return &PeerSet{peers: make(map[string]struct{})}
}

// Add a peer. It returns false if the peer was already present.
func (ps *PeerSet) Add(peer string) bool {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	if _, ok := ps.peers[peer]; ok {
		return false
	}
	ps.peers[peer] = struct{}{}
	return true
}

// Remove a peer. It returns false if the peer was unknown.
func (ps *PeerSet) Remove(peer string) bool {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	if _, ok := ps.peers[peer]; !ok {
		return false
	}
	delete(ps.peers, peer)
	return true
}

// Contains checks if a peer is connected.
func (ps *PeerSet) Contains(peer string) bool {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	_, ok := ps.peers[peer]
	return ok
}

// List all peers, sorted.
func (ps *PeerSet) List() (peers []string) {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	peers = make([]string, 0, len(ps.peers))
	for peer := range ps.peers {
		peers = append(peers, peer)
	}
	sort.Strings(peers)
	return
}

// Clear removes all peers.
func (ps *PeerSet) Clear() {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	ps.peers = make(map[string]struct{})
}
