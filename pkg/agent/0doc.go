// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package agent provides the runtime every agent role is built upon.
//
// A Runtime owns one transport.Socket, either as a hub binding a listening address or as a spoke connected to
// a hub. Its receive loop decodes incoming envelopes and dispatches them, one after another, to the role's Handler.
// Thus, a Handler's state is only mutated by this single goroutine and needs no further locking.
//
// Before any negotiation, each spoke performs a handshake with its hub: the spoke sends an INFORM with the content
// type "connect" and becomes connected on the hub's CONFIRM with the type "connected". The hub keeps the set of
// its connected peers. The handshake is handled by the Runtime itself and never reaches a Handler.
package agent
