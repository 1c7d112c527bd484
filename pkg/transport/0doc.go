// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transport provides the broker-less socket fabric between agents, based on WebSockets.
//
// A Hub binds one listening address and multiplexes its spokes by their identity. Each spoke connects through a
// Connector and registers its identity first, comparable to an identity frame. Afterwards opaque data frames can be
// exchanged. Both implement the Socket interface.
//
// All frames are CBOR arrays of a type code and the frame's content, see frame.go.
package transport
