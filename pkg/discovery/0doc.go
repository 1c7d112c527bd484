// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package discovery announces and finds planner hubs through UDP multicast packages.
//
// A planner publishes an Announcement of its identity, its port and its WebSocket path. A spoke without a
// configured planner URL can Find the URL of a planner by its identity.
package discovery

const (
	// address4 is the default multicast IPv4 address used for discovery.
	address4 = "224.23.23.42"

	// address6 is the default multicast IPv6 address used for discovery.
	address6 = "ff02::42"

	// port is the default multicast UDP port used for discovery.
	port = 35042
)
