// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mcp implements the Multi-Agent Communication Protocol envelope.
//
// An Envelope is the only unit exchanged between agents. It carries a Performative, the speech act of the message,
// and an opaque content string which itself holds a JSON encoded payload. The payload schemas for each Performative
// are available as Go types in this package, e.g., TripRequest for a REQUEST or Proposal for a PROPOSE.
//
// Envelopes are serialized as JSON objects by Encode and parsed by Decode. Decode only checks the envelope's
// structure; the payload is left to the negotiation layer.
package mcp
