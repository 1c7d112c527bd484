// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mcp

// Performative is the speech act of an Envelope.
type Performative string

const (
	// Request asks the receiver to perform an action, e.g., to plan a trip.
	Request Performative = "REQUEST"

	// CallForProposals solicits offers from a provider.
	CallForProposals Performative = "CALL_FOR_PROPOSALS"

	// Propose answers a CallForProposals with a list of offers.
	Propose Performative = "PROPOSE"

	// Accept selects one offer of a previous proposal.
	Accept Performative = "ACCEPT"

	// Reject declines a previous proposal.
	Reject Performative = "REJECT"

	// Confirm acknowledges an action, e.g., a started planning or a booking.
	Confirm Performative = "CONFIRM"

	// Inform provides information, e.g., the final plan or a connection handshake.
	Inform Performative = "INFORM"

	// Query asks for information.
	Query Performative = "QUERY"

	// Response answers a Query.
	Response Performative = "RESPONSE"

	// Failure reports an error to the remote party.
	Failure Performative = "FAILURE"

	// Disconfirm revokes a previous confirmation.
	Disconfirm Performative = "DISCONFIRM"
)

// performativeAliases maps alternative wire names to their Performative.
var performativeAliases = map[string]Performative{
	"CFP":             CallForProposals,
	"ACCEPT_PROPOSAL": Accept,
}

// ParsePerformative returns the Performative for a wire name. Unknown names are kept as they are; Valid reports
// whether the result belongs to the closed set of performatives.
func ParsePerformative(s string) Performative {
	if p, ok := performativeAliases[s]; ok {
		return p
	}
	return Performative(s)
}

// Valid checks if this Performative is one of the defined constants.
func (p Performative) Valid() bool {
	switch p {
	case Request, CallForProposals, Propose, Accept, Reject, Confirm,
		Inform, Query, Response, Failure, Disconfirm:
		return true
	default:
		return false
	}
}

// ExpectsReply checks if this Performative asks its receiver for an answer. An unexpected envelope of such a
// Performative should be answered with a Failure.
func (p Performative) ExpectsReply() bool {
	switch p {
	case Request, CallForProposals, Accept, Query:
		return true
	default:
		return false
	}
}

func (p Performative) String() string {
	return string(p)
}
