// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package provider

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tripmesh/tripmesh-go/pkg/agent"
	"github.com/tripmesh/tripmesh-go/pkg/catalog"
	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// Provider is the agent.Handler of a provider role, e.g., travel or hotel.
type Provider struct {
	role   string
	quoter catalog.Quoter
}

// NewProvider for a role, quoting offers from the Quoter.
func NewProvider(role string, quoter catalog.Quoter) *Provider {
	return &Provider{
		role:   role,
		quoter: quoter,
	}
}

// title uppercases the first letter.
func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Role of this Provider.
func (p *Provider) Role() string {
	return p.role
}

// NewBookingID creates a booking id, prefixed by the uppercase role, e.g., "TRAVEL-".
func (p *Provider) NewBookingID() string {
	return fmt.Sprintf("%s-%s", strings.ToUpper(p.role), uuid.NewString())
}

func (p *Provider) log(node agent.Node) *log.Entry {
	return log.WithFields(log.Fields{
		"agent": node.ID(),
		"role":  p.role,
	})
}

func (p *Provider) send(node agent.Node, env mcp.Envelope) {
	if err := node.Send(env); err != nil {
		p.log(node).WithError(err).WithFields(log.Fields{
			"performative": env.Performative,
			"receiver":     env.Receiver,
		}).Warn("Sending errored")
	}
}

// HandleMessage dispatches on the performative.
func (p *Provider) HandleMessage(node agent.Node, env mcp.Envelope) {
	switch env.Performative {
	case mcp.CallForProposals:
		p.handleCallForProposal(node, env)

	case mcp.Accept:
		p.handleAccept(node, env)

	case mcp.Reject:
		p.log(node).WithField("sender", env.Sender).Info("Proposal was rejected")

	default:
		if env.Performative.ExpectsReply() {
			p.log(node).WithFields(log.Fields{
				"performative": env.Performative,
				"sender":       env.Sender,
			}).Info("Rejecting unexpected envelope")

			failure, err := env.ReplyWith(mcp.Failure, mcp.NewFailureReport("", "unexpected %s", env.Performative))
			if err == nil {
				p.send(node, failure)
			}
			return
		}

		p.log(node).WithFields(log.Fields{
			"performative": env.Performative,
			"sender":       env.Sender,
		}).Info("Ignoring unexpected envelope")
	}
}

func (p *Provider) handleCallForProposal(node agent.Node, env mcp.Envelope) {
	var cfp mcp.CallForProposal
	if err := env.Unmarshal(&cfp); err != nil {
		p.log(node).WithError(err).Warn("Received invalid call for proposals")
		p.send(node, env.Reply(mcp.Failure, "Invalid message format"))
		return
	}

	logger := p.log(node).WithFields(log.Fields{
		"trip":        cfp.TripID,
		"destination": cfp.Destination,
	})

	if !node.IsConnected(env.Sender) {
		logger.Warn("Rejecting call for proposals, not connected to its sender")
		failure, err := env.ReplyWith(mcp.Failure, mcp.NewFailureReport(cfp.TripID, "%s agent is not connected", p.role))
		if err == nil {
			p.send(node, failure)
		}
		return
	}

	options := p.quoter.Quote(cfp.Destination, cfp.Dates)
	if options == nil {
		options = []mcp.Offer{}
	}

	proposal, err := env.ReplyWith(mcp.Propose, mcp.Proposal{TripID: cfp.TripID, Options: options})
	if err != nil {
		logger.WithError(err).Warn("Creating proposal errored")
		return
	}

	p.send(node, proposal)
	logger.WithField("offers", len(options)).Info("Sent proposal")
}

func (p *Provider) handleAccept(node agent.Node, env mcp.Envelope) {
	var acceptance mcp.Acceptance
	if err := env.Unmarshal(&acceptance); err != nil {
		p.log(node).WithError(err).Warn("Received invalid acceptance")
		p.send(node, env.Reply(mcp.Failure, "Invalid message format"))
		return
	}

	bookingID := p.NewBookingID()
	confirmation, err := env.ReplyWith(mcp.Confirm, mcp.Confirmation{
		Status:         mcp.StatusBooked,
		Message:        fmt.Sprintf("%s booking confirmed", title(p.role)),
		TripID:         acceptance.TripID,
		BookingID:      bookingID,
		SelectedOption: acceptance.SelectedOption,
	})
	if err != nil {
		p.log(node).WithError(err).Warn("Creating confirmation errored")
		return
	}

	p.send(node, confirmation)
	p.log(node).WithFields(log.Fields{
		"trip":    acceptance.TripID,
		"booking": bookingID,
	}).Info("Confirmed booking")
}
