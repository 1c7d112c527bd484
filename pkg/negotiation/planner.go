// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package negotiation

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tripmesh/tripmesh-go/pkg/agent"
	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

const (
	// DefaultTripID is used for requests without a trip id.
	DefaultTripID = "default"

	// DefaultDestination is used for requests without a destination.
	DefaultDestination = "Goa"
)

// ProviderRole binds a role within a Plan to a provider agent.
type ProviderRole struct {
	// Role names the provider's slot in a Plan, e.g., "travel".
	Role string

	// Agent is the provider's identity.
	Agent string

	// OptionsType is the discriminator of the CALL_FOR_PROPOSALS sent to this provider.
	OptionsType string
}

// DefaultProviders are a travel and a hotel provider, named after their roles.
var DefaultProviders = []ProviderRole{
	{Role: "travel", Agent: "travel", OptionsType: mcp.TypeTravelOptions},
	{Role: "hotel", Agent: "hotel", OptionsType: mcp.TypeHotelOptions},
}

// PlannerConfig configures a Planner.
type PlannerConfig struct {
	// Providers, DefaultProviders if empty.
	Providers []ProviderRole

	// NegotiationTimeout after which a negotiation without all offers fails. Zero disables this timeout, leaving
	// such a negotiation planning until its providers answer.
	NegotiationTimeout time.Duration
}

// Planner is the agent.Handler of the hub. It must only be used from one Runtime.
type Planner struct {
	providers []ProviderRole
	roles     []string
	byAgent   map[string]ProviderRole
	timeout   time.Duration

	table *Table
	now   func() time.Time
}

// NewPlanner creates a Planner. Each role and agent must be unique and a role must not collide with a Plan's
// own fields.
func NewPlanner(conf PlannerConfig) (*Planner, error) {
	providers := conf.Providers
	if len(providers) == 0 {
		providers = DefaultProviders
	}

	p := &Planner{
		providers: providers,
		byAgent:   make(map[string]ProviderRole),
		timeout:   conf.NegotiationTimeout,
		table:     NewTable(),
		now:       time.Now,
	}

	seenRoles := make(map[string]struct{})
	for _, provider := range providers {
		if provider.Role == "" || provider.Agent == "" || provider.OptionsType == "" {
			return nil, fmt.Errorf("incomplete provider %+v", provider)
		}

		switch provider.Role {
		case "trip_id", "destination", "dates", "status":
			return nil, fmt.Errorf("provider role %q collides with a plan field", provider.Role)
		}

		if _, ok := seenRoles[provider.Role]; ok {
			return nil, fmt.Errorf("provider role %q is configured twice", provider.Role)
		}
		if _, ok := p.byAgent[provider.Agent]; ok {
			return nil, fmt.Errorf("provider agent %q is configured twice", provider.Agent)
		}

		seenRoles[provider.Role] = struct{}{}
		p.byAgent[provider.Agent] = provider
		p.roles = append(p.roles, provider.Role)
	}

	return p, nil
}

// title uppercases the first letter.
func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Roles lists the configured provider roles.
func (p *Planner) Roles() []string {
	return p.roles
}

// InFlight is the amount of negotiations currently planning.
func (p *Planner) InFlight() int {
	return p.table.Len()
}

// reply to an envelope with a payload. Errors are logged, as there is nobody to report them to.
func (p *Planner) reply(node agent.Node, env mcp.Envelope, performative mcp.Performative, payload interface{}) {
	replyEnv, err := env.ReplyWith(performative, payload)
	if err == nil {
		err = node.Send(replyEnv)
	}

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"agent":        node.ID(),
			"performative": performative,
			"receiver":     env.Sender,
		}).Warn("Replying errored")
	}
}

// HandleMessage dispatches on the performative and the content's discriminator.
func (p *Planner) HandleMessage(node agent.Node, env mcp.Envelope) {
	if env.Receiver != node.ID() {
		p.relay(node, env)
		return
	}

	tag, tagErr := mcp.Discriminator(env.Content)

	switch {
	case tagErr == nil && tag == mcp.TypeConnectionTest:
		p.handleConnectionTest(node, env)

	case env.Performative == mcp.Request:
		p.handleRequest(node, env)

	case env.Performative == mcp.Propose:
		p.handlePropose(node, env)

	case env.Performative == mcp.Failure:
		p.handleFailure(node, env)

	case env.Performative.ExpectsReply():
		log.WithFields(log.Fields{
			"agent":        node.ID(),
			"performative": env.Performative,
			"sender":       env.Sender,
			"type":         tag,
		}).Info("Rejecting unexpected envelope")

		p.reply(node, env, mcp.Failure, mcp.NewFailureReport("", "unexpected %s", env.Performative))

	default:
		log.WithFields(log.Fields{
			"agent":        node.ID(),
			"performative": env.Performative,
			"sender":       env.Sender,
			"type":         tag,
		}).Info("Ignoring unexpected envelope")
	}
}

// relay an envelope addressed to another connected peer, e.g., an ACCEPT from a client to a provider.
func (p *Planner) relay(node agent.Node, env mcp.Envelope) {
	logger := log.WithFields(log.Fields{
		"agent":        node.ID(),
		"performative": env.Performative,
		"sender":       env.Sender,
		"receiver":     env.Receiver,
	})

	if !node.IsConnected(env.Receiver) {
		logger.Info("Receiver of relayed envelope is not connected")

		failure := mcp.NewFailureReport("", "%s is not connected", env.Receiver)
		failureEnv, err := mcp.NewPayloadEnvelope(mcp.Failure, failure, node.ID(), env.Sender)
		if err == nil {
			failureEnv.ConversationID = env.ConversationID
			err = node.Send(failureEnv)
		}
		if err != nil {
			logger.WithError(err).Warn("Reporting undeliverable envelope errored")
		}
		return
	}

	if err := node.Send(env); err != nil {
		logger.WithError(err).Warn("Relaying envelope errored")
	} else {
		logger.Debug("Relayed envelope")
	}
}

func (p *Planner) handleConnectionTest(node agent.Node, env mcp.Envelope) {
	log.WithFields(log.Fields{
		"agent":  node.ID(),
		"sender": env.Sender,
	}).Info("Received connection test")

	p.reply(node, env, mcp.Confirm, mcp.Confirmation{
		Status:  mcp.StatusConnected,
		Message: "Planner agent is ready",
	})
}

func (p *Planner) handleRequest(node agent.Node, env mcp.Envelope) {
	logger := log.WithFields(log.Fields{
		"agent":     node.ID(),
		"requester": env.Sender,
	})

	var req mcp.TripRequest
	if err := env.Unmarshal(&req); err != nil {
		logger.WithError(err).Warn("Received invalid trip request")

		failure := env.Reply(mcp.Failure, "Invalid request format. Please provide valid JSON with trip details.")
		if err := node.Send(failure); err != nil {
			logger.WithError(err).Warn("Replying errored")
		}
		return
	}

	if req.TripID == "" {
		req.TripID = DefaultTripID
	}
	if req.Destination == "" {
		req.Destination = DefaultDestination
	}
	if req.Dates == nil {
		req.Dates = mcp.Dates{}
	}

	logger = logger.WithField("trip", req.TripID)

	for _, provider := range p.providers {
		if !node.IsConnected(provider.Agent) {
			logger.WithField("provider", provider.Agent).Warn("Rejecting trip request, provider is not connected")

			p.reply(node, env, mcp.Failure, mcp.NewFailureReport(req.TripID,
				"%s agent %s is not connected", title(provider.Role), provider.Agent))
			return
		}
	}

	record := NewRecord(req.TripID, req.Destination, req.Dates, env, p.now())
	if err := p.table.Register(record); err != nil {
		logger.WithError(err).Warn("Rejecting trip request")

		p.reply(node, env, mcp.Failure, mcp.NewFailureReport(req.TripID, "Trip %s: %v", req.TripID, err))
		return
	}

	for _, provider := range p.providers {
		cfp, err := mcp.NewPayloadEnvelope(mcp.CallForProposals, mcp.CallForProposal{
			TripID:      req.TripID,
			Destination: req.Destination,
			Dates:       req.Dates,
			Type:        provider.OptionsType,
		}, node.ID(), provider.Agent)
		if err == nil {
			err = node.Send(cfp)
		}

		if err != nil {
			logger.WithError(err).WithField("provider", provider.Agent).Warn("Sending call for proposals errored")
		} else {
			logger.WithField("provider", provider.Agent).Debug("Sent call for proposals")
		}
	}

	p.reply(node, env, mcp.Confirm, mcp.Confirmation{
		Status:  mcp.StatusPlanningStarted,
		TripID:  req.TripID,
		Message: fmt.Sprintf("Planning your trip to %s", req.Destination),
	})

	logger.WithField("destination", req.Destination).Info("Started planning trip")
}

func (p *Planner) handlePropose(node agent.Node, env mcp.Envelope) {
	logger := log.WithFields(log.Fields{
		"agent":    node.ID(),
		"provider": env.Sender,
	})

	provider, ok := p.byAgent[env.Sender]
	if !ok {
		logger.Warn("Dropping proposal of an unknown provider")
		return
	}

	var proposal mcp.Proposal
	if err := env.Unmarshal(&proposal); err != nil {
		logger.WithError(err).Warn("Dropping invalid proposal")
		return
	}

	logger = logger.WithField("trip", proposal.TripID)

	record, ok := p.table.Lookup(proposal.TripID)
	if !ok {
		logger.Debug("Dropping proposal of an unknown trip")
		return
	}

	record.Store(provider.Role, proposal.Options)
	logger.WithField("offers", len(proposal.Options)).Info("Stored proposal")

	if record.Filled(p.roles) {
		p.complete(node, record)
	}
}

// complete a filled Record by sending its Plan to the requester.
func (p *Planner) complete(node agent.Node, record *Record) {
	logger := log.WithFields(log.Fields{
		"agent":     node.ID(),
		"trip":      record.TripID,
		"requester": record.Requester,
	})

	record.Status = Completed
	p.table.Remove(record.TripID)

	plan, err := record.Request.ReplyWith(mcp.Inform, CreatePlan(record, p.roles))
	if err == nil {
		err = node.Send(plan)
	}

	if err != nil {
		logger.WithError(err).Warn("Sending trip plan errored")
	} else {
		logger.Info("Sent trip plan")
	}
}

func (p *Planner) handleFailure(node agent.Node, env mcp.Envelope) {
	logger := log.WithFields(log.Fields{
		"agent":  node.ID(),
		"sender": env.Sender,
	})

	var report mcp.FailureReport
	if err := env.Unmarshal(&report); err != nil {
		logger.WithField("content", env.Content).Warn("Received failure")
		return
	}

	logger.WithFields(log.Fields{
		"trip":    report.TripID,
		"message": report.Message,
	}).Warn("Received failure")
}

// Tick fails all negotiations exceeding the negotiation timeout.
func (p *Planner) Tick(node agent.Node, now time.Time) {
	if p.timeout <= 0 {
		return
	}

	for _, record := range p.table.Expired(now, p.timeout) {
		missing := record.Missing(p.roles)

		record.Status = Failed
		p.table.Remove(record.TripID)

		log.WithFields(log.Fields{
			"agent":   node.ID(),
			"trip":    record.TripID,
			"missing": missing,
		}).Warn("Negotiation timed out")

		p.reply(node, record.Request, mcp.Failure, mcp.NewFailureReport(record.TripID,
			"Negotiation timed out after %v without offers of %s", p.timeout, strings.Join(missing, ", ")))
	}
}
