// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tripmesh/tripmesh-go/pkg/agent"
	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// Config of a Client.
type Config struct {
	// ID of the Client, a new UUID if empty.
	ID string

	// PlannerID is the planner's identity, "planner" if empty.
	PlannerID string

	// PlannerURL is the planner's WebSocket URL.
	PlannerURL string

	// SendTimeout, PollInterval and ReceiveBackoff are passed to the agent.Runtime.
	SendTimeout    time.Duration
	PollInterval   time.Duration
	ReceiveBackoff time.Duration
}

// Client requests trip plans from a planner.
//
// Ping, WaitPlan and Book consume the shared Responses channel and must not be used concurrently.
type Client struct {
	id      string
	planner string
	runtime *agent.Runtime

	responses chan mcp.Envelope

	// conversations maps requested trip ids to their conversation.
	conversations sync.Map
}

// New creates a Client, which needs to be started.
func New(conf Config) *Client {
	if conf.ID == "" {
		conf.ID = uuid.NewString()
	}
	if conf.PlannerID == "" {
		conf.PlannerID = "planner"
	}

	c := &Client{
		id:        conf.ID,
		planner:   conf.PlannerID,
		responses: make(chan mcp.Envelope, 64),
	}

	c.runtime = agent.NewRuntime(agent.Config{
		ID:             conf.ID,
		Role:           agent.Spoke,
		Endpoint:       conf.PlannerURL,
		HubID:          conf.PlannerID,
		PollInterval:   conf.PollInterval,
		ReceiveBackoff: conf.ReceiveBackoff,
		SendTimeout:    conf.SendTimeout,
	}, agent.HandlerFunc(c.handleMessage))

	return c
}

func (c *Client) log() *log.Entry {
	return log.WithField("agent", c.id)
}

// ID of this Client.
func (c *Client) ID() string {
	return c.id
}

// Start connects to the planner.
func (c *Client) Start() error {
	return c.runtime.Start()
}

// Stop disconnects from the planner.
func (c *Client) Stop() error {
	return c.runtime.Stop()
}

// AwaitConnected blocks until the planner confirmed the handshake.
func (c *Client) AwaitConnected(ctx context.Context) error {
	return c.runtime.AwaitConnected(ctx)
}

// Responses of the planner and relayed envelopes of providers.
func (c *Client) Responses() <-chan mcp.Envelope {
	return c.responses
}

func (c *Client) handleMessage(_ agent.Node, env mcp.Envelope) {
	select {
	case c.responses <- env:
	default:
		c.log().WithField("envelope", env).Warn("Dropping envelope, responses are not consumed")
	}
}

// await the next envelope of a conversation. Other envelopes are logged and dropped.
func (c *Client) await(ctx context.Context, conversationID string) (mcp.Envelope, error) {
	for {
		select {
		case <-ctx.Done():
			return mcp.Envelope{}, ctx.Err()

		case env := <-c.responses:
			if env.ConversationID == conversationID {
				return env, nil
			}

			c.log().WithFields(log.Fields{
				"performative": env.Performative,
				"sender":       env.Sender,
				"conversation": env.ConversationID,
			}).Debug("Dropping envelope of another conversation")
		}
	}
}

// Ping the planner with a connection test.
func (c *Client) Ping(ctx context.Context) error {
	test, err := mcp.NewPayloadEnvelope(mcp.Inform, map[string]string{
		"type":   mcp.TypeConnectionTest,
		"status": "ready",
	}, c.id, c.planner)
	if err != nil {
		return err
	}

	if err := c.runtime.Send(test); err != nil {
		return err
	}

	reply, err := c.await(ctx, test.ConversationID)
	if err != nil {
		return fmt.Errorf("awaiting connection test: %w", err)
	}

	var confirmation mcp.Confirmation
	if reply.Performative != mcp.Confirm {
		return fmt.Errorf("connection test was answered by %v", reply.Performative)
	} else if err := reply.Unmarshal(&confirmation); err != nil {
		return err
	} else if confirmation.Status != mcp.StatusConnected {
		return fmt.Errorf("connection test was answered with status %s", confirmation.Status)
	}

	c.log().WithField("message", confirmation.Message).Info("Planner is ready")
	return nil
}

// NewTripRequest creates a TripRequest, identified by its check-in date.
func NewTripRequest(destination, checkIn, checkOut, budget string) mcp.TripRequest {
	return mcp.TripRequest{
		TripID:      "TRIP-" + strings.ReplaceAll(checkIn, "-", ""),
		Destination: destination,
		Dates: mcp.Dates{
			"check_in":  checkIn,
			"check_out": checkOut,
		},
		Preferences: map[string]interface{}{
			"budget":      budget,
			"travel_type": "flexible",
		},
	}
}

// RequestTrip sends a REQUEST to the planner. An empty trip id is derived from the check-in date.
func (c *Client) RequestTrip(req mcp.TripRequest) (mcp.Envelope, error) {
	if req.TripID == "" {
		req.TripID = "TRIP-" + strings.ReplaceAll(req.Dates.Start(), "-", "")
	}

	env, err := mcp.NewPayloadEnvelope(mcp.Request, req, c.id, c.planner)
	if err != nil {
		return mcp.Envelope{}, err
	}

	if err := c.runtime.Send(env); err != nil {
		return mcp.Envelope{}, err
	}

	c.conversations.Store(req.TripID, env.ConversationID)

	c.log().WithFields(log.Fields{
		"trip":        req.TripID,
		"destination": req.Destination,
	}).Info("Sent trip request")
	return env, nil
}

// WaitPlan waits for the plan of a requested trip. A FAILURE is returned as a FailureError.
func (c *Client) WaitPlan(ctx context.Context, tripID string) (plan mcp.Plan, err error) {
	value, ok := c.conversations.Load(tripID)
	if !ok {
		err = ErrUnknownTrip
		return
	}
	conversationID := value.(string)

	for {
		var env mcp.Envelope
		if env, err = c.await(ctx, conversationID); err != nil {
			err = fmt.Errorf("awaiting plan of trip %s: %w", tripID, err)
			return
		}

		switch env.Performative {
		case mcp.Confirm:
			var confirmation mcp.Confirmation
			if env.Unmarshal(&confirmation) == nil {
				c.log().WithFields(log.Fields{
					"trip":    tripID,
					"status":  confirmation.Status,
					"message": confirmation.Message,
				}).Info("Planner confirmed request")
			}

		case mcp.Inform:
			c.conversations.Delete(tripID)
			err = env.Unmarshal(&plan)
			return

		case mcp.Failure:
			c.conversations.Delete(tripID)
			err = newFailureError(env)
			return

		default:
			c.log().WithField("performative", env.Performative).Info("Ignoring unexpected response")
		}
	}
}

// Book a selected offer at a provider. The ACCEPT is relayed by the planner.
func (c *Client) Book(ctx context.Context, provider, tripID string, option mcp.Offer) (confirmation mcp.Confirmation, err error) {
	accept, err := mcp.NewPayloadEnvelope(mcp.Accept, mcp.Acceptance{
		TripID:         tripID,
		SelectedOption: option,
	}, c.id, provider)
	if err != nil {
		return
	}

	if err = c.runtime.Send(accept); err != nil {
		return
	}

	reply, err := c.await(ctx, accept.ConversationID)
	if err != nil {
		err = fmt.Errorf("awaiting booking of trip %s: %w", tripID, err)
		return
	}

	switch reply.Performative {
	case mcp.Confirm:
		err = reply.Unmarshal(&confirmation)
	case mcp.Failure:
		err = newFailureError(reply)
	default:
		err = fmt.Errorf("booking was answered by %v", reply.Performative)
	}
	return
}
