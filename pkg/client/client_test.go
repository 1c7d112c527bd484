// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tripmesh/tripmesh-go/pkg/agent"
	"github.com/tripmesh/tripmesh-go/pkg/catalog"
	"github.com/tripmesh/tripmesh-go/pkg/mcp"
	"github.com/tripmesh/tripmesh-go/pkg/negotiation"
	"github.com/tripmesh/tripmesh-go/pkg/provider"
)

func runtimeConfig(id string, role agent.Role, endpoint string) agent.Config {
	return agent.Config{
		ID:             id,
		Role:           role,
		Endpoint:       endpoint,
		HubID:          "planner",
		PollInterval:   10 * time.Millisecond,
		ReceiveBackoff: 10 * time.Millisecond,
		SendTimeout:    time.Second,
	}
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// startPlanner starts a planner hub and returns its URL.
func startPlanner(t *testing.T) string {
	planner, err := negotiation.NewPlanner(negotiation.PlannerConfig{})
	if err != nil {
		t.Fatal(err)
	}

	hub := agent.NewRuntime(runtimeConfig("planner", agent.Hub, "localhost:0"), planner)
	if err := hub.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = hub.Stop() })

	return hub.URL()
}

// startProvider starts and connects a provider spoke.
func startProvider(t *testing.T, url, role string, quoter catalog.Quoter) {
	spoke := agent.NewRuntime(runtimeConfig(role, agent.Spoke, url), provider.NewProvider(role, quoter))
	if err := spoke.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = spoke.Stop() })

	if err := spoke.AwaitConnected(testContext(t)); err != nil {
		t.Fatal(err)
	}
}

func startClient(t *testing.T, url string) *Client {
	c := New(Config{
		PlannerURL:     url,
		PollInterval:   10 * time.Millisecond,
		ReceiveBackoff: 10 * time.Millisecond,
	})
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Stop() })

	if err := c.AwaitConnected(testContext(t)); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewTripRequest(t *testing.T) {
	req := NewTripRequest("Goa", "2024-04-01", "2024-04-07", "mid-range")

	if req.TripID != "TRIP-20240401" {
		t.Fatalf("unexpected trip id %s", req.TripID)
	} else if req.Dates.Start() != "2024-04-01" || req.Dates.End() != "2024-04-07" {
		t.Fatalf("unexpected dates %v", req.Dates)
	} else if req.Preferences["budget"] != "mid-range" || req.Preferences["travel_type"] != "flexible" {
		t.Fatalf("unexpected preferences %v", req.Preferences)
	}
}

func TestClientHappyPath(t *testing.T) {
	log.SetLevel(log.DebugLevel)

	url := startPlanner(t)
	startProvider(t, url, "travel", catalog.DefaultTravelCatalog())
	startProvider(t, url, "hotel", catalog.DefaultHotelCatalog())
	c := startClient(t, url)

	if err := c.Ping(testContext(t)); err != nil {
		t.Fatal(err)
	}

	req := mcp.TripRequest{
		TripID:      "T1",
		Destination: "Goa",
		Dates:       mcp.Dates{"check_in": "2024-04-01", "check_out": "2024-04-07"},
	}
	if _, err := c.RequestTrip(req); err != nil {
		t.Fatal(err)
	}

	plan, err := c.WaitPlan(testContext(t), "T1")
	if err != nil {
		t.Fatal(err)
	}

	if plan.Status != mcp.StatusPlanned || plan.TripID != "T1" || plan.Destination != "Goa" {
		t.Fatalf("unexpected plan %v", plan)
	}

	var travel catalog.TravelOffer
	if err := json.Unmarshal(plan.Slots["travel"], &travel); err != nil {
		t.Fatal(err)
	} else if travel.Airline != "Air India" {
		t.Fatalf("unexpected travel %v", travel)
	}

	var hotel catalog.HotelOffer
	if err := json.Unmarshal(plan.Slots["hotel"], &hotel); err != nil {
		t.Fatal(err)
	} else if hotel.Name != "Taj Exotica" || hotel.TotalPrice != 6*15000 {
		t.Fatalf("unexpected hotel %v", hotel)
	}

	// Book the selected hotel, relayed by the planner.
	confirmation, err := c.Book(testContext(t), "hotel", "T1", plan.Slots["hotel"])
	if err != nil {
		t.Fatal(err)
	} else if confirmation.Status != mcp.StatusBooked || !strings.HasPrefix(confirmation.BookingID, "HOTEL-") {
		t.Fatalf("unexpected confirmation %v", confirmation)
	}
}

func TestClientDisconnectedProvider(t *testing.T) {
	url := startPlanner(t)
	startProvider(t, url, "travel", catalog.DefaultTravelCatalog())
	c := startClient(t, url)

	req := NewTripRequest("Goa", "2024-04-01", "2024-04-07", "mid-range")
	if _, err := c.RequestTrip(req); err != nil {
		t.Fatal(err)
	}

	_, err := c.WaitPlan(testContext(t), req.TripID)

	var failure *FailureError
	if !errors.As(err, &failure) {
		t.Fatalf("expected a FailureError, got %v", err)
	} else if failure.Sender != "planner" || failure.TripID != req.TripID {
		t.Fatalf("unexpected failure %v", failure)
	}
}

func TestClientEmptyOffers(t *testing.T) {
	url := startPlanner(t)
	startProvider(t, url, "travel", catalog.DefaultTravelCatalog())
	startProvider(t, url, "hotel", catalog.QuoterFunc(func(string, mcp.Dates) []mcp.Offer { return nil }))
	c := startClient(t, url)

	req := NewTripRequest("Mumbai", "2024-05-01", "2024-05-03", "luxury")
	if _, err := c.RequestTrip(req); err != nil {
		t.Fatal(err)
	}

	plan, err := c.WaitPlan(testContext(t), req.TripID)
	if err != nil {
		t.Fatal(err)
	}

	var hotel string
	if err := json.Unmarshal(plan.Slots["hotel"], &hotel); err != nil {
		t.Fatal(err)
	} else if hotel != "no hotel options available" {
		t.Fatalf("unexpected hotel slot %q", hotel)
	}
}

func TestClientBookingUnconnectedProvider(t *testing.T) {
	url := startPlanner(t)
	c := startClient(t, url)

	_, err := c.Book(testContext(t), "hotel", "T1", mcp.Offer(`{}`))

	var failure *FailureError
	if !errors.As(err, &failure) {
		t.Fatalf("expected a FailureError, got %v", err)
	}
}

func TestClientWaitUnknownTrip(t *testing.T) {
	c := New(Config{})
	if _, err := c.WaitPlan(context.Background(), "T1"); !errors.Is(err, ErrUnknownTrip) {
		t.Fatalf("expected ErrUnknownTrip, got %v", err)
	}
}

func TestClientNotStarted(t *testing.T) {
	c := New(Config{})

	if _, err := c.RequestTrip(NewTripRequest("Goa", "2024-04-01", "2024-04-07", "")); !errors.Is(err, agent.ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if c.ID() == "" {
		t.Fatal("client has no identity")
	}
}
