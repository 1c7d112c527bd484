// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// tripctl requests trip plans from a planner.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tripmesh/tripmesh-go/pkg/client"
	"github.com/tripmesh/tripmesh-go/pkg/discovery"
	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// timeout for connecting and for each response.
const timeout = 30 * time.Second

// printUsage of tripctl and exit with an error code afterwards.
func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, "Usage of %s ping|plan|book:\n\n", os.Args[0])

	_, _ = fmt.Fprintf(os.Stderr, "%s ping planner-url\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  Connects to the planner and performs a connection test.\n\n")

	_, _ = fmt.Fprintf(os.Stderr, "%s plan planner-url destination check-in check-out [budget]\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  Requests a trip plan and prints it. Dates are written as 2024-04-01.\n\n")

	_, _ = fmt.Fprintf(os.Stderr, "%s book planner-url destination check-in check-out role\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  Requests a trip plan and books the selected offer of a role, e.g., hotel.\n\n")

	_, _ = fmt.Fprintf(os.Stderr, "A planner-url of \"discover\" searches the local network for a planner.\n")

	os.Exit(1)
}

// connect a new Client to the planner.
func connect(plannerUrl string) *client.Client {
	if plannerUrl == "discover" {
		url, err := discovery.Find("planner", timeout, false)
		if err != nil {
			log.WithError(err).Fatal("Discovering planner errored")
		}
		plannerUrl = url
	}

	c := client.New(client.Config{PlannerURL: plannerUrl})
	if err := c.Start(); err != nil {
		log.WithError(err).Fatal("Connecting to planner errored")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := c.AwaitConnected(ctx); err != nil {
		_ = c.Stop()
		log.WithError(err).Fatal("Handshake with planner errored")
	}
	return c
}

// requestPlan for the arguments destination, check-in, check-out and an optional budget.
func requestPlan(c *client.Client, args []string) mcp.Plan {
	budget := "mid-range"
	if len(args) == 4 {
		budget = args[3]
	}

	req := client.NewTripRequest(args[0], args[1], args[2], budget)
	if _, err := c.RequestTrip(req); err != nil {
		log.WithError(err).Fatal("Sending trip request errored")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	plan, err := c.WaitPlan(ctx, req.TripID)
	if err != nil {
		log.WithError(err).Fatal("Planning trip errored")
	}
	return plan
}

func main() {
	if len(os.Args) < 3 {
		printUsage()
	}

	var (
		command    = os.Args[1]
		plannerUrl = os.Args[2]
		args       = os.Args[3:]
	)

	switch command {
	case "ping":
		c := connect(plannerUrl)
		defer c.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			log.WithError(err).Fatal("Connection test errored")
		}
		fmt.Println("Planner is ready")

	case "plan":
		if len(args) != 3 && len(args) != 4 {
			printUsage()
		}

		c := connect(plannerUrl)
		defer c.Stop()

		printPlan(os.Stdout, requestPlan(c, args))

	case "book":
		if len(args) != 4 {
			printUsage()
		}

		c := connect(plannerUrl)
		defer c.Stop()

		role := args[3]
		plan := requestPlan(c, args[:3])
		printPlan(os.Stdout, plan)

		option, ok := plan.Slots[role]
		if !ok || len(option) == 0 || option[0] != '{' {
			log.WithField("role", role).Fatal("Plan has no offer for this role")
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		confirmation, err := c.Book(ctx, role, plan.TripID, option)
		if err != nil {
			log.WithError(err).Fatal("Booking errored")
		}
		fmt.Printf("%s (booking %s)\n", confirmation.Message, confirmation.BookingID)

	default:
		printUsage()
	}
}
