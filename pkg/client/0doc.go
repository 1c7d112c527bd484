// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package client implements a trip planning client, a spoke of the planner.
//
//	c := client.New(client.Config{PlannerURL: "ws://localhost:9100/ws"})
//	if err := c.Start(); err != nil {
//		// ...
//	}
//	defer c.Stop()
//
//	req := client.NewTripRequest("Goa", "2024-04-01", "2024-04-07", "mid-range")
//	if _, err := c.RequestTrip(req); err != nil {
//		// ...
//	}
//	plan, err := c.WaitPlan(ctx, req.TripID)
package client
