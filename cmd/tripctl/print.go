// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tripmesh/tripmesh-go/pkg/catalog"
	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// printPlan in a human-readable form. Offers of other roles than travel and hotel are printed as JSON.
func printPlan(w io.Writer, plan mcp.Plan) {
	_, _ = fmt.Fprintf(w, "=== Trip Plan %s ===\n", plan.TripID)
	_, _ = fmt.Fprintf(w, "Destination: %s\n", plan.Destination)
	_, _ = fmt.Fprintf(w, "Dates: %s to %s\n", plan.Dates.Start(), plan.Dates.End())

	_, _ = fmt.Fprintf(w, "\nTravel Details:\n")
	var travel catalog.TravelOffer
	if err := json.Unmarshal(plan.Slots["travel"], &travel); err == nil {
		_, _ = fmt.Fprintf(w, "Type: %s\n", travel.Type)
		switch {
		case travel.Airline != "":
			_, _ = fmt.Fprintf(w, "Airline: %s\n", travel.Airline)
		case travel.Type == "train":
			_, _ = fmt.Fprintf(w, "Train: %s\n", travel.Name)
		case travel.Name != "":
			_, _ = fmt.Fprintf(w, "Name: %s\n", travel.Name)
		}
		_, _ = fmt.Fprintf(w, "Price: ₹%d\n", travel.Price)
		if travel.Duration != "" {
			_, _ = fmt.Fprintf(w, "Duration: %s\n", travel.Duration)
		}
	} else {
		_, _ = fmt.Fprintf(w, "No travel options available\n")
	}

	_, _ = fmt.Fprintf(w, "\nHotel Details:\n")
	var hotel catalog.HotelOffer
	if err := json.Unmarshal(plan.Slots["hotel"], &hotel); err == nil {
		_, _ = fmt.Fprintf(w, "Name: %s\n", hotel.Name)
		_, _ = fmt.Fprintf(w, "Type: %s\n", hotel.Type)
		_, _ = fmt.Fprintf(w, "Price per night: ₹%d\n", hotel.PricePerNight)
		if hotel.TotalPrice > 0 {
			_, _ = fmt.Fprintf(w, "Total price: ₹%d\n", hotel.TotalPrice)
		}
		_, _ = fmt.Fprintf(w, "Amenities: %s\n", strings.Join(hotel.Amenities, ", "))
		_, _ = fmt.Fprintf(w, "Rating: %.1f/5.0\n", hotel.Rating)
	} else {
		_, _ = fmt.Fprintf(w, "No hotel options available\n")
	}

	for role, offer := range plan.Slots {
		if role == "travel" || role == "hotel" {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%s: %s\n", role, offer)
	}

	_, _ = fmt.Fprintf(w, "\n=== End of Trip Plan ===\n")
}
