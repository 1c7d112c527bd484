// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"time"

	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// TravelOffer is a flight or a train connection.
type TravelOffer struct {
	Type      string    `json:"type" toml:"type"`
	Airline   string    `json:"airline,omitempty" toml:"airline"`
	Name      string    `json:"name,omitempty" toml:"name"`
	Departure string    `json:"departure,omitempty" toml:"departure"`
	Arrival   string    `json:"arrival,omitempty" toml:"arrival"`
	Price     int       `json:"price" toml:"price"`
	Duration  string    `json:"duration,omitempty" toml:"duration"`
	Class     string    `json:"class,omitempty" toml:"class"`
	Note      string    `json:"note,omitempty" toml:"note"`
	Dates     mcp.Dates `json:"dates,omitempty" toml:"-"`
}

// TravelCatalog quotes TravelOffers by destination.
//
// Offers of known destinations carry the requested dates or, without any, a week starting tomorrow. The
// Fallback offer is returned unchanged for unknown destinations.
type TravelCatalog struct {
	Destinations map[string][]TravelOffer
	Fallback     TravelOffer

	now func() time.Time
}

// Quote the travel offers for a destination.
func (tc *TravelCatalog) Quote(destination string, dates mcp.Dates) []mcp.Offer {
	options, ok := tc.Destinations[destination]
	if !ok || len(options) == 0 {
		return marshalOffers([]interface{}{tc.Fallback})
	}

	now := time.Now
	if tc.now != nil {
		now = tc.now
	}

	offers := make([]interface{}, 0, len(options))
	for _, option := range options {
		if len(dates) > 0 {
			option.Dates = copyDates(dates)
		} else {
			option.Dates = defaultDates(now(), "departure", "return")
		}
		offers = append(offers, option)
	}
	return marshalOffers(offers)
}

// DefaultTravelCatalog returns the built-in flights and trains for Goa and Mumbai.
func DefaultTravelCatalog() *TravelCatalog {
	return &TravelCatalog{
		Destinations: map[string][]TravelOffer{
			"Goa": {
				{Type: "flight", Airline: "Air India", Price: 5000, Duration: "2h 30m"},
				{Type: "train", Name: "Goa Express", Price: 2000, Duration: "12h"},
			},
			"Mumbai": {
				{Type: "flight", Airline: "IndiGo", Price: 4000, Duration: "2h"},
				{Type: "train", Name: "Rajdhani Express", Price: 1500, Duration: "8h"},
			},
		},
		Fallback: TravelOffer{
			Type:      "flight",
			Airline:   "Default Airlines",
			Departure: "09:00",
			Arrival:   "11:00",
			Price:     4000,
			Class:     "economy",
			Note:      "Generic option for unspecified destination",
		},
	}
}
