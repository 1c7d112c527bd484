// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"time"

	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// HotelOffer is a hotel stay.
type HotelOffer struct {
	Name          string    `json:"name" toml:"name"`
	Type          string    `json:"type" toml:"type"`
	PricePerNight int       `json:"price_per_night" toml:"price-per-night"`
	Amenities     []string  `json:"amenities" toml:"amenities"`
	Rating        float64   `json:"rating" toml:"rating"`
	Note          string    `json:"note,omitempty" toml:"note"`
	Dates         mcp.Dates `json:"dates,omitempty" toml:"-"`
	TotalPrice    int       `json:"total_price,omitempty" toml:"-"`
}

// HotelCatalog quotes HotelOffers by destination.
//
// Offers of known destinations carry the requested dates and a total price for the stay. Without dates, a week
// starting tomorrow is offered. The Fallback offer is returned unchanged for unknown destinations.
type HotelCatalog struct {
	Destinations map[string][]HotelOffer
	Fallback     HotelOffer

	now func() time.Time
}

// Quote the hotel offers for a destination.
func (hc *HotelCatalog) Quote(destination string, dates mcp.Dates) []mcp.Offer {
	options, ok := hc.Destinations[destination]
	if !ok || len(options) == 0 {
		return marshalOffers([]interface{}{hc.Fallback})
	}

	now := time.Now
	if hc.now != nil {
		now = hc.now
	}

	offers := make([]interface{}, 0, len(options))
	for _, option := range options {
		if len(dates) > 0 {
			option.Dates = copyDates(dates)
			option.TotalPrice = option.PricePerNight * nights(dates)
		} else {
			option.Dates = defaultDates(now(), "check_in", "check_out")
			option.TotalPrice = option.PricePerNight * defaultStay
		}
		offers = append(offers, option)
	}
	return marshalOffers(offers)
}

// DefaultHotelCatalog returns the built-in hotels for Goa and Mumbai.
func DefaultHotelCatalog() *HotelCatalog {
	return &HotelCatalog{
		Destinations: map[string][]HotelOffer{
			"Goa": {
				{
					Name:          "Taj Exotica",
					Type:          "luxury",
					PricePerNight: 15000,
					Amenities:     []string{"pool", "spa", "beach access", "restaurant"},
					Rating:        4.8,
				},
				{
					Name:          "Holiday Inn",
					Type:          "mid-range",
					PricePerNight: 8000,
					Amenities:     []string{"pool", "restaurant", "gym"},
					Rating:        4.2,
				},
			},
			"Mumbai": {
				{
					Name:          "Taj Mahal Palace",
					Type:          "luxury",
					PricePerNight: 20000,
					Amenities:     []string{"pool", "spa", "multiple restaurants", "gym"},
					Rating:        4.9,
				},
				{
					Name:          "ITC Maratha",
					Type:          "luxury",
					PricePerNight: 18000,
					Amenities:     []string{"pool", "spa", "restaurant", "business center"},
					Rating:        4.7,
				},
			},
		},
		Fallback: HotelOffer{
			Name:          "Default Hotel",
			Type:          "standard",
			PricePerNight: 5000,
			Amenities:     []string{"basic"},
			Rating:        3.5,
			Note:          "Generic option for unspecified destination",
		},
	}
}
