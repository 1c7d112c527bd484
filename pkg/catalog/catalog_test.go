// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
}

func decodeOffers(t *testing.T, offers []mcp.Offer, v interface{}) {
	data, err := json.Marshal(offers)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatal(err)
	}
}

func TestTravelCatalogKnownDestination(t *testing.T) {
	tc := DefaultTravelCatalog()
	dates := mcp.Dates{"check_in": "2024-04-01", "check_out": "2024-04-07"}

	var offers []TravelOffer
	decodeOffers(t, tc.Quote("Goa", dates), &offers)

	if len(offers) != 2 {
		t.Fatalf("expected two offers, got %d", len(offers))
	}
	if offers[0].Airline != "Air India" || offers[0].Price != 5000 {
		t.Fatalf("unexpected first offer %v", offers[0])
	}
	if offers[1].Name != "Goa Express" || offers[1].Type != "train" {
		t.Fatalf("unexpected second offer %v", offers[1])
	}
	for _, offer := range offers {
		if !reflect.DeepEqual(offer.Dates, dates) {
			t.Fatalf("offer dates %v differ from %v", offer.Dates, dates)
		}
	}
}

func TestTravelCatalogDefaultDates(t *testing.T) {
	tc := DefaultTravelCatalog()
	tc.now = fixedNow

	var offers []TravelOffer
	decodeOffers(t, tc.Quote("Mumbai", nil), &offers)

	expected := mcp.Dates{"departure": "2024-04-01", "return": "2024-04-08"}
	if !reflect.DeepEqual(offers[0].Dates, expected) {
		t.Fatalf("expected %v, got %v", expected, offers[0].Dates)
	}
}

func TestTravelCatalogFallback(t *testing.T) {
	var offers []TravelOffer
	decodeOffers(t, DefaultTravelCatalog().Quote("Atlantis", mcp.Dates{"departure": "2024-04-01"}), &offers)

	if len(offers) != 1 || offers[0].Airline != "Default Airlines" {
		t.Fatalf("unexpected fallback %v", offers)
	} else if offers[0].Dates != nil {
		t.Fatalf("fallback carries dates %v", offers[0].Dates)
	}
}

func TestHotelCatalogTotalPrice(t *testing.T) {
	hc := DefaultHotelCatalog()
	hc.now = fixedNow

	tests := []struct {
		name  string
		dates mcp.Dates
		total int
	}{
		{"check in and out", mcp.Dates{"check_in": "2024-04-01", "check_out": "2024-04-07"}, 6 * 15000},
		{"departure and return", mcp.Dates{"departure": "2024-04-01", "return": "2024-04-03"}, 2 * 15000},
		{"unparsable", mcp.Dates{"check_in": "tomorrow", "check_out": "later"}, 15000},
		{"reversed", mcp.Dates{"check_in": "2024-04-07", "check_out": "2024-04-01"}, 15000},
		{"no dates", nil, 7 * 15000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var offers []HotelOffer
			decodeOffers(t, hc.Quote("Goa", test.dates), &offers)

			if offers[0].Name != "Taj Exotica" {
				t.Fatalf("unexpected first hotel %v", offers[0])
			} else if offers[0].TotalPrice != test.total {
				t.Fatalf("expected total price %d, got %d", test.total, offers[0].TotalPrice)
			}
		})
	}
}

func TestHotelCatalogDefaultDates(t *testing.T) {
	hc := DefaultHotelCatalog()
	hc.now = fixedNow

	var offers []HotelOffer
	decodeOffers(t, hc.Quote("Mumbai", mcp.Dates{}), &offers)

	expected := mcp.Dates{"check_in": "2024-04-01", "check_out": "2024-04-08"}
	if !reflect.DeepEqual(offers[1].Dates, expected) {
		t.Fatalf("expected %v, got %v", expected, offers[1].Dates)
	} else if offers[1].Name != "ITC Maratha" {
		t.Fatalf("unexpected second hotel %v", offers[1])
	}
}

func TestQuoterFunc(t *testing.T) {
	var q Quoter = QuoterFunc(func(string, mcp.Dates) []mcp.Offer {
		return []mcp.Offer{}
	})

	if offers := q.Quote("Goa", nil); offers == nil || len(offers) != 0 {
		t.Fatalf("unexpected offers %v", offers)
	}
}
