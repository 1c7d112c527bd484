// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// dateLayout is the calendar date format used in all trip dates.
const dateLayout = "2006-01-02"

// defaultStay is the trip length in days if no dates were requested.
const defaultStay = 7

// Quoter returns all offers for a destination and dates. Quote must be safe for concurrent use and must not
// return nil for known destinations.
type Quoter interface {
	Quote(destination string, dates mcp.Dates) []mcp.Offer
}

// QuoterFunc allows a function to be used as a Quoter.
type QuoterFunc func(destination string, dates mcp.Dates) []mcp.Offer

// Quote calls f(destination, dates).
func (f QuoterFunc) Quote(destination string, dates mcp.Dates) []mcp.Offer {
	return f(destination, dates)
}

// defaultDates returns a stay starting tomorrow, using the given start and end keys.
func defaultDates(now time.Time, startKey, endKey string) mcp.Dates {
	start := now.AddDate(0, 0, 1)
	return mcp.Dates{
		startKey: start.Format(dateLayout),
		endKey:   start.AddDate(0, 0, defaultStay).Format(dateLayout),
	}
}

// copyDates returns an independent copy, as each offer is serialized on its own.
func copyDates(dates mcp.Dates) mcp.Dates {
	c := make(mcp.Dates, len(dates))
	for k, v := range dates {
		c[k] = v
	}
	return c
}

// nights between the dates' start and end. One night is assumed for unparsable or reversed dates.
func nights(dates mcp.Dates) int {
	start, errStart := time.Parse(dateLayout, dates.Start())
	end, errEnd := time.Parse(dateLayout, dates.End())
	if errStart != nil || errEnd != nil {
		return 1
	}

	if n := int(end.Sub(start).Hours() / 24); n > 0 {
		return n
	}
	return 1
}

// marshalOffers encodes each offer. Offers failing to encode are logged and skipped, the result is never nil.
func marshalOffers(offers []interface{}) []mcp.Offer {
	result := make([]mcp.Offer, 0, len(offers))
	for _, offer := range offers {
		data, err := json.Marshal(offer)
		if err != nil {
			log.WithError(err).WithField("offer", offer).Warn("Encoding offer errored, skipping")
			continue
		}
		result = append(result, data)
	}
	return result
}
