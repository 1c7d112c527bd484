// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package negotiation

import (
	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// CreatePlan merges a Record into a Plan by selecting each role's first offer. Roles without offers get the
// mcp.NoOptions placeholder.
func CreatePlan(r *Record, roles []string) mcp.Plan {
	slots := make(map[string]mcp.Offer, len(roles))
	for _, role := range roles {
		if offers := r.Offers[role]; len(offers) > 0 {
			slots[role] = offers[0]
		} else {
			slots[role] = mcp.NoOptions(role)
		}
	}

	return mcp.Plan{
		TripID:      r.TripID,
		Destination: r.Destination,
		Dates:       r.Dates,
		Slots:       slots,
		Status:      mcp.StatusPlanned,
	}
}
