// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package negotiation

import (
	"errors"
	"sort"
	"time"

	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// Status of a Record.
type Status string

const (
	Planning  Status = "planning"
	Completed Status = "completed"
	Failed    Status = "failed"
)

// Terminal checks if no further transition is possible.
func (s Status) Terminal() bool {
	return s == Completed || s == Failed
}

// ErrDuplicateTrip is returned when registering a trip id which is already in flight.
var ErrDuplicateTrip = errors.New("trip is already being planned")

// Record is the state of one trip's negotiation.
type Record struct {
	TripID      string
	Destination string
	Dates       mcp.Dates
	Status      Status

	// Requester is the client's identity; Request its REQUEST, whose conversation is continued.
	Requester string
	Request   mcp.Envelope

	// Offers maps each role which has answered to its offers, which might be empty.
	Offers map[string][]mcp.Offer

	Created time.Time
}

// NewRecord creates a Record in the planning state.
func NewRecord(tripID, destination string, dates mcp.Dates, request mcp.Envelope, created time.Time) *Record {
	return &Record{
		TripID:      tripID,
		Destination: destination,
		Dates:       dates,
		Status:      Planning,
		Requester:   request.Sender,
		Request:     request,
		Offers:      make(map[string][]mcp.Offer),
		Created:     created,
	}
}

// Store a role's offers, replacing previous ones. A nil list is stored as an empty one, still filling the slot.
func (r *Record) Store(role string, offers []mcp.Offer) {
	if offers == nil {
		offers = []mcp.Offer{}
	}
	r.Offers[role] = offers
}

// Filled checks if every role has stored its offers.
func (r *Record) Filled(roles []string) bool {
	for _, role := range roles {
		if _, ok := r.Offers[role]; !ok {
			return false
		}
	}
	return true
}

// Missing lists all roles without offers.
func (r *Record) Missing(roles []string) (missing []string) {
	for _, role := range roles {
		if _, ok := r.Offers[role]; !ok {
			missing = append(missing, role)
		}
	}
	return
}

// Table owns all in-flight Records, indexed by their trip id. A Table is not safe for concurrent use.
type Table struct {
	records map[string]*Record
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{records: make(map[string]*Record)}
}

// Register a new Record. ErrDuplicateTrip is returned if its trip id is already present.
func (t *Table) Register(r *Record) error {
	if _, ok := t.records[r.TripID]; ok {
		return ErrDuplicateTrip
	}
	t.records[r.TripID] = r
	return nil
}

// Lookup a Record by its trip id.
func (t *Table) Lookup(tripID string) (r *Record, ok bool) {
	r, ok = t.records[tripID]
	return
}

// Remove a Record.
func (t *Table) Remove(tripID string) {
	delete(t.records, tripID)
}

// Len is the amount of in-flight Records.
func (t *Table) Len() int {
	return len(t.records)
}

// Expired returns all Records created more than timeout before now, ordered by their trip id.
func (t *Table) Expired(now time.Time, timeout time.Duration) (expired []*Record) {
	for _, r := range t.records {
		if now.Sub(r.Created) >= timeout {
			expired = append(expired, r)
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].TripID < expired[j].TripID
	})
	return
}
