// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mcp

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Content discriminators, transmitted in the "type" field of a payload.
const (
	TypeConnect        = "connect"
	TypeConnected      = "connected"
	TypeConnectionTest = "connection_test"
	TypeTravelOptions  = "travel_options"
	TypeHotelOptions   = "hotel_options"
)

// Status values of Confirmation, FailureReport and Plan payloads.
const (
	StatusConnected       = "connected"
	StatusPlanningStarted = "planning_started"
	StatusPlanned         = "planned"
	StatusBooked          = "booked"
	StatusError           = "error"
)

// Discriminator returns the "type" field of a JSON object content. An empty string is returned for objects without
// this field. An error is only returned if the content is no JSON object at all.
func Discriminator(content string) (string, error) {
	var tagged struct {
		Type interface{} `json:"type"`
	}
	if err := json.Unmarshal([]byte(content), &tagged); err != nil {
		return "", err
	}

	if s, ok := tagged.Type.(string); ok {
		return s, nil
	}
	return "", nil
}

// Handshake is the payload of connection related INFORM and CONFIRM messages.
type Handshake struct {
	Type    string `json:"type"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// Dates of a trip. Requests use check_in and check_out, travel offers use departure and return.
type Dates map[string]string

// UnmarshalJSON keeps the textual date fields and skips all others, e.g., numbers or nested objects.
func (d *Dates) UnmarshalJSON(data []byte) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	dates := make(Dates, len(fields))
	for key, value := range fields {
		if s, ok := value.(string); ok {
			dates[key] = s
		}
	}
	*d = dates
	return nil
}

// Start returns check_in or, if absent, departure.
func (d Dates) Start() string {
	if s, ok := d["check_in"]; ok {
		return s
	}
	return d["departure"]
}

// End returns check_out or, if absent, return.
func (d Dates) End() string {
	if s, ok := d["check_out"]; ok {
		return s
	}
	return d["return"]
}

// TripRequest is the payload of a client's REQUEST to the planner.
type TripRequest struct {
	TripID      string                 `json:"trip_id"`
	Destination string                 `json:"destination"`
	Dates       Dates                  `json:"dates"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

// CallForProposal is the payload of a planner's CALL_FOR_PROPOSALS to a provider.
type CallForProposal struct {
	TripID      string `json:"trip_id"`
	Destination string `json:"destination"`
	Dates       Dates  `json:"dates"`
	Type        string `json:"type"`
}

// Offer is a provider specific option, e.g., a flight or a hotel, kept as its JSON document.
type Offer = json.RawMessage

// Proposal is the payload of a provider's PROPOSE.
type Proposal struct {
	TripID  string  `json:"trip_id"`
	Options []Offer `json:"options"`
}

// Acceptance is the payload of an ACCEPT, selecting one offer for booking.
type Acceptance struct {
	TripID         string `json:"trip_id"`
	SelectedOption Offer  `json:"selected_option"`
}

// Confirmation is the payload of a CONFIRM.
type Confirmation struct {
	Type           string `json:"type,omitempty"`
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	TripID         string `json:"trip_id,omitempty"`
	BookingID      string `json:"booking_id,omitempty"`
	SelectedOption Offer  `json:"selected_option,omitempty"`
}

// FailureReport is the structured payload of a FAILURE.
type FailureReport struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	TripID  string `json:"trip_id,omitempty"`
}

// NewFailureReport creates an error FailureReport.
func NewFailureReport(tripID, format string, a ...interface{}) FailureReport {
	return FailureReport{
		Status:  StatusError,
		Message: fmt.Sprintf(format, a...),
		TripID:  tripID,
	}
}

// Plan is the merged itinerary sent as an INFORM to the requester.
//
// Each provider role occupies its own top-level field, e.g., "travel" and "hotel". A role's value is either the
// selected offer or a string stating that no options are available.
type Plan struct {
	TripID      string
	Destination string
	Dates       Dates
	Slots       map[string]Offer
	Status      string
}

var planFields = map[string]struct{}{
	"trip_id":     {},
	"destination": {},
	"dates":       {},
	"status":      {},
}

// NoOptions returns the placeholder of a role without any offers.
func NoOptions(role string) Offer {
	data, _ := json.Marshal(fmt.Sprintf("no %s options available", role))
	return data
}

// MarshalJSON flattens the role slots next to the plan's fields.
func (p Plan) MarshalJSON() ([]byte, error) {
	obj := make(map[string]interface{}, len(p.Slots)+4)

	roles := make([]string, 0, len(p.Slots))
	for role := range p.Slots {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		if _, reserved := planFields[role]; reserved {
			return nil, fmt.Errorf("role name %q collides with a plan field", role)
		}
		obj[role] = p.Slots[role]
	}

	obj["trip_id"] = p.TripID
	obj["destination"] = p.Destination
	obj["dates"] = p.Dates
	obj["status"] = p.Status

	return json.Marshal(obj)
}

// UnmarshalJSON reads the plan's fields and treats all other fields as role slots.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*p = Plan{Slots: make(map[string]Offer)}

	for key, value := range obj {
		var err error
		switch key {
		case "trip_id":
			err = json.Unmarshal(value, &p.TripID)
		case "destination":
			err = json.Unmarshal(value, &p.Destination)
		case "dates":
			err = json.Unmarshal(value, &p.Dates)
		case "status":
			err = json.Unmarshal(value, &p.Status)
		default:
			p.Slots[key] = Offer(value)
		}

		if err != nil {
			return fmt.Errorf("plan field %q: %w", key, err)
		}
	}

	return nil
}
