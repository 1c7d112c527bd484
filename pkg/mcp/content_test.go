// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mcp

import (
	"encoding/json"
	"testing"
)

func TestDiscriminator(t *testing.T) {
	tests := []struct {
		content string
		tag     string
		valid   bool
	}{
		{`{"type":"connect"}`, TypeConnect, true},
		{`{"type":"hotel_options","trip_id":"T1"}`, TypeHotelOptions, true},
		{`{"trip_id":"T1"}`, "", true},
		{`{"type":23}`, "", true},
		{`nope`, "", false},
	}

	for _, test := range tests {
		tag, err := Discriminator(test.content)
		if (err == nil) != test.valid {
			t.Fatalf("%q: expected valid %t, got error %v", test.content, test.valid, err)
		} else if tag != test.tag {
			t.Fatalf("%q: expected tag %q, got %q", test.content, test.tag, tag)
		}
	}
}

func TestDates(t *testing.T) {
	d := Dates{"check_in": "2024-04-01", "check_out": "2024-04-07"}
	if d.Start() != "2024-04-01" || d.End() != "2024-04-07" {
		t.Fatalf("unexpected start/end for %v", d)
	}

	d = Dates{"departure": "2024-05-01", "return": "2024-05-03"}
	if d.Start() != "2024-05-01" || d.End() != "2024-05-03" {
		t.Fatalf("unexpected start/end for %v", d)
	}
}

func TestPlanJSON(t *testing.T) {
	plan := Plan{
		TripID:      "T1",
		Destination: "Goa",
		Dates:       Dates{"check_in": "2024-04-01", "check_out": "2024-04-07"},
		Slots: map[string]Offer{
			"travel": Offer(`{"type":"flight","airline":"Air India"}`),
			"hotel":  NoOptions("hotel"),
		},
		Status: StatusPlanned,
	}

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatal(err)
	}

	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatal(err)
	}
	if flat["hotel"] != "no hotel options available" {
		t.Fatalf("unexpected hotel slot %v", flat["hotel"])
	}
	if travel, ok := flat["travel"].(map[string]interface{}); !ok || travel["airline"] != "Air India" {
		t.Fatalf("unexpected travel slot %v", flat["travel"])
	}

	var plan2 Plan
	if err := json.Unmarshal(data, &plan2); err != nil {
		t.Fatal(err)
	}
	if plan2.TripID != "T1" || plan2.Status != StatusPlanned || len(plan2.Slots) != 2 {
		t.Fatalf("unexpected plan %v", plan2)
	}
	if string(plan2.Slots["hotel"]) != string(NoOptions("hotel")) {
		t.Fatalf("unexpected hotel slot %s", plan2.Slots["hotel"])
	}
}

func TestPlanReservedRole(t *testing.T) {
	plan := Plan{Slots: map[string]Offer{"status": NoOptions("status")}}
	if _, err := json.Marshal(plan); err == nil {
		t.Fatal("a role named status did not error")
	}
}

func TestTripRequestUntypedFields(t *testing.T) {
	data := `{"trip_id":"T1","dates":{"check_in":"2024-04-01","nights":6,"extra":{"a":1}},` +
		`"preferences":{"budget":20000,"travel_type":"flexible"}}`

	var req TripRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		t.Fatal(err)
	}

	if len(req.Dates) != 1 || req.Dates.Start() != "2024-04-01" {
		t.Fatalf("unexpected dates %v", req.Dates)
	}
	if budget, ok := req.Preferences["budget"].(float64); !ok || budget != 20000 {
		t.Fatalf("unexpected budget %v", req.Preferences["budget"])
	} else if req.Preferences["travel_type"] != "flexible" {
		t.Fatalf("unexpected travel type %v", req.Preferences["travel_type"])
	}

	if err := json.Unmarshal([]byte(`{"dates":["2024-04-01"]}`), &req); err == nil {
		t.Fatal("dates as a list were accepted")
	}
}
