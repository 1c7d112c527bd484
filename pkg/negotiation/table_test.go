// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package negotiation

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

var roles = []string{"travel", "hotel"}

func TestTableRegister(t *testing.T) {
	table := NewTable()
	now := time.Now()

	req := mcp.NewEnvelope(mcp.Request, "{}", "client", "planner")
	if err := table.Register(NewRecord("T1", "Goa", mcp.Dates{}, req, now)); err != nil {
		t.Fatal(err)
	}
	if err := table.Register(NewRecord("T1", "Mumbai", mcp.Dates{}, req, now)); !errors.Is(err, ErrDuplicateTrip) {
		t.Fatalf("expected ErrDuplicateTrip, got %v", err)
	}

	if r, ok := table.Lookup("T1"); !ok || r.Destination != "Goa" || r.Requester != "client" {
		t.Fatalf("unexpected record %v", r)
	} else if r.Status != Planning {
		t.Fatalf("new record is %v", r.Status)
	}

	table.Remove("T1")
	if _, ok := table.Lookup("T1"); ok || table.Len() != 0 {
		t.Fatal("record was not removed")
	}
}

func TestTableExpired(t *testing.T) {
	table := NewTable()
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	req := mcp.NewEnvelope(mcp.Request, "{}", "client", "planner")

	for i, id := range []string{"T3", "T1", "T2"} {
		_ = table.Register(NewRecord(id, "Goa", nil, req, start.Add(time.Duration(i)*time.Minute)))
	}

	expired := table.Expired(start.Add(10*time.Minute), 9*time.Minute)
	var ids []string
	for _, r := range expired {
		ids = append(ids, r.TripID)
	}

	if !reflect.DeepEqual(ids, []string{"T1", "T3"}) {
		t.Fatalf("unexpected expired records %v", ids)
	}
}

func TestRecordFilled(t *testing.T) {
	r := NewRecord("T1", "Goa", nil, mcp.Envelope{}, time.Now())

	if r.Filled(roles) {
		t.Fatal("empty record is filled")
	}

	r.Store("travel", []mcp.Offer{mcp.Offer(`{"price":1}`)})
	if r.Filled(roles) {
		t.Fatal("half record is filled")
	} else if missing := r.Missing(roles); !reflect.DeepEqual(missing, []string{"hotel"}) {
		t.Fatalf("unexpected missing roles %v", missing)
	}

	// An empty offer list still fills a slot.
	r.Store("hotel", nil)
	if !r.Filled(roles) {
		t.Fatal("record is not filled")
	}
}

func TestCreatePlan(t *testing.T) {
	dates := mcp.Dates{"check_in": "2024-04-01", "check_out": "2024-04-07"}
	r := NewRecord("T1", "Goa", dates, mcp.Envelope{}, time.Now())
	r.Store("travel", []mcp.Offer{mcp.Offer(`{"airline":"first"}`), mcp.Offer(`{"airline":"second"}`)})
	r.Store("hotel", []mcp.Offer{})

	plan := CreatePlan(r, roles)
	if plan.Status != mcp.StatusPlanned || plan.TripID != "T1" || plan.Destination != "Goa" {
		t.Fatalf("unexpected plan %v", plan)
	}

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatal(err)
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatal(err)
	}

	if travel, ok := obj["travel"].(map[string]interface{}); !ok || travel["airline"] != "first" {
		t.Fatalf("unexpected travel slot %v", obj["travel"])
	}
	if hotel := obj["hotel"]; hotel != "no hotel options available" {
		t.Fatalf("unexpected hotel slot %v", hotel)
	}
}
