// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tripmesh/tripmesh-go/pkg/agent"
	"github.com/tripmesh/tripmesh-go/pkg/negotiation"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "tripd.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseExampleConfiguration(t *testing.T) {
	s, err := parseSetup("tripd.toml")
	if err != nil {
		t.Fatal(err)
	}

	if s.planner == nil {
		t.Fatal("planner is missing")
	} else if s.planner.conf.ID != "planner" || s.planner.conf.Endpoint != "localhost:9100" {
		t.Fatalf("unexpected planner %v", s.planner.conf)
	} else if !reflect.DeepEqual(s.planner.config.Providers, negotiation.DefaultProviders) {
		t.Fatalf("unexpected provider roles %v", s.planner.config.Providers)
	} else if s.planner.config.NegotiationTimeout != 0 {
		t.Fatalf("negotiation timeout is %v", s.planner.config.NegotiationTimeout)
	}

	if len(s.providers) != 2 {
		t.Fatalf("expected two providers, got %d", len(s.providers))
	}
	for _, ps := range s.providers {
		if ps.conf.Role != agent.Spoke || ps.conf.HubID != "planner" || ps.conf.Endpoint != "" {
			t.Fatalf("unexpected provider %v", ps.conf)
		}
		if ps.conf.ReceiveBackoff != time.Second || ps.conf.SendTimeout != 5*time.Second {
			t.Fatalf("unexpected runtime settings %v", ps.conf)
		}
	}

	if s.startPolicy != (agent.RetryPolicy{Attempts: 3, Backoff: 2 * time.Second}) {
		t.Fatalf("unexpected start policy %v", s.startPolicy)
	}
}

func TestParseDefaults(t *testing.T) {
	path := writeConfig(t, `
[planner]
listen = "localhost:0"
negotiation-timeout = "30s"

[[planner.providers]]
role = "car"
`)

	s, err := parseSetup(path)
	if err != nil {
		t.Fatal(err)
	}

	expected := []negotiation.ProviderRole{{Role: "car", Agent: "car", OptionsType: "car_options"}}
	if !reflect.DeepEqual(s.planner.config.Providers, expected) {
		t.Fatalf("expected %v, got %v", expected, s.planner.config.Providers)
	}
	if s.planner.config.NegotiationTimeout != 30*time.Second {
		t.Fatalf("unexpected negotiation timeout %v", s.planner.config.NegotiationTimeout)
	}
	if c := s.planner.conf; c.ID != "planner" || c.PollInterval != 100*time.Millisecond {
		t.Fatalf("unexpected defaults %v", c)
	}
	if s.startPolicy != agent.DefaultStartPolicy {
		t.Fatalf("unexpected start policy %v", s.startPolicy)
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"empty":           ``,
		"broken toml":     `[planner`,
		"no listen":       "[planner]\nid = \"planner\"\n",
		"bad duration":    "[planner]\nlisten = \"localhost:0\"\nnegotiation-timeout = \"soon\"\n",
		"no role":         "[planner]\nlisten = \"localhost:0\"\n[[provider]]\nid = \"x\"\n",
		"unknown catalog": "[planner]\nlisten = \"localhost:0\"\n[[provider]]\nrole = \"car\"\n",
		"no planner":      "[[provider]]\nrole = \"travel\"\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseSetup(writeConfig(t, content)); err == nil {
				t.Fatal("invalid configuration was accepted")
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"

[runtime]
poll-interval = "10ms"
receive-backoff = "10ms"
start-attempts = 1

[planner]
listen = "localhost:0"

[[provider]]
role = "travel"

[[provider]]
role = "hotel"
`)

	s, err := parseSetup(path)
	if err != nil {
		t.Fatal(err)
	}

	d, err := start(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}

	if len(d.started) != 3 {
		t.Fatalf("expected three agents, got %d", len(d.started))
	}

	hub := d.started[0]
	for i := 0; i < 100 && len(hub.Peers()) < 2; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	if peers := hub.Peers(); !reflect.DeepEqual(peers, []string{"hotel", "travel"}) {
		t.Fatalf("unexpected planner peers %v", peers)
	}

	if err := d.stop(); err != nil {
		t.Fatal(err)
	}
	for _, r := range []*agent.Runtime{hub} {
		if r.Running() {
			t.Fatal("agent is still running")
		}
	}
}
