// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/BurntSushi/toml"

	"github.com/tripmesh/tripmesh-go/pkg/agent"
	"github.com/tripmesh/tripmesh-go/pkg/catalog"
	"github.com/tripmesh/tripmesh-go/pkg/mcp"
	"github.com/tripmesh/tripmesh-go/pkg/negotiation"
)

// tomlConfig describes the TOML-configuration.
type tomlConfig struct {
	Logging   logConf
	Runtime   runtimeConf
	Planner   *plannerConf
	Provider  []providerConf
	Discovery discoveryConf
}

// logConf describes the Logging-configuration block.
type logConf struct {
	Level        string
	ReportCaller bool `toml:"report-caller"`
	Format       string
}

// runtimeConf describes the Runtime-configuration block, shared by all agents.
type runtimeConf struct {
	PollInterval   duration `toml:"poll-interval"`
	ReceiveBackoff duration `toml:"receive-backoff"`
	SendTimeout    duration `toml:"send-timeout"`
	StartAttempts  int      `toml:"start-attempts"`
	StartBackoff   duration `toml:"start-backoff"`
}

// plannerConf describes the Planner-configuration block.
type plannerConf struct {
	Id                 string
	Listen             string
	NegotiationTimeout duration           `toml:"negotiation-timeout"`
	Providers          []providerRoleConf `toml:"providers"`
}

// providerRoleConf describes a provider role known to the planner.
type providerRoleConf struct {
	Role        string
	Agent       string
	OptionsType string `toml:"options-type"`
}

// providerConf describes a provider agent to be run by this daemon.
type providerConf struct {
	Id         string
	Role       string
	Catalog    string
	PlannerId  string `toml:"planner-id"`
	PlannerUrl string `toml:"planner-url"`
}

// discoveryConf describes the Discovery-configuration block.
type discoveryConf struct {
	IPv4     bool
	IPv6     bool
	Interval uint
	Timeout  uint
}

// duration is a time.Duration, written as a string like "1.5s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

// plannerSetup is a parsed plannerConf.
type plannerSetup struct {
	conf   agent.Config
	config negotiation.PlannerConfig
}

// providerSetup is a parsed providerConf. Its conf.Endpoint might be empty, to be resolved after the planner was
// started or by discovery.
type providerSetup struct {
	conf        agent.Config
	role        string
	catalogFile string
}

// setup is the parsed configuration of this daemon.
type setup struct {
	planner   *plannerSetup
	providers []providerSetup

	startPolicy agent.RetryPolicy

	discovery discoveryConf
}

// configureLogging based on the Logging-configuration block.
func configureLogging(conf logConf) {
	if conf.Level != "" {
		if lvl, err := log.ParseLevel(conf.Level); err != nil {
			log.WithFields(log.Fields{
				"level":    conf.Level,
				"error":    err,
				"provided": "panic,fatal,error,warn,info,debug,trace",
			}).Warn("Failed to set log level. Please select one of the provided ones")
		} else {
			log.SetLevel(lvl)
		}
	}

	log.SetReportCaller(conf.ReportCaller)

	switch conf.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})

	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})

	default:
		log.Warn("Unknown logging format")
	}
}

// runtimeConfig creates an agent.Config with the shared Runtime-configuration.
func (conf runtimeConf) runtimeConfig(id string, role agent.Role, endpoint, hubId string) agent.Config {
	return agent.Config{
		ID:             id,
		Role:           role,
		Endpoint:       endpoint,
		HubID:          hubId,
		PollInterval:   conf.PollInterval.Duration,
		ReceiveBackoff: conf.ReceiveBackoff.Duration,
		SendTimeout:    conf.SendTimeout.Duration,
	}
}

// optionsType guesses a role's CFP discriminator, e.g., "travel_options" for "travel".
func optionsType(role string) string {
	return role + "_options"
}

// parsePlanner inspects the Planner-configuration block.
func parsePlanner(conf plannerConf, rt runtimeConf) (*plannerSetup, error) {
	if conf.Id == "" {
		conf.Id = "planner"
	}
	if conf.Listen == "" {
		return nil, fmt.Errorf("planner.listen is empty")
	}

	var providers []negotiation.ProviderRole
	for _, p := range conf.Providers {
		if p.Agent == "" {
			p.Agent = p.Role
		}
		if p.OptionsType == "" {
			p.OptionsType = optionsType(p.Role)
		}

		providers = append(providers, negotiation.ProviderRole{
			Role:        p.Role,
			Agent:       p.Agent,
			OptionsType: p.OptionsType,
		})
	}

	return &plannerSetup{
		conf: rt.runtimeConfig(conf.Id, agent.Hub, conf.Listen, ""),
		config: negotiation.PlannerConfig{
			Providers:          providers,
			NegotiationTimeout: conf.NegotiationTimeout.Duration,
		},
	}, nil
}

// parseProvider inspects a Provider-configuration block.
func parseProvider(conf providerConf, rt runtimeConf, planner *plannerSetup) (providerSetup, error) {
	switch conf.Role {
	case "":
		return providerSetup{}, fmt.Errorf("provider.role is empty")

	case string(catalog.KindTravel), string(catalog.KindHotel):

	default:
		if conf.Catalog == "" {
			return providerSetup{}, fmt.Errorf("provider role %q has no built-in catalog, provider.catalog is empty", conf.Role)
		}
	}

	if conf.Id == "" {
		conf.Id = conf.Role
	}
	if conf.PlannerId == "" {
		if planner != nil {
			conf.PlannerId = planner.conf.ID
		} else {
			conf.PlannerId = "planner"
		}
	}

	return providerSetup{
		conf:        rt.runtimeConfig(conf.Id, agent.Spoke, conf.PlannerUrl, conf.PlannerId),
		role:        conf.Role,
		catalogFile: conf.Catalog,
	}, nil
}

// openQuoter for a provider, either its catalog file or the built-in catalog of its role.
func openQuoter(ps providerSetup) (catalog.Quoter, *catalog.FileCatalog, error) {
	if ps.catalogFile != "" {
		fc, err := catalog.OpenFile(ps.catalogFile, catalog.Kind(ps.role))
		return fc, fc, err
	}

	switch catalog.Kind(ps.role) {
	case catalog.KindTravel:
		return catalog.DefaultTravelCatalog(), nil, nil
	case catalog.KindHotel:
		return catalog.DefaultHotelCatalog(), nil, nil
	default:
		return nil, nil, fmt.Errorf("no catalog for provider role %q", ps.role)
	}
}

// parseSetup creates the setup based on the given TOML configuration.
func parseSetup(filename string) (s setup, err error) {
	var conf tomlConfig
	if _, err = toml.DecodeFile(filename, &conf); err != nil {
		return
	}

	configureLogging(conf.Logging)

	// Runtime
	if conf.Runtime.ReceiveBackoff.Duration == 0 {
		conf.Runtime.ReceiveBackoff.Duration = time.Second
	}
	if conf.Runtime.PollInterval.Duration == 0 {
		conf.Runtime.PollInterval.Duration = 100 * time.Millisecond
	}
	if conf.Runtime.SendTimeout.Duration == 0 {
		conf.Runtime.SendTimeout.Duration = 5 * time.Second
	}

	s.startPolicy = agent.DefaultStartPolicy
	if conf.Runtime.StartAttempts > 0 {
		s.startPolicy.Attempts = conf.Runtime.StartAttempts
	}
	if conf.Runtime.StartBackoff.Duration > 0 {
		s.startPolicy.Backoff = conf.Runtime.StartBackoff.Duration
	}

	// Planner
	if conf.Planner != nil {
		if s.planner, err = parsePlanner(*conf.Planner, conf.Runtime); err != nil {
			return
		}
	}

	// Providers
	for _, pc := range conf.Provider {
		ps, psErr := parseProvider(pc, conf.Runtime, s.planner)
		if psErr != nil {
			err = psErr
			return
		}

		if ps.conf.Endpoint == "" && s.planner == nil && !conf.Discovery.IPv4 && !conf.Discovery.IPv6 {
			err = fmt.Errorf("provider %s has neither a planner-url nor a local planner or discovery", ps.conf.ID)
			return
		}

		s.providers = append(s.providers, ps)
	}

	if s.planner == nil && len(s.providers) == 0 {
		err = fmt.Errorf("neither a planner nor a provider is configured")
		return
	}

	// Discovery
	s.discovery = conf.Discovery
	if s.discovery.Interval == 0 {
		s.discovery.Interval = 10
	}
	if s.discovery.Timeout == 0 {
		s.discovery.Timeout = 30
	}

	log.WithFields(log.Fields{
		"planner":   s.planner != nil,
		"providers": len(s.providers),
		"protocol":  mcp.ProtocolVersion,
	}).Debug("Parsed configuration")

	return
}
