// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// tripd runs a planner and provider agents, as configured in a TOML file.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/tripmesh/tripmesh-go/pkg/agent"
	"github.com/tripmesh/tripmesh-go/pkg/catalog"
	"github.com/tripmesh/tripmesh-go/pkg/discovery"
	"github.com/tripmesh/tripmesh-go/pkg/negotiation"
	"github.com/tripmesh/tripmesh-go/pkg/provider"
)

// daemon holds all started agents and their resources.
type daemon struct {
	// started agents, in their start order.
	started []*agent.Runtime

	catalogs  []*catalog.FileCatalog
	discovery *discovery.Manager
}

// notifyShutdown returns a channel which is closed on the first SIGINT or SIGTERM.
func notifyShutdown() <-chan struct{} {
	signalSyn := make(chan os.Signal, 1)
	signalAck := make(chan struct{})

	signal.Notify(signalSyn, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-signalSyn
		signal.Stop(signalSyn)

		log.WithField("signal", sig).Debug("Received shutdown signal")
		close(signalAck)
	}()

	return signalAck
}

// start all configured agents. On failure, already started agents are stopped again.
func start(ctx context.Context, s setup) (d *daemon, err error) {
	d = &daemon{}
	defer func() {
		if err != nil {
			if stopErr := d.stop(); stopErr != nil {
				log.WithError(stopErr).Warn("Stopping after a failed start errored")
			}
			d = nil
		}
	}()

	var plannerUrl string

	if s.planner != nil {
		planner, plannerErr := negotiation.NewPlanner(s.planner.config)
		if plannerErr != nil {
			err = plannerErr
			return
		}

		hub := agent.NewRuntime(s.planner.conf, planner)
		if err = agent.StartWithRetry(ctx, hub, s.startPolicy); err != nil {
			return
		}
		d.started = append(d.started, hub)
		plannerUrl = hub.URL()

		log.WithFields(log.Fields{
			"planner": s.planner.conf.ID,
			"url":     plannerUrl,
			"roles":   planner.Roles(),
		}).Info("Started planner")

		if s.discovery.IPv4 || s.discovery.IPv6 {
			_, portStr, splitErr := net.SplitHostPort(hub.Addr())
			if splitErr != nil {
				err = splitErr
				return
			}
			port, atoiErr := strconv.Atoi(portStr)
			if atoiErr != nil {
				err = atoiErr
				return
			}

			announcement := discovery.Announcement{Agent: s.planner.conf.ID, Port: uint(port), Path: "/ws"}
			interval := time.Duration(s.discovery.Interval) * time.Second

			if d.discovery, err = discovery.NewManager(
				[]discovery.Announcement{announcement}, interval, s.discovery.IPv4, s.discovery.IPv6); err != nil {
				return
			}
		}
	}

	for _, ps := range s.providers {
		if ps.conf.Endpoint == "" && plannerUrl != "" && ps.conf.HubID == s.planner.conf.ID {
			ps.conf.Endpoint = plannerUrl
		} else if ps.conf.Endpoint == "" {
			timeout := time.Duration(s.discovery.Timeout) * time.Second
			if ps.conf.Endpoint, err = discovery.Find(ps.conf.HubID, timeout, !s.discovery.IPv4); err != nil {
				return
			}
		}

		quoter, fc, quoterErr := openQuoter(ps)
		if quoterErr != nil {
			err = quoterErr
			return
		}
		if fc != nil {
			d.catalogs = append(d.catalogs, fc)
		}

		spoke := agent.NewRuntime(ps.conf, provider.NewProvider(ps.role, quoter))
		if err = agent.StartWithRetry(ctx, spoke, s.startPolicy); err != nil {
			return
		}
		d.started = append(d.started, spoke)

		log.WithFields(log.Fields{
			"provider": ps.conf.ID,
			"role":     ps.role,
			"planner":  ps.conf.Endpoint,
		}).Info("Started provider")
	}

	return
}

// stop all agents in their reverse start order and release all resources.
func (d *daemon) stop() (err error) {
	for i := len(d.started) - 1; i >= 0; i-- {
		if stopErr := d.started[i].Stop(); stopErr != nil {
			err = multierror.Append(err, stopErr)
		}
	}
	d.started = nil

	if d.discovery != nil {
		d.discovery.Close()
		d.discovery = nil
	}

	for _, fc := range d.catalogs {
		if closeErr := fc.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}
	d.catalogs = nil

	return
}

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("Usage: %s configuration.toml", os.Args[0])
	}

	s, err := parseSetup(os.Args[1])
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Fatal("Failed to parse config")
	}

	shutdown := notifyShutdown()

	d, err := start(context.Background(), s)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Fatal("Failed to start agents")
	}

	<-shutdown
	log.Info("Shutting down..")

	if err := d.stop(); err != nil {
		log.WithError(err).Warn("Shutting down errored")
	}
}
