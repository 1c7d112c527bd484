// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/schollz/peerdiscovery"
)

// ErrNotFound is returned by Find if no matching Announcement was received in time.
var ErrNotFound = errors.New("no announcement of this agent was received")

// Manager publishes Announcements.
type Manager struct {
	announcements []Announcement

	stopChan4 chan struct{}
	stopChan6 chan struct{}
	closeOnce sync.Once
}

// settings for a peerdiscovery run on IPv4 or IPv6.
func settings(ipv6 bool, payload []byte, interval, timeLimit time.Duration, stopChan chan struct{},
	notify func(peerdiscovery.Discovered)) peerdiscovery.Settings {

	s := peerdiscovery.Settings{
		Limit:            -1,
		Port:             fmt.Sprintf("%d", port),
		MulticastAddress: address4,
		Payload:          payload,
		Delay:            interval,
		TimeLimit:        timeLimit,
		StopChan:         stopChan,
		AllowSelf:        true,
		IPVersion:        peerdiscovery.IPv4,
		Notify:           notify,
	}

	if ipv6 {
		s.MulticastAddress = address6
		s.IPVersion = peerdiscovery.IPv6
	}
	return s
}

// discover starts peerdiscovery in the background. Errors within the first second are returned.
func discover(s peerdiscovery.Settings) error {
	discoverErrChan := make(chan error, 1)
	go func() {
		_, discoverErr := peerdiscovery.Discover(s)
		discoverErrChan <- discoverErr
	}()

	select {
	case discoverErr := <-discoverErrChan:
		return discoverErr

	case <-time.After(time.Second):
		return nil
	}
}

// NewManager for Announcements will be created and started.
func NewManager(announcements []Announcement, announcementInterval time.Duration, ipv4, ipv6 bool) (*Manager, error) {
	var manager = &Manager{announcements: announcements}
	if ipv4 {
		manager.stopChan4 = make(chan struct{})
	}
	if ipv6 {
		manager.stopChan6 = make(chan struct{})
	}

	log.WithFields(log.Fields{
		"interval":      announcementInterval,
		"IPv4":          ipv4,
		"IPv6":          ipv6,
		"announcements": announcements,
	}).Info("Starting discovery Manager")

	msg, err := MarshalAnnouncements(announcements)
	if err != nil {
		return nil, err
	}

	sets := []struct {
		active   bool
		ipv6     bool
		stopChan chan struct{}
	}{
		{ipv4, false, manager.stopChan4},
		{ipv6, true, manager.stopChan6},
	}

	for _, set := range sets {
		if !set.active {
			continue
		}

		if err := discover(settings(set.ipv6, msg, announcementInterval, -1, set.stopChan, nil)); err != nil {
			manager.Close()
			return nil, err
		}
	}

	return manager, nil
}

// Close this Manager.
func (manager *Manager) Close() {
	manager.closeOnce.Do(func() {
		for _, c := range []chan struct{}{manager.stopChan4, manager.stopChan6} {
			if c != nil {
				close(c)
			}
		}
	})
}

// match a discovered package against an agent's identity, returning the announced URL.
func match(agent string, discovered peerdiscovery.Discovered, ipv6 bool) (url string, ok bool) {
	announcements, err := UnmarshalAnnouncements(discovered.Payload)
	if err != nil {
		log.WithError(err).WithField("peer", discovered.Address).Debug("Peer discovery failed to parse incoming package")
		return
	}

	addr := discovered.Address
	if ipv6 {
		addr = fmt.Sprintf("[%s]", addr)
	}

	for _, announcement := range announcements {
		log.WithFields(log.Fields{
			"peer":    addr,
			"message": announcement,
		}).Debug("Peer discovery received a message")

		if announcement.Agent == agent {
			return announcement.URL(addr), true
		}
	}
	return
}

// Find the URL of an agent's hub by listening for its Announcements until the timeout.
func Find(agent string, timeout time.Duration, ipv6 bool) (string, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	// An empty announcement list, as peerdiscovery always sends a payload.
	payload, err := MarshalAnnouncements(nil)
	if err != nil {
		return "", err
	}

	found := make(chan string, 1)
	stopChan := make(chan struct{})
	notify := func(discovered peerdiscovery.Discovered) {
		if url, ok := match(agent, discovered, ipv6); ok {
			select {
			case found <- url:
			default:
			}
		}
	}

	discoverErrChan := make(chan error, 1)
	go func() {
		_, discoverErr := peerdiscovery.Discover(settings(ipv6, payload, timeout/4, timeout, stopChan, notify))
		discoverErrChan <- discoverErr
	}()

	select {
	case url := <-found:
		close(stopChan)
		log.WithFields(log.Fields{
			"agent": agent,
			"url":   url,
		}).Info("Found hub through discovery")
		return url, nil

	case discoverErr := <-discoverErrChan:
		if discoverErr != nil {
			return "", discoverErr
		}

		select {
		case url := <-found:
			return url, nil
		default:
			return "", ErrNotFound
		}
	}
}
