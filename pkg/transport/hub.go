// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// inboxSize is the buffer of each Socket's inbox.
const inboxSize = 64

// Hub is the listening side of the fabric. Spokes connect to its /ws endpoint and are addressed by the identity
// they registered with.
type Hub struct {
	listener     net.Listener
	httpServer   *http.Server
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	// clients maps registered identities to their connection.
	clients      map[string]*hubClient
	clientsMutex sync.Mutex

	inbox     chan Delivery
	closed    chan struct{}
	closeOnce sync.Once
}

// Listen binds a new Hub to the given TCP address, e.g., "localhost:9100".
//
// Errors of the bind operation are returned directly. Writes to spokes are bound by the writeTimeout.
func Listen(address string, writeTimeout time.Duration) (*Hub, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()

	hub := &Hub{
		listener:     listener,
		httpServer:   &http.Server{Handler: router},
		upgrader:     websocket.Upgrader{},
		writeTimeout: writeTimeout,

		clients: make(map[string]*hubClient),

		inbox:  make(chan Delivery, inboxSize),
		closed: make(chan struct{}),
	}

	router.Handle("/ws", hub)
	router.HandleFunc("/peers", hub.handlePeers).Methods(http.MethodGet)

	go func() {
		if err := hub.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			hub.log().WithError(err).Warn("HTTP server errored")
		}
	}()

	return hub, nil
}

func (hub *Hub) log() *log.Entry {
	return log.WithField("hub", hub.listener.Addr().String())
}

// Addr is the bound network address, which might differ from the requested one for port 0.
func (hub *Hub) Addr() string {
	return hub.listener.Addr().String()
}

// URL of this Hub's WebSocket endpoint to be used by a Connector.
func (hub *Hub) URL() string {
	return fmt.Sprintf("ws://%s/ws", hub.Addr())
}

// ServeHTTP upgrades a request to a WebSocket and handles the spoke until its connection closes.
func (hub *Hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, connErr := hub.upgrader.Upgrade(rw, r, nil)
	if connErr != nil {
		hub.log().WithError(connErr).Warn("Upgrading HTTP request to WebSocket errored")
		return
	}

	newHubClient(hub, conn).serve()
}

// handlePeers lists all registered identities as a JSON array.
func (hub *Hub) handlePeers(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(hub.Peers()); err != nil {
		hub.log().WithError(err).Warn("Failed to write peer list")
	}
}

// register a client for its identity.
func (hub *Hub) register(identity string, client *hubClient) error {
	hub.clientsMutex.Lock()
	defer hub.clientsMutex.Unlock()

	select {
	case <-hub.closed:
		return ErrClosed
	default:
	}

	if identity == "" {
		return fmt.Errorf("register errored, empty identity")
	} else if _, exists := hub.clients[identity]; exists {
		return fmt.Errorf("register errored, identity %s is already present", identity)
	}

	hub.clients[identity] = client
	return nil
}

// unregister a client, if it is still the one registered for this identity.
func (hub *Hub) unregister(identity string, client *hubClient) {
	hub.clientsMutex.Lock()
	defer hub.clientsMutex.Unlock()

	if hub.clients[identity] == client {
		delete(hub.clients, identity)
	}
}

// Peers returns the sorted identities of all registered spokes.
func (hub *Hub) Peers() (peers []string) {
	hub.clientsMutex.Lock()
	defer hub.clientsMutex.Unlock()

	peers = make([]string, 0, len(hub.clients))
	for identity := range hub.clients {
		peers = append(peers, identity)
	}
	sort.Strings(peers)
	return
}

// Send data to the spoke registered for the peer identity.
func (hub *Hub) Send(peer string, data []byte) error {
	select {
	case <-hub.closed:
		return ErrClosed
	default:
	}

	hub.clientsMutex.Lock()
	client, ok := hub.clients[peer]
	hub.clientsMutex.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, peer)
	}

	return client.writeFrame(newDataFrame(data))
}

// Receive the next Delivery from any spoke.
func (hub *Hub) Receive(timeout time.Duration) (Delivery, error) {
	return receive(hub.inbox, hub.closed, timeout)
}

// Close the listener and all spoke connections.
func (hub *Hub) Close() (err error) {
	hub.closeOnce.Do(func() {
		close(hub.closed)
		err = hub.httpServer.Close()

		// Hijacked WebSocket connections are not closed by the HTTP server.
		hub.clientsMutex.Lock()
		for _, client := range hub.clients {
			_ = client.conn.Close()
		}
		hub.clientsMutex.Unlock()

		hub.log().Debug("Closed hub")
	})
	return
}
