// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tripmesh/tripmesh-go/pkg/mcp"
	"github.com/tripmesh/tripmesh-go/pkg/transport"
)

// Role is the topology role of a Runtime.
type Role uint

const (
	// Hub binds a listening address and addresses each peer explicitly.
	Hub Role = iota

	// Spoke connects to exactly one hub.
	Spoke
)

func (r Role) String() string {
	switch r {
	case Hub:
		return "hub"
	case Spoke:
		return "spoke"
	default:
		return "INVALID"
	}
}

// Config of a Runtime.
type Config struct {
	// ID is the agent's identity, used for routing and as the envelopes' sender.
	ID string

	Role Role

	// Endpoint is the listening address of a hub, e.g., "localhost:9100", or the hub's WebSocket URL for a spoke,
	// e.g., "ws://localhost:9100/ws".
	Endpoint string

	// HubID is the identity of the hub a spoke performs its handshake with.
	HubID string

	// PollInterval bounds each blocking receive, after which the loop checks for its termination.
	PollInterval time.Duration

	// ReceiveBackoff is the pause after a failed receive.
	ReceiveBackoff time.Duration

	// SendTimeout bounds the transport's writes and a spoke's connection setup.
	SendTimeout time.Duration
}

func (conf Config) withDefaults() Config {
	if conf.PollInterval <= 0 {
		conf.PollInterval = 100 * time.Millisecond
	}
	if conf.ReceiveBackoff <= 0 {
		conf.ReceiveBackoff = time.Second
	}
	if conf.SendTimeout <= 0 {
		conf.SendTimeout = 5 * time.Second
	}
	return conf
}

// Node is the view of a Runtime handed to a Handler.
type Node interface {
	// ID of this agent.
	ID() string

	// Send an envelope. A hub addresses the envelope's receiver.
	Send(env mcp.Envelope) error

	// IsConnected checks if the peer completed its handshake.
	IsConnected(peer string) bool

	// Peers lists the identities of all connected peers.
	Peers() []string

	// State of this agent's connection. A running hub is always connected.
	State() ConnState
}

// Handler contains an agent role's logic for incoming envelopes.
type Handler interface {
	HandleMessage(node Node, env mcp.Envelope)
}

// HandlerFunc allows a function to be used as a Handler.
type HandlerFunc func(node Node, env mcp.Envelope)

// HandleMessage calls f(node, env).
func (f HandlerFunc) HandleMessage(node Node, env mcp.Envelope) {
	f(node, env)
}

// Ticker might be implemented by a Handler to be called periodically from the receive loop, at most once per
// poll interval.
type Ticker interface {
	Tick(node Node, now time.Time)
}

// Runtime owns a socket and a receive loop, dispatching incoming envelopes to its Handler.
type Runtime struct {
	conf    Config
	handler Handler

	// mutex protects the fields below.
	mutex   sync.Mutex
	socket  transport.Socket
	running bool
	stopSyn chan struct{}
	stopAck chan struct{}

	conn  *Connection
	peers *PeerSet
}

// NewRuntime creates a new Runtime, which needs to be started.
func NewRuntime(conf Config, handler Handler) *Runtime {
	return &Runtime{
		conf:    conf.withDefaults(),
		handler: handler,

		conn:  NewConnection(),
		peers: NewPeerSet(),
	}
}

func (r *Runtime) log() *log.Entry {
	return log.WithFields(log.Fields{
		"agent": r.conf.ID,
		"role":  r.conf.Role,
	})
}

// ID of this agent.
func (r *Runtime) ID() string {
	return r.conf.ID
}

// Running checks if this Runtime was started and not yet stopped.
func (r *Runtime) Running() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.running
}

// Addr returns a hub's bound address, which is handy for port 0. For spokes or stopped hubs an empty string
// is returned.
func (r *Runtime) Addr() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if hub, ok := r.socket.(*transport.Hub); ok {
		return hub.Addr()
	}
	return ""
}

// URL returns a hub's WebSocket URL, to be used as a spoke's Endpoint.
func (r *Runtime) URL() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if hub, ok := r.socket.(*transport.Hub); ok {
		return hub.URL()
	}
	return ""
}

// Start binds or connects the socket and launches the receive loop. A spoke sends its handshake afterwards.
//
// On failure, the Runtime is not running and Start might be called again.
func (r *Runtime) Start() error {
	r.mutex.Lock()

	if r.running {
		r.mutex.Unlock()
		return fmt.Errorf("agent %s is already running", r.conf.ID)
	}

	var socket transport.Socket
	switch r.conf.Role {
	case Hub:
		hub, err := transport.Listen(r.conf.Endpoint, r.conf.SendTimeout)
		if err != nil {
			r.mutex.Unlock()
			return &TransportError{Op: OpBind, Addr: r.conf.Endpoint, Err: err}
		}
		socket = hub

	case Spoke:
		connector, err := transport.Dial(r.conf.Endpoint, r.conf.ID, r.conf.SendTimeout)
		if err != nil {
			r.mutex.Unlock()
			return &TransportError{Op: OpConnect, Addr: r.conf.Endpoint, Err: err}
		}
		socket = connector

	default:
		r.mutex.Unlock()
		return fmt.Errorf("unknown role %v", r.conf.Role)
	}

	r.socket = socket
	r.running = true
	r.stopSyn = make(chan struct{})
	r.stopAck = make(chan struct{})

	go r.loop(socket, r.stopSyn, r.stopAck)

	r.mutex.Unlock()

	r.log().WithField("endpoint", r.conf.Endpoint).Info("Started agent")

	if r.conf.Role == Spoke {
		if err := r.handshake(); err != nil {
			r.log().WithError(err).Warn("Sending handshake errored")
			_ = r.Stop()
			return err
		}
	}

	return nil
}

// handshake sends a spoke's connect message to its hub.
func (r *Runtime) handshake() error {
	if err := r.conn.Begin(r.conf.HubID); err != nil {
		return err
	}

	env, err := mcp.NewPayloadEnvelope(mcp.Inform, mcp.Handshake{Type: mcp.TypeConnect}, r.conf.ID, r.conf.HubID)
	if err != nil {
		return err
	}

	r.log().WithField("hub", r.conf.HubID).Debug("Initiating handshake")
	return r.Send(env)
}

// Stop the receive loop and close the socket. Stop is idempotent and might be called even if Start failed. It
// must not be called from within the Handler.
func (r *Runtime) Stop() (err error) {
	r.mutex.Lock()

	if !r.running {
		r.mutex.Unlock()
		return nil
	}

	r.running = false
	socket := r.socket
	r.socket = nil

	close(r.stopSyn)
	stopAck := r.stopAck

	r.mutex.Unlock()

	<-stopAck

	if closeErr := socket.Close(); closeErr != nil {
		err = closeErr
	}

	r.conn.Reset()
	r.peers.Clear()

	r.log().Info("Stopped agent")
	return
}

// Send an envelope to its receiver.
func (r *Runtime) Send(env mcp.Envelope) error {
	r.mutex.Lock()
	socket, running := r.socket, r.running
	r.mutex.Unlock()

	if !running || socket == nil {
		return ErrNotStarted
	}

	data, err := mcp.Encode(env)
	if err != nil {
		return err
	}

	var peer string
	if r.conf.Role == Hub {
		peer = env.Receiver
	}

	if err := socket.Send(peer, data); err != nil {
		return &TransportError{Op: OpSend, Addr: env.Receiver, Err: err}
	}

	r.log().WithFields(log.Fields{
		"performative": env.Performative,
		"receiver":     env.Receiver,
		"conversation": env.ConversationID,
	}).Debug("Sent envelope")
	return nil
}

// IsConnected checks if the peer completed its handshake.
func (r *Runtime) IsConnected(peer string) bool {
	if r.conf.Role == Hub {
		return r.peers.Contains(peer)
	}
	return r.conn.State() == Connected && r.conn.Peer() == peer
}

// Peers lists a hub's connected peers or a connected spoke's hub.
func (r *Runtime) Peers() []string {
	if r.conf.Role == Hub {
		return r.peers.List()
	} else if r.conn.State() == Connected {
		return []string{r.conn.Peer()}
	}
	return nil
}

// State of this agent's connection. A running hub is always connected.
func (r *Runtime) State() ConnState {
	if r.conf.Role == Hub {
		if r.Running() {
			return Connected
		}
		return Disconnected
	}
	return r.conn.State()
}

// AwaitConnected blocks until the handshake was completed or the context is done.
func (r *Runtime) AwaitConnected(ctx context.Context) error {
	if r.conf.Role == Hub {
		if !r.Running() {
			return ErrNotStarted
		}
		return nil
	}

	for {
		state, changed := r.conn.watch()
		if state == Connected {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("awaiting connection in state %v: %w", state, ctx.Err())
		case <-changed:
		}
	}
}

// loop is the receive loop. It exits after stopSyn was closed or the socket reported ErrClosed, acknowledged by
// closing stopAck. In the latter case the Runtime is still running until Stop is called.
func (r *Runtime) loop(socket transport.Socket, stopSyn <-chan struct{}, stopAck chan<- struct{}) {
	defer close(stopAck)

	ticker, hasTicker := r.handler.(Ticker)
	lastTick := time.Now()

	for {
		select {
		case <-stopSyn:
			return
		default:
		}

		if now := time.Now(); hasTicker && now.Sub(lastTick) >= r.conf.PollInterval {
			lastTick = now
			ticker.Tick(r, now)
		}

		delivery, err := socket.Receive(r.conf.PollInterval)
		if err == nil {
			r.dispatch(delivery)
			continue
		} else if errors.Is(err, transport.ErrWouldBlock) {
			continue
		}

		select {
		case <-stopSyn:
			return
		default:
		}

		if errors.Is(err, transport.ErrClosed) {
			r.conn.Reset()
			r.log().WithField("endpoint", r.conf.Endpoint).Info("Connection was closed, leaving receive loop")
			return
		}

		r.log().WithError(&TransportError{Op: OpReceive, Addr: r.conf.Endpoint, Err: err}).
			WithField("backoff", r.conf.ReceiveBackoff).Warn("Receiving errored")

		select {
		case <-stopSyn:
			return
		case <-time.After(r.conf.ReceiveBackoff):
		}
	}
}

// dispatch a Delivery, either to the handshake logic or to the Handler.
func (r *Runtime) dispatch(delivery transport.Delivery) {
	if delivery.Event == transport.PeerLeft {
		if r.peers.Remove(delivery.Peer) {
			r.log().WithField("peer", delivery.Peer).Info("Peer disconnected")
		}
		return
	}

	env, err := mcp.Decode(delivery.Data)
	if err != nil {
		r.log().WithError(err).WithField("peer", delivery.Peer).Warn("Dropping undecodable envelope")
		return
	}

	if r.conf.Role == Hub && env.Sender != delivery.Peer {
		r.log().WithFields(log.Fields{
			"peer":   delivery.Peer,
			"sender": env.Sender,
		}).Warn("Dropping envelope, sender does not match the peer's identity")
		return
	}

	r.log().WithFields(log.Fields{
		"performative": env.Performative,
		"sender":       env.Sender,
		"conversation": env.ConversationID,
	}).Debug("Received envelope")

	if r.handleHandshake(env) {
		return
	}

	r.handler.HandleMessage(r, env)
}

// handleHandshake processes connection related envelopes. It returns true if the envelope was consumed.
func (r *Runtime) handleHandshake(env mcp.Envelope) bool {
	tag, err := mcp.Discriminator(env.Content)
	if err != nil {
		return false
	}

	switch {
	case r.conf.Role == Hub && env.Performative == mcp.Inform && tag == mcp.TypeConnect:
		if r.peers.Add(env.Sender) {
			r.log().WithField("peer", env.Sender).Info("Peer connected")
		}

		reply, err := env.ReplyWith(mcp.Confirm, mcp.Handshake{
			Type:    mcp.TypeConnected,
			Status:  mcp.StatusConnected,
			Message: fmt.Sprintf("Connected to %s", r.conf.ID),
		})
		if err == nil {
			err = r.Send(reply)
		}
		if err != nil {
			r.log().WithError(err).WithField("peer", env.Sender).Warn("Confirming handshake errored")
		}
		return true

	case r.conf.Role == Spoke && env.Performative == mcp.Confirm && tag == mcp.TypeConnected:
		if err := r.conn.Establish(env.Sender); err != nil {
			r.log().WithError(err).Warn("Ignoring handshake confirmation")
		} else {
			r.log().WithField("hub", env.Sender).Info("Connected to hub")
		}
		return true

	default:
		return false
	}
}
