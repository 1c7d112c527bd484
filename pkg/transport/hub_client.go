// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gorilla/websocket"
)

// hubClient is one spoke's connection to a Hub.
type hubClient struct {
	// writeMutex serializes writes, as a websocket.Conn supports only one concurrent writer.
	writeMutex sync.Mutex

	hub      *Hub
	conn     *websocket.Conn
	identity string
}

func newHubClient(hub *Hub, conn *websocket.Conn) *hubClient {
	return &hubClient{
		hub:  hub,
		conn: conn,
	}
}

func (client *hubClient) log() *log.Entry {
	return client.hub.log().WithFields(log.Fields{
		"remote":   client.conn.RemoteAddr().String(),
		"identity": client.identity,
	})
}

// serve the connection: a registration is expected first, data frames afterwards.
func (client *hubClient) serve() {
	defer func() { _ = client.conn.Close() }()

	if err := client.handleRegister(); err != nil {
		client.log().WithError(err).Warn("Registration errored")
		return
	}

	defer func() {
		client.hub.unregister(client.identity, client)
		deliver(client.hub.inbox, client.hub.closed, Delivery{Event: PeerLeft, Peer: client.identity})
		client.log().Debug("Spoke left")
	}()

	client.log().Info("Spoke registered")

	for {
		f, err := readFrame(client.conn)
		if err != nil {
			select {
			case <-client.hub.closed:
				client.log().WithError(err).Debug("Reader errored due to a closed hub")
			default:
				client.log().WithError(err).Info("Reading next frame errored")
			}
			return
		}

		switch f := f.(type) {
		case *frameData:
			if !deliver(client.hub.inbox, client.hub.closed, Delivery{Event: DataReceived, Peer: client.identity, Data: f.data}) {
				return
			}

		default:
			client.log().WithField("frame", f).Info("Received unknown / unsupported frame")
		}
	}
}

// handleRegister reads the initial registration and acknowledges it.
func (client *hubClient) handleRegister() error {
	f, err := readFrame(client.conn)
	if err != nil {
		return err
	}

	var registerErr error
	if register, ok := f.(*frameRegister); !ok {
		registerErr = fmt.Errorf("expected register frame, got %T", f)
	} else if registerErr = client.hub.register(register.identity, client); registerErr == nil {
		client.identity = register.identity
	}

	if writeErr := client.writeFrame(newStatusFrame(registerErr)); writeErr != nil {
		if registerErr == nil {
			client.hub.unregister(client.identity, client)
		}
		return writeErr
	}
	return registerErr
}

func (client *hubClient) writeFrame(f frame) error {
	client.writeMutex.Lock()
	defer client.writeMutex.Unlock()

	return writeFrame(client.conn, f, client.hub.writeTimeout)
}

// writeFrame writes a frame as a binary WebSocket message, bound by an optional timeout.
func writeFrame(conn *websocket.Conn, f frame, timeout time.Duration) error {
	if timeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}

	wc, wcErr := conn.NextWriter(websocket.BinaryMessage)
	if wcErr != nil {
		return wcErr
	}

	if cborErr := marshalFrame(f, wc); cborErr != nil {
		return cborErr
	}

	return wc.Close()
}

// readFrame reads the next binary WebSocket message as a frame.
func readFrame(conn *websocket.Conn) (frame, error) {
	if mt, r, err := conn.NextReader(); err != nil {
		return nil, err
	} else if mt != websocket.BinaryMessage {
		return nil, fmt.Errorf("expected binary message, got %d", mt)
	} else {
		return unmarshalFrame(r)
	}
}
