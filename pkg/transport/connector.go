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

// Connector is the spoke side of the fabric, connected to exactly one Hub.
type Connector struct {
	url          string
	identity     string
	writeTimeout time.Duration

	conn       *websocket.Conn
	writeMutex sync.Mutex

	inbox     chan Delivery
	closed    chan struct{}
	closeOnce sync.Once
}

// Dial a Hub's WebSocket URL and register the identity. The timeout limits the WebSocket handshake, the
// registration and each later write.
func Dial(url, identity string, timeout time.Duration) (c *Connector, err error) {
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: timeout,
	}

	conn, _, dialErr := dialer.Dial(url, nil)
	if dialErr != nil {
		err = dialErr
		return
	}

	c = &Connector{
		url:          url,
		identity:     identity,
		writeTimeout: timeout,

		conn: conn,

		inbox:  make(chan Delivery, inboxSize),
		closed: make(chan struct{}),
	}

	if err = c.register(timeout); err != nil {
		_ = conn.Close()
		c = nil
		return
	}

	go c.handleReader()

	return
}

func (c *Connector) log() *log.Entry {
	return log.WithFields(log.Fields{
		"connector": c.identity,
		"hub":       c.url,
	})
}

func (c *Connector) register(timeout time.Duration) error {
	if err := c.writeFrame(newRegisterFrame(c.identity)); err != nil {
		return err
	}

	if timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}

	if f, err := readFrame(c.conn); err != nil {
		return err
	} else if status, ok := f.(*frameStatus); !ok {
		return fmt.Errorf("expected status frame, got %T", f)
	} else if status.errorMsg != "" {
		return fmt.Errorf("received non-empty error message: %s", status.errorMsg)
	} else {
		return nil
	}
}

func (c *Connector) handleReader() {
	defer c.shutdown()

	for {
		f, err := readFrame(c.conn)
		if err != nil {
			select {
			case <-c.closed:
				c.log().WithError(err).Debug("Reader errored due to a closed connector")
			default:
				c.log().WithError(err).Warn("Reading next frame errored")
			}
			return
		}

		switch f := f.(type) {
		case *frameData:
			if !deliver(c.inbox, c.closed, Delivery{Event: DataReceived, Peer: c.url, Data: f.data}) {
				return
			}

		default:
			c.log().WithField("frame", f).Info("Received unknown / unsupported frame")
		}
	}
}

func (c *Connector) writeFrame(f frame) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	return writeFrame(c.conn, f, c.writeTimeout)
}

// Send data to the Hub. The peer is ignored, as a Connector has only one peer.
func (c *Connector) Send(_ string, data []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	return c.writeFrame(newDataFrame(data))
}

// Receive the next Delivery from the Hub. After the connection was lost, ErrClosed is returned.
func (c *Connector) Receive(timeout time.Duration) (Delivery, error) {
	return receive(c.inbox, c.closed, timeout)
}

func (c *Connector) shutdown() (err error) {
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return
}

// Close the connection to the Hub.
func (c *Connector) Close() error {
	return c.shutdown()
}
