// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// ProtocolVersion is the protocol tag of all Envelopes created by this package.
const ProtocolVersion = "MCP-1.0"

// Envelope is the wire message exchanged between agents.
//
// ConversationID and Timestamp are assigned once on creation and must not be altered afterwards. A reply keeps the
// ConversationID of the Envelope it answers.
type Envelope struct {
	Protocol       string
	Performative   Performative
	Content        string
	Sender         string
	Receiver       string
	ConversationID string
	Timestamp      string
}

// wireEnvelope is the JSON representation of an Envelope.
type wireEnvelope struct {
	Protocol       string `json:"protocol"`
	Performative   string `json:"performative"`
	Content        string `json:"content"`
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp"`
}

// rawEnvelope is used while decoding to distinguish absent from empty fields.
type rawEnvelope struct {
	Protocol       *string         `json:"protocol"`
	Performative   *string         `json:"performative"`
	Content        json.RawMessage `json:"content"`
	Sender         *string         `json:"sender"`
	Receiver       *string         `json:"receiver"`
	ConversationID *string         `json:"conversation_id"`
	Timestamp      *string         `json:"timestamp"`
}

// NewConversationID returns a fresh conversation identifier.
func NewConversationID() string {
	return uuid.NewString()
}

// timestampNow returns the current UTC time as an ISO-8601 string.
func timestampNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// NewEnvelope creates an Envelope starting a new conversation.
func NewEnvelope(performative Performative, content, sender, receiver string) Envelope {
	return Envelope{
		Protocol:       ProtocolVersion,
		Performative:   performative,
		Content:        content,
		Sender:         sender,
		Receiver:       receiver,
		ConversationID: NewConversationID(),
		Timestamp:      timestampNow(),
	}
}

// NewPayloadEnvelope creates an Envelope starting a new conversation with a JSON encoded payload as its content.
func NewPayloadEnvelope(performative Performative, payload interface{}, sender, receiver string) (Envelope, error) {
	content, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %v payload failed: %w", performative, err)
	}
	return NewEnvelope(performative, string(content), sender, receiver), nil
}

// Reply creates an answer to this Envelope within the same conversation.
func (e Envelope) Reply(performative Performative, content string) Envelope {
	return Envelope{
		Protocol:       ProtocolVersion,
		Performative:   performative,
		Content:        content,
		Sender:         e.Receiver,
		Receiver:       e.Sender,
		ConversationID: e.ConversationID,
		Timestamp:      timestampNow(),
	}
}

// ReplyWith creates an answer to this Envelope with a JSON encoded payload.
func (e Envelope) ReplyWith(performative Performative, payload interface{}) (Envelope, error) {
	content, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %v payload failed: %w", performative, err)
	}
	return e.Reply(performative, string(content)), nil
}

// Unmarshal the JSON encoded content into v.
func (e Envelope) Unmarshal(v interface{}) error {
	return json.Unmarshal([]byte(e.Content), v)
}

func (e Envelope) String() string {
	return fmt.Sprintf("Envelope(%v,%s->%s,%s)", e.Performative, e.Sender, e.Receiver, e.ConversationID)
}

// Encode an Envelope into its JSON wire format.
func Encode(e Envelope) ([]byte, error) {
	return json.Marshal(wireEnvelope{
		Protocol:       e.Protocol,
		Performative:   string(e.Performative),
		Content:        e.Content,
		Sender:         e.Sender,
		Receiver:       e.Receiver,
		ConversationID: e.ConversationID,
		Timestamp:      e.Timestamp,
	})
}

// Decode an Envelope from its JSON wire format.
//
// A MalformedEnvelopeError is returned if the data is no JSON object or if one of the required fields performative,
// content, sender and receiver is absent. Absent optional fields are filled with defaults: the ProtocolVersion, a
// new conversation id and the current time.
//
// The content is usually a JSON string holding another JSON document. Content sent as a plain JSON value is
// accepted as well and kept as its JSON text.
func Decode(data []byte) (e Envelope, err error) {
	var raw rawEnvelope
	if jsonErr := json.Unmarshal(data, &raw); jsonErr != nil {
		err = &MalformedEnvelopeError{Err: jsonErr}
		return
	}

	var errs error
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"performative", raw.Performative},
		{"sender", raw.Sender},
		{"receiver", raw.Receiver},
	} {
		if field.value == nil {
			errs = multierror.Append(errs, fmt.Errorf("field %q is missing", field.name))
		}
	}

	content, contentErr := decodeContent(raw.Content)
	if contentErr != nil {
		errs = multierror.Append(errs, contentErr)
	}

	if errs != nil {
		err = &MalformedEnvelopeError{Err: errs}
		return
	}

	e = Envelope{
		Protocol:       ProtocolVersion,
		Performative:   ParsePerformative(*raw.Performative),
		Content:        content,
		Sender:         *raw.Sender,
		Receiver:       *raw.Receiver,
		ConversationID: NewConversationID(),
		Timestamp:      timestampNow(),
	}

	if raw.Protocol != nil && *raw.Protocol != "" {
		e.Protocol = *raw.Protocol
	}
	if raw.ConversationID != nil && *raw.ConversationID != "" {
		e.ConversationID = *raw.ConversationID
	}
	if raw.Timestamp != nil && *raw.Timestamp != "" {
		e.Timestamp = *raw.Timestamp
	}

	return
}

// decodeContent extracts the content string from its raw JSON representation.
func decodeContent(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", fmt.Errorf("field %q is missing", "content")
	}

	if trimmed[0] != '"' {
		return string(trimmed), nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", fmt.Errorf("field %q is no string: %w", "content", err)
	}
	return s, nil
}
