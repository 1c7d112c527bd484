// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"fmt"
	"io"
	"reflect"

	"github.com/dtn7/cboring"
)

// frame describes a message which might be sent over a WebSocket between a Hub and a Connector.
type frame interface {
	// typeCode is an unique identifier for each frame type.
	typeCode() uint64

	// CborMarshaler must only be implemented for the type's logic.
	// A generic wrapper for the typeCode is available in the marshalFrame and unmarshalFrame functions.
	cboring.CborMarshaler
}

const (
	frameStatusCode   uint64 = 0
	frameRegisterCode uint64 = 1
	frameDataCode     uint64 = 2
)

var frameMapping = map[uint64]reflect.Type{
	frameStatusCode:   reflect.TypeOf(frameStatus{}),
	frameRegisterCode: reflect.TypeOf(frameRegister{}),
	frameDataCode:     reflect.TypeOf(frameData{}),
}

// marshalFrame writes a frame wrapped with its type code as CBOR.
func marshalFrame(f frame, w io.Writer) error {
	if err := cboring.WriteArrayLength(2, w); err != nil {
		return err
	}

	if err := cboring.WriteUInt(f.typeCode(), w); err != nil {
		return err
	}

	return cboring.Marshal(f, w)
}

// unmarshalFrame reads a new frame based on its type code from CBOR.
func unmarshalFrame(r io.Reader) (f frame, err error) {
	if n, arrErr := cboring.ReadArrayLength(r); arrErr != nil {
		err = arrErr
		return
	} else if n != 2 {
		err = fmt.Errorf("expected array of two elements, got %d", n)
		return
	}

	if n, typeErr := cboring.ReadUInt(r); typeErr != nil {
		err = typeErr
		return
	} else if t, ok := frameMapping[n]; !ok {
		err = fmt.Errorf("no known frame type code %d", n)
		return
	} else {
		f = reflect.New(t).Interface().(frame)
	}

	err = cboring.Unmarshal(f, r)
	return
}

// frameStatus acknowledges a registration or reports an error with a non-empty string.
type frameStatus struct {
	errorMsg string
}

// newStatusFrame creates a new frameStatus.
func newStatusFrame(err error) *frameStatus {
	if err == nil {
		return &frameStatus{""}
	}
	return &frameStatus{err.Error()}
}

func (_ *frameStatus) typeCode() uint64 {
	return frameStatusCode
}

func (fs *frameStatus) MarshalCbor(w io.Writer) error {
	return cboring.WriteTextString(fs.errorMsg, w)
}

func (fs *frameStatus) UnmarshalCbor(r io.Reader) (err error) {
	fs.errorMsg, err = cboring.ReadTextString(r)
	return
}

// frameRegister is sent from a Connector to the Hub to register its identity.
type frameRegister struct {
	identity string
}

// newRegisterFrame creates a new frameRegister.
func newRegisterFrame(identity string) *frameRegister {
	return &frameRegister{identity}
}

func (_ *frameRegister) typeCode() uint64 {
	return frameRegisterCode
}

func (fr *frameRegister) MarshalCbor(w io.Writer) error {
	return cboring.WriteTextString(fr.identity, w)
}

func (fr *frameRegister) UnmarshalCbor(r io.Reader) (err error) {
	fr.identity, err = cboring.ReadTextString(r)
	return
}

// frameData carries an opaque payload, e.g., an encoded envelope, in both directions.
type frameData struct {
	data []byte
}

// newDataFrame creates a new frameData.
func newDataFrame(data []byte) *frameData {
	return &frameData{data}
}

func (_ *frameData) typeCode() uint64 {
	return frameDataCode
}

func (fd *frameData) MarshalCbor(w io.Writer) error {
	return cboring.WriteByteString(fd.data, w)
}

func (fd *frameData) UnmarshalCbor(r io.Reader) (err error) {
	fd.data, err = cboring.ReadByteString(r)
	return
}
