// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestFrameCbor(t *testing.T) {
	tests := []frame{
		newStatusFrame(nil),
		newStatusFrame(errors.New("oof")),
		newRegisterFrame("planner"),
		newDataFrame([]byte(`{"performative":"INFORM"}`)),
	}

	for _, f := range tests {
		buff := new(bytes.Buffer)
		if err := marshalFrame(f, buff); err != nil {
			t.Fatal(err)
		}

		if f2, err := unmarshalFrame(buff); err != nil {
			t.Fatal(err)
		} else if f.typeCode() != f2.typeCode() {
			t.Fatalf("expected type code %d, got %d", f.typeCode(), f2.typeCode())
		} else if !reflect.DeepEqual(f, f2) {
			t.Fatalf("expected %v, got %v", f, f2)
		}
	}
}

func TestFrameUnknownCode(t *testing.T) {
	// CBOR array of two elements: type code 23 and an empty text string.
	data := []byte{0x82, 0x17, 0x60}

	if _, err := unmarshalFrame(bytes.NewBuffer(data)); err == nil {
		t.Fatal("unknown type code did not error")
	}
}
