// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// maxNesting bounds decoder recursion. The deepest document on the wire
// is a response holding a list of claim maps.
const maxNesting = 16

var (
	encMode = mustEncMode(cbor.CoreDetEncOptions())
	decMode = mustDecMode(cbor.DecOptions{
		// Request payloads decode into map[string]any before the
		// version-specific field names are resolved.
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels: maxNesting,
	})
)

func mustEncMode(options cbor.EncOptions) cbor.EncMode {
	mode, err := options.EncMode()
	if err != nil {
		panic("codec: building CBOR encoder: " + err.Error())
	}
	return mode
}

func mustDecMode(options cbor.DecOptions) cbor.DecMode {
	mode, err := options.DecMode()
	if err != nil {
		panic("codec: building CBOR decoder: " + err.Error())
	}
	return mode
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes one complete CBOR document into v. Trailing bytes
// are an error.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// RawMessage is an encoded CBOR value whose decoding is deferred until
// the envelope's version is known.
type RawMessage = cbor.RawMessage
