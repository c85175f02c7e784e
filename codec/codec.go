// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package codec encodes and decodes the wire payloads shared by the cache,
// inference, and locator clients, using CBOR encoding and zstandard
// compression, exactly the way the rest of this system's pack encodes its
// own wire types.
package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Codec encodes and decodes Go values using CBOR encoding and zstandard
// compression.
type Codec struct {
	encoder cbor.EncMode
	decoder cbor.DecMode
	lenient cbor.DecMode

	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

// New creates a new Codec.
func New() *Codec {

	// We should never fail here if the options are valid, so use panic to
	// keep the constructor's signature clean.
	encOptions := cbor.CanonicalEncOptions()
	encoder, err := encOptions.EncMode()
	if err != nil {
		panic(err)
	}

	decOptions := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}
	decoder, err := decOptions.DecMode()
	if err != nil {
		panic(err)
	}

	lenient, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}

	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(err)
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}

	c := Codec{
		encoder:      encoder,
		decoder:      decoder,
		lenient:      lenient,
		compressor:   compressor,
		decompressor: decompressor,
	}

	return &c
}

// Encode returns the CBOR encoding of the given value.
func (c *Codec) Encode(value interface{}) ([]byte, error) {
	return c.encoder.Marshal(value)
}

// Decode parses CBOR-encoded data into the given value.
func (c *Codec) Decode(data []byte, value interface{}) error {
	return c.decoder.Unmarshal(data, value)
}

// Marshal encodes the given value and then compresses it, returning the
// resulting slice of bytes. This is what goes out over the wire.
func (c *Codec) Marshal(value interface{}) ([]byte, error) {
	data, err := c.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("could not encode value: %w", err)
	}
	compressed := c.compressor.EncodeAll(data, nil)
	return compressed, nil
}

// Unmarshal decompresses the given bytes and decodes the resulting
// CBOR-encoded data into the given value.
func (c *Codec) Unmarshal(compressed []byte, value interface{}) error {
	data, err := c.decompressor.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("could not decompress value: %w", err)
	}
	err = c.Decode(data, value)
	if err != nil {
		return fmt.Errorf("could not decode value: %w", err)
	}
	return nil
}

// identified is the common shape of every request and response this system
// exchanges: a correlation identifier, decoded without regard to whatever
// other fields the full payload type carries.
type identified struct {
	Identifier int64 `cbor:"identifier"`
}

// PeekIdentifier decompresses a marshaled payload just far enough to read
// its correlation identifier, ignoring every other field. Transport uses
// this to demultiplex replies on a shared connection without committing to
// a concrete response type up front.
func (c *Codec) PeekIdentifier(compressed []byte) (int64, error) {
	data, err := c.decompressor.DecodeAll(compressed, nil)
	if err != nil {
		return 0, fmt.Errorf("could not decompress value: %w", err)
	}
	var id identified
	if err := c.lenient.Unmarshal(data, &id); err != nil {
		return 0, fmt.Errorf("could not decode identifier: %w", err)
	}
	return id.Identifier, nil
}
