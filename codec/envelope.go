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

package codec

import "fmt"

// Envelope is the self-describing wrapper every inter-module message
// carries: a message-type tag, a schema-version tag, and the CBOR-encoded,
// zstandard-compressed payload.
type Envelope struct {
	Type    string `cbor:"type"`
	Version string `cbor:"version"`
	Payload []byte `cbor:"payload"`
}

// schemaVersion is the version tag stamped on every envelope this system
// produces. Readers reject anything else outright rather than guess at
// forward compatibility.
const schemaVersion = "1.0"

// Pack wraps value in an Envelope addressed by messageType, encoding and
// compressing the payload with c.
func (c *Codec) Pack(messageType string, value interface{}) (Envelope, error) {
	payload, err := c.Marshal(value)
	if err != nil {
		return Envelope{}, fmt.Errorf("could not marshal payload: %w", err)
	}
	env := Envelope{
		Type:    messageType,
		Version: schemaVersion,
		Payload: payload,
	}
	return env, nil
}

// Unpack decodes env's payload into value, after checking that env's
// message type matches wantType and its schema version is one this codec
// understands.
func (c *Codec) Unpack(env Envelope, wantType string, value interface{}) error {
	if env.Type != wantType {
		return fmt.Errorf("unexpected message type (want: %s, have: %s)", wantType, env.Type)
	}
	if env.Version != schemaVersion {
		return fmt.Errorf("unsupported schema version: %s", env.Version)
	}
	err := c.Unmarshal(env.Payload, value)
	if err != nil {
		return fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return nil
}

// EncodeEnvelope returns the length-prefix-free CBOR encoding of an
// envelope. Framing (the length prefix) is added by the transport layer,
// which already knows how many bytes it read off the wire.
func (c *Codec) EncodeEnvelope(env Envelope) ([]byte, error) {
	return c.Encode(env)
}

// DecodeEnvelope parses a CBOR-encoded envelope.
func (c *Codec) DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	err := c.Decode(data, &env)
	return env, err
}
