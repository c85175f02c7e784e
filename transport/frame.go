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

// Package transport provides the request/reply fabric shared by the
// waveform cache client, the inference client, and the locator
// orchestrator: a length-prefixed framing of codec envelopes over TCP.
//
// No router/dealer messaging library appears anywhere in this system's
// pack of examples, so the fabric is built directly on net.Conn, in the
// same spirit as the rest of the pack builds its own thin wrappers
// around stdlib networking where no off-the-shelf library fits.
package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameBytes bounds a single frame to guard against a misbehaving peer
// forcing an unbounded allocation.
const maxFrameBytes = 64 << 20

// WriteFrame writes data to w prefixed with its length as a big-endian
// uint32. Exported so that fire-and-forget senders like transport/publish
// can reuse the same wire framing without holding a full Client.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > maxFrameBytes {
		return fmt.Errorf("frame too large: %d bytes", len(data))
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("could not write frame header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("could not write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads a single length-prefixed frame from r.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameBytes {
		return nil, fmt.Errorf("frame too large: %d bytes", size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("could not read frame body: %w", err)
	}
	return data, nil
}
