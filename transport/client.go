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

package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/codec"
)

// Client is a long-lived connection to a single request/reply peer. It
// demultiplexes concurrent outstanding requests by the correlation
// identifier carried in every payload, so the waveform cache client, the
// inference client, and the locator orchestrator can all share one
// connection instead of dialing per request.
//
// A Client never retries internally. A failed or timed-out request is
// handed back to the caller as an error; retry policy belongs to whatever
// uses the Client, exactly as the boundary contract requires.
type Client struct {
	log   zerolog.Logger
	codec *codec.Codec

	conn   net.Conn
	reader *bufio.Reader

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan reply

	done chan struct{}
}

type reply struct {
	envelope codec.Envelope
	err      error
}

// Dial connects to address and starts demultiplexing replies in the
// background.
func Dial(address string, cdc *codec.Codec, log zerolog.Logger) (*Client, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not dial %s: %w", address, err)
	}

	c := Client{
		log:     log.With().Str("component", "transport_client").Str("address", address).Logger(),
		codec:   cdc,
		conn:    conn,
		reader:  bufio.NewReader(conn),
		pending: make(map[int64]chan reply),
		done:    make(chan struct{}),
	}

	go c.readLoop()

	return &c, nil
}

// Close terminates the underlying connection and fails every outstanding
// request.
func (c *Client) Close() error {
	close(c.done)
	err := c.conn.Close()

	c.pendingMu.Lock()
	for id, ch := range c.pending {
		ch <- reply{err: fmt.Errorf("connection closed")}
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	return err
}

// readLoop demultiplexes incoming frames by the correlation identifier
// carried in their payload and delivers each to the goroutine awaiting it.
func (c *Client) readLoop() {
	for {
		frame, err := ReadFrame(c.reader)
		if err != nil {
			c.failAll(fmt.Errorf("connection lost: %w", err))
			return
		}
		env, err := c.codec.DecodeEnvelope(frame)
		if err != nil {
			c.log.Error().Err(err).Msg("could not decode envelope")
			continue
		}
		id, err := c.codec.PeekIdentifier(env.Payload)
		if err != nil {
			c.log.Error().Err(err).Msg("could not read reply identifier")
			continue
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[id]
		if ok {
			delete(c.pending, id)
		}
		c.pendingMu.Unlock()

		if !ok {
			c.log.Warn().Int64("identifier", id).Msg("reply for unknown request")
			continue
		}
		ch <- reply{envelope: env}
	}
}

func (c *Client) failAll(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		ch <- reply{err: err}
		delete(c.pending, id)
	}
}

// Request sends a message tagged with messageType, identified by
// identifier, and blocks until the matching reply arrives, ctx is
// cancelled, or the connection fails. It decodes the reply into
// wantType/response.
func (c *Client) Request(ctx context.Context, identifier int64, messageType string, request interface{}, wantType string, response interface{}) error {
	env, err := c.codec.Pack(messageType, request)
	if err != nil {
		return fmt.Errorf("could not pack request: %w", err)
	}
	data, err := c.codec.EncodeEnvelope(env)
	if err != nil {
		return fmt.Errorf("could not encode envelope: %w", err)
	}

	ch := make(chan reply, 1)
	c.pendingMu.Lock()
	c.pending[identifier] = ch
	c.pendingMu.Unlock()

	c.writeMu.Lock()
	err = WriteFrame(c.conn, data)
	c.writeMu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, identifier)
		c.pendingMu.Unlock()
		return fmt.Errorf("could not send request: %w", err)
	}

	select {
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, identifier)
		c.pendingMu.Unlock()
		return fmt.Errorf("request %d timed out: %w", identifier, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return r.err
		}
		return c.codec.Unpack(r.envelope, wantType, response)
	}
}

// RequestReply dials address, sends a single request, waits up to timeout
// for the matching reply, and tears the connection back down. It exists
// for call sites that need a single round trip rather than a held-open
// client, and grounds component I's "single request/reply on the wire"
// shape directly, without the bookkeeping a long-lived Client needs.
func RequestReply(address string, cdc *codec.Codec, log zerolog.Logger, identifier int64, messageType string, request interface{}, wantType string, response interface{}, timeout time.Duration) error {
	c, err := Dial(address, cdc, log)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return c.Request(ctx, identifier, messageType, request, wantType, response)
}
