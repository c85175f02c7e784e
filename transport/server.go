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
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/codec"
)

// Handler answers a single request envelope with a reply envelope.
type Handler func(req codec.Envelope) (codec.Envelope, error)

// Router dispatches incoming envelopes to a handler registered for their
// message type: the server-side counterpart of Client in the request/reply
// fabric. The publish/subscribe buses use transport/publish, not Router.
type Router struct {
	log   zerolog.Logger
	codec *codec.Codec

	mu       sync.RWMutex
	handlers map[string]Handler

	listener net.Listener
	wg       sync.WaitGroup
}

// NewRouter creates a Router listening on address.
func NewRouter(address string, cdc *codec.Codec, log zerolog.Logger) (*Router, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", address, err)
	}
	r := Router{
		log:      log.With().Str("component", "transport_router").Str("address", address).Logger(),
		codec:    cdc,
		handlers: make(map[string]Handler),
		listener: listener,
	}
	return &r, nil
}

// Handle registers a handler for a message type. It is not safe to call
// concurrently with Run.
func (r *Router) Handle(messageType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[messageType] = handler
}

// Run accepts connections until the listener is closed by Stop.
func (r *Router) Run() error {
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			r.wg.Wait()
			return nil
		}
		r.wg.Add(1)
		go r.serve(conn)
	}
}

// Stop closes the listener, causing Run to return once in-flight
// connections have drained.
func (r *Router) Stop() {
	r.listener.Close()
}

func (r *Router) serve(conn net.Conn) {
	defer r.wg.Done()
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		frame, err := ReadFrame(reader)
		if err != nil {
			return
		}

		var env codec.Envelope
		env, err = r.codec.DecodeEnvelope(frame)
		if err != nil {
			r.log.Error().Err(err).Msg("could not decode envelope")
			continue
		}

		r.mu.RLock()
		handler, ok := r.handlers[env.Type]
		r.mu.RUnlock()
		if !ok {
			r.log.Warn().Str("type", env.Type).Msg("no handler registered for message type")
			continue
		}

		reply, err := handler(env)
		if err != nil {
			r.log.Error().Err(err).Str("type", env.Type).Msg("handler failed")
			continue
		}

		data, err := r.codec.EncodeEnvelope(reply)
		if err != nil {
			r.log.Error().Err(err).Msg("could not encode reply envelope")
			continue
		}
		if err := WriteFrame(conn, data); err != nil {
			r.log.Error().Err(err).Msg("could not write reply")
			return
		}
	}
}
