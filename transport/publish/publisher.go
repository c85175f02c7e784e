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

// Package publish is a one-to-many bus: a Publisher binds an address and
// fans every packet out to whichever Subscribers happen to be connected,
// the same pub-socket shape the probability bus and the preliminary-origin
// bus both use. Unlike the cache and inference clients, there is no reply
// to wait for: a subscriber whose connection fails a write is dropped and
// its failure is logged rather than propagated back to the sensor state
// machine. Writes have no deadline, so a slow subscriber delays the
// broadcast rather than being dropped.
package publish

import (
	"bufio"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/codec"
	"github.com/onflow/urts-dps/model/urts"
	"github.com/onflow/urts-dps/transport"
)

// Publisher binds a bus endpoint and broadcasts packets to every
// subscriber connected to it.
type Publisher struct {
	log   zerolog.Logger
	codec *codec.Codec

	listener net.Listener

	mu   sync.Mutex
	subs map[net.Conn]struct{}
}

// Bind starts a Publisher listening on address.
func Bind(address string, cdc *codec.Codec, log zerolog.Logger) (*Publisher, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not bind probability bus: %w", err)
	}
	p := Publisher{
		log:      log.With().Str("component", "probability_publisher").Logger(),
		codec:    cdc,
		listener: listener,
		subs:     make(map[net.Conn]struct{}),
	}
	go p.acceptLoop()
	return &p, nil
}

// Close stops accepting subscribers and closes every existing subscriber
// connection.
func (p *Publisher) Close() error {
	err := p.listener.Close()

	p.mu.Lock()
	for conn := range p.subs {
		conn.Close()
		delete(p.subs, conn)
	}
	p.mu.Unlock()

	return err
}

func (p *Publisher) acceptLoop() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return
		}
		p.mu.Lock()
		p.subs[conn] = struct{}{}
		p.mu.Unlock()
	}
}

// Publish emits one probability packet to every connected subscriber. A
// failure on one subscriber's connection is logged, that subscriber is
// dropped, and every other subscriber still receives the packet.
func (p *Publisher) Publish(packet urts.ProbabilityPacket) {
	p.Broadcast("ProbabilityPacket", packet, packet.Identity.String())
}

// Broadcast packs value under messageType and emits it to every connected
// subscriber, the same fan-out Publish uses. tag is logged alongside any
// failure so a dropped subscriber's log line names what it missed; callers
// with no natural tag can pass the empty string. Used directly by buses
// that carry something other than a probability packet, such as the
// locator orchestrator's preliminary- and refined-origin buses.
func (p *Publisher) Broadcast(messageType string, value interface{}, tag string) {
	env, err := p.codec.Pack(messageType, value)
	if err != nil {
		p.log.Error().Err(err).Str("type", messageType).Str("tag", tag).Msg("could not pack message")
		return
	}
	data, err := p.codec.EncodeEnvelope(env)
	if err != nil {
		p.log.Error().Err(err).Str("type", messageType).Str("tag", tag).Msg("could not encode message")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for conn := range p.subs {
		if err := transport.WriteFrame(conn, data); err != nil {
			p.log.Error().Err(err).Str("type", messageType).Str("tag", tag).Msg("could not write to subscriber, dropping it")
			conn.Close()
			delete(p.subs, conn)
		}
	}
}

// Subscriber consumes whatever a Publisher broadcasts on one bus
// endpoint.
type Subscriber struct {
	log    zerolog.Logger
	codec  *codec.Codec
	conn   net.Conn
	reader *bufio.Reader
}

// Subscribe connects to a Publisher's bus endpoint at address.
func Subscribe(address string, cdc *codec.Codec, log zerolog.Logger) (*Subscriber, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not connect to bus %s: %w", address, err)
	}
	s := Subscriber{
		log:    log.With().Str("component", "bus_subscriber").Logger(),
		codec:  cdc,
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
	return &s, nil
}

// Close disconnects from the bus.
func (s *Subscriber) Close() error {
	return s.conn.Close()
}

// Next blocks until the next envelope arrives on the bus, or the
// connection fails.
func (s *Subscriber) Next() (codec.Envelope, error) {
	frame, err := transport.ReadFrame(s.reader)
	if err != nil {
		return codec.Envelope{}, fmt.Errorf("bus connection lost: %w", err)
	}
	env, err := s.codec.DecodeEnvelope(frame)
	if err != nil {
		return codec.Envelope{}, fmt.Errorf("could not decode bus envelope: %w", err)
	}
	return env, nil
}
