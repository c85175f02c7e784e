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

// Package locator turns preliminary origins into refined ones: it drops
// origins outside its own monitoring region, submits the rest to a remote
// location service, merges a successful response back onto the origin with
// fresh identifiers, and republishes it. Three dedicated threads — one
// subscribing to the preliminary-origin bus, one driving the location
// round trip, one publishing the result — hand work off through two bounded
// queues so a slow publisher can never stall the subscriber and a slow
// locator can never stall either side.
package locator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/codec"
	"github.com/onflow/urts-dps/engine"
	"github.com/onflow/urts-dps/model/urts"
)

// Subscriber is whatever the orchestrator reads preliminary origins from.
// transport/publish.Subscriber satisfies this.
type Subscriber interface {
	Next() (codec.Envelope, error)
	Close() error
}

// Publisher is whatever the orchestrator republishes refined origins to.
// transport/publish.Publisher satisfies this.
type Publisher interface {
	Broadcast(messageType string, value interface{}, tag string)
}

// LocationClient submits a location request and waits for the refined
// origin. transport/locate.Client satisfies this.
type LocationClient interface {
	Locate(ctx context.Context, req urts.LocationRequest) (urts.LocationResponse, error)
}

// IdentifierClient draws fresh, never-reused identifiers from a named
// counter. transport/incrementer.Client satisfies this.
type IdentifierClient interface {
	Next(ctx context.Context, counter string, count int64) (int64, error)
}

// Config carries the per-instance settings spec.md §4.H names: the region
// this instance serves, the name it stamps onto a refined origin's
// algorithms list, and the two inter-thread queues' capacities.
type Config struct {
	Region           string
	AlgorithmName    string
	InboundCapacity  int
	OutboundCapacity int
}

// Orchestrator is the locator orchestrator of §4.H: one instance per
// monitoring region.
type Orchestrator struct {
	log zerolog.Logger
	cfg Config

	codec       *codec.Codec
	sub         Subscriber
	pub         Publisher
	location    LocationClient
	identifiers IdentifierClient

	inbound  *Queue
	outbound *Queue

	requestSeq int64

	mu              sync.Mutex
	subscribeActive bool
}

// NewOrchestrator builds an Orchestrator wired to a preliminary-origin
// subscriber, a refined-origin publisher, a locator RPC client, and an
// identifier incrementer client.
func NewOrchestrator(log zerolog.Logger, cfg Config, cdc *codec.Codec, sub Subscriber, pub Publisher, location LocationClient, identifiers IdentifierClient) *Orchestrator {
	if cfg.InboundCapacity <= 0 {
		cfg.InboundCapacity = 64
	}
	if cfg.OutboundCapacity <= 0 {
		cfg.OutboundCapacity = 64
	}
	o := Orchestrator{
		log:         log.With().Str("component", "locator_orchestrator").Str("region", cfg.Region).Logger(),
		cfg:         cfg,
		codec:       cdc,
		sub:         sub,
		pub:         pub,
		location:    location,
		identifiers: identifiers,
		inbound:     NewQueue(cfg.InboundCapacity),
		outbound:    NewQueue(cfg.OutboundCapacity),
	}
	return &o
}

// Register wires the orchestrator's three threads onto e as named
// components, so they share the engine's start/notify/interrupt/forceQuit
// shutdown protocol exactly as the pipeline scheduler's workers do.
func (o *Orchestrator) Register(e *engine.Engine) *engine.Engine {
	e = e.Component("locator-subscribe", o.runSubscribe, o.stopSubscribe)
	e = e.Component("locator-locate", o.runLocate, o.stopLocate)
	e = e.Component("locator-publish", o.runPublish, o.stopPublish)
	return e
}

func (o *Orchestrator) runSubscribe() error {
	o.mu.Lock()
	o.subscribeActive = true
	o.mu.Unlock()

	for {
		env, err := o.sub.Next()
		if err != nil {
			o.mu.Lock()
			active := o.subscribeActive
			o.mu.Unlock()
			if !active {
				return nil
			}
			o.log.Error().Err(err).Msg("preliminary-origin bus connection failed")
			return err
		}

		var origin urts.Origin
		if err := o.codec.Unpack(env, "Origin", &origin); err != nil {
			o.log.Error().Err(err).Msg("could not unpack preliminary origin, dropping it")
			continue
		}
		o.inbound.Push(origin)
		sharedMetrics.queueDepth.WithLabelValues("inbound").Set(float64(o.inbound.Len()))
	}
}

func (o *Orchestrator) stopSubscribe() {
	o.mu.Lock()
	o.subscribeActive = false
	o.mu.Unlock()
	o.sub.Close()
}

func (o *Orchestrator) runLocate() error {
	for {
		v, ok := o.inbound.Pop()
		if !ok {
			return nil
		}
		origin := v.(urts.Origin)

		refined, publish := o.processOne(origin)
		if publish {
			o.outbound.Push(refined)
			sharedMetrics.queueDepth.WithLabelValues("outbound").Set(float64(o.outbound.Len()))
		}
	}
}

func (o *Orchestrator) stopLocate() {
	o.inbound.Close()
}

func (o *Orchestrator) runPublish() error {
	for {
		v, ok := o.outbound.Pop()
		if !ok {
			return nil
		}
		origin := v.(urts.Origin)
		o.pub.Broadcast("Origin", origin, fmt.Sprintf("%d", origin.Identifier))
	}
}

func (o *Orchestrator) stopPublish() {
	o.outbound.Close()
}

// processOne implements spec.md §4.H steps 1-4 for a single origin. The
// second return value is false only when the origin is dropped outright
// for serving the wrong region (step 1); every other path, success or
// failure, publishes something.
func (o *Orchestrator) processOne(origin urts.Origin) (urts.Origin, bool) {
	if origin.Region != o.cfg.Region {
		return urts.Origin{}, false
	}

	arrivals := make([]urts.Arrival, len(origin.Arrivals))
	copy(arrivals, origin.Arrivals)
	sort.Slice(arrivals, func(i, j int) bool { return arrivals[i].ArrivalTimeUS < arrivals[j].ArrivalTimeUS })

	strategy := urts.LocationStrategyGeneral
	if origin.EventType == urts.EventQuarryBlast {
		strategy = urts.LocationStrategyFreeSurface
	}

	req := urts.LocationRequest{
		Identifier:       atomic.AddInt64(&o.requestSeq, 1),
		LocationStrategy: strategy,
		Arrivals:         arrivals,
	}

	if err := req.Validate(); err != nil {
		o.log.Error().Err(err).Int64("origin", origin.Identifier).Msg("origin's arrivals failed validation, propagating unrefined origin")
		sharedMetrics.failures.Inc()
		return origin, true
	}

	ctx := context.Background()
	resp, err := o.location.Locate(ctx, req)
	if err != nil || resp.Origin == nil {
		o.log.Error().Err(err).Int64("origin", origin.Identifier).Msg("location request failed, propagating unrefined origin")
		sharedMetrics.failures.Inc()
		return origin, true
	}

	refined, err := o.mergeRefined(ctx, origin, *resp.Origin)
	if err != nil {
		o.log.Error().Err(err).Int64("origin", origin.Identifier).Msg("could not re-stamp identifiers, propagating unrefined origin")
		sharedMetrics.failures.Inc()
		return origin, true
	}

	return refined, true
}

// mergeRefined implements step 3: merge the refined location onto the
// original origin, compute residuals, and re-stamp fresh identifiers.
func (o *Orchestrator) mergeRefined(ctx context.Context, original urts.Origin, refined urts.RefinedOrigin) (urts.Origin, error) {
	merged := original
	merged.OriginTimeUS = refined.OriginTimeUS
	merged.Latitude = refined.Latitude
	merged.Longitude = refined.Longitude
	merged.DepthMeters = refined.DepthMeters
	merged.Arrivals = refined.Arrivals

	for i, a := range merged.Arrivals {
		residual, ok := merged.Residual(a)
		if ok {
			merged.Arrivals[i].ResidualUS = &residual
		}
	}

	originID, err := o.identifiers.Next(ctx, "origin", 1)
	if err != nil {
		return urts.Origin{}, fmt.Errorf("could not draw origin identifier: %w", err)
	}

	var firstArrivalID int64
	if len(merged.Arrivals) > 0 {
		firstArrivalID, err = o.identifiers.Next(ctx, "arrival", int64(len(merged.Arrivals)))
		if err != nil {
			return urts.Origin{}, fmt.Errorf("could not draw arrival identifiers: %w", err)
		}
	}
	for i := range merged.Arrivals {
		id := firstArrivalID + int64(i)
		merged.Arrivals[i].Identifier = &id
	}

	merged.PreviousIdentifiers = append(append([]int64{}, original.PreviousIdentifiers...), original.Identifier)
	merged.Identifier = originID
	merged.Algorithms = append(append([]string{}, original.Algorithms...), o.cfg.AlgorithmName)

	return merged, nil
}
