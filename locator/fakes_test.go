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

package locator

import (
	"context"
	"fmt"
	"sync"

	"github.com/onflow/urts-dps/codec"
	"github.com/onflow/urts-dps/model/urts"
)

// fakeSubscriber feeds a fixed list of origins, then blocks until closed.
type fakeSubscriber struct {
	cdc *codec.Codec

	mu     sync.Mutex
	queue  []urts.Origin
	closed chan struct{}
}

func newFakeSubscriber(cdc *codec.Codec, origins ...urts.Origin) *fakeSubscriber {
	return &fakeSubscriber{cdc: cdc, queue: origins, closed: make(chan struct{})}
}

func (f *fakeSubscriber) Next() (codec.Envelope, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		next := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return f.cdc.Pack("Origin", next)
	}
	f.mu.Unlock()

	<-f.closed
	return codec.Envelope{}, fmt.Errorf("subscriber closed")
}

func (f *fakeSubscriber) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

// fakePublisher records every broadcast origin it receives.
type fakePublisher struct {
	mu        sync.Mutex
	published []urts.Origin
}

func (f *fakePublisher) Broadcast(_ string, value interface{}, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, value.(urts.Origin))
}

func (f *fakePublisher) snapshot() []urts.Origin {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]urts.Origin, len(f.published))
	copy(out, f.published)
	return out
}

// workingLocation always succeeds with a fixed refined estimate.
type workingLocation struct{}

func (workingLocation) Locate(_ context.Context, req urts.LocationRequest) (urts.LocationResponse, error) {
	arrivals := make([]urts.Arrival, len(req.Arrivals))
	for i, a := range req.Arrivals {
		tt := int64(5_000_000)
		a.TravelTimeUS = &tt
		arrivals[i] = a
	}
	return urts.LocationResponse{
		Identifier: req.Identifier,
		ReturnCode: urts.LocationSuccess,
		Origin: &urts.RefinedOrigin{
			Latitude:     40.0,
			Longitude:    -111.0,
			DepthMeters:  5000,
			OriginTimeUS: 1_000_000,
			Arrivals:     arrivals,
		},
	}, nil
}

// recordingLocation succeeds like workingLocation but also records every
// request it receives, so a test can inspect the strategy chosen for it.
type recordingLocation struct {
	mu       sync.Mutex
	requests []urts.LocationRequest
}

func (r *recordingLocation) Locate(ctx context.Context, req urts.LocationRequest) (urts.LocationResponse, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	return workingLocation{}.Locate(ctx, req)
}

// brokenLocation always fails.
type brokenLocation struct{}

func (brokenLocation) Locate(_ context.Context, req urts.LocationRequest) (urts.LocationResponse, error) {
	return urts.LocationResponse{}, fmt.Errorf("locator unreachable")
}

// sequentialIdentifiers hands out consecutive blocks starting at 100 per
// counter, independently per counter name.
type sequentialIdentifiers struct {
	mu      sync.Mutex
	nextFor map[string]int64
}

func newSequentialIdentifiers() *sequentialIdentifiers {
	return &sequentialIdentifiers{nextFor: make(map[string]int64)}
}

func (s *sequentialIdentifiers) Next(_ context.Context, counter string, count int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nextFor[counter]; !ok {
		s.nextFor[counter] = 100
	}
	first := s.nextFor[counter]
	s.nextFor[counter] += count
	return first, nil
}

// brokenIdentifiers always fails.
type brokenIdentifiers struct{}

func (brokenIdentifiers) Next(_ context.Context, _ string, _ int64) (int64, error) {
	return 0, fmt.Errorf("incrementer unreachable")
}
