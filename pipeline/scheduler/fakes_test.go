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

package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/onflow/urts-dps/model/urts"
	"github.com/onflow/urts-dps/pipeline/sensor"
)

// workingCache always returns a packet covering the requested range,
// letting a sensor's Query transition reach Inference deterministically.
type workingCache struct{}

func (workingCache) SingleRange(_ context.Context, req urts.DataRequest) ([]urts.Packet, error) {
	const rate = 100.0
	t0, t1 := int64(req.StartTimeS*1e6), int64(req.EndTimeS*1e6)
	n := int((t1-t0)/1_000_000*rate) + 1
	if n < 1 {
		n = 1
	}
	return []urts.Packet{{Identity: req.Identity, SamplingRate: rate, StartTimeUS: t0, Data: make([]float64, n)}}, nil
}

func (workingCache) BulkRange(_ context.Context, _ urts.BulkDataRequest) ([]urts.DataResponse, error) {
	return nil, fmt.Errorf("not used by these tests")
}

// brokenCache always fails, exercising the error-isolation path.
type brokenCache struct{}

func (brokenCache) SingleRange(_ context.Context, _ urts.DataRequest) ([]urts.Packet, error) {
	return nil, fmt.Errorf("cache unreachable")
}

func (brokenCache) BulkRange(_ context.Context, _ urts.BulkDataRequest) ([]urts.DataResponse, error) {
	return nil, fmt.Errorf("cache unreachable")
}

type workingInference struct{}

func (workingInference) Infer(_ context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
	return urts.InferenceResponse{
		Identifier:    req.Identifier,
		ReturnCode:    urts.InferenceSuccess,
		SamplingRate:  10,
		StartTimeUS:   0,
		Probabilities: make([]float64, 21),
	}, nil
}

// countingPublisher counts how many probability packets it has received,
// safe for concurrent use by a worker's Run goroutine and the test's
// polling assertions.
type countingPublisher struct {
	mu        sync.Mutex
	published int
}

func (p *countingPublisher) Publish(_ urts.ProbabilityPacket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published++
}

func (p *countingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published
}

func workingSensor(station string, pub sensor.Publisher) *sensor.FSM {
	channel := urts.ChannelData{
		Identity:     urts.Identity{Network: "UU", Station: station, Channel: "HHZ", Location: "01"},
		SamplingRate: 100,
	}
	cfg := sensor.Config{
		DetectorWindowUS:    1_000_000,
		MaxLatencyUS:        100_000_000,
		GapToleranceSamples: 5,
		QueryWaitPct:        0,
		CenterWindowStart:   2,
		CenterWindowEnd:     4,
		OutputRate:          10,
		PrepadQueryUS:       0,
	}
	s := sensor.NewState1C(channel, "eq", "noise", "test-detector", cfg)
	tr := sensor.NewTransitions(workingCache{}, map[urts.Phase]sensor.InferenceClient{urts.PhaseP: workingInference{}}, pub, func() int64 { return 2_000_000 })
	return sensor.NewFSM(s, tr)
}

func brokenSensor(station string) *sensor.FSM {
	channel := urts.ChannelData{
		Identity:     urts.Identity{Network: "UU", Station: station, Channel: "HHZ", Location: "01"},
		SamplingRate: 100,
	}
	cfg := sensor.Config{
		DetectorWindowUS:    1_000_000,
		MaxLatencyUS:        100_000_000,
		GapToleranceSamples: 5,
		QueryWaitPct:        0,
		CenterWindowStart:   2,
		CenterWindowEnd:     4,
		OutputRate:          10,
		PrepadQueryUS:       0,
	}
	s := sensor.NewState1C(channel, "eq", "noise", "test-detector", cfg)
	tr := sensor.NewTransitions(brokenCache{}, nil, nil, func() int64 { return 2_000_000 })
	return sensor.NewFSM(s, tr)
}
