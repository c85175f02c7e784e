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

package sensor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/urts-dps/model/urts"
)

func testChannel() urts.ChannelData {
	return urts.ChannelData{
		Identity:     urts.Identity{Network: "UU", Station: "WPUT", Channel: "HHZ", Location: "01"},
		SamplingRate: 100,
	}
}

func smallConfig() Config {
	return Config{
		DetectorWindowUS:    1_000_000,
		MaxLatencyUS:        100_000_000,
		GapToleranceSamples: 5,
		QueryWaitPct:        30,
		CenterWindowStart:   2,
		CenterWindowEnd:     4,
		OutputRate:          10,
		PrepadQueryUS:       0,
	}
}

func packetCovering(identity urts.Identity, t0, t1 int64, rate float64) urts.Packet {
	n := int((t1-t0)/1_000_000*int64(rate)) + 1
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}
	return urts.Packet{Identity: identity, SamplingRate: rate, StartTimeUS: t0, Data: data}
}

func TestQueryTransitionsToInferenceWhenWindowLongEnough(t *testing.T) {
	channel := testChannel()
	s := NewState1C(channel, "eq", "noise", "test-detector", smallConfig())

	cache := &fakeCache{
		single: func(ctx context.Context, req urts.DataRequest) ([]urts.Packet, error) {
			t0, t1 := int64(req.StartTimeS*1e6), int64(req.EndTimeS*1e6)
			return []urts.Packet{packetCovering(channel.Identity, t0, t1, 100)}, nil
		},
	}
	tr := NewTransitions(cache, nil, nil, func() int64 { return 2_000_000 })

	err := tr.Query(s)
	require.NoError(t, err)

	assert.Equal(t, StatusInference, s.Status)
	assert.Equal(t, int64(2_000_000), s.LastQueryTimeUS)
	assert.Equal(t, 1, cache.callCount)
}

func TestQueryStaysInQueryWhenWindowTooShort(t *testing.T) {
	channel := testChannel()
	s := NewState1C(channel, "eq", "noise", "test-detector", smallConfig())

	cache := &fakeCache{
		single: func(ctx context.Context, req urts.DataRequest) ([]urts.Packet, error) {
			t0, t1 := int64(req.StartTimeS*1e6), int64(req.EndTimeS*1e6)
			return []urts.Packet{packetCovering(channel.Identity, t0, t1, 100)}, nil
		},
	}
	// now=500,000us gives a clipping window of [-200,000, 500,000], a
	// 700,000us extent short of the 1,000,000us detector window.
	tr := NewTransitions(cache, nil, nil, func() int64 { return 500_000 })

	err := tr.Query(s)
	require.NoError(t, err)

	assert.Equal(t, StatusQuery, s.Status)
	assert.Equal(t, int64(500_000), s.LastQueryTimeUS, "pacing must still tick even when the window stays too short")
}

func TestQueryRespectsPacingInterval(t *testing.T) {
	channel := testChannel()
	s := NewState1C(channel, "eq", "noise", "test-detector", smallConfig())
	s.LastQueryTimeUS = 1_000_000 // query_wait_interval for this config is 300,000us

	cache := &fakeCache{
		single: func(ctx context.Context, req urts.DataRequest) ([]urts.Packet, error) {
			return nil, fmt.Errorf("must not be called before the pacing interval elapses")
		},
	}
	tr := NewTransitions(cache, nil, nil, func() int64 { return 1_200_000 })

	err := tr.Query(s)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.callCount)
	assert.Equal(t, int64(1_000_000), s.LastQueryTimeUS)
}

func TestQueryLatencyResetSnapsProbabilityTimeToNow(t *testing.T) {
	channel := testChannel()
	s := NewState1C(channel, "eq", "noise", "test-detector", smallConfig())
	s.LastProbabilityTimeUS = 0

	cache := &fakeCache{
		single: func(ctx context.Context, req urts.DataRequest) ([]urts.Packet, error) {
			return nil, nil
		},
	}
	now := int64(500_000_000) // far beyond max_latency (100s) past last_probability_time
	tr := NewTransitions(cache, nil, nil, func() int64 { return now })

	err := tr.Query(s)
	require.NoError(t, err)
	assert.Equal(t, now, s.LastProbabilityTimeUS)
}

func TestQueryErrorDoesNotMutateProbabilityTimeButPacingStillTicks(t *testing.T) {
	channel := testChannel()
	s := NewState1C(channel, "eq", "noise", "test-detector", smallConfig())
	s.LastProbabilityTimeUS = 42

	cache := &fakeCache{
		single: func(ctx context.Context, req urts.DataRequest) ([]urts.Packet, error) {
			return nil, fmt.Errorf("cache unreachable")
		},
	}
	tr := NewTransitions(cache, nil, nil, func() int64 { return 2_000_000 })

	err := tr.Query(s)
	assert.Error(t, err)
	assert.Equal(t, StatusQuery, s.Status)
	assert.Equal(t, int64(42), s.LastProbabilityTimeUS)
	assert.Equal(t, int64(2_000_000), s.LastQueryTimeUS, "pacing must update even on a failed query")
}

func TestQueryBulkDemultiplexesThreeComponents(t *testing.T) {
	group := urts.ThreeComponentGroup{
		Vertical: urts.ChannelData{Identity: urts.Identity{Network: "UU", Station: "WPUT", Channel: "HHZ", Location: "01"}, SamplingRate: 100},
		North:    urts.ChannelData{Identity: urts.Identity{Network: "UU", Station: "WPUT", Channel: "HHN", Location: "01"}, SamplingRate: 100},
		East:     urts.ChannelData{Identity: urts.Identity{Network: "UU", Station: "WPUT", Channel: "HHE", Location: "01"}, SamplingRate: 100},
	}
	require.True(t, group.Valid())

	names := ThreeComponentNames{PPositive: "p", PNegative: "noise", SPositive: "s", SNegative: "noise"}
	s := NewState3C(group, names, "test-detector", smallConfig())

	cache := &fakeCache{
		bulk: func(ctx context.Context, req urts.BulkDataRequest) ([]urts.DataResponse, error) {
			require.Len(t, req.Requests, 3)
			responses := make([]urts.DataResponse, len(req.Requests))
			for i, r := range req.Requests {
				t0, t1 := int64(r.StartTimeS*1e6), int64(r.EndTimeS*1e6)
				responses[i] = urts.DataResponse{
					Identifier: r.Identifier,
					ReturnCode: urts.DataSuccess,
					Packets:    []urts.Packet{packetCovering(r.Identity, t0, t1, 100)},
				}
			}
			return responses, nil
		},
	}
	tr := NewTransitions(cache, nil, nil, func() int64 { return 2_000_000 })

	err := tr.Query(s)
	require.NoError(t, err)
	assert.Equal(t, StatusInference, s.Status)
	assert.Len(t, s.window.Signals, 3)
}
