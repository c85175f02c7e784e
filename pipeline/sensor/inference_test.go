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

// inferenceConfig matches smallConfig but is restated here so this file's
// worked-out index arithmetic (in the comments below) stays self-contained.
func inferenceConfig() Config {
	return Config{
		DetectorWindowUS:    1_000_000,
		MaxLatencyUS:        100_000_000,
		GapToleranceSamples: 5,
		QueryWaitPct:        30,
		CenterWindowStart:   2,
		CenterWindowEnd:     4,
		OutputRate:          10, // dt = 100,000us
		PrepadQueryUS:       0,
	}
}

func probabilities(n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}
	return data
}

// TestInferenceSlicingColdStart works through the "cold start" branch of
// the output-slicing algorithm: last_probability_time=0, a 2s response at
// 10Hz (21 samples), end_window_time=400,000us → i1=16, and
// start_window_time=200,000us → i0=2.
func TestInferenceSlicingColdStart(t *testing.T) {
	channel := testChannel()
	s := NewState1C(channel, "eq", "noise", "test-detector", inferenceConfig())
	s.window = urts.WaveformWindow{SamplingRate: 100}

	infer := &fakeInference{
		infer: func(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
			return urts.InferenceResponse{
				Identifier:    req.Identifier,
				ReturnCode:    urts.InferenceSuccess,
				SamplingRate:  10,
				StartTimeUS:   0,
				Probabilities: probabilities(21),
			}, nil
		},
	}
	tr := NewTransitions(nil, map[urts.Phase]InferenceClient{urts.PhaseP: infer}, nil, func() int64 { return 0 })

	err := tr.Inference(s)
	require.NoError(t, err)

	p, ok := s.pending[urts.PhaseP]
	require.True(t, ok)
	assert.True(t, p.ok)
	assert.Equal(t, int64(200_000), p.packet.StartTimeUS)
	assert.Equal(t, probabilities(21)[2:16], p.packet.Data)
	assert.Equal(t, int64(1_600_000), s.LastProbabilityTimeUS)
	assert.Equal(t, StatusPublish, s.Status)
}

// TestInferenceSlicingSteadyState uses the same response but with
// last_probability_time already at 300,000us, landing in the steady-state
// branch: i0 = round((300,000-0)/100,000) = 3.
func TestInferenceSlicingSteadyState(t *testing.T) {
	channel := testChannel()
	s := NewState1C(channel, "eq", "noise", "test-detector", inferenceConfig())
	s.LastProbabilityTimeUS = 300_000
	s.window = urts.WaveformWindow{SamplingRate: 100}

	infer := &fakeInference{
		infer: func(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
			return urts.InferenceResponse{
				Identifier:    req.Identifier,
				ReturnCode:    urts.InferenceSuccess,
				SamplingRate:  10,
				StartTimeUS:   0,
				Probabilities: probabilities(21),
			}, nil
		},
	}
	tr := NewTransitions(nil, map[urts.Phase]InferenceClient{urts.PhaseP: infer}, nil, func() int64 { return 0 })

	err := tr.Inference(s)
	require.NoError(t, err)

	p := s.pending[urts.PhaseP]
	assert.True(t, p.ok)
	assert.Equal(t, int64(300_000), p.packet.StartTimeUS)
	assert.Equal(t, probabilities(21)[3:16], p.packet.Data)
}

func TestInferenceNoPacketWhenI0EqualsI1(t *testing.T) {
	channel := testChannel()
	cfg := inferenceConfig()
	s := NewState1C(channel, "eq", "noise", "test-detector", cfg)
	// Steady state with last_probability_time already at the trusted edge
	// collapses i0 to i1: no new samples to emit.
	s.LastProbabilityTimeUS = 1_600_000
	s.window = urts.WaveformWindow{SamplingRate: 100}

	infer := &fakeInference{
		infer: func(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
			return urts.InferenceResponse{
				ReturnCode:    urts.InferenceSuccess,
				SamplingRate:  10,
				StartTimeUS:   0,
				Probabilities: probabilities(21),
			}, nil
		},
	}
	tr := NewTransitions(nil, map[urts.Phase]InferenceClient{urts.PhaseP: infer}, nil, func() int64 { return 0 })

	err := tr.Inference(s)
	require.NoError(t, err)

	p := s.pending[urts.PhaseP]
	assert.False(t, p.ok)
	assert.Equal(t, int64(1_600_000), s.LastProbabilityTimeUS, "time still advances to signal_start+i1*dt even with nothing to emit")
}

func threeComponentGroup() urts.ThreeComponentGroup {
	return urts.ThreeComponentGroup{
		Vertical: urts.ChannelData{Identity: urts.Identity{Network: "UU", Station: "WPUT", Channel: "HHZ", Location: "01"}, SamplingRate: 100},
		North:    urts.ChannelData{Identity: urts.Identity{Network: "UU", Station: "WPUT", Channel: "HHN", Location: "01"}, SamplingRate: 100},
		East:     urts.ChannelData{Identity: urts.Identity{Network: "UU", Station: "WPUT", Channel: "HHE", Location: "01"}, SamplingRate: 100},
	}
}

func TestInferenceOnePhaseFailureStillLetsOtherPublish(t *testing.T) {
	group := threeComponentGroup()
	names := ThreeComponentNames{PPositive: "p", PNegative: "noise", SPositive: "s", SNegative: "noise"}
	s := NewState3C(group, names, "test-detector", inferenceConfig())
	s.window = urts.WaveformWindow{SamplingRate: 100}

	working := &fakeInference{
		infer: func(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
			return urts.InferenceResponse{ReturnCode: urts.InferenceSuccess, SamplingRate: 10, StartTimeUS: 0, Probabilities: probabilities(21)}, nil
		},
	}
	broken := &fakeInference{
		infer: func(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
			return urts.InferenceResponse{}, fmt.Errorf("detector unreachable")
		},
	}
	tr := NewTransitions(nil, map[urts.Phase]InferenceClient{urts.PhaseP: working, urts.PhaseS: broken}, nil, func() int64 { return 0 })

	err := tr.Inference(s)
	require.NoError(t, err)

	assert.True(t, s.pending[urts.PhaseP].ok)
	assert.False(t, s.pending[urts.PhaseS].ok)
	assert.Equal(t, StatusPublish, s.Status)
}

func TestInferenceAllPhasesFailingReturnsError(t *testing.T) {
	group := threeComponentGroup()
	names := ThreeComponentNames{PPositive: "p", PNegative: "noise", SPositive: "s", SNegative: "noise"}
	s := NewState3C(group, names, "test-detector", inferenceConfig())
	s.window = urts.WaveformWindow{SamplingRate: 100}
	s.LastProbabilityTimeUS = 42

	broken := &fakeInference{
		infer: func(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
			return urts.InferenceResponse{}, fmt.Errorf("detector unreachable")
		},
	}
	tr := NewTransitions(nil, map[urts.Phase]InferenceClient{urts.PhaseP: broken, urts.PhaseS: broken}, nil, func() int64 { return 0 })

	err := tr.Inference(s)
	assert.Error(t, err)
	assert.Equal(t, int64(42), s.LastProbabilityTimeUS)
}

func TestInferenceCrossDetectorLengthMismatch(t *testing.T) {
	group := threeComponentGroup()
	names := ThreeComponentNames{PPositive: "p", PNegative: "noise", SPositive: "s", SNegative: "noise"}
	s := NewState3C(group, names, "test-detector", inferenceConfig())
	s.window = urts.WaveformWindow{SamplingRate: 100}

	pClient := &fakeInference{
		infer: func(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
			return urts.InferenceResponse{ReturnCode: urts.InferenceSuccess, SamplingRate: 10, StartTimeUS: 0, Probabilities: probabilities(21)}, nil
		},
	}
	sClient := &fakeInference{
		infer: func(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
			return urts.InferenceResponse{ReturnCode: urts.InferenceSuccess, SamplingRate: 10, StartTimeUS: 0, Probabilities: probabilities(19)}, nil
		},
	}
	tr := NewTransitions(nil, map[urts.Phase]InferenceClient{urts.PhaseP: pClient, urts.PhaseS: sClient}, nil, func() int64 { return 0 })

	err := tr.Inference(s)
	assert.Error(t, err)
}
