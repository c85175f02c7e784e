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

import "github.com/onflow/urts-dps/model/urts"

// pending is the per-phase scratch carried from Inference into Publish: the
// packet to broadcast and whether slicing actually produced one.
type pending struct {
	packet urts.ProbabilityPacket
	ok     bool
}

// State is one sensor's row in the pipeline's scheduler table: the channel
// descriptor(s), the pre-built request/packet templates, the timing state,
// and the scratch a transition leaves for the next one to pick up.
//
// A State is owned exclusively by the worker driving its FSM. No field is
// ever touched from another goroutine.
type State struct {
	Config Config
	Hash   uint64

	cacheTemplates       []cacheTemplate
	inferenceTemplates   []inferenceTemplate
	probabilityTemplates []probabilityTemplate

	LastQueryTimeUS       int64
	LastProbabilityTimeUS int64
	Status                Status

	nextRequestID int64

	window urts.WaveformWindow

	pending map[urts.Phase]pending
}

// NewState1C builds the state machine row for a single-component sensor,
// emitting one phase (P).
func NewState1C(channel urts.ChannelData, positiveClass, negativeClass, algorithm string, cfg Config) *State {
	return newState(
		urts.SensorHash(channel.Identity),
		[]cacheTemplate{{identity: channel.Identity, samplingRate: channel.SamplingRate}},
		[]inferenceTemplate{{phase: urts.PhaseP}},
		[]probabilityTemplate{{
			phase:             urts.PhaseP,
			identity:          channel.Identity,
			originalChannels:  []string{channel.Identity.String()},
			positiveClassName: positiveClass,
			negativeClassName: negativeClass,
			algorithm:         algorithm,
		}},
		cfg,
	)
}

// ThreeComponentNames bundles the distinct positive/negative class names a
// 3C sensor's P and S detectors report, so NewState3C doesn't take eight
// bare strings.
type ThreeComponentNames struct {
	PPositive, PNegative string
	SPositive, SNegative string
}

// NewState3C builds the state machine row for a three-component sensor,
// running P and S detectors on the same interpolated signal and emitting
// both phases.
func NewState3C(group urts.ThreeComponentGroup, names ThreeComponentNames, algorithm string, cfg Config) *State {
	channels := []string{
		group.Vertical.Identity.String(),
		group.North.Identity.String(),
		group.East.Identity.String(),
	}
	id := urts.Identity{
		Network:  group.Vertical.Network,
		Station:  group.Vertical.Station,
		Channel:  group.BandInstrument(),
		Location: group.Vertical.Location,
	}
	return newState(
		group.Hash(),
		[]cacheTemplate{
			{identity: group.Vertical.Identity, samplingRate: group.Vertical.SamplingRate},
			{identity: group.North.Identity, samplingRate: group.North.SamplingRate},
			{identity: group.East.Identity, samplingRate: group.East.SamplingRate},
		},
		[]inferenceTemplate{{phase: urts.PhaseP}, {phase: urts.PhaseS}},
		[]probabilityTemplate{
			{phase: urts.PhaseP, identity: id, originalChannels: channels, positiveClassName: names.PPositive, negativeClassName: names.PNegative, algorithm: algorithm},
			{phase: urts.PhaseS, identity: id, originalChannels: channels, positiveClassName: names.SPositive, negativeClassName: names.SNegative, algorithm: algorithm},
		},
		cfg,
	)
}

func newState(hash uint64, cacheTemplates []cacheTemplate, inferenceTemplates []inferenceTemplate, probabilityTemplates []probabilityTemplate, cfg Config) *State {
	return &State{
		Config:               cfg,
		Hash:                 hash,
		cacheTemplates:       cacheTemplates,
		inferenceTemplates:   inferenceTemplates,
		probabilityTemplates: probabilityTemplates,
		Status:               StatusQuery,
		pending:              make(map[urts.Phase]pending),
	}
}

// nextRequestIdentifier returns the next value of the rolling
// request-identifier counter, starting at 1.
func (s *State) nextRequestIdentifier() int64 {
	s.nextRequestID++
	return s.nextRequestID
}

// NominalSamplingRate returns the sensor's own nominal rate: the grid the
// interpolator resamples onto, and the rate against which the configured
// gap tolerance (a sample count) is already expressed.
func (s *State) NominalSamplingRate() float64 {
	return s.cacheTemplates[0].samplingRate
}
