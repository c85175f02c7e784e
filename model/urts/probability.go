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

package urts

// ProbabilityPacket carries one phase detector's output for one sensor.
// It shares the Packet identity but additionally records which original
// channels it was computed from and which algorithm produced it.
type ProbabilityPacket struct {
	Identity
	SamplingRate      float64   `cbor:"sampling_rate" validate:"gt=0"`
	StartTimeUS       int64     `cbor:"start_time_us"`
	Data              []float64 `cbor:"data"`
	OriginalChannels  []string  `cbor:"original_channels"`
	PositiveClassName string    `cbor:"positive_class"`
	NegativeClassName string    `cbor:"negative_class"`
	Algorithm         string    `cbor:"algorithm"`
}

// EndTimeUS returns the packet's end time: start + (N-1)/rate, in
// microseconds. A packet with no samples has no extent.
func (p ProbabilityPacket) EndTimeUS() int64 {
	if len(p.Data) == 0 {
		return p.StartTimeUS
	}
	durationUS := float64(len(p.Data)-1) / p.SamplingRate * 1e6
	return p.StartTimeUS + int64(durationUS+0.5)
}
