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

import "fmt"

// Identity is the four-tuple that names a single waveform channel.
type Identity struct {
	Network  string `cbor:"network" validate:"required"`
	Station  string `cbor:"station" validate:"required"`
	Channel  string `cbor:"channel" validate:"required"`
	Location string `cbor:"location" validate:"required"`
}

// String renders the identity the way log lines and sensor names do
// throughout this system: NET.STA.CHA.LOC.
func (i Identity) String() string {
	return fmt.Sprintf("%s.%s.%s.%s", i.Network, i.Station, i.Channel, i.Location)
}

// Packet is a contiguous waveform chunk for one channel.
type Packet struct {
	Identity
	SamplingRate float64   `cbor:"sampling_rate" validate:"gt=0"`
	StartTimeUS  int64     `cbor:"start_time_us"`
	Data         []float64 `cbor:"data" validate:"required,min=1"`
}

// EndTimeUS returns the packet's end time: start + (N-1)/rate, in
// microseconds.
func (p Packet) EndTimeUS() int64 {
	if len(p.Data) == 0 {
		return p.StartTimeUS
	}
	durationUS := float64(len(p.Data)-1) / p.SamplingRate * 1e6
	return p.StartTimeUS + int64(durationUS+0.5)
}

// Before reports whether p starts strictly before other. Packets that share
// an identity must be orderable by start time; this is the order used when
// the interpolator sorts a packet list.
func (p Packet) Before(other Packet) bool {
	return p.StartTimeUS < other.StartTimeUS
}
