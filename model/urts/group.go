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

import (
	"fmt"

	"github.com/OneOfOne/xxhash"
)

// ThreeComponentGroup is an ordered (vertical, north, east) triple of
// channel descriptors from the same network/station/location, sampling
// rate, and band/instrument prefix (the first two characters of the
// channel code).
type ThreeComponentGroup struct {
	Vertical ChannelData
	North    ChannelData
	East     ChannelData
}

// BandInstrument returns the shared first-two-characters prefix of the
// group's channel codes, used to name the emitted probability channel.
func (g ThreeComponentGroup) BandInstrument() string {
	if len(g.Vertical.Channel) < 2 {
		return g.Vertical.Channel
	}
	return g.Vertical.Channel[:2]
}

// Valid reports whether the three channels actually form a coherent group:
// same network/station/location, same sampling rate, and channel codes that
// only differ in their last character.
func (g ThreeComponentGroup) Valid() bool {
	v, n, e := g.Vertical, g.North, g.East
	if v.Network != n.Network || v.Network != e.Network {
		return false
	}
	if v.Station != n.Station || v.Station != e.Station {
		return false
	}
	if v.Location != n.Location || v.Location != e.Location {
		return false
	}
	if v.SamplingRate != n.SamplingRate || v.SamplingRate != e.SamplingRate {
		return false
	}
	if len(v.Channel) < 2 || len(n.Channel) < 2 || len(e.Channel) < 2 {
		return false
	}
	return v.Channel[:2] == n.Channel[:2] && v.Channel[:2] == e.Channel[:2]
}

// Hash returns the deterministic identity key used by the pipeline
// scheduler's sensor table: an xxhash checksum of the five strings that
// identify the group (network, station, location, and the three channel
// codes).
func (g ThreeComponentGroup) Hash() uint64 {
	key := fmt.Sprintf("%s.%s.%s.%s.%s.%s",
		g.Vertical.Network, g.Vertical.Station, g.Vertical.Location,
		g.Vertical.Channel, g.North.Channel, g.East.Channel)
	return xxhash.Checksum64([]byte(key))
}

// SensorHash returns the deterministic identity key for a single 1C
// channel, using the same hash function as three-component groups so both
// share one sensor table.
func SensorHash(id Identity) uint64 {
	key := fmt.Sprintf("%s.%s.%s.%s", id.Network, id.Station, id.Channel, id.Location)
	return xxhash.Checksum64([]byte(key))
}
