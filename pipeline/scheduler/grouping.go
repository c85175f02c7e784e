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

import "github.com/onflow/urts-dps/model/urts"

// bearingDistance returns azimuth's angular distance from due north (0/360
// degrees), folded into [0, 180].
func bearingDistance(azimuth float64) float64 {
	d := azimuth
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	if d < 0 {
		d = -d
	}
	return d
}

// groupKey identifies the channels that could belong to the same
// three-component instrument: same network, station, location, band/
// instrument prefix (the channel code's first two characters) and sampling
// rate.
type groupKey struct {
	network, station, location, prefix string
	samplingRate                       float64
}

func keyOf(c urts.ChannelData) groupKey {
	prefix := c.Channel
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return groupKey{c.Network, c.Station, c.Location, prefix, c.SamplingRate}
}

// isVertical reports whether c's orientation is vertical. Orientation is
// read from dip rather than the channel code's last character, since the
// Z/N/E versus 1/2/3 naming convention is not consistent across networks
// but dip is: a vertical component dips close to -90 degrees (straight
// down) regardless of its code.
func isVertical(c urts.ChannelData) bool {
	return c.Dip <= -45 && c.Dip >= -135
}

// GroupChannels partitions a channel-directory snapshot into
// three-component groups and the leftover channels the pool schedules as
// single-component sensors. A bucket only becomes a group when it holds
// exactly one vertical and two horizontal channels that also pass
// urts.ThreeComponentGroup.Valid; any other shape (a missing or duplicated
// sibling, a mismatched sampling rate) falls back to singles rather than
// being dropped, since a channel directory with an incomplete triplet is a
// normal, frequent state and must not block 1C detection for what is live.
func GroupChannels(channels []urts.ChannelData) ([]urts.ThreeComponentGroup, []urts.ChannelData) {
	buckets := make(map[groupKey][]urts.ChannelData)
	for _, c := range channels {
		k := keyOf(c)
		buckets[k] = append(buckets[k], c)
	}

	var groups []urts.ThreeComponentGroup
	var singles []urts.ChannelData
	for _, members := range buckets {
		group, ok := asGroup(members)
		if !ok {
			singles = append(singles, members...)
			continue
		}
		groups = append(groups, group)
	}
	return groups, singles
}

func asGroup(members []urts.ChannelData) (urts.ThreeComponentGroup, bool) {
	var vertical *urts.ChannelData
	var horizontals []urts.ChannelData
	for i, c := range members {
		if isVertical(c) {
			if vertical != nil {
				return urts.ThreeComponentGroup{}, false
			}
			v := members[i]
			vertical = &v
			continue
		}
		horizontals = append(horizontals, c)
	}
	if vertical == nil || len(horizontals) != 2 {
		return urts.ThreeComponentGroup{}, false
	}

	// North/east are disambiguated by azimuth: whichever horizontal bears
	// closer to due north (0/360 degrees) is assigned north, the other east.
	north, east := horizontals[0], horizontals[1]
	if bearingDistance(north.Azimuth) > bearingDistance(east.Azimuth) {
		north, east = east, north
	}

	group := urts.ThreeComponentGroup{Vertical: *vertical, North: north, East: east}
	if !group.Valid() {
		return urts.ThreeComponentGroup{}, false
	}
	return group, true
}
