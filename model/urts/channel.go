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

import "math"

// ChannelData is a channel descriptor as read from the seismic metadata
// catalog: identity, sampling rate, geographic position, orientation, and
// the date range during which the channel was recording.
//
// Mirrors the fuller field set of the original AQMS channel data table
// (dip, azimuth, load date) rather than just the bare identity tuple.
type ChannelData struct {
	Identity
	SamplingRate float64 `validate:"gt=0"`
	Latitude     float64 `validate:"gte=-90,lte=90"`
	Longitude    float64 `validate:"gte=-180,lte=180"`
	Elevation    float64
	Dip          float64
	Azimuth      float64 `validate:"gte=0,lt=360"`
	OnDateUS     int64
	OffDateUS    int64
	LoadDateUS   int64
}

// LiveAt reports whether the channel was live at the given time: on-date
// inclusive, off-date exclusive.
func (c ChannelData) LiveAt(tUS int64) bool {
	return c.OnDateUS <= tUS && tUS < c.OffDateUS
}

// geoEqual compares two channel descriptors for the purposes of detecting a
// catalog change: every non-geographic field must match exactly, and
// geographic fields (latitude, longitude, elevation, dip, azimuth) are
// compared within a 1e-7 tolerance.
func geoEqual(a, b ChannelData) bool {
	const tol = 1e-7
	if a.Identity != b.Identity {
		return false
	}
	if a.SamplingRate != b.SamplingRate {
		return false
	}
	if a.OnDateUS != b.OnDateUS || a.OffDateUS != b.OffDateUS || a.LoadDateUS != b.LoadDateUS {
		return false
	}
	if math.Abs(a.Latitude-b.Latitude) > tol {
		return false
	}
	if math.Abs(a.Longitude-b.Longitude) > tol {
		return false
	}
	if math.Abs(a.Elevation-b.Elevation) > tol {
		return false
	}
	if math.Abs(a.Dip-b.Dip) > tol {
		return false
	}
	if math.Abs(a.Azimuth-b.Azimuth) > tol {
		return false
	}
	return true
}

// SnapshotEqual reports whether two channel snapshots are deeply equal
// under the same tolerance as geoEqual. Used by the channel directory to
// decide whether a poll actually changed anything.
func SnapshotEqual(a, b []ChannelData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !geoEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
