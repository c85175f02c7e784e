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

package waveform

import "github.com/onflow/urts-dps/model/urts"

// InterpolateGroup interpolates three per-channel packet lists (vertical,
// north, east) onto the same [t0, t1] grid, keeps the length of the
// shortest of the three windows, and ANDs their per-sample gap masks
// together, producing one three-signal window. It does not trim the grid to
// the range the packets of every channel actually cover: each channel's
// window spans all of [t0, t1], so a channel with less data shows up as
// gap-filled or masked samples, not as a shorter group.
func InterpolateGroup(vertical, north, east []urts.Packet, t0, t1 int64, rate float64, gapTolerance int64) (urts.WaveformWindow, error) {
	zWindow, err := Interpolate(vertical, t0, t1, rate, gapTolerance)
	if err != nil {
		return urts.WaveformWindow{}, err
	}
	nWindow, err := Interpolate(north, t0, t1, rate, gapTolerance)
	if err != nil {
		return urts.WaveformWindow{}, err
	}
	eWindow, err := Interpolate(east, t0, t1, rate, gapTolerance)
	if err != nil {
		return urts.WaveformWindow{}, err
	}

	n := zWindow.Len()
	if nWindow.Len() < n {
		n = nWindow.Len()
	}
	if eWindow.Len() < n {
		n = eWindow.Len()
	}

	group := urts.WaveformWindow{
		StartTimeUS:  t0,
		EndTimeUS:    t0,
		SamplingRate: rate,
	}
	if n <= 0 {
		return group, nil
	}

	mask := make([]uint8, n)
	for i := 0; i < n; i++ {
		mask[i] = zWindow.GapMask[i] & nWindow.GapMask[i] & eWindow.GapMask[i]
	}

	group.Signals = [][]float64{
		zWindow.Signals[0][:n],
		nWindow.Signals[0][:n],
		eWindow.Signals[0][:n],
	}
	group.GapMask = mask
	group.EndTimeUS = t0 + int64(float64(n-1)/rate*1e6+0.5)
	group.ChangesSamplingRate = zWindow.ChangesSamplingRate || nWindow.ChangesSamplingRate || eWindow.ChangesSamplingRate

	return group, nil
}
