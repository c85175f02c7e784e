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

// WaveformWindow is the output of the gap-aware interpolator: a uniformly
// sampled signal (one array for 1C, three for 3C) covering [StartTimeUS,
// EndTimeUS] at SamplingRate, plus a same-length gap mask where 0 marks a
// sample that falls inside a gap wider than tolerance.
type WaveformWindow struct {
	StartTimeUS  int64
	EndTimeUS    int64
	SamplingRate float64
	Signals      [][]float64
	GapMask      []uint8

	// ChangesSamplingRate is set when the nominal sampling rate requested
	// by the sensor did not match the source packets' own rate, so the
	// interpolator had to resample rather than simply align grids.
	ChangesSamplingRate bool
}

// Len returns the number of samples in the window.
func (w WaveformWindow) Len() int {
	if len(w.Signals) == 0 {
		return 0
	}
	return len(w.Signals[0])
}

// HasGaps reports whether any sample in the window falls inside a gap.
func (w WaveformWindow) HasGaps() bool {
	for _, bit := range w.GapMask {
		if bit == 0 {
			return true
		}
	}
	return false
}

// DurationUS returns the window's time extent derived from its length and
// sampling rate: (N-1)/rate in microseconds. This should always equal
// EndTimeUS-StartTimeUS within rounding.
func (w WaveformWindow) DurationUS() int64 {
	n := w.Len()
	if n <= 1 {
		return 0
	}
	return int64(float64(n-1) / w.SamplingRate * 1e6)
}
