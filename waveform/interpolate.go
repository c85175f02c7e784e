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

// Package waveform turns a possibly-overlapping, possibly-gappy list of
// packets for one channel into a uniformly sampled window at the
// sensor's nominal rate, plus a per-sample gap mask. It is pure and
// side-effect-free, the way teacher's trie-pathing code is, so it can be
// exercised exhaustively by unit tests without any I/O.
package waveform

import (
	"sort"

	"github.com/onflow/urts-dps/model/urts"
)

// Interpolate clips packets to [t0, t1], resamples each onto the nominal
// grid anchored at t0, and fills gaps wider than gapTolerance with
// zero-valued, masked-out samples. It reports changesSamplingRate = true
// if any packet's declared rate differs from the nominal rate.
func Interpolate(packets []urts.Packet, t0, t1 int64, rate float64, gapTolerance int64) (urts.WaveformWindow, error) {
	window := urts.WaveformWindow{
		StartTimeUS:  t0,
		EndTimeUS:    t1,
		SamplingRate: rate,
	}

	if t1 < t0 {
		return window, nil
	}

	n := sampleCount(t0, t1, rate)
	if n <= 0 {
		return window, nil
	}

	signal := make([]float64, n)
	mask := make([]uint8, n)
	covered := make([]bool, n)

	kept := clip(packets, t0, t1)
	sort.Slice(kept, func(i, j int) bool { return kept[i].Before(kept[j]) })

	changesRate := false
	for _, p := range kept {
		if p.SamplingRate != rate {
			changesRate = true
		}
		placePacket(p, t0, rate, n, signal, mask, covered)
	}

	applyGapTolerance(signal, mask, covered, gapTolerance)

	window.Signals = [][]float64{signal}
	window.GapMask = mask
	window.ChangesSamplingRate = changesRate

	return window, nil
}

// sampleCount returns round((t1-t0)*rate/1e6) + 1, the output length
// guaranteed by the interpolation contract.
func sampleCount(t0, t1 int64, rate float64) int {
	n := int(roundHalfAwayFromZero(float64(t1-t0)/1e6*rate)) + 1
	if n < 0 {
		return 0
	}
	return n
}

func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return float64(int64(x + 0.5))
	}
	return float64(int64(x - 0.5))
}

// clip drops packets entirely outside [t0, t1].
func clip(packets []urts.Packet, t0, t1 int64) []urts.Packet {
	kept := make([]urts.Packet, 0, len(packets))
	for _, p := range packets {
		if p.EndTimeUS() < t0 || p.StartTimeUS > t1 {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// placePacket resamples p onto the nominal grid anchored at t0 using
// nearest-neighbor-in-sample-index, marking every grid index it covers.
func placePacket(p urts.Packet, t0 int64, rate float64, n int, signal []float64, mask []uint8, covered []bool) {
	for i, v := range p.Data {
		sampleTimeUS := p.StartTimeUS + int64(roundHalfAwayFromZero(float64(i)/p.SamplingRate*1e6))
		if sampleTimeUS < t0 {
			continue
		}
		idx := int(roundHalfAwayFromZero(float64(sampleTimeUS-t0) / 1e6 * rate))
		if idx < 0 || idx >= n {
			continue
		}
		signal[idx] = v
		mask[idx] = 1
		covered[idx] = true
	}
}

// applyGapTolerance walks the uncovered runs of the grid. A run no longer
// than gapToleranceSamples "continues the signal": it is linearly
// interpolated between its bounding samples (held flat at the edge value
// if only one bound exists) and marked trustworthy. A longer run is left
// at zero and marked gap_mask = 0, per the interpolation contract.
func applyGapTolerance(signal []float64, mask []uint8, covered []bool, gapToleranceSamples int64) {
	n := len(covered)
	i := 0
	for i < n {
		if covered[i] {
			i++
			continue
		}
		start := i
		for i < n && !covered[i] {
			i++
		}
		end := i
		runLength := int64(end - start)
		if runLength > gapToleranceSamples {
			continue
		}
		fillGap(signal, mask, start, end)
	}
}

// fillGap linearly interpolates signal[start:end] between the known
// samples immediately outside the range, holding flat at whichever edge
// exists if only one does.
func fillGap(signal []float64, mask []uint8, start, end int) {
	haveLeft := start > 0
	haveRight := end < len(signal)

	switch {
	case haveLeft && haveRight:
		left, right := signal[start-1], signal[end]
		span := float64(end - start + 1)
		for j := start; j < end; j++ {
			frac := float64(j-start+1) / span
			signal[j] = left + (right-left)*frac
			mask[j] = 1
		}
	case haveLeft:
		for j := start; j < end; j++ {
			signal[j] = signal[start-1]
			mask[j] = 1
		}
	case haveRight:
		for j := start; j < end; j++ {
			signal[j] = signal[end]
			mask[j] = 1
		}
	default:
		for j := start; j < end; j++ {
			mask[j] = 1
		}
	}
}
