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

	"github.com/onflow/urts-dps/model/urts"
	"github.com/onflow/urts-dps/waveform"
)

// CacheClient is the subset of transport/cache.Client a sensor needs.
type CacheClient interface {
	SingleRange(ctx context.Context, req urts.DataRequest) ([]urts.Packet, error)
	BulkRange(ctx context.Context, req urts.BulkDataRequest) ([]urts.DataResponse, error)
}

// InferenceClient is the subset of transport/inference.Client a sensor
// needs. Sensors look one up per phase, since a 3C sensor's P and S
// detectors are typically different remote services.
type InferenceClient interface {
	Infer(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error)
}

// Publisher is the subset of transport/publish.Publisher a sensor needs.
type Publisher interface {
	Publish(packet urts.ProbabilityPacket)
}

// Clock abstracts "now" so tests can drive the machine through latency
// resets and pacing windows without sleeping.
type Clock func() int64

// Transitions holds every sensor state machine's collaborators: the three
// remote services it drives and the clock it reads. One Transitions value
// is shared by every sensor a worker owns.
type Transitions struct {
	cache     CacheClient
	inference map[urts.Phase]InferenceClient
	publisher Publisher
	now       Clock
}

// NewTransitions builds a Transitions. inference maps each phase a sensor
// might emit to the client that serves it (P and S are typically different
// remote detector services).
func NewTransitions(cache CacheClient, inference map[urts.Phase]InferenceClient, publisher Publisher, now Clock) *Transitions {
	return &Transitions{
		cache:     cache,
		inference: inference,
		publisher: publisher,
		now:       now,
	}
}

// Query computes the query range, fetches packets for every component, and
// interpolates them onto the sensor's nominal grid. It transitions to
// Inference iff the resulting window is long enough and extends far enough
// forward; otherwise it stays in Query, having still updated query pacing.
func (t *Transitions) Query(s *State) error {
	nowUS := t.now()

	if nowUS-s.LastProbabilityTimeUS > s.Config.MaxLatencyUS {
		s.LastProbabilityTimeUS = nowUS
	}

	if nowUS-s.LastQueryTimeUS < s.Config.QueryWaitIntervalUS() {
		return nil
	}
	s.LastQueryTimeUS = nowUS

	t0 := s.LastProbabilityTimeUS - s.Config.StartWindowTimeUS() - s.Config.PrepadQueryUS
	t1 := nowUS

	packetsByComponent, err := t.fetchPackets(s, t0, t1)
	if err != nil {
		return err
	}

	window, err := interpolateComponents(packetsByComponent, t0, t1, s.NominalSamplingRate(), s.Config.GapToleranceSamples)
	if err != nil {
		return fmt.Errorf("could not interpolate waveform window: %w", err)
	}

	s.window = window

	windowDurationUS := window.EndTimeUS - window.StartTimeUS
	long := windowDurationUS >= s.Config.DetectorWindowUS
	forward := window.EndTimeUS >= s.LastProbabilityTimeUS+(s.Config.DetectorWindowUS-s.Config.EndWindowTimeUS())
	if long && forward {
		s.Status = StatusInference
	}
	return nil
}

func (t *Transitions) fetchPackets(s *State, t0, t1 int64) ([][]urts.Packet, error) {
	ctx := context.Background()

	if len(s.cacheTemplates) == 1 {
		tpl := s.cacheTemplates[0]
		req := urts.DataRequest{
			Identifier: s.nextRequestIdentifier(),
			Identity:   tpl.identity,
			StartTimeS: float64(t0) / 1e6,
			EndTimeS:   float64(t1) / 1e6,
		}
		packets, err := t.cache.SingleRange(ctx, req)
		if err != nil {
			return nil, err
		}
		return [][]urts.Packet{packets}, nil
	}

	requests := make([]urts.DataRequest, len(s.cacheTemplates))
	for i, tpl := range s.cacheTemplates {
		requests[i] = urts.DataRequest{
			Identifier: s.nextRequestIdentifier(),
			Identity:   tpl.identity,
			StartTimeS: float64(t0) / 1e6,
			EndTimeS:   float64(t1) / 1e6,
		}
	}
	bulkReq := urts.BulkDataRequest{
		Identifier: s.nextRequestIdentifier(),
		Requests:   requests,
	}
	responses, err := t.cache.BulkRange(ctx, bulkReq)
	if err != nil {
		return nil, err
	}

	byIdentifier := make(map[int64][]urts.Packet, len(responses))
	for _, resp := range responses {
		byIdentifier[resp.Identifier] = resp.Packets
	}
	packetsByComponent := make([][]urts.Packet, len(requests))
	for i, req := range requests {
		packetsByComponent[i] = byIdentifier[req.Identifier]
	}
	return packetsByComponent, nil
}

// interpolateComponents runs the single- or three-component interpolator
// depending on how many signals were fetched.
func interpolateComponents(packetsByComponent [][]urts.Packet, t0, t1 int64, rate float64, gapTolerance int64) (urts.WaveformWindow, error) {
	if len(packetsByComponent) == 1 {
		return waveform.Interpolate(packetsByComponent[0], t0, t1, rate, gapTolerance)
	}
	return waveform.InterpolateGroup(packetsByComponent[0], packetsByComponent[1], packetsByComponent[2], t0, t1, rate, gapTolerance)
}

// Inference submits the interpolated window to each phase's detector,
// slices each response into a probability packet, and stages the results
// for Publish. If every configured phase fails, Inference reports an error
// so the caller resets to Query without mutating last_probability_time; if
// at least one phase succeeds, last_probability_time still advances.
func (t *Transitions) Inference(s *State) error {
	ctx := context.Background()

	responses := make(map[urts.Phase]urts.InferenceResponse, len(s.inferenceTemplates))
	var lastErr error
	for _, tpl := range s.inferenceTemplates {
		client, ok := t.inference[tpl.phase]
		if !ok {
			lastErr = fmt.Errorf("no inference client registered for phase %s", tpl.phase)
			continue
		}
		req := urts.InferenceRequest{
			Identifier:   s.nextRequestIdentifier(),
			SamplingRate: s.window.SamplingRate,
			Signals:      s.window.Signals,
			Strategy:     urts.SlidingWindow,
		}
		resp, err := client.Infer(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		responses[tpl.phase] = resp
	}

	if len(responses) == 0 {
		return fmt.Errorf("every detector phase failed: %w", lastErr)
	}

	if len(responses) > 1 {
		want := -1
		for _, resp := range responses {
			if want == -1 {
				want = len(resp.Probabilities)
				continue
			}
			if len(resp.Probabilities) != want {
				return fmt.Errorf("cross-detector trace length mismatch: %d vs %d", want, len(resp.Probabilities))
			}
		}
	}

	s.pending = make(map[urts.Phase]pending, len(s.probabilityTemplates))
	var sliced bool
	for _, tpl := range s.probabilityTemplates {
		resp, ok := responses[tpl.phase]
		if !ok {
			continue
		}
		packet, emitted, i1, signalStart := t.slice(s, tpl, resp)
		s.pending[tpl.phase] = pending{packet: packet, ok: emitted}
		if !sliced {
			s.LastProbabilityTimeUS = signalStart + int64(float64(i1)*s.Config.OutputDT())
			sliced = true
		}
	}

	s.Status = StatusPublish
	return nil
}

// slice implements the output-slicing algorithm from the sensor state
// machine's Inference state: compute i0/i1 in detector-output-sample space,
// clamp, and extract the trusted sub-trace.
func (t *Transitions) slice(s *State, tpl probabilityTemplate, resp urts.InferenceResponse) (urts.ProbabilityPacket, bool, int, int64) {
	dt := 1e6 / resp.SamplingRate
	signalStart := resp.StartTimeUS
	n := len(resp.Probabilities)

	signalEnd := signalStart + int64(float64(n-1)*dt)
	i1 := int(roundHalfAwayFromZero(float64(signalEnd-s.Config.EndWindowTimeUS()-signalStart) / dt))
	i1 = clampInt(i1, 0, n)

	var i0 int
	if float64(signalStart)+float64(s.Config.StartWindowTimeUS()) <= float64(s.LastProbabilityTimeUS)+dt/2 {
		i0 = int(roundHalfAwayFromZero(float64(s.LastProbabilityTimeUS-signalStart) / dt))
	} else {
		i0 = int(roundHalfAwayFromZero(float64(s.Config.StartWindowTimeUS()) / dt))
	}
	i0 = clampInt(i0, 0, i1)

	if i0 == i1 {
		return urts.ProbabilityPacket{}, false, i1, signalStart
	}

	data := extractSamples(resp.Probabilities, s.window, resp.SamplingRate, i0, i1)

	packet := urts.ProbabilityPacket{
		Identity:          tpl.identity,
		SamplingRate:      resp.SamplingRate,
		StartTimeUS:       signalStart + int64(float64(i0)*dt),
		Data:              data,
		OriginalChannels:  tpl.originalChannels,
		PositiveClassName: tpl.positiveClassName,
		NegativeClassName: tpl.negativeClassName,
		Algorithm:         tpl.algorithm,
	}
	return packet, true, i1, signalStart
}

// extractSamples copies probabilities[i0:i1], multiplying by the
// interpolator's gap mask when the window has gaps. When the detector's
// output rate differs from the sensor's nominal rate, the mask is not
// applied: the index spaces no longer correspond sample-for-sample, and
// this system has never resolved what "correspond" should mean in that
// case (see the interpolator's ChangesSamplingRate flag).
func extractSamples(probabilities []float64, window urts.WaveformWindow, outputRate float64, i0, i1 int) []float64 {
	data := make([]float64, i1-i0)
	copy(data, probabilities[i0:i1])

	if !window.HasGaps() {
		return data
	}
	if outputRate != window.SamplingRate {
		return data
	}
	for j := range data {
		idx := i0 + j
		if idx < len(window.GapMask) && window.GapMask[idx] == 0 {
			data[j] = 0
		}
	}
	return data
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return float64(int64(x + 0.5))
	}
	return float64(int64(x - 0.5))
}

// Publish broadcasts every phase marked "to broadcast" and always returns
// to Query. Publish failures are the publisher's problem (it logs and
// swallows them, per transport/publish); last_probability_time is never
// rolled back here.
func (t *Transitions) Publish(s *State) error {
	for _, tpl := range s.probabilityTemplates {
		p, ok := s.pending[tpl.phase]
		if !ok || !p.ok {
			continue
		}
		t.publisher.Publish(p.packet)
	}
	s.pending = make(map[urts.Phase]pending)
	s.Status = StatusQuery
	return nil
}
