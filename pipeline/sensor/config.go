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

// DefaultConfig has the default values of the config set, taken from the
// detector's own documented defaults.
var DefaultConfig = Config{
	DetectorWindowUS:     10_080_000,
	MaxLatencyUS:         180_000_000,
	GapToleranceSamples:  5,
	QueryWaitPct:         30,
	CenterWindowStart:    254,
	CenterWindowEnd:      754,
	OutputRate:           100,
	PrepadQueryUS:        500_000,
}

// Config contains the tunables of a sensor state machine. Every field has
// the detector's documented default in DefaultConfig; callers override with
// the With... functions below.
type Config struct {
	// DetectorWindowUS is the detector's fixed input duration.
	DetectorWindowUS int64
	// MaxLatencyUS forces a latency reset once wall clock outruns
	// last_probability_time by more than this.
	MaxLatencyUS int64
	// GapToleranceSamples is converted per-sensor to microseconds using the
	// sensor's own nominal sampling rate.
	GapToleranceSamples int64
	// QueryWaitPct is the minimum cache-query spacing, as a percentage of
	// DetectorWindowUS.
	QueryWaitPct float64
	// CenterWindowStart and CenterWindowEnd are the detector's trusted
	// output-sample range [c_start, c_end].
	CenterWindowStart int
	CenterWindowEnd   int
	// OutputRate is the detector's declared output sampling rate, in Hz.
	OutputRate float64
	// PrepadQueryUS is the safety margin added to the start of every query.
	PrepadQueryUS int64
}

// WithDetectorWindow overrides the detector's fixed input duration.
func WithDetectorWindow(us int64) func(*Config) {
	return func(cfg *Config) { cfg.DetectorWindowUS = us }
}

// WithMaxLatency overrides the latency-reset threshold.
func WithMaxLatency(us int64) func(*Config) {
	return func(cfg *Config) { cfg.MaxLatencyUS = us }
}

// WithGapTolerance overrides the gap tolerance, in samples.
func WithGapTolerance(samples int64) func(*Config) {
	return func(cfg *Config) { cfg.GapToleranceSamples = samples }
}

// WithQueryWaitPct overrides the minimum cache-query spacing.
func WithQueryWaitPct(pct float64) func(*Config) {
	return func(cfg *Config) { cfg.QueryWaitPct = pct }
}

// WithCenterWindow overrides the detector's trusted output-sample range.
func WithCenterWindow(start, end int) func(*Config) {
	return func(cfg *Config) {
		cfg.CenterWindowStart = start
		cfg.CenterWindowEnd = end
	}
}

// WithOutputRate overrides the detector's declared output sampling rate.
func WithOutputRate(hz float64) func(*Config) {
	return func(cfg *Config) { cfg.OutputRate = hz }
}

// WithPrepadQuery overrides the query start safety margin.
func WithPrepadQuery(us int64) func(*Config) {
	return func(cfg *Config) { cfg.PrepadQueryUS = us }
}

// QueryWaitIntervalUS is the minimum spacing between cache queries.
func (c Config) QueryWaitIntervalUS() int64 {
	return int64(float64(c.DetectorWindowUS) * c.QueryWaitPct / 100)
}

// StartWindowTimeUS is c_start converted to microseconds at OutputRate.
func (c Config) StartWindowTimeUS() int64 {
	return int64(float64(c.CenterWindowStart) / c.OutputRate * 1e6)
}

// EndWindowTimeUS is c_end converted to microseconds at OutputRate.
func (c Config) EndWindowTimeUS() int64 {
	return int64(float64(c.CenterWindowEnd) / c.OutputRate * 1e6)
}

// OutputDT is 1/OutputRate expressed in microseconds.
func (c Config) OutputDT() float64 {
	return 1e6 / c.OutputRate
}
