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

// Package scheduler drives the per-worker sensor tables that turn
// interpolated waveform windows into probability packets: each Worker owns
// an exclusive partition of sensor state machines, and a Pool assigns
// sensors to workers by hash so the whole process can be registered as a
// handful of named components on one top-level engine.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/pipeline/sensor"
)

// Worker owns an exclusive partition of sensor state machines and drives
// each one's Query -> Inference -> Publish cycle in round-robin order.
// Sensor state is never shared with another worker and the worker never
// blocks on a single stuck sensor for longer than that sensor's own
// request/reply timeouts allow.
type Worker struct {
	log  zerolog.Logger
	name string

	mu      sync.Mutex
	running bool
	sensors map[uint64]*sensor.FSM
}

// NewWorker creates a worker with an initial sensor partition. sensors may
// be nil; entries are added afterward with AddSensor.
func NewWorker(log zerolog.Logger, name string, sensors map[uint64]*sensor.FSM) *Worker {
	if sensors == nil {
		sensors = make(map[uint64]*sensor.FSM)
	}
	w := Worker{
		log:     log.With().Str("worker", name).Logger(),
		name:    name,
		sensors: sensors,
	}
	sharedMetrics.sensors.WithLabelValues(name).Set(float64(len(sensors)))
	return &w
}

// AddSensor inserts or replaces the state machine for the given hash. Safe
// to call while Run is in progress.
func (w *Worker) AddSensor(hash uint64, fsm *sensor.FSM) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sensors[hash] = fsm
	sharedMetrics.sensors.WithLabelValues(w.name).Set(float64(len(w.sensors)))
}

// RemoveSensor drops a sensor from this worker's partition, e.g. once the
// channel directory reports it is no longer live.
func (w *Worker) RemoveSensor(hash uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.sensors, hash)
	sharedMetrics.sensors.WithLabelValues(w.name).Set(float64(len(w.sensors)))
}

// Len reports the current partition size.
func (w *Worker) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sensors)
}

// Run drives every sensor's state machine one step at a time, round-robin,
// until Stop clears the running flag. A single sensor's transition error
// never stops the worker or any other sensor: sensor.FSM.Step already
// resets that sensor to Query on failure. Every failure from one sweep over
// the partition is collected into a single multierror and logged together,
// so a worker with several sensors failing at once doesn't lose any of
// them behind whichever one happened to log last.
func (w *Worker) Run() error {
	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	for w.isRunning() {
		var failures *multierror.Error
		for hash, fsm := range w.snapshot() {
			if !w.isRunning() {
				return nil
			}
			err := fsm.Step()
			if err != nil {
				failures = multierror.Append(failures, fmt.Errorf("sensor %d: %w", hash, err))
				sharedMetrics.failures.WithLabelValues(w.name).Inc()
			}
		}
		if failures != nil {
			w.log.Error().Err(failures).Msg("sensor sweep encountered failures, each reset to query")
		}
	}
	return nil
}

// Stop clears the running flag. Run returns once it finishes the sensor it
// is currently stepping through.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
}

func (w *Worker) isRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// snapshot copies the current sensor table under lock so Run can iterate
// without holding the worker's lock across every Step call, the same
// read-under-lock-then-copy pattern directory.Poller uses for its channel
// snapshot.
func (w *Worker) snapshot() map[uint64]*sensor.FSM {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[uint64]*sensor.FSM, len(w.sensors))
	for k, v := range w.sensors {
		out[k] = v
	}
	return out
}
