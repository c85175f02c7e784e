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

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/engine"
	"github.com/onflow/urts-dps/pipeline/sensor"
)

// Pool partitions sensor state machines across a fixed number of workers by
// sensor hash and registers each worker as a named component of the
// top-level engine, so the whole process shares one start/stop/interrupt
// protocol instead of each worker managing its own lifecycle.
type Pool struct {
	workers []*Worker
}

// NewPool creates n workers, named worker-0 through worker-(n-1). Sensors
// are partitioned across them by hash and never migrate afterward.
func NewPool(log zerolog.Logger, n int) *Pool {
	workers := make([]*Worker, n)
	for i := range workers {
		workers[i] = NewWorker(log, fmt.Sprintf("worker-%d", i), nil)
	}
	return &Pool{workers: workers}
}

// Assign places fsm into the worker selected by hash modulo the pool size.
// Calling Assign again with a hash already owned by a worker replaces that
// worker's entry in place rather than moving it to another worker.
func (p *Pool) Assign(hash uint64, fsm *sensor.FSM) {
	p.workerFor(hash).AddSensor(hash, fsm)
}

// Unassign removes a sensor from whichever worker owns its hash, e.g. once
// the channel directory reports the channel is no longer live.
func (p *Pool) Unassign(hash uint64) {
	p.workerFor(hash).RemoveSensor(hash)
}

func (p *Pool) workerFor(hash uint64) *Worker {
	return p.workers[hash%uint64(len(p.workers))]
}

// Len returns the number of workers in the pool.
func (p *Pool) Len() int {
	return len(p.workers)
}

// Register adds every worker in the pool to e as a named component, in
// order, so they start together and stop in reverse order alongside the
// rest of the process's components.
func (p *Pool) Register(e *engine.Engine) *engine.Engine {
	for i, w := range p.workers {
		e = e.Component(fmt.Sprintf("pipeline-worker-%d", i), w.Run, w.Stop)
	}
	return e
}
