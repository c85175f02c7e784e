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

// Package sensor implements the per-sensor Query/Inference/Publish state
// machine: the finite-state-machine shape (state + edges + transitions) is
// adapted wholesale from service/mapper's FSM, generalized from block
// indexing to seismic sensor pipelines.
package sensor

import (
	"fmt"
)

// CheckFunc reports whether an edge's transition applies to the current
// state.
type CheckFunc func(*State) bool

// TransitionFunc mutates state, returning any error from a collaborator
// call.
type TransitionFunc func(*State) error

type edge struct {
	check      CheckFunc
	transition TransitionFunc
}

// FSM drives one sensor's State through its edges. Unlike
// service/mapper.FSM, which runs an indexing pipeline to completion, a
// sensor FSM never terminates on its own: Query/Inference/Publish cycle
// for as long as the sensor stays in the pipeline, and FSM only exposes
// Step so the pipeline scheduler (§4.G) can round-robin many sensors on
// one worker thread instead of dedicating a goroutine to each.
type FSM struct {
	state *State
	edges []edge
}

// NewFSM builds the FSM for one sensor, wiring up the three edges that
// correspond to spec.md §4.F's Query/Inference/Publish states.
func NewFSM(state *State, transitions *Transitions) *FSM {
	f := &FSM{state: state}
	f.Add(func(s *State) bool { return s.Status == StatusQuery }, transitions.Query)
	f.Add(func(s *State) bool { return s.Status == StatusInference }, transitions.Inference)
	f.Add(func(s *State) bool { return s.Status == StatusPublish }, transitions.Publish)
	return f
}

// Add registers an edge. Exposed for tests that want to drive a bare FSM
// without the full Transitions collaborator set.
func (f *FSM) Add(check CheckFunc, transition TransitionFunc) {
	f.edges = append(f.edges, edge{check: check, transition: transition})
}

// State returns the FSM's underlying state, for inspection by the
// scheduler and by tests.
func (f *FSM) State() *State {
	return f.state
}

// Step applies the transition for whichever edge matches the state's
// current status, and reports the edge's error, if any. On error, Step
// resets the status to Query itself: every component B/C/D the sensor
// talks to is retryable, and spec.md §4.F invariant 4 requires returning to
// Query without mutating last_probability_time on any such failure. Publish
// never errors (publish failures are logged and swallowed by the
// publisher), so the reset path only ever fires out of Query or Inference.
func (f *FSM) Step() error {
	for _, e := range f.edges {
		if !e.check(f.state) {
			continue
		}
		err := e.transition(f.state)
		if err != nil {
			f.state.Status = StatusQuery
			return fmt.Errorf("could not apply transition to sensor state: %w", err)
		}
		return nil
	}
	return fmt.Errorf("could not find transition for status %s", f.state.Status)
}
