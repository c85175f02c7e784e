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

package main

import (
	"github.com/onflow/urts-dps/model/urts"
	"github.com/onflow/urts-dps/pipeline/scheduler"
	"github.com/onflow/urts-dps/pipeline/sensor"
)

// The binary classifier names every sensor state machine this daemon
// builds reports: each phase detector distinguishes its own phase from
// background noise. Neither spec.md nor original_source names these
// strings; they are the conventional labels this domain's detectors use.
const (
	classP     = "P"
	classS     = "S"
	classNoise = "Noise"
)

// assignmentTracker diffs successive channel-directory snapshots against
// the sensor hashes currently assigned to the pool, so a channel that goes
// off-date is unassigned instead of left running forever on stale state.
type assignmentTracker struct {
	pool   *scheduler.Pool
	hashes map[uint64]struct{}
}

func newAssignmentTracker(pool *scheduler.Pool) *assignmentTracker {
	return &assignmentTracker{
		pool:   pool,
		hashes: make(map[uint64]struct{}),
	}
}

// reconcile assigns a fresh sensor.FSM for every current group/single
// channel to the pool and unassigns any sensor from the previous snapshot
// that is no longer present. threeComponent/single carry nil Transitions
// when their detector pair isn't configured to run, in which case that
// sensor shape is skipped entirely.
func (a *assignmentTracker) reconcile(groups []urts.ThreeComponentGroup, singles []urts.ChannelData, threeComponent, single detectorSet, algorithm string) {
	current := make(map[uint64]struct{}, len(groups)+len(singles))

	if threeComponent.transitions != nil {
		names := sensor.ThreeComponentNames{
			PPositive: classP, PNegative: classNoise,
			SPositive: classS, SNegative: classNoise,
		}
		for _, g := range groups {
			hash := g.Hash()
			current[hash] = struct{}{}
			state := sensor.NewState3C(g, names, algorithm, sensor.DefaultConfig)
			a.pool.Assign(hash, sensor.NewFSM(state, threeComponent.transitions))
		}
	}

	if single.transitions != nil {
		for _, c := range singles {
			hash := urts.SensorHash(c.Identity)
			current[hash] = struct{}{}
			state := sensor.NewState1C(c, classP, classNoise, algorithm, sensor.DefaultConfig)
			a.pool.Assign(hash, sensor.NewFSM(state, single.transitions))
		}
	}

	for hash := range a.hashes {
		if _, ok := current[hash]; !ok {
			a.pool.Unassign(hash)
		}
	}
	a.hashes = current
}
