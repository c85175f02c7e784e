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
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerDrivesAssignedSensorToPublish(t *testing.T) {
	pub := &countingPublisher{}
	w := NewWorker(zerolog.Nop(), "test", nil)
	w.AddSensor(1, workingSensor("WPUT", pub))
	assert.Equal(t, 1, w.Len())

	go w.Run()
	defer w.Stop()

	require.Eventually(t, func() bool { return pub.count() > 0 }, time.Second, time.Millisecond)
}

func TestWorkerIsolatesAFailingSensorFromOthers(t *testing.T) {
	pub := &countingPublisher{}
	w := NewWorker(zerolog.Nop(), "test", nil)
	w.AddSensor(1, brokenSensor("BROK"))
	w.AddSensor(2, workingSensor("WPUT", pub))

	go w.Run()
	defer w.Stop()

	require.Eventually(t, func() bool { return pub.count() > 0 }, time.Second, time.Millisecond)
}

func TestWorkerStopEndsRun(t *testing.T) {
	w := NewWorker(zerolog.Nop(), "test", nil)
	w.AddSensor(1, brokenSensor("BROK"))

	done := make(chan error, 1)
	go func() { done <- w.Run() }()

	require.Eventually(t, func() bool { return w.isRunning() }, time.Second, time.Millisecond)
	w.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestWorkerAddAndRemoveSensor(t *testing.T) {
	w := NewWorker(zerolog.Nop(), "test", nil)
	assert.Equal(t, 0, w.Len())
	w.AddSensor(1, brokenSensor("A"))
	w.AddSensor(2, brokenSensor("B"))
	assert.Equal(t, 2, w.Len())
	w.RemoveSensor(1)
	assert.Equal(t, 1, w.Len())
}
