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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespaceScheduler = "urts_scheduler"

// metrics are the per-worker counters Register exposes: how many sensors
// each worker currently drives, and how many sensor steps have failed.
type metrics struct {
	sensors  *prometheus.GaugeVec
	failures *prometheus.CounterVec
}

var sharedMetrics = newMetrics()

func newMetrics() *metrics {
	return &metrics{
		sensors: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespaceScheduler,
			Name:      "worker_sensors",
			Help:      "number of sensors currently assigned to a worker",
		}, []string{"worker"}),
		failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceScheduler,
			Name:      "sensor_step_failures_total",
			Help:      "number of sensor steps that returned an error, by worker",
		}, []string{"worker"}),
	}
}
