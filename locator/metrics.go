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

package locator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespaceLocator = "urts_locator"

// metrics are the orchestrator-wide counters Register exposes: how deep
// each internal queue is, and how many origins have taken the failure
// path (unrefined propagation).
type metrics struct {
	queueDepth *prometheus.GaugeVec
	failures   prometheus.Counter
}

var sharedMetrics = newMetrics()

func newMetrics() *metrics {
	return &metrics{
		queueDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespaceLocator,
			Name:      "queue_depth",
			Help:      "number of origins currently held in an internal queue",
		}, []string{"queue"}),
		failures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceLocator,
			Name:      "unrefined_origins_total",
			Help:      "number of origins propagated unrefined after a locate or identifier failure",
		}),
	}
}
