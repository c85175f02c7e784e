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
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/codec"
	"github.com/onflow/urts-dps/config"
	"github.com/onflow/urts-dps/model/urts"
	"github.com/onflow/urts-dps/pipeline/sensor"
	"github.com/onflow/urts-dps/transport/cache"
	"github.com/onflow/urts-dps/transport/inference"
	"github.com/onflow/urts-dps/transport/publish"
)

func now() int64 {
	return time.Now().UnixMicro()
}

// detectorSet bundles the sensor.Transitions collaborators for one sensor
// shape (three-component or single-component) and the raw detector clients
// feeding it, so main can close exactly the connections it opened.
type detectorSet struct {
	transitions *sensor.Transitions
	clients     []*inference.Client
}

func (d detectorSet) close() {
	for _, c := range d.clients {
		c.Close()
	}
}

// dialDetectors dials every configured detector service and builds the two
// Transitions a pipeline worker needs: one for three-component sensors
// (P from the p3c detector, S from the s3c detector — spec.md §4.H ties
// strategy selection to event type, but here it's the sensor's own
// component count that picks which detector pair answers it) and one for
// single-component sensors (P only, from the p1c detector).
func dialDetectors(cfg *config.Config, cdc *codec.Codec, log zerolog.Logger, cacheClient *cache.Client, bus *publish.Publisher) (detectorSet, detectorSet, error) {
	threeComponent := detectorSet{}
	single := detectorSet{}

	inferenceFor3C := make(map[urts.Phase]sensor.InferenceClient)
	if cfg.RunP3CDetector {
		p3c, err := inference.Dial(cfg.P3CDetector.ServiceAddress, cdc, log, cfg.InferenceRequestTimeout)
		if err != nil {
			return threeComponent, single, fmt.Errorf("could not dial p3c detector: %w", err)
		}
		threeComponent.clients = append(threeComponent.clients, p3c)
		inferenceFor3C[urts.PhaseP] = p3c
	}
	if cfg.RunS3CDetector {
		s3c, err := inference.Dial(cfg.S3CDetector.ServiceAddress, cdc, log, cfg.InferenceRequestTimeout)
		if err != nil {
			return threeComponent, single, fmt.Errorf("could not dial s3c detector: %w", err)
		}
		threeComponent.clients = append(threeComponent.clients, s3c)
		inferenceFor3C[urts.PhaseS] = s3c
	}
	if len(inferenceFor3C) > 0 {
		threeComponent.transitions = sensor.NewTransitions(cacheClient, inferenceFor3C, bus, now)
	}

	inferenceFor1C := make(map[urts.Phase]sensor.InferenceClient)
	if cfg.RunP1CDetector {
		p1c, err := inference.Dial(cfg.P1CDetector.ServiceAddress, cdc, log, cfg.InferenceRequestTimeout)
		if err != nil {
			return threeComponent, single, fmt.Errorf("could not dial p1c detector: %w", err)
		}
		single.clients = append(single.clients, p1c)
		inferenceFor1C[urts.PhaseP] = p1c
	}
	if len(inferenceFor1C) > 0 {
		single.transitions = sensor.NewTransitions(cacheClient, inferenceFor1C, bus, now)
	}

	return threeComponent, single, nil
}
