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

package urts

import "github.com/onflow/urts-dps/errs"

// Arrival is an observed phase pick at a station: who observed it, which
// phase, when, and the optional metadata a locator response fills in.
type Arrival struct {
	Network       string   `cbor:"network" validate:"required"`
	Station       string   `cbor:"station" validate:"required"`
	Phase         Phase    `cbor:"phase"`
	ArrivalTimeUS int64    `cbor:"time_us"`
	StandardError *float64 `cbor:"standard_error,omitempty"`
	Identifier    *int64   `cbor:"identifier,omitempty"`
	TravelTimeUS  *int64   `cbor:"travel_time_us,omitempty"`
	ResidualUS    *int64   `cbor:"residual_us,omitempty"`
}

// stationKey returns the (network, station) pair an arrival belongs to, used
// to check the "no duplicate phase per station, S never precedes P" request
// invariant.
func (a Arrival) stationKey() string {
	return a.Network + "." + a.Station
}

// ValidateArrivals checks the LocationRequest invariants from the data
// model: arrivals non-empty, no (network, station) pair with a duplicate
// phase, and no S arrival preceding its station's P arrival.
func ValidateArrivals(arrivals []Arrival) error {
	if len(arrivals) == 0 {
		return errEmptyArrivals
	}

	type seen struct {
		hasP, hasS   bool
		pTime, sTime int64
	}
	byStation := make(map[string]*seen)
	for _, a := range arrivals {
		if err := validate.Struct(a); err != nil {
			return errs.NewInvalidArgument("arrival failed validation: %v", err)
		}

		s, ok := byStation[a.stationKey()]
		if !ok {
			s = &seen{}
			byStation[a.stationKey()] = s
		}
		switch a.Phase {
		case PhaseP:
			if s.hasP {
				return errDuplicatePhase(a.stationKey(), a.Phase)
			}
			s.hasP = true
			s.pTime = a.ArrivalTimeUS
		case PhaseS:
			if s.hasS {
				return errDuplicatePhase(a.stationKey(), a.Phase)
			}
			s.hasS = true
			s.sTime = a.ArrivalTimeUS
		}
	}
	for station, s := range byStation {
		if s.hasP && s.hasS && s.sTime < s.pTime {
			return errSBeforeP(station)
		}
	}
	return nil
}
