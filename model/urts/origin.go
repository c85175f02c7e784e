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

// Origin is a (time, lat, lon, depth) estimate of an event, together with
// its arrivals and the provenance trail the locator orchestrator appends
// to as it refines the event.
type Origin struct {
	Identifier          int64     `cbor:"identifier"`
	OriginTimeUS        int64     `cbor:"origin_time_us"`
	Latitude            float64   `cbor:"latitude"`
	Longitude           float64   `cbor:"longitude"`
	DepthMeters         float64   `cbor:"depth_m"`
	Arrivals            []Arrival `cbor:"arrivals"`
	Region              string    `cbor:"region"`
	EventType           EventType `cbor:"event_type"`
	PreviousIdentifiers []int64   `cbor:"previous_identifiers"`
	Algorithms          []string  `cbor:"algorithms"`
}

// Residual returns observed_time - (origin_time + travel_time) for an
// arrival that carries a travel time, in microseconds. The second return
// value is false when the arrival has no travel time to compute against.
func (o Origin) Residual(a Arrival) (int64, bool) {
	if a.TravelTimeUS == nil {
		return 0, false
	}
	return a.ArrivalTimeUS - (o.OriginTimeUS + *a.TravelTimeUS), true
}
