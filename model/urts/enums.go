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

// Phase is an arrival's phase tag. It is encoded on the wire as a small
// integer, per the payload schemas in the system's external interfaces.
type Phase uint8

// The two phases the locator and the detectors care about.
const (
	PhaseP Phase = iota
	PhaseS
)

// String implements the Stringer interface.
func (p Phase) String() string {
	switch p {
	case PhaseP:
		return "P"
	case PhaseS:
		return "S"
	default:
		return "invalid"
	}
}

// LocationStrategy selects the location algorithm the locator service
// should use for a given request.
type LocationStrategy uint8

const (
	// LocationStrategyGeneral performs a general event location.
	LocationStrategyGeneral LocationStrategy = iota
	// LocationStrategyFreeSurface constrains the event to the free
	// surface. Useful for quarry-blast candidates.
	LocationStrategyFreeSurface
)

// String implements the Stringer interface.
func (s LocationStrategy) String() string {
	switch s {
	case LocationStrategyGeneral:
		return "general"
	case LocationStrategyFreeSurface:
		return "free_surface"
	default:
		return "invalid"
	}
}

// LocationReturnCode is the return code carried by a LocationResponse.
type LocationReturnCode uint8

const (
	LocationSuccess LocationReturnCode = iota
	LocationInvalidRequest
	LocationAlgorithmicFailure
)

// String implements the Stringer interface.
func (c LocationReturnCode) String() string {
	switch c {
	case LocationSuccess:
		return "success"
	case LocationInvalidRequest:
		return "invalid_request"
	case LocationAlgorithmicFailure:
		return "algorithmic_failure"
	default:
		return "invalid"
	}
}

// DataReturnCode is the return code carried by a single-channel or
// demultiplexed bulk-channel DataResponse.
type DataReturnCode uint8

const (
	DataSuccess DataReturnCode = iota
	DataNoSensor
	DataInvalidMessageType
	DataInvalidMessage
	DataInvalidTimeQuery
	DataAlgorithmicFailure
)

// String implements the Stringer interface.
func (c DataReturnCode) String() string {
	switch c {
	case DataSuccess:
		return "success"
	case DataNoSensor:
		return "no_sensor"
	case DataInvalidMessageType:
		return "invalid_message_type"
	case DataInvalidMessage:
		return "invalid_message"
	case DataInvalidTimeQuery:
		return "invalid_time_query"
	case DataAlgorithmicFailure:
		return "algorithmic_failure"
	default:
		return "invalid"
	}
}

// InferenceStrategy tells the inference service how to stride its fixed
// input window over the given signal.
type InferenceStrategy uint8

const (
	// SlidingWindow emits a probability trace time-aligned with the input
	// by striding the detector's fixed window across it.
	SlidingWindow InferenceStrategy = iota
	// SingleWindow runs the detector once over an input of exactly the
	// detector's window length.
	SingleWindow
)

// String implements the Stringer interface.
func (s InferenceStrategy) String() string {
	switch s {
	case SlidingWindow:
		return "sliding_window"
	case SingleWindow:
		return "single_window"
	default:
		return "invalid"
	}
}

// EventType classifies what kind of event an origin describes. The locator
// orchestrator uses it to pick a location strategy: QuarryBlast origins are
// constrained to the free surface, everything else gets a general location.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventEarthquake
	EventQuarryBlast
	EventSubnetTrigger
	EventMiningInduced
	EventExplosion
	EventChemicalExplosion
	EventNuclearExplosion
	EventNuclearTest
	EventSonic
	EventAvalanche
	EventCollapse
	EventLandslide
)

// String implements the Stringer interface.
func (t EventType) String() string {
	switch t {
	case EventEarthquake:
		return "eq"
	case EventQuarryBlast:
		return "qb"
	case EventSubnetTrigger:
		return "st"
	case EventMiningInduced:
		return "mi"
	case EventExplosion, EventChemicalExplosion, EventNuclearExplosion:
		return "ex"
	case EventNuclearTest:
		return "nt"
	case EventSonic:
		return "sn"
	case EventAvalanche:
		return "av"
	case EventCollapse:
		return "co"
	case EventLandslide:
		return "ls"
	default:
		return "uk"
	}
}

// IncrementReturnCode is the return code carried by an IncrementResponse.
type IncrementReturnCode uint8

const (
	IncrementSuccess IncrementReturnCode = iota
	IncrementInvalidRequest
	IncrementAlgorithmicFailure
)

// String implements the Stringer interface.
func (c IncrementReturnCode) String() string {
	switch c {
	case IncrementSuccess:
		return "success"
	case IncrementInvalidRequest:
		return "invalid_request"
	case IncrementAlgorithmicFailure:
		return "algorithmic_failure"
	default:
		return "invalid"
	}
}

// InferenceReturnCode is the return code carried by an inference response.
type InferenceReturnCode uint8

const (
	InferenceSuccess InferenceReturnCode = iota
	InferenceInvalidRequest
	InferenceAlgorithmicFailure
)

// String implements the Stringer interface.
func (c InferenceReturnCode) String() string {
	switch c {
	case InferenceSuccess:
		return "success"
	case InferenceInvalidRequest:
		return "invalid_request"
	case InferenceAlgorithmicFailure:
		return "algorithmic_failure"
	default:
		return "invalid"
	}
}
