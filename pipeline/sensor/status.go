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

package sensor

// Status is a representation of the sensor state machine's status.
type Status uint8

// The three statuses a sensor state machine can have.
const (
	StatusQuery Status = iota + 1
	StatusInference
	StatusPublish
)

// String implements the Stringer interface.
func (s Status) String() string {
	switch s {
	case StatusQuery:
		return "query"
	case StatusInference:
		return "inference"
	case StatusPublish:
		return "publish"
	default:
		return "invalid"
	}
}
