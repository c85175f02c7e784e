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

import "github.com/onflow/urts-dps/model/urts"

// cacheTemplate is a pre-built description of one component's range query:
// everything except the time range, which Query fills in on every call.
type cacheTemplate struct {
	identity     urts.Identity
	samplingRate float64
}

// inferenceTemplate is a pre-built description of one phase's detector call.
type inferenceTemplate struct {
	phase urts.Phase
}

// probabilityTemplate is a pre-built description of one phase's emitted
// packet: everything that doesn't change call to call.
type probabilityTemplate struct {
	phase             urts.Phase
	identity          urts.Identity
	originalChannels  []string
	positiveClassName string
	negativeClassName string
	algorithm         string
}
