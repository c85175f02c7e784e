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

import "fmt"

// IncrementRequest asks the identifier incrementer service for Count fresh,
// consecutive identifiers. Counter names which counter to draw from; the
// locator orchestrator keeps separate counters for origins and arrivals.
// Identifier is the correlation identifier transport demultiplexes replies
// by, shared with every other request/response pair this system exchanges.
type IncrementRequest struct {
	Identifier int64  `cbor:"identifier"`
	Counter    string `cbor:"counter"`
	Count      int64  `cbor:"count"`
}

// Validate rejects a non-positive count: a caller asking for zero or
// negative identifiers has nothing useful to do with the response.
func (r IncrementRequest) Validate() error {
	if r.Count < 1 {
		return fmt.Errorf("count must be positive, got %d", r.Count)
	}
	return nil
}

// IncrementResponse hands back Count consecutive integers starting at
// FirstValue, i.e. [FirstValue, FirstValue+Count).
type IncrementResponse struct {
	Identifier int64               `cbor:"identifier"`
	Counter    string              `cbor:"counter"`
	ReturnCode IncrementReturnCode `cbor:"return_code"`
	FirstValue int64               `cbor:"first_value"`
	Count      int64               `cbor:"count"`
}
